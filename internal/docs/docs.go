// Package docs registers the OpenAPI document served at /swagger/*any.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register an account", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}], "responses": {"201": {"description": "user and token", "schema": {"$ref": "#/definitions/Envelope"}}, "400": {"description": "validation failed"}, "403": {"description": "admin self-registration"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}], "responses": {"200": {"description": "user and token"}, "401": {"description": "invalid credentials"}}}},
        "/auth/me": {"get": {"tags": ["auth"], "summary": "Current user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "user"}, "401": {"description": "missing, invalid or expired token"}}}},
        "/auth/profile": {"put": {"tags": ["auth"], "summary": "Update profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "user"}}}},
        "/auth/change-password": {"put": {"tags": ["auth"], "summary": "Change password", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "changed"}, "400": {"description": "current password is incorrect"}}}},
        "/products": {
            "get": {"tags": ["products"], "summary": "List active products", "parameters": [
                {"in": "query", "name": "category", "type": "string"},
                {"in": "query", "name": "search", "type": "string"},
                {"in": "query", "name": "minPrice", "type": "number"},
                {"in": "query", "name": "maxPrice", "type": "number"},
                {"in": "query", "name": "supplier", "type": "string"},
                {"in": "query", "name": "city", "type": "string"},
                {"in": "query", "name": "state", "type": "string"},
                {"in": "query", "name": "sortBy", "type": "string", "enum": ["price", "rating", "name", "created"]},
                {"in": "query", "name": "sortOrder", "type": "string", "enum": ["asc", "desc"]},
                {"in": "query", "name": "page", "type": "integer"},
                {"in": "query", "name": "limit", "type": "integer"}
            ], "responses": {"200": {"description": "page of products", "schema": {"$ref": "#/definitions/Envelope"}}}},
            "post": {"tags": ["products"], "summary": "Create a product (supplier)", "security": [{"BearerAuth": []}], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProductRequest"}}], "responses": {"201": {"description": "created"}, "403": {"description": "not a supplier"}}}
        },
        "/products/categories": {"get": {"tags": ["products"], "summary": "Product counts per category", "responses": {"200": {"description": "categories"}}}},
        "/products/supplier/{supplierId}": {"get": {"tags": ["products"], "summary": "A supplier's products", "parameters": [{"in": "path", "name": "supplierId", "required": true, "type": "string"}], "responses": {"200": {"description": "page of products"}}}},
        "/products/{id}": {
            "get": {"tags": ["products"], "summary": "Get a product", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "product"}, "404": {"description": "not found"}}},
            "put": {"tags": ["products"], "summary": "Update a product (owner or admin)", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProductRequest"}}], "responses": {"200": {"description": "product"}, "403": {"description": "not the owner"}}},
            "delete": {"tags": ["products"], "summary": "Delete a product (owner or admin)", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "deleted"}}}
        },
        "/orders": {
            "get": {"tags": ["orders"], "summary": "Caller's orders, newest first", "security": [{"BearerAuth": []}], "parameters": [{"in": "query", "name": "page", "type": "integer"}, {"in": "query", "name": "limit", "type": "integer"}], "responses": {"200": {"description": "page of orders"}}},
            "post": {"tags": ["orders"], "summary": "Place an order", "security": [{"BearerAuth": []}], "parameters": [{"in": "header", "name": "Idempotency-Key", "type": "string"}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateOrderRequest"}}], "responses": {"201": {"description": "created"}, "200": {"description": "replayed by Idempotency-Key"}, "400": {"description": "validation, unavailable or insufficient stock"}, "404": {"description": "product not found"}, "409": {"description": "same Idempotency-Key in flight"}}}
        },
        "/orders/all": {"get": {"tags": ["orders"], "summary": "All orders (admin)", "security": [{"BearerAuth": []}], "parameters": [{"in": "query", "name": "status", "type": "string"}, {"in": "query", "name": "paymentStatus", "type": "string"}, {"in": "query", "name": "page", "type": "integer"}, {"in": "query", "name": "limit", "type": "integer"}], "responses": {"200": {"description": "page of orders"}, "403": {"description": "not an admin"}}}},
        "/orders/{id}": {"get": {"tags": ["orders"], "summary": "Get an order", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "order"}, "403": {"description": "not the owner"}, "404": {"description": "not found"}}}},
        "/orders/{id}/status": {"put": {"tags": ["orders"], "summary": "Update status and tracking (admin or fulfilling supplier)", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}], "responses": {"200": {"description": "order"}, "400": {"description": "invalid transition"}, "403": {"description": "forbidden"}}}},
        "/orders/{id}/cancel": {"put": {"tags": ["orders"], "summary": "Cancel own order and restore stock", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "order"}, "400": {"description": "order cannot be cancelled"}, "403": {"description": "not the owner"}}}}
    },
    "definitions": {
        "Envelope": {"type": "object", "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}, "data": {"type": "object"}, "errors": {"type": "array", "items": {"type": "string"}}, "count": {"type": "integer"}, "total": {"type": "integer"}, "page": {"type": "integer"}, "pages": {"type": "integer"}}},
        "RegisterRequest": {"type": "object", "required": ["firstName", "lastName", "email", "password", "phone", "role", "address"], "properties": {"firstName": {"type": "string"}, "lastName": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string", "minLength": 8}, "phone": {"type": "string", "pattern": "^[6-9]\\d{9}$"}, "role": {"type": "string", "enum": ["contractor", "engineer", "supplier", "project_manager"]}, "companyName": {"type": "string"}, "gstNumber": {"type": "string"}, "panNumber": {"type": "string"}, "address": {"$ref": "#/definitions/Address"}}},
        "LoginRequest": {"type": "object", "required": ["email", "password"], "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "Address": {"type": "object", "required": ["street", "city", "state", "pincode"], "properties": {"street": {"type": "string"}, "city": {"type": "string"}, "state": {"type": "string"}, "pincode": {"type": "string", "pattern": "^[1-9][0-9]{5}$"}, "country": {"type": "string"}, "contactName": {"type": "string"}, "contactPhone": {"type": "string"}}},
        "CreateProductRequest": {"type": "object", "required": ["name", "description", "category", "price", "unit", "images", "inventory", "location"], "properties": {"name": {"type": "string"}, "description": {"type": "string"}, "category": {"type": "string"}, "price": {"type": "string"}, "unit": {"type": "string"}, "currency": {"type": "string", "enum": ["INR", "USD", "EUR"]}, "images": {"type": "array", "items": {"type": "string"}}, "inventory": {"type": "object"}, "location": {"type": "object"}, "tags": {"type": "array", "items": {"type": "string"}}}},
        "UpdateProductRequest": {"type": "object"},
        "CreateOrderRequest": {"type": "object", "required": ["items", "shippingAddress"], "properties": {"items": {"type": "array", "items": {"type": "object", "required": ["product", "quantity"], "properties": {"product": {"type": "string"}, "quantity": {"type": "integer", "minimum": 1}}}}, "shippingAddress": {"$ref": "#/definitions/Address"}, "billingAddress": {"$ref": "#/definitions/Address"}, "notes": {"type": "string", "maxLength": 500}}},
        "UpdateStatusRequest": {"type": "object", "required": ["status"], "properties": {"status": {"type": "string", "enum": ["pending", "confirmed", "processing", "shipped", "delivered", "cancelled", "refunded"]}, "paymentStatus": {"type": "string", "enum": ["pending", "paid", "failed", "refunded"]}, "trackingNumber": {"type": "string"}, "estimatedDelivery": {"type": "string", "format": "date-time"}, "actualDelivery": {"type": "string", "format": "date-time"}, "notes": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "ConstruMarket API",
	Description:      "Construction materials marketplace: accounts, catalog and orders.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
