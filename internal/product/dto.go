package product

import "github.com/shopspring/decimal"

// LocationInput where the material ships from.
// swagger:model LocationInput
type LocationInput struct {
	City    string `json:"city"    binding:"required" example:"Nashik"`
	State   string `json:"state"   binding:"required" example:"Maharashtra"`
	Pincode string `json:"pincode" binding:"required,pincode" example:"422001"`
}

// InventoryInput initial stock levels.
// swagger:model InventoryInput
type InventoryInput struct {
	Quantity    *int `json:"quantity"    binding:"required,gte=0" example:"500"`
	MinQuantity int  `json:"minQuantity" binding:"gte=0" example:"20"`
	MaxQuantity int  `json:"maxQuantity" binding:"gte=0" example:"1000"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name           string            `json:"name"           binding:"required,max=200" example:"OPC 53 Grade Cement"`
	Description    string            `json:"description"    binding:"required,max=2000" example:"50 kg bag"`
	Category       Category          `json:"category"       binding:"required,oneof=cement_concrete steel_metals bricks_blocks sand_aggregates tiles_flooring paints_chemicals other" example:"cement_concrete"`
	Subcategory    string            `json:"subcategory"    binding:"max=100"`
	Brand          string            `json:"brand"          binding:"max=100"`
	Model          string            `json:"productModel"   binding:"max=100"`
	Specifications map[string]string `json:"specifications"`
	Price          *decimal.Decimal  `json:"price"          binding:"required" swaggertype:"string" example:"385.00"`
	Unit           string            `json:"unit"           binding:"required" example:"bag"`
	Currency       string            `json:"currency"       binding:"omitempty,oneof=INR USD EUR" example:"INR"`
	Images         []string          `json:"images"         binding:"required,min=1"`
	Inventory      InventoryInput    `json:"inventory"      binding:"required"`
	Location       LocationInput     `json:"location"       binding:"required"`
	Tags           []string          `json:"tags"`
	IsFeatured     bool              `json:"isFeatured"`
}

// UpdateProductRequest payload of partial update; nil fields are left as is.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name           *string           `json:"name"         binding:"omitempty,max=200"`
	Description    *string           `json:"description"  binding:"omitempty,max=2000"`
	Category       *Category         `json:"category"     binding:"omitempty,oneof=cement_concrete steel_metals bricks_blocks sand_aggregates tiles_flooring paints_chemicals other"`
	Subcategory    *string           `json:"subcategory"  binding:"omitempty,max=100"`
	Brand          *string           `json:"brand"        binding:"omitempty,max=100"`
	Model          *string           `json:"productModel" binding:"omitempty,max=100"`
	Specifications map[string]string `json:"specifications"`
	Price          *decimal.Decimal  `json:"price"        swaggertype:"string"`
	Unit           *string           `json:"unit"`
	Images         []string          `json:"images"`
	Quantity       *int              `json:"quantity"     binding:"omitempty,gte=0"`
	MinQuantity    *int              `json:"minQuantity"  binding:"omitempty,gte=0"`
	MaxQuantity    *int              `json:"maxQuantity"  binding:"omitempty,gte=0"`
	Location       *LocationInput    `json:"location"`
	Tags           []string          `json:"tags"`
	IsActive       *bool             `json:"isActive"`
	IsFeatured     *bool             `json:"isFeatured"`
}
