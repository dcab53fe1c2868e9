package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/construmarket/internal/apperr"
	"github.com/MikeMC777/construmarket/internal/auth"
	"github.com/MikeMC777/construmarket/internal/httpx"
	"github.com/MikeMC777/construmarket/internal/product"
)

// parsePrice reads an optional decimal query parameter.
func parsePrice(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperr.Validation("Validation failed", key+" must be a number")
	}
	return &d, nil
}

func productQuery(c *gin.Context, p httpx.Page) (product.Query, error) {
	q := product.Query{
		Category:   product.Category(c.Query("category")),
		Search:     c.Query("search"),
		SupplierID: c.Query("supplier"),
		City:       c.Query("city"),
		State:      c.Query("state"),
		SortBy:     c.Query("sortBy"),
		SortDesc:   strings.EqualFold(c.Query("sortOrder"), "desc"),
		ActiveOnly: true,
		Limit:      p.Limit,
		Offset:     p.Offset(),
	}
	var err error
	if q.MinPrice, err = parsePrice(c, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = parsePrice(c, "maxPrice"); err != nil {
		return q, err
	}
	if q.SortBy == "" {
		q.SortBy, q.SortDesc = "created", true
	}
	return q, nil
}

func listProductsHandler(products *product.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := httpx.ParsePage(c)
		q, err := productQuery(c, page)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		items, total, err := products.List(c.Request.Context(), q)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.Paged(c, gin.H{"products": items}, len(items), page, total)
	}
}

func supplierProductsHandler(products *product.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := httpx.ParsePage(c)
		items, total, err := products.List(c.Request.Context(), product.Query{
			SupplierID: c.Param("supplierId"),
			ActiveOnly: true,
			Limit:      page.Limit,
			Offset:     page.Offset(),
		})
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.Paged(c, gin.H{"products": items}, len(items), page, total)
	}
}

func categoriesHandler(products *product.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := products.Categories(c.Request.Context())
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.OK(c, http.StatusOK, "", gin.H{"categories": cats})
	}
}

func getProductHandler(products *product.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := products.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.OK(c, http.StatusOK, "", gin.H{"product": p})
	}
}

func createProductHandler(products *product.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in product.CreateProductRequest
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		p, err := products.Create(c.Request.Context(), auth.MustIdentity(c).ID, in)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.OK(c, http.StatusCreated, "Product created successfully", gin.H{"product": p})
	}
}

func updateProductHandler(products *product.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in product.UpdateProductRequest
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		id := auth.MustIdentity(c)
		p, err := products.Update(c.Request.Context(), c.Param("id"), id.ID, id.IsAdmin(), in)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.OK(c, http.StatusOK, "Product updated successfully", gin.H{"product": p})
	}
}

func deleteProductHandler(products *product.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := auth.MustIdentity(c)
		if err := products.Delete(c.Request.Context(), c.Param("id"), id.ID, id.IsAdmin()); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.OK(c, http.StatusOK, "Product deleted successfully", nil)
	}
}
