package product_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/construmarket/internal/apperr"
	"github.com/MikeMC777/construmarket/internal/logging"
	"github.com/MikeMC777/construmarket/internal/memstore"
	"github.com/MikeMC777/construmarket/internal/product"
)

func ptr[T any](v T) *T { return &v }

func newProductRequest(name string, cat product.Category, price string, qty int) product.CreateProductRequest {
	return product.CreateProductRequest{
		Name:        name,
		Description: name + " for site work",
		Category:    cat,
		Price:       ptr(decimal.RequireFromString(price)),
		Unit:        "bag",
		Images:      []string{"https://img.example.com/1.jpg"},
		Inventory:   product.InventoryInput{Quantity: ptr(qty), MinQuantity: 10},
		Location:    product.LocationInput{City: "Pune", State: "Maharashtra", Pincode: "411001"},
		Tags:        []string{"bulk"},
	}
}

func newService() *product.Service {
	return product.NewService(memstore.New().Products(), logging.Discard())
}

func TestCreate_Defaults(t *testing.T) {
	svc := newService()
	p, err := svc.Create(context.Background(), "sup-1", newProductRequest("OPC 53", product.CategoryCementConcrete, "385", 500))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "sup-1", p.SupplierID)
	assert.Equal(t, "INR", p.Currency)
	assert.True(t, p.IsActive)
	assert.True(t, p.Inventory.IsInStock)
	assert.Equal(t, product.StockIn, p.StockStatus())

	_, err = svc.Create(context.Background(), "sup-1", newProductRequest("Bad", product.CategoryOther, "-1", 1))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestStockStatus(t *testing.T) {
	p := product.Product{Inventory: product.Inventory{Quantity: 0, MinQuantity: 10}}
	assert.Equal(t, product.StockOut, p.StockStatus())
	p.Inventory.Quantity = 10
	assert.Equal(t, product.StockLow, p.StockStatus())
	p.Inventory.Quantity = 11
	assert.Equal(t, product.StockIn, p.StockStatus())
}

func TestList_FiltersAndSort(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	mk := func(name string, cat product.Category, price string) *product.Product {
		p, err := svc.Create(ctx, "sup-1", newProductRequest(name, cat, price, 100))
		require.NoError(t, err)
		return p
	}
	mk("Red bricks", product.CategoryBricksBlocks, "8")
	mk("AAC block", product.CategoryBricksBlocks, "55")
	mk("River sand", product.CategorySandAggregates, "40")
	hidden := mk("Fly ash bricks", product.CategoryBricksBlocks, "6")
	_, err := svc.Update(ctx, hidden.ID, "sup-1", false, product.UpdateProductRequest{IsActive: ptr(false)})
	require.NoError(t, err)

	got, total, err := svc.List(ctx, product.Query{
		Category: product.CategoryBricksBlocks, ActiveOnly: true, SortBy: "price", Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, got, 2)
	assert.Equal(t, "Red bricks", got[0].Name)

	got, _, err = svc.List(ctx, product.Query{Search: "SAND", ActiveOnly: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "River sand", got[0].Name)

	got, total, err = svc.List(ctx, product.Query{
		MinPrice: ptr(decimal.NewFromInt(10)), MaxPrice: ptr(decimal.NewFromInt(50)), ActiveOnly: true, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "River sand", got[0].Name)

	_, _, err = svc.List(ctx, product.Query{MinPrice: ptr(decimal.NewFromInt(60)), MaxPrice: ptr(decimal.NewFromInt(50))})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, product.CategoryBricksBlocks, cats[0].Category)
	assert.Equal(t, 2, cats[0].Count)
}

func TestUpdateDelete_Ownership(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	p, err := svc.Create(ctx, "sup-1", newProductRequest("Cement", product.CategoryCementConcrete, "385", 50))
	require.NoError(t, err)

	_, err = svc.Update(ctx, p.ID, "sup-2", false, product.UpdateProductRequest{Name: ptr("Hijacked")})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	got, err := svc.Update(ctx, p.ID, "sup-1", false, product.UpdateProductRequest{
		Price: ptr(decimal.RequireFromString("399.99")), Quantity: ptr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, "399.99", got.Price.String())
	assert.Equal(t, product.StockOut, got.StockStatus())
	assert.Equal(t, "Cement", got.Name)

	_, err = svc.Update(ctx, p.ID, "admin-1", true, product.UpdateProductRequest{IsFeatured: ptr(true)})
	require.NoError(t, err)

	assert.True(t, apperr.Is(svc.Delete(ctx, p.ID, "sup-2", false), apperr.KindForbidden))
	require.NoError(t, svc.Delete(ctx, p.ID, "sup-1", false))
	_, err = svc.Get(ctx, p.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdate_StockOnlyWhenSent(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	p, err := svc.Create(ctx, "sup-1", newProductRequest("TMT bar", product.CategorySteelMetals, "62", 30))
	require.NoError(t, err)

	got, err := svc.Update(ctx, p.ID, "sup-1", false, product.UpdateProductRequest{Price: ptr(decimal.NewFromInt(65))})
	require.NoError(t, err)
	assert.Equal(t, 30, got.Inventory.Quantity)
	assert.Equal(t, p.Inventory.LastUpdated, got.Inventory.LastUpdated)

	got, err = svc.Update(ctx, p.ID, "sup-1", false, product.UpdateProductRequest{Quantity: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Inventory.Quantity)
	assert.False(t, got.Inventory.IsInStock)
	assert.Equal(t, "65", got.Price.String())
}
