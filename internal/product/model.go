package product

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryCementConcrete Category = "cement_concrete"
	CategorySteelMetals    Category = "steel_metals"
	CategoryBricksBlocks   Category = "bricks_blocks"
	CategorySandAggregates Category = "sand_aggregates"
	CategoryTilesFlooring  Category = "tiles_flooring"
	CategoryPaintsChemical Category = "paints_chemicals"
	CategoryOther          Category = "other"
)

type Inventory struct {
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"minQuantity"`
	MaxQuantity int       `json:"maxQuantity"`
	IsInStock   bool      `json:"isInStock"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type Ratings struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Category       Category          `json:"category"`
	Subcategory    string            `json:"subcategory,omitempty"`
	Brand          string            `json:"brand,omitempty"`
	Model          string            `json:"productModel,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	// Price is NUMERIC in Postgres; decimal avoids rounding drift in totals.
	Price      decimal.Decimal `json:"price"`
	Unit       string          `json:"unit"`
	Currency   string          `json:"currency"`
	Images     []string        `json:"images"`
	SupplierID string          `json:"supplier"`
	Inventory  Inventory       `json:"inventory"`
	Location   Location        `json:"location"`
	Ratings    Ratings         `json:"ratings"`
	Tags       []string        `json:"tags,omitempty"`
	IsActive   bool            `json:"isActive"`
	IsFeatured bool            `json:"isFeatured"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

const (
	StockOut = "Out of Stock"
	StockLow = "Low Stock"
	StockIn  = "In Stock"
)

func (p *Product) StockStatus() string {
	switch {
	case p.Inventory.Quantity == 0:
		return StockOut
	case p.Inventory.Quantity <= p.Inventory.MinQuantity:
		return StockLow
	default:
		return StockIn
	}
}

func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		StockStatus string `json:"stockStatus"`
	}{plain(p), p.StockStatus()})
}

// CategoryCount is one row of GET /api/products/categories.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}
