// File: internal/product/repo.go
// Package product provides the catalog model, its repository interface and
// the PostgreSQL implementation.
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Query struct {
	Category   Category
	Search     string
	SupplierID string
	City       string
	State      string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string // price | rating | name | created
	SortDesc   bool
	// ActiveOnly hides deactivated products.
	ActiveOnly bool
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, int, error)
	// Update writes the catalog fields of p. Stock is only written when
	// stock is non-nil; otherwise the stored quantity, which orders may be
	// reserving concurrently, is left alone.
	Update(ctx context.Context, p *Product, stock *int) error
	Delete(ctx context.Context, id string) (bool, error)
	Categories(ctx context.Context) ([]CategoryCount, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const productColumns = `id, name, description, category, subcategory, brand, model, specifications,
	price::text, unit, currency, images, supplier_id, stock, min_quantity, max_quantity,
	stock_updated_at, city, state, pincode, rating_avg, rating_count, tags, is_active,
	is_featured, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p     Product
		price string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Subcategory, &p.Brand, &p.Model,
		&p.Specifications, &price, &p.Unit, &p.Currency, &p.Images, &p.SupplierID,
		&p.Inventory.Quantity, &p.Inventory.MinQuantity, &p.Inventory.MaxQuantity,
		&p.Inventory.LastUpdated, &p.Location.City, &p.Location.State, &p.Location.Pincode,
		&p.Ratings.Average, &p.Ratings.Count, &p.Tags, &p.IsActive, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("product %s price %q: %w", p.ID, price, err)
	}
	p.Inventory.IsInStock = p.Inventory.Quantity > 0
	return &p, nil
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO products (id, name, description, category, subcategory, brand, model,
			specifications, price, unit, currency, images, supplier_id, stock, min_quantity,
			max_quantity, stock_updated_at, city, state, pincode, tags, is_active, is_featured,
			created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::numeric,$10,$11,$12,$13,$14,$15,$16,NOW(),$17,$18,$19,$20,$21,$22,NOW(),NOW())
		RETURNING stock_updated_at, created_at, updated_at
	`, p.ID, p.Name, p.Description, p.Category, p.Subcategory, p.Brand, p.Model,
		p.Specifications, p.Price.String(), p.Unit, p.Currency, p.Images, p.SupplierID,
		p.Inventory.Quantity, p.Inventory.MinQuantity, p.Inventory.MaxQuantity,
		p.Location.City, p.Location.State, p.Location.Pincode, p.Tags, p.IsActive, p.IsFeatured,
	).Scan(&p.Inventory.LastUpdated, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

var sortColumns = map[string]string{
	"price":   "price",
	"rating":  "rating_avg",
	"name":    "name",
	"created": "created_at",
}

// where renders the filter part of q as SQL plus its positional args.
func (q Query) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if q.ActiveOnly {
		conds = append(conds, "is_active")
	}
	if q.Category != "" {
		add("category = $%d", q.Category)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		add("(name ILIKE '%%'||$%[1]d||'%%' OR description ILIKE '%%'||$%[1]d||'%%' OR array_to_string(tags, ' ') ILIKE '%%'||$%[1]d||'%%')", s)
	}
	if q.SupplierID != "" {
		add("supplier_id = $%d", q.SupplierID)
	}
	if q.City != "" {
		add("city ILIKE '%%'||$%d||'%%'", q.City)
	}
	if q.State != "" {
		add("state ILIKE '%%'||$%d||'%%'", q.State)
	}
	if q.MinPrice != nil {
		add("price >= $%d::numeric", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		add("price <= $%d::numeric", q.MaxPrice.String())
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	where, args := q.where()
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if col, ok := sortColumns[q.SortBy]; ok {
		dir := "ASC"
		if q.SortDesc {
			dir = "DESC"
		}
		order = col + " " + dir + ", created_at DESC"
	}
	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, where, order, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, p *Product, stock *int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, category = $4, subcategory = $5, brand = $6,
		    model = $7, specifications = $8, price = $9::numeric, unit = $10, images = $11,
		    stock = COALESCE($12::int, stock), min_quantity = $13, max_quantity = $14,
		    stock_updated_at = CASE WHEN $12::int IS NOT NULL AND stock <> $12::int
		                            THEN NOW() ELSE stock_updated_at END,
		    city = $15, state = $16, pincode = $17, tags = $18, is_active = $19,
		    is_featured = $20, updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Category, p.Subcategory, p.Brand, p.Model,
		p.Specifications, p.Price.String(), p.Unit, p.Images, stock,
		p.Inventory.MinQuantity, p.Inventory.MaxQuantity, p.Location.City, p.Location.State,
		p.Location.Pincode, p.Tags, p.IsActive, p.IsFeatured)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) Categories(ctx context.Context) ([]CategoryCount, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT category, COUNT(*) FROM products
		WHERE is_active
		GROUP BY category
		ORDER BY COUNT(*) DESC, category
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CategoryCount{}
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}
