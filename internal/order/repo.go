package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/construmarket/internal/product"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrStockConflict is returned by Tx.Reserve when the product can no
	// longer cover the quantity.
	ErrStockConflict = product.ErrStockConflict
)

// Tx is the unit of work handed to Store.InTx. Every call made through it
// commits or rolls back together.
type Tx interface {
	NextNumber(ctx context.Context) (int64, error)
	Insert(ctx context.Context, o *Order) error
	// LockByID loads an order and holds it against concurrent writers until
	// the transaction ends.
	LockByID(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, o *Order) error
	Reserve(ctx context.Context, productID string, qty int, at time.Time) error
	Release(ctx context.Context, productID string, qty int, at time.Time) error
}

type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f Filter) ([]Order, int, error)
}

type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (s *PGStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const orderColumns = `id, order_number, customer_id, total_amount::text, currency, status,
	payment_status, shipping_address, billing_address, tracking_number, estimated_delivery,
	actual_delivery, notes, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o     Order
		total string
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &total, &o.Currency, &o.Status,
		&o.PaymentStatus, &o.ShippingAddress, &o.BillingAddress, &o.TrackingNumber,
		&o.EstimatedDelivery, &o.ActualDelivery, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("order %s total %q: %w", o.ID, total, err)
	}
	return &o, nil
}

// loadItems fills Items for every order in os with a single query.
func loadItems(ctx context.Context, db product.DBTX, os []*Order) error {
	if len(os) == 0 {
		return nil
	}
	byID := make(map[string]*Order, len(os))
	ids := make([]string, 0, len(os))
	for _, o := range os {
		o.Items = []Item{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	rows, err := db.Query(ctx, `
		SELECT order_id, product_id, product_name, supplier_id, quantity, price::text, unit
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, line_no
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			orderID, price string
			it             Item
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.SupplierID, &it.Quantity, &price, &it.Unit); err != nil {
			return err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("order %s item price %q: %w", orderID, price, err)
		}
		if o := byID[orderID]; o != nil {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func getByID(ctx context.Context, db product.DBTX, id, suffix string) (*Order, error) {
	o, err := scanOrder(db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`+suffix, id))
	if err != nil {
		return nil, err
	}
	if err := loadItems(ctx, db, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *PGStore) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return getByID(ctx, s.db, id, "")
}

func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.PaymentStatus != "" {
		args = append(args, f.PaymentStatus)
		conds = append(conds, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *PGStore) List(ctx context.Context, f Filter) ([]Order, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 10
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	where, args := f.where()

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := s.db.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM orders%s ORDER BY created_at DESC, order_number DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	var page []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		page = append(page, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := loadItems(ctx, s.db, page); err != nil {
		return nil, 0, err
	}
	out := make([]Order, 0, len(page))
	for _, o := range page {
		out = append(out, *o)
	}
	return out, total, nil
}

type pgTx struct{ tx pgx.Tx }

func (t pgTx) NextNumber(ctx context.Context) (int64, error) {
	var n int64
	err := t.tx.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&n)
	return n, err
}

func (t pgTx) Insert(ctx context.Context, o *Order) error {
	if _, err := t.tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, customer_id, total_amount, currency, status,
			payment_status, shipping_address, billing_address, tracking_number,
			estimated_delivery, actual_delivery, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4::numeric,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, o.ID, o.OrderNumber, o.CustomerID, o.TotalAmount.String(), o.Currency, o.Status,
		o.PaymentStatus, o.ShippingAddress, o.BillingAddress, o.TrackingNumber,
		o.EstimatedDelivery, o.ActualDelivery, o.Notes, o.CreatedAt, o.UpdatedAt); err != nil {
		return err
	}

	for i, it := range o.Items {
		if _, err := t.tx.Exec(ctx, `
			INSERT INTO order_items (order_id, line_no, product_id, product_name, supplier_id, quantity, price, unit)
			VALUES ($1,$2,$3,$4,$5,$6,$7::numeric,$8)
		`, o.ID, i, it.ProductID, it.ProductName, it.SupplierID, it.Quantity, it.Price.String(), it.Unit); err != nil {
			return err
		}
	}
	return nil
}

func (t pgTx) LockByID(ctx context.Context, id string) (*Order, error) {
	return getByID(ctx, t.tx, id, " FOR UPDATE")
}

// Update writes the mutable columns of o. Items and totals are frozen at
// placement and are not touched.
func (t pgTx) Update(ctx context.Context, o *Order) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE orders
		SET status = $2, payment_status = $3, tracking_number = $4,
		    estimated_delivery = $5, actual_delivery = $6, notes = $7, updated_at = $8
		WHERE id = $1
	`, o.ID, o.Status, o.PaymentStatus, o.TrackingNumber, o.EstimatedDelivery,
		o.ActualDelivery, o.Notes, o.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t pgTx) Reserve(ctx context.Context, productID string, qty int, at time.Time) error {
	return product.ReserveStock(ctx, t.tx, productID, qty, at)
}

func (t pgTx) Release(ctx context.Context, productID string, qty int, at time.Time) error {
	return product.ReleaseStock(ctx, t.tx, productID, qty, at)
}
