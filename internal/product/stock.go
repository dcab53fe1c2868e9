package product

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrStockConflict means a conditional decrement matched no row: the
// product is gone, inactive, or no longer has enough units.
var ErrStockConflict = errors.New("insufficient stock")

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReserveStock decrements stock by qty only if at least qty units are on
// hand. Check and write happen in one statement, so concurrent reservations
// can never drive stock below zero.
func ReserveStock(ctx context.Context, db DBTX, id string, qty int, at time.Time) error {
	tag, err := db.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2, stock_updated_at = $3, updated_at = $3
		WHERE id = $1 AND is_active AND stock >= $2
	`, id, qty, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStockConflict
	}
	return nil
}

// ReleaseStock returns qty units to a product. Inactive products still get
// their units back.
func ReleaseStock(ctx context.Context, db DBTX, id string, qty int, at time.Time) error {
	tag, err := db.Exec(ctx, `
		UPDATE products
		SET stock = stock + $2, stock_updated_at = $3, updated_at = $3
		WHERE id = $1
	`, id, qty, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
