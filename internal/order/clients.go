package order

import (
	"context"
	"errors"
	"time"

	"github.com/MikeMC777/construmarket/internal/product"
	"github.com/MikeMC777/construmarket/internal/user"
)

// Catalog is the read side of the product catalog. Stock is never written
// through it: reservations go through Tx.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

// Customers resolves the customer summary attached to responses.
type Customers interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// Publisher receives order lifecycle events. Implementations must not block
// the request for long; failures are logged by the caller and never undo
// the order.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

const (
	EventCreated       = "order.created"
	EventCancelled     = "order.cancelled"
	EventStatusChanged = "order.status_changed"
)

type Event struct {
	Type        string    `json:"type"`
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	CustomerID  string    `json:"customerId"`
	Status      Status    `json:"status"`
	PrevStatus  Status    `json:"previousStatus,omitempty"`
	TotalAmount string    `json:"totalAmount"`
	ItemCount   int       `json:"itemCount"`
	At          time.Time `json:"at"`
}

func newEvent(typ string, o *Order, prev Status, at time.Time) Event {
	return Event{
		Type:        typ,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		Status:      o.Status,
		PrevStatus:  prev,
		TotalAmount: o.TotalAmount.StringFixed(2),
		ItemCount:   o.ItemCount(),
		At:          at,
	}
}

// Idempotency remembers which order a client key produced, and for which
// request body.
type Idempotency interface {
	// Claim reserves key for the request identified by fingerprint. It
	// returns the order id stored under key when the same request already
	// completed, ErrInFlight while another request holds the key, and
	// ErrKeyReused when the key was first used with a different request.
	Claim(ctx context.Context, key, fingerprint string) (orderID string, err error)
	Complete(ctx context.Context, key, fingerprint, orderID string) error
	Release(ctx context.Context, key string) error
}

var (
	ErrInFlight  = errors.New("idempotency key in flight")
	ErrKeyReused = errors.New("idempotency key reused with a different request")
)

// Metrics counts order outcomes.
type Metrics interface {
	OrderPlaced(itemCount int)
	OrderRejected(reason string)
	OrderTransition(from, to Status)
}

type nopMetrics struct{}

func (nopMetrics) OrderPlaced(int)                {}
func (nopMetrics) OrderRejected(string)           {}
func (nopMetrics) OrderTransition(Status, Status) {}
