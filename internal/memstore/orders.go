package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/MikeMC777/construmarket/internal/order"
)

type OrderStore struct{ s *Store }

func cloneOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = append([]order.Item(nil), o.Items...)
	if o.BillingAddress != nil {
		b := *o.BillingAddress
		cp.BillingAddress = &b
	}
	if o.EstimatedDelivery != nil {
		t := *o.EstimatedDelivery
		cp.EstimatedDelivery = &t
	}
	if o.ActualDelivery != nil {
		t := *o.ActualDelivery
		cp.ActualDelivery = &t
	}
	cp.Customer = nil
	return &cp
}

// InTx runs fn while holding the store lock. If fn fails every change made
// through the tx is undone in reverse order.
func (st *OrderStore) InTx(ctx context.Context, fn func(ctx context.Context, tx order.Tx) error) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	tx := &memTx{s: st.s}
	if err := fn(ctx, tx); err != nil {
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		return err
	}
	return nil
}

func (st *OrderStore) GetByID(_ context.Context, id string) (*order.Order, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	o, ok := st.s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (st *OrderStore) List(_ context.Context, f order.Filter) ([]order.Order, int, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	var hits []*order.Order
	for _, o := range st.s.orders {
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
			continue
		}
		hits = append(hits, o)
	}
	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return st.s.orderSeq[a.ID] > st.s.orderSeq[b.ID]
	})

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	total := len(hits)
	start := f.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	out := make([]order.Order, 0, end-start)
	for _, o := range hits[start:end] {
		out = append(out, *cloneOrder(o))
	}
	return out, total, nil
}

type memTx struct {
	s    *Store
	undo []func()
}

func (t *memTx) NextNumber(context.Context) (int64, error) {
	t.s.numberSeq++
	t.undo = append(t.undo, func() { t.s.numberSeq-- })
	return t.s.numberSeq, nil
}

func (t *memTx) Insert(_ context.Context, o *order.Order) error {
	t.s.orders[o.ID] = cloneOrder(o)
	t.s.orderSeq[o.ID] = t.s.seq()
	id := o.ID
	t.undo = append(t.undo, func() {
		delete(t.s.orders, id)
		delete(t.s.orderSeq, id)
	})
	return nil
}

func (t *memTx) LockByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := t.s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (t *memTx) Update(_ context.Context, o *order.Order) error {
	cur, ok := t.s.orders[o.ID]
	if !ok {
		return order.ErrNotFound
	}
	prev := cloneOrder(cur)
	next := cloneOrder(cur)
	next.Status = o.Status
	next.PaymentStatus = o.PaymentStatus
	next.TrackingNumber = o.TrackingNumber
	next.EstimatedDelivery = o.EstimatedDelivery
	next.ActualDelivery = o.ActualDelivery
	next.Notes = o.Notes
	next.UpdatedAt = o.UpdatedAt
	t.s.orders[o.ID] = next
	t.undo = append(t.undo, func() { t.s.orders[prev.ID] = prev })
	return nil
}

func (t *memTx) Reserve(_ context.Context, productID string, qty int, at time.Time) error {
	undo, err := t.s.reserve(productID, qty, at)
	if err != nil {
		return err
	}
	t.undo = append(t.undo, undo)
	return nil
}

func (t *memTx) Release(_ context.Context, productID string, qty int, at time.Time) error {
	undo, err := t.s.release(productID, qty, at)
	if err != nil {
		return err
	}
	t.undo = append(t.undo, undo)
	return nil
}
