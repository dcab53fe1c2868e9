package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/construmarket/internal/apperr"
	"github.com/MikeMC777/construmarket/internal/auth"
	"github.com/MikeMC777/construmarket/internal/product"
	"github.com/MikeMC777/construmarket/internal/user"
)

type Service struct {
	store     Store
	catalog   Catalog
	customers Customers
	events    Publisher
	idem      Idempotency
	metrics   Metrics
	log       *logrus.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithPublisher(p Publisher) Option     { return func(s *Service) { s.events = p } }
func WithIdempotency(i Idempotency) Option { return func(s *Service) { s.idem = i } }
func WithMetrics(m Metrics) Option         { return func(s *Service) { s.metrics = m } }
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, catalog Catalog, customers Customers, log *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		catalog:   catalog,
		customers: customers,
		metrics:   nopMetrics{},
		log:       log,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create validates every requested line against the catalog, then inserts
// the order and reserves stock for each line in one transaction. If any
// reservation fails the whole order is rolled back.
//
// With a non-empty idemKey a repeated request returns the order created by
// the first one and created is false. Reusing the key with a different body
// is a conflict.
func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateOrderRequest, idemKey string) (o *Order, created bool, err error) {
	if idemKey != "" && s.idem != nil {
		key := caller.ID + ":" + idemKey
		fp := in.fingerprint()
		prior, cerr := s.idem.Claim(ctx, key, fp)
		switch {
		case errors.Is(cerr, ErrInFlight):
			return nil, false, apperr.New(apperr.KindConflict, "A request with this Idempotency-Key is already in progress")
		case errors.Is(cerr, ErrKeyReused):
			return nil, false, apperr.New(apperr.KindConflict, "Idempotency-Key was already used with a different request")
		case cerr != nil:
			return nil, false, apperr.Internal(cerr)
		case prior != "":
			o, err = s.get(ctx, prior)
			return o, false, err
		}
		defer func() {
			bg := context.WithoutCancel(ctx)
			if err != nil {
				if rerr := s.idem.Release(bg, key); rerr != nil {
					s.log.WithError(rerr).Warn("idempotency release failed")
				}
				return
			}
			if cerr := s.idem.Complete(bg, key, fp, o.ID); cerr != nil {
				s.log.WithError(cerr).WithField("order_id", o.ID).Warn("idempotency complete failed")
			}
		}()
	}

	o, err = s.place(ctx, caller, in)
	if err != nil {
		s.metrics.OrderRejected(apperr.KindOf(err).String())
		return nil, false, err
	}
	return o, true, nil
}

func (s *Service) place(ctx context.Context, caller auth.Identity, in CreateOrderRequest) (*Order, error) {
	items, currency, err := s.validate(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	o := &Order{
		ID:              uuid.NewString(),
		CustomerID:      caller.ID,
		Items:           items,
		Currency:        currency,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		ShippingAddress: in.ShippingAddress.toAddress(),
		BillingAddress:  in.BillingAddress.toAddress(),
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	o.RecomputeTotal()

	err = s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		seq, err := tx.NextNumber(ctx)
		if err != nil {
			return err
		}
		o.OrderNumber = FormatNumber(now, seq)
		if err := tx.Insert(ctx, o); err != nil {
			return err
		}
		for _, it := range o.Items {
			if err := tx.Reserve(ctx, it.ProductID, it.Quantity, now); err != nil {
				if errors.Is(err, ErrStockConflict) {
					return apperr.Wrap(err, apperr.KindInsufficientStock, "Insufficient stock for %s", it.ProductName)
				}
				return fmt.Errorf("reserve %s: %w", it.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.txErr(err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"customer_id":  o.CustomerID,
		"total":        o.TotalAmount.StringFixed(2),
	}).Info("order placed")
	s.metrics.OrderPlaced(o.ItemCount())
	s.publish(ctx, newEvent(EventCreated, o, "", now))
	s.attachCustomer(ctx, o)
	return o, nil
}

// validate checks each line in request order and snapshots price, unit,
// name and supplier. It reads the catalog only.
func (s *Service) validate(ctx context.Context, req []CreateOrderItem) ([]Item, string, error) {
	if len(req) == 0 {
		return nil, "", apperr.Validation("Validation failed", "items must contain at least one item")
	}
	items := make([]Item, 0, len(req))
	currency := ""
	for _, r := range req {
		if r.Quantity < 1 {
			return nil, "", apperr.Validation("Validation failed", "quantity must be at least 1")
		}
		p, err := s.catalog.GetByID(ctx, r.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) || apperr.Is(err, apperr.KindNotFound) {
				return nil, "", apperr.NotFound("Product with ID %s not found", r.ProductID)
			}
			return nil, "", apperr.Internal(err)
		}
		if !p.IsActive {
			return nil, "", apperr.New(apperr.KindUnavailable, "Product %s is not available", p.Name)
		}
		if r.Quantity > p.Inventory.Quantity {
			e := apperr.New(apperr.KindInsufficientStock, "Insufficient stock for %s. Available: %d", p.Name, p.Inventory.Quantity)
			e.Details = []string{fmt.Sprintf("requested %d, short by %d", r.Quantity, r.Quantity-p.Inventory.Quantity)}
			return nil, "", e
		}
		if currency == "" {
			currency = p.Currency
		} else if p.Currency != currency {
			return nil, "", apperr.Validation("All items in an order must share one currency")
		}
		items = append(items, Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			SupplierID:  p.SupplierID,
			Quantity:    r.Quantity,
			Price:       p.Price,
			Unit:        p.Unit,
		})
	}
	if currency == "" {
		currency = "INR"
	}
	return items, currency, nil
}

// Cancel moves the caller's own order to cancelled and returns every
// reserved unit to the catalog.
func (s *Service) Cancel(ctx context.Context, caller auth.Identity, id string) (*Order, error) {
	var (
		o    *Order
		prev Status
	)
	now := s.now().UTC()
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		if o, err = s.lock(ctx, tx, id); err != nil {
			return err
		}
		if o.CustomerID != caller.ID {
			return apperr.Forbidden("Not authorized to cancel this order")
		}
		if !o.Status.Cancellable() {
			return apperr.New(apperr.KindInvalidTransition, "Order cannot be cancelled")
		}
		prev = o.Status
		o.Status = StatusCancelled
		o.UpdatedAt = now
		if err := tx.Update(ctx, o); err != nil {
			return err
		}
		return s.releaseAll(ctx, tx, o, now)
	})
	if err != nil {
		return nil, s.txErr(err)
	}

	s.log.WithFields(logrus.Fields{"order_id": o.ID, "order_number": o.OrderNumber, "status": o.Status}).Info("order cancelled")
	s.metrics.OrderTransition(prev, StatusCancelled)
	s.publish(ctx, newEvent(EventCancelled, o, prev, now))
	s.attachCustomer(ctx, o)
	return o, nil
}

// UpdateStatus applies a status change and tracking fields. Admins may
// touch any order; suppliers only orders containing one of their lines.
func (s *Service) UpdateStatus(ctx context.Context, caller auth.Identity, id string, in UpdateStatusRequest) (*Order, error) {
	if !caller.HasRole(user.RoleAdmin, user.RoleSupplier) {
		return nil, apperr.Forbidden("Not authorized to update order status")
	}
	if !in.Status.Valid() {
		return nil, apperr.Validation("Validation failed", fmt.Sprintf("status %q is not a valid order status", in.Status))
	}
	if in.PaymentStatus != "" {
		if !in.PaymentStatus.Valid() {
			return nil, apperr.Validation("Validation failed", fmt.Sprintf("paymentStatus %q is not valid", in.PaymentStatus))
		}
		if !caller.IsAdmin() {
			return nil, apperr.Forbidden("Only admins may change payment status")
		}
	}

	var (
		o    *Order
		prev Status
	)
	now := s.now().UTC()
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		if o, err = s.lock(ctx, tx, id); err != nil {
			return err
		}
		if !caller.IsAdmin() && !o.FulfilledBy(caller.ID) {
			return apperr.Forbidden("Not authorized to update order status")
		}
		if !o.Status.CanTransition(in.Status) {
			return apperr.New(apperr.KindInvalidTransition, "Cannot change order status from %s to %s", o.Status, in.Status)
		}
		prev = o.Status
		o.Status = in.Status
		if in.PaymentStatus != "" {
			o.PaymentStatus = in.PaymentStatus
		}
		if in.TrackingNumber != "" {
			o.TrackingNumber = in.TrackingNumber
		}
		if in.EstimatedDelivery != nil {
			t := in.EstimatedDelivery.UTC()
			o.EstimatedDelivery = &t
		}
		if in.ActualDelivery != nil {
			t := in.ActualDelivery.UTC()
			o.ActualDelivery = &t
		}
		if o.Status == StatusDelivered && o.ActualDelivery == nil {
			t := now
			o.ActualDelivery = &t
		}
		if in.Notes != nil {
			o.Notes = *in.Notes
		}
		o.UpdatedAt = now
		if err := tx.Update(ctx, o); err != nil {
			return err
		}
		if o.Status == StatusCancelled && prev != StatusCancelled {
			return s.releaseAll(ctx, tx, o, now)
		}
		return nil
	})
	if err != nil {
		return nil, s.txErr(err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"status":       o.Status,
		"from":         prev,
		"actor_id":     caller.ID,
	}).Info("order status updated")
	if prev != o.Status {
		s.metrics.OrderTransition(prev, o.Status)
		typ := EventStatusChanged
		if o.Status == StatusCancelled {
			typ = EventCancelled
		}
		s.publish(ctx, newEvent(typ, o, prev, now))
	}
	s.attachCustomer(ctx, o)
	return o, nil
}

// Get returns an order visible to caller: its customer or an admin.
func (s *Service) Get(ctx context.Context, caller auth.Identity, id string) (*Order, error) {
	o, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && o.CustomerID != caller.ID {
		return nil, apperr.Forbidden("Not authorized to view this order")
	}
	return o, nil
}

func (s *Service) get(ctx context.Context, id string) (*Order, error) {
	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, apperr.Internal(err)
	}
	s.attachCustomer(ctx, o)
	return o, nil
}

// ListMine pages through the caller's own orders, newest first.
func (s *Service) ListMine(ctx context.Context, caller auth.Identity, limit, offset int) ([]Order, int, error) {
	return s.list(ctx, Filter{CustomerID: caller.ID, Limit: limit, Offset: offset})
}

// ListAll pages through every order. Admin only.
func (s *Service) ListAll(ctx context.Context, caller auth.Identity, f Filter) ([]Order, int, error) {
	if !caller.IsAdmin() {
		return nil, 0, apperr.Forbidden("Not authorized")
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, apperr.Validation("Validation failed", fmt.Sprintf("status %q is not a valid order status", f.Status))
	}
	if f.PaymentStatus != "" && !f.PaymentStatus.Valid() {
		return nil, 0, apperr.Validation("Validation failed", fmt.Sprintf("paymentStatus %q is not valid", f.PaymentStatus))
	}
	f.CustomerID = ""
	return s.list(ctx, f)
}

func (s *Service) list(ctx context.Context, f Filter) ([]Order, int, error) {
	out, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	cache := map[string]*Customer{}
	for i := range out {
		c, ok := cache[out[i].CustomerID]
		if !ok {
			c = s.customer(ctx, out[i].CustomerID)
			cache[out[i].CustomerID] = c
		}
		out[i].Customer = c
	}
	return out, total, nil
}

func (s *Service) lock(ctx context.Context, tx Tx, id string) (*Order, error) {
	o, err := tx.LockByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("Order not found")
	}
	return o, err
}

// releaseAll returns the recorded quantity of every line. Products deleted
// since placement are skipped.
func (s *Service) releaseAll(ctx context.Context, tx Tx, o *Order, at time.Time) error {
	for _, it := range o.Items {
		err := tx.Release(ctx, it.ProductID, it.Quantity, at)
		if errors.Is(err, product.ErrNotFound) {
			s.log.WithFields(logrus.Fields{"order_id": o.ID, "product_id": it.ProductID}).Warn("product gone, stock not restored")
			continue
		}
		if err != nil {
			return fmt.Errorf("release %s: %w", it.ProductID, err)
		}
	}
	return nil
}

func (s *Service) txErr(err error) error {
	if apperr.KindOf(err) == apperr.KindInternal {
		return apperr.Internal(err)
	}
	return err
}

func (s *Service) publish(ctx context.Context, ev Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"order_id": ev.OrderID, "event": ev.Type}).Warn("publish order event failed")
	}
}

func (s *Service) attachCustomer(ctx context.Context, o *Order) {
	o.Customer = s.customer(ctx, o.CustomerID)
}

func (s *Service) customer(ctx context.Context, id string) *Customer {
	if s.customers == nil {
		return nil
	}
	u, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			s.log.WithError(err).WithField("customer_id", id).Warn("resolve customer failed")
		}
		return nil
	}
	return &Customer{
		ID:          u.ID,
		Name:        u.FullName(),
		Email:       u.Email,
		Phone:       u.Phone,
		CompanyName: u.CompanyName,
	}
}
