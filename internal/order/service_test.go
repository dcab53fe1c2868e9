package order_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/construmarket/internal/apperr"
	"github.com/MikeMC777/construmarket/internal/auth"
	"github.com/MikeMC777/construmarket/internal/logging"
	"github.com/MikeMC777/construmarket/internal/memstore"
	"github.com/MikeMC777/construmarket/internal/order"
	"github.com/MikeMC777/construmarket/internal/product"
	"github.com/MikeMC777/construmarket/internal/user"
)

//
// ---------- FIXTURES ----------
//

type recorder struct {
	mu     sync.Mutex
	events []order.Event
	fail   bool
}

func (r *recorder) Publish(_ context.Context, ev order.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("broker down")
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

// memIdem is a minimal order.Idempotency for service tests.
type memIdem struct {
	mu   sync.Mutex
	keys map[string]idemEntry
}

type idemEntry struct{ fp, id string }

func (m *memIdem) Claim(_ context.Context, key, fp string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.keys[key]
	switch {
	case !ok:
		m.keys[key] = idemEntry{fp: fp}
		return "", nil
	case v.fp != fp:
		return "", order.ErrKeyReused
	case v.id == "":
		return "", order.ErrInFlight
	default:
		return v.id, nil
	}
}

func (m *memIdem) Complete(_ context.Context, key, fp, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = idemEntry{fp: fp, id: id}
	return nil
}

func (m *memIdem) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

type fixture struct {
	svc      *order.Service
	store    *memstore.Store
	products *memstore.ProductRepo
	events   *recorder

	customer auth.Identity
	other    auth.Identity
	admin    auth.Identity
	supplier auth.Identity
}

func newFixture(t *testing.T, opts ...order.Option) *fixture {
	t.Helper()
	st := memstore.New()
	f := &fixture{
		store:    st,
		products: st.Products(),
		events:   &recorder{},
		customer: auth.Identity{ID: uuid.NewString(), Role: user.RoleContractor},
		other:    auth.Identity{ID: uuid.NewString(), Role: user.RoleEngineer},
		admin:    auth.Identity{ID: uuid.NewString(), Role: user.RoleAdmin},
		supplier: auth.Identity{ID: uuid.NewString(), Role: user.RoleSupplier},
	}
	require.NoError(t, st.Users().Create(context.Background(), &user.User{
		ID: f.customer.ID, FirstName: "Asha", LastName: "Patil", Email: "asha@example.com",
		Phone: "9876543210", Role: user.RoleContractor, IsActive: true,
	}))
	opts = append([]order.Option{order.WithPublisher(f.events)}, opts...)
	f.svc = order.NewService(st.Orders(), f.products, st.Users(), logging.Discard(), opts...)
	return f
}

func (f *fixture) addProduct(t *testing.T, name string, stock int, price string) string {
	t.Helper()
	p := &product.Product{
		ID:         uuid.NewString(),
		Name:       name,
		Category:   product.CategoryCementConcrete,
		Price:      decimal.RequireFromString(price),
		Unit:       "bag",
		Currency:   "INR",
		SupplierID: f.supplier.ID,
		Inventory:  product.Inventory{Quantity: stock},
		IsActive:   true,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p.ID
}

func request(lines ...order.CreateOrderItem) order.CreateOrderRequest {
	return order.CreateOrderRequest{
		Items: lines,
		ShippingAddress: order.AddressInput{
			Street: "Plot 7, MIDC", City: "Pune", State: "Maharashtra", Pincode: "411019",
			ContactName: "Ravi", ContactPhone: "9822012345",
		},
	}
}

func line(id string, qty int) order.CreateOrderItem {
	return order.CreateOrderItem{ProductID: id, Quantity: qty}
}

//
// ---------- TESTS ----------
//

func TestCreate_TotalMatchesLines(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	a := f.addProduct(t, "Cement", 50, "385.50")
	b := f.addProduct(t, "TMT Bar", 20, "62.25")

	o, created, err := f.svc.Create(context.Background(), f.customer, request(line(a, 3), line(b, 4)), "")
	require.NoError(t, err)
	assert.True(t, created)

	want := decimal.RequireFromString("385.50").Mul(decimal.NewFromInt(3)).
		Add(decimal.RequireFromString("62.25").Mul(decimal.NewFromInt(4)))
	assert.True(t, want.Equal(o.TotalAmount), "total=%s want=%s", o.TotalAmount, want)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.PaymentPending, o.PaymentStatus)
	assert.Equal(t, 7, o.ItemCount())
	assert.Equal(t, "INR", o.Currency)
	assert.Regexp(t, `^ORD-\d+-0001$`, o.OrderNumber)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Cement", o.Items[0].ProductName)
	assert.Equal(t, f.supplier.ID, o.Items[0].SupplierID)
	require.NotNil(t, o.Customer)
	assert.Equal(t, "Asha Patil", o.Customer.Name)
	assert.Equal(t, []string{order.EventCreated}, f.events.types())
}

func TestCreate_PriceSnapshotIsFrozen(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	id := f.addProduct(t, "Cement", 10, "100")

	o, _, err := f.svc.Create(context.Background(), f.customer, request(line(id, 2)), "")
	require.NoError(t, err)

	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	p.Price = decimal.NewFromInt(999)
	require.NoError(t, f.products.Update(context.Background(), p, nil))

	got, err := f.svc.Get(context.Background(), f.customer, o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(got.TotalAmount))
	assert.True(t, decimal.NewFromInt(100).Equal(got.Items[0].Price))
}

func TestCreate_Rejections(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ok := f.addProduct(t, "Bricks", 5, "8")
	inactive := f.addProduct(t, "Old tiles", 5, "40")
	p, err := f.products.GetByID(context.Background(), inactive)
	require.NoError(t, err)
	p.IsActive = false
	require.NoError(t, f.products.Update(context.Background(), p, nil))
	missing := uuid.NewString()

	cases := []struct {
		name  string
		lines []order.CreateOrderItem
		kind  apperr.Kind
		msg   string
	}{
		{"not found", []order.CreateOrderItem{line(ok, 1), line(missing, 1)}, apperr.KindNotFound, fmt.Sprintf("Product with ID %s not found", missing)},
		{"inactive", []order.CreateOrderItem{line(inactive, 1)}, apperr.KindUnavailable, "Product Old tiles is not available"},
		{"short", []order.CreateOrderItem{line(ok, 6)}, apperr.KindInsufficientStock, "Insufficient stock for Bricks. Available: 5"},
		{"empty", nil, apperr.KindValidation, "Validation failed"},
		{"zero qty", []order.CreateOrderItem{line(ok, 0)}, apperr.KindValidation, "Validation failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.svc.Create(context.Background(), f.customer, request(tc.lines...), "")
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
			var ae *apperr.Error
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tc.msg, ae.Msg)
		})
	}
	assert.Equal(t, 5, f.products.Stock(ok), "rejected orders must not touch stock")
	assert.Empty(t, f.events.types())
}

// Each line passes validation on its own (6 <= 10), but the second
// reservation of p finds only 4 left.
func TestCreate_LateReservationFailureRollsBack(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	a := f.addProduct(t, "Sand", 10, "50")
	p := f.addProduct(t, "Cement", 10, "100")

	_, _, err := f.svc.Create(ctx, f.customer, request(line(a, 2), line(p, 6), line(p, 6)), "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))

	assert.Equal(t, 10, f.products.Stock(a))
	assert.Equal(t, 10, f.products.Stock(p))
	list, total, err := f.svc.ListMine(ctx, f.customer, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
	assert.Empty(t, f.events.types())
}

// A catalog edit built from a read taken before an order was placed must
// not hand the reserved units back.
func TestCatalogEditKeepsReservation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	id := f.addProduct(t, "Cement", 10, "100")

	stale, err := f.products.GetByID(ctx, id)
	require.NoError(t, err)

	_, _, err = f.svc.Create(ctx, f.customer, request(line(id, 3)), "")
	require.NoError(t, err)
	require.Equal(t, 7, f.products.Stock(id))

	stale.Price = decimal.NewFromInt(120)
	require.NoError(t, f.products.Update(ctx, stale, nil))
	assert.Equal(t, 7, f.products.Stock(id))

	got, err := f.products.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120).Equal(got.Price))

	restock := 25
	require.NoError(t, f.products.Update(ctx, stale, &restock))
	assert.Equal(t, 25, f.products.Stock(id))
}

// Scenario: stock 10 at price 100; order 3, cancel, then an order for 8
// against the remaining 7 is refused.
func TestCreateCancelRoundTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Cement", 10, "100")

	o, _, err := f.svc.Create(ctx, f.customer, request(line(p, 3)), "")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(300).Equal(o.TotalAmount))
	assert.Equal(t, 7, f.products.Stock(p))

	cancelled, err := f.svc.Cancel(ctx, f.customer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)
	assert.Equal(t, 10, f.products.Stock(p))

	_, _, err = f.svc.Create(ctx, f.customer, request(line(p, 3)), "")
	require.NoError(t, err)
	assert.Equal(t, 7, f.products.Stock(p))

	_, _, err = f.svc.Create(ctx, f.customer, request(line(p, 8)), "")
	assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))
	assert.Equal(t, 7, f.products.Stock(p))
}

func TestCancel_Guards(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Sand", 10, "55")

	o, _, err := f.svc.Create(ctx, f.customer, request(line(p, 4)), "")
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, f.customer, uuid.NewString())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.Cancel(ctx, f.other, o.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Cancel(ctx, f.admin, o.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "only the customer may cancel")

	_, err = f.svc.Cancel(ctx, f.customer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, f.products.Stock(p))

	_, err = f.svc.Cancel(ctx, f.customer, o.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidTransition))
	assert.Equal(t, 10, f.products.Stock(p), "second cancel must not restore twice")
}

func TestCancel_DeliveredIsRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Steel", 10, "70")

	o, _, err := f.svc.Create(ctx, f.customer, request(line(p, 2)), "")
	require.NoError(t, err)
	for _, st := range []order.Status{order.StatusConfirmed, order.StatusProcessing, order.StatusShipped, order.StatusDelivered} {
		_, err := f.svc.UpdateStatus(ctx, f.admin, o.ID, order.UpdateStatusRequest{Status: st})
		require.NoError(t, err, st)
	}
	_, err = f.svc.Cancel(ctx, f.customer, o.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidTransition))
	assert.Equal(t, 8, f.products.Stock(p))
}

func TestUpdateStatus_TransitionTable(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Paint", 10, "900")

	o, _, err := f.svc.Create(ctx, f.customer, request(line(p, 1)), "")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.admin, o.ID, order.UpdateStatusRequest{Status: order.StatusShipped})
	assert.True(t, apperr.Is(err, apperr.KindInvalidTransition), "pending cannot jump to shipped")

	eta := time.Now().Add(72 * time.Hour)
	got, err := f.svc.UpdateStatus(ctx, f.admin, o.ID, order.UpdateStatusRequest{Status: order.StatusConfirmed, EstimatedDelivery: &eta})
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, got.Status)
	require.NotNil(t, got.EstimatedDelivery)

	// same status, tracking only
	got, err = f.svc.UpdateStatus(ctx, f.admin, o.ID, order.UpdateStatusRequest{Status: order.StatusConfirmed, TrackingNumber: "BLR1"})
	require.NoError(t, err)
	assert.Equal(t, "BLR1", got.TrackingNumber)

	for _, st := range []order.Status{order.StatusProcessing, order.StatusShipped, order.StatusDelivered} {
		got, err = f.svc.UpdateStatus(ctx, f.admin, o.ID, order.UpdateStatusRequest{Status: st})
		require.NoError(t, err)
	}
	assert.NotNil(t, got.ActualDelivery)

	got, err = f.svc.UpdateStatus(ctx, f.admin, o.ID, order.UpdateStatusRequest{Status: order.StatusRefunded, PaymentStatus: order.PaymentRefunded})
	require.NoError(t, err)
	assert.Equal(t, order.PaymentRefunded, got.PaymentStatus)

	_, err = f.svc.UpdateStatus(ctx, f.admin, o.ID, order.UpdateStatusRequest{Status: order.StatusPending})
	assert.True(t, apperr.Is(err, apperr.KindInvalidTransition))

	assert.Equal(t, []string{
		order.EventCreated,
		order.EventStatusChanged, // confirmed
		order.EventStatusChanged, // processing
		order.EventStatusChanged, // shipped
		order.EventStatusChanged, // delivered
		order.EventStatusChanged, // refunded
	}, f.events.types())
}

func TestUpdateStatus_CancelRestoresOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Gravel", 10, "30")

	o, _, err := f.svc.Create(ctx, f.customer, request(line(p, 6)), "")
	require.NoError(t, err)
	assert.Equal(t, 4, f.products.Stock(p))

	_, err = f.svc.UpdateStatus(ctx, f.supplier, o.ID, order.UpdateStatusRequest{Status: order.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, 10, f.products.Stock(p))

	_, err = f.svc.UpdateStatus(ctx, f.admin, o.ID, order.UpdateStatusRequest{Status: order.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, 10, f.products.Stock(p))
}

func TestUpdateStatus_Authorization(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Blocks", 10, "45")

	o, _, err := f.svc.Create(ctx, f.customer, request(line(p, 1)), "")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.customer, o.ID, order.UpdateStatusRequest{Status: order.StatusConfirmed})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	stranger := auth.Identity{ID: uuid.NewString(), Role: user.RoleSupplier}
	_, err = f.svc.UpdateStatus(ctx, stranger, o.ID, order.UpdateStatusRequest{Status: order.StatusConfirmed})
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "supplier without a line on the order")

	_, err = f.svc.UpdateStatus(ctx, f.supplier, o.ID, order.UpdateStatusRequest{Status: order.StatusConfirmed, PaymentStatus: order.PaymentPaid})
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "payment status is admin only")

	_, err = f.svc.UpdateStatus(ctx, f.supplier, uuid.NewString(), order.UpdateStatusRequest{Status: order.StatusConfirmed})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	got, err := f.svc.UpdateStatus(ctx, f.supplier, o.ID, order.UpdateStatusRequest{Status: order.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, got.Status)
}

func TestGet_Visibility(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Tiles", 10, "60")

	o, _, err := f.svc.Create(ctx, f.customer, request(line(p, 1)), "")
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, f.other, o.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Get(ctx, f.admin, o.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, f.customer, uuid.NewString())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestList_Pagination(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Cement", 1000, "10")

	var ids []string
	for i := 0; i < 25; i++ {
		o, _, err := f.svc.Create(ctx, f.customer, request(line(p, 1)), "")
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	_, _, err := f.svc.Create(ctx, f.other, request(line(p, 1)), "")
	require.NoError(t, err)

	page, total, err := f.svc.ListMine(ctx, f.customer, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, page, 10)
	// newest first: page 2 starts at the 15th order created
	assert.Equal(t, ids[14], page[0].ID)

	last, _, err := f.svc.ListMine(ctx, f.customer, 10, 20)
	require.NoError(t, err)
	assert.Len(t, last, 5)

	all, total, err := f.svc.ListAll(ctx, f.admin, order.Filter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 26, total)
	assert.Len(t, all, 10)

	_, _, err = f.svc.ListAll(ctx, f.customer, order.Filter{Limit: 10})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestListAll_Filters(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "Cement", 100, "10")

	a, _, err := f.svc.Create(ctx, f.customer, request(line(p, 1)), "")
	require.NoError(t, err)
	_, _, err = f.svc.Create(ctx, f.customer, request(line(p, 1)), "")
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, f.admin, a.ID, order.UpdateStatusRequest{Status: order.StatusConfirmed, PaymentStatus: order.PaymentPaid})
	require.NoError(t, err)

	got, total, err := f.svc.ListAll(ctx, f.admin, order.Filter{Status: order.StatusConfirmed, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, a.ID, got[0].ID)

	_, total, err = f.svc.ListAll(ctx, f.admin, order.Filter{PaymentStatus: order.PaymentPending, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, _, err = f.svc.ListAll(ctx, f.admin, order.Filter{Status: "lost", Limit: 10})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCreate_Idempotent(t *testing.T) {
	t.Parallel()
	idem := &memIdem{keys: map[string]idemEntry{}}
	f := newFixture(t, order.WithIdempotency(idem))
	ctx := context.Background()
	p := f.addProduct(t, "Cement", 10, "100")

	first, created, err := f.svc.Create(ctx, f.customer, request(line(p, 2)), "cart-42")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := f.svc.Create(ctx, f.customer, request(line(p, 2)), "cart-42")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 8, f.products.Stock(p))

	// the key is scoped to the customer
	_, created, err = f.svc.Create(ctx, f.other, request(line(p, 2)), "cart-42")
	require.NoError(t, err)
	assert.True(t, created)

	// a failed attempt frees the key for a retry
	_, _, err = f.svc.Create(ctx, f.customer, request(line(p, 50)), "cart-43")
	require.Error(t, err)
	_, created, err = f.svc.Create(ctx, f.customer, request(line(p, 1)), "cart-43")
	require.NoError(t, err)
	assert.True(t, created)

	_, _, err = f.svc.Create(ctx, f.customer, request(line(p, 1)), "busy")
	require.NoError(t, err)
	// same body, still in flight
	idem.keys[f.customer.ID+":busy"] = idemEntry{fp: idem.keys[f.customer.ID+":busy"].fp}
	_, _, err = f.svc.Create(ctx, f.customer, request(line(p, 1)), "busy")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestCreate_IdempotencyKeyWithDifferentBody(t *testing.T) {
	t.Parallel()
	idem := &memIdem{keys: map[string]idemEntry{}}
	f := newFixture(t, order.WithIdempotency(idem))
	ctx := context.Background()
	p := f.addProduct(t, "Cement", 10, "100")

	_, created, err := f.svc.Create(ctx, f.customer, request(line(p, 2)), "cart-7")
	require.NoError(t, err)
	assert.True(t, created)

	_, _, err = f.svc.Create(ctx, f.customer, request(line(p, 5)), "cart-7")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "Idempotency-Key was already used with a different request", ae.Msg)
	assert.Equal(t, 8, f.products.Stock(p))

	_, total, err := f.svc.ListMine(ctx, f.customer, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCreate_PublishFailureDoesNotFailOrder(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.events.fail = true
	p := f.addProduct(t, "Cement", 10, "100")

	_, _, err := f.svc.Create(context.Background(), f.customer, request(line(p, 1)), "")
	require.NoError(t, err)
	assert.Equal(t, 9, f.products.Stock(p))
}

func TestCreate_ConcurrentOrdersNeverOversell(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	p := f.addProduct(t, "Scarce", 10, "100")

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.Create(context.Background(), f.customer, request(line(p, 1)), "")
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, ok)
	assert.Equal(t, 0, f.products.Stock(p))
}
