// Package memstore keeps users, products and orders in process memory. It
// backs STORE_DRIVER=memory and the service and handler tests, and honours
// the same contracts as the Postgres repositories, including all-or-nothing
// order transactions.
package memstore

import (
	"sync"
	"time"

	"github.com/MikeMC777/construmarket/internal/order"
	"github.com/MikeMC777/construmarket/internal/product"
	"github.com/MikeMC777/construmarket/internal/user"
)

type Store struct {
	mu sync.Mutex

	users    map[string]*user.User
	products map[string]*product.Product
	orders   map[string]*order.Order

	// insertion order, used as a tie-breaker when timestamps collide
	productSeq map[string]int64
	orderSeq   map[string]int64
	nextSeq    int64
	numberSeq  int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:      map[string]*user.User{},
		products:   map[string]*product.Product{},
		orders:     map[string]*order.Order{},
		productSeq: map[string]int64{},
		orderSeq:   map[string]int64{},
		now:        time.Now,
	}
}

// Users returns a user.Repository view of s.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Products returns a product.Repository view of s.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Orders returns an order.Store view of s.
func (s *Store) Orders() *OrderStore { return &OrderStore{s: s} }

func (s *Store) seq() int64 {
	s.nextSeq++
	return s.nextSeq
}

var (
	_ user.Repository    = (*UserRepo)(nil)
	_ product.Repository = (*ProductRepo)(nil)
	_ order.Store        = (*OrderStore)(nil)
)
