package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/MikeMC777/construmarket/internal/product"
)

type ProductRepo struct{ s *Store }

func cloneProduct(p *product.Product) *product.Product {
	cp := *p
	if p.Specifications != nil {
		cp.Specifications = make(map[string]string, len(p.Specifications))
		for k, v := range p.Specifications {
			cp.Specifications[k] = v
		}
	}
	cp.Images = append([]string(nil), p.Images...)
	cp.Tags = append([]string(nil), p.Tags...)
	cp.Inventory.IsInStock = cp.Inventory.Quantity > 0
	return &cp
}

func (r *ProductRepo) Create(_ context.Context, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now().UTC()
	p.CreatedAt, p.UpdatedAt, p.Inventory.LastUpdated = now, now, now
	r.s.products[p.ID] = cloneProduct(p)
	r.s.productSeq[p.ID] = r.s.seq()
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return cloneProduct(p), nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func matchProduct(p *product.Product, q product.Query) bool {
	if q.ActiveOnly && !p.IsActive {
		return false
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.SupplierID != "" && p.SupplierID != q.SupplierID {
		return false
	}
	if q.City != "" && !containsFold(p.Location.City, q.City) {
		return false
	}
	if q.State != "" && !containsFold(p.Location.State, q.State) {
		return false
	}
	if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
		return false
	}
	if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
		return false
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		if !containsFold(p.Name, s) && !containsFold(p.Description, s) && !containsFold(strings.Join(p.Tags, " "), s) {
			return false
		}
	}
	return true
}

func (r *ProductRepo) List(_ context.Context, q product.Query) ([]product.Product, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var hits []*product.Product
	for _, p := range r.s.products {
		if matchProduct(p, q) {
			hits = append(hits, p)
		}
	}

	newer := func(a, b *product.Product) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.s.productSeq[a.ID] > r.s.productSeq[b.ID]
	}
	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		var c int
		switch q.SortBy {
		case "price":
			c = a.Price.Cmp(b.Price)
		case "rating":
			switch {
			case a.Ratings.Average < b.Ratings.Average:
				c = -1
			case a.Ratings.Average > b.Ratings.Average:
				c = 1
			}
		case "name":
			c = strings.Compare(a.Name, b.Name)
		case "created":
			c = -1
			if newer(a, b) {
				c = 1
			}
		}
		if q.SortDesc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return newer(a, b)
	})

	total := len(hits)
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	start := q.Offset
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

	out := make([]product.Product, 0, end-start)
	for _, p := range hits[start:end] {
		out = append(out, *cloneProduct(p))
	}
	return out, total, nil
}

func (r *ProductRepo) Update(_ context.Context, p *product.Product, stock *int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.products[p.ID]
	if !ok {
		return product.ErrNotFound
	}
	now := r.s.now().UTC()
	next := cloneProduct(p)
	next.SupplierID = cur.SupplierID
	next.Currency = cur.Currency
	next.Ratings = cur.Ratings
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = now
	next.Inventory.Quantity = cur.Inventory.Quantity
	next.Inventory.LastUpdated = cur.Inventory.LastUpdated
	if stock != nil && *stock != cur.Inventory.Quantity {
		next.Inventory.Quantity = *stock
		next.Inventory.LastUpdated = now
	}
	next.Inventory.IsInStock = next.Inventory.Quantity > 0
	r.s.products[p.ID] = next
	return nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return false, nil
	}
	delete(r.s.products, id)
	delete(r.s.productSeq, id)
	return true, nil
}

func (r *ProductRepo) Categories(_ context.Context) ([]product.CategoryCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := map[product.Category]int{}
	for _, p := range r.s.products {
		if p.IsActive {
			counts[p.Category]++
		}
	}
	out := make([]product.CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, product.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// Stock reports the on-hand quantity of a product, or -1 when it is absent.
func (r *ProductRepo) Stock(id string) int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.products[id]; ok {
		return p.Inventory.Quantity
	}
	return -1
}

// reserve and release mirror product.ReserveStock and product.ReleaseStock.
// Callers hold s.mu.
func (s *Store) reserve(id string, qty int, at time.Time) (undo func(), err error) {
	p, ok := s.products[id]
	if !ok || !p.IsActive || p.Inventory.Quantity < qty {
		return nil, product.ErrStockConflict
	}
	prevQty, prevAt := p.Inventory.Quantity, p.Inventory.LastUpdated
	p.Inventory.Quantity -= qty
	p.Inventory.LastUpdated = at
	return func() { p.Inventory.Quantity, p.Inventory.LastUpdated = prevQty, prevAt }, nil
}

func (s *Store) release(id string, qty int, at time.Time) (undo func(), err error) {
	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	prevQty, prevAt := p.Inventory.Quantity, p.Inventory.LastUpdated
	p.Inventory.Quantity += qty
	p.Inventory.LastUpdated = at
	return func() { p.Inventory.Quantity, p.Inventory.LastUpdated = prevQty, prevAt }, nil
}
