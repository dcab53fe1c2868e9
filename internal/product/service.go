package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/construmarket/internal/apperr"
)

type Service struct {
	repo Repository
	log  *logrus.Logger
}

func NewService(repo Repository, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Create(ctx context.Context, supplierID string, in CreateProductRequest) (*Product, error) {
	if in.Price.IsNegative() {
		return nil, apperr.Validation("Validation failed", "price must be greater than or equal to 0")
	}
	p := &Product{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Description:    strings.TrimSpace(in.Description),
		Category:       in.Category,
		Subcategory:    in.Subcategory,
		Brand:          in.Brand,
		Model:          in.Model,
		Specifications: in.Specifications,
		Price:          *in.Price,
		Unit:           in.Unit,
		Currency:       in.Currency,
		Images:         in.Images,
		SupplierID:     supplierID,
		Inventory: Inventory{
			Quantity:    *in.Inventory.Quantity,
			MinQuantity: in.Inventory.MinQuantity,
			MaxQuantity: in.Inventory.MaxQuantity,
		},
		Location:   Location(in.Location),
		Tags:       in.Tags,
		IsActive:   true,
		IsFeatured: in.IsFeatured,
	}
	if p.Currency == "" {
		p.Currency = "INR"
	}
	if p.Specifications == nil {
		p.Specifications = map[string]string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.Inventory.IsInStock = p.Inventory.Quantity > 0
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperr.Internal(err)
	}
	s.log.WithFields(logrus.Fields{"product_id": p.ID, "supplier_id": supplierID}).Info("product created")
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, apperr.Internal(err)
	}
	return p, nil
}

// List returns one page of q plus the number of products matching it.
func (s *Service) List(ctx context.Context, q Query) ([]Product, int, error) {
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return nil, 0, apperr.Validation("minPrice cannot exceed maxPrice")
	}
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return items, total, nil
}

func (s *Service) Categories(ctx context.Context) ([]CategoryCount, error) {
	out, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// owned loads id and checks that actorID may modify it.
func (s *Service) owned(ctx context.Context, id, actorID string, admin bool) (*Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && p.SupplierID != actorID {
		return nil, apperr.Forbidden("Not authorized to modify this product")
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id, actorID string, admin bool, in UpdateProductRequest) (*Product, error) {
	p, err := s.owned(ctx, id, actorID, admin)
	if err != nil {
		return nil, err
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, apperr.Validation("Validation failed", "price must be greater than or equal to 0")
	}
	in.apply(p)
	if err := s.repo.Update(ctx, p, in.Quantity); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, apperr.Internal(err)
	}
	s.log.WithFields(logrus.Fields{"product_id": p.ID, "actor_id": actorID}).Info("product updated")
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id, actorID string, admin bool) error {
	if _, err := s.owned(ctx, id, actorID, admin); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if !ok {
		return apperr.NotFound("Product not found")
	}
	s.log.WithFields(logrus.Fields{"product_id": id, "actor_id": actorID}).Info("product deleted")
	return nil
}

func (in UpdateProductRequest) apply(p *Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Subcategory != nil {
		p.Subcategory = *in.Subcategory
	}
	if in.Brand != nil {
		p.Brand = *in.Brand
	}
	if in.Model != nil {
		p.Model = *in.Model
	}
	if in.Specifications != nil {
		p.Specifications = in.Specifications
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Unit != nil {
		p.Unit = *in.Unit
	}
	if len(in.Images) > 0 {
		p.Images = in.Images
	}
	if in.MinQuantity != nil {
		p.Inventory.MinQuantity = *in.MinQuantity
	}
	if in.MaxQuantity != nil {
		p.Inventory.MaxQuantity = *in.MaxQuantity
	}
	if in.Location != nil {
		p.Location = Location(*in.Location)
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
}
