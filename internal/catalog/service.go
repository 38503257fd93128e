package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/pkg/common"
)

const maxPageSize = 500

// ProductInput carries product fields from a create or update request.
// Nil fields are left unchanged on update.
type ProductInput struct {
	Name              *string
	Price             *decimal.Decimal
	Mrp               *decimal.Decimal
	Discount          *float64
	Tag               *string
	Stock             *int
	LowStockThreshold *int
	Description       *string
	Category          *string
	Image             *string
}

// Service is the catalog store.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// apply copies the set fields onto p and returns the columns they map to.
func (in ProductInput) apply(p *domain.Product) []string {
	var cols []string
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
		cols = append(cols, "name")
	}
	if in.Price != nil {
		p.Price = *in.Price
		cols = append(cols, "price")
	}
	if in.Mrp != nil {
		p.Mrp = *in.Mrp
		cols = append(cols, "mrp")
	}
	if in.Discount != nil {
		p.Discount = *in.Discount
		cols = append(cols, "discount")
	}
	if in.Tag != nil {
		p.Tag = strings.TrimSpace(*in.Tag)
		cols = append(cols, "tag")
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
		cols = append(cols, "stock")
	}
	if in.LowStockThreshold != nil {
		p.LowStockThreshold = *in.LowStockThreshold
		cols = append(cols, "low_stock_threshold")
	}
	if in.Description != nil {
		p.Description = *in.Description
		cols = append(cols, "description")
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
		cols = append(cols, "category")
	}
	if in.Image != nil {
		p.Image = strings.TrimSpace(*in.Image)
		cols = append(cols, "image")
	}
	return cols
}

// Validate enforces the product write rules.
func Validate(p *domain.Product) error {
	switch {
	case p.Name == "":
		return domain.Validation("Name is required")
	case p.Category == "":
		return domain.Validation("Category is required")
	case !p.Price.IsPositive():
		return domain.Validation("Price must be greater than 0")
	case p.Mrp.IsNegative():
		return domain.Validation("MRP must not be negative")
	case p.Mrp.LessThan(p.Price):
		return domain.Validation("MRP must be greater than or equal to price")
	case p.Discount < 0 || p.Discount > 100:
		return domain.Validation("Discount must be between 0 and 100")
	case p.Stock < 0:
		return domain.Validation("Stock must not be negative")
	case p.LowStockThreshold < 0:
		return domain.Validation("Low stock threshold must not be negative")
	}
	return nil
}

// Create adds a product. MRP defaults to the price when omitted.
func (s *Service) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p := &domain.Product{
		ID:                common.UUIDint64(),
		LowStockThreshold: domain.DefaultLowStockThreshold,
	}
	in.apply(p)
	if in.Mrp == nil {
		p.Mrp = p.Price
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, domain.Internal(err, "Failed to create product")
	}
	zap.L().Info("product created",
		zap.String("namespace", "catalog"),
		zap.Int64("id", p.ID),
		zap.String("name", p.Name),
		zap.Int("stock", p.Stock))
	return p, nil
}

// Update changes the given fields of an existing product. Only those
// columns are written, so stock moved by concurrent orders is kept unless
// the input sets it.
func (s *Service) Update(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cols := in.apply(p)
	if err := Validate(p); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return p, nil
	}
	p.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, p, append(cols, "updated_at")); err != nil {
		return nil, domain.Internal(err, "Failed to update product")
	}
	if p, err = s.Get(ctx, id); err != nil {
		return nil, err
	}
	zap.L().Info("product updated",
		zap.String("namespace", "catalog"),
		zap.Int64("id", p.ID),
		zap.Int("stock", p.Stock))
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound("Product not found")
	} else if err != nil {
		return domain.Internal(err, "Failed to delete product")
	}
	zap.L().Info("product deleted", zap.String("namespace", "catalog"), zap.Int64("id", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("Product not found")
	} else if err != nil {
		return nil, domain.Internal(err, "Failed to query product")
	}
	return p, nil
}

// GetMany loads several products keyed by id, missing ids are omitted.
func (s *Service) GetMany(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	m, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return nil, domain.Internal(err, "Failed to query products")
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]domain.Product, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > maxPageSize {
		f.PageSize = 20
	}
	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, domain.Internal(err, "Failed to query products")
	}
	return rows, total, nil
}

// LowStock lists products at or below threshold, DefaultLowStockThreshold when <= 0.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	if threshold <= 0 {
		threshold = domain.DefaultLowStockThreshold
	}
	rows, err := s.repo.LowStock(ctx, threshold)
	if err != nil {
		return nil, domain.Internal(err, "Failed to query products")
	}
	return rows, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, domain.Internal(err, "Failed to query categories")
	}
	return cats, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, domain.Internal(err, "Failed to count products")
	}
	return n, nil
}
