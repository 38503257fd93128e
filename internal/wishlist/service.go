package wishlist

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/pkg/common"
)

// ProductLoader is the part of the catalog the wishlist needs.
type ProductLoader interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
}

// Entry a wishlist item with product details
type Entry struct {
	ID        int64           `json:"id,string"`
	ProductID int64           `json:"product_id,string"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Mrp       decimal.Decimal `json:"mrp"`
	Stock     int             `json:"stock"`
	AddedAt   time.Time       `json:"added_at"`
}

type Service struct {
	db       *gorm.DB
	products ProductLoader
}

func NewService(db *gorm.DB, products ProductLoader) *Service {
	return &Service{db: db, products: products}
}

func (s *Service) find(ctx context.Context, accountID int64) (*domain.Wishlist, error) {
	var w domain.Wishlist
	err := s.db.WithContext(ctx).Where("account_id = ?", accountID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Add puts a product on the wishlist. Adding it twice is a Conflict.
func (s *Service) Add(ctx context.Context, accountID, productID int64) ([]Entry, error) {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}
	var w domain.Wishlist
	err := s.db.WithContext(ctx).
		Where(domain.Wishlist{AccountID: accountID}).
		Attrs(domain.Wishlist{ID: common.UUIDint64()}).
		FirstOrCreate(&w).Error
	if err != nil {
		return nil, domain.Internal(err, "Failed to create wishlist")
	}

	var n int64
	err = s.db.WithContext(ctx).Model(&domain.WishlistItem{}).
		Where("wishlist_id = ? AND product_id = ?", w.ID, productID).
		Count(&n).Error
	if err != nil {
		return nil, domain.Internal(err, "Failed to query wishlist")
	}
	if n > 0 {
		return nil, domain.Conflict("Product already in wishlist")
	}
	item := &domain.WishlistItem{ID: common.UUIDint64(), WishlistID: w.ID, ProductID: productID}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		// lost a race against the unique index
		if s.contains(ctx, w.ID, productID) {
			return nil, domain.Conflict("Product already in wishlist")
		}
		return nil, domain.Internal(err, "Failed to update wishlist")
	}
	zap.L().Debug("wishlist add",
		zap.String("namespace", "wishlist"),
		zap.Int64("account", accountID),
		zap.Int64("product", productID))
	return s.entries(ctx, w.ID)
}

func (s *Service) contains(ctx context.Context, wishlistID, productID int64) bool {
	var n int64
	s.db.WithContext(ctx).Model(&domain.WishlistItem{}).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Count(&n)
	return n > 0
}

// Remove drops a product from the wishlist.
func (s *Service) Remove(ctx context.Context, accountID, productID int64) ([]Entry, error) {
	w, err := s.find(ctx, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("Wishlist not found")
	} else if err != nil {
		return nil, domain.Internal(err, "Failed to query wishlist")
	}
	res := s.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", w.ID, productID).
		Delete(&domain.WishlistItem{})
	if res.Error != nil {
		return nil, domain.Internal(res.Error, "Failed to update wishlist")
	}
	if res.RowsAffected == 0 {
		return nil, domain.NotFound("Product not in wishlist")
	}
	return s.entries(ctx, w.ID)
}

// List returns the wishlist, empty when none exists.
func (s *Service) List(ctx context.Context, accountID int64) ([]Entry, error) {
	w, err := s.find(ctx, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []Entry{}, nil
	} else if err != nil {
		return nil, domain.Internal(err, "Failed to query wishlist")
	}
	return s.entries(ctx, w.ID)
}

// Contains reports whether the product is on the customer's wishlist.
func (s *Service) Contains(ctx context.Context, accountID, productID int64) (bool, error) {
	w, err := s.find(ctx, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	} else if err != nil {
		return false, domain.Internal(err, "Failed to query wishlist")
	}
	return s.contains(ctx, w.ID, productID), nil
}

func (s *Service) entries(ctx context.Context, wishlistID int64) ([]Entry, error) {
	var items []domain.WishlistItem
	err := s.db.WithContext(ctx).Where("wishlist_id = ?", wishlistID).Order("created_at DESC").Find(&items).Error
	if err != nil {
		return nil, domain.Internal(err, "Failed to query wishlist")
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		out = append(out, Entry{
			ID:        it.ID,
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			Category:  p.Category,
			Price:     p.Price,
			Mrp:       p.Mrp,
			Stock:     p.Stock,
			AddedAt:   it.CreatedAt,
		})
	}
	return out, nil
}
