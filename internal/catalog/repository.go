package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

// Filter narrows product listings
type Filter struct {
	Category string
	Query    string
	Sort     string
	Order    string
	Page     int
	PageSize int
}

// Repository handles database operations for products
type Repository interface {
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product, columns []string) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	List(ctx context.Context, f Filter) ([]domain.Product, int64, error)
	LowStock(ctx context.Context, threshold int) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

// GormRepository is the GORM implementation of Repository
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Update writes only the named columns of p.
func (r *GormRepository) Update(ctx context.Context, p *domain.Product, columns []string) error {
	return r.db.WithContext(ctx).Model(p).Select(columns).Updates(p).Error
}

// Delete removes the product together with cart and wishlist lines that
// point at it. Order lines keep their snapshot.
func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.WishlistItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepository) GetMany(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	result := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []domain.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		result[p.ID] = p
	}
	return result, nil
}

// whitelist of sortable columns
var sortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"price":      "price",
	"stock":      "stock",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func (r *GormRepository) List(ctx context.Context, f Filter) ([]domain.Product, int64, error) {
	db := r.db.WithContext(ctx).Model(&domain.Product{})
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		if strings.EqualFold(r.db.Name(), "postgres") {
			db = db.Where("name ILIKE ? OR description ILIKE ?", "%"+q+"%", "%"+q+"%")
		} else {
			like := "%" + strings.ToLower(q) + "%"
			db = db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortCol, ok := sortColumns[f.Sort]
	if !ok {
		sortCol = "created_at"
	}
	order := strings.ToUpper(f.Order)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	var rows []domain.Product
	err := db.Order(sortCol + " " + order).
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&rows).Error
	return rows, total, err
}

func (r *GormRepository) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	var rows []domain.Product
	err := r.db.WithContext(ctx).
		Where("stock <= ?", threshold).
		Order("stock ASC, name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *GormRepository) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &cats).Error
	return cats, err
}

func (r *GormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&n).Error
	return n, err
}
