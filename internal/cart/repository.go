package cart

import (
	"context"

	"gorm.io/gorm"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/pkg/common"
)

// Repository handles database operations for carts and their lines
type Repository interface {
	Find(ctx context.Context, accountID int64) (*domain.Cart, error)
	Ensure(ctx context.Context, accountID int64) (*domain.Cart, error)
	Items(ctx context.Context, cartID int64) ([]domain.CartItem, error)
	GetItem(ctx context.Context, cartID, productID int64) (*domain.CartItem, error)
	CreateItem(ctx context.Context, item *domain.CartItem) error
	SetQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, cartID, itemID int64) error
}

// GormRepository is the GORM implementation of Repository
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Find(ctx context.Context, accountID int64) (*domain.Cart, error) {
	var c domain.Cart
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Ensure returns the account's cart, creating it on first use.
func (r *GormRepository) Ensure(ctx context.Context, accountID int64) (*domain.Cart, error) {
	var c domain.Cart
	err := r.db.WithContext(ctx).
		Where(domain.Cart{AccountID: accountID}).
		Attrs(domain.Cart{ID: common.UUIDint64()}).
		FirstOrCreate(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepository) Items(ctx context.Context, cartID int64) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *GormRepository) GetItem(ctx context.Context, cartID, productID int64) (*domain.CartItem, error) {
	var it domain.CartItem
	err := r.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).First(&it).Error
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *GormRepository) CreateItem(ctx context.Context, item *domain.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *GormRepository) SetQuantity(ctx context.Context, itemID int64, quantity int) error {
	return r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *GormRepository) DeleteItem(ctx context.Context, cartID, itemID int64) error {
	return r.db.WithContext(ctx).Where("cart_id = ? AND id = ?", cartID, itemID).Delete(&domain.CartItem{}).Error
}

// ClearTx empties the account's cart inside tx, keeping the cart record.
func ClearTx(tx *gorm.DB, accountID int64) error {
	sub := tx.Session(&gorm.Session{NewDB: true}).Model(&domain.Cart{}).Select("id").Where("account_id = ?", accountID)
	return tx.Where("cart_id IN (?)", sub).Delete(&domain.CartItem{}).Error
}
