package account

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

// Repository handles database operations for accounts and reset tokens
type Repository interface {
	Create(ctx context.Context, a *domain.Account) error
	Save(ctx context.Context, a *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
	List(ctx context.Context, role domain.Role, page, pageSize int) ([]domain.Account, int64, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]domain.Account, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	Delete(ctx context.Context, id int64) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error

	CreateReset(ctx context.Context, r *domain.PasswordReset) error
	GetReset(ctx context.Context, token string) (*domain.PasswordReset, error)
	MarkResetUsed(ctx context.Context, id int64, at time.Time) error
	PurgeResets(ctx context.Context, before time.Time) (int64, error)
}

// GormRepository is the GORM implementation of Repository
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM-based repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, a *domain.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *GormRepository) Save(ctx context.Context, a *domain.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	var a domain.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var a domain.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepository) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("email = ? AND id != ?", email, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRepository) List(ctx context.Context, role domain.Role, page, pageSize int) ([]domain.Account, int64, error) {
	var rows []domain.Account
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Account{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	return rows, total, err
}

func (r *GormRepository) GetMany(ctx context.Context, ids []int64) (map[int64]domain.Account, error) {
	result := make(map[int64]domain.Account, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []domain.Account
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, a := range rows {
		result[a.ID] = a
	}
	return result, nil
}

func (r *GormRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Account{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Account{}).Error
}

func (r *GormRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&domain.Account{}).Where("id = ?", id).Updates(fields).Error
}

func (r *GormRepository) CreateReset(ctx context.Context, pr *domain.PasswordReset) error {
	return r.db.WithContext(ctx).Create(pr).Error
}

func (r *GormRepository) GetReset(ctx context.Context, token string) (*domain.PasswordReset, error) {
	var pr domain.PasswordReset
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&pr).Error
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (r *GormRepository) MarkResetUsed(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.PasswordReset{}).
		Where("id = ?", id).
		Update("used_at", at).Error
}

func (r *GormRepository) PurgeResets(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&domain.PasswordReset{})
	return res.RowsAffected, res.Error
}
