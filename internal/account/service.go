package account

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/config"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/pkg/common"
)

const (
	// ResetTokenTTL lifetime of a password reset token
	ResetTokenTTL     = time.Hour
	minPasswordLength = 6
	superRemark       = "super"
)

// Service is the account directory: customers, staff and administrators.
type Service struct {
	repo      Repository
	publisher domain.Publisher
	hashCost  int
}

type Option func(*Service)

// WithHashCost overrides the bcrypt cost, tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func NewService(repo Repository, publisher domain.Publisher, opts ...Option) *Service {
	if publisher == nil {
		publisher = domain.NopPublisher{}
	}
	s := &Service{repo: repo, publisher: publisher, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput self registration request, always creates a customer
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Address  domain.Address
}

// ProfileInput partial profile update, nil fields are kept
type ProfileInput struct {
	Name            *string
	Address         *domain.Address
	CurrentPassword string
	NewPassword     string
}

// StaffInput admin managed staff account
type StaffInput struct {
	Name     string
	Email    string
	Password string
}

// StaffUpdate partial staff update, nil fields are kept
type StaffUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(b), nil
}

func checkPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return domain.Validation("Password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, exceptID int64) error {
	taken, err := s.repo.EmailTaken(ctx, email, exceptID)
	if err != nil {
		return domain.Internal(err, "Failed to query accounts")
	}
	if taken {
		return domain.Conflict("Email already registered")
	}
	return nil
}

func (s *Service) create(ctx context.Context, name, email, password string, role domain.Role, addr domain.Address) (*domain.Account, error) {
	name = strings.TrimSpace(name)
	email = common.NormalizeEmail(email)
	if name == "" {
		return nil, domain.Validation("Name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Validation("A valid email is required")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}
	hashed, err := s.hash(password)
	if err != nil {
		return nil, domain.Internal(err, "Failed to create account")
	}
	a := &domain.Account{
		ID:       common.UUIDint64(),
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     role,
		Address:  addr,
		Status:   common.ENABLED,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, domain.Internal(err, "Failed to create account")
	}
	zap.L().Info("account created",
		zap.String("namespace", "account"),
		zap.Int64("id", a.ID),
		zap.String("role", string(role)))
	return a, nil
}

// Register creates a customer account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	return s.create(ctx, in.Name, in.Email, in.Password, domain.RoleCustomer, in.Address)
}

// Authenticate checks credentials and records the login time.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	a, err := s.repo.GetByEmail(ctx, common.NormalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.Unauthenticated("Invalid email or password")
	} else if err != nil {
		return nil, domain.Internal(err, "Failed to query account")
	}
	if !checkPassword(a.Password, password) {
		return nil, domain.Unauthenticated("Invalid email or password")
	}
	if !a.Active() {
		return nil, domain.Forbidden("Account is disabled")
	}
	now := time.Now()
	if err := s.repo.UpdateFields(ctx, a.ID, map[string]interface{}{"last_login": now}); err != nil {
		zap.L().Warn("failed to record last login", zap.Int64("id", a.ID), zap.Error(err))
	}
	a.LastLogin = &now
	return a, nil
}

// Get loads an account by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Account, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("Account not found")
	} else if err != nil {
		return nil, domain.Internal(err, "Failed to query account")
	}
	return a, nil
}

// GetMany resolves several accounts at once, missing ids are omitted.
func (s *Service) GetMany(ctx context.Context, ids []int64) (map[int64]domain.Account, error) {
	m, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return nil, domain.Internal(err, "Failed to query accounts")
	}
	return m, nil
}

// UpdateProfile applies a self-service profile change. Changing the
// password requires the current one.
func (s *Service) UpdateProfile(ctx context.Context, id int64, in ProfileInput) (*domain.Account, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Validation("Name is required")
		}
		a.Name = name
	}
	if in.Address != nil {
		a.Address = *in.Address
	}
	if in.NewPassword != "" {
		if !checkPassword(a.Password, in.CurrentPassword) {
			return nil, domain.Validation("Current password is incorrect")
		}
		if err := validatePassword(in.NewPassword); err != nil {
			return nil, err
		}
		if a.Password, err = s.hash(in.NewPassword); err != nil {
			return nil, domain.Internal(err, "Failed to update profile")
		}
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, domain.Internal(err, "Failed to update profile")
	}
	return a, nil
}

// ForgotPassword issues a reset token for a known email. Unknown emails
// succeed silently so the endpoint cannot be used to probe accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	a, err := s.repo.GetByEmail(ctx, common.NormalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		zap.L().Info("password reset requested for unknown email", zap.String("namespace", "account"))
		return nil
	} else if err != nil {
		return domain.Internal(err, "Failed to query account")
	}
	if !a.Active() {
		return nil
	}
	pr := &domain.PasswordReset{
		ID:        common.UUIDint64(),
		AccountID: a.ID,
		Token:     strings.ReplaceAll(uuid.NewString(), "-", ""),
		ExpiresAt: time.Now().Add(ResetTokenTTL),
	}
	if err := s.repo.CreateReset(ctx, pr); err != nil {
		return domain.Internal(err, "Failed to create reset token")
	}
	s.publisher.Publish(domain.TopicPasswordReset, domain.PasswordResetEvent{
		Account:   *a,
		Token:     pr.Token,
		ExpiresAt: pr.ExpiresAt,
	})
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	pr, err := s.repo.GetReset(ctx, strings.TrimSpace(token))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Validation("Invalid or expired reset token")
	} else if err != nil {
		return domain.Internal(err, "Failed to query reset token")
	}
	if pr.UsedAt != nil || time.Now().After(pr.ExpiresAt) {
		return domain.Validation("Invalid or expired reset token")
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	hashed, err := s.hash(password)
	if err != nil {
		return domain.Internal(err, "Failed to reset password")
	}
	if err := s.repo.UpdateFields(ctx, pr.AccountID, map[string]interface{}{
		"password":   hashed,
		"updated_at": time.Now(),
	}); err != nil {
		return domain.Internal(err, "Failed to reset password")
	}
	if err := s.repo.MarkResetUsed(ctx, pr.ID, time.Now()); err != nil {
		return domain.Internal(err, "Failed to reset password")
	}
	zap.L().Info("password reset", zap.String("namespace", "account"), zap.Int64("id", pr.AccountID))
	return nil
}

// PurgeExpiredResets removes reset tokens past their expiry.
func (s *Service) PurgeExpiredResets(ctx context.Context) (int64, error) {
	return s.repo.PurgeResets(ctx, time.Now())
}

// List returns accounts, optionally restricted to one role.
func (s *Service) List(ctx context.Context, role domain.Role, page, pageSize int) ([]domain.Account, int64, error) {
	rows, total, err := s.repo.List(ctx, role, page, pageSize)
	if err != nil {
		return nil, 0, domain.Internal(err, "Failed to query accounts")
	}
	return rows, total, nil
}

// CountCustomers number of customer accounts.
func (s *Service) CountCustomers(ctx context.Context) (int64, error) {
	return s.repo.CountByRole(ctx, domain.RoleCustomer)
}

func (s *Service) getStaff(ctx context.Context, id int64) (*domain.Account, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && a.Role != domain.RoleStaff) {
		return nil, domain.NotFound("Staff member not found")
	} else if err != nil {
		return nil, domain.Internal(err, "Failed to query staff")
	}
	return a, nil
}

// CreateStaff creates a staff account.
func (s *Service) CreateStaff(ctx context.Context, in StaffInput) (*domain.Account, error) {
	return s.create(ctx, in.Name, in.Email, in.Password, domain.RoleStaff, domain.Address{})
}

// UpdateStaff edits name, email and optionally the password of a staff account.
func (s *Service) UpdateStaff(ctx context.Context, id int64, in StaffUpdate) (*domain.Account, error) {
	a, err := s.getStaff(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Validation("Name is required")
		}
		a.Name = name
	}
	if in.Email != nil {
		email := common.NormalizeEmail(*in.Email)
		if email == "" || !strings.Contains(email, "@") {
			return nil, domain.Validation("A valid email is required")
		}
		if email != a.Email {
			if err := s.ensureEmailFree(ctx, email, a.ID); err != nil {
				return nil, err
			}
			a.Email = email
		}
	}
	if in.Password != nil && *in.Password != "" {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		if a.Password, err = s.hash(*in.Password); err != nil {
			return nil, domain.Internal(err, "Failed to update staff")
		}
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, domain.Internal(err, "Failed to update staff")
	}
	return a, nil
}

// DeleteStaff removes a staff account.
func (s *Service) DeleteStaff(ctx context.Context, id int64) error {
	if _, err := s.getStaff(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.Internal(err, "Failed to delete staff")
	}
	zap.L().Info("staff deleted", zap.String("namespace", "account"), zap.Int64("id", id))
	return nil
}

// SetActive enables or disables a staff account without deleting it.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) (*domain.Account, error) {
	a, err := s.getStaff(ctx, id)
	if err != nil {
		return nil, err
	}
	status := common.DISABLED
	if active {
		status = common.ENABLED
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}); err != nil {
		return nil, domain.Internal(err, "Failed to update staff access")
	}
	a.Status = status
	zap.L().Info("staff access changed",
		zap.String("namespace", "account"),
		zap.Int64("id", id),
		zap.String("status", status))
	return a, nil
}

// EnsureSuperuser creates or repairs the configured administrator so the
// configured credentials always sign in with the admin role.
func (s *Service) EnsureSuperuser(ctx context.Context, cfg config.SuperuserConfig) (*domain.Account, error) {
	email := common.NormalizeEmail(cfg.Email)
	if email == "" || cfg.Password == "" {
		return nil, domain.Validation("superuser email and password are required")
	}
	a, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, err := s.hash(cfg.Password)
		if err != nil {
			return nil, err
		}
		a = &domain.Account{
			ID:       common.UUIDint64(),
			Name:     common.IfEmptyStr(cfg.Name, "administrator"),
			Email:    email,
			Password: hashed,
			Role:     domain.RoleAdmin,
			Status:   common.ENABLED,
			Remark:   superRemark,
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return nil, errors.Wrap(err, "create superuser")
		}
		zap.L().Info("initialized superuser account", zap.String("email", email))
		return a, nil
	case err != nil:
		return nil, errors.Wrap(err, "query superuser")
	}

	resetPassword := !checkPassword(a.Password, cfg.Password)
	resetRole := a.Role != domain.RoleAdmin
	resetStatus := !a.Active()
	if !resetPassword && !resetRole && !resetStatus {
		return a, nil
	}
	if resetPassword {
		if a.Password, err = s.hash(cfg.Password); err != nil {
			return nil, err
		}
	}
	a.Role = domain.RoleAdmin
	a.Status = common.ENABLED
	a.Remark = superRemark
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, errors.Wrap(err, "repair superuser")
	}
	zap.L().Warn("repaired superuser account",
		zap.String("email", email),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole),
		zap.Bool("statusEnabled", resetStatus))
	return a, nil
}
