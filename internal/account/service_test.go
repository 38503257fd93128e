package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/config"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/dbtest"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/pkg/common"
)

type recordingPublisher struct {
	topics []string
	args   []interface{}
}

func (p *recordingPublisher) Publish(topic string, args ...interface{}) {
	p.topics = append(p.topics, topic)
	p.args = append(p.args, args...)
}

func newTestService(t *testing.T) (*Service, *GormRepository, *recordingPublisher) {
	t.Helper()
	repo := NewGormRepository(dbtest.Open(t))
	pub := &recordingPublisher{}
	return NewService(repo, pub, WithHashCost(bcrypt.MinCost)), repo, pub
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Register(ctx, RegisterInput{Name: "Asha", Email: " Asha@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, a.Role)
	assert.Equal(t, "asha@example.com", a.Email)
	assert.NotEqual(t, "secret1", a.Password)

	_, err = svc.Register(ctx, RegisterInput{Name: "Other", Email: "asha@example.com", Password: "secret2"})
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Equal(t, "Email already registered", domain.MessageOf(err))

	got, err := svc.Authenticate(ctx, "ASHA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.NotNil(t, got.LastLogin)

	_, err = svc.Authenticate(ctx, "asha@example.com", "wrong")
	assert.True(t, domain.IsKind(err, domain.KindUnauthenticated))
	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret1")
	assert.True(t, domain.IsKind(err, domain.KindUnauthenticated))
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "", Email: "a@b.c", Password: "secret1"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.c", Password: "123"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestDisabledStaffCannotSignIn(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	staff, err := svc.CreateStaff(ctx, StaffInput{Name: "Ravi", Email: "ravi@shop.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, staff.Role)

	updated, err := svc.SetActive(ctx, staff.ID, false)
	require.NoError(t, err)
	assert.Equal(t, common.DISABLED, updated.Status)

	_, err = svc.Authenticate(ctx, "ravi@shop.test", "secret1")
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	_, err = svc.SetActive(ctx, staff.ID, true)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "ravi@shop.test", "secret1")
	assert.NoError(t, err)
}

func TestStaffOperationsRejectNonStaff(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	customer, err := svc.Register(ctx, RegisterInput{Name: "C", Email: "c@shop.test", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.SetActive(ctx, customer.ID, false)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.True(t, domain.IsKind(svc.DeleteStaff(ctx, customer.ID), domain.KindNotFound))
	assert.True(t, domain.IsKind(svc.DeleteStaff(ctx, 42), domain.KindNotFound))
}

func TestUpdateAndDeleteStaff(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	staff, err := svc.CreateStaff(ctx, StaffInput{Name: "Ravi", Email: "ravi@shop.test", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.CreateStaff(ctx, StaffInput{Name: "Mira", Email: "mira@shop.test", Password: "secret1"})
	require.NoError(t, err)

	taken := "mira@shop.test"
	_, err = svc.UpdateStaff(ctx, staff.ID, StaffUpdate{Email: &taken})
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	name, pwd := "Ravi K", "newsecret"
	updated, err := svc.UpdateStaff(ctx, staff.ID, StaffUpdate{Name: &name, Password: &pwd})
	require.NoError(t, err)
	assert.Equal(t, "Ravi K", updated.Name)
	_, err = svc.Authenticate(ctx, "ravi@shop.test", "newsecret")
	require.NoError(t, err)

	rows, total, err := svc.List(ctx, domain.RoleStaff, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	require.NoError(t, svc.DeleteStaff(ctx, staff.ID))
	_, err = svc.Get(ctx, staff.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestUpdateProfilePassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@shop.test", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, a.ID, ProfileInput{CurrentPassword: "bad", NewPassword: "secret2"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	city := domain.Address{City: "Pune", Country: "IN"}
	got, err := svc.UpdateProfile(ctx, a.ID, ProfileInput{Address: &city, CurrentPassword: "secret1", NewPassword: "secret2"})
	require.NoError(t, err)
	assert.Equal(t, "Pune", got.Address.City)

	_, err = svc.Authenticate(ctx, "asha@shop.test", "secret2")
	assert.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@shop.test", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "nobody@shop.test"))
	assert.Empty(t, pub.topics)

	require.NoError(t, svc.ForgotPassword(ctx, "asha@shop.test"))
	require.Equal(t, []string{domain.TopicPasswordReset}, pub.topics)
	ev := pub.args[0].(domain.PasswordResetEvent)
	assert.NotEmpty(t, ev.Token)

	err = svc.ResetPassword(ctx, "bogus", "newpass1")
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	require.NoError(t, svc.ResetPassword(ctx, ev.Token, "newpass1"))
	_, err = svc.Authenticate(ctx, "asha@shop.test", "newpass1")
	assert.NoError(t, err)

	err = svc.ResetPassword(ctx, ev.Token, "another1")
	assert.Equal(t, "Invalid or expired reset token", domain.MessageOf(err))

	expired := &domain.PasswordReset{ID: common.UUIDint64(), AccountID: ev.Account.ID, Token: "stale", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, repo.CreateReset(ctx, expired))
	assert.True(t, domain.IsKind(svc.ResetPassword(ctx, "stale", "another1"), domain.KindValidation))

	n, err := svc.PurgeExpiredResets(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestEnsureSuperuser(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	cfg := config.SuperuserConfig{Name: "administrator", Email: "admin@example-fixed", Password: "admin@shopd"}

	a, err := svc.EnsureSuperuser(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, a.Role)

	// demote and disable, then let startup repair it
	require.NoError(t, repo.UpdateFields(ctx, a.ID, map[string]interface{}{"role": domain.RoleCustomer, "status": common.DISABLED}))
	cfg.Password = "rotated!"
	repaired, err := svc.EnsureSuperuser(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, a.ID, repaired.ID)
	assert.Equal(t, domain.RoleAdmin, repaired.Role)

	got, err := svc.Authenticate(ctx, "admin@example-fixed", "rotated!")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	_, total, err := svc.List(ctx, domain.RoleAdmin, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
