package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/pkg/common"
)

type memAccounts map[int64]*domain.Account

func (m memAccounts) Get(_ context.Context, id int64) (*domain.Account, error) {
	if a, ok := m[id]; ok {
		return a, nil
	}
	return nil, domain.NotFound("Account not found")
}

func TestIssueAndParse(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	a := &domain.Account{ID: 77, Role: domain.RoleStaff}

	token, exp, err := tm.Issue(a)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	id, role, err := tm.Parse(token)
	require.NoError(t, err)
	assert.EqualValues(t, 77, id)
	assert.Equal(t, domain.RoleStaff, role)

	_, _, err = NewTokenManager("other", time.Hour).Parse(token)
	assert.True(t, domain.IsKind(err, domain.KindUnauthenticated))

	_, _, err = tm.Parse("garbage")
	assert.True(t, domain.IsKind(err, domain.KindUnauthenticated))

	_, _, err = tm.Parse("")
	assert.True(t, domain.IsKind(err, domain.KindUnauthenticated))
}

func TestExpiredToken(t *testing.T) {
	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, _, err = NewTokenManager("secret", time.Hour).Parse(token)
	assert.Equal(t, "Token expired", domain.MessageOf(err))
}

func TestGatewayResolve(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	active := &domain.Account{ID: 1, Name: "Ravi", Role: domain.RoleStaff, Status: common.ENABLED}
	disabled := &domain.Account{ID: 2, Name: "Mira", Role: domain.RoleStaff, Status: common.DISABLED}
	gw := NewGateway(tm, memAccounts{1: active, 2: disabled})
	ctx := context.Background()

	token, _, err := tm.Issue(active)
	require.NoError(t, err)
	p, err := gw.Resolve(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.EqualValues(t, 1, p.ID())
	assert.Equal(t, domain.AccountActor{ID: 1, Name: "Ravi"}, p.Actor())

	p, err = gw.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, p.Role())

	token, _, err = tm.Issue(disabled)
	require.NoError(t, err)
	_, err = gw.Resolve(ctx, token)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	token, _, err = tm.Issue(&domain.Account{ID: 3, Role: domain.RoleCustomer})
	require.NoError(t, err)
	_, err = gw.Resolve(ctx, token)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestAuthorize(t *testing.T) {
	p := &Principal{Account: &domain.Account{ID: 1, Role: domain.RoleCustomer}}
	assert.NoError(t, Authorize(p))
	assert.NoError(t, Authorize(p, domain.RoleCustomer))
	assert.True(t, domain.IsKind(Authorize(p, domain.RoleStaff, domain.RoleAdmin), domain.KindForbidden))
	assert.True(t, domain.IsKind(Authorize(nil, domain.RoleAdmin), domain.KindUnauthenticated))
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("Bearer abc"))
	assert.Equal(t, "abc", NormalizeToken("bearer  abc "))
	assert.Equal(t, "abc", NormalizeToken("abc"))
	assert.Equal(t, "", NormalizeToken(""))
}
