package webserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/config"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/account"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/auth"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/dbtest"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/storage"
)

type fixture struct {
	srv      *AdminServer
	accounts *account.Service
	tokens   *auth.TokenManager
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	accounts := account.NewService(account.NewGormRepository(dbtest.Open(t)), nil, account.WithHashCost(bcrypt.MinCost))
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	opts.Config = config.DefaultAppConfig
	opts.Gateway = auth.NewGateway(tokens, accounts)
	srv := Init(opts)

	ApiGET("/whoami", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"id": PrincipalOf(c).ID(), "role": PrincipalOf(c).Role()})
	})
	ApiGET("/admin-only", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, RequireRoles(domain.RoleAdmin))
	PubPOST("/limited", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, Limit())
	return &fixture{srv: srv, accounts: accounts, tokens: tokens}
}

func (f *fixture) do(method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.srv.Echo().ServeHTTP(rec, req)
	return rec
}

func (f *fixture) token(t *testing.T, a *domain.Account) string {
	t.Helper()
	tok, _, err := f.tokens.Issue(a)
	require.NoError(t, err)
	return tok
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	customer, err := f.accounts.Register(ctx, account.RegisterInput{Name: "Asha", Email: "asha@shop.test", Password: "secret1"})
	require.NoError(t, err)
	tok := f.token(t, customer)

	rec := f.do(http.MethodGet, "/api/v1/whoami", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", decode(t, rec).Error)

	rec = f.do(http.MethodGet, "/api/v1/whoami", map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"customer"`)

	rec = f.do(http.MethodGet, "/api/v1/whoami", map[string]string{"X-Auth-Token": tok})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/whoami", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", decode(t, rec).Message)

	rec = f.do(http.MethodGet, "/api/v1/admin-only", map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied", decode(t, rec).Message)
}

func TestDisabledStaffTokenRejected(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	staff, err := f.accounts.CreateStaff(ctx, account.StaffInput{Name: "Ravi", Email: "ravi@shop.test", Password: "secret1"})
	require.NoError(t, err)
	tok := f.token(t, staff)

	rec := f.do(http.MethodGet, "/api/v1/whoami", map[string]string{"Authorization": "Bearer " + tok})
	require.Equal(t, http.StatusOK, rec.Code)

	_, err = f.accounts.SetActive(ctx, staff.ID, false)
	require.NoError(t, err)
	rec = f.do(http.MethodGet, "/api/v1/whoami", map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Account is disabled", decode(t, rec).Message)
}

func TestRateLimit(t *testing.T) {
	limiter := NewMemoryLimiter(2)
	defer limiter.Close()
	f := newFixture(t, Options{Limiter: limiter})

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/v1/limited", nil).Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/v1/limited", nil).Code)
	rec := f.do(http.MethodPost, "/api/v1/limited", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decode(t, rec).Error)
}

func TestRateLimitFailsOpenWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	f := newFixture(t, Options{Limiter: NewRedisLimiter(rdb, 1)})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/v1/limited", nil).Code)
	}
}

func TestUnknownRouteUsesErrorShape(t *testing.T) {
	f := newFixture(t, Options{})
	rec := f.do(http.MethodGet, "/api/v1/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec).Error)
}

func TestServeImage(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ref, err := store.Save(context.Background(), "photo.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	f := newFixture(t, Options{Images: store})
	rec := f.do(http.MethodGet, ref, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "png-bytes", rec.Body.String())

	rec = f.do(http.MethodGet, storage.URLPrefix+"missing.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFieldErrors(t *testing.T) {
	type payload struct {
		Email    string `json:"email" validate:"required,email"`
		Quantity int    `json:"quantity" validate:"min=1"`
	}
	err := newValidator().Validate(payload{Email: "x"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"email": "email", "quantity": "min"}, FieldErrors(err))
	assert.Nil(t, FieldErrors(nil))
}
