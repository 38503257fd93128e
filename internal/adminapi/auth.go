package adminapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/account"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/cart"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/webserver"
)

type registerPayload struct {
	Name     string         `json:"name" validate:"max=200"`
	Email    string         `json:"email" validate:"max=255"`
	Password string         `json:"password"`
	Address  domain.Address `json:"address"`
}

type loginPayload struct {
	Email     string          `json:"email" validate:"required"`
	Password  string          `json:"password" validate:"required"`
	GuestCart *cart.GuestCart `json:"guest_cart" validate:"omitempty"`
}

type forgotPayload struct {
	Email string `json:"email" validate:"required"`
}

type resetPayload struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profilePayload struct {
	Name            *string         `json:"name" validate:"omitempty,max=200"`
	Address         *domain.Address `json:"address"`
	CurrentPassword string          `json:"current_password"`
	NewPassword     string          `json:"new_password"`
}

type sessionResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      *domain.Account   `json:"user"`
	CartMerge *cart.MergeResult `json:"cart_merge,omitempty"`
}

func registerAuthRoutes() {
	webserver.PubPOST("/auth/register", Register, webserver.Limit())
	webserver.PubPOST("/auth/login", Login, webserver.Limit())
	webserver.PubPOST("/auth/forgot-password", ForgotPassword, webserver.Limit())
	webserver.PubPOST("/auth/reset-password", ResetPassword, webserver.Limit())
	webserver.ApiGET("/auth/me", Me)
	webserver.ApiPUT("/auth/profile", UpdateProfile)
	webserver.ApiGET("/auth/users", ListUsers, webserver.RequireRoles(domain.RoleAdmin))
}

func newSession(c echo.Context, a *domain.Account) (*sessionResponse, error) {
	token, exp, err := GetAppContext(c).Tokens().Issue(a)
	if err != nil {
		return nil, err
	}
	return &sessionResponse{Token: token, ExpiresAt: exp, User: a}, nil
}

// Register creates a customer account and signs it in
func Register(c echo.Context) error {
	var in registerPayload
	if err := bind(c, &in); err != nil {
		return failErr(c, err)
	}
	a, err := GetAppContext(c).Accounts().Register(c.Request().Context(), account.RegisterInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Address:  in.Address,
	})
	if err != nil {
		return failErr(c, err)
	}
	sess, err := newSession(c, a)
	if err != nil {
		return failErr(c, err)
	}
	return created(c, sess)
}

// Login verifies credentials, issues a token and merges an optional guest cart
func Login(c echo.Context) error {
	var in loginPayload
	if err := bind(c, &in); err != nil {
		return failErr(c, err)
	}
	ctx := c.Request().Context()
	a, err := GetAppContext(c).Accounts().Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return failErr(c, err)
	}
	sess, err := newSession(c, a)
	if err != nil {
		return failErr(c, err)
	}
	if in.GuestCart != nil && len(in.GuestCart.Items) > 0 && a.Role == domain.RoleCustomer {
		res, err := GetAppContext(c).Carts().Merge(ctx, a.ID, *in.GuestCart)
		if err != nil {
			// the session is still valid, the client keeps its guest cart
			zap.L().Warn("guest cart merge failed", zap.String("namespace", "adminapi"), zap.Int64("account_id", a.ID), zap.Error(err))
		} else {
			sess.CartMerge = res
		}
	}
	return ok(c, sess)
}

// ForgotPassword always succeeds so account existence is not disclosed
func ForgotPassword(c echo.Context) error {
	var in forgotPayload
	if err := bind(c, &in); err != nil {
		return failErr(c, err)
	}
	if err := GetAppContext(c).Accounts().ForgotPassword(c.Request().Context(), in.Email); err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]string{"message": "If the email is registered, a reset link has been sent"})
}

func ResetPassword(c echo.Context) error {
	var in resetPayload
	if err := bind(c, &in); err != nil {
		return failErr(c, err)
	}
	if err := GetAppContext(c).Accounts().ResetPassword(c.Request().Context(), in.Token, in.Password); err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]string{"message": "Password has been reset"})
}

func Me(c echo.Context) error {
	return ok(c, principal(c).Account)
}

func UpdateProfile(c echo.Context) error {
	var in profilePayload
	if err := bind(c, &in); err != nil {
		return failErr(c, err)
	}
	a, err := GetAppContext(c).Accounts().UpdateProfile(c.Request().Context(), principal(c).ID(), account.ProfileInput{
		Name:            in.Name,
		Address:         in.Address,
		CurrentPassword: in.CurrentPassword,
		NewPassword:     in.NewPassword,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, a)
}

// ListUsers lists accounts, optionally filtered by ?role=
func ListUsers(c echo.Context) error {
	var role domain.Role
	if raw := c.QueryParam("role"); raw != "" {
		r, valid := domain.ParseRole(raw)
		if !valid {
			return failErr(c, domain.Validation("Invalid role"))
		}
		role = r
	}
	page, pageSize := parsePagination(c)
	rows, total, err := GetAppContext(c).Accounts().List(c.Request().Context(), role, page, pageSize)
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}
