package webserver

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/auth"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

const principalKey = "principal"

// TokenResolver turns a raw bearer token into the calling principal.
type TokenResolver interface {
	Resolve(c echo.Context, token string) (*auth.Principal, error)
}

type gatewayResolver struct {
	gw *auth.Gateway
}

func (r gatewayResolver) Resolve(c echo.Context, token string) (*auth.Principal, error) {
	return r.gw.Resolve(c.Request().Context(), token)
}

// NewAuthMiddleware extracts the token from Authorization or X-Auth-Token and
// stores the resolved principal in the context.
func NewAuthMiddleware(gw *auth.Gateway) echo.MiddlewareFunc {
	return authMiddleware(gatewayResolver{gw: gw})
}

func authMiddleware(r TokenResolver) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization:Bearer ,header:X-Auth-Token",
		ContextKey:  principalKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return r.Resolve(c, token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var de *domain.Error
			if errors.As(err, &de) {
				return FailErr(c, de)
			}
			return FailErr(c, domain.Unauthenticated("Authentication required"))
		},
	})
}

// PrincipalOf returns the authenticated caller, nil on public routes.
func PrincipalOf(c echo.Context) *auth.Principal {
	p, _ := c.Get(principalKey).(*auth.Principal)
	return p
}

// RequireRoles allows the request only for the given roles.
func RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := auth.Authorize(PrincipalOf(c), roles...); err != nil {
				return FailErr(c, err)
			}
			return next(c)
		}
	}
}
