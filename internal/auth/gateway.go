package auth

import (
	"context"
	"strings"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	Account *domain.Account
}

func (p *Principal) ID() int64 { return p.Account.ID }

func (p *Principal) Role() domain.Role { return p.Account.Role }

func (p *Principal) Actor() domain.Actor { return domain.ActorOf(p.Account) }

// AccountLoader resolves accounts by id.
type AccountLoader interface {
	Get(ctx context.Context, id int64) (*domain.Account, error)
}

// Gateway turns bearer tokens into principals.
type Gateway struct {
	tokens   *TokenManager
	accounts AccountLoader
}

func NewGateway(tokens *TokenManager, accounts AccountLoader) *Gateway {
	return &Gateway{tokens: tokens, accounts: accounts}
}

// Resolve validates the token and loads the current account. The role comes
// from the stored account so demotions apply to tokens already issued.
func (g *Gateway) Resolve(ctx context.Context, token string) (*Principal, error) {
	id, _, err := g.tokens.Parse(NormalizeToken(token))
	if err != nil {
		return nil, err
	}
	a, err := g.accounts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Active() {
		return nil, domain.Forbidden("Account is disabled")
	}
	return &Principal{Account: a}, nil
}

// NormalizeToken strips an optional Bearer scheme.
func NormalizeToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

// Authorize fails with Forbidden unless the principal holds one of roles.
func Authorize(p *Principal, roles ...domain.Role) error {
	if p == nil || p.Account == nil {
		return domain.Unauthenticated("Authentication required")
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if p.Account.Role == r {
			return nil
		}
	}
	return domain.Forbidden("Access denied")
}
