package ports

import (
	"context"

	"github.com/sistema-pedidos/orders-api/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// TokenPair is returned on a successful JSON login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// AuthService covers credentials, token issuance and identity resolution.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	RegisterAdmin(ctx context.Context, caller *domain.Account, in RegisterInput) (*domain.Account, error)
	Authenticate(ctx context.Context, email, password string) (*domain.Account, error)
	IssueTokenPair(accountID int64) (*TokenPair, error)
	IssueAccessToken(accountID int64) (string, error)
	// ResolveIdentity returns (nil, nil) when the token does not resolve to an
	// account. A non-nil error means the account store itself failed.
	ResolveIdentity(ctx context.Context, token string) (*domain.Account, error)
	// RequireIdentity is ResolveIdentity with an absent identity turned into
	// domain.ErrUnauthorized.
	RequireIdentity(ctx context.Context, token string) (*domain.Account, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}
