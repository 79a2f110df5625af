package ports

import (
	"context"

	"github.com/sistema-pedidos/orders-api/internal/core/domain"
)

// AccountRepository defines persistence for accounts.
type AccountRepository interface {
	// FindByEmail returns domain.ErrAccountNotFound when no account uses email.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// FindByID returns domain.ErrAccountNotFound when id is unknown.
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	// Create assigns the id and returns the stored account. A unique-email
	// violation is reported as domain.ErrDuplicateEmail.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
}
