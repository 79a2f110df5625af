package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sistema-pedidos/orders-api/internal/core/domain"
)

// CreateOrderInput carries the optional idempotency key of POST /pedidos/.
type CreateOrderInput struct {
	IdempotencyKey string
}

// AddItemInput holds the fields of a new line item.
type AddItemInput struct {
	Quantity  int
	Flavor    string
	Size      string
	UnitPrice decimal.Decimal
}

// OrderService defines the order lifecycle use cases. Every call takes the
// resolved caller identity; authorization happens inside the service.
type OrderService interface {
	CreateOrder(ctx context.Context, identity *domain.Account, in CreateOrderInput) (*domain.Order, error)
	ListAll(ctx context.Context, identity *domain.Account) ([]*domain.Order, error)
	ListMine(ctx context.Context, identity *domain.Account) ([]*domain.Order, error)
	GetOne(ctx context.Context, identity *domain.Account, orderID int64) (*domain.Order, error)
	Cancel(ctx context.Context, identity *domain.Account, orderID int64) (*domain.Order, error)
	Finalize(ctx context.Context, identity *domain.Account, orderID int64) (*domain.Order, error)
	AddItem(ctx context.Context, identity *domain.Account, orderID int64, in AddItemInput) (*domain.Order, error)
	RemoveItem(ctx context.Context, identity *domain.Account, itemID int64) (*domain.Order, error)
}
