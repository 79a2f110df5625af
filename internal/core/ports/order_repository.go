package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sistema-pedidos/orders-api/internal/core/domain"
)

// OrderRepository defines persistence operations for orders and their items.
// Orders are always returned with their full item list.
type OrderRepository interface {
	// Create assigns the order id.
	Create(ctx context.Context, order *domain.Order) error
	// FindByID returns domain.ErrOrderNotFound when id is unknown.
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindAll(ctx context.Context) ([]*domain.Order, error)
	FindByOwner(ctx context.Context, ownerID int64) ([]*domain.Order, error)
	// FindItem returns domain.ErrItemNotFound when itemID is unknown.
	FindItem(ctx context.Context, itemID int64) (*domain.LineItem, error)
	// InsertItem assigns the item id.
	InsertItem(ctx context.Context, item *domain.LineItem) error
	DeleteItem(ctx context.Context, itemID int64) error
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
	UpdatePrice(ctx context.Context, orderID int64, price decimal.Decimal) error
	// Delete removes the order's items and then the order itself.
	Delete(ctx context.Context, orderID int64) error
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
}

// OrderStore is an OrderRepository able to run a group of calls atomically.
type OrderStore interface {
	OrderRepository
	// InTx runs fn inside one transaction. The repository and context handed to
	// fn are bound to it; any error returned by fn rolls everything back.
	InTx(ctx context.Context, fn func(ctx context.Context, repo OrderRepository) error) error
}
