package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sistema-pedidos/orders-api/internal/core/domain"
	"github.com/sistema-pedidos/orders-api/internal/core/ports"
)

// OrderRepository implements ports.OrderStore using GORM. Inside InTx the
// repository handed to the callback is bound to the transaction handle, and
// FindByID locks the order row until commit, so concurrent item changes on one
// order run one after the other.
type OrderRepository struct {
	db         *gorm.DB
	lockOrders bool
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// InTx runs fn in a single transaction; an error or panic rolls it back.
func (r *OrderRepository) InTx(ctx context.Context, fn func(ctx context.Context, repo ports.OrderRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &OrderRepository{db: tx, lockOrders: true})
	})
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m := orderModel{
		Status:    order.Status.String(),
		OwnerID:   order.OwnerID,
		Price:     order.Price,
		CreatedAt: order.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Omit("Items").Create(&m).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	order.ID = m.ID
	return nil
}

func (r *OrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	q := r.withItems(ctx)
	if r.lockOrders {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var m orderModel
	if err := q.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return m.toDomain(), nil
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	return r.find(r.withItems(ctx))
}

func (r *OrderRepository) FindByOwner(ctx context.Context, ownerID int64) ([]*domain.Order, error) {
	return r.find(r.withItems(ctx).Where("usuario = ?", ownerID))
}

func (r *OrderRepository) find(q *gorm.DB) ([]*domain.Order, error) {
	var models []orderModel
	if err := q.Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]*domain.Order, 0, len(models))
	for _, m := range models {
		orders = append(orders, m.toDomain())
	}
	return orders, nil
}

func (r *OrderRepository) FindItem(ctx context.Context, itemID int64) (*domain.LineItem, error) {
	var m itemModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}
	item := m.toDomain()
	return &item, nil
}

func (r *OrderRepository) InsertItem(ctx context.Context, item *domain.LineItem) error {
	m := itemFromDomain(item)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("insert item: %w", err)
	}
	item.ID = m.ID
	return nil
}

func (r *OrderRepository) DeleteItem(ctx context.Context, itemID int64) error {
	res := r.db.WithContext(ctx).Delete(&itemModel{}, itemID)
	if res.Error != nil {
		return fmt.Errorf("delete item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	return r.updateColumn(ctx, orderID, "status", status.String())
}

func (r *OrderRepository) UpdatePrice(ctx context.Context, orderID int64, price decimal.Decimal) error {
	return r.updateColumn(ctx, orderID, "preco", price)
}

func (r *OrderRepository) updateColumn(ctx context.Context, orderID int64, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&orderModel{}).Where("id = ?", orderID).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("update order %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// Delete removes the order's items and then the order, in one transaction.
func (r *OrderRepository) Delete(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pedido = ?", orderID).Delete(&itemModel{}).Error; err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		res := tx.Delete(&orderModel{}, orderID)
		if res.Error != nil {
			return fmt.Errorf("delete order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrOrderNotFound
		}
		return nil
	})
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&orderModel{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}

	counts := make(map[domain.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.OrderStatus(row.Status)] = row.Total
	}
	return counts, nil
}

var _ ports.OrderStore = (*OrderRepository)(nil)
