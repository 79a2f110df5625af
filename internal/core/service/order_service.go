package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sistema-pedidos/orders-api/internal/core/domain"
	"github.com/sistema-pedidos/orders-api/internal/core/ports"
)

// IdempotencyStore remembers which order a client-supplied key produced.
// Keys are scoped per owner.
type IdempotencyStore interface {
	Lookup(ctx context.Context, ownerID int64, key string) (orderID int64, found bool, err error)
	Remember(ctx context.Context, ownerID int64, key string, orderID int64) error
}

// OrderService implements the order lifecycle. Lookups always check
// existence before ownership, and ownership before the status guard.
type OrderService struct {
	store ports.OrderStore
	idem  IdempotencyStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewOrderService builds the service. idem may be nil, in which case
// Idempotency-Key headers are ignored.
func NewOrderService(store ports.OrderStore, idem IdempotencyStore, log zerolog.Logger) *OrderService {
	return &OrderService{store: store, idem: idem, log: log, now: time.Now}
}

// CreateOrder opens an empty PENDENTE order for the caller. When a key is
// given and was already used by the same caller, the earlier order is
// returned instead. Idempotency store failures never block creation.
func (s *OrderService) CreateOrder(ctx context.Context, identity *domain.Account, in ports.CreateOrderInput) (*domain.Order, error) {
	if identity == nil {
		return nil, domain.ErrUnauthorized
	}

	if existing := s.replay(ctx, identity.ID, in.IdempotencyKey); existing != nil {
		return existing, nil
	}

	order := domain.NewOrder(identity.ID, s.now().UTC())
	if err := s.store.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, identity.ID, in.IdempotencyKey, order.ID); err != nil {
			s.log.Warn().Err(err).Int64("order_id", order.ID).Msg("idempotency store unavailable, key not recorded")
		}
	}

	s.log.Info().Int64("order_id", order.ID).Int64("owner_id", identity.ID).Msg("order created")
	return order, nil
}

func (s *OrderService) replay(ctx context.Context, ownerID int64, key string) *domain.Order {
	if key == "" || s.idem == nil {
		return nil
	}

	orderID, found, err := s.idem.Lookup(ctx, ownerID, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("idempotency store unavailable, creating order")
		return nil
	}
	if !found {
		return nil
	}

	order, err := s.store.FindByID(ctx, orderID)
	if err != nil || order.OwnerID != ownerID {
		s.log.Debug().Err(err).Int64("order_id", orderID).Msg("idempotency key points to an unusable order")
		return nil
	}

	s.log.Info().Int64("order_id", order.ID).Msg("idempotent replay")
	return order
}

// ListAll returns every order. Admin only.
func (s *OrderService) ListAll(ctx context.Context, identity *domain.Account) ([]*domain.Order, error) {
	if err := domain.RequireAdmin(identity); err != nil {
		return nil, err
	}
	orders, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListMine returns the caller's own orders.
func (s *OrderService) ListMine(ctx context.Context, identity *domain.Account) ([]*domain.Order, error) {
	if identity == nil {
		return nil, domain.ErrUnauthorized
	}
	orders, err := s.store.FindByOwner(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("list own orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) GetOne(ctx context.Context, identity *domain.Account, orderID int64) (*domain.Order, error) {
	return s.load(ctx, s.store, identity, orderID)
}

func (s *OrderService) Cancel(ctx context.Context, identity *domain.Account, orderID int64) (*domain.Order, error) {
	return s.transition(ctx, identity, orderID, (*domain.Order).Cancel)
}

func (s *OrderService) Finalize(ctx context.Context, identity *domain.Account, orderID int64) (*domain.Order, error) {
	return s.transition(ctx, identity, orderID, (*domain.Order).Finalize)
}

func (s *OrderService) transition(ctx context.Context, identity *domain.Account, orderID int64, apply func(*domain.Order) error) (*domain.Order, error) {
	var result *domain.Order
	err := s.store.InTx(ctx, func(ctx context.Context, repo ports.OrderRepository) error {
		order, err := s.load(ctx, repo, identity, orderID)
		if err != nil {
			return err
		}
		from := order.Status
		if err := apply(order); err != nil {
			return err
		}
		if err := repo.UpdateStatus(ctx, order.ID, order.Status); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		s.log.Info().
			Int64("order_id", order.ID).
			Str("from", from.String()).
			Str("to", order.Status.String()).
			Msg("order status changed")
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddItem appends an item to the order and recomputes its price inside the
// same transaction.
func (s *OrderService) AddItem(ctx context.Context, identity *domain.Account, orderID int64, in ports.AddItemInput) (*domain.Order, error) {
	var result *domain.Order
	err := s.store.InTx(ctx, func(ctx context.Context, repo ports.OrderRepository) error {
		order, err := s.load(ctx, repo, identity, orderID)
		if err != nil {
			return err
		}
		item, err := domain.NewLineItem(order.ID, in.Quantity, in.Flavor, in.Size, in.UnitPrice)
		if err != nil {
			return err
		}
		if err := repo.InsertItem(ctx, item); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		result, err = s.recalculate(ctx, repo, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("order_id", result.ID).Str("price", result.Price.String()).Msg("item added")
	return result, nil
}

// RemoveItem deletes an item. Authorization is checked against the order the
// item belongs to.
func (s *OrderService) RemoveItem(ctx context.Context, identity *domain.Account, itemID int64) (*domain.Order, error) {
	if identity == nil {
		return nil, domain.ErrUnauthorized
	}

	var result *domain.Order
	err := s.store.InTx(ctx, func(ctx context.Context, repo ports.OrderRepository) error {
		item, err := repo.FindItem(ctx, itemID)
		if err != nil {
			return err
		}
		order, err := s.load(ctx, repo, identity, item.OrderID)
		if err != nil {
			return err
		}
		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		result, err = s.recalculate(ctx, repo, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("order_id", result.ID).Int64("item_id", itemID).Str("price", result.Price.String()).Msg("item removed")
	return result, nil
}

func (s *OrderService) load(ctx context.Context, repo ports.OrderRepository, identity *domain.Account, orderID int64) (*domain.Order, error) {
	if identity == nil {
		return nil, domain.ErrUnauthorized
	}
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find order %d: %w", orderID, err)
	}
	if err := domain.Authorize(identity, order.OwnerID); err != nil {
		s.log.Debug().Int64("order_id", orderID).Int64("caller_id", identity.ID).Msg("order access denied")
		return nil, err
	}
	return order, nil
}

// recalculate re-reads the order so the price is derived from the stored item
// set, then persists it.
func (s *OrderService) recalculate(ctx context.Context, repo ports.OrderRepository, orderID int64) (*domain.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}
	order.RecalculatePrice()
	if err := repo.UpdatePrice(ctx, order.ID, order.Price); err != nil {
		return nil, fmt.Errorf("update price: %w", err)
	}
	return order, nil
}

var (
	_ ports.AuthService  = (*AuthService)(nil)
	_ ports.OrderService = (*OrderService)(nil)
)
