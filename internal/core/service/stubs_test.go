package service

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sistema-pedidos/orders-api/internal/core/domain"
	"github.com/sistema-pedidos/orders-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory account repository
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	byID    map[int64]*domain.Account
	nextID  int64
	findErr error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[int64]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	clone := *a
	return &clone
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	for _, a := range r.byID {
		if a.Email == account.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	r.nextID++
	stored := cloneAccount(account)
	stored.ID = r.nextID
	r.byID[stored.ID] = stored
	return cloneAccount(stored), nil
}

// ---------------------------------------------------------------------------
// In-memory order store. InTx snapshots state and restores it when fn fails.
// ---------------------------------------------------------------------------

type stubOrderStore struct {
	orders      map[int64]*domain.Order
	nextOrderID int64
	nextItemID  int64

	failUpdatePrice bool
	txCount         int
}

func newStubOrderStore() *stubOrderStore {
	return &stubOrderStore{orders: make(map[int64]*domain.Order)}
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	clone.Items = append([]domain.LineItem{}, o.Items...)
	return &clone
}

func (s *stubOrderStore) snapshot() (map[int64]*domain.Order, int64, int64) {
	cp := make(map[int64]*domain.Order, len(s.orders))
	for id, o := range s.orders {
		cp[id] = cloneOrder(o)
	}
	return cp, s.nextOrderID, s.nextItemID
}

func (s *stubOrderStore) InTx(ctx context.Context, fn func(ctx context.Context, repo ports.OrderRepository) error) error {
	s.txCount++
	orders, nextOrder, nextItem := s.snapshot()
	if err := fn(ctx, s); err != nil {
		s.orders, s.nextOrderID, s.nextItemID = orders, nextOrder, nextItem
		return err
	}
	return nil
}

func (s *stubOrderStore) Create(_ context.Context, order *domain.Order) error {
	s.nextOrderID++
	order.ID = s.nextOrderID
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (s *stubOrderStore) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (s *stubOrderStore) sorted(filter func(*domain.Order) bool) []*domain.Order {
	out := []*domain.Order{}
	for _, o := range s.orders {
		if filter(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *stubOrderStore) FindAll(_ context.Context) ([]*domain.Order, error) {
	return s.sorted(func(*domain.Order) bool { return true }), nil
}

func (s *stubOrderStore) FindByOwner(_ context.Context, ownerID int64) ([]*domain.Order, error) {
	return s.sorted(func(o *domain.Order) bool { return o.OwnerID == ownerID }), nil
}

func (s *stubOrderStore) FindItem(_ context.Context, itemID int64) (*domain.LineItem, error) {
	for _, o := range s.orders {
		for _, it := range o.Items {
			if it.ID == itemID {
				item := it
				return &item, nil
			}
		}
	}
	return nil, domain.ErrItemNotFound
}

func (s *stubOrderStore) InsertItem(_ context.Context, item *domain.LineItem) error {
	o, ok := s.orders[item.OrderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	s.nextItemID++
	item.ID = s.nextItemID
	o.Items = append(o.Items, *item)
	return nil
}

func (s *stubOrderStore) DeleteItem(_ context.Context, itemID int64) error {
	for _, o := range s.orders {
		for i, it := range o.Items {
			if it.ID == itemID {
				o.Items = append(o.Items[:i], o.Items[i+1:]...)
				return nil
			}
		}
	}
	return domain.ErrItemNotFound
}

func (s *stubOrderStore) UpdateStatus(_ context.Context, orderID int64, status domain.OrderStatus) error {
	o, ok := s.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (s *stubOrderStore) UpdatePrice(_ context.Context, orderID int64, price decimal.Decimal) error {
	if s.failUpdatePrice {
		return errors.New("disk full")
	}
	o, ok := s.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Price = price
	return nil
}

func (s *stubOrderStore) Delete(_ context.Context, orderID int64) error {
	delete(s.orders, orderID)
	return nil
}

func (s *stubOrderStore) CountByStatus(_ context.Context) (map[domain.OrderStatus]int64, error) {
	counts := make(map[domain.OrderStatus]int64)
	for _, o := range s.orders {
		counts[o.Status]++
	}
	return counts, nil
}

// ---------------------------------------------------------------------------
// In-memory idempotency store
// ---------------------------------------------------------------------------

type stubIdempotency struct {
	keys map[string]int64
	err  error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]int64)}
}

func idemKey(ownerID int64, key string) string {
	return strconv.FormatInt(ownerID, 10) + ":" + key
}

func (s *stubIdempotency) Lookup(_ context.Context, ownerID int64, key string) (int64, bool, error) {
	if s.err != nil {
		return 0, false, s.err
	}
	id, ok := s.keys[idemKey(ownerID, key)]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, ownerID int64, key string, orderID int64) error {
	if s.err != nil {
		return s.err
	}
	s.keys[idemKey(ownerID, key)] = orderID
	return nil
}
