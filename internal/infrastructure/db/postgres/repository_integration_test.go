//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/sistema-pedidos/orders-api/internal/core/domain"
	"github.com/sistema-pedidos/orders-api/internal/core/ports"
	"github.com/sistema-pedidos/orders-api/internal/core/service"
	"github.com/sistema-pedidos/orders-api/internal/infrastructure/db/postgres"
)

// RepositoryIntegrationTestSuite runs the GORM repositories against a real
// PostgreSQL container with the embedded migrations applied.
type RepositoryIntegrationTestSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	accounts  *postgres.AccountRepository
	orders    *postgres.OrderRepository
	owner     *domain.Account
}

func (s *RepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("pedidos"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := postgres.Connect(ctx, connStr, zerolog.Nop())
	s.Require().NoError(err)
	s.db = db

	s.Require().NoError(postgres.RunMigrations(db))
	s.Require().NoError(postgres.RunMigrations(db), "second run must be a no-op")
}

func (s *RepositoryIntegrationTestSuite) TearDownSuite() {
	if s.db != nil {
		_ = postgres.Close(s.db)
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}

func (s *RepositoryIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.db.Exec("TRUNCATE TABLE itens_pedido, pedidos, usuarios RESTART IDENTITY").Error)

	s.accounts = postgres.NewAccountRepository(s.db)
	s.orders = postgres.NewOrderRepository(s.db)

	owner, err := s.accounts.Create(context.Background(), &domain.Account{
		Name: "Ana", Email: "ana@x.com", PasswordHash: "hash", Active: true, CreatedAt: time.Now().UTC(),
	})
	s.Require().NoError(err)
	s.owner = owner
}

func (s *RepositoryIntegrationTestSuite) newOrder() *domain.Order {
	order := domain.NewOrder(s.owner.ID, time.Now().UTC())
	s.Require().NoError(s.orders.Create(context.Background(), order))
	return order
}

func (s *RepositoryIntegrationTestSuite) addItem(orderID int64, qty int, price string) *domain.LineItem {
	item, err := domain.NewLineItem(orderID, qty, "Burger", "Large", decimal.RequireFromString(price))
	s.Require().NoError(err)
	s.Require().NoError(s.orders.InsertItem(context.Background(), item))
	return item
}

func (s *RepositoryIntegrationTestSuite) TestAccounts() {
	ctx := context.Background()

	found, err := s.accounts.FindByEmail(ctx, "ana@x.com")
	s.Require().NoError(err)
	s.Equal(s.owner.ID, found.ID)
	s.True(found.Active)
	s.False(found.Admin)

	_, err = s.accounts.Create(ctx, &domain.Account{Name: "Other", Email: "ana@x.com", PasswordHash: "h", CreatedAt: time.Now()})
	s.ErrorIs(err, domain.ErrDuplicateEmail)

	_, err = s.accounts.FindByID(ctx, 999)
	s.ErrorIs(err, domain.ErrAccountNotFound)
}

func (s *RepositoryIntegrationTestSuite) TestOrderRoundTrip() {
	ctx := context.Background()
	order := s.newOrder()
	s.NotZero(order.ID)

	first := s.addItem(order.ID, 2, "10.00")
	s.addItem(order.ID, 1, "5.00")

	stored, err := s.orders.FindByID(ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, stored.Status)
	s.Require().Len(stored.Items, 2)
	s.Equal(first.ID, stored.Items[0].ID)
	s.True(stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("10")))

	stored.RecalculatePrice()
	s.Require().NoError(s.orders.UpdatePrice(ctx, order.ID, stored.Price))
	s.Require().NoError(s.orders.UpdateStatus(ctx, order.ID, domain.StatusCanceled))

	reloaded, err := s.orders.FindByID(ctx, order.ID)
	s.Require().NoError(err)
	s.True(reloaded.Price.Equal(decimal.RequireFromString("25")))
	s.Equal(domain.StatusCanceled, reloaded.Status)

	item, err := s.orders.FindItem(ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(order.ID, item.OrderID)

	s.Require().NoError(s.orders.DeleteItem(ctx, first.ID))
	s.ErrorIs(s.orders.DeleteItem(ctx, first.ID), domain.ErrItemNotFound)
	_, err = s.orders.FindItem(ctx, first.ID)
	s.ErrorIs(err, domain.ErrItemNotFound)
}

func (s *RepositoryIntegrationTestSuite) TestNotFound() {
	ctx := context.Background()

	_, err := s.orders.FindByID(ctx, 999)
	s.ErrorIs(err, domain.ErrOrderNotFound)
	s.ErrorIs(s.orders.UpdateStatus(ctx, 999, domain.StatusCanceled), domain.ErrOrderNotFound)

	item, err := domain.NewLineItem(999, 1, "x", "y", decimal.NewFromInt(1))
	s.Require().NoError(err)
	s.ErrorIs(s.orders.InsertItem(ctx, item), domain.ErrOrderNotFound)
}

func (s *RepositoryIntegrationTestSuite) TestListsAndCounts() {
	ctx := context.Background()

	other, err := s.accounts.Create(ctx, &domain.Account{Name: "Bruno", Email: "bruno@x.com", PasswordHash: "h", CreatedAt: time.Now()})
	s.Require().NoError(err)

	a := s.newOrder()
	s.newOrder()
	s.Require().NoError(s.orders.Create(ctx, domain.NewOrder(other.ID, time.Now().UTC())))
	s.Require().NoError(s.orders.UpdateStatus(ctx, a.ID, domain.StatusCanceled))

	all, err := s.orders.FindAll(ctx)
	s.Require().NoError(err)
	s.Len(all, 3)

	mine, err := s.orders.FindByOwner(ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Len(mine, 2)
	for _, o := range mine {
		s.Equal(s.owner.ID, o.OwnerID)
		s.NotNil(o.Items)
	}

	counts, err := s.orders.CountByStatus(ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), counts[domain.StatusPending])
	s.Equal(int64(1), counts[domain.StatusCanceled])
}

func (s *RepositoryIntegrationTestSuite) TestInTxRollsBack() {
	ctx := context.Background()
	order := s.newOrder()
	boom := errors.New("boom")

	err := s.orders.InTx(ctx, func(ctx context.Context, repo ports.OrderRepository) error {
		item, err := domain.NewLineItem(order.ID, 3, "Soda", "Can", decimal.NewFromInt(4))
		s.Require().NoError(err)
		s.Require().NoError(repo.InsertItem(ctx, item))
		s.Require().NoError(repo.UpdatePrice(ctx, order.ID, decimal.NewFromInt(12)))
		return boom
	})
	s.ErrorIs(err, boom)

	stored, err := s.orders.FindByID(ctx, order.ID)
	s.Require().NoError(err)
	s.Empty(stored.Items)
	s.True(stored.Price.IsZero())
}

func (s *RepositoryIntegrationTestSuite) TestDeleteCascadesExplicitly() {
	ctx := context.Background()
	order := s.newOrder()
	item := s.addItem(order.ID, 1, "7.50")

	s.Require().NoError(s.orders.Delete(ctx, order.ID))

	_, err := s.orders.FindByID(ctx, order.ID)
	s.ErrorIs(err, domain.ErrOrderNotFound)
	_, err = s.orders.FindItem(ctx, item.ID)
	s.ErrorIs(err, domain.ErrItemNotFound)

	s.ErrorIs(s.orders.Delete(ctx, order.ID), domain.ErrOrderNotFound)
}

func (s *RepositoryIntegrationTestSuite) TestAmountsAndTextStoredExactly() {
	ctx := context.Background()
	order := s.newOrder()

	flavor := strings.Repeat("calabresa ", 30)
	item, err := domain.NewLineItem(order.ID, 3_000_000_000, flavor, "Family", decimal.RequireFromString("0.125"))
	s.Require().NoError(err)
	s.Require().NoError(s.orders.InsertItem(ctx, item))
	big := s.addItem(order.ID, 7, "999999999999999.99")

	stored, err := s.orders.FindByID(ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Len(stored.Items, 2)
	s.Equal(flavor, stored.Items[0].Flavor)
	s.Equal(3_000_000_000, stored.Items[0].Quantity)
	s.True(stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("0.125")), "got %s", stored.Items[0].UnitPrice)
	s.Equal(big.ID, stored.Items[1].ID)

	total := stored.RecalculatePrice()
	s.Require().NoError(s.orders.UpdatePrice(ctx, order.ID, total))

	reloaded, err := s.orders.FindByID(ctx, order.ID)
	s.Require().NoError(err)
	s.True(reloaded.Price.Equal(decimal.RequireFromString("7000000374999999.93")), "got %s", reloaded.Price)
}

func (s *RepositoryIntegrationTestSuite) TestConcurrentItemAddsKeepPriceConsistent() {
	ctx := context.Background()
	svc := service.NewOrderService(s.orders, nil, zerolog.Nop())
	order := s.newOrder()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, s.owner, order.ID, ports.AddItemInput{
				Quantity: 1, Flavor: "Soda", Size: "Can", UnitPrice: decimal.RequireFromString("2.50"),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	stored, err := s.orders.FindByID(ctx, order.ID)
	s.Require().NoError(err)
	s.Len(stored.Items, workers)
	s.True(stored.Price.Equal(decimal.RequireFromString("20")), "got %s", stored.Price)
}

func TestRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryIntegrationTestSuite))
}
