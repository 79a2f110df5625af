// Command api serves the orders HTTP API.
//
//	@title						Sistema de Pedidos API
//	@version					1.0.0
//	@description				Order management with JWT authentication and owner/admin authorization.
//	@contact.name				Equipe de Desenvolvimento
//	@contact.email				dev@restaurante.com
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sistema-pedidos/orders-api/internal/api"
	"github.com/sistema-pedidos/orders-api/internal/core/ports"
	"github.com/sistema-pedidos/orders-api/internal/core/service"
	"github.com/sistema-pedidos/orders-api/internal/infrastructure/config"
	mongodb "github.com/sistema-pedidos/orders-api/internal/infrastructure/db/mongo"
	"github.com/sistema-pedidos/orders-api/internal/infrastructure/db/postgres"
	redisdb "github.com/sistema-pedidos/orders-api/internal/infrastructure/db/redis"
	"github.com/sistema-pedidos/orders-api/internal/infrastructure/http/handlers"
	"github.com/sistema-pedidos/orders-api/internal/infrastructure/jobs"
	"github.com/sistema-pedidos/orders-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// stores is the persistence selected by STORE_DRIVER.
type stores struct {
	accounts ports.AccountRepository
	orders   ports.OrderStore
	ping     handlers.Check
	close    func(ctx context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "orders-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("orders api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()

	redisClient, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()

	tokens, err := service.NewTokenService(cfg.TokenConfig())
	if err != nil {
		return err
	}
	authService := service.NewAuthService(st.accounts, tokens, logger.Component("auth_service"))
	orderService := service.NewOrderService(
		st.orders,
		redisdb.NewIdempotencyStore(redisClient, cfg.Redis.IdempotencyTTL),
		logger.Component("order_service"),
	)

	health := handlers.NewHealthHandler(map[string]handlers.Check{
		cfg.StoreDriver: st.ping,
		"redis":         redisdb.Ping(redisClient),
	})

	statsJob := jobs.NewOrderStatsJob(st.orders, cfg.Jobs.OrderStatsSchedule, log)
	if err := statsJob.Start(); err != nil {
		return err
	}
	defer statsJob.Stop()

	e := api.NewRouter(api.Dependencies{
		AuthService:  authService,
		OrderService: orderService,
		Health:       health,
		Logger:       logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("orders api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			accounts: mongodb.NewAccountRepository(db),
			orders:   mongodb.NewOrderRepository(client, db),
			ping:     mongodb.Ping(client),
			close:    client.Disconnect,
		}, nil

	default:
		db, err := postgres.Connect(ctx, cfg.Postgres.URL, log)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(db); err != nil {
			_ = postgres.Close(db)
			return nil, err
		}
		return &stores{
			accounts: postgres.NewAccountRepository(db),
			orders:   postgres.NewOrderRepository(db),
			ping:     postgres.Ping(db),
			close:    func(context.Context) error { return postgres.Close(db) },
		}, nil
	}
}
