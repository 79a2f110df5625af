package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sistema-pedidos/orders-api/docs"
	"github.com/sistema-pedidos/orders-api/internal/api/handler"
	"github.com/sistema-pedidos/orders-api/internal/api/middleware"
	"github.com/sistema-pedidos/orders-api/internal/core/ports"
	"github.com/sistema-pedidos/orders-api/internal/infrastructure/http/handlers"
)

const metricsSubsystem = "pedidos_http"

// Dependencies groups everything the router wires into handlers.
type Dependencies struct {
	AuthService  ports.AuthService
	OrderService ports.OrderService
	Health       *handlers.HealthHandler
	Logger       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddleware(metricsSubsystem))

	authHandler := handler.NewAuthHandler(deps.AuthService)
	orderHandler := handler.NewOrderHandler(deps.OrderService)
	requireAuth := middleware.Auth(deps.AuthService)

	e.GET("/", welcome)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.GET("/", authHandler.Ping)
	auth.POST("/criar_conta", authHandler.Register)
	auth.POST("/criar_admin", authHandler.RegisterAdmin, requireAuth, middleware.AdminOnly())
	auth.POST("/login", authHandler.Login)
	auth.POST("/login-form", authHandler.LoginForm)
	auth.GET("/refresh", authHandler.Refresh)

	// --- Order routes ---
	// Auth is attached per route: group middleware would also wrap the group's
	// not-found handler and turn unknown paths into 401.
	orders := e.Group("/pedidos")
	orders.GET("/", orderHandler.List, requireAuth, middleware.AdminOnly())
	orders.POST("/", orderHandler.Create, requireAuth)
	orders.GET("/meus", orderHandler.Mine, requireAuth)
	orders.GET("/:id", orderHandler.Get, requireAuth)
	orders.POST("/:id/cancelar", orderHandler.Cancel, requireAuth)
	orders.POST("/:id/finalizar", orderHandler.Finalize, requireAuth)
	orders.POST("/:id/itens", orderHandler.AddItem, requireAuth)
	orders.DELETE("/itens/:id", orderHandler.RemoveItem, requireAuth)

	// --- Health probes, metrics and docs (no auth required) ---
	if deps.Health != nil {
		e.GET("/health", deps.Health.Liveness)
		e.GET("/health/ready", deps.Health.Readiness)
	}
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message": "orders API",
		"docs":    "/swagger/index.html",
		"routes":  map[string]string{"auth": "/auth", "orders": "/pedidos"},
	})
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= http.StatusInternalServerError {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
