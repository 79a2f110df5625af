package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sistema-pedidos/orders-api/internal/api/metrics"
	"github.com/sistema-pedidos/orders-api/internal/core/domain"
	"github.com/sistema-pedidos/orders-api/internal/core/ports"
)

// OrderHandler handles HTTP requests for order operations. All routes run
// behind the Auth middleware.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// List handles GET /pedidos/.
//
// @Summary      List every order
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   orderResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /pedidos/ [get]
func (h *OrderHandler) List(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	orders, err := h.service.ListAll(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Create handles POST /pedidos/.
//
// @Summary      Create an empty order
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string  false  "Repeated keys from the same account return the first order"
// @Success      201              {object}  orderResponse
// @Failure      401              {object}  errorResponse
// @Router       /pedidos/ [post]
func (h *OrderHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	order, err := h.service.CreateOrder(c.Request().Context(), identity, ports.CreateOrderInput{
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	metrics.OrdersCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toOrderResponse(order))
}

// Mine handles GET /pedidos/meus.
//
// @Summary      List the caller's orders
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   orderResponse
// @Failure      401  {object}  errorResponse
// @Router       /pedidos/meus [get]
func (h *OrderHandler) Mine(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	orders, err := h.service.ListMine(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Get handles GET /pedidos/:id.
//
// @Summary      Get one order
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Order id"
// @Success      200  {object}  orderResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /pedidos/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", domain.ErrOrderNotFound)
	if err != nil {
		return err
	}
	order, err := h.service.GetOne(c.Request().Context(), identity, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// Cancel handles POST /pedidos/:id/cancelar.
//
// @Summary      Cancel an order
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Order id"
// @Success      200  {object}  orderResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /pedidos/{id}/cancelar [post]
func (h *OrderHandler) Cancel(c echo.Context) error {
	return h.transition(c, "cancel", h.service.Cancel)
}

// Finalize handles POST /pedidos/:id/finalizar.
//
// @Summary      Finalize an order
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Order id"
// @Success      200  {object}  orderResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /pedidos/{id}/finalizar [post]
func (h *OrderHandler) Finalize(c echo.Context) error {
	return h.transition(c, "finalize", h.service.Finalize)
}

type transitionFunc func(ctx context.Context, identity *domain.Account, orderID int64) (*domain.Order, error)

func (h *OrderHandler) transition(c echo.Context, operation string, apply transitionFunc) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", domain.ErrOrderNotFound)
	if err != nil {
		return err
	}

	order, err := apply(c.Request().Context(), identity, id)
	switch {
	case err == nil:
		metrics.OrderTransitionsTotal.WithLabelValues(operation, "success").Inc()
	case errors.Is(err, domain.ErrInvalidTransition):
		metrics.OrderTransitionsTotal.WithLabelValues(operation, "rejected").Inc()
		return err
	default:
		metrics.OrderTransitionsTotal.WithLabelValues(operation, "error").Inc()
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// AddItem handles POST /pedidos/:id/itens.
//
// @Summary      Add an item to an order
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Order id"
// @Param        body  body      addItemRequest  true  "Item"
// @Success      200   {object}  orderResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /pedidos/{id}/itens [post]
func (h *OrderHandler) AddItem(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", domain.ErrOrderNotFound)
	if err != nil {
		return err
	}

	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.AddItem(c.Request().Context(), identity, id, toAddItemInput(req))
	if err != nil {
		return err
	}

	metrics.OrderItemChangesTotal.WithLabelValues("add").Inc()
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// RemoveItem handles DELETE /pedidos/itens/:id.
//
// @Summary      Remove an item from its order
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Item id"
// @Success      200  {object}  orderResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /pedidos/itens/{id} [delete]
func (h *OrderHandler) RemoveItem(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", domain.ErrItemNotFound)
	if err != nil {
		return err
	}

	order, err := h.service.RemoveItem(c.Request().Context(), identity, id)
	if err != nil {
		return err
	}

	metrics.OrderItemChangesTotal.WithLabelValues("remove").Inc()
	return c.JSON(http.StatusOK, toOrderResponse(order))
}
