package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one priced entry of an order. It never moves to another order.
type LineItem struct {
	ID        int64
	OrderID   int64
	Quantity  int
	Flavor    string
	Size      string
	UnitPrice decimal.Decimal
}

// Subtotal is quantity times unit price.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Unit prices are bounded so unit amounts round-trip exactly through either
// store.
const maxPriceScale = 8

var maxUnitPrice = decimal.New(1, 15)

// NewLineItem validates the item fields and binds the item to orderID.
func NewLineItem(orderID int64, quantity int, flavor, size string, unitPrice decimal.Decimal) (*LineItem, error) {
	if quantity < 1 {
		return nil, validationError("quantidade", "must be at least 1")
	}
	if strings.TrimSpace(flavor) == "" {
		return nil, validationError("sabor", "is required")
	}
	if strings.TrimSpace(size) == "" {
		return nil, validationError("tamanho", "is required")
	}
	if unitPrice.IsNegative() {
		return nil, validationError("preco_unitario", "must not be negative")
	}
	if unitPrice.GreaterThanOrEqual(maxUnitPrice) {
		return nil, validationError("preco_unitario", "must be below 10^15")
	}
	if !unitPrice.Equal(unitPrice.Truncate(maxPriceScale)) {
		return nil, validationError("preco_unitario", "must have at most 8 decimal places")
	}
	return &LineItem{
		OrderID:   orderID,
		Quantity:  quantity,
		Flavor:    flavor,
		Size:      size,
		UnitPrice: unitPrice,
	}, nil
}

// Order is the aggregate root of the order lifecycle. It owns its items:
// removing an order removes every item with it.
type Order struct {
	ID        int64
	OwnerID   int64
	Status    OrderStatus
	Price     decimal.Decimal
	Items     []LineItem
	CreatedAt time.Time
}

// NewOrder returns an empty pending order owned by ownerID.
func NewOrder(ownerID int64, now time.Time) *Order {
	return &Order{
		OwnerID:   ownerID,
		Status:    StatusPending,
		Price:     decimal.Zero,
		Items:     []LineItem{},
		CreatedAt: now,
	}
}

// RecalculatePrice sets Price to the sum of every item subtotal. It always
// starts from the full item set and never adjusts the previous total.
func (o *Order) RecalculatePrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	o.Price = total
	return total
}

// Cancel moves a PENDENTE or EM_PREPARO order to CANCELADO.
func (o *Order) Cancel() error {
	return o.transition("cancel", StatusCanceled)
}

// Finalize moves an EM_PREPARO order to FINALIZADO.
func (o *Order) Finalize() error {
	return o.transition("finalize", StatusFinalized)
}

func (o *Order) transition(op string, next OrderStatus) error {
	if !o.Status.CanTransitionTo(next) {
		return &TransitionError{Operation: op, From: o.Status}
	}
	o.Status = next
	return nil
}
