package handler

import (
	"github.com/sistema-pedidos/orders-api/internal/core/domain"
	"github.com/sistema-pedidos/orders-api/internal/core/ports"
)

// --- Request → Service input ---

func toAddItemInput(req addItemRequest) ports.AddItemInput {
	in := ports.AddItemInput{
		Quantity: req.Quantity,
		Flavor:   req.Flavor,
		Size:     req.Size,
	}
	if req.UnitPrice != nil {
		in.UnitPrice = *req.UnitPrice
	}
	return in
}

// --- Service result → HTTP response ---

func toOrderResponse(o *domain.Order) orderResponse {
	items := make([]itemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, itemResponse{
			ID:        it.ID,
			Quantity:  it.Quantity,
			Flavor:    it.Flavor,
			Size:      it.Size,
			UnitPrice: it.UnitPrice.InexactFloat64(),
		})
	}
	return orderResponse{
		ID:     o.ID,
		Status: o.Status.String(),
		Price:  o.Price.InexactFloat64(),
		Owner:  o.OwnerID,
		Items:  items,
	}
}

func toOrderResponses(orders []*domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:     a.ID,
		Name:   a.Name,
		Email:  a.Email,
		Active: a.Active,
		Admin:  a.Admin,
	}
}
