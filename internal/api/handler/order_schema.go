package handler

import "github.com/shopspring/decimal"

type addItemRequest struct {
	Quantity  int              `json:"quantidade"     validate:"gte=1"`
	Flavor    string           `json:"sabor"          validate:"required"`
	Size      string           `json:"tamanho"        validate:"required"`
	UnitPrice *decimal.Decimal `json:"preco_unitario" validate:"required" swaggertype:"number"`
}

type itemResponse struct {
	ID        int64   `json:"id"`
	Quantity  int     `json:"quantidade"`
	Flavor    string  `json:"sabor"`
	Size      string  `json:"tamanho"`
	UnitPrice float64 `json:"preco_unitario"`
}

type orderResponse struct {
	ID     int64          `json:"id"`
	Status string         `json:"status"`
	Price  float64        `json:"preco"`
	Owner  int64          `json:"usuario"`
	Items  []itemResponse `json:"itens"`
}
