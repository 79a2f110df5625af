package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sistema-pedidos/orders-api/internal/core/domain"
)

type accountModel struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:nome"`
	Email     string    `gorm:"column:email"`
	Password  string    `gorm:"column:senha"`
	Active    bool      `gorm:"column:ativo"`
	Admin     bool      `gorm:"column:admin"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (accountModel) TableName() string { return "usuarios" }

type orderModel struct {
	ID        int64           `gorm:"primaryKey"`
	Status    string          `gorm:"column:status"`
	OwnerID   int64           `gorm:"column:usuario"`
	Price     decimal.Decimal `gorm:"column:preco;type:numeric"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	Items     []itemModel     `gorm:"foreignKey:OrderID"`
}

func (orderModel) TableName() string { return "pedidos" }

type itemModel struct {
	ID        int64           `gorm:"primaryKey"`
	Quantity  int             `gorm:"column:quantidade"`
	Flavor    string          `gorm:"column:sabor"`
	Size      string          `gorm:"column:tamanho"`
	UnitPrice decimal.Decimal `gorm:"column:preco_unitario;type:numeric"`
	OrderID   int64           `gorm:"column:pedido"`
}

func (itemModel) TableName() string { return "itens_pedido" }

func accountFromDomain(a *domain.Account) accountModel {
	return accountModel{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Password:  a.PasswordHash,
		Active:    a.Active,
		Admin:     a.Admin,
		CreatedAt: a.CreatedAt,
	}
}

func (m accountModel) toDomain() *domain.Account {
	return &domain.Account{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.Password,
		Active:       m.Active,
		Admin:        m.Admin,
		CreatedAt:    m.CreatedAt,
	}
}

func itemFromDomain(it *domain.LineItem) itemModel {
	return itemModel{
		ID:        it.ID,
		Quantity:  it.Quantity,
		Flavor:    it.Flavor,
		Size:      it.Size,
		UnitPrice: it.UnitPrice,
		OrderID:   it.OrderID,
	}
}

func (m itemModel) toDomain() domain.LineItem {
	return domain.LineItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Quantity:  m.Quantity,
		Flavor:    m.Flavor,
		Size:      m.Size,
		UnitPrice: m.UnitPrice,
	}
}

func (m orderModel) toDomain() *domain.Order {
	items := make([]domain.LineItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, it.toDomain())
	}
	return &domain.Order{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Status:    domain.OrderStatus(m.Status),
		Price:     m.Price,
		Items:     items,
		CreatedAt: m.CreatedAt,
	}
}
