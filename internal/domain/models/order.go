package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы заказа. Новый заказ всегда создаётся в статусе NEW,
// дальнейшие переходы доступны только администратору.
const (
	OrderStatusNew        = "NEW"
	OrderStatusInProgress = "IN_PROGRESS"
	OrderStatusDone       = "DONE"
)

// ValidOrderStatus проверяет, что строка — один из известных статусов
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusNew, OrderStatusInProgress, OrderStatusDone:
		return true
	}
	return false
}

// Order представляет заказ с позициями.
// Total всегда вычисляется на сервере как сумма price*amount по позициям.
type Order struct {
	ID        int64           `json:"id"`
	CreatorID int64           `json:"-"`
	Creator   UserSummary     `json:"creator"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"` // NUMERIC(12,2)
	Positions []*Position     `json:"positions"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Position — строка заказа: связь заказ-товар с количеством.
// Принадлежит заказу, удаляется вместе с ним или при полной замене позиций.
type Position struct {
	ID        int64  `json:"-"`
	OrderID   int64  `json:"-"`
	ProductID int64  `json:"product_id"`
	Amount    int    `json:"amount"`
	Name      string `json:"name,omitempty"` // имя товара, заполняется через JOIN с products
}
