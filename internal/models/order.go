package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending = "pending"

	PaymentCash = "cash"
	PaymentCard = "card"
)

type Order struct {
	BaseModel
	UserID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	OrderNumber   string          `gorm:"uniqueIndex" json:"order_number"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	PickupTime    time.Time       `json:"pickup_time"`
	PaymentMethod string          `gorm:"size:10;not null" json:"payment_method"`
	Status        string          `gorm:"size:20;not null" json:"status"`
	Items         []OrderItem     `json:"items,omitempty"`
	Payment       *PaymentDetail  `json:"payment,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	MenuItemID uuid.UUID       `gorm:"type:uuid;index" json:"menu_item_id"`
	ItemName   string          `gorm:"size:100;not null" json:"item_name"`
	Price      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Quantity   int             `gorm:"not null" json:"quantity"`
}

// Subtotal is price times quantity for the line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PaymentDetail stores only the masked card data of a card order.
type PaymentDetail struct {
	BaseModel
	OrderID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"order_id"`
	CardLast4  string    `gorm:"size:4" json:"card_last4"`
	CardExpiry string    `gorm:"size:5" json:"card_expiry"`
}
