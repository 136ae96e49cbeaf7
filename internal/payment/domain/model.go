package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Order statuses mirror the gateway's lifecycle. Captured and authorized
// both count as paid for invoice purposes.
const (
	OrderStatusCreated    = "created"
	OrderStatusAuthorized = "authorized"
	OrderStatusCaptured   = "captured"
	OrderStatusFailed     = "failed"
)

// PaymentOrder records every order handed to the gateway, whether it came
// from a stored transaction or a raw amount.
type PaymentOrder struct {
	ID             snowflake.ID  `gorm:"primaryKey"`
	TransactionID  *snowflake.ID `gorm:"column:transaction_id;index"`
	GatewayOrderID string        `gorm:"column:gateway_order_id;type:text;not null;uniqueIndex:ux_payment_orders_gateway_order_id"`

	Amount      float64 `gorm:"type:numeric(12,2);not null"`
	AmountMinor int64   `gorm:"column:amount_minor;not null"`
	Currency    string  `gorm:"type:text;not null;default:'INR'"`
	Receipt     string  `gorm:"type:text"`
	Status      string  `gorm:"type:text;not null;default:'created'"`

	Notes datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PaymentOrder) TableName() string { return "payment_orders" }
