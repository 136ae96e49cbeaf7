// Package domain contains persistence models for GST transactions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// PaymentStatus represents the transaction payment lifecycle.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Transaction is an issued invoice. Monetary fields are rupees with two
// decimal places; totals are always recomputed server side before persisting.
type Transaction struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	InvoiceNumber string       `gorm:"column:invoice_number;type:text;not null;uniqueIndex:ux_transactions_invoice_number"`
	InvoiceDate   time.Time    `gorm:"column:invoice_date;not null"`

	CustomerName    string  `gorm:"column:customer_name;type:text;not null"`
	CustomerEmail   *string `gorm:"column:customer_email;type:text"`
	CustomerPhone   *string `gorm:"column:customer_phone;type:text"`
	CustomerAddress *string `gorm:"column:customer_address;type:text"`
	CustomerGSTIN   *string `gorm:"column:customer_gstin;type:text"`

	DiscountKind  string  `gorm:"column:discount_kind;type:text;not null;default:'fixed'"`
	DiscountValue float64 `gorm:"column:discount_value;type:numeric(12,2);not null;default:0"`

	Subtotal       float64 `gorm:"type:numeric(12,2);not null"`
	DiscountAmount float64 `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	TaxableAmount  float64 `gorm:"column:taxable_amount;type:numeric(12,2);not null"`
	CGSTAmount     float64 `gorm:"column:cgst_amount;type:numeric(12,2);not null"`
	SGSTAmount     float64 `gorm:"column:sgst_amount;type:numeric(12,2);not null"`
	TotalAmount    float64 `gorm:"column:total_amount;type:numeric(12,2);not null"`

	PaymentStatus    PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentReference *string       `gorm:"column:payment_reference;type:text"`
	PaidAt           *time.Time    `gorm:""`

	Items []TransactionItem `gorm:"foreignKey:TransactionID"`

	Metadata datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "transactions" }

// TransactionItem is an immutable line snapshot. Unit price, GST rate and
// the computed breakdown are frozen at creation so later catalog edits do
// not rewrite issued invoices.
type TransactionItem struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	TransactionID snowflake.ID `gorm:"column:transaction_id;not null;index"`
	ServiceID     snowflake.ID `gorm:"column:service_id;not null;index"`

	Name      string  `gorm:"type:text;not null"`
	HSNCode   string  `gorm:"column:hsn_code;type:text"`
	UnitPrice float64 `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int64   `gorm:"not null"`
	GSTRate   float64 `gorm:"column:gst_rate;type:numeric(5,2);not null"`

	LineTotal     float64 `gorm:"column:line_total;type:numeric(12,2);not null"`
	DiscountShare float64 `gorm:"column:discount_share;type:numeric(12,2);not null;default:0"`
	TaxableAmount float64 `gorm:"column:taxable_amount;type:numeric(12,2);not null;default:0"`
	GSTAmount     float64 `gorm:"column:gst_amount;type:numeric(12,2);not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (TransactionItem) TableName() string { return "transaction_items" }
