package domain

import (
	"context"

	invoicedomain "github.com/vyaparlabs/gstbill/internal/invoice/domain"
)

// CreateOrderRequest accepts either a stored transaction id, whose total
// becomes the order amount, or a raw rupee amount.
type CreateOrderRequest struct {
	TransactionID string            `json:"transaction_id,omitempty"`
	Amount        float64           `json:"amount,omitempty"`
	Currency      string            `json:"currency,omitempty"`
	Receipt       string            `json:"receipt,omitempty"`
	Notes         map[string]string `json:"notes,omitempty"`
}

type OrderResponse struct {
	OrderID       string  `json:"order_id"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Amount        float64 `json:"amount"`
	AmountMinor   int64   `json:"amount_minor"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
}

type CreateLinkRequest struct {
	TransactionID string  `json:"transaction_id,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	Description   string  `json:"description,omitempty"`
	CustomerName  string  `json:"customer_name,omitempty"`
	CustomerEmail string  `json:"customer_email,omitempty"`
	CustomerPhone string  `json:"customer_phone,omitempty"`

	// CallbackURL overrides the default verify callback; ExpireBy is a
	// unix timestamp after which the link stops working.
	CallbackURL string `json:"callback_url,omitempty"`
	ExpireBy    int64  `json:"expire_by,omitempty"`
}

type LinkResponse struct {
	LinkID   string `json:"link_id"`
	ShortURL string `json:"short_url"`
}

// VerifyRequest carries the fields the gateway appends to the checkout
// redirect.
type VerifyRequest struct {
	PaymentID     string `json:"payment_id" form:"payment_id"`
	OrderID       string `json:"order_id" form:"order_id"`
	Signature     string `json:"signature" form:"signature"`
	TransactionID string `json:"transaction_id" form:"transaction_id"`
}

type Service interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error)
	CreateLink(ctx context.Context, req CreateLinkRequest) (*LinkResponse, error)
	VerifyAndMarkPaid(ctx context.Context, req VerifyRequest) (*invoicedomain.Transaction, error)
	OrderStatus(ctx context.Context, gatewayOrderID string) (string, error)

	// WaitForPayment polls the gateway until the order reaches a terminal
	// status or ctx is done.
	WaitForPayment(ctx context.Context, gatewayOrderID string) (string, error)
}
