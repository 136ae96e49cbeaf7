package domain

import (
	"context"

	"github.com/vyaparlabs/gstbill/internal/gst"
	"github.com/vyaparlabs/gstbill/pkg/db/pagination"
)

// LineItemRequest references a catalog service; price, HSN code and GST
// rate are snapshotted from the catalog at creation time.
type LineItemRequest struct {
	ServiceID string `json:"service_id"`
	Quantity  int64  `json:"quantity"`
}

type CreateTransactionRequest struct {
	CustomerName    string  `json:"customer_name"`
	CustomerEmail   *string `json:"customer_email,omitempty"`
	CustomerPhone   *string `json:"customer_phone,omitempty"`
	CustomerAddress *string `json:"customer_address,omitempty"`
	CustomerGSTIN   *string `json:"customer_gstin,omitempty"`

	Items []LineItemRequest `json:"items"`

	DiscountKind  string  `json:"discount_kind,omitempty"`
	DiscountValue float64 `json:"discount_value,omitempty"`

	// Client-computed totals. When present the server recomputes and
	// rejects on drift beyond the tolerance.
	Totals *gst.ProvidedTotals `json:"totals,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

type ListTransactionRequest struct {
	pagination.Pagination

	Status   string `form:"status"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

type ListTransactionResponse struct {
	pagination.PageInfo
	Transactions []Transaction `json:"transactions"`
}

type Service interface {
	Create(ctx context.Context, req CreateTransactionRequest) (*Transaction, error)
	CreateTest(ctx context.Context, customerName string) (*Transaction, error)
	List(ctx context.Context, req ListTransactionRequest) (ListTransactionResponse, error)
	GetByID(ctx context.Context, id string) (*Transaction, error)
	MarkPaid(ctx context.Context, id, paymentReference string) (*Transaction, error)
	Delete(ctx context.Context, id string) error
}
