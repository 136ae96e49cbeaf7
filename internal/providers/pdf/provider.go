package pdf

import (
	"context"
	"io"

	invoicedomain "github.com/vyaparlabs/gstbill/internal/invoice/domain"
)

// BusinessProfile is the seller block printed on every invoice.
type BusinessProfile struct {
	Name    string
	Address string
	GSTIN   string
	Email   string
}

type Provider interface {
	GenerateInvoice(ctx context.Context, trx invoicedomain.Transaction, profile BusinessProfile) (io.Reader, error)
}
