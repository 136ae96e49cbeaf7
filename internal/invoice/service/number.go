package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	invoicedomain "github.com/vyaparlabs/gstbill/internal/invoice/domain"
)

const numberAttempts = 32

// generateInvoiceNumber produces INV-YYMMDD-NNN with a random three digit
// suffix, retrying while the candidate already exists. The unique index on
// invoice_number is the final arbiter for concurrent writers.
func generateInvoiceNumber(ctx context.Context, at time.Time, exists func(ctx context.Context, number string) (bool, error)) (string, error) {
	datePart := at.UTC().Format("060102")

	for i := 0; i < numberAttempts; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(1000))
		if err != nil {
			return "", err
		}

		candidate := fmt.Sprintf("INV-%s-%03d", datePart, n.Int64())
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", invoicedomain.ErrNumberExhausted
}
