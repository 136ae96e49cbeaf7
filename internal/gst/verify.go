package gst

import "fmt"

// ProvidedTotals carries client-computed amounts submitted alongside the
// line items. Zero-valued fields are still compared; callers that have no
// client totals skip verification entirely.
type ProvidedTotals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxableAmount  float64 `json:"taxable_amount"`
	CGSTAmount     float64 `json:"cgst_amount"`
	SGSTAmount     float64 `json:"sgst_amount"`
	TotalAmount    float64 `json:"total_amount"`
}

// TotalsMismatchError enumerates the fields whose provided value drifted
// from the server-side recomputation by more than Tolerance.
type TotalsMismatchError struct {
	Mismatches []TotalsMismatch
}

type TotalsMismatch struct {
	Field    string  `json:"field"`
	Expected float64 `json:"expected"`
	Provided float64 `json:"provided"`
}

func (e *TotalsMismatchError) Error() string {
	if len(e.Mismatches) == 0 {
		return "totals_mismatch"
	}
	m := e.Mismatches[0]
	return fmt.Sprintf("totals_mismatch: %s expected %.2f, provided %.2f", m.Field, m.Expected, m.Provided)
}

// VerifyTotals recomputes nothing; it compares the submitted totals against
// an already computed breakdown and reports every field out of tolerance.
// This is the guard against client-side tampering with amounts.
func VerifyTotals(provided ProvidedTotals, computed Breakdown) error {
	checks := []struct {
		field    string
		expected float64
		provided float64
	}{
		{"subtotal", computed.Subtotal, provided.Subtotal},
		{"discount_amount", computed.DiscountAmount, provided.DiscountAmount},
		{"taxable_amount", computed.TaxableAmount, provided.TaxableAmount},
		{"cgst_amount", computed.CGSTAmount, provided.CGSTAmount},
		{"sgst_amount", computed.SGSTAmount, provided.SGSTAmount},
		{"total_amount", computed.TotalAmount, provided.TotalAmount},
	}

	var mismatches []TotalsMismatch
	for _, check := range checks {
		if !Equal(check.expected, check.provided) {
			mismatches = append(mismatches, TotalsMismatch{
				Field:    check.field,
				Expected: Round2(check.expected),
				Provided: Round2(check.provided),
			})
		}
	}
	if len(mismatches) > 0 {
		return &TotalsMismatchError{Mismatches: mismatches}
	}
	return nil
}
