package gst_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vyaparlabs/gstbill/internal/gst"
)

func TestCalculatePercentageDiscount(t *testing.T) {
	// 1 item, 1000 x 2 @ 18% GST, 10% discount.
	breakdown, err := gst.Calculate(
		[]gst.LineItem{{Name: "Consulting", UnitPrice: 1000, Quantity: 2, GSTRate: 18}},
		gst.DiscountRule{Kind: gst.DiscountPercentage, Value: 10},
	)
	require.NoError(t, err)

	assert.InDelta(t, 2000, breakdown.Subtotal, gst.Tolerance)
	assert.InDelta(t, 200, breakdown.DiscountAmount, gst.Tolerance)
	assert.InDelta(t, 1800, breakdown.TaxableAmount, gst.Tolerance)
	assert.InDelta(t, 162, breakdown.CGSTAmount, gst.Tolerance)
	assert.InDelta(t, 162, breakdown.SGSTAmount, gst.Tolerance)
	assert.InDelta(t, 2124, breakdown.TotalAmount, gst.Tolerance)
}

func TestCalculateFixedDiscountProportionalShares(t *testing.T) {
	// 2 items with mixed GST rates, fixed 100 off: the discount is spread by
	// line-total weight before tax is applied.
	breakdown, err := gst.Calculate(
		[]gst.LineItem{
			{Name: "Design", UnitPrice: 500, Quantity: 1, GSTRate: 18},
			{Name: "Development", UnitPrice: 1500, Quantity: 1, GSTRate: 12},
		},
		gst.DiscountRule{Kind: gst.DiscountFixed, Value: 100},
	)
	require.NoError(t, err)

	assert.InDelta(t, 2000, breakdown.Subtotal, gst.Tolerance)
	assert.InDelta(t, 100, breakdown.DiscountAmount, gst.Tolerance)
	assert.InDelta(t, 1900, breakdown.TaxableAmount, gst.Tolerance)

	require.Len(t, breakdown.Items, 2)
	assert.InDelta(t, 25, breakdown.Items[0].DiscountShare, gst.Tolerance)
	assert.InDelta(t, 475, breakdown.Items[0].TaxableAmount, gst.Tolerance)
	assert.InDelta(t, 85.5, breakdown.Items[0].GSTAmount, gst.Tolerance)
	assert.InDelta(t, 75, breakdown.Items[1].DiscountShare, gst.Tolerance)
	assert.InDelta(t, 1425, breakdown.Items[1].TaxableAmount, gst.Tolerance)
	assert.InDelta(t, 171, breakdown.Items[1].GSTAmount, gst.Tolerance)

	assert.InDelta(t, 128.25, breakdown.CGSTAmount, gst.Tolerance)
	assert.InDelta(t, 128.25, breakdown.SGSTAmount, gst.Tolerance)
	assert.InDelta(t, 2028.25, breakdown.TotalAmount, gst.Tolerance)
}

func TestCalculateInvariants(t *testing.T) {
	cases := []struct {
		name  string
		items []gst.LineItem
		rule  gst.DiscountRule
	}{
		{
			name:  "single item no discount",
			items: []gst.LineItem{{Name: "A", UnitPrice: 999.99, Quantity: 3, GSTRate: 18}},
			rule:  gst.DiscountRule{Kind: gst.DiscountPercentage, Value: 0},
		},
		{
			name: "mixed rates full percentage range",
			items: []gst.LineItem{
				{Name: "A", UnitPrice: 123.45, Quantity: 7, GSTRate: 5},
				{Name: "B", UnitPrice: 40, Quantity: 1, GSTRate: 28},
				{Name: "C", UnitPrice: 1, Quantity: 100, GSTRate: 0},
			},
			rule: gst.DiscountRule{Kind: gst.DiscountPercentage, Value: 33.33},
		},
		{
			name: "fixed discount equals subtotal",
			items: []gst.LineItem{
				{Name: "A", UnitPrice: 250, Quantity: 2, GSTRate: 18},
			},
			rule: gst.DiscountRule{Kind: gst.DiscountFixed, Value: 500},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := gst.Calculate(tc.items, tc.rule)
			require.NoError(t, err)

			// Equal split invariant.
			assert.InDelta(t, b.CGSTAmount, b.SGSTAmount, gst.Tolerance)
			// total == taxable + cgst + sgst.
			assert.InDelta(t, b.TaxableAmount+b.CGSTAmount+b.SGSTAmount, b.TotalAmount, gst.Tolerance)
			// taxable == subtotal - discount.
			assert.InDelta(t, b.Subtotal-b.DiscountAmount, b.TaxableAmount, gst.Tolerance)
			// Item GST sums to the split halves.
			var itemGST float64
			for _, item := range b.Items {
				itemGST += item.GSTAmount
			}
			assert.InDelta(t, itemGST, b.CGSTAmount+b.SGSTAmount, gst.Tolerance)
		})
	}
}

func TestCalculateValidation(t *testing.T) {
	valid := []gst.LineItem{{Name: "A", UnitPrice: 100, Quantity: 1, GSTRate: 18}}
	pct := gst.DiscountRule{Kind: gst.DiscountPercentage, Value: 0}

	cases := []struct {
		name  string
		items []gst.LineItem
		rule  gst.DiscountRule
		want  error
	}{
		{"empty items", nil, pct, gst.ErrNoLineItems},
		{"zero price", []gst.LineItem{{Name: "A", UnitPrice: 0, Quantity: 1}}, pct, gst.ErrInvalidUnitPrice},
		{"negative price", []gst.LineItem{{Name: "A", UnitPrice: -5, Quantity: 1}}, pct, gst.ErrInvalidUnitPrice},
		{"zero quantity", []gst.LineItem{{Name: "A", UnitPrice: 10, Quantity: 0}}, pct, gst.ErrInvalidQuantity},
		{"negative rate", []gst.LineItem{{Name: "A", UnitPrice: 10, Quantity: 1, GSTRate: -1}}, pct, gst.ErrInvalidGSTRate},
		{"percentage over 100", valid, gst.DiscountRule{Kind: gst.DiscountPercentage, Value: 101}, gst.ErrInvalidDiscountValue},
		{"negative fixed", valid, gst.DiscountRule{Kind: gst.DiscountFixed, Value: -1}, gst.ErrInvalidDiscountValue},
		{"unknown kind", valid, gst.DiscountRule{Kind: "coupon", Value: 1}, gst.ErrInvalidDiscountKind},
		{"discount exceeds subtotal", valid, gst.DiscountRule{Kind: gst.DiscountFixed, Value: 100.01}, gst.ErrDiscountExceedsTotal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gst.Calculate(tc.items, tc.rule)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestVerifyTotals(t *testing.T) {
	b, err := gst.Calculate(
		[]gst.LineItem{{Name: "A", UnitPrice: 1000, Quantity: 2, GSTRate: 18}},
		gst.DiscountRule{Kind: gst.DiscountPercentage, Value: 10},
	)
	require.NoError(t, err)

	exact := gst.ProvidedTotals{
		Subtotal:       b.Subtotal,
		DiscountAmount: b.DiscountAmount,
		TaxableAmount:  b.TaxableAmount,
		CGSTAmount:     b.CGSTAmount,
		SGSTAmount:     b.SGSTAmount,
		TotalAmount:    b.TotalAmount,
	}
	require.NoError(t, gst.VerifyTotals(exact, b))

	// Float drift up to the tolerance is accepted.
	within := exact
	within.TotalAmount += 0.009
	require.NoError(t, gst.VerifyTotals(within, b))

	// 0.02 off is a rejection that names both values.
	tampered := exact
	tampered.TotalAmount = b.TotalAmount + 0.02
	err = gst.VerifyTotals(tampered, b)
	require.Error(t, err)

	var mismatch *gst.TotalsMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.Len(t, mismatch.Mismatches, 1)
	assert.Equal(t, "total_amount", mismatch.Mismatches[0].Field)
	assert.InDelta(t, b.TotalAmount, mismatch.Mismatches[0].Expected, gst.Tolerance)
	assert.InDelta(t, tampered.TotalAmount, mismatch.Mismatches[0].Provided, gst.Tolerance)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2028.25, gst.Round2(2028.2549))
	assert.Equal(t, 0.01, gst.Round2(0.005))
	assert.True(t, math.Abs(gst.Round2(162.0)-162.0) < 1e-9)
}
