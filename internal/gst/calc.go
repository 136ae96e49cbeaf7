// Package gst computes Indian GST invoice totals: subtotal, discount,
// taxable amount, the CGST/SGST split and the grand total. It is pure
// arithmetic; persistence and validation of inputs happen elsewhere.
package gst

import (
	"errors"
	"math"
)

// Tolerance is the maximum currency-unit drift accepted between two
// independently computed totals.
const Tolerance = 0.01

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

var (
	ErrNoLineItems          = errors.New("no_line_items")
	ErrInvalidUnitPrice     = errors.New("invalid_unit_price")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidGSTRate       = errors.New("invalid_gst_rate")
	ErrInvalidDiscountKind  = errors.New("invalid_discount_kind")
	ErrInvalidDiscountValue = errors.New("invalid_discount_value")
	ErrDiscountExceedsTotal = errors.New("discount_exceeds_subtotal")
)

// LineItem is one billable line on a transaction.
type LineItem struct {
	ServiceID string
	Name      string
	HSNCode   string
	UnitPrice float64
	Quantity  int64
	GSTRate   float64 // percentage, e.g. 18 for 18%
}

// DiscountRule applies either a percentage of the subtotal or a fixed amount.
type DiscountRule struct {
	Kind  DiscountKind
	Value float64
}

// ItemBreakdown is the per-item share of discount and tax.
type ItemBreakdown struct {
	LineItem
	LineTotal     float64
	DiscountShare float64
	TaxableAmount float64
	GSTAmount     float64
}

// Breakdown is the full computed result for a transaction.
type Breakdown struct {
	Items          []ItemBreakdown
	Subtotal       float64
	DiscountAmount float64
	TaxableAmount  float64
	CGSTAmount     float64
	SGSTAmount     float64
	TotalAmount    float64
}

// Calculate derives all amounts from the line items and discount rule.
//
// Each item's GST is computed on its proportional share of the taxable
// amount: a fixed discount is spread across items by line-total weight, a
// percentage discount applies uniformly. CGST and SGST are the equal halves
// of the summed item GST; intra-state supply only, IGST is not modeled.
func Calculate(items []LineItem, rule DiscountRule) (Breakdown, error) {
	if err := validate(items, rule); err != nil {
		return Breakdown{}, err
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	var discount float64
	switch rule.Kind {
	case DiscountPercentage:
		discount = subtotal * rule.Value / 100
	case DiscountFixed:
		discount = rule.Value
	}
	if discount > subtotal {
		return Breakdown{}, ErrDiscountExceedsTotal
	}

	taxable := subtotal - discount

	breakdown := Breakdown{
		Items:          make([]ItemBreakdown, 0, len(items)),
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
	}

	var totalGST float64
	for _, item := range items {
		lineTotal := item.UnitPrice * float64(item.Quantity)

		var share float64
		switch rule.Kind {
		case DiscountPercentage:
			share = lineTotal * rule.Value / 100
		case DiscountFixed:
			if subtotal > 0 {
				share = lineTotal / subtotal * discount
			}
		}

		itemTaxable := lineTotal - share
		itemGST := itemTaxable * item.GSTRate / 100
		totalGST += itemGST

		breakdown.Items = append(breakdown.Items, ItemBreakdown{
			LineItem:      item,
			LineTotal:     lineTotal,
			DiscountShare: share,
			TaxableAmount: itemTaxable,
			GSTAmount:     itemGST,
		})
	}

	breakdown.CGSTAmount = totalGST / 2
	breakdown.SGSTAmount = totalGST / 2
	breakdown.TotalAmount = taxable + breakdown.CGSTAmount + breakdown.SGSTAmount

	return breakdown, nil
}

func validate(items []LineItem, rule DiscountRule) error {
	if len(items) == 0 {
		return ErrNoLineItems
	}
	for _, item := range items {
		if item.UnitPrice <= 0 {
			return ErrInvalidUnitPrice
		}
		if item.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if item.GSTRate < 0 {
			return ErrInvalidGSTRate
		}
	}
	switch rule.Kind {
	case DiscountPercentage:
		if rule.Value < 0 || rule.Value > 100 {
			return ErrInvalidDiscountValue
		}
	case DiscountFixed:
		if rule.Value < 0 {
			return ErrInvalidDiscountValue
		}
	default:
		return ErrInvalidDiscountKind
	}
	return nil
}

// Equal reports whether two amounts agree within Tolerance.
func Equal(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}

// Round2 rounds to two decimal places for presentation and persistence.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
