package format

import (
	"fmt"
	"strings"
	"time"
)

// FormatINR renders an amount with the Indian digit grouping scheme, e.g.
// 123456.78 -> "₹1,23,456.78". The last three integer digits form one
// group, every group before that has two digits.
func FormatINR(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(raw, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	return sign + "₹" + groupIndian(intPart) + "." + fracPart
}

// FormatAmount is FormatINR without the currency symbol, for table cells
// where the symbol would repeat on every row.
func FormatAmount(amount float64) string {
	formatted := FormatINR(amount)
	return strings.Replace(formatted, "₹", "", 1)
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)

	return strings.Join(groups, ",") + "," + tail
}

// FormatDate renders dates the way Indian invoices conventionally print
// them, day first.
func FormatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Format("02 Jan 2006")
}

// FormatGSTRate drops the trailing zeros from a percentage, 18.00 -> "18%".
func FormatGSTRate(rate float64) string {
	trimmed := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", rate), "0"), ".")
	return trimmed + "%"
}
