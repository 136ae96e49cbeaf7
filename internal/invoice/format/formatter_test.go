package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatINR(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "₹0.00"},
		{500, "₹500.00"},
		{2124, "₹2,124.00"},
		{123456.78, "₹1,23,456.78"},
		{12345678.9, "₹1,23,45,678.90"},
		{-2500.5, "-₹2,500.50"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatINR(tc.amount))
	}
}

func TestFormatGSTRate(t *testing.T) {
	assert.Equal(t, "18%", FormatGSTRate(18))
	assert.Equal(t, "0.25%", FormatGSTRate(0.25))
	assert.Equal(t, "12.5%", FormatGSTRate(12.50))
}

func TestFormatDate(t *testing.T) {
	issued := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "14 Mar 2026", FormatDate(issued))
	assert.Equal(t, "-", FormatDate(time.Time{}))
}
