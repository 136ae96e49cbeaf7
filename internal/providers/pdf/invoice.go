package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	invoicedomain "github.com/vyaparlabs/gstbill/internal/invoice/domain"
	"github.com/vyaparlabs/gstbill/internal/invoice/format"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

// GenerateInvoice lays out an A4 tax invoice. The PDF fonts lack the
// rupee glyph, so amounts print as "Rs." here while the HTML rendition
// keeps the symbol.
func (p *PDFProvider) GenerateInvoice(ctx context.Context, trx invoicedomain.Transaction, profile BusinessProfile) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(8, "Tax Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, statusLabel(trx), props.Text{
			Size:  11,
			Style: fontstyle.Bold,
			Align: align.Right,
			Top:   3,
		}),
	)

	m.AddRow(18,
		col.New(6).Add(
			text.New("Invoice number: "+trx.InvoiceNumber, props.Text{Top: 0, Size: 9}),
			text.New("Invoice date: "+format.FormatDate(trx.InvoiceDate), props.Text{Top: 5, Size: 9}),
		),
		col.New(6),
	)

	m.AddRow(36,
		col.New(6).Add(sellerLines(profile)...),
		col.New(6).Add(customerLines(trx)...),
	)

	m.AddRow(2, line.NewCol(12))

	m.AddRow(9,
		text.NewCol(4, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "HSN/SAC", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "GST", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range trx.Items {
		m.AddRow(12,
			text.NewCol(4, item.Name, props.Text{Size: 9}),
			text.NewCol(2, item.HSNCode, props.Text{Size: 9}),
			text.NewCol(1, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, rupees(item.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, format.FormatGSTRate(item.GSTRate), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, rupees(item.LineTotal), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))

	totalRow(m, "Subtotal", trx.Subtotal, false)
	if trx.DiscountAmount > 0 {
		totalRow(m, "Discount", -trx.DiscountAmount, false)
		totalRow(m, "Taxable amount", trx.TaxableAmount, false)
	}
	totalRow(m, "CGST", trx.CGSTAmount, false)
	totalRow(m, "SGST", trx.SGSTAmount, false)
	totalRow(m, "Total", trx.TotalAmount, true)

	if trx.PaymentReference != nil {
		m.AddRow(12,
			text.NewCol(12, "Payment reference: "+*trx.PaymentReference, props.Text{
				Size: 8,
				Top:  4,
			}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

func totalRow(m core.Maroto, label string, amount float64, final bool) {
	style := fontstyle.Normal
	size := 9.0
	if final {
		style = fontstyle.Bold
		size = 11
	}
	m.AddRow(8,
		col.New(7),
		text.NewCol(3, label, props.Text{Size: size, Style: style}),
		text.NewCol(2, rupees(amount), props.Text{Size: size, Style: style, Align: align.Right}),
	)
}

func sellerLines(profile BusinessProfile) []core.Component {
	lines := []core.Component{
		text.New(profile.Name, props.Text{Style: fontstyle.Bold, Size: 9}),
	}
	top := 5.0
	if profile.Address != "" {
		lines = append(lines, text.New(profile.Address, props.Text{Top: top, Size: 9}))
		top += 5
	}
	if profile.GSTIN != "" {
		lines = append(lines, text.New("GSTIN: "+profile.GSTIN, props.Text{Top: top, Size: 9}))
		top += 5
	}
	if profile.Email != "" {
		lines = append(lines, text.New(profile.Email, props.Text{Top: top, Size: 9}))
	}
	return lines
}

func customerLines(trx invoicedomain.Transaction) []core.Component {
	lines := []core.Component{
		text.New("Bill to", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.New(trx.CustomerName, props.Text{Top: 5, Size: 9}),
	}
	top := 10.0
	for _, field := range []*string{trx.CustomerAddress, trx.CustomerEmail, trx.CustomerPhone} {
		if field != nil && *field != "" {
			lines = append(lines, text.New(*field, props.Text{Top: top, Size: 9}))
			top += 5
		}
	}
	if trx.CustomerGSTIN != nil && *trx.CustomerGSTIN != "" {
		lines = append(lines, text.New("GSTIN: "+*trx.CustomerGSTIN, props.Text{Top: top, Size: 9}))
	}
	return lines
}

func statusLabel(trx invoicedomain.Transaction) string {
	if trx.PaymentStatus == invoicedomain.PaymentStatusPaid {
		return "PAID"
	}
	return "PENDING"
}

func rupees(amount float64) string {
	return "Rs. " + format.FormatAmount(amount)
}
