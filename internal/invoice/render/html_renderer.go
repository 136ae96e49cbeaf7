package render

import (
	"bytes"
	"html/template"

	invoicedomain "github.com/vyaparlabs/gstbill/internal/invoice/domain"
	"github.com/vyaparlabs/gstbill/internal/invoice/format"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Transaction.InvoiceNumber}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 40px;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      color: #1a1f36;
      background: #f7f9fc;
      -webkit-font-smoothing: antialiased;
    }
    .invoice-card {
      background: #ffffff;
      max-width: 760px;
      margin: 0 auto;
      padding: 60px;
      box-shadow: 0 2px 5px rgba(0,0,0,0.04);
      border-radius: 4px;
    }
    .header {
      display: flex;
      justify-content: space-between;
      margin-bottom: 40px;
    }
    .header-left h1 {
      margin: 0;
      font-size: 24px;
      font-weight: 700;
    }
    .header-right {
      text-align: right;
      font-weight: 600;
      color: #8792a2;
      font-size: 16px;
    }
    .badge {
      display: inline-block;
      margin-top: 8px;
      padding: 2px 10px;
      border-radius: 10px;
      font-size: 12px;
      font-weight: 600;
      text-transform: uppercase;
    }
    .badge-paid { background: #d1fae5; color: #065f46; }
    .badge-pending { background: #fef3c7; color: #92400e; }
    .meta-grid {
      display: flex;
      justify-content: space-between;
      margin-bottom: 40px;
    }
    .col { flex: 1; }
    .label {
      font-size: 11px;
      text-transform: uppercase;
      color: #8792a2;
      margin-bottom: 6px;
      font-weight: 600;
      letter-spacing: 0.3px;
    }
    .value {
      font-size: 14px;
      line-height: 1.5;
      color: #1a1f36;
    }
    table {
      width: 100%;
      border-collapse: collapse;
      margin-bottom: 30px;
    }
    th {
      text-align: left;
      text-transform: uppercase;
      font-size: 11px;
      color: #8792a2;
      border-bottom: 1px solid #e3e8ee;
      padding: 10px 0;
      font-weight: 600;
      letter-spacing: 0.3px;
    }
    td {
      padding: 16px 0;
      border-bottom: 1px solid #e3e8ee;
      font-size: 14px;
      vertical-align: top;
    }
    .td-right { text-align: right; }
    .item-title { font-weight: 600; margin-bottom: 2px; }
    .item-sub { font-size: 12px; color: #697386; }
    .totals {
      width: 100%;
      display: flex;
      flex-direction: column;
      align-items: flex-end;
    }
    .total-row {
      display: flex;
      justify-content: space-between;
      width: 280px;
      padding: 6px 0;
      font-size: 14px;
    }
    .total-label { color: #697386; }
    .total-value { text-align: right; font-weight: 500; }
    .total-final {
      border-top: 1px solid #e3e8ee;
      margin-top: 10px;
      padding-top: 10px;
      font-weight: 700;
      font-size: 16px;
    }
    .footer {
      margin-top: 60px;
      font-size: 12px;
      color: #8792a2;
      border-top: 1px solid #e3e8ee;
      padding-top: 20px;
    }
  </style>
</head>
<body>
  <div class="invoice-card">
    <div class="header">
      <div class="header-left">
        <h1>Tax Invoice</h1>
        <div class="label" style="margin-top: 12px;">Invoice number</div>
        <div class="value">{{.Transaction.InvoiceNumber}}</div>
        {{if isPaid .Transaction}}
          <span class="badge badge-paid">Paid</span>
        {{else}}
          <span class="badge badge-pending">Pending</span>
        {{end}}
      </div>
      <div class="header-right">
        {{.BusinessName}}<br>
        {{if .BusinessGSTIN}}<span class="item-sub">GSTIN: {{.BusinessGSTIN}}</span>{{end}}
      </div>
    </div>

    <div class="meta-grid">
      <div class="col">
        <div class="label">Bill to</div>
        <div class="value">
          <strong>{{.Transaction.CustomerName}}</strong><br>
          {{with .Transaction.CustomerEmail}}{{.}}<br>{{end}}
          {{with .Transaction.CustomerPhone}}{{.}}<br>{{end}}
          {{with .Transaction.CustomerAddress}}{{.}}<br>{{end}}
          {{with .Transaction.CustomerGSTIN}}GSTIN: {{.}}{{end}}
        </div>
      </div>
      <div class="col" style="flex: 0 0 200px;">
        <div class="label">Invoice date</div>
        <div class="value">{{formatDate .Transaction.InvoiceDate}}</div>
        {{if .Transaction.PaidAt}}
        <div class="label" style="margin-top: 16px;">Paid on</div>
        <div class="value">{{formatDate .Transaction.PaidAt.UTC}}</div>
        {{end}}
      </div>
    </div>

    <table>
      <thead>
        <tr>
          <th style="width: 40%;">Description</th>
          <th>HSN/SAC</th>
          <th class="td-right">Qty</th>
          <th class="td-right">Rate</th>
          <th class="td-right">GST</th>
          <th class="td-right">Amount</th>
        </tr>
      </thead>
      <tbody>
        {{range .Transaction.Items}}
        <tr>
          <td><div class="item-title">{{.Name}}</div></td>
          <td>{{.HSNCode}}</td>
          <td class="td-right">{{.Quantity}}</td>
          <td class="td-right">{{formatAmount .UnitPrice}}</td>
          <td class="td-right">{{formatGSTRate .GSTRate}}</td>
          <td class="td-right" style="font-weight: 500;">{{formatAmount .LineTotal}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <div class="totals">
      <div class="total-row">
        <span class="total-label">Subtotal</span>
        <span class="total-value">{{formatINR .Transaction.Subtotal}}</span>
      </div>
      {{if gt .Transaction.DiscountAmount 0.0}}
      <div class="total-row">
        <span class="total-label">Discount</span>
        <span class="total-value">-{{formatINR .Transaction.DiscountAmount}}</span>
      </div>
      <div class="total-row">
        <span class="total-label">Taxable amount</span>
        <span class="total-value">{{formatINR .Transaction.TaxableAmount}}</span>
      </div>
      {{end}}
      <div class="total-row">
        <span class="total-label">CGST</span>
        <span class="total-value">{{formatINR .Transaction.CGSTAmount}}</span>
      </div>
      <div class="total-row">
        <span class="total-label">SGST</span>
        <span class="total-value">{{formatINR .Transaction.SGSTAmount}}</span>
      </div>
      <div class="total-row total-final">
        <span class="total-label" style="color: #1a1f36;">Total</span>
        <span class="total-value">{{formatINR .Transaction.TotalAmount}}</span>
      </div>
    </div>

    {{if .FooterNote}}
    <div class="footer">{{.FooterNote}}</div>
    {{end}}
  </div>
</body>
</html>
`

// RenderInput carries everything the template needs. BusinessName and
// BusinessGSTIN come from configuration, not the transaction.
type RenderInput struct {
	Transaction   invoicedomain.Transaction
	BusinessName  string
	BusinessGSTIN string
	FooterNote    string
}

type Renderer interface {
	RenderHTML(input RenderInput) (string, error)
}

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"formatINR":     format.FormatINR,
		"formatAmount":  format.FormatAmount,
		"formatDate":    format.FormatDate,
		"formatGSTRate": format.FormatGSTRate,
		"isPaid": func(t invoicedomain.Transaction) bool {
			return t.PaymentStatus == invoicedomain.PaymentStatusPaid
		},
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(input RenderInput) (string, error) {
	if input.BusinessName == "" {
		input.BusinessName = "Invoice"
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}
