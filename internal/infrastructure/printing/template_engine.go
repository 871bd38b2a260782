package printing

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/company"
	"github.com/documentiulia/backend/internal/domain/invoice"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcMap = template.FuncMap{
	"money":   formatMoney,
	"qty":     formatQuantity,
	"percent": formatPercent,
	"date":    formatDate,
	"upper":   strings.ToUpper,
	"inc":     func(i int) int { return i + 1 },
}

var invoiceTemplate = template.Must(template.New("invoice.html").Funcs(funcMap).ParseFS(templateFS, "templates/invoice.html"))

// InvoiceView is the data the invoice template sees.
type InvoiceView struct {
	Title     string
	Invoice   *invoice.Invoice
	Supplier  *company.Company
	Foreign   bool
	Received  bool
	VATGroups []VATGroup
	IssuedAt  time.Time
}

// VATGroup is one row of the per-rate VAT breakdown.
type VATGroup struct {
	Rate decimal.Decimal
	Net  decimal.Decimal
	VAT  decimal.Decimal
}

func NewInvoiceView(inv *invoice.Invoice, supplier *company.Company) *InvoiceView {
	title := "Factură fiscală"
	if inv.Type == invoice.TypeReceived {
		title = "Factură primită"
	}
	return &InvoiceView{
		Title:     title,
		Invoice:   inv,
		Supplier:  supplier,
		Foreign:   inv.IsForeignCurrency(),
		Received:  inv.Type == invoice.TypeReceived,
		VATGroups: groupVAT(inv.Lines),
		IssuedAt:  time.Now(),
	}
}

func groupVAT(lines []invoice.Line) []VATGroup {
	var groups []VATGroup
	for _, l := range lines {
		found := false
		for i := range groups {
			if groups[i].Rate.Equal(l.VATRate) {
				groups[i].Net = groups[i].Net.Add(l.NetAmount)
				groups[i].VAT = groups[i].VAT.Add(l.VATAmount)
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, VATGroup{Rate: l.VATRate, Net: l.NetAmount, VAT: l.VATAmount})
		}
	}
	return groups
}

// RenderInvoiceHTML executes the invoice template.
func RenderInvoiceHTML(view *InvoiceView) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return buf.String(), nil
}

// InvoicePrinter renders invoices to PDF.
type InvoicePrinter struct {
	renderer PDFRenderer
}

func NewInvoicePrinter(renderer PDFRenderer) *InvoicePrinter {
	return &InvoicePrinter{renderer: renderer}
}

func (p *InvoicePrinter) InvoicePDF(ctx context.Context, inv *invoice.Invoice, supplier *company.Company) ([]byte, error) {
	html, err := RenderInvoiceHTML(NewInvoiceView(inv, supplier))
	if err != nil {
		return nil, err
	}
	res, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:       html,
		Title:      inv.Number,
		FooterHTML: `<div style="font-size:8px;width:100%;text-align:center;">Pagina <span class="pageNumber"></span> din <span class="totalPages"></span></div>`,
	})
	if err != nil {
		return nil, err
	}
	return res.PDFData, nil
}

// formatMoney uses the Romanian convention: 1.234,56
func formatMoney(d decimal.Decimal) string {
	return groupThousands(d.StringFixed(2))
}

// formatQuantity prints up to four decimals without trailing zeros.
func formatQuantity(d decimal.Decimal) string {
	return groupThousands(d.Round(4).String())
}

func formatPercent(d decimal.Decimal) string {
	return d.String() + "%"
}

func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("02.01.2006")
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format("02.01.2006")
	}
	return ""
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return sign + b.String()
}
