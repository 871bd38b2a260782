package printing

import (
	"context"
	"testing"
	"time"

	"github.com/documentiulia/backend/internal/domain/company"
	"github.com/documentiulia/backend/internal/domain/invoice"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/documentiulia/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleInvoice(t *testing.T) (*invoice.Invoice, *company.Company) {
	t.Helper()
	tenantID := uuid.New()
	co, err := company.NewCompany(tenantID, "Iulia Consulting SRL", "RO18547290")
	require.NoError(t, err)
	co.VATPayer = true
	co.IBAN = "RO49AAAA1B31007593840000"

	inv, err := invoice.NewInvoice(tenantID, co.ID, invoice.TypeIssued, "DI", invoice.FormatNumber("DI", 7),
		time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), invoice.Partner{Name: "Client <Test> SRL", Address: "Str. Lungă 1, Cluj"})
	require.NoError(t, err)

	consulting, err := invoice.NewLine("Consultanță fiscală", d("10"), "ora", d("150"), d("19"))
	require.NoError(t, err)
	books, err := invoice.NewLine("Manual contabilitate", d("2.5"), "", d("1200.40"), d("9"))
	require.NoError(t, err)
	extra, err := invoice.NewLine("Deplasare", d("1"), "", d("100"), d("19"))
	require.NoError(t, err)
	require.NoError(t, inv.SetLines([]invoice.Line{consulting, books, extra}))
	return inv, co
}

func TestRenderInvoiceHTML(t *testing.T) {
	inv, co := sampleInvoice(t)

	html, err := RenderInvoiceHTML(NewInvoiceView(inv, co))
	require.NoError(t, err)

	assert.Contains(t, html, "Factură fiscală")
	assert.Contains(t, html, "DI-000007")
	assert.Contains(t, html, "14.03.2026")
	assert.Contains(t, html, "CUI: RO18547290")
	assert.Contains(t, html, "Consultanță fiscală")
	assert.Contains(t, html, "Client &lt;Test&gt; SRL", "partner data is escaped")
	assert.Contains(t, html, "1.500,00")
	assert.Contains(t, html, "3.001,00")
	assert.NotContains(t, html, "Curs BNR")
}

func TestNewInvoiceView_GroupsVATByRate(t *testing.T) {
	inv, co := sampleInvoice(t)
	view := NewInvoiceView(inv, co)

	require.Len(t, view.VATGroups, 2)
	assert.True(t, view.VATGroups[0].Rate.Equal(d("19")))
	assert.True(t, view.VATGroups[0].Net.Equal(d("1600")))
	assert.True(t, view.VATGroups[0].VAT.Equal(d("304")))
	assert.True(t, view.VATGroups[1].Rate.Equal(d("9")))
	assert.False(t, view.Received)
}

func TestRenderInvoiceHTML_ForeignCurrency(t *testing.T) {
	inv, co := sampleInvoice(t)
	require.NoError(t, inv.SetCurrency(valueobject.EUR, d("4.9750")))

	html, err := RenderInvoiceHTML(NewInvoiceView(inv, co))
	require.NoError(t, err)
	assert.Contains(t, html, "Curs BNR: 4.975 RON")
	assert.Contains(t, html, "Echivalent")
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "1.234.567,89", formatMoney(d("1234567.891")))
	assert.Equal(t, "-12,50", formatMoney(d("-12.5")))
	assert.Equal(t, "0,00", formatMoney(decimal.Zero))
	assert.Equal(t, "2,5", formatQuantity(d("2.5000")))
	assert.Equal(t, "1.000", formatQuantity(d("1000")))
	assert.Equal(t, "19%", formatPercent(d("19")))
	assert.Equal(t, "", formatDate((*time.Time)(nil)))
	assert.Equal(t, "01.02.2026", formatDate(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPrintParams(t *testing.T) {
	p := printParams(&RenderRequest{HTML: "<p>x</p>"})
	assert.InDelta(t, 210/25.4, p.PaperWidth, 0.001)
	assert.InDelta(t, 297/25.4, p.PaperHeight, 0.001)
	assert.InDelta(t, 10/25.4, p.MarginTop, 0.001)
	assert.False(t, p.DisplayHeaderFooter)

	p = printParams(&RenderRequest{HTML: "<p>x</p>", FooterHTML: "<span>1</span>", MarginMM: 5, Landscape: true})
	assert.True(t, p.DisplayHeaderFooter)
	assert.True(t, p.Landscape)
	assert.InDelta(t, 5/25.4, p.MarginTop, 0.001)
	assert.InDelta(t, 15/25.4, p.MarginBottom, 0.001)
}

func TestWrapDocument(t *testing.T) {
	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, wrapDocument(&RenderRequest{HTML: full}))

	wrapped := wrapDocument(&RenderRequest{HTML: "<p>x</p>", Title: "DI-1"})
	assert.Contains(t, wrapped, `<html lang="ro">`)
	assert.Contains(t, wrapped, "<title>DI-1</title>")
	assert.Contains(t, wrapped, "<body><p>x</p></body>")
}

func TestCountPages(t *testing.T) {
	pdf := []byte("%PDF-1.4 /Type /Pages /Type /Page /Type /Page")
	assert.Equal(t, 2, countPages(pdf))
	assert.Equal(t, 1, countPages([]byte("%PDF")))
}

type fakeRenderer struct {
	req *RenderRequest
}

func (f *fakeRenderer) Render(_ context.Context, req *RenderRequest) (*RenderResult, error) {
	f.req = req
	return &RenderResult{PDFData: []byte("%PDF-fake"), PageCount: 1}, nil
}

func (f *fakeRenderer) Close() error { return nil }

func TestInvoicePrinter(t *testing.T) {
	inv, co := sampleInvoice(t)
	r := &fakeRenderer{}

	pdf, err := NewInvoicePrinter(r).InvoicePDF(context.Background(), inv, co)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
	assert.Equal(t, "DI-000007", r.req.Title)
	assert.Contains(t, r.req.HTML, "Manual contabilitate")
	assert.Contains(t, r.req.FooterHTML, "pageNumber")

	_, err = NewInvoicePrinter(DisabledRenderer{}).InvoicePDF(context.Background(), inv, co)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestChromedpRenderer_RejectsEmptyHTML(t *testing.T) {
	r := NewChromedpRenderer(config.PrintingConfig{Enabled: true, Timeout: time.Second}, nil)
	defer r.Close()

	_, err := r.Render(context.Background(), &RenderRequest{HTML: "  "})
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)
}
