package invoice

import (
	"testing"
	"time"

	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newDraft(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(uuid.New(), uuid.New(), TypeIssued, "di", FormatNumber("di", 1),
		time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), Partner{Name: "Acme SRL", CUI: "RO14399840"})
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

func mustLine(t *testing.T, desc, qty, price, rate string) Line {
	t.Helper()
	l, err := NewLine(desc, d(qty), "", d(price), d(rate))
	require.NoError(t, err)
	return l
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "DI-000042", FormatNumber("di", 42))
}

func TestNewInvoice(t *testing.T) {
	inv := newDraft(t)
	assert.Equal(t, "DI", inv.Series)
	assert.Equal(t, "DI-000001", inv.Number)
	assert.Equal(t, StatusDraft, inv.Status)
	assert.Equal(t, "14399840", inv.Partner.CUI)
	assert.Equal(t, valueobject.RON, inv.Currency)
	assert.True(t, inv.ExchangeRate.Equal(decimal.NewFromInt(1)))

	_, err := NewInvoice(uuid.New(), uuid.New(), "proforma", "DI", "1", time.Now(), Partner{Name: "x"})
	assert.Equal(t, "INVALID_TYPE", shared.ErrorCode(err))

	_, err = NewInvoice(uuid.New(), uuid.New(), TypeIssued, "DI", "1", time.Now(), Partner{Name: "x", CUI: "123"})
	assert.Equal(t, "INVALID_CUI", shared.ErrorCode(err))
}

func TestNewLine(t *testing.T) {
	l := mustLine(t, "Consultanță", "3", "33.33", "19")
	assert.Equal(t, "99.99", l.NetAmount.StringFixed(2))
	assert.Equal(t, "19.00", l.VATAmount.StringFixed(2))
	assert.Equal(t, "118.99", l.GrossAmount.StringFixed(2))
	assert.Equal(t, DefaultUnit, l.Unit)

	_, err := NewLine("x", d("1"), "", d("10"), d("20"))
	assert.Equal(t, "INVALID_VAT_RATE", shared.ErrorCode(err))
	_, err = NewLine("x", d("0"), "", d("10"), d("19"))
	assert.Equal(t, "INVALID_LINE", shared.ErrorCode(err))
	_, err = NewLine("", d("1"), "", d("10"), d("19"))
	assert.Equal(t, "INVALID_LINE", shared.ErrorCode(err))
}

func TestInvoice_SetLines_Totals(t *testing.T) {
	inv := newDraft(t)
	err := inv.SetLines([]Line{
		mustLine(t, "Servicii", "1", "1000", "19"),
		mustLine(t, "Carte", "2", "45.50", "5"),
		mustLine(t, "Scutit", "1", "10", "0"),
	})
	require.NoError(t, err)

	assert.Equal(t, "1101.00", inv.NetAmount.StringFixed(2))
	assert.Equal(t, "194.55", inv.VATAmount.StringFixed(2))
	assert.Equal(t, "1295.55", inv.GrossAmount.StringFixed(2))
	assert.Equal(t, inv.GrossAmount.String(), inv.BaseGrossAmount.String())
	assert.Equal(t, 1, inv.Lines[0].LineNumber)
	assert.Equal(t, 3, inv.Lines[2].LineNumber)

	assert.Equal(t, "INVALID_LINES", shared.ErrorCode(inv.SetLines(nil)))
}

func TestInvoice_SetCurrency_BaseAmounts(t *testing.T) {
	inv := newDraft(t)
	require.NoError(t, inv.SetLines([]Line{mustLine(t, "Licență", "1", "100", "19")}))
	require.NoError(t, inv.SetCurrency(valueobject.EUR, d("4.9763")))

	assert.True(t, inv.IsForeignCurrency())
	assert.Equal(t, "497.63", inv.BaseNetAmount.StringFixed(2))
	assert.Equal(t, "94.55", inv.BaseVATAmount.StringFixed(2))
	assert.Equal(t, "592.18", inv.BaseGrossAmount.StringFixed(2))

	assert.Equal(t, "INVALID_EXCHANGE_RATE", shared.ErrorCode(inv.SetCurrency(valueobject.USD, decimal.Zero)))

	require.NoError(t, inv.SetCurrency(valueobject.RON, d("5")))
	assert.True(t, inv.ExchangeRate.Equal(decimal.NewFromInt(1)))
}

func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		ok   bool
	}{
		{StatusDraft, StatusPending, true},
		{StatusDraft, StatusSubmitted, true},
		{StatusDraft, StatusPaid, false},
		{StatusPending, StatusApproved, true},
		{StatusSubmitted, StatusPaid, true},
		{StatusApproved, StatusSubmitted, false},
		{StatusPaid, StatusCancelled, false},
		{StatusCancelled, StatusDraft, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
	assert.Empty(t, StatusPaid.AllowedTransitions())
}

func TestInvoice_Lifecycle(t *testing.T) {
	inv := newDraft(t)

	assert.Equal(t, "INVALID_LINES", shared.ErrorCode(inv.SubmitForApproval()))
	require.NoError(t, inv.SetLines([]Line{mustLine(t, "Servicii", "1", "100", "19")}))

	require.NoError(t, inv.SubmitForApproval())
	require.NoError(t, inv.Approve())
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(inv.SetLines([]Line{mustLine(t, "x", "1", "1", "19")})))

	paidAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, inv.MarkPaid(&paidAt))
	assert.Equal(t, StatusPaid, inv.Status)
	assert.Equal(t, paidAt, *inv.PaidAt)

	err := inv.Cancel("late")
	assert.Equal(t, "INVALID_TRANSITION", shared.ErrorCode(err))
	assert.Len(t, inv.GetDomainEvents(), 3)
}

func TestInvoice_Cancel(t *testing.T) {
	inv := newDraft(t)
	require.NoError(t, inv.Cancel("duplicate"))
	assert.Equal(t, StatusCancelled, inv.Status)
	assert.Equal(t, "duplicate", inv.CancellationReason)
	assert.NotNil(t, inv.CancelledAt)
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(inv.CanDelete()))
}

func TestInvoice_IsOverdue(t *testing.T) {
	inv := newDraft(t)
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, inv.IsOverdue(now))

	due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, inv.SetDueDate(&due))
	assert.True(t, inv.IsOverdue(now))

	require.NoError(t, inv.Cancel(""))
	assert.False(t, inv.IsOverdue(now))
}

func TestInvoice_IsOverdue_ComparesCalendarDays(t *testing.T) {
	inv := newDraft(t)
	due := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, inv.SetDueDate(&due))

	assert.False(t, inv.IsOverdue(time.Date(2025, 6, 10, 0, 0, 1, 0, time.UTC)), "due today, just after midnight")
	assert.False(t, inv.IsOverdue(time.Date(2025, 6, 10, 23, 59, 0, 0, time.UTC)), "due today, late evening")
	assert.True(t, inv.IsOverdue(time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)), "due yesterday")

	bucharest := time.FixedZone("EEST", 3*60*60)
	assert.False(t, inv.IsOverdue(time.Date(2025, 6, 10, 22, 0, 0, 0, bucharest)))
}

func TestStartOfDay(t *testing.T) {
	got := StartOfDay(time.Date(2025, 6, 10, 17, 45, 12, 99, time.FixedZone("EEST", 3*60*60)))
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestInvoice_UpdateHeader(t *testing.T) {
	inv := newDraft(t)
	issue := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	due := issue.AddDate(0, 0, -1)

	err := inv.UpdateHeader(issue, &due, Partner{Name: "Acme"}, nil, "")
	assert.Equal(t, "INVALID_DATE", shared.ErrorCode(err))

	due = issue.AddDate(0, 0, 30)
	require.NoError(t, inv.UpdateHeader(issue, &due, Partner{Name: " Acme Trading "}, nil, "net 30"))
	assert.Equal(t, "Acme Trading", inv.Partner.Name)
	assert.Equal(t, "net 30", inv.Notes)
}
