package procurement

import (
	"context"
	"errors"
	"testing"

	"github.com/documentiulia/backend/internal/domain/procurement"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]procurement.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, companyID, filter)
	return args.Get(0).([]procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Count(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, companyID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) NextSequence(ctx context.Context, tenantID, companyID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID, companyID)
	return args.Int(0), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, po *procurement.PurchaseOrder) error {
	return m.Called(ctx, po).Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, po *procurement.PurchaseOrder) error {
	return m.Called(ctx, po).Error(0)
}

func (m *MockPurchaseOrderRepository) Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, companyID, id).Error(0)
}

type MockStockReceiver struct {
	mock.Mock
}

func (m *MockStockReceiver) ReceiveStock(ctx context.Context, tenantID, companyID, productID uuid.UUID, quantity, unitCost decimal.Decimal, reference string) error {
	return m.Called(ctx, tenantID, companyID, productID, quantity, unitCost, reference).Error(0)
}

type fixture struct {
	orders    *MockPurchaseOrderRepository
	stock     *MockStockReceiver
	svc       *PurchaseOrderService
	tenantID  uuid.UUID
	companyID uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		orders:    new(MockPurchaseOrderRepository),
		stock:     new(MockStockReceiver),
		tenantID:  uuid.New(),
		companyID: uuid.New(),
	}
	f.svc = NewPurchaseOrderService(f.orders, f.stock, nil)
	return f
}

// sentOrder builds an order sent to the supplier with one stocked and one service line.
func (f *fixture) sentOrder(t *testing.T, productID uuid.UUID) *procurement.PurchaseOrder {
	t.Helper()
	po, err := procurement.NewPurchaseOrder(f.tenantID, f.companyID, "PO-000003", procurement.Header{
		Supplier: procurement.Supplier{Name: "Papetaria Nord SRL"},
	})
	require.NoError(t, err)
	stocked, err := procurement.NewLine(&productID, "Hartie A4", decimal.NewFromInt(10), "top", decimal.RequireFromString("18.50"), decimal.NewFromInt(21))
	require.NoError(t, err)
	service, err := procurement.NewLine(nil, "Transport", decimal.NewFromInt(1), "", decimal.NewFromInt(50), decimal.NewFromInt(21))
	require.NoError(t, err)
	require.NoError(t, po.SetLines([]procurement.Line{stocked, service}))
	require.NoError(t, po.Submit())
	require.NoError(t, po.Approve(uuid.New()))
	require.NoError(t, po.Send())
	po.ClearDomainEvents()
	return po
}

func TestPurchaseOrderService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	productID := uuid.New()

	f.orders.On("NextSequence", ctx, f.tenantID, f.companyID).Return(4, nil)
	f.orders.On("Save", ctx, mock.AnythingOfType("*procurement.PurchaseOrder")).Return(nil)

	resp, err := f.svc.Create(ctx, f.tenantID, f.companyID, CreatePurchaseOrderRequest{
		SupplierName: "Papetaria Nord SRL",
		SupplierCUI:  "RO14399840",
		OrderDate:    "2026-10-18",
		ExpectedDate: "2026-10-25",
		Currency:     "ron",
		Lines: []LineRequest{
			{ProductID: &productID, Description: "Hartie A4", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(20), VATRate: decimal.NewFromInt(21)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "PO-000004", resp.Number)
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, "14399840", resp.SupplierCUI)
	assert.Equal(t, "2026-10-25", *resp.ExpectedDate)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 1, resp.Lines[0].LineNumber)
	assert.True(t, decimal.NewFromInt(242).Equal(resp.GrossAmount))
}

func TestPurchaseOrderService_CreateRejectsBadLine(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), f.tenantID, f.companyID, CreatePurchaseOrderRequest{
		SupplierName: "Papetaria Nord SRL",
		Lines: []LineRequest{
			{Description: "Hartie", Quantity: decimal.NewFromInt(1), VATRate: decimal.NewFromInt(21)},
			{Description: "Toner", Quantity: decimal.NewFromInt(1), VATRate: decimal.NewFromInt(24)},
		},
	})
	require.Error(t, err)
	assert.Equal(t, "INVALID_VAT_RATE", shared.ErrorCode(err))
	assert.Contains(t, err.Error(), "Line 2")
	f.orders.AssertNotCalled(t, "NextSequence", mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseOrderService_SubmitWithoutLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	po, err := procurement.NewPurchaseOrder(f.tenantID, f.companyID, "PO-000001", procurement.Header{Supplier: procurement.Supplier{Name: "Furnizor SRL"}})
	require.NoError(t, err)

	f.orders.On("FindByID", ctx, f.tenantID, f.companyID, po.ID).Return(po, nil)

	_, err = f.svc.Submit(ctx, f.tenantID, f.companyID, po.ID)
	assert.Equal(t, "NO_LINES", shared.ErrorCode(err))
	f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestPurchaseOrderService_RejectReturnsToDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	po, err := procurement.NewPurchaseOrder(f.tenantID, f.companyID, "PO-000001", procurement.Header{Supplier: procurement.Supplier{Name: "Furnizor SRL"}})
	require.NoError(t, err)
	line, err := procurement.NewLine(nil, "Servicii", decimal.NewFromInt(1), "", decimal.NewFromInt(100), decimal.NewFromInt(21))
	require.NoError(t, err)
	require.NoError(t, po.SetLines([]procurement.Line{line}))

	f.orders.On("FindByID", ctx, f.tenantID, f.companyID, po.ID).Return(po, nil)
	f.orders.On("SaveWithLock", ctx, po).Return(nil)

	resp, err := f.svc.Submit(ctx, f.tenantID, f.companyID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending_approval", resp.Status)

	resp, err = f.svc.Reject(ctx, f.tenantID, f.companyID, po.ID, ReasonRequest{Reason: "Pret prea mare"})
	require.NoError(t, err)
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, "Pret prea mare", resp.RejectReason)
}

func TestPurchaseOrderService_ReceiveBooksStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	productID := uuid.New()
	po := f.sentOrder(t, productID)
	stocked, service := po.Lines[0], po.Lines[1]

	f.orders.On("FindByID", ctx, f.tenantID, f.companyID, po.ID).Return(po, nil)
	f.orders.On("SaveWithLock", ctx, po).Return(nil)
	f.stock.On("ReceiveStock", ctx, f.tenantID, f.companyID, productID,
		decimal.NewFromInt(4), decimal.RequireFromString("18.50"), "PO-000003").Return(nil)

	resp, err := f.svc.Receive(ctx, f.tenantID, f.companyID, po.ID, ReceiveRequest{Items: []ReceiveItemRequest{
		{LineID: stocked.ID, Quantity: decimal.NewFromInt(4)},
		{LineID: service.ID, Quantity: decimal.NewFromInt(1)},
	}})
	require.NoError(t, err)
	assert.Equal(t, "partially_received", resp.Status)
	assert.Empty(t, resp.StockWarnings)
	assert.True(t, decimal.NewFromInt(6).Equal(resp.Lines[0].Remaining))
	assert.Equal(t, "fully_received", resp.Lines[1].Status)
	f.stock.AssertNumberOfCalls(t, "ReceiveStock", 1)
}

func TestPurchaseOrderService_ReceiveCompletesOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	productID := uuid.New()
	po := f.sentOrder(t, productID)

	f.orders.On("FindByID", ctx, f.tenantID, f.companyID, po.ID).Return(po, nil)
	f.orders.On("SaveWithLock", ctx, po).Return(nil)
	f.stock.On("ReceiveStock", ctx, f.tenantID, f.companyID, productID, mock.Anything, mock.Anything, "PO-000003").
		Return(shared.NewDomainError("PRODUCT_INACTIVE", "Product is inactive"))

	resp, err := f.svc.Receive(ctx, f.tenantID, f.companyID, po.ID, ReceiveRequest{Items: []ReceiveItemRequest{
		{LineID: po.Lines[0].ID, Quantity: decimal.NewFromInt(10)},
		{LineID: po.Lines[1].ID, Quantity: decimal.NewFromInt(1)},
	}})
	require.NoError(t, err)
	assert.Equal(t, "fully_received", resp.Status)
	assert.NotNil(t, resp.ReceivedAt)
	require.Len(t, resp.StockWarnings, 1)
	assert.Contains(t, resp.StockWarnings[0], "Product is inactive")

	resp2, err := f.svc.MarkInvoiced(ctx, f.tenantID, f.companyID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "invoiced", resp2.Status)

	resp2, err = f.svc.Close(ctx, f.tenantID, f.companyID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "closed", resp2.Status)
}

func TestPurchaseOrderService_ReceiveOverRemaining(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	po := f.sentOrder(t, uuid.New())

	f.orders.On("FindByID", ctx, f.tenantID, f.companyID, po.ID).Return(po, nil)

	_, err := f.svc.Receive(ctx, f.tenantID, f.companyID, po.ID, ReceiveRequest{Items: []ReceiveItemRequest{
		{LineID: po.Lines[0].ID, Quantity: decimal.NewFromInt(11)},
	}})
	assert.Equal(t, "EXCEEDS_REMAINING", shared.ErrorCode(err))
	assert.Equal(t, procurement.StatusSentToSupplier, po.Status)
	f.stock.AssertNotCalled(t, "ReceiveStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseOrderService_ReceiveSaveConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	po := f.sentOrder(t, uuid.New())

	f.orders.On("FindByID", ctx, f.tenantID, f.companyID, po.ID).Return(po, nil)
	f.orders.On("SaveWithLock", ctx, po).Return(shared.ErrConcurrencyConflict)

	_, err := f.svc.Receive(ctx, f.tenantID, f.companyID, po.ID, ReceiveRequest{Items: []ReceiveItemRequest{
		{LineID: po.Lines[0].ID, Quantity: decimal.NewFromInt(1)},
	}})
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	f.stock.AssertNotCalled(t, "ReceiveStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseOrderService_CancelAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	po := f.sentOrder(t, uuid.New())

	f.orders.On("FindByID", ctx, f.tenantID, f.companyID, po.ID).Return(po, nil)
	f.orders.On("SaveWithLock", ctx, po).Return(nil)

	err := f.svc.Delete(ctx, f.tenantID, f.companyID, po.ID)
	assert.Equal(t, "NOT_EDITABLE", shared.ErrorCode(err))

	resp, err := f.svc.Cancel(ctx, f.tenantID, f.companyID, po.ID, ReasonRequest{Reason: "Furnizor indisponibil"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, "cancelled", resp.Lines[0].Status)

	_, err = f.svc.Acknowledge(ctx, f.tenantID, f.companyID, po.ID)
	assert.Equal(t, "INVALID_TRANSITION", shared.ErrorCode(err))
}

func TestPurchaseOrderService_UpdateOnlyDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	po := f.sentOrder(t, uuid.New())

	f.orders.On("FindByID", ctx, f.tenantID, f.companyID, po.ID).Return(po, nil)

	_, err := f.svc.Update(ctx, f.tenantID, f.companyID, po.ID, UpdatePurchaseOrderRequest{SupplierName: "Alt Furnizor SRL"})
	assert.Equal(t, "NOT_EDITABLE", shared.ErrorCode(err))
}

func TestPurchaseOrderService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	match := mock.MatchedBy(func(fl shared.Filter) bool {
		return fl.Filters["status"] == "approved" && fl.Search == "nord" && fl.Filters["from_date"] != nil
	})
	f.orders.On("FindAll", ctx, f.tenantID, f.companyID, match).Return([]procurement.PurchaseOrder{}, nil)
	f.orders.On("Count", ctx, f.tenantID, f.companyID, match).Return(int64(0), nil)

	_, total, err := f.svc.List(ctx, f.tenantID, f.companyID, PurchaseOrderListFilter{Status: "approved", Search: " nord ", FromDate: "2026-10-01"})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, _, err = f.svc.List(ctx, f.tenantID, f.companyID, PurchaseOrderListFilter{Status: "shipped"})
	assert.Equal(t, "INVALID_STATUS", shared.ErrorCode(err))
}
