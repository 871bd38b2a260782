package invoice

import (
	"context"

	"github.com/documentiulia/backend/internal/domain/invoice"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BulkStatus applies one status change to many invoices. Items are processed one by one;
// a failure never rolls back the invoices already updated.
func (s *InvoiceService) BulkStatus(ctx context.Context, tenantID, companyID uuid.UUID, req BulkStatusRequest) (*BulkResult, error) {
	target := invoice.Status(req.Status)
	if !target.IsValid() || target == invoice.StatusDraft {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unsupported target status: "+req.Status)
	}
	paidAt, err := parseOptionalDate("paid_at", req.PaidAt)
	if err != nil {
		return nil, err
	}
	opts := invoice.TransitionOptions{PaidAt: paidAt, Reason: req.Reason}

	return s.bulk(ctx, tenantID, companyID, req.IDs, func(inv *invoice.Invoice) (string, error) {
		if err := inv.TransitionTo(target, opts); err != nil {
			return "", err
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			return "", err
		}
		s.publishDomainEvents(ctx, inv)
		return string(inv.Status), nil
	})
}

// BulkDelete removes the draft invoices among ids.
func (s *InvoiceService) BulkDelete(ctx context.Context, tenantID, companyID uuid.UUID, req BulkDeleteRequest) (*BulkResult, error) {
	return s.bulk(ctx, tenantID, companyID, req.IDs, func(inv *invoice.Invoice) (string, error) {
		return "", s.delete(ctx, inv)
	})
}

func (s *InvoiceService) bulk(ctx context.Context, tenantID, companyID uuid.UUID, ids []uuid.UUID, apply func(*invoice.Invoice) (string, error)) (*BulkResult, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one invoice id is required")
	}

	found, err := s.invoiceRepo.FindByIDs(ctx, tenantID, companyID, unique)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*invoice.Invoice, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	result := &BulkResult{
		Success: []BulkSuccessItem{},
		Failed:  []BulkFailedItem{},
		Summary: BulkSummary{Total: len(unique)},
	}
	for _, id := range unique {
		inv, ok := byID[id]
		if !ok {
			result.Failed = append(result.Failed, BulkFailedItem{
				ID:        id,
				ErrorCode: shared.ErrNotFound.Code,
				Error:     "Invoice not found",
			})
			continue
		}
		previous := string(inv.Status)
		next, err := apply(inv)
		if err != nil {
			result.Failed = append(result.Failed, s.failedItem(inv, err))
			continue
		}
		result.Success = append(result.Success, BulkSuccessItem{
			ID:             inv.ID,
			Number:         inv.Number,
			PreviousStatus: previous,
			NewStatus:      next,
		})
	}
	result.Summary.Updated = len(result.Success)
	result.Summary.Failed = len(result.Failed)
	return result, nil
}

func (s *InvoiceService) failedItem(inv *invoice.Invoice, err error) BulkFailedItem {
	item := BulkFailedItem{ID: inv.ID, Number: inv.Number}
	if code := shared.ErrorCode(err); code != "" {
		item.ErrorCode = code
		item.Error = err.Error()
		return item
	}
	s.logger.Error("bulk invoice operation failed",
		zap.String("invoice_id", inv.ID.String()),
		zap.Error(err))
	item.ErrorCode = "INTERNAL_ERROR"
	item.Error = "Internal error"
	return item
}

// dedupe keeps the first occurrence of every id.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
