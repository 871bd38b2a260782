// Package efactura implements uploading invoices to ANAF e-Factura and following their verdict.
package efactura

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/company"
	"github.com/documentiulia/backend/internal/domain/efactura"
	"github.com/documentiulia/backend/internal/domain/invoice"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/anaf"
	"github.com/documentiulia/backend/internal/infrastructure/config"
	"github.com/documentiulia/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultSyncBatch      = 100
	defaultIdempotencyTTL = 10 * time.Minute
	defaultAnalyticsDays  = 30
	xmlURLTTL             = 15 * time.Minute

	// Failed uploads are retried by the background worker after 1m, 2m, 4m, 8m.
	retryBaseDelay  = time.Minute
	maxAutoAttempts = 5
	retryBatch      = 50

	recordAttempts = 3
)

// ANAFGateway is the part of the ANAF client the service drives.
type ANAFGateway interface {
	Upload(ctx context.Context, cui string, document []byte) (*anaf.UploadResult, error)
	Status(ctx context.Context, uploadIndex string) (*anaf.StatusResult, error)
}

type InvoiceStore interface {
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*invoice.Invoice, error)
	SaveWithLock(ctx context.Context, inv *invoice.Invoice) error
}

type CompanyLookup interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*company.Company, error)
}

// UploadRecorder counts upload outcomes. *telemetry.BusinessMetrics implements it.
type UploadRecorder interface {
	RecordEFacturaUpload(ctx context.Context, tenantID uuid.UUID, result string)
}

// Upload outcomes passed to UploadRecorder.
const (
	uploadAccepted   = "accepted"
	uploadFailed     = "failed"
	uploadUnrecorded = "unrecorded"
)

// EFacturaService handles e-Factura submissions
type EFacturaService struct {
	submissions    efactura.SubmissionRepository
	invoices       InvoiceStore
	companies      CompanyLookup
	gateway        ANAFGateway
	files          storage.ObjectStorage
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	uploads        UploadRecorder
	logger         *zap.Logger

	syncBatch      int
	idempotencyTTL time.Duration
	now            func() time.Time
}

func NewEFacturaService(
	cfg config.EFacturaConfig,
	submissions efactura.SubmissionRepository,
	invoices InvoiceStore,
	companies CompanyLookup,
	gateway ANAFGateway,
	files storage.ObjectStorage,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *EFacturaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	syncBatch := cfg.SyncBatchSize
	if syncBatch <= 0 {
		syncBatch = defaultSyncBatch
	}
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &EFacturaService{
		submissions:    submissions,
		invoices:       invoices,
		companies:      companies,
		gateway:        gateway,
		files:          files,
		idempotency:    idempotency,
		logger:         logger.Named("efactura"),
		syncBatch:      syncBatch,
		idempotencyTTL: ttl,
		now:            time.Now,
	}
}

func (s *EFacturaService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *EFacturaService) SetUploadRecorder(recorder UploadRecorder) {
	s.uploads = recorder
}

func (s *EFacturaService) recordOutcome(ctx context.Context, tenantID uuid.UUID, result string) {
	if s.uploads != nil {
		s.uploads.RecordEFacturaUpload(ctx, tenantID, result)
	}
}

// Submit uploads an invoice. A submission already processing or accepted is returned as is unless forced.
func (s *EFacturaService) Submit(ctx context.Context, tenantID, companyID uuid.UUID, req SubmitRequest) (*SubmissionResponse, error) {
	sub, err := s.submit(ctx, tenantID, companyID, req.InvoiceID, req.Force)
	if err != nil {
		return nil, err
	}
	response := ToSubmissionResponse(sub)
	return &response, nil
}

func (s *EFacturaService) submit(ctx context.Context, tenantID, companyID, invoiceID uuid.UUID, force bool) (*efactura.Submission, error) {
	inv, err := s.invoices.FindByID(ctx, tenantID, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := checkSubmittable(inv, force); err != nil {
		return nil, err
	}

	latest, err := s.submissions.FindLatestByInvoice(ctx, tenantID, companyID, invoiceID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if latest != nil && latest.IsInFlight() && !force {
		return latest, nil
	}

	sub, isNew, err := prepareSubmission(inv, latest)
	if err != nil {
		return nil, err
	}
	return s.upload(ctx, inv, sub, isNew)
}

// Resubmit uploads again a rejected or failed submission, typically after the invoice was corrected.
func (s *EFacturaService) Resubmit(ctx context.Context, tenantID, companyID, submissionID uuid.UUID) (*SubmissionResponse, error) {
	sub, err := s.submissions.FindByID(ctx, tenantID, companyID, submissionID)
	if err != nil {
		return nil, err
	}
	inv, err := s.invoices.FindByID(ctx, tenantID, companyID, sub.InvoiceID)
	if err != nil {
		return nil, err
	}
	if err := sub.Resubmit(); err != nil {
		return nil, err
	}
	sub, err = s.upload(ctx, inv, sub, false)
	if err != nil {
		return nil, err
	}
	response := ToSubmissionResponse(sub)
	return &response, nil
}

// Batch submits invoices one after another. Without continue_on_error the first failure
// stops the run and the remaining ids are reported as skipped.
func (s *EFacturaService) Batch(ctx context.Context, tenantID, companyID uuid.UUID, req BatchSubmitRequest) (*BatchResult, error) {
	continueOnError := req.ContinueOnError == nil || *req.ContinueOnError
	ids := dedupe(req.InvoiceIDs)

	result := &BatchResult{Total: len(ids), Results: make([]BatchItemResult, 0, len(ids))}
	stopped := false
	for _, id := range ids {
		if stopped {
			result.Results = append(result.Results, BatchItemResult{InvoiceID: id, Skipped: true, Error: "skipped after previous failure"})
			result.Skipped++
			continue
		}

		item := BatchItemResult{InvoiceID: id}
		sub, err := s.submit(ctx, tenantID, companyID, id, req.Force)
		switch {
		case err != nil:
			item.Error = err.Error()
		case sub.Status == efactura.StatusError || sub.Status == efactura.StatusRejected:
			item.SubmissionID = &sub.ID
			item.Error = sub.ErrorMessage
		default:
			item.Success = true
			item.SubmissionID = &sub.ID
			item.UploadIndex = sub.UploadIndex
		}
		result.Results = append(result.Results, item)

		if item.Success {
			result.Success++
			continue
		}
		result.Failed++
		if !continueOnError {
			stopped = true
		}
	}
	return result, nil
}

func (s *EFacturaService) GetByID(ctx context.Context, tenantID, companyID, submissionID uuid.UUID) (*SubmissionResponse, error) {
	sub, err := s.submissions.FindByID(ctx, tenantID, companyID, submissionID)
	if err != nil {
		return nil, err
	}
	response := ToSubmissionResponse(sub)
	return &response, nil
}

func (s *EFacturaService) List(ctx context.Context, tenantID, companyID uuid.UUID, filter SubmissionListFilter) ([]SubmissionResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = strings.TrimSpace(filter.Search)
	if filter.Status != "" {
		if !efactura.Status(filter.Status).IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown submission status: "+filter.Status)
		}
		domainFilter.Filters["status"] = filter.Status
	}

	subs, err := s.submissions.FindAll(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.submissions.Count(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSubmissionResponses(subs), total, nil
}

// Check asks ANAF for the verdict of one processing submission.
func (s *EFacturaService) Check(ctx context.Context, tenantID, companyID, submissionID uuid.UUID) (*SubmissionResponse, error) {
	sub, err := s.submissions.FindByID(ctx, tenantID, companyID, submissionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.check(ctx, sub); err != nil {
		return nil, err
	}
	response := ToSubmissionResponse(sub)
	return &response, nil
}

func (s *EFacturaService) check(ctx context.Context, sub *efactura.Submission) (bool, error) {
	if sub.Status != efactura.StatusProcessing {
		return false, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot check status of a %s submission", sub.Status))
	}
	res, err := s.gateway.Status(ctx, sub.UploadIndex)
	if err != nil {
		return false, err
	}
	final, err := sub.ApplyANAFState(res.State, res.DownloadID, res.Message)
	if err != nil {
		return false, err
	}
	if err := s.submissions.SaveWithLock(ctx, sub); err != nil {
		return false, err
	}
	s.publishDomainEvents(ctx, sub)
	return final, nil
}

// Sync checks the newest processing submissions of a company. A failing item is
// counted as not synced and the rest continue.
func (s *EFacturaService) Sync(ctx context.Context, tenantID, companyID uuid.UUID) (*SyncResult, error) {
	subs, err := s.submissions.FindProcessing(ctx, tenantID, companyID, s.syncBatch)
	if err != nil {
		return nil, err
	}
	result := &SyncResult{Total: len(subs)}
	for i := range subs {
		sub := &subs[i]
		final, err := s.check(ctx, sub)
		if err != nil {
			s.logger.Warn("e-Factura status check failed",
				zap.String("submission_id", sub.ID.String()),
				zap.String("upload_index", sub.UploadIndex),
				zap.Error(err))
			continue
		}
		result.Synced++
		if final {
			result.Updated++
		}
	}
	return result, nil
}

// SyncTenant syncs every company of the tenant that has submissions awaiting a verdict.
func (s *EFacturaService) SyncTenant(ctx context.Context, tenantID uuid.UUID) (*SyncResult, error) {
	companyIDs, err := s.submissions.FindCompaniesWithProcessing(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	total := &SyncResult{}
	for _, companyID := range companyIDs {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		r, err := s.Sync(ctx, tenantID, companyID)
		if err != nil {
			s.logger.Warn("e-Factura company sync failed",
				zap.String("tenant_id", tenantID.String()),
				zap.String("company_id", companyID.String()),
				zap.Error(err))
			continue
		}
		total.Total += r.Total
		total.Synced += r.Synced
		total.Updated += r.Updated
	}
	return total, nil
}

// RetryDue uploads again the failed submissions of a tenant whose next attempt is due.
// It returns how many of them reached ANAF.
func (s *EFacturaService) RetryDue(ctx context.Context, tenantID uuid.UUID) (int, error) {
	subs, err := s.submissions.FindDueForRetry(ctx, tenantID, s.now(), maxAutoAttempts, retryBatch)
	if err != nil {
		return 0, err
	}
	uploaded := 0
	for i := range subs {
		if err := ctx.Err(); err != nil {
			return uploaded, err
		}
		sub := &subs[i]
		inv, err := s.invoices.FindByID(ctx, tenantID, sub.CompanyID, sub.InvoiceID)
		if err != nil {
			s.logger.Warn("retry skipped, invoice unavailable",
				zap.String("submission_id", sub.ID.String()), zap.Error(err))
			continue
		}
		if err := sub.Resubmit(); err != nil {
			continue
		}
		sub, err = s.upload(ctx, inv, sub, false)
		if err != nil {
			s.logger.Warn("e-Factura retry failed",
				zap.String("submission_id", subs[i].ID.String()), zap.Error(err))
			continue
		}
		if sub.Status == efactura.StatusProcessing {
			uploaded++
		}
	}
	return uploaded, nil
}

// Analytics summarizes submissions created during the last days (30 by default).
func (s *EFacturaService) Analytics(ctx context.Context, tenantID, companyID uuid.UUID, filter AnalyticsFilter) (*AnalyticsResponse, error) {
	days := filter.Days
	if days <= 0 {
		days = defaultAnalyticsDays
	}
	since := s.now().AddDate(0, 0, -days)
	stats, err := s.submissions.Stats(ctx, tenantID, companyID, since)
	if err != nil {
		return nil, err
	}
	resp := &AnalyticsResponse{
		Since:       since,
		Total:       stats.Total,
		Accepted:    stats.Accepted,
		Rejected:    stats.Rejected,
		Errors:      stats.Errors,
		Processing:  stats.Processing,
		Pending:     stats.Pending,
		AvgAttempts: math.Round(stats.AvgAttempts*100) / 100,
	}
	if stats.Total > 0 {
		resp.SuccessRate = math.Round(float64(stats.Accepted)/float64(stats.Total)*10000) / 100
	}
	return resp, nil
}

// XMLURL returns a short-lived download link for the uploaded UBL document.
func (s *EFacturaService) XMLURL(ctx context.Context, tenantID, companyID, submissionID uuid.UUID) (*XMLURLResponse, error) {
	sub, err := s.submissions.FindByID(ctx, tenantID, companyID, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.XMLObjectKey == "" {
		return nil, shared.NewDomainError("NOT_FOUND", "No XML stored for this submission")
	}
	url, expiresAt, err := s.files.GenerateDownloadURL(ctx, sub.XMLObjectKey, xmlURLTTL)
	if err != nil {
		return nil, err
	}
	return &XMLURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// upload stores the XML, sends it to ANAF and records the outcome. An upload that fails
// still persists the submission in error; only infrastructure failures before the
// upload are returned as errors.
func (s *EFacturaService) upload(ctx context.Context, inv *invoice.Invoice, sub *efactura.Submission, isNew bool) (*efactura.Submission, error) {
	key := "efactura:upload:" + inv.ID.String()
	if s.idempotency != nil {
		claimed, err := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return nil, shared.NewDomainError("UPLOAD_IN_PROGRESS",
				fmt.Sprintf("Invoice %s is already being uploaded", inv.Number))
		}
	}
	uploaded := false
	defer func() {
		// The claim stays while ANAF holds the document; failures free it for the next attempt.
		if s.idempotency != nil && !uploaded {
			if err := s.idempotency.Release(context.WithoutCancel(ctx), key); err != nil {
				s.logger.Warn("failed to release upload claim", zap.String("key", key), zap.Error(err))
			}
		}
	}()

	supplier, err := s.companies.FindByIDForTenant(ctx, inv.TenantID, inv.CompanyID)
	if err != nil {
		return nil, err
	}
	document, err := anaf.BuildInvoiceXML(inv, supplier)
	if err != nil {
		return nil, err
	}
	objectKey := fmt.Sprintf("efactura/%s/%s/%s.xml", inv.CompanyID, inv.ID, sub.ID)
	if err := s.files.Upload(ctx, objectKey, document, "application/xml"); err != nil {
		return nil, fmt.Errorf("store e-Factura XML: %w", err)
	}
	sub.AttachXML(objectKey)
	if err := sub.BeginAttempt(); err != nil {
		return nil, err
	}

	result, uploadErr := s.gateway.Upload(ctx, supplier.CUI, document)
	if uploadErr != nil {
		if err := sub.MarkFailed(uploadErr.Error(), s.nextAttempt(sub, uploadErr)); err != nil {
			return nil, err
		}
		s.logger.Warn("e-Factura upload failed",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("invoice_number", inv.Number),
			zap.Int("attempt", sub.AttemptCount),
			zap.Error(uploadErr))
	} else {
		if err := sub.MarkUploaded(result.UploadIndex); err != nil {
			return nil, err
		}
		uploaded = true
	}

	if uploaded {
		if err := s.recordUpload(ctx, inv, sub, isNew); err != nil {
			s.recordOutcome(ctx, inv.TenantID, uploadUnrecorded)
			return nil, err
		}
		s.recordOutcome(ctx, inv.TenantID, uploadAccepted)
	} else {
		s.recordOutcome(ctx, inv.TenantID, uploadFailed)
		if err := s.persist(ctx, sub, isNew); err != nil {
			return nil, err
		}
	}
	s.publishDomainEvents(ctx, sub)

	if uploaded {
		s.markInvoiceSubmitted(ctx, inv)
	}
	return sub, nil
}

// nextAttempt schedules the automatic retry; documents ANAF refused wait for a correction.
func (s *EFacturaService) nextAttempt(sub *efactura.Submission, uploadErr error) *time.Time {
	if errors.Is(uploadErr, anaf.ErrUploadRejected) || sub.AttemptCount >= maxAutoAttempts {
		return nil
	}
	next := s.now().Add(anaf.Backoff(retryBaseDelay, sub.AttemptCount))
	return &next
}

func (s *EFacturaService) markInvoiceSubmitted(ctx context.Context, inv *invoice.Invoice) {
	if inv.Status == invoice.StatusSubmitted {
		return
	}
	// An approved invoice stays approved; only earlier states move forward.
	if !inv.Status.CanTransitionTo(invoice.StatusSubmitted) {
		return
	}
	if err := inv.MarkSubmitted(); err != nil {
		return
	}
	if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
		s.logger.Error("failed to mark invoice submitted",
			zap.String("invoice_id", inv.ID.String()), zap.Error(err))
	}
}

func (s *EFacturaService) persist(ctx context.Context, sub *efactura.Submission, isNew bool) error {
	if isNew {
		return s.submissions.Save(ctx, sub)
	}
	return s.submissions.SaveWithLock(ctx, sub)
}

// recordUpload persists a submission ANAF already accepted. The upload index must not
// be lost, so a concurrent write is overwritten: the row is re-read and saved again on
// top of it. Retries run detached from the request because ANAF holds the document either way.
func (s *EFacturaService) recordUpload(ctx context.Context, inv *invoice.Invoice, sub *efactura.Submission, isNew bool) error {
	err := s.persist(ctx, sub, isNew)
	ctx = context.WithoutCancel(ctx)
	for attempt := 2; err != nil && attempt <= recordAttempts; attempt++ {
		s.logger.Warn("retrying e-Factura upload record",
			zap.String("submission_id", sub.ID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if isNew {
			err = s.submissions.Save(ctx, sub)
			continue
		}
		var stored *efactura.Submission
		if stored, err = s.submissions.FindByID(ctx, sub.TenantID, sub.CompanyID, sub.ID); err != nil {
			continue
		}
		sub.Rebase(stored.StoredVersion())
		err = s.submissions.SaveWithLock(ctx, sub)
	}
	if err != nil {
		s.logger.Error("e-Factura upload accepted by ANAF but not recorded",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("invoice_number", inv.Number),
			zap.String("submission_id", sub.ID.String()),
			zap.String("upload_index", sub.UploadIndex),
			zap.Error(err))
	}
	return err
}

func (s *EFacturaService) publishDomainEvents(ctx context.Context, sub *efactura.Submission) {
	if s.eventPublisher == nil {
		return
	}
	if events := sub.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		sub.ClearDomainEvents()
	}
}

func checkSubmittable(inv *invoice.Invoice, force bool) error {
	if inv.Type != invoice.TypeIssued {
		return shared.NewDomainError("INVALID_INVOICE", "Only issued invoices are reported to e-Factura")
	}
	switch inv.Status {
	case invoice.StatusApproved, invoice.StatusSubmitted:
		return nil
	case invoice.StatusDraft:
		if force {
			return nil
		}
	}
	return shared.NewDomainError("INVALID_STATE",
		fmt.Sprintf("Invoice %s is %s; only approved or submitted invoices can be uploaded", inv.Number, inv.Status))
}

// prepareSubmission reuses the latest submission when it can be uploaded again and
// starts a new one otherwise.
func prepareSubmission(inv *invoice.Invoice, latest *efactura.Submission) (*efactura.Submission, bool, error) {
	if latest != nil {
		switch latest.Status {
		case efactura.StatusPending:
			return latest, false, nil
		case efactura.StatusError, efactura.StatusRejected:
			if err := latest.Resubmit(); err != nil {
				return nil, false, err
			}
			return latest, false, nil
		}
	}
	sub, err := efactura.NewSubmission(inv.TenantID, inv.CompanyID, inv.ID, inv.Number)
	if err != nil {
		return nil, false, err
	}
	return sub, true, nil
}

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
