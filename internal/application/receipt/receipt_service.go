// Package receipt implements expense receipt capture backed by object storage.
package receipt

import (
	"context"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/domain/receipt"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/documentiulia/backend/internal/infrastructure/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	uploadURLTTL   = 15 * time.Minute
	downloadURLTTL = 15 * time.Minute
)

// ReceiptService handles receipt metadata and the stored scans
type ReceiptService struct {
	receipts       receipt.ReceiptRepository
	files          storage.ObjectStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

func NewReceiptService(receipts receipt.ReceiptRepository, files storage.ObjectStorage, logger *zap.Logger) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptService{receipts: receipts, files: files, logger: logger.Named("receipt")}
}

func (s *ReceiptService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ReceiptService) Create(ctx context.Context, tenantID, companyID uuid.UUID, req ReceiptRequest) (*ReceiptResponse, error) {
	details, err := toDetails(req)
	if err != nil {
		return nil, err
	}
	r, err := receipt.NewReceipt(tenantID, companyID, details)
	if err != nil {
		return nil, err
	}
	r.CreatedBy = req.CreatedBy
	if err := s.receipts.Save(ctx, r); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, r)

	response := ToReceiptResponse(r)
	return &response, nil
}

// GetByID returns the receipt with a short-lived download URL for its scan.
func (s *ReceiptService) GetByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*ReceiptResponse, error) {
	r, err := s.receipts.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	response := ToReceiptResponse(r)
	if r.HasFile() {
		url, _, err := s.files.GenerateDownloadURL(ctx, r.File.ObjectKey, downloadURLTTL)
		if err != nil {
			s.logger.Warn("presign receipt download failed", zap.String("receipt_id", id.String()), zap.Error(err))
		} else {
			response.DownloadURL = url
		}
	}
	return &response, nil
}

func (s *ReceiptService) List(ctx context.Context, tenantID, companyID uuid.UUID, filter ReceiptListFilter) ([]ReceiptResponse, int64, error) {
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
		domainFilter.Filters["status"] = filter.Status
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		domainFilter.Filters["category"] = strings.ToLower(c)
	}
	if filter.FromDate != "" {
		from, err := parseDate(filter.FromDate, "from_date")
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["from_date"] = from
	}
	if filter.ToDate != "" {
		to, err := parseDate(filter.ToDate, "to_date")
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["to_date"] = to
	}

	receipts, err := s.receipts.FindAll(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.receipts.Count(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ReceiptResponse, len(receipts))
	for i := range receipts {
		out[i] = ToReceiptResponse(&receipts[i])
	}
	return out, total, nil
}

func (s *ReceiptService) Update(ctx context.Context, tenantID, companyID, id uuid.UUID, req ReceiptRequest) (*ReceiptResponse, error) {
	r, err := s.receipts.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	details, err := toDetails(req)
	if err != nil {
		return nil, err
	}
	if err := r.Update(details); err != nil {
		return nil, err
	}
	return s.save(ctx, r)
}

// UploadURL presigns a PUT for the scan. The file is attached by ConfirmUpload.
func (s *ReceiptService) UploadURL(ctx context.Context, tenantID, companyID, id uuid.UUID, req UploadURLRequest) (*UploadURLResponse, error) {
	r, err := s.receipts.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := checkFile(req.ContentType, req.Size); err != nil {
		return nil, err
	}
	if r.Status == receipt.StatusVerified {
		return nil, shared.NewDomainError("RECEIPT_VERIFIED", "Verified receipts cannot be changed")
	}
	key := receipt.ObjectKeyFor(tenantID, companyID, r.ID, req.ContentType)
	url, expires, err := s.files.GenerateUploadURL(ctx, key, strings.ToLower(req.ContentType), uploadURLTTL)
	if err != nil {
		return nil, err
	}
	return &UploadURLResponse{UploadURL: url, ObjectKey: key, ExpiresAt: expires}, nil
}

// ConfirmUpload attaches an object the client uploaded to the presigned URL.
func (s *ReceiptService) ConfirmUpload(ctx context.Context, tenantID, companyID, id uuid.UUID, req ConfirmUploadRequest) (*ReceiptResponse, error) {
	r, err := s.receipts.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := checkFile(req.ContentType, req.Size); err != nil {
		return nil, err
	}
	if req.ObjectKey != receipt.ObjectKeyFor(tenantID, companyID, r.ID, req.ContentType) {
		return nil, shared.NewDomainError("INVALID_FILE", "Object key does not belong to this receipt")
	}
	exists, err := s.files.ObjectExists(ctx, req.ObjectKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("FILE_NOT_UPLOADED", "The file has not been uploaded yet")
	}
	previous := r.File.ObjectKey
	if err := r.AttachFile(receipt.File{
		ObjectKey:   req.ObjectKey,
		FileName:    req.FileName,
		ContentType: strings.ToLower(req.ContentType),
		Size:        req.Size,
	}); err != nil {
		return nil, err
	}
	resp, err := s.save(ctx, r)
	if err != nil {
		return nil, err
	}
	s.removeReplaced(ctx, previous, r.File.ObjectKey)
	return resp, nil
}

// Upload stores a scan sent directly to the API. The content type is sniffed
// from the bytes, not taken from the client.
func (s *ReceiptService) Upload(ctx context.Context, tenantID, companyID, id uuid.UUID, fileName string, data []byte) (*ReceiptResponse, error) {
	r, err := s.receipts.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	contentType := DetectContentType(data)
	if err := checkFile(contentType, int64(len(data))); err != nil {
		return nil, err
	}
	if r.Status == receipt.StatusVerified {
		return nil, shared.NewDomainError("RECEIPT_VERIFIED", "Verified receipts cannot be changed")
	}

	key := receipt.ObjectKeyFor(tenantID, companyID, r.ID, contentType)
	if err := s.files.Upload(ctx, key, data, contentType); err != nil {
		return nil, err
	}
	previous := r.File.ObjectKey
	if err := r.AttachFile(receipt.File{
		ObjectKey:   key,
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(data)),
	}); err != nil {
		return nil, err
	}
	resp, err := s.save(ctx, r)
	if err != nil {
		return nil, err
	}
	s.removeReplaced(ctx, previous, key)
	return resp, nil
}

func (s *ReceiptService) Verify(ctx context.Context, tenantID, companyID, id uuid.UUID) (*ReceiptResponse, error) {
	r, err := s.receipts.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := r.Verify(); err != nil {
		return nil, err
	}
	return s.save(ctx, r)
}

func (s *ReceiptService) Reject(ctx context.Context, tenantID, companyID, id uuid.UUID, req RejectRequest) (*ReceiptResponse, error) {
	r, err := s.receipts.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := r.Reject(req.Reason); err != nil {
		return nil, err
	}
	return s.save(ctx, r)
}

// Delete removes the receipt and then its scan. A failed object removal is
// only logged; the row is already gone.
func (s *ReceiptService) Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error {
	r, err := s.receipts.FindByID(ctx, tenantID, companyID, id)
	if err != nil {
		return err
	}
	if err := s.receipts.Delete(ctx, tenantID, companyID, id); err != nil {
		return err
	}
	if r.HasFile() {
		if err := s.files.DeleteObject(ctx, r.File.ObjectKey); err != nil {
			s.logger.Warn("delete receipt object failed", zap.String("key", r.File.ObjectKey), zap.Error(err))
		}
	}
	return nil
}

// DetectContentType sniffs the MIME type of a scan.
func DetectContentType(data []byte) string {
	ct := mimetype.Detect(data).String()
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

func (s *ReceiptService) removeReplaced(ctx context.Context, previous, current string) {
	if previous == "" || previous == current {
		return
	}
	if err := s.files.DeleteObject(ctx, previous); err != nil {
		s.logger.Warn("delete replaced receipt object failed", zap.String("key", previous), zap.Error(err))
	}
}

func (s *ReceiptService) save(ctx context.Context, r *receipt.Receipt) (*ReceiptResponse, error) {
	if err := s.receipts.SaveWithLock(ctx, r); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, r)
	response := ToReceiptResponse(r)
	return &response, nil
}

func (s *ReceiptService) publishDomainEvents(ctx context.Context, r *receipt.Receipt) {
	if s.eventPublisher == nil {
		r.ClearDomainEvents()
		return
	}
	if events := r.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		r.ClearDomainEvents()
	}
}

func checkFile(contentType string, size int64) error {
	if !receipt.IsAllowedContentType(contentType) {
		return shared.NewDomainError("UNSUPPORTED_FILE_TYPE", "Only JPEG, PNG and PDF files are accepted")
	}
	if size <= 0 || size > receipt.MaxFileSize {
		return shared.NewDomainError("FILE_TOO_LARGE", "Receipt files must be between 1 byte and 10MB")
	}
	return nil
}

func toDetails(req ReceiptRequest) (receipt.Details, error) {
	date, err := parseDate(req.ReceiptDate, "receipt_date")
	if err != nil {
		return receipt.Details{}, err
	}
	return receipt.Details{
		VendorName:    req.VendorName,
		VendorCUI:     req.VendorCUI,
		ReceiptNumber: req.ReceiptNumber,
		ReceiptDate:   date,
		TotalAmount:   req.TotalAmount,
		VATAmount:     req.VATAmount,
		Currency:      valueobject.Currency(strings.ToUpper(strings.TrimSpace(req.Currency))),
		Category:      req.Category,
		PaymentMethod: receipt.PaymentMethod(req.PaymentMethod),
		Notes:         req.Notes,
	}, nil
}

func parseDate(value, field string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_INPUT", field+" must be YYYY-MM-DD")
	}
	return d, nil
}
