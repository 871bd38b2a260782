package dataexchange

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/documentiulia/backend/internal/domain/dataexchange"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/scheduler"
	"github.com/documentiulia/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

const (
	defaultExportPageSize = 500
	maxExportRows         = 100000
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportExecutor is the scheduler handler that renders export jobs.
type ExportExecutor struct {
	jobs     dataexchange.ExportJobRepository
	files    storage.ObjectStorage
	sources  map[dataexchange.Entity]RowSource
	pageSize int
	logger   *zap.Logger
}

func NewExportExecutor(jobs dataexchange.ExportJobRepository, files storage.ObjectStorage, sources map[dataexchange.Entity]RowSource, logger *zap.Logger) *ExportExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportExecutor{
		jobs:     jobs,
		files:    files,
		sources:  sources,
		pageSize: defaultExportPageSize,
		logger:   logger.Named("export_executor"),
	}
}

func (e *ExportExecutor) RegisterJobs(sched *scheduler.Scheduler) {
	sched.Register(scheduler.JobKindExport, e)
}

// Handle claims the job by saving it as processing under the version lock.
// A job already claimed, cancelled or finished is left alone, so the API and
// the sweep may both enqueue the same export.
func (e *ExportExecutor) Handle(ctx context.Context, job *scheduler.Job) error {
	export, err := e.jobs.FindByID(ctx, job.TenantID, job.CompanyID, job.RefID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			e.logger.Warn("export job vanished", zap.String("export_id", job.RefID.String()))
			return nil
		}
		return err
	}
	if export.Status != dataexchange.JobStatusPending {
		e.logger.Debug("export not pending, skipping",
			zap.String("export_id", export.ID.String()),
			zap.String("status", string(export.Status)),
		)
		return nil
	}
	if err := export.Start(); err != nil {
		return err
	}
	if err := e.jobs.SaveWithLock(ctx, export); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			e.logger.Debug("export claimed by another worker", zap.String("export_id", export.ID.String()))
			return nil
		}
		return err
	}

	key, rows, err := e.produce(ctx, export)
	if err != nil {
		e.fail(ctx, export, err)
		return err
	}
	if err := export.Complete(key, rows); err != nil {
		return err
	}
	if err := e.jobs.SaveWithLock(ctx, export); err != nil {
		return err
	}
	e.logger.Info("export completed",
		zap.String("export_id", export.ID.String()),
		zap.String("entity", string(export.Entity)),
		zap.Int("rows", rows),
	)
	return nil
}

func (e *ExportExecutor) produce(ctx context.Context, export *dataexchange.ExportJob) (string, int, error) {
	source, ok := e.sources[export.Entity]
	if !ok {
		return "", 0, fmt.Errorf("no export source for %s", export.Entity)
	}

	var buf bytes.Buffer
	var write func([]string) error
	var finish func() error

	switch export.Format {
	case dataexchange.FormatJSON:
		header := source.Header()
		first := true
		buf.WriteByte('[')
		write = func(row []string) error {
			record := make(map[string]string, len(header))
			for i, col := range header {
				if i < len(row) {
					record[col] = row[i]
				}
			}
			data, err := json.Marshal(record)
			if err != nil {
				return err
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			buf.Write(data)
			return nil
		}
		finish = func() error {
			buf.WriteByte(']')
			return nil
		}
	default:
		// The BOM makes spreadsheet programs read the diacritics as UTF-8.
		buf.Write(utf8BOM)
		w := csv.NewWriter(&buf)
		if err := w.Write(source.Header()); err != nil {
			return "", 0, err
		}
		write = w.Write
		finish = func() error {
			w.Flush()
			return w.Error()
		}
	}

	rows := 0
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		batch, err := source.Page(ctx, export.TenantID, export.CompanyID, export.Filters, page, e.pageSize)
		if err != nil {
			return "", 0, err
		}
		for _, row := range batch {
			if err := write(row); err != nil {
				return "", 0, err
			}
		}
		rows += len(batch)
		if rows > maxExportRows {
			return "", 0, fmt.Errorf("export exceeds %d rows, narrow the filters", maxExportRows)
		}
		if len(batch) < e.pageSize {
			break
		}
	}
	if err := finish(); err != nil {
		return "", 0, err
	}

	key := export.ObjectKeyFor()
	if err := e.files.Upload(ctx, key, buf.Bytes(), export.Format.ContentType()); err != nil {
		return "", 0, fmt.Errorf("upload export: %w", err)
	}
	return key, rows, nil
}

// fail records the error with a context that survives the job timeout.
func (e *ExportExecutor) fail(ctx context.Context, export *dataexchange.ExportJob, cause error) {
	if err := export.Fail(cause.Error()); err != nil {
		return
	}
	if err := e.jobs.SaveWithLock(context.WithoutCancel(ctx), export); err != nil {
		e.logger.Error("failed to record export failure",
			zap.String("export_id", export.ID.String()),
			zap.Error(err),
		)
	}
}
