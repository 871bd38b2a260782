package efactura

import (
	"context"

	"github.com/documentiulia/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// RegisterJobs binds the periodic sync and retry jobs to the service.
func (s *EFacturaService) RegisterJobs(sched *scheduler.Scheduler) {
	sched.Register(scheduler.JobKindEFacturaSync, scheduler.HandlerFunc(s.handleSync))
	sched.Register(scheduler.JobKindEFacturaRetry, scheduler.HandlerFunc(s.handleRetry))
}

func (s *EFacturaService) handleSync(ctx context.Context, job *scheduler.Job) error {
	result, err := s.SyncTenant(ctx, job.TenantID)
	if err != nil {
		return err
	}
	if result.Total > 0 {
		s.logger.Info("e-Factura sync finished",
			zap.String("tenant_id", job.TenantID.String()),
			zap.Int("total", result.Total),
			zap.Int("synced", result.Synced),
			zap.Int("updated", result.Updated))
	}
	return nil
}

func (s *EFacturaService) handleRetry(ctx context.Context, job *scheduler.Job) error {
	uploaded, err := s.RetryDue(ctx, job.TenantID)
	if err != nil {
		return err
	}
	if uploaded > 0 {
		s.logger.Info("e-Factura retries uploaded",
			zap.String("tenant_id", job.TenantID.String()),
			zap.Int("uploaded", uploaded))
	}
	return nil
}
