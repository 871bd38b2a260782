package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TenantProvider interface {
	ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// PendingExport is an export job row still waiting for the executor.
type PendingExport struct {
	TenantID  uuid.UUID
	CompanyID uuid.UUID
	ExportID  uuid.UUID
}

type PendingExportProvider interface {
	PendingExports(ctx context.Context, olderThan time.Time, limit int) ([]PendingExport, error)
}

type CronTriggerConfig struct {
	SyncInterval   time.Duration
	ExportInterval time.Duration
	// ExportGrace keeps the sweep from re-enqueueing exports the API just submitted.
	ExportGrace time.Duration
}

// CronTrigger enqueues the periodic jobs: one e-Factura sync and one retry
// sweep per active tenant every SyncInterval, and a sweep for exports left
// pending (for example across a restart) every ExportInterval.
type CronTrigger struct {
	config    CronTriggerConfig
	scheduler *Scheduler
	tenants   TenantProvider
	exports   PendingExportProvider
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

func NewCronTrigger(cfg CronTriggerConfig, s *Scheduler, tenants TenantProvider, exports PendingExportProvider, logger *zap.Logger) *CronTrigger {
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = 5 * time.Minute
	}
	if cfg.ExportInterval <= 0 {
		cfg.ExportInterval = time.Minute
	}
	if cfg.ExportGrace <= 0 {
		cfg.ExportGrace = 2 * time.Minute
	}
	return &CronTrigger{
		config:    cfg,
		scheduler: s,
		tenants:   tenants,
		exports:   exports,
		logger:    logger.Named("cron"),
	}
}

func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return nil
	}
	c.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.loop(ctx, c.config.SyncInterval, c.TriggerEFactura)
	if c.exports != nil {
		c.wg.Add(1)
		go c.loop(ctx, c.config.ExportInterval, c.TriggerExportSweep)
	}

	c.logger.Info("cron trigger started",
		zap.Duration("sync_interval", c.config.SyncInterval),
		zap.Duration("export_interval", c.config.ExportInterval),
	)
	return nil
}

func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.cancel()
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) loop(ctx context.Context, interval time.Duration, fire func(context.Context) int) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fire(ctx)
		}
	}
}

// TriggerEFactura enqueues sync and retry jobs for every active tenant and
// returns how many were accepted.
func (c *CronTrigger) TriggerEFactura(ctx context.Context) int {
	tenantIDs, err := c.tenants.ActiveTenantIDs(ctx)
	if err != nil {
		c.logger.Error("failed to list active tenants", zap.Error(err))
		return 0
	}

	submitted := 0
	for _, tenantID := range tenantIDs {
		for _, kind := range []JobKind{JobKindEFacturaSync, JobKindEFacturaRetry} {
			if err := c.scheduler.Submit(NewJob(kind, tenantID)); err != nil {
				c.logger.Warn("failed to enqueue e-Factura job",
					zap.String("tenant_id", tenantID.String()),
					zap.String("kind", string(kind)),
					zap.Error(err),
				)
				continue
			}
			submitted++
		}
	}
	c.logger.Debug("e-Factura jobs enqueued", zap.Int("tenants", len(tenantIDs)), zap.Int("jobs", submitted))
	return submitted
}

func (c *CronTrigger) TriggerExportSweep(ctx context.Context) int {
	pending, err := c.exports.PendingExports(ctx, time.Now().Add(-c.config.ExportGrace), c.scheduler.config.QueueSize)
	if err != nil {
		c.logger.Error("failed to list pending exports", zap.Error(err))
		return 0
	}
	submitted := 0
	for _, p := range pending {
		if err := c.scheduler.EnqueueExport(ctx, p.TenantID, p.CompanyID, p.ExportID); err != nil {
			c.logger.Warn("failed to re-enqueue export", zap.String("export_id", p.ExportID.String()), zap.Error(err))
			continue
		}
		submitted++
	}
	return submitted
}
