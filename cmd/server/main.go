package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clientapp "github.com/documentiulia/backend/internal/application/client"
	companyapp "github.com/documentiulia/backend/internal/application/company"
	contentapp "github.com/documentiulia/backend/internal/application/content"
	dataexchangeapp "github.com/documentiulia/backend/internal/application/dataexchange"
	efacturaapp "github.com/documentiulia/backend/internal/application/efactura"
	hrapp "github.com/documentiulia/backend/internal/application/hr"
	identityapp "github.com/documentiulia/backend/internal/application/identity"
	inventoryapp "github.com/documentiulia/backend/internal/application/inventory"
	invoiceapp "github.com/documentiulia/backend/internal/application/invoice"
	onboardingapp "github.com/documentiulia/backend/internal/application/onboarding"
	procurementapp "github.com/documentiulia/backend/internal/application/procurement"
	projectapp "github.com/documentiulia/backend/internal/application/project"
	receiptapp "github.com/documentiulia/backend/internal/application/receipt"
	"github.com/documentiulia/backend/internal/domain/dataexchange"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/infrastructure/anaf"
	"github.com/documentiulia/backend/internal/infrastructure/auth"
	"github.com/documentiulia/backend/internal/infrastructure/cache"
	"github.com/documentiulia/backend/internal/infrastructure/config"
	"github.com/documentiulia/backend/internal/infrastructure/event"
	"github.com/documentiulia/backend/internal/infrastructure/exchange"
	"github.com/documentiulia/backend/internal/infrastructure/logger"
	"github.com/documentiulia/backend/internal/infrastructure/persistence"
	"github.com/documentiulia/backend/internal/infrastructure/printing"
	"github.com/documentiulia/backend/internal/infrastructure/scheduler"
	"github.com/documentiulia/backend/internal/infrastructure/storage"
	"github.com/documentiulia/backend/internal/infrastructure/telemetry"
	"github.com/documentiulia/backend/internal/interfaces/http/handler"
	"github.com/documentiulia/backend/internal/interfaces/http/middleware"
	"github.com/documentiulia/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/documentiulia/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			DocumentIulia API
//	@version		1.0
//	@description	Multi-tenant accounting API for Romanian companies
//	@termsOfService	https://documentiulia.ro/termeni

//	@contact.name	DocumentIulia Support
//	@contact.url	https://documentiulia.ro
//	@contact.email	suport@documentiulia.ro

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	}, cfg.App.Name)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	tel, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = tel.BridgeLogger(log, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting DocumentIulia backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Telemetry.DBLogFullSQL)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentDB(db.DB, cfg.Telemetry); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis backs the token blacklist, idempotency keys and the rate cache.
	// Without it each falls back to a process-local store.
	var redisClient *redis.Client
	if rc, err := cache.NewRedisClient(ctx, cfg.Redis); err != nil {
		log.Warn("Redis unavailable, using in-memory stores", zap.Error(err))
	} else {
		redisClient = rc
		defer func() {
			_ = redisClient.Close()
		}()
	}

	var (
		blacklist auth.TokenBlacklist
		rateCache cache.RateCache
		idemStore shared.IdempotencyStore
	)
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		rateCache = cache.NewRedisRateCache(redisClient)
		idemStore = cache.NewIdempotencyStore(redisClient, log)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		rateCache = cache.NewInMemoryRateCache()
		idemStore = cache.NewIdempotencyStore(nil, log)
	}

	files := newObjectStorage(ctx, cfg, log)
	metrics := telemetry.NewMetrics()

	// Repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	registration := persistence.NewGormRegistration(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	submissionRepo := persistence.NewGormSubmissionRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	stockLedger := persistence.NewGormStockLedger(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	payrollRepo := persistence.NewGormPayrollRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	forumRepo := persistence.NewGormForumRepository(db.DB)
	blogRepo := persistence.NewGormBlogRepository(db.DB)
	exportRepo := persistence.NewGormExportJobRepository(db.DB)
	importRepo := persistence.NewGormImportJobRepository(db.DB)
	progressRepo := persistence.NewGormProgressRepository(db.DB)

	// External gateways
	jwtService := auth.NewJWTService(cfg.JWT)
	anafClient := anaf.NewClient(cfg.EFactura, log, anaf.WithObserver(metrics))
	bnrClient := exchange.NewBNRClient(cfg.Exchange, rateCache, log)

	sched := scheduler.NewScheduler(cfg.Scheduler, metrics, log)

	// Application services
	authService := identityapp.NewAuthService(tenantRepo, userRepo, registration, jwtService, blacklist,
		identityapp.DefaultAuthServiceConfig(), log)
	companyService := companyapp.NewCompanyService(companyRepo, invoiceRepo)
	clientService := clientapp.NewClientService(clientRepo)
	projectService := projectapp.NewProjectService(projectRepo, clientRepo)
	invoiceService := invoiceapp.NewInvoiceService(invoiceRepo, clientRepo, companyRepo, bnrClient, log)
	efacturaService := efacturaapp.NewEFacturaService(cfg.EFactura, submissionRepo, invoiceRepo, companyRepo,
		anafClient, files, idemStore, log)
	inventoryService := inventoryapp.NewInventoryService(productRepo, movementRepo, stockLedger, log)
	purchaseOrderService := procurementapp.NewPurchaseOrderService(purchaseOrderRepo, inventoryService, log)
	employeeService := hrapp.NewEmployeeService(employeeRepo)
	payrollService := hrapp.NewPayrollService(payrollRepo, employeeRepo, log)
	receiptService := receiptapp.NewReceiptService(receiptRepo, files, log)
	forumService := contentapp.NewForumService(forumRepo, log)
	blogService := contentapp.NewBlogService(blogRepo, log)
	exportService := dataexchangeapp.NewExportService(exportRepo, sched, files, log)
	importService := dataexchangeapp.NewImportService(importRepo, clientRepo, productRepo, log)
	onboardingService := onboardingapp.NewOnboardingService(progressRepo, companyService, log)

	if cfg.Printing.Enabled {
		renderer := printing.NewChromedpRenderer(cfg.Printing, log)
		defer func() {
			_ = renderer.Close()
		}()
		invoiceService.SetPrinter(printing.NewInvoicePrinter(renderer))
		log.Info("Invoice PDF rendering enabled", zap.Int("max_browsers", cfg.Printing.MaxBrowsers))
	}

	exportExecutor := dataexchangeapp.NewExportExecutor(exportRepo, files, map[dataexchange.Entity]dataexchangeapp.RowSource{
		dataexchange.EntityClients:   dataexchangeapp.NewClientSource(clientRepo),
		dataexchange.EntityProjects:  dataexchangeapp.NewProjectSource(projectRepo),
		dataexchange.EntityInvoices:  dataexchangeapp.NewInvoiceSource(invoiceRepo),
		dataexchange.EntityProducts:  dataexchangeapp.NewProductSource(productRepo),
		dataexchange.EntityEmployees: dataexchangeapp.NewEmployeeSource(employeeRepo),
	}, log)

	// Event bus: in-process handlers, optionally mirrored to NATS
	eventBus := event.NewInMemoryEventBus(log)

	lowStockHandler := inventoryapp.NewLowStockHandler(log).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log))
	eventBus.Subscribe(event.NewIdempotentHandler(lowStockHandler, idemStore, 24*time.Hour, log))
	eventBus.Subscribe(efacturaapp.NewStatusMetricsHandler(metrics))

	// Business metrics go through the OTEL meter; a no-op when telemetry is disabled.
	businessMetrics, err := telemetry.NewGlobalBusinessMetrics()
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	eventBus.Subscribe(invoiceapp.NewBusinessMetricsHandler(businessMetrics))
	eventBus.Subscribe(inventoryapp.NewMovementMetricsHandler(businessMetrics))
	efacturaService.SetUploadRecorder(businessMetrics)

	if cfg.NATS.Enabled {
		nc, err := event.ConnectNATS(cfg.NATS, cfg.App.Name, log)
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer nc.Close()
		eventBus.Subscribe(event.NewNATSForwarder(nc, cfg.NATS.SubjectPrefix, log))
		log.Info("Domain events forwarded to NATS", zap.String("subject_prefix", cfg.NATS.SubjectPrefix))
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	for _, svc := range []interface {
		SetEventPublisher(shared.EventPublisher)
	}{
		authService, companyService, clientService, projectService, invoiceService, efacturaService,
		inventoryService, purchaseOrderService, employeeService, payrollService, receiptService,
		forumService, blogService, onboardingService,
	} {
		svc.SetEventPublisher(eventBus)
	}

	// Background jobs. The worker pool always runs because export requests
	// are queued on it; the periodic triggers are optional.
	efacturaService.RegisterJobs(sched)
	exportExecutor.RegisterJobs(sched)
	if err := sched.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.ShutdownWait)
		defer cancel()
		if err := sched.Stop(stopCtx); err != nil {
			log.Error("Error stopping scheduler", zap.Error(err))
		}
	}()

	if cfg.Scheduler.Enabled {
		cron := scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
			SyncInterval:   cfg.EFactura.SyncInterval,
			ExportInterval: cfg.Scheduler.ExportInterval,
		}, sched, tenantRepo, exportService, log)
		if err := cron.Start(ctx); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer func() {
			if err := cron.Stop(context.Background()); err != nil {
				log.Error("Error stopping cron trigger", zap.Error(err))
			}
		}()
		log.Info("Periodic jobs enabled",
			zap.Duration("efactura_sync_interval", cfg.EFactura.SyncInterval),
			zap.Duration("export_interval", cfg.Scheduler.ExportInterval),
		)
	}

	// HTTP handlers
	var blogTenant uuid.UUID
	if cfg.App.BlogTenant != "" {
		blogTenant = uuid.MustParse(cfg.App.BlogTenant)
	}

	healthChecks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	systemHandler := handler.NewSystemHandler(version, healthChecks)

	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Company:       handler.NewCompanyHandler(companyService),
		Client:        handler.NewClientHandler(clientService),
		Project:       handler.NewProjectHandler(projectService),
		Invoice:       handler.NewInvoiceHandler(invoiceService),
		EFactura:      handler.NewEFacturaHandler(efacturaService),
		Inventory:     handler.NewInventoryHandler(inventoryService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(purchaseOrderService),
		HR:            handler.NewHRHandler(employeeService, payrollService),
		Receipt:       handler.NewReceiptHandler(receiptService),
		Content:       handler.NewContentHandler(forumService, blogService, blogTenant),
		DataExchange:  handler.NewDataExchangeHandler(exportService, importService),
		Onboarding:    handler.NewOnboardingHandler(onboardingService),
		System:        systemHandler,
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	jwtConfig.SkipPaths = append(jwtConfig.SkipPaths, cfg.Metrics.Path)
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	// Middleware order:
	// 1. RequestID, Recovery and request logging
	// 2. tracing and profiling labels
	// 3. security headers, CORS and the body limit
	// 4. rate limits, then metrics
	// 5. JWT authentication
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if tel.Enabled() {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName), middleware.SpanAttributes())
	}
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.Profiling())
	}
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig(cfg.App.IsProduction())))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize, cfg.HTTP.MaxUploadSize))

	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiter.StartCleanup(stopCleanup)
		engine.Use(middleware.RateLimit(limiter))

		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimit, cfg.HTTP.RateLimitWindow)
		authLimiter.StartCleanup(stopCleanup)
		engine.Use(authRateLimit(authLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Int("auth_requests", cfg.HTTP.AuthRateLimit),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	if cfg.Metrics.Enabled {
		engine.Use(middleware.HTTPMetrics(metrics))
	}
	engine.Use(jwtMiddleware)

	engine.GET("/health", systemHandler.Health)
	if cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, jwtMiddleware),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAPI(r, handlers, companyService).Setup()
	log.Info("Routes registered", zap.Int("count", len(engine.Routes())))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

// newObjectStorage connects to S3 when credentials are configured. Development
// setups without them keep uploads in memory.
func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) storage.ObjectStorage {
	if cfg.Storage.AccessKey == "" {
		if cfg.App.IsProduction() {
			log.Fatal("storage.access_key is required in production")
		}
		log.Warn("Object storage not configured, keeping files in memory")
		return storage.NewMemoryStorage("http://localhost:" + cfg.App.Port + "/files")
	}

	s3, err := storage.NewS3ObjectStorage(cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create object storage", zap.Error(err))
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to prepare storage bucket", zap.Error(err))
	}
	log.Info("Object storage ready", zap.String("bucket", s3.Bucket()))
	return s3
}

// authRateLimit applies the stricter limit to the unauthenticated auth routes.
func authRateLimit(limiter *middleware.RateLimiter) gin.HandlerFunc {
	limited := middleware.RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
	return func(c *gin.Context) {
		switch c.FullPath() {
		case "/api/v1/auth/login", "/api/v1/auth/register", "/api/v1/auth/refresh":
			limited(c)
		default:
			c.Next()
		}
	}
}
