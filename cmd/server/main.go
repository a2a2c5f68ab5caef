package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appdeposit "github.com/bailflow/core/internal/application/deposit"
	appevent "github.com/bailflow/core/internal/application/event"
	applease "github.com/bailflow/core/internal/application/lease"
	appreconciliation "github.com/bailflow/core/internal/application/reconciliation"
	"github.com/bailflow/core/internal/infrastructure/auth"
	"github.com/bailflow/core/internal/infrastructure/cache"
	"github.com/bailflow/core/internal/infrastructure/config"
	"github.com/bailflow/core/internal/infrastructure/event"
	"github.com/bailflow/core/internal/infrastructure/logger"
	"github.com/bailflow/core/internal/infrastructure/notification"
	"github.com/bailflow/core/internal/infrastructure/persistence"
	"github.com/bailflow/core/internal/infrastructure/scheduler"
	"github.com/bailflow/core/internal/infrastructure/storage"
	"github.com/bailflow/core/internal/interfaces/http/handler"
	"github.com/bailflow/core/internal/interfaces/http/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// Per-lease locking: Redis when available, in-process otherwise
	var locker applease.LeaseLocker
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		locker = cache.NewRedisLeaseLocker(redisClient)
		log.Info("using redis lease locker", zap.String("addr", cfg.Redis.Addr()))
	} else {
		locker = cache.NewInMemoryLeaseLocker()
		log.Warn("redis disabled, using in-process lease locker")
	}

	// Event plumbing: serializer, transactional outbox, bus, background processor
	serializer := event.NewDefaultSerializer()
	publisher := event.NewOutboxPublisher(db.DB, serializer)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	eventBus := event.NewInMemoryEventBus(log)

	processorCfg := event.DefaultOutboxProcessorConfig()
	processorCfg.BatchSize = cfg.Event.BatchSize
	processorCfg.PollInterval = cfg.Event.PollInterval
	processorCfg.CleanupEnabled = cfg.Event.CleanupEnabled
	processorCfg.CleanupRetention = cfg.Event.CleanupRetention
	processor := event.NewOutboxProcessor(outboxRepo, eventBus, serializer, processorCfg, log)

	// Repositories
	leaseRepo := persistence.NewGormLeaseRepository(db.DB)
	leaseRepo.SetOutboxEventSaver(publisher)
	signerRepo := persistence.NewGormSignerRepository(db.DB)
	inspectionRepo := persistence.NewGormInspectionRepository(db.DB)
	depositRepo := persistence.NewGormDepositOperationRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	duplicateDetector := persistence.NewGormDuplicatePaymentDetector(db.DB)
	mandateRepo := persistence.NewGormMandateRepository(db.DB)
	runRepo := persistence.NewGormRunRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)

	// Document storage
	var documents applease.DocumentService
	switch cfg.Storage.Provider {
	case "s3":
		s3Store, err := storage.NewS3DocumentStore(context.Background(), cfg.Storage, log)
		if err != nil {
			log.Fatal("failed to initialize document storage", zap.Error(err))
		}
		documents = s3Store
	default:
		documents = storage.NewStubDocumentStore(log)
		log.Warn("using in-memory document storage")
	}

	notifier := notification.NewLogNotifier(log)

	// Application services
	leaseService := applease.NewService(
		leaseRepo, signerRepo, inspectionRepo,
		locker, documents, notifier, auditRepo, log,
	)
	resetService := applease.NewResetService(
		leaseRepo, signerRepo, inspectionRepo, invoiceRepo,
		locker, documents, notifier, auditRepo, log,
	)
	depositService := appdeposit.NewService(depositRepo, leaseRepo, locker, auditRepo, log)
	outboxService := appevent.NewOutboxService(outboxRepo, log)
	engine := appreconciliation.NewEngine(
		invoiceRepo, paymentRepo, mandateRepo, duplicateDetector,
		runRepo, publisher, notifier,
		appreconciliation.Config{
			OverdueThreshold: cfg.Reconciliation.OverdueThreshold,
			SampleLimit:      cfg.Reconciliation.SampleLimit,
		},
		log,
	)

	// HTTP layer
	jwtService := auth.NewJWTService(cfg.JWT)
	engineHTTP := router.New(cfg, jwtService, router.Handlers{
		System:         handler.NewSystemHandler(db, cfg.App.Name),
		Lease:          handler.NewLeaseHandler(leaseService, resetService),
		Deposit:        handler.NewDepositHandler(depositService),
		Reconciliation: handler.NewReconciliationHandler(engine),
		Outbox:         handler.NewOutboxHandler(outboxService),
	}, log)

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engineHTTP,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Background workers
	ctx := context.Background()
	if cfg.Event.ProcessorEnabled {
		if err := processor.Start(ctx); err != nil {
			log.Fatal("failed to start outbox processor", zap.Error(err))
		}
	}

	var reconCron *scheduler.ReconciliationCronScheduler
	var sweep *scheduler.ActivationSweepScheduler
	if cfg.Scheduler.Enabled {
		cronCfg := scheduler.DefaultReconciliationCronConfig()
		cronCfg.Hour = cfg.Scheduler.ReconciliationHour
		reconCron = scheduler.NewReconciliationCronScheduler(cronCfg, engine, log)
		if err := reconCron.Start(ctx); err != nil {
			log.Fatal("failed to start reconciliation scheduler", zap.Error(err))
		}

		sweepCfg := scheduler.DefaultActivationSweepConfig()
		sweepCfg.Interval = cfg.Scheduler.ActivationSweepEvery
		sweep = scheduler.NewActivationSweepScheduler(sweepCfg, leaseService, log)
		if err := sweep.Start(ctx); err != nil {
			log.Fatal("failed to start activation sweep", zap.Error(err))
		}
	}

	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	if sweep != nil {
		if err := sweep.Stop(shutdownCtx); err != nil {
			log.Error("activation sweep shutdown failed", zap.Error(err))
		}
	}
	if reconCron != nil {
		if err := reconCron.Stop(shutdownCtx); err != nil {
			log.Error("reconciliation scheduler shutdown failed", zap.Error(err))
		}
	}
	if cfg.Event.ProcessorEnabled {
		if err := processor.Stop(shutdownCtx); err != nil {
			log.Error("outbox processor shutdown failed", zap.Error(err))
		}
	}

	log.Info("stopped")
}
