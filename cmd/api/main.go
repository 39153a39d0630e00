package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"casedesk_backend/internal/accounts"
	"casedesk_backend/internal/archive"
	archiveservice "casedesk_backend/internal/archive/service"
	"casedesk_backend/internal/audit"
	"casedesk_backend/internal/auth"
	authrepo "casedesk_backend/internal/auth/repository"
	"casedesk_backend/internal/cases"
	"casedesk_backend/internal/email"
	"casedesk_backend/internal/escalation"
	"casedesk_backend/internal/events"
	apphttp "casedesk_backend/internal/http"
	"casedesk_backend/internal/http/router"
	"casedesk_backend/internal/notifications"
	notificationsrepo "casedesk_backend/internal/notifications/repository"
	"casedesk_backend/internal/scheduler"
	"casedesk_backend/platform/config"
	"casedesk_backend/platform/db"
	"casedesk_backend/platform/logger"
	"casedesk_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	sender := initSender(cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	auditModule := audit.NewModule(pool, log)

	archiveModule := archive.NewModule(pool, auditModule.Service(), initExporter(ctx, cfg, log), log)

	accountsModule := accounts.NewModule(pool, auditModule.Service(), archiveModule.Service(), eventBus, val, log)

	casesModule := cases.NewModule(pool, accountsModule.Repository(), auditModule.Service(), val, log)

	// The runner is shared between the background sweep and the
	// notifications read path so both apply identical escalation rules.
	runner := escalation.NewRunner(
		accountsModule.Repository(),
		notificationsrepo.New(pool),
		archiveModule.Service(),
		eventBus,
		log,
	)

	notificationsModule := notifications.NewModule(pool, runner, sender, authrepo.New(pool), cfg, log)
	notificationsModule.RegisterHandlers(eventBus)

	authModule, err := auth.NewModule(pool, cfg, val, log)
	if err != nil {
		log.Error("failed to initialize auth module", "error", err)
		panic("failed to initialize auth module: " + err.Error())
	}
	defer authModule.Close()

	// Periodic escalation sweep. With Redis configured the sweep fans out
	// through asynq to the scheduler worker; without it the sweep runs
	// inline in this process.
	sweepClient := initSweepClient(cfg, log)
	if sweepClient != nil {
		defer sweepClient.Close()
	}
	sweeper := scheduler.NewSweeper(cfg, accountsModule.Repository(), sweepClient, runner, log)
	go sweeper.Run(ctx)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			accountsModule,
			casesModule,
			notificationsModule,
			archiveModule,
			auditModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initSender(cfg *config.Config, log *logger.Logger) email.Sender {
	if !cfg.GetEmailEnabled() {
		log.Warn("email disabled; outbound mail will be dropped")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

func initExporter(ctx context.Context, cfg *config.Config, log *logger.Logger) archiveservice.Exporter {
	if !cfg.IsArchiveExportEnabled() {
		return nil
	}
	exporter, err := archiveservice.NewMinIOExporter(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize archive exporter; export disabled", "error", err)
		return nil
	}
	log.Info("archive export enabled", "bucket", cfg.GetArchiveBucket())
	return exporter
}

func initSweepClient(cfg *config.Config, log *logger.Logger) *scheduler.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; escalation sweep runs inline")
		return nil
	}
	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize sweep client; sweep runs inline", "error", err)
		return nil
	}
	return client
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt < attempts {
			delay := baseDelay * time.Duration(attempt)
			log.Warn("retrying", "operation", name, "attempt", attempt, "delay", delay.String(), "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
