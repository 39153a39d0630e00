package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	accountsrepo "casedesk_backend/internal/accounts/repository"
	"casedesk_backend/internal/archive"
	archiveservice "casedesk_backend/internal/archive/service"
	"casedesk_backend/internal/audit"
	authrepo "casedesk_backend/internal/auth/repository"
	"casedesk_backend/internal/email"
	"casedesk_backend/internal/escalation"
	"casedesk_backend/internal/events"
	"casedesk_backend/internal/notifications"
	notificationsrepo "casedesk_backend/internal/notifications/repository"
	"casedesk_backend/internal/scheduler"
	"casedesk_backend/platform/config"
	"casedesk_backend/platform/db"
	"casedesk_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	sender := initSender(cfg, log)

	auditModule := audit.NewModule(pool, log)
	archiveModule := archive.NewModule(pool, auditModule.Service(), initExporter(ctx, cfg, log), log)

	accountsRepo := accountsrepo.New(pool)
	runner := escalation.NewRunner(accountsRepo, notificationsrepo.New(pool), archiveModule.Service(), eventBus, log)

	// Mail side effects for events raised while processing sweep tasks.
	notificationsModule := notifications.NewModule(pool, runner, sender, authrepo.New(pool), cfg, log)
	notificationsModule.RegisterHandlers(eventBus)

	sweepClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize sweep client", "error", err)
		panic("failed to initialize sweep client: " + err.Error())
	}
	defer sweepClient.Close()

	sweeper := scheduler.NewSweeper(cfg, accountsRepo, sweepClient, runner, log)
	go sweeper.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, runner, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
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
	return exporter
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
