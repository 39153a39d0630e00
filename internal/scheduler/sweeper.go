package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"casedesk_backend/internal/accounts/repository"
	"casedesk_backend/internal/escalation"
	"casedesk_backend/platform/config"
	"casedesk_backend/platform/logger"
)

// Sweeper owns the periodic escalation sweep. Every interval it fans one
// task out per lead; without a queue client it evaluates inline with
// bounded concurrency. Either way each lead has its own error boundary.
type Sweeper struct {
	repo     *repository.Repository
	client   *Client
	runner   *escalation.Runner
	interval time.Duration
	log      *logger.Logger
}

func NewSweeper(cfg config.SchedulerConfig, repo *repository.Repository, client *Client, runner *escalation.Runner, log *logger.Logger) *Sweeper {
	interval := cfg.GetSweepInterval()
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		repo:     repo,
		client:   client,
		runner:   runner,
		interval: interval,
		log:      log,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
// The first sweep fires one interval after start, not immediately, so a
// crash-looping process does not hammer the stores.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("escalation sweeper started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.log.Info("escalation sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	start := time.Now()
	ids, err := s.repo.ListLeadIDs(ctx)
	if err != nil {
		s.log.Error("sweep failed to list leads", "error", err)
		return
	}

	if s.client != nil {
		enqueued := 0
		for _, id := range ids {
			if err := s.client.EnqueueEscalationCheck(ctx, EscalationCheckPayload{AccountID: id}); err != nil {
				s.log.SweepError(id, err)
				continue
			}
			enqueued++
		}
		s.log.Info("escalation sweep enqueued", "leads", enqueued, "took", time.Since(start).String())
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := s.runner.EvaluateLeadByID(gctx, id); err != nil {
				s.log.SweepError(id, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	s.log.Info("escalation sweep completed", "leads", len(ids), "took", time.Since(start).String())
}
