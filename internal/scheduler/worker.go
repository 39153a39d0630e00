package scheduler

import (
	"context"
	"fmt"

	"casedesk_backend/internal/escalation"
	"casedesk_backend/platform/config"
	"casedesk_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	runner *escalation.Runner
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, runner *escalation.Runner, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		runner: runner,
		log:    log,
	}

	mux.HandleFunc(TaskEscalationCheck, w.handleEscalationCheck)

	return w, nil
}

func (w *Worker) handleEscalationCheck(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseEscalationCheckPayload(task)
	if err != nil {
		return err
	}
	return w.runner.EvaluateLeadByID(ctx, payload.AccountID)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
