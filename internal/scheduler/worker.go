package scheduler

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"learnhub_backend/internal/email"
	"learnhub_backend/platform/config"
	"learnhub_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes background tasks from Redis and dispatches them to their
// handlers.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	sender  email.Sender
	baseURL string
	log     *logger.Logger
}

// NewWorker creates the asynq server and registers the task handlers.
// baseURL is the public frontend origin used to build links in emails.
func NewWorker(cfg config.WorkerConfig, baseURL string, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
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
		server:  server,
		mux:     mux,
		sender:  sender,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}

	mux.HandleFunc(TaskWelcomeEmail, w.handleWelcomeEmail)
	mux.HandleFunc(TaskVerificationEmail, w.handleVerificationEmail)

	return w, nil
}

// Run blocks until the context is cancelled, then shuts the server down.
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

func (w *Worker) handleWelcomeEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseWelcomeEmailPayload(task)
	if err != nil {
		return err
	}

	if err := w.sender.SendWelcomeEmail(ctx, payload.Email, payload.Name); err != nil {
		return fmt.Errorf("send welcome email to %s: %w", payload.Email, err)
	}

	w.log.Info("welcome email sent", "user_id", payload.UserID, "email", payload.Email)
	return nil
}

func (w *Worker) handleVerificationEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseVerificationEmailPayload(task)
	if err != nil {
		return err
	}

	verifyURL := w.baseURL + "/verify-email?token=" + url.QueryEscape(payload.Token)
	if err := w.sender.SendVerificationEmail(ctx, payload.Email, payload.Name, verifyURL); err != nil {
		return fmt.Errorf("send verification email to %s: %w", payload.Email, err)
	}

	w.log.Info("verification email sent", "user_id", payload.UserID, "email", payload.Email)
	return nil
}
