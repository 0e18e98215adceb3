package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"learnhub_backend/internal/email"
	"learnhub_backend/internal/scheduler"
	"learnhub_backend/platform/config"
	"learnhub_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.AsynqQueueName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sender email.Sender
	if cfg.IsEmailEnabled() {
		sender = email.NewSMTPSender(cfg)
		log.Info("smtp sender initialized", "host", cfg.SMTPHost)
	} else {
		sender = email.NewNoopSender(log)
		log.Warn("email disabled, deliveries will be dropped")
	}

	worker, err := scheduler.NewWorker(cfg, cfg.GetAppBaseURL(), sender, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("worker stopped")
}
