package scheduler

import (
	"context"
	"fmt"

	"learnhub_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues background tasks.
type Client struct {
	client *asynq.Client
	queue  string
}

// Enqueuer is the task-enqueue surface other packages depend on.
type Enqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, payload WelcomeEmailPayload) error
	EnqueueVerificationEmail(ctx context.Context, payload VerificationEmailPayload) error
}

// NewClient creates a task client backed by the configured Redis instance.
func NewClient(cfg config.WorkerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

// Close releases the underlying Redis connections. Safe on a nil client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueWelcomeEmail queues a welcome email delivery. A nil client drops
// the task so callers need no email-enabled check.
func (c *Client) EnqueueWelcomeEmail(ctx context.Context, payload WelcomeEmailPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewWelcomeEmailTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(5))
	return err
}

// EnqueueVerificationEmail queues a verification email delivery. A nil
// client drops the task.
func (c *Client) EnqueueVerificationEmail(ctx context.Context, payload VerificationEmailPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewVerificationEmailTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(5))
	return err
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
