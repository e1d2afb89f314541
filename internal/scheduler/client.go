package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"salonbridge_backend/internal/events"
	"salonbridge_backend/platform/config"
	"salonbridge_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// debounceDelay batches the burst of log items a single booking change
// produces into one recompute. Uniqueness on the task keeps repeated
// enqueues within the window from stacking up.
const debounceDelay = 30 * time.Second

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueReconcileClient schedules a debounced single-client recompute.
func (c *Client) EnqueueReconcileClient(ctx context.Context, clientID int64) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewReconcileClientTask(ReconcileClientPayload{ClientID: clientID})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.ProcessIn(debounceDelay),
		asynq.Unique(debounceDelay),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// EnqueueReconcileSweep schedules a full-window recompute.
func (c *Client) EnqueueReconcileSweep(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	_, err := c.client.EnqueueContext(ctx, NewReconcileSweepTask(), asynq.Queue(c.queue))
	return err
}

// SubscribeIngest wires the client to the event bus: every stored log
// item with a parseable client id triggers a debounced recompute for
// that client.
func (c *Client) SubscribeIngest(bus events.Bus, log *logger.Logger) {
	bus.Subscribe(events.LogItemReceived{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LogItemReceived)
		if !ok || e.ClientID == 0 {
			return nil
		}
		if err := c.EnqueueReconcileClient(ctx, e.ClientID); err != nil {
			log.Warn("failed to enqueue client recompute", "client_id", e.ClientID, "error", err)
		}
		return nil
	}))
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
