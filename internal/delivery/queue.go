package delivery

import (
	"context"
	"crypto/tls"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"replify_backend/internal/conversation/service"
	"replify_backend/platform/config"
	"replify_backend/platform/logger"
)

// Queue enqueues outbound texts onto asynq so delivery latency and retries
// never block the inbound request. When Redis is not configured, or an
// enqueue fails, it sends directly instead of dropping the message.
type Queue struct {
	client *asynq.Client
	queue  string
	direct *Client
	log    *logger.Logger
}

// NewQueue creates the queue-backed deliverer. A nil asynq client (no
// REDIS_URL) degrades to direct sends.
func NewQueue(cfg config.SchedulerConfig, direct *Client, log *logger.Logger) (*Queue, error) {
	q := &Queue{direct: direct, log: log}

	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		log.Info("delivery queue disabled, sending directly")
		return q, nil
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	q.client = asynq.NewClient(opt)
	q.queue = queue
	return q, nil
}

// Close releases the underlying asynq client.
func (q *Queue) Close() error {
	if q == nil || q.client == nil {
		return nil
	}
	return q.client.Close()
}

var _ service.Deliverer = (*Queue)(nil)

// Deliver enqueues the text for the worker, falling back to a direct send.
func (q *Queue) Deliver(ctx context.Context, req service.DeliveryRequest) error {
	if q.client == nil {
		return q.direct.SendText(ctx, req.PhoneNumberID, req.AccessToken, req.CustomerNumber, req.Text)
	}

	task, err := NewSendTextTask(SendTextPayload{
		CustomerNumber: req.CustomerNumber,
		Text:           req.Text,
		PhoneNumberID:  req.PhoneNumberID,
		AccessToken:    req.AccessToken,
	})
	if err != nil {
		return err
	}

	if _, err := q.client.EnqueueContext(ctx, task, asynq.Queue(q.queue), asynq.MaxRetry(5)); err != nil {
		q.log.Warn("delivery enqueue failed, sending directly", "error", err.Error())
		return q.direct.SendText(ctx, req.PhoneNumberID, req.AccessToken, req.CustomerNumber, req.Text)
	}
	return nil
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
