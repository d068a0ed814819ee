package delivery

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"replify_backend/platform/config"
	"replify_backend/platform/logger"
)

// Worker consumes queued outbound texts and sends them over the channel.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	client *Client
	log    *logger.Logger
}

// NewWorker creates the delivery worker. Requires REDIS_URL.
func NewWorker(cfg config.SchedulerConfig, client *Client, log *logger.Logger) (*Worker, error) {
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
		client: client,
		log:    log,
	}

	mux.HandleFunc(TaskSendText, w.handleSendText)

	return w, nil
}

func (w *Worker) handleSendText(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSendTextPayload(task)
	if err != nil {
		return err
	}

	return w.client.SendText(ctx, payload.PhoneNumberID, payload.AccessToken, payload.CustomerNumber, payload.Text)
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("delivery worker stopped", "error", err.Error())
	}
}
