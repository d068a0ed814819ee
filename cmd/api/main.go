package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"replify_backend/internal/assistant"
	"replify_backend/internal/business"
	"replify_backend/internal/conversation"
	"replify_backend/internal/delivery"
	"replify_backend/internal/events"
	apphttp "replify_backend/internal/http"
	"replify_backend/internal/http/router"
	"replify_backend/internal/inbound"
	"replify_backend/internal/notification"
	"replify_backend/migrations"
	"replify_backend/platform/config"
	"replify_backend/platform/db"
	"replify_backend/platform/logger"
	"replify_backend/platform/validator"
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
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err.Error())
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
		log.Error("failed to connect to database", "error", err.Error())
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Outbound channel: direct client plus the queue-backed deliverer
	channelClient := delivery.NewClient(cfg, log)
	deliverQueue, err := delivery.NewQueue(cfg, channelClient, log)
	if err != nil {
		log.Error("failed to initialize delivery queue", "error", err.Error())
		panic("failed to initialize delivery queue: " + err.Error())
	}
	defer func() {
		_ = deliverQueue.Close()
	}()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.NewModule(notification.NewSMTPSender(cfg), cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	businessModule := business.NewModule(pool, val, log)
	if err := businessModule.Seed(ctx, cfg, log); err != nil {
		log.Warn("demo business seed failed", "error", err.Error())
	}

	conversationModule := conversation.NewModule(pool, businessModule.Service(), deliverQueue, eventBus, val, log)

	// Assistant pipeline. Without an API key the processor skips generation
	// entirely, so a nil generator is never reached.
	var generator assistant.Generator
	if cfg.IsAIEnabled() {
		gen, err := assistant.NewGeminiGenerator(ctx, cfg)
		if err != nil {
			log.Error("failed to initialize generator", "error", err.Error())
			panic("failed to initialize generator: " + err.Error())
		}
		generator = gen
		log.Info("generation enabled", "model", cfg.GeminiModel)
	} else {
		log.Warn("GEMINI_API_KEY not set; automated replies disabled")
	}
	resolver := assistant.NewResolver(assistant.NewDetector(cfg.GetEscalationTriggers()), generator, log)

	processor := inbound.NewProcessor(
		businessModule.Service(),
		conversationModule.Service(),
		resolver,
		deliverQueue,
		channelClient,
		cfg,
		log,
	)
	inboundModule := inbound.NewModule(processor, cfg, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	engine := router.New(cfg, log, pool, []apphttp.Module{
		businessModule,
		conversationModule,
		inboundModule,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err.Error())
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			panic("server error: " + err.Error())
		}
	}
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
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err.Error())
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
