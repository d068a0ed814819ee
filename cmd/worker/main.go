package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"replify_backend/internal/delivery"
	"replify_backend/platform/config"
	"replify_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting delivery worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := delivery.NewClient(cfg, log)

	worker, err := delivery.NewWorker(cfg, client, log)
	if err != nil {
		log.Error("failed to initialize delivery worker", "error", err.Error())
		panic("failed to initialize delivery worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("delivery worker stopped")
}
