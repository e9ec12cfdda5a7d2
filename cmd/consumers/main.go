package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/cmd/consumers/jobs"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/config"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/consumers"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	log.Info("Starting consumers service...")

	// Override NATS client ID for consumers
	cfg.NATS.ClientID = "zenshe-consumers"

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	completion := jobs.NewReservationCompletionJob(consumerService.Reservations(), cfg.Reservations.CompletionInterval)
	completion.Start(ctx)

	log.Info("Consumers service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down consumers service...")
	completion.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := consumerService.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}
