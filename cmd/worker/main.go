// worker 消费预订领域事件（booking.created / booking.status_changed / booking.deleted）。
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"car-rental-api/internal/core/config"
	"car-rental-api/internal/core/logger"
	"car-rental-api/internal/events"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()

	if cfg.Events.AMQPURL == "" {
		log.Fatal("events.amqpURL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &events.Consumer{
		URL:      cfg.Events.AMQPURL,
		Queue:    cfg.Events.Queue,
		Prefetch: 16,
		Log:      log.Named("worker"),
		Handle:   events.LogHandler(log.Named("booking-events")),
	}
	log.Info("worker started", zap.String("queue", cfg.Events.Queue))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("worker FAILED", zap.Error(err))
	}
	log.Info("worker stopped gracefully")
}
