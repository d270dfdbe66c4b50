package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/product-catalogue/internal/config"
	"github.com/tuanvumaihuynh/product-catalogue/internal/event"
	"github.com/tuanvumaihuynh/product-catalogue/internal/log"
	"github.com/tuanvumaihuynh/product-catalogue/internal/storage/mq"
	"github.com/tuanvumaihuynh/product-catalogue/internal/telemetry"
	"github.com/tuanvumaihuynh/product-catalogue/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running notification service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log   config.Log
		Kafka config.Kafka
		Otel  config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	svc := event.New(logger, kafkaConsumer, cfg.Kafka.ProductTopic)
	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running notification service: %w", err)
	}
	logger.InfoContext(ctx, "notification service started",
		slog.String("topic", cfg.Kafka.ProductTopic),
		slog.String("group", cfg.Kafka.Group),
	)

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "notification service is shutting down")
	cleanup()

	logger.InfoContext(ctx, "notification service is stopped")

	return nil
}
