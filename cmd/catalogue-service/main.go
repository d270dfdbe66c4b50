package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/product-catalogue/internal/auth"
	"github.com/tuanvumaihuynh/product-catalogue/internal/config"
	"github.com/tuanvumaihuynh/product-catalogue/internal/event"
	"github.com/tuanvumaihuynh/product-catalogue/internal/http"
	"github.com/tuanvumaihuynh/product-catalogue/internal/log"
	"github.com/tuanvumaihuynh/product-catalogue/internal/repository"
	"github.com/tuanvumaihuynh/product-catalogue/internal/service"
	"github.com/tuanvumaihuynh/product-catalogue/internal/storage/db"
	"github.com/tuanvumaihuynh/product-catalogue/internal/storage/mq"
	"github.com/tuanvumaihuynh/product-catalogue/internal/telemetry"
	"github.com/tuanvumaihuynh/product-catalogue/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running catalogue service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		HTTP     config.HTTP
		Kafka    config.Kafka
		Otel     config.Otel
		Auth     config.Auth
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

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	publisher := event.NewPublisher(logger, kafkaProducer, cfg.Kafka.ProductTopic)
	productRepository := repository.NewProductRepository(dbClient)
	productService := service.NewProductService(logger, productRepository, publisher)
	jwtManager := auth.NewJWTManager(cfg.Auth)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	// stopped only after the http service has drained
	stopPublisher := publisher.Run()
	logger.InfoContext(ctx, "event publisher started", slog.String("topic", cfg.Kafka.ProductTopic))

	wg.Go(func() {
		svc := http.New(cfg.HTTP, logger, jwtManager, dbClient, productService)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "error running http service", slog.Any("error", err))
			cancel()
			return
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		select {
		case <-interruptChan:
		case <-ctx.Done():
		}

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Wait()

	logger.InfoContext(ctx, "event publisher is shutting down")
	stopPublisher()

	return nil
}
