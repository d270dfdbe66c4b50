package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/product-catalogue/internal/storage/mq"
)

// Service is the notification consumer of product events.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
	topic      string
}

// New creates a new notification consumer reading topic.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	topic string,
) *Service {
	return &Service{
		logger:     logger.With(slog.String("service", "notification")),
		mqConsumer: mqConsumer,
		topic:      topic,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.mqConsumer.RegisterHandler(s.topic, s.handleMessage); err != nil {
		return nil, fmt.Errorf("register product creation event handler: %w", err)
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

func (s *Service) handleMessage(ctx context.Context, msg mq.Message) error {
	var ev ProductCreationEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return fmt.Errorf("unmarshal product creation event: %w", err)
	}

	if err := s.handleProductCreationEvent(ctx, msg.Headers[HeaderMessageID], ev); err != nil {
		return fmt.Errorf("handle product creation event: %w", err)
	}

	return nil
}
