package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/product-catalogue/internal/storage/mq"
	"github.com/tuanvumaihuynh/product-catalogue/pkg/mqheader"
)

const defaultShutdownTimeout = 10 * time.Second

// Delivery is the outcome of one background publish.
type Delivery struct {
	Event     ProductCreationEvent
	MessageID string
	Partition int32
	Offset    int64
	Err       error

	ctx context.Context
}

// Publisher sends product creation events without blocking the caller. Each publish runs
// in its own goroutine and reports to a completion channel drained by Run.
type Publisher struct {
	logger          *slog.Logger
	mqProducer      mq.Producer
	topic           string
	shutdownTimeout time.Duration

	mu         sync.RWMutex
	closed     bool
	inflight   sync.WaitGroup
	deliveries chan Delivery
	observers  []func(Delivery)
}

type PublisherOption func(*Publisher)

// WithShutdownTimeout bounds how long cleanup waits for in-flight publishes.
func WithShutdownTimeout(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		p.shutdownTimeout = d
	}
}

// WithObserver registers fn to be called by the run loop for every delivery.
func WithObserver(fn func(Delivery)) PublisherOption {
	return func(p *Publisher) {
		p.observers = append(p.observers, fn)
	}
}

func NewPublisher(
	logger *slog.Logger,
	mqProducer mq.Producer,
	topic string,
	opts ...PublisherOption,
) *Publisher {
	p := &Publisher{
		logger:          logger.With(slog.String("service", "event_publisher")),
		mqProducer:      mqProducer,
		topic:           topic,
		shutdownTimeout: defaultShutdownTimeout,
		deliveries:      make(chan Delivery, 64),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishProductCreated schedules ev for delivery and returns immediately. Delivery keeps
// the values of ctx but not its cancellation.
func (p *Publisher) PublishProductCreated(ctx context.Context, ev ProductCreationEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal product creation event",
			slog.String("product_id", ev.ProductID),
			slog.Any("error", err),
		)
		return
	}

	messageID := uuid.NewString()
	headers := mqheader.Build(ctx)
	headers[HeaderMessageID] = messageID

	msg := mq.ProduceMsg{
		Topic:        p.topic,
		Headers:      headers,
		Payload:      payload,
		PartitionKey: &ev.ProductID,
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.WarnContext(ctx, "publisher closed, dropping product creation event",
			slog.String("product_id", ev.ProductID),
		)
		return
	}

	ctx = context.WithoutCancel(ctx)
	p.inflight.Go(func() {
		res, err := p.mqProducer.Produce(ctx, msg)
		p.deliveries <- Delivery{
			Event:     ev,
			MessageID: messageID,
			Partition: res.Partition,
			Offset:    res.Offset,
			Err:       err,
			ctx:       ctx,
		}
	})
}

// Run starts the loop draining delivery outcomes. The returned cleanup stops accepting
// publishes and waits for in-flight ones up to the shutdown timeout.
func (p *Publisher) Run() CleanupFunc {
	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		for d := range p.deliveries {
			p.observe(d)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			p.closed = true
			p.mu.Unlock()

			drainedChan := make(chan struct{})
			go func() {
				p.inflight.Wait()
				close(drainedChan)
			}()

			select {
			case <-drainedChan:
				close(p.deliveries)
				<-stoppedChan
				p.logger.Info("event publisher stopped")
			case <-time.After(p.shutdownTimeout):
				p.logger.Warn("event publisher stopped with publishes still in flight")
			}
		})
	}
}

func (p *Publisher) observe(d Delivery) {
	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	if d.Err != nil {
		p.logger.ErrorContext(ctx, "failed to publish product creation event",
			slog.String("product_id", d.Event.ProductID),
			slog.String("message_id", d.MessageID),
			slog.String("topic", p.topic),
			slog.Any("error", d.Err),
		)
	} else {
		p.logger.InfoContext(ctx, "published product creation event",
			slog.String("product_id", d.Event.ProductID),
			slog.String("message_id", d.MessageID),
			slog.String("topic", p.topic),
			slog.Int("partition", int(d.Partition)),
			slog.Int64("offset", d.Offset),
		)
	}

	for _, fn := range p.observers {
		fn(d)
	}
}
