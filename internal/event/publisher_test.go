package event_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-catalogue/internal/event"
	"github.com/tuanvumaihuynh/product-catalogue/internal/model"
	"github.com/tuanvumaihuynh/product-catalogue/internal/storage/mq"
	"github.com/tuanvumaihuynh/product-catalogue/pkg/correlationid"
)

type fakeProducer struct {
	mu      sync.Mutex
	msgs    []mq.ProduceMsg
	ctxErrs []error
	err     error
	release chan struct{}
}

func (f *fakeProducer) Produce(ctx context.Context, msg mq.ProduceMsg) (mq.ProduceResult, error) {
	if f.release != nil {
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if f.err != nil {
		return mq.ProduceResult{}, f.err
	}
	return mq.ProduceResult{Partition: 0, Offset: int64(len(f.msgs) - 1)}, nil
}

func (f *fakeProducer) produced() []mq.ProduceMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mq.ProduceMsg(nil), f.msgs...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewProductCreationEvent(t *testing.T) {
	t.Run("Should derive the event from a persisted product", func(t *testing.T) {
		ev, err := event.NewProductCreationEvent(model.Product{
			ID:       42,
			Name:     "Widget",
			Price:    12.5,
			Category: "tools",
			Status:   model.ProductStatusActive,
		})
		require.NoError(t, err)
		assert.Equal(t, event.ProductCreationEvent{ProductID: "42", Name: "Widget", Price: 12.5, Category: "tools"}, ev)
	})

	t.Run("Should refuse unpersisted or deleted products", func(t *testing.T) {
		_, err := event.NewProductCreationEvent(model.Product{Name: "x", Status: model.ProductStatusActive})
		assert.Error(t, err)

		_, err = event.NewProductCreationEvent(model.Product{ID: 1, Name: "x", Status: model.ProductStatusDeleted})
		assert.Error(t, err)
	})

	t.Run("Should omit empty strings but keep price", func(t *testing.T) {
		b, err := json.Marshal(event.ProductCreationEvent{ProductID: "1"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"product_id":"1","price":0}`, string(b))
	})
}

func TestPublisher(t *testing.T) {
	ev := event.ProductCreationEvent{ProductID: "7", Name: "Widget", Price: 10, Category: "tools"}

	t.Run("Should produce keyed by product id with correlation headers", func(t *testing.T) {
		producer := &fakeProducer{}
		p := event.NewPublisher(discardLogger(), producer, "product-topic")
		cleanup := p.Run()

		ctx := correlationid.NewContext(context.Background(), "corr-7")
		p.PublishProductCreated(ctx, ev)
		cleanup()

		msgs := producer.produced()
		require.Len(t, msgs, 1)
		assert.Equal(t, "product-topic", msgs[0].Topic)
		require.NotNil(t, msgs[0].PartitionKey)
		assert.Equal(t, "7", *msgs[0].PartitionKey)
		assert.Equal(t, "corr-7", msgs[0].Headers[correlationid.Header])
		assert.NotEmpty(t, msgs[0].Headers[event.HeaderMessageID])
		assert.JSONEq(t, `{"product_id":"7","name":"Widget","price":10,"category":"tools"}`, string(msgs[0].Payload))
	})

	t.Run("Should not block the caller and survive request cancellation", func(t *testing.T) {
		producer := &fakeProducer{release: make(chan struct{})}
		p := event.NewPublisher(discardLogger(), producer, "product-topic")
		cleanup := p.Run()

		ctx, cancel := context.WithCancel(context.Background())
		returned := make(chan struct{})
		go func() {
			p.PublishProductCreated(ctx, ev)
			close(returned)
		}()

		select {
		case <-returned:
		case <-time.After(time.Second):
			t.Fatal("publish blocked the caller")
		}

		cancel()
		close(producer.release)
		cleanup()

		producer.mu.Lock()
		defer producer.mu.Unlock()
		require.Len(t, producer.ctxErrs, 1)
		assert.NoError(t, producer.ctxErrs[0])
	})

	t.Run("Should report failures to observers without surfacing them", func(t *testing.T) {
		producer := &fakeProducer{err: errors.New("broker down")}

		var (
			mu  sync.Mutex
			got []event.Delivery
		)
		p := event.NewPublisher(discardLogger(), producer, "product-topic",
			event.WithObserver(func(d event.Delivery) {
				mu.Lock()
				defer mu.Unlock()
				got = append(got, d)
			}),
		)
		cleanup := p.Run()
		defer cleanup()

		p.PublishProductCreated(context.Background(), ev)

		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(got) == 1
		}, time.Second, 10*time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		assert.EqualError(t, got[0].Err, "broker down")
		assert.Equal(t, "7", got[0].Event.ProductID)
	})

	t.Run("Should drop publishes after cleanup", func(t *testing.T) {
		producer := &fakeProducer{}
		p := event.NewPublisher(discardLogger(), producer, "product-topic")
		cleanup := p.Run()
		cleanup()

		p.PublishProductCreated(context.Background(), ev)
		cleanup()

		assert.Empty(t, producer.produced())
	})

	t.Run("Should give up waiting after the shutdown timeout", func(t *testing.T) {
		producer := &fakeProducer{release: make(chan struct{})}
		defer close(producer.release)

		p := event.NewPublisher(discardLogger(), producer, "product-topic",
			event.WithShutdownTimeout(20*time.Millisecond),
		)
		cleanup := p.Run()
		p.PublishProductCreated(context.Background(), ev)

		done := make(chan struct{})
		go func() {
			cleanup()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("cleanup did not honour the shutdown timeout")
		}
	})
}
