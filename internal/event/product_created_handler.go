package event

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tuanvumaihuynh/product-catalogue/internal/model"
)

// HeaderMessageID carries a unique id per produced record so consumers can spot redeliveries.
const HeaderMessageID = "X-Message-ID"

// ProductCreationEvent is the payload emitted once per successfully persisted product.
type ProductCreationEvent struct {
	ProductID string  `json:"product_id,omitempty"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price"`
	Category  string  `json:"category,omitempty"`
}

// NewProductCreationEvent derives the event from a persisted product.
func NewProductCreationEvent(p model.Product) (ProductCreationEvent, error) {
	if p.ID == 0 {
		return ProductCreationEvent{}, errors.New("product has no id")
	}
	if p.Status != model.ProductStatusActive {
		return ProductCreationEvent{}, errors.New("product is not active")
	}

	return ProductCreationEvent{
		ProductID: p.IDString(),
		Name:      p.Name,
		Price:     p.Price,
		Category:  p.Category,
	}, nil
}

func (s *Service) handleProductCreationEvent(ctx context.Context, messageID string, ev ProductCreationEvent) error {
	s.logger.InfoContext(ctx, "received product creation event",
		slog.String("message_id", messageID),
		slog.String("product_id", ev.ProductID),
		slog.String("name", ev.Name),
		slog.Float64("price", ev.Price),
		slog.String("category", ev.Category),
	)
	return nil
}
