package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/tuanvumaihuynh/product-catalogue/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalogue/internal/event"
	"github.com/tuanvumaihuynh/product-catalogue/internal/model"
	"github.com/tuanvumaihuynh/product-catalogue/internal/repository"
	"github.com/tuanvumaihuynh/product-catalogue/pkg/optional"
	"github.com/tuanvumaihuynh/product-catalogue/pkg/zerror"
)

type CreateProductParams struct {
	Name        string
	Description *string
	Price       float64
	Category    string
}

// UpdateProductParams carries a partial update. Unset fields keep their stored value.
type UpdateProductParams struct {
	Name        optional.Value[string]
	Description optional.Value[string]
	Price       optional.Value[float64]
}

type DeleteProductResult struct {
	Product        model.Product
	AlreadyDeleted bool
}

// EventPublisher hands product creation events to the event channel without blocking.
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, ev event.ProductCreationEvent)
}

type ProductService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	UpdateProduct(ctx context.Context, id int64, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64) (DeleteProductResult, error)
	ListProductsByCategory(ctx context.Context, category string) ([]model.Product, error)
	ListPremiumProducts(ctx context.Context) ([]model.Product, error)
}

type productService struct {
	logger      *slog.Logger
	productRepo repository.ProductRepository
	publisher   EventPublisher
	now         func() time.Time
}

func NewProductService(
	logger *slog.Logger,
	productRepo repository.ProductRepository,
	publisher EventPublisher,
) ProductService {
	return &productService{
		logger:      logger.With(slog.String("service", "product")),
		productRepo: productRepo,
		publisher:   publisher,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	var details []zerror.Detail
	if strings.TrimSpace(params.Name) == "" {
		details = append(details, zerror.Detail{Field: "name", Message: "must not be blank"})
	}
	if strings.TrimSpace(params.Category) == "" {
		details = append(details, zerror.Detail{Field: "category", Message: "must not be blank"})
	}
	if params.Price < 0 {
		details = append(details, zerror.Detail{Field: "price", Message: "must be greater than or equal to 0"})
	}
	if len(details) > 0 {
		return model.Product{}, apperr.ValidationErr.WithDetails(details...)
	}

	now := s.now()
	product, err := s.productRepo.CreateProduct(ctx, model.Product{
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Category:    params.Category,
		Status:      model.ProductStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository create product: %w", err)
	}

	ev, err := event.NewProductCreationEvent(product)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to build product creation event",
			slog.Int64("product_id", product.ID),
			slog.Any("error", err),
		)
		return product, nil
	}
	s.publisher.PublishProductCreated(ctx, ev)

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id int64, params UpdateProductParams) (model.Product, error) {
	if err := validateUpdate(params); err != nil {
		return model.Product{}, err
	}

	product, err := s.getProduct(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	if product.Status.IsTerminal() {
		return model.Product{}, apperr.ProductAlreadyDeleted(id)
	}

	if name, ok := params.Name.Get(); ok {
		product.Name = name
	}
	if params.Description.IsSet() {
		product.Description = params.Description.Ptr()
	}
	if price, ok := params.Price.Get(); ok {
		product.Price = price
	}
	product.UpdatedAt = s.now()

	updated, err := s.productRepo.UpdateProduct(ctx, product)
	if err != nil {
		return model.Product{}, s.mapRepoErr(id, fmt.Errorf("product repository update product: %w", err))
	}

	return updated, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int64) (DeleteProductResult, error) {
	product, err := s.getProduct(ctx, id)
	if err != nil {
		return DeleteProductResult{}, err
	}

	if product.Status == model.ProductStatusDeleted {
		return DeleteProductResult{Product: product, AlreadyDeleted: true}, nil
	}

	if !product.Status.CanTransitionTo(model.ProductStatusDeleted) {
		return DeleteProductResult{}, apperr.InvalidStateTransitionErr.WithMsg(
			fmt.Sprintf("cannot move product %d from %s to %s", id, product.Status, model.ProductStatusDeleted),
		)
	}

	deleted, err := s.productRepo.MarkProductDeleted(ctx, id, s.now())
	if errors.Is(err, repository.ErrProductDeleted) {
		// deleted concurrently since the read
		product, err := s.getProduct(ctx, id)
		if err != nil {
			return DeleteProductResult{}, err
		}
		return DeleteProductResult{Product: product, AlreadyDeleted: true}, nil
	}
	if err != nil {
		return DeleteProductResult{}, s.mapRepoErr(id, fmt.Errorf("product repository mark product deleted: %w", err))
	}

	return DeleteProductResult{Product: deleted}, nil
}

func (s *productService) ListProductsByCategory(ctx context.Context, category string) ([]model.Product, error) {
	products, err := s.productRepo.ListProductsByCategoryAndStatus(ctx, category, model.ProductStatusActive)
	if err != nil {
		return nil, fmt.Errorf("product repository list products by category and status: %w", err)
	}

	return products, nil
}

func (s *productService) ListPremiumProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListProductsByStatusAndMinPrice(ctx, model.ProductStatusActive, model.PremiumPriceThreshold)
	if err != nil {
		return nil, fmt.Errorf("product repository list products by status and min price: %w", err)
	}

	// Ascending by price regardless of store order.
	slices.SortStableFunc(products, func(a, b model.Product) int {
		return cmp.Compare(a.Price, b.Price)
	})

	return products, nil
}

func (s *productService) getProduct(ctx context.Context, id int64) (model.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, s.mapRepoErr(id, fmt.Errorf("product repository get product: %w", err))
	}
	return product, nil
}

func (s *productService) mapRepoErr(id int64, err error) error {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return apperr.ProductNotFound(id).WrapParent(err)
	case errors.Is(err, repository.ErrProductDeleted):
		return apperr.ProductAlreadyDeleted(id).WrapParent(err)
	default:
		return err
	}
}

func validateUpdate(params UpdateProductParams) error {
	var details []zerror.Detail

	if params.Name.IsNull() {
		details = append(details, zerror.Detail{Field: "name", Message: "must not be null"})
	} else if name, ok := params.Name.Get(); ok && strings.TrimSpace(name) == "" {
		details = append(details, zerror.Detail{Field: "name", Message: "must not be blank"})
	}

	if params.Price.IsNull() {
		details = append(details, zerror.Detail{Field: "price", Message: "must not be null"})
	} else if price, ok := params.Price.Get(); ok && price < 0 {
		details = append(details, zerror.Detail{Field: "price", Message: "must be greater than or equal to 0"})
	}

	if len(details) > 0 {
		return apperr.ValidationErr.WithDetails(details...)
	}
	return nil
}
