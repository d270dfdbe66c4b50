// Package dto holds the JSON shapes of the HTTP API.
package dto

import (
	"github.com/tuanvumaihuynh/product-catalogue/internal/model"
	"github.com/tuanvumaihuynh/product-catalogue/pkg/optional"
)

const MessageSuccess = "success"

// Response is the envelope wrapping every API response.
type Response[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func NewResponse[T any](status int, message string, data T) Response[T] {
	return Response[T]{
		Status:  status,
		Message: message,
		Data:    data,
	}
}

type ProductResponse struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Status      string  `json:"status"`
}

func NewProductResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ProductID:   p.IDString(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Status:      string(p.Status),
	}
}

func NewProductResponses(products []model.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, NewProductResponse(p))
	}
	return out
}

type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,notblank,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"required,notblank,max=255"`
}

// UpdateProductRequest is a partial update. Category and status are not accepted.
type UpdateProductRequest struct {
	Name        optional.Value[string]  `json:"name"`
	Description optional.Value[string]  `json:"description"`
	Price       optional.Value[float64] `json:"price"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorData struct {
	Code    string       `json:"code"`
	Details []FieldError `json:"details,omitempty"`
}

type HealthData struct {
	Database string `json:"database"`
}
