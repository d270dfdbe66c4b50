package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/product-catalogue/internal/http/apierr"
	"github.com/tuanvumaihuynh/product-catalogue/internal/http/dto"
	"github.com/tuanvumaihuynh/product-catalogue/internal/service"
	"github.com/tuanvumaihuynh/product-catalogue/pkg/validator"
)

type productHandler struct {
	productSvc service.ProductService
	validator  validator.Validator
}

func newProductHandler(productSvc service.ProductService, v validator.Validator) *productHandler {
	return &productHandler{
		productSvc: productSvc,
		validator:  v,
	}
}

func (h *productHandler) CreateProduct(r *http.Request) (response, error) {
	var body dto.CreateProductRequest
	if err := decodeJSON(r, &body); err != nil {
		return response{}, err
	}
	if err := h.validator.Validate(body); err != nil {
		return response{}, err
	}

	product, err := h.productSvc.CreateProduct(r.Context(), service.CreateProductParams{
		Name:        body.Name,
		Description: body.Description,
		Price:       *body.Price,
		Category:    body.Category,
	})
	if err != nil {
		return response{}, fmt.Errorf("product service create product: %w", err)
	}

	return response{
		status: http.StatusCreated,
		body:   dto.NewResponse(http.StatusCreated, dto.MessageSuccess, dto.NewProductResponse(product)),
	}, nil
}

func (h *productHandler) UpdateProduct(r *http.Request) (response, error) {
	id, err := productIDParam(r)
	if err != nil {
		return response{}, err
	}

	var body dto.UpdateProductRequest
	if err := decodeJSON(r, &body); err != nil {
		return response{}, err
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), id, service.UpdateProductParams{
		Name:        body.Name,
		Description: body.Description,
		Price:       body.Price,
	})
	if err != nil {
		return response{}, fmt.Errorf("product service update product: %w", err)
	}

	return response{
		status: http.StatusOK,
		body:   dto.NewResponse(http.StatusOK, dto.MessageSuccess, dto.NewProductResponse(product)),
	}, nil
}

func (h *productHandler) DeleteProduct(r *http.Request) (response, error) {
	id, err := productIDParam(r)
	if err != nil {
		return response{}, err
	}

	res, err := h.productSvc.DeleteProduct(r.Context(), id)
	if err != nil {
		return response{}, fmt.Errorf("product service delete product: %w", err)
	}

	message := dto.MessageSuccess
	if res.AlreadyDeleted {
		message = fmt.Sprintf("product %d is already deleted", id)
	}

	return response{
		status: http.StatusOK,
		body:   dto.NewResponse(http.StatusOK, message, dto.NewProductResponse(res.Product)),
	}, nil
}

func (h *productHandler) ListProductsByCategory(r *http.Request) (response, error) {
	var category string
	if err := runtime.BindStyledParameterWithOptions("simple", "category", chi.URLParam(r, "category"), &category,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true}); err != nil {
		return response{}, &apierr.ParamError{Param: "category", Err: err}
	}

	products, err := h.productSvc.ListProductsByCategory(r.Context(), category)
	if err != nil {
		return response{}, fmt.Errorf("product service list products by category: %w", err)
	}

	return response{
		status: http.StatusOK,
		body:   dto.NewResponse(http.StatusOK, dto.MessageSuccess, dto.NewProductResponses(products)),
	}, nil
}

func (h *productHandler) ListPremiumProducts(r *http.Request) (response, error) {
	products, err := h.productSvc.ListPremiumProducts(r.Context())
	if err != nil {
		return response{}, fmt.Errorf("product service list premium products: %w", err)
	}

	return response{
		status: http.StatusOK,
		body:   dto.NewResponse(http.StatusOK, dto.MessageSuccess, dto.NewProductResponses(products)),
	}, nil
}

func productIDParam(r *http.Request) (int64, error) {
	var id int64
	if err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true}); err != nil {
		return 0, &apierr.ParamError{Param: "id", Err: err}
	}
	if id <= 0 {
		return 0, &apierr.ParamError{Param: "id", Err: fmt.Errorf("must be positive, got %d", id)}
	}
	return id, nil
}
