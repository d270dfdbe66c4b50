package apperr

import (
	"fmt"

	"github.com/tuanvumaihuynh/product-catalogue/pkg/zerror"
)

const (
	ValidationErrorCode        = "VALIDATION_FAILED"
	ProductNotFoundCode        = "PRODUCT_NOT_FOUND"
	ProductAlreadyDeletedCode  = "PRODUCT_ALREADY_DELETED"
	InvalidStateTransitionCode = "INVALID_STATE_TRANSITION"
	UnauthenticatedCode        = "UNAUTHENTICATED"
	ForbiddenCode              = "FORBIDDEN"
	ServiceUnavailableCode     = "SERVICE_UNAVAILABLE"
	RouteNotFoundCode          = "ROUTE_NOT_FOUND"
	MethodNotAllowedCode       = "METHOD_NOT_ALLOWED"
)

var (
	ValidationErr             = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	ProductNotFoundErr        = zerror.NewNotFound(ProductNotFoundCode, "the product is not found")
	ProductAlreadyDeletedErr  = zerror.NewConflict(ProductAlreadyDeletedCode, "the product is already deleted")
	InvalidStateTransitionErr = zerror.NewConflict(InvalidStateTransitionCode, "invalid product state transition")
	UnauthenticatedErr        = zerror.NewUnauthorized(UnauthenticatedCode, "authentication is required")
	ForbiddenErr              = zerror.NewForbidden(ForbiddenCode, "you do not have permission to access this resource")
	ServiceUnavailableErr     = zerror.NewServiceUnavailable(ServiceUnavailableCode, "service unavailable")
	RouteNotFoundErr          = zerror.NewNotFound(RouteNotFoundCode, "the requested route does not exist")
	MethodNotAllowedErr       = zerror.NewMethodNotAllowed(MethodNotAllowedCode, "the method is not allowed on this route")
)

// ProductNotFound reports that no row exists for id.
func ProductNotFound(id int64) zerror.ZError {
	return ProductNotFoundErr.WithMsg(fmt.Sprintf("the product is not found :: id %d", id))
}

// ProductAlreadyDeleted reports an attempt to mutate a deleted product.
func ProductAlreadyDeleted(id int64) zerror.ZError {
	return ProductAlreadyDeletedErr.WithMsg(fmt.Sprintf("the product is already deleted : %d", id))
}
