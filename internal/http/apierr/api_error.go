package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	govalidator "github.com/go-playground/validator/v10"

	"github.com/tuanvumaihuynh/product-catalogue/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalogue/internal/http/dto"
	"github.com/tuanvumaihuynh/product-catalogue/pkg/validator"
	"github.com/tuanvumaihuynh/product-catalogue/pkg/zerror"
)

const InternalServerErrorCode = "INTERNAL_SERVER_ERROR"

// ErrorResponse is the error response for the API.
type ErrorResponse struct {
	dto.Response[dto.ErrorData]

	// StatusCode is the status code for the error response.
	StatusCode int `json:"-"`
}

// ParamError reports a path or query parameter that could not be bound.
type ParamError struct {
	Param string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %v", e.Param, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

func New(err error) ErrorResponse {
	return errorToErrorResponse(err)
}

var InternalServerErr = newErrorResponse(
	http.StatusInternalServerError,
	InternalServerErrorCode,
	"an unknown error occurred",
	nil,
)

func newErrorResponse(statusCode int, code, msg string, details []dto.FieldError) ErrorResponse {
	return ErrorResponse{
		Response: dto.NewResponse(statusCode, msg, dto.ErrorData{
			Code:    code,
			Details: details,
		}),
		StatusCode: statusCode,
	}
}

func errorToErrorResponse(err error) ErrorResponse {
	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		details := make([]dto.FieldError, 0, len(zErr.Details()))
		for _, d := range zErr.Details() {
			details = append(details, dto.FieldError{Field: d.Field, Message: d.Message})
		}

		return newErrorResponse(
			ZErrorStatusToHTTPStatus(zErr.Status()),
			zErr.Code(),
			zErr.Msg(),
			details,
		)
	}

	var validationErrs govalidator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]dto.FieldError, len(validationErrs))
		for i, fe := range validationErrs {
			details[i] = dto.FieldError{
				Field:   fe.Field(),
				Message: validator.ValidationErrorMessage(fe),
			}
		}

		return newErrorResponse(
			http.StatusBadRequest,
			apperr.ValidationErrorCode,
			"validation error",
			details,
		)
	}

	var paramErr *ParamError
	if errors.As(err, &paramErr) {
		return newErrorResponse(
			http.StatusBadRequest,
			apperr.ValidationErrorCode,
			"validation error",
			[]dto.FieldError{{Field: paramErr.Param, Message: "is invalid"}},
		)
	}

	return InternalServerErr
}

func ZErrorStatusToHTTPStatus(status zerror.Status) int {
	switch status {
	case zerror.StatusUnauthorized:
		return http.StatusUnauthorized
	case zerror.StatusForbidden:
		return http.StatusForbidden
	case zerror.StatusNotFound:
		return http.StatusNotFound
	case zerror.StatusUnprocessableEntity:
		return http.StatusUnprocessableEntity
	case zerror.StatusMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case zerror.StatusConflict:
		return http.StatusConflict
	case zerror.StatusBadRequest:
		return http.StatusBadRequest
	case zerror.StatusValidationFailed:
		return http.StatusBadRequest
	case zerror.StatusUnknown, zerror.StatusInternalServerError:
		return http.StatusInternalServerError
	case zerror.StatusServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Write encodes res as the JSON response body with its status code.
func Write(w http.ResponseWriter, res ErrorResponse) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	return json.NewEncoder(w).Encode(res)
}
