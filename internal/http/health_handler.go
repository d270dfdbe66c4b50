package http

import (
	"net/http"

	"github.com/tuanvumaihuynh/product-catalogue/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalogue/internal/http/dto"
	"github.com/tuanvumaihuynh/product-catalogue/internal/storage/db"
)

type healthHandler struct {
	healthChecker db.HealthChecker
}

func newHealthHandler(healthChecker db.HealthChecker) *healthHandler {
	return &healthHandler{
		healthChecker: healthChecker,
	}
}

func (h *healthHandler) Healthz(r *http.Request) (response, error) {
	healthy, err := h.healthChecker.IsHealthy(r.Context())
	if err != nil || !healthy {
		return response{}, apperr.ServiceUnavailableErr.WithMsg("database is unreachable").WrapParent(err)
	}

	return response{
		status: http.StatusOK,
		body:   dto.NewResponse(http.StatusOK, dto.MessageSuccess, dto.HealthData{Database: "up"}),
	}, nil
}
