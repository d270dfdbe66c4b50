package middleware_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-catalogue/internal/auth"
	"github.com/tuanvumaihuynh/product-catalogue/internal/http/metric"
	"github.com/tuanvumaihuynh/product-catalogue/internal/http/middleware"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubVerifier map[string]auth.Identity

func (v stubVerifier) Verify(token string) (auth.Identity, error) {
	identity, ok := v[token]
	if !ok {
		return auth.Identity{}, errors.New("unknown token")
	}
	return identity, nil
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// authDecisions sums the auth decision counter for the given outcome.
func authDecisions(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != "product_catalogue_auth_decisions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == outcome {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}

func TestRecoverer(t *testing.T) {
	t.Run("Should answer 500 with the generic envelope", func(t *testing.T) {
		h := middleware.Recoverer(discardLogger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/premium", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, "an unknown error occurred", body["message"])
		assert.NotContains(t, rec.Body.String(), "boom")
	})

	t.Run("Should re-panic on aborted handlers", func(t *testing.T) {
		h := middleware.Recoverer(discardLogger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic(http.ErrAbortHandler)
		}))

		assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		})
	})
}

func TestAuth(t *testing.T) {
	verifier := stubVerifier{
		"admin-token": {Subject: "root", Roles: []auth.Role{auth.RoleAdmin}},
		"user-token":  {Subject: "alice", Roles: []auth.Role{auth.RoleUser}},
	}

	newHandler := func(op auth.Operation) (http.Handler, *prometheus.Registry) {
		reg := prometheus.NewRegistry()
		m := metric.New(reg)
		ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		return middleware.Authenticate(verifier, discardLogger)(
			middleware.Authorize(op, m, discardLogger)(ok),
		), reg
	}

	serve := func(h http.Handler, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/products/1", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("Should let admins delete", func(t *testing.T) {
		h, reg := newHandler(auth.OperationDeleteProduct)

		rec := serve(h, "Bearer admin-token")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.InDelta(t, 1, authDecisions(t, reg, "allow"), 0)
	})

	t.Run("Should accept the scheme in any case", func(t *testing.T) {
		h, _ := newHandler(auth.OperationDeleteProduct)

		assert.Equal(t, http.StatusNoContent, serve(h, "bearer admin-token").Code)
	})

	t.Run("Should forbid users from deleting", func(t *testing.T) {
		h, reg := newHandler(auth.OperationDeleteProduct)

		rec := serve(h, "Bearer user-token")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.InDelta(t, 1, authDecisions(t, reg, "deny"), 0)
	})

	t.Run("Should treat missing and invalid tokens as unauthenticated", func(t *testing.T) {
		h, _ := newHandler(auth.OperationDeleteProduct)

		for _, header := range []string{"", "Bearer nope", "Basic YWxhZGRpbjpvcGVu"} {
			rec := serve(h, header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
			body := decodeEnvelope(t, rec)
			assert.InDelta(t, http.StatusUnauthorized, body["status"], 0)
		}
	})
}
