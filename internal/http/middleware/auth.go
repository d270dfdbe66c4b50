package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/tuanvumaihuynh/product-catalogue/internal/auth"
	"github.com/tuanvumaihuynh/product-catalogue/internal/http/apierr"
	"github.com/tuanvumaihuynh/product-catalogue/internal/http/metric"
)

// TokenVerifier turns a bearer token into a verified identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

const bearerPrefix = "bearer "

// Authenticate attaches the identity of a valid bearer token to the request context.
// Requests without a valid token pass through anonymously; Authorize rejects them.
func Authenticate(verifier TokenVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := verifier.Verify(strings.TrimSpace(header[len(bearerPrefix):]))
			if err != nil {
				log.WarnContext(r.Context(), "rejected bearer token", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.NewContext(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize lets the request through only when the caller may run op.
func Authorize(op auth.Operation, m *metric.Metrics, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.FromContext(r.Context())
			if err := auth.Authorize(identity, op); err != nil {
				m.AuthDecisions.WithLabelValues(op.String(), "deny").Inc()

				attrs := []any{slog.String("operation", op.String())}
				if identity != nil {
					attrs = append(attrs, slog.String("subject", identity.Subject))
				}
				log.InfoContext(r.Context(), "request denied", attrs...)

				//nolint:errcheck
				apierr.Write(w, apierr.New(err))
				return
			}

			m.AuthDecisions.WithLabelValues(op.String(), "allow").Inc()
			next.ServeHTTP(w, r)
		})
	}
}
