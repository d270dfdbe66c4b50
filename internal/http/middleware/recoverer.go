package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/product-catalogue/internal/http/apierr"
)

// Recoverer turns a handler panic into the generic 500 envelope. The panic value and
// stack are logged and recorded on the request span; they never reach the client.
func Recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if err, ok := rvr.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rvr)
				}

				ctx := r.Context()
				span := trace.SpanFromContext(ctx)
				span.RecordError(fmt.Errorf("panic: %v", rvr))
				span.SetStatus(codes.Error, "panic in handler")

				log.ErrorContext(ctx, "panic in http handler",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("recover", rvr),
					slog.String("stack", string(debug.Stack())),
				)

				if err := apierr.Write(w, apierr.InternalServerErr); err != nil {
					log.ErrorContext(ctx, "error encoding error response", slog.Any("error", err))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
