package log

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/product-catalogue/internal/auth"
	"github.com/tuanvumaihuynh/product-catalogue/pkg/correlationid"
)

var _ slog.Handler = (*requestContextHandler)(nil)

// requestContextHandler adds the request scoped values carried by ctx to every record:
// correlation id, caller subject and the active span.
type requestContextHandler struct {
	next slog.Handler
}

func withRequestContext(next slog.Handler) requestContextHandler {
	return requestContextHandler{next: next}
}

func (h requestContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h requestContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := correlationid.FromContext(ctx); ok {
		r.AddAttrs(slog.String("correlation_id", id))
	}

	if identity := auth.FromContext(ctx); identity != nil && identity.Subject != "" {
		r.AddAttrs(slog.String("subject", identity.Subject))
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	return h.next.Handle(ctx, r)
}

func (h requestContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return withRequestContext(h.next.WithAttrs(attrs))
}

func (h requestContextHandler) WithGroup(name string) slog.Handler {
	return withRequestContext(h.next.WithGroup(name))
}
