package server

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/agbru/fibseq/internal/server"

// tracingMiddleware starts a server span per request, named after the
// matched pattern. Spans go to the global
// tracer provider, which is a no-op unless the process installs one.
func (s *Server) tracingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route := routeLabel(r)
		ctx, span := s.tracer.Start(r.Context(), route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		if id := r.PathValue("clientId"); id != "" {
			span.SetAttributes(attribute.String("fibseq.client_id", id))
		}

		rec := newStatusRecorder(w)
		next(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.response.status_code", rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
	}
}

func defaultTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
