// Package server is the HTTP adapter of the sequence engine. It routes the
// three sequence operations, maps domain errors to 400 responses carrying the
// error message, and exposes health and prometheus endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/fibseq/internal/config"
	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/logging"
	procmetrics "github.com/agbru/fibseq/internal/metrics"
)

// API route patterns.
const (
	RouteNext   = "POST /api/fibonacci/next/{clientId}"
	RouteBack   = "POST /api/fibonacci/back/{clientId}"
	RouteList   = "GET /api/fibonacci/{clientId}"
	RouteHealth = "GET /health"
	RouteMetric = "/metrics"
)

// Routes returns the public routes, in registration order.
func Routes() []string {
	return []string{RouteNext, RouteBack, RouteList, RouteHealth, "GET " + RouteMetric}
}

// Server serves the sequence API.
type Server struct {
	service    SequenceService
	cfg        config.AppConfig
	logger     logging.Logger
	metrics    *Metrics
	security   SecurityConfig
	runtime    *procmetrics.RuntimeCollector
	tracer     trace.Tracer
	httpServer *http.Server
}

// Option configures a Server during construction.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics sets the metrics collectors, e.g. to share them with a test.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithSecurityConfig overrides the security headers and CORS policy.
func WithSecurityConfig(sc SecurityConfig) Option {
	return func(s *Server) { s.security = sc }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// New creates a Server for service. CORS follows cfg.EnableCORS unless a
// security config is given explicitly.
func New(service SequenceService, cfg config.AppConfig, opts ...Option) *Server {
	security := DefaultSecurityConfig()
	security.EnableCORS = cfg.EnableCORS

	s := &Server{
		service:  service,
		cfg:      cfg,
		security: security,
		runtime:  procmetrics.NewRuntimeCollector(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewDefaultLogger()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.tracer == nil {
		s.tracer = defaultTracer()
	}
	s.metrics.RegisterStats(service.Stats)
	return s
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(RouteNext, s.wrap(s.handleNext))
	mux.HandleFunc(RouteBack, s.wrap(s.handleBack))
	mux.HandleFunc(RouteList, s.wrap(s.handleList))
	mux.HandleFunc(RouteHealth, s.wrap(s.handleHealth))
	mux.HandleFunc(RouteMetric, s.handleMetrics)
	// Preflight requests never reach the method-qualified API routes.
	mux.HandleFunc("OPTIONS /api/", SecurityMiddleware(s.security, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	return mux
}

// wrap applies the middleware chain shared by API routes.
func (s *Server) wrap(h http.HandlerFunc) http.HandlerFunc {
	return SecurityMiddleware(s.security, s.metricsMiddleware(s.tracingMiddleware(h)))
}

// Start listens on the configured address and serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return apperrors.WrapError(err, "listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully,
// waiting at most ShutdownTimeout for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()
	s.logger.Info("server started", logging.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return apperrors.WrapError(err, "serve")
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", logging.Duration("timeout", s.cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		if !apperrors.IsContextError(err) {
			return apperrors.WrapError(err, "shutdown")
		}
		// Grace period expired with requests still in flight.
		s.logger.Info("shutdown timed out, closing remaining connections")
		_ = s.httpServer.Close()
	}
	<-errCh
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("clientId")
	value := s.service.Next(clientID)
	s.logger.Debug("next", logging.String("client_id", clientID), logging.Int64("value", value))
	writeJSON(w, http.StatusOK, value)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("clientId")
	status, err := s.service.Back(clientID)
	if err != nil {
		s.writeError(w, "back", clientID, err)
		return
	}
	s.logger.Debug("back", logging.String("client_id", clientID))
	writeText(w, http.StatusOK, status)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("clientId")
	seq, err := s.service.List(clientID)
	if err != nil {
		s.writeError(w, "list", clientID, err)
		return
	}
	s.logger.Debug("list", logging.String("client_id", clientID), logging.Int("length", len(seq)))
	writeJSON(w, http.StatusOK, seq)
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status       string  `json:"status"`
	Clients      int     `json:"clients"`
	CachedValues int     `json:"cached_values"`
	HeapAlloc    uint64  `json:"heap_alloc"`
	Goroutines   int     `json:"goroutines"`
	Uptime       float64 `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	stats := s.service.Stats()
	snap := s.runtime.Snapshot()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "healthy",
		Clients:      stats.Clients,
		CachedValues: stats.CachedValues,
		HeapAlloc:    snap.HeapAlloc,
		Goroutines:   snap.Goroutines,
		Uptime:       snap.Uptime.Seconds(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.logger.Debug("metrics: method not allowed", logging.String("method", r.Method))
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	s.metrics.WritePrometheus(w, r)
}

// writeError answers domain errors with 400 and the error message as body;
// anything else is an internal error.
func (s *Server) writeError(w http.ResponseWriter, operation, clientID string, err error) {
	if apperrors.IsDomainError(err) {
		kind := errorKind(err)
		s.metrics.RecordDomainError(operation, kind)
		s.logger.Info("request rejected",
			logging.String("operation", operation),
			logging.String("client_id", clientID),
			logging.String("kind", kind))
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("request failed", err,
		logging.String("operation", operation),
		logging.String("client_id", clientID))
	writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrClientNotFound):
		return "client_not_found"
	case errors.Is(err, apperrors.ErrBackLimitReached):
		return "back_limit_reached"
	default:
		return "unknown"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// metricsMiddleware tracks in-flight requests, request counts and latency.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		start := time.Now()
		rec := newStatusRecorder(w)
		next(rec, r)
		s.metrics.ObserveRequest(routeLabel(r), rec.status, time.Since(start))
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// routeLabel returns the matched pattern, keeping metric cardinality bounded
// regardless of client identifiers.
func routeLabel(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return "unmatched"
}
