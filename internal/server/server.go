// Package server exposes the result store and the orchestrator over HTTP:
// order submission, result listing, Prometheus metrics and a health probe.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "github.com/agbru/ordersim/internal/errors"
	"github.com/agbru/ordersim/internal/logging"
	"github.com/agbru/ordersim/internal/orchestration"
	"github.com/agbru/ordersim/internal/order"
)

// Config holds the listener settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Security        SecurityConfig
}

// DefaultConfig returns the settings used by -serve addr.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:            addr,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Security:        DefaultSecurityConfig(),
	}
}

// Server serves the HTTP API. Orders submitted through POST /orders run in
// the background on the server's own context, which Start cancels on
// shutdown.
type Server struct {
	orch    *orchestration.Orchestrator
	metrics *Metrics
	logger  logging.Logger
	config  Config

	jobCtx    context.Context
	cancelJob context.CancelFunc
	jobs      sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates a server. metrics should be the Recorder given to orch so
// that /metrics reports the runs.
func New(orch *orchestration.Orchestrator, metrics *Metrics, logger logging.Logger, config Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		orch:      orch,
		metrics:   metrics,
		logger:    logger,
		config:    config,
		jobCtx:    ctx,
		cancelJob: cancel,
		inflight:  make(map[string]struct{}),
	}
}

// Handler returns the routed handler with middlewares applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/orders", s.wrap(s.handleOrders))
	mux.HandleFunc("/results", s.wrap(s.handleResults))
	mux.HandleFunc("/results/{id}", s.wrap(s.handleResult))
	mux.HandleFunc("/healthz", s.wrap(s.handleHealth))
	mux.HandleFunc("/metrics", s.wrap(s.handleMetrics))
	return mux
}

func (s *Server) wrap(h http.HandlerFunc) http.HandlerFunc {
	return SecurityMiddleware(s.config.Security, s.metricsMiddleware(h))
}

// Start listens on the configured address until ctx ends, then shuts down
// gracefully and cancels the orders still running.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return apperrors.ConfigError{Message: fmt.Sprintf("cannot listen on %q: %v", s.config.Addr, err)}
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", logging.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.stopJobs()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.stopJobs()
	s.logger.Info("http server stopped")
	if err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// stopJobs cancels background orders and waits for them to settle.
func (s *Server) stopJobs() {
	s.cancelJob()
	s.jobs.Wait()
}

// orderRequest is the body of POST /orders. Quantity defaults to 1.
type orderRequest struct {
	OrderID  string `json:"order_id"`
	Type     string `json:"type"`
	Quantity *int   `json:"quantity"`
	Priority string `json:"priority"`
}

func (req orderRequest) toOrder() (order.Order, error) {
	o := order.Order{
		ID:       strings.TrimSpace(req.OrderID),
		Type:     order.NormalizeType(req.Type),
		Quantity: 1,
		Priority: order.NormalizePriority(req.Priority),
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return order.Order{}, apperrors.ValidationError{Field: "quantity", Message: "must not be negative"}
		}
		o.Quantity = *req.Quantity
	}
	return o, o.Validate()
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req orderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	o, err := req.toOrder()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.claim(o.ID) {
		writeError(w, http.StatusConflict, fmt.Sprintf("order %q is already processing", o.ID))
		return
	}

	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		defer s.release(o.ID)
		res, err := s.orch.ProcessSingle(s.jobCtx, o)
		if err != nil {
			if s.jobCtx.Err() != nil && apperrors.IsContextError(err) {
				s.logger.Info("order interrupted by shutdown", logging.String("order_id", o.ID))
				return
			}
			s.logger.Error("order failed", err, logging.String("order_id", o.ID))
			return
		}
		s.logger.Debug("order completed",
			logging.String("order_id", res.OrderID),
			logging.String("processing_time", res.ProcessingTime))
	}()

	w.Header().Set("Location", "/results/"+o.ID)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"order_id": o.ID,
		"status":   order.StatusProcessing,
	})
}

// claim marks id as submitted through the API. It fails while an earlier
// submission of the same ID is still running.
func (s *Server) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *Server) release(id string) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
}

func (s *Server) inflightCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		results := s.orch.Store().Snapshot()
		writeJSON(w, http.StatusOK, map[string]any{
			"count":   len(results),
			"results": results,
		})
	case http.MethodDelete:
		if n := s.inflightCount(); n > 0 {
			writeError(w, http.StatusConflict, fmt.Sprintf("%d orders still processing", n))
			return
		}
		s.orch.Store().Clear()
		w.WriteHeader(http.StatusNoContent)
	default:
		s.methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	id := r.PathValue("id")
	res, ok := s.orch.Store().Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("order %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"stored":   s.orch.Store().Len(),
		"inflight": s.inflightCount(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	if s.logger != nil {
		s.logger.Debug("method not allowed",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path))
	}
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware tracks active requests, request counts and latency.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.ObserveRequest(routeLabel(r.URL.Path), r.Method, rec.status, time.Since(start))
	}
}

// routeLabel bounds the cardinality of the path label.
func routeLabel(path string) string {
	if strings.HasPrefix(path, "/results/") {
		return "/results/{id}"
	}
	return path
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
