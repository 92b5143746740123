package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/llmariner/iris-inference-server/internal/classifier"
	"github.com/llmariner/iris-inference-server/internal/monitoring"
	"github.com/llmariner/iris-inference-server/internal/rate"
)

// New creates a server.
func New(
	loader *classifier.Loader,
	metricsMonitor monitoring.MetricsMonitoring,
	ratelimiter rate.Limiter,
	logger logr.Logger,
) *S {
	return &S{
		loader:         loader,
		metricsMonitor: metricsMonitor,
		ratelimiter:    ratelimiter,
		logger:         logger.WithName("server"),
		ready:          make(chan struct{}),
	}
}

// S is a server that serves inference requests against the loaded
// classifier handle.
type S struct {
	loader         *classifier.Loader
	metricsMonitor monitoring.MetricsMonitoring
	ratelimiter    rate.Limiter
	logger         logr.Logger

	srv   *http.Server
	ready chan struct{}
}

// Run starts the HTTP server on the given port.
func (s *S) Run(port int) error {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	return s.RunWithListener(l)
}

// RunWithListener starts the HTTP server with the given listener.
func (s *S) RunWithListener(listener net.Listener) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.welcomeHandler)
	mux.HandleFunc("/model_status", s.modelStatusHandler)
	// Register both forms so that a POST is not redirected.
	mux.HandleFunc("/predict", s.predictHandler)
	mux.HandleFunc("/predict/", s.predictHandler)

	s.srv = &http.Server{
		Addr:    listener.Addr().String(),
		Handler: mux,
	}
	close(s.ready)

	s.logger.Info("Starting HTTP server...", "addr", s.srv.Addr)
	if err := s.srv.Serve(listener); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *S) Shutdown(ctx context.Context) error {
	<-s.ready
	s.logger.Info("Shutting down HTTP server...")
	return s.srv.Shutdown(ctx)
}

// IsReady reports whether the server is ready to accept requests.
func (s *S) IsReady() (bool, string) {
	select {
	case <-s.ready:
		return true, ""
	default:
		return false, "http server is not started"
	}
}

// errorResponse is the body of an error response with a single reason.
type errorResponse struct {
	Detail string `json:"detail"`
}

// validationErrorResponse reports every schema violation in the request.
type validationErrorResponse struct {
	Detail []validationError `json:"detail"`
}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (s *S) writeJSON(w http.ResponseWriter, code int, body any) {
	b, err := json.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(b); err != nil {
		s.logger.Error(err, "Failed to write response")
	}
}
