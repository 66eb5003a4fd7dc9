package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthChecker reports whether the ledger store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server exposes /metrics and /healthz for the long-running workers.
type Server struct {
	httpServer *http.Server
}

func NewServer(addr string, health HealthChecker) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(health),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func NewRouter(health HealthChecker) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(10 * time.Second))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler(health))

	return r
}

func healthHandler(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		if err := health.HealthCheck(r.Context()); err != nil {
			zap.L().Warn("Health check failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			body = map[string]string{"status": "unavailable", "error": err.Error()}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		zap.L().Info("Starting ops server", zap.String("addr", s.httpServer.Addr))
		errChan <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	zap.L().Info("Ops server stopped")
	return nil
}
