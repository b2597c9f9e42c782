// Package health exposes a liveness endpoint for process supervisors.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Status struct {
	Status   string `json:"status"`
	Storage  string `json:"storage"`
	Sessions int    `json:"sessions"`
	Quotes   int    `json:"quotes"`
}

type Server struct {
	addr     string
	store    Pinger
	sessions func() int
	quotes   int
	logger   *zap.Logger
}

func NewServer(addr string, store Pinger, sessions func() int, quotes int, logger *zap.Logger) *Server {
	return &Server{
		addr:     addr,
		store:    store,
		sessions: sessions,
		quotes:   quotes,
		logger:   logger,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	return r
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Health endpoint listening", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := Status{Status: "ok", Storage: "ok", Quotes: s.quotes}
	if s.sessions != nil {
		status.Sessions = s.sessions()
	}

	code := http.StatusOK
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		status.Status = "degraded"
		status.Storage = err.Error()
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}
