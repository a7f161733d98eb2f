// Package server exposes the discovery operations as a read-only JSON API.
//
// Routes:
//
//	GET /healthz
//	GET /v1/tables
//	GET /v1/tables/{table}
//	GET /v1/tables/{table}/columns
//	GET /v1/tables/{table}/primary-keys
//	GET /v1/tables/{table}/foreign-keys
//	GET /v1/tables/{table}/exported-foreign-keys
//	GET /v1/snapshot
//
// Every route accepts owner, schema, all, views, offset, skip and limit
// query parameters with the meaning of discovery.Options.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/pgdiscovery/internal/errs"
	"github.com/koustreak/pgdiscovery/internal/logger"
)

// NewRouter builds the chi router with request IDs, panic recovery and
// structured request logging.
func NewRouter(h *Handler, log *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	h.RegisterRoutes(r)
	return r
}

// requestLogger logs one line per request through log.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.InfoWith("http request", map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			})
		})
	}
}

// Server is an http.Server with graceful shutdown.
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	log             *logger.Logger
}

// New wraps handler in an http.Server configured from cfg.
func New(cfg *Config, handler http.Handler, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             log,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("HTTP server listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errs.Wrap(errs.ErrKindConnectionFailed, "http server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return errs.Wrap(errs.ErrKindTimeout, "http server shutdown failed", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}
