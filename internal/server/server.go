// Package server собирает HTTP API: маршруты движков, /healthz, /metrics
// и промежуточные обработчики.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"codeblooded.dev/clout/internal/common"
	"codeblooded.dev/clout/internal/server/middleware"
)

// Routes — обработчик фичи, который сам вешает свои маршруты.
type Routes interface {
	Register(mux *http.ServeMux)
}

// Options — настройки сервера.
type Options struct {
	Addr              string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	ShutdownTimeout   time.Duration
}

// Server — HTTP-сервер API.
type Server struct {
	http    *http.Server
	limiter *middleware.RateLimiter
	timeout time.Duration
}

// New собирает сервер. /healthz и /metrics не попадают под rate limit.
func New(opts Options, routes ...Routes) *Server {
	api := http.NewServeMux()
	for _, r := range routes {
		r.Register(api)
	}

	limiter := middleware.NewRateLimiter(opts.RateLimitRequests, opts.RateLimitWindow)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	root.Handle("GET /metrics", promhttp.Handler())
	root.Handle("/api/", limiter.Middleware(api))

	return &Server{
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           middleware.Recover(middleware.LogRequests(root)),
			ReadHeaderTimeout: 10 * time.Second,
		},
		limiter: limiter,
		timeout: opts.ShutdownTimeout,
	}
}

// Handler возвращает корневой обработчик (для тестов).
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run слушает порт до отмены ctx, потом мягко останавливается.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.http.Addr).Info("HTTP-сервер запущен")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.limiter.Close()
		if err != nil {
			return fmt.Errorf("HTTP-сервер: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	defer s.limiter.Close()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("остановка HTTP-сервера: %w", err)
	}
	log.Info("HTTP-сервер остановлен")
	return nil
}
