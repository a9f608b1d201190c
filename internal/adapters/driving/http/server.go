// Package http serves the question-answering session over a JSON API.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// MaxUploadBytes bounds the size of an uploaded file.
const MaxUploadBytes = 32 << 20

const shutdownTimeout = 5 * time.Second

// ErrMissingQAService is returned when the server has no session to serve.
var ErrMissingQAService = errors.New("qa service is required")

// Metrics records request metrics and exposes them for scraping.
type Metrics interface {
	RecordHTTPRequest(route string, status int, duration time.Duration)
	Handler() http.Handler
}

// Server routes HTTP requests to the session.
type Server struct {
	router  *chi.Mux
	qa      driving.QAService
	upload  driving.UploadService
	metrics Metrics
	limiter *rate.Limiter
}

// Options configures a Server.
type Options func(*Server)

// WithUpload enables POST /upload.
func WithUpload(upload driving.UploadService) Options {
	return func(s *Server) {
		s.upload = upload
	}
}

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(m Metrics) Options {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithRateLimit limits requests to perSecond with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Options {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New creates a server for qa.
func New(qa driving.QAService, opts ...Options) (*Server, error) {
	if qa == nil {
		return nil, ErrMissingQAService
	}

	r := chi.NewRouter()
	s := &Server{
		router: r,
		qa:     qa,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(requestMetrics(s.metrics))
	}

	r.Get("/", rootHandler)
	r.Get("/health", healthHandler)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(rateLimiter(s.limiter))
		}
		r.Get("/status", s.statusHandler)
		r.Post("/ask", s.askHandler)
		r.Post("/upload", s.uploadHandler)
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
