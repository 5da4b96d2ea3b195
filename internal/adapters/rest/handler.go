// Package rest exposes the resolver over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
	"github.com/ewilliams-labs/trackfinder/internal/logger"
	"github.com/ewilliams-labs/trackfinder/internal/metrics"
)

// Resolver is the slice of services.Resolver the handler drives.
type Resolver interface {
	ResolveText(ctx context.Context, raw string) (domain.Resolution, error)
	Resolve(ctx context.Context, req domain.MusicRequest) (domain.Resolution, error)
	Plan(ctx context.Context, raw string) (domain.MusicRequest, []string, error)
	Queries(req domain.MusicRequest) []string
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	resolver Resolver
	journal  ports.JournalReader
	validate *validator.Validate
	logger   *zap.Logger
	timeout  time.Duration
	router   chi.Router

	// The catalog drives a single speaker, so resolves run one at a time.
	mu sync.Mutex
}

// Option configures a Handler.
type Option func(*Handler)

// WithJournalReader enables the /resolutions endpoints.
func WithJournalReader(j ports.JournalReader) Option {
	return func(h *Handler) { h.journal = j }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithResolveTimeout bounds each /resolve call. Zero means no bound.
func WithResolveTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(resolver Resolver, opts ...Option) *Handler {
	h := &Handler{
		resolver: resolver,
		validate: newValidator(),
		logger:   zap.NewNop(),
		router:   chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.routes()
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	h.router.Use(jsonRecoverer(h.logger))
	h.router.Use(chiMiddleware.RequestID)
	h.router.Use(requestLogger(h.logger))
	h.router.Use(metrics.Middleware())

	h.router.Get("/health", h.HealthCheck)
	h.router.Post("/resolve", h.Resolve)
	h.router.Post("/queries", h.Queries)
	h.router.Get("/resolutions", h.ListResolutions)
	h.router.Get("/resolutions/{id}", h.GetResolution)
	h.router.Method(http.MethodGet, metrics.ScrapePath, promhttp.Handler())
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names in validation errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(errorResponse{Code: codeInternal, Error: "internal error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger emits one log line per request and propagates X-Request-ID.
func requestLogger(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ctx, reqLogger := logger.WithRequest(r.Context(), log, requestID)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
