// Package api exposes the HTTP interface for the SEO metadata service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hoxtonmix/seo-api/internal/config"
	"github.com/hoxtonmix/seo-api/internal/enrich"
	"github.com/hoxtonmix/seo-api/internal/seo"
	"github.com/hoxtonmix/seo-api/internal/telemetry"
)

// Store is the persistence surface the handlers use.
type Store interface {
	CreatePage(ctx context.Context, p seo.Page) (seo.Page, error)
	UpsertPage(ctx context.Context, p seo.Page) (seo.Page, error)
	ListPages(ctx context.Context, cluster *string, level *int) ([]seo.Page, error)
	UpsertKeyword(ctx context.Context, k seo.Keyword) (seo.Keyword, error)
	ListKeywords(ctx context.Context, country, cluster *string, pageID *int64, limit, offset int) ([]seo.Keyword, error)
	CreateCompetitor(ctx context.Context, c seo.Competitor) (seo.Competitor, error)
	ListCompetitors(ctx context.Context) ([]seo.Competitor, error)
}

// Enricher runs the enrichment pipeline.
type Enricher interface {
	EnrichMetrics(ctx context.Context, req enrich.MetricsRequest) ([]enrich.MetricsResult, error)
	EnrichSERP(ctx context.Context, req enrich.SerpRequest) ([]enrich.SerpSummary, error)
}

// Authenticator checks a request once at the boundary. The shared-secret
// implementation can be swapped for signed tokens without touching handlers.
type Authenticator interface {
	Authenticate(r *http.Request) error
}

// APIKeyAuthenticator compares the x-api-key header against a shared secret.
type APIKeyAuthenticator struct {
	Key string
}

// Authenticate implements Authenticator.
func (a APIKeyAuthenticator) Authenticate(r *http.Request) error {
	if r.Header.Get("x-api-key") != a.Key {
		return seo.NewUnauthorized("missing or invalid API key")
	}
	return nil
}

// Server wires HTTP handlers to the store and the enrichment pipeline.
type Server struct {
	router   chi.Router
	store    Store
	enricher Enricher
	auth     Authenticator
	cfg      config.Config
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(store Store, enricher Enricher, auth Authenticator, cfg config.Config, logger *zap.Logger) *Server {
	s := &Server{
		store:    store,
		enricher: enricher,
		auth:     auth,
		cfg:      cfg,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(telemetry.Middleware)
	r.Use(timeoutMiddleware(time.Duration(cfg.Server.TimeoutSeconds) * time.Second))

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", telemetry.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", s.listPages)
			r.Post("/", s.createPage)
			r.Post("/import", s.importPages)
		})
		r.Route("/keywords", func(r chi.Router) {
			r.Get("/", s.listKeywords)
			r.Post("/batch", s.batchKeywords)
		})
		r.Route("/competitors", func(r chi.Router) {
			r.Get("/", s.listCompetitors)
			r.Post("/", s.createCompetitor)
		})
		r.Route("/enrich", func(r chi.Router) {
			r.Post("/keywords", s.enrichKeywords)
			r.Post("/serp", s.enrichSERP)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.Authenticate(r); err != nil {
			s.writeFailure(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				s.writeJSON(w, http.StatusInternalServerError, failureEnvelope{
					Error: failureError{Code: "INTERNAL_ERROR", Message: "internal server error"},
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// timeoutMiddleware cuts off slow handlers with the same failure envelope
// every other error path uses.
func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	body, _ := json.Marshal(failureEnvelope{
		Error: failureError{Code: "TIMEOUT", Message: "request timed out"},
	})
	return func(next http.Handler) http.Handler {
		h := http.TimeoutHandler(next, d, string(body))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// TimeoutHandler writes the timeout body without a content
			// type; set it up front so both paths emit JSON.
			w.Header().Set("Content-Type", "application/json")
			h.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}
