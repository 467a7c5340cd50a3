// Package api provides the HTTP API server and handlers for the product label server.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/productlabel/productlabel-server/internal/metrics"
	"github.com/productlabel/productlabel-server/internal/ratelimit"
)

// Options tunes the HTTP surface.
type Options struct {
	// CORSAllowedOrigins lists the origins browsers may call from. Empty means "*".
	CORSAllowedOrigins []string
	// AdminRateLimit is the sustained number of label writes per second per client.
	// Zero disables write limiting.
	AdminRateLimit float64
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services     *Services
	health       HealthChecks
	router       *chi.Mux
	api          huma.API
	writeLimiter *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, health HealthChecks, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		services: services,
		health:   health,
		router:   router,
		logger:   logger,
	}
	if opts.AdminRateLimit > 0 {
		burst := max(int(opts.AdminRateLimit*2), 1)
		s.writeLimiter = ratelimit.NewWithTTL(opts.AdminRateLimit, burst, 10*time.Minute)
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("Product Label API", "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mostly for tests.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.writeLimiter != nil {
		s.writeLimiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if s.writeLimiter != nil {
		s.router.Use(s.limitLabelWrites(RateLimitMiddleware(s.writeLimiter, s.logger)))
	}
}

// registerRoutes wires every endpoint.
func (s *Server) registerRoutes() {
	s.router.Handle("/metrics", metrics.Handler())

	s.registerHealthRoutes()
	s.registerStorefrontRoutes()
	s.registerLabelRoutes()
}
