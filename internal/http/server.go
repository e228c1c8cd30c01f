package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"kesho/internal/clock"
	"kesho/internal/log"
	"kesho/internal/middleware/ratelimit"
	"kesho/internal/middleware/security"
	"kesho/internal/middleware/trace"
	"kesho/internal/services"
)

// ReadyFunc reports whether the store behind the ledger is reachable.
type ReadyFunc func(ctx context.Context) error

// Server is the JSON API in front of the budget service.
type Server struct {
	http.Server
	service *services.BudgetService
	ready   ReadyFunc
	logger  *log.Logger
	clock   clock.Clock

	rateLimitConfig ratelimit.Config
	rateLimiter     *ratelimit.Limiter
	detector        *security.Detector
	traceMiddleware *trace.Middleware

	started      time.Time
	shutdownOnce sync.Once
}

type Option func(*Server)

// WithReadiness sets the dependency check behind /readyz.
func WithReadiness(fn ReadyFunc) Option {
	return func(s *Server) { s.ready = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock sets the clock used for default transaction dates.
func WithClock(c clock.Clock) Option {
	return func(s *Server) { s.clock = c }
}

func WithRateLimit(cfg ratelimit.Config) Option {
	return func(s *Server) { s.rateLimitConfig = cfg }
}

// NewServer wires routes and middleware. Call Shutdown to stop the rate
// limiter along with the listener.
func NewServer(addr string, svc *services.BudgetService, opts ...Option) *Server {
	s := &Server{
		service:         svc,
		rateLimitConfig: ratelimit.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentHTTP)
	if s.clock == nil {
		s.clock = clock.System{}
	}
	if s.rateLimitConfig.Clock == nil {
		s.rateLimitConfig.Clock = s.clock
	}
	s.started = s.clock.Now()

	s.detector = security.NewDetector(s.logger)
	s.traceMiddleware = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP)
	s.rateLimiter = ratelimit.NewLimiter(s.rateLimitConfig)

	s.Addr = addr
	s.Handler = s.routes()
	s.ReadTimeout = 10 * time.Second
	s.WriteTimeout = 10 * time.Second
	s.IdleTimeout = 60 * time.Second
	s.MaxHeaderBytes = 1 << 16 // 64KB
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter().UseEncodedPath()
	setRoutingErrors(r)

	r.Use(s.detector.Middleware)
	r.Use(s.traceMiddleware.Middleware)
	r.Use(log.Middleware(s.logger, trace.RequestID))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	// Subrouters report their own method mismatches; without these a wrong
	// method under /api falls through to the root as a 404.
	api := r.PathPrefix("/api").Subrouter()
	setRoutingErrors(api)
	api.Use(s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	}))

	api.HandleFunc("/budget", s.handleGetBudget).Methods(http.MethodGet)
	api.HandleFunc("/budget", s.handleUpdateBudgets).Methods(http.MethodPut)
	api.HandleFunc("/budget/income", s.handleSetIncome).Methods(http.MethodPut)

	api.HandleFunc("/categories", s.handleAddCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{name}", s.handleUpdateCategory).Methods(http.MethodPut)
	api.HandleFunc("/categories/{name}", s.handleRemoveCategory).Methods(http.MethodDelete)

	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleAddTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.handleEditTransaction).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/notifications/preview", s.handlePreviewNotification).Methods(http.MethodPost)
	api.HandleFunc("/notifications", s.handleCommitNotification).Methods(http.MethodPost)

	return r
}

func setRoutingErrors(r *mux.Router) {
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not_found", "no such endpoint").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError().Write(w)
	})
}

// Shutdown stops the listener and the rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(s.rateLimiter.Stop)
	return s.Server.Shutdown(ctx)
}

// fail logs server-side failures and writes the mapped error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := ErrorFor(err)
	if resp.statusCode >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
	}
	resp.Write(w)
}
