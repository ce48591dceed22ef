package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"pinledger/internal/core"
	"pinledger/internal/log"
	"pinledger/internal/middleware/ratelimit"
	"pinledger/internal/middleware/security"
	"pinledger/internal/middleware/trace"
)

// Ledger is the expense service used by the API.
type Ledger interface {
	Submit(ctx context.Context, amountText, description string) (core.Expense, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (core.Expense, error)
	Snapshot(ctx context.Context) (core.Snapshot, error)
}

// Preferences reads and replaces the display preferences.
type Preferences interface {
	Get() core.Preferences
	Update(p core.Preferences) (core.Preferences, error)
}

// LocationSink accepts reported device positions.
type LocationSink interface {
	Publish(sample core.LocationSample) int
}

// Pinger backs the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the API serves. Locations and Ready may be nil.
type Deps struct {
	Ledger      Ledger
	Preferences Preferences
	Places      []core.PointOfInterest
	Radius      float64
	Locations   LocationSink
	Ready       Pinger
	Logger      *log.Logger
	RateLimit   ratelimit.Config
}

type Server struct {
	http.Server
	deps    Deps
	logger  *log.Logger
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) (*Server, error) {
	resolver, err := security.NewIPResolver()
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentHTTP})
	}
	if deps.Radius <= 0 {
		deps.Radius = 100
	}

	s := &Server{
		deps:    deps,
		logger:  logger,
		limiter: ratelimit.NewLimiter(deps.RateLimit),
		tracer:  trace.NewMiddleware(logger, resolver.ClientIP),
	}

	r := mux.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.limiter.Middleware(resolver.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded")
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
	}))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/expenses", s.handleListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses", s.handleCreateExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses/{id}", s.handleGetExpense).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{id}", s.handleDeleteExpense).Methods(http.MethodDelete)
	api.HandleFunc("/preferences", s.handleGetPreferences).Methods(http.MethodGet)
	api.HandleFunc("/preferences", s.handleUpdatePreferences).Methods(http.MethodPut)
	api.HandleFunc("/places", s.handleListPlaces).Methods(http.MethodGet)
	api.HandleFunc("/places/nearby", s.handleNearby).Methods(http.MethodGet)
	api.HandleFunc("/location", s.handleReportLocation).Methods(http.MethodPost)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// Metrics returns request counters collected by the tracing middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ready.Ping(ctx); err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "store unavailable").Write(w)
			return
		}
	}
	NewResponse().JSON(map[string]string{"status": "ready"}).Write(w)
}
