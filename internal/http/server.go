package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"budgetbuddy/internal/analytics"
	"budgetbuddy/internal/cache"
	"budgetbuddy/internal/insights"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/middleware/ratelimit"
	"budgetbuddy/internal/middleware/security"
	"budgetbuddy/internal/middleware/trace"
	"budgetbuddy/internal/services"
)

// Dependencies are the collaborators the API serves.
type Dependencies struct {
	Ledger    *services.Ledger
	Analytics *analytics.Aggregator
	Insights  *insights.Generator
	Logger    *log.Logger
	// Ready probes the backing store. Nil falls back to a settings read.
	Ready func(ctx context.Context) error
}

// Options tunes the server. Zero values take defaults.
type Options struct {
	RateLimitPerMinute int
	AICacheSize        int
	AICacheTTL         time.Duration
	TrustedProxies     []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
}

func (o Options) withDefaults() Options {
	if o.RateLimitPerMinute <= 0 {
		o.RateLimitPerMinute = 60
	}
	if o.AICacheSize <= 0 {
		o.AICacheSize = 64
	}
	if o.AICacheTTL <= 0 {
		o.AICacheTTL = 10 * time.Minute
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 15 * time.Second
	}
	if o.WriteTimeout <= 0 {
		// AI calls may take up to their own timeout before falling back.
		o.WriteTimeout = 60 * time.Second
	}
	return o
}

// Server is the JSON API server.
type Server struct {
	http.Server

	ledger    *services.Ledger
	analytics *analytics.Aggregator
	insights  *insights.Generator
	ready     func(ctx context.Context) error
	logger    *log.Logger
	slogger   *log.StructuredLogger

	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	detector     *security.Detector
	cacheManager *cache.Manager
	aiCache      *cache.LRUCache[any]
	flight       singleflight.Group

	startedAt            time.Time
	transactionsRecorded atomic.Int64
	aiGenerations        atomic.Int64

	shutdownOnce sync.Once
}

// NewServer wires the router and middleware. The returned server is not
// listening yet.
func NewServer(addr string, deps Dependencies, opts Options) *Server {
	opts = opts.withDefaults()
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	agg := deps.Analytics
	if agg == nil {
		agg = analytics.New(time.Now)
	}
	gen := deps.Insights
	if gen == nil {
		gen = insights.New(insights.Unavailable{}, insights.WithAggregator(agg), insights.WithLogger(logger))
	}

	s := &Server{
		ledger:       deps.Ledger,
		analytics:    agg,
		insights:     gen,
		ready:        deps.Ready,
		logger:       logger,
		slogger:      log.NewStructuredLogger(logger),
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:       trace.NewMiddleware(detector.ExtractClientIP, logger),
		detector:     detector,
		cacheManager: cache.NewManager(logger),
		aiCache:      cache.NewLRUCache[any](opts.AICacheSize, opts.AICacheTTL),
		startedAt:    time.Now(),
	}
	s.cacheManager.Register(s.aiCache)
	s.cacheManager.StartCleanup(opts.AICacheTTL)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.tracer.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware(s.logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Route not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResult(http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed").Write(w)
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	})

	r.Route("/api", func(r chi.Router) {
		// Reads
		r.Get("/transactions", s.handleListTransactions)
		r.Get("/transactions/{id}", s.handleGetTransaction)
		r.Get("/transactions/category/{category}", s.handleTransactionsByCategory)
		r.Get("/budgets", s.handleListBudgets)
		r.Get("/budgets/{id}", s.handleGetBudget)
		r.Get("/assets", s.handleListAssets)
		r.Get("/assets/summary", s.handleAssetSummary)
		r.Get("/assets/{id}", s.handleGetAsset)
		r.Get("/settings", s.handleGetSettings)
		r.Get("/analytics", s.handleAnalytics)
		r.Get("/analytics/trends", s.handleTrends)
		r.Get("/analytics/health", s.handleHealthScore)
		r.Get("/currencies", s.handleCurrencies)
		r.Get("/export", s.handleExport)

		// Writes and AI calls share the per-client limit.
		r.Group(func(r chi.Router) {
			r.Use(limited)

			r.Post("/transactions", s.handleCreateTransaction)
			r.Put("/transactions/{id}", s.handleUpdateTransaction)
			r.Patch("/transactions/{id}", s.handleUpdateTransaction)
			r.Delete("/transactions/{id}", s.handleDeleteTransaction)

			r.Post("/budgets", s.handleCreateBudget)
			r.Put("/budgets/{id}", s.handleUpdateBudget)
			r.Patch("/budgets/{id}", s.handleUpdateBudget)
			r.Delete("/budgets/{id}", s.handleDeleteBudget)

			r.Post("/assets", s.handleCreateAsset)
			r.Put("/assets/{id}", s.handleUpdateAsset)
			r.Patch("/assets/{id}", s.handleUpdateAsset)
			r.Delete("/assets/{id}", s.handleDeleteAsset)

			r.Put("/settings", s.handleUpdateSettings)
			r.Patch("/settings", s.handleUpdateSettings)

			r.Post("/clear-data", s.handleClearData)

			r.Post("/ai/insights", s.handleInsights)
			r.Post("/ai/chat", s.handleChat)
			r.Post("/ai/tips", s.handleTips)
			r.Get("/ai/quick-tip", s.handleQuickTip)
		})
	})

	return r
}

// Shutdown stops accepting requests, drains in-flight ones and releases
// background goroutines. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "HTTP server shutting down", log.FieldOperation, log.OpShutdown)
		err = s.Server.Shutdown(ctx)
		s.limiter.Stop()
		s.cacheManager.Stop()
	})
	return err
}

// logFailure records a 5xx cause that is not sent to the client.
func (s *Server) logFailure(r *http.Request, msg string, err error, op string) {
	fields := log.NewFields().WithErrorType(log.ErrorTypeInternal)
	if id := trace.GetRequestID(r.Context()); id != "" {
		fields = fields.WithRequestID(id)
	}
	s.slogger.Failure(r.Context(), msg, err, log.ComponentHTTP, op, fields)
}

// logDeleted records a removed entity on the request-scoped logger.
func logDeleted(r *http.Request, kind string, id int64) {
	fields := log.NewFields().WithEntity(kind, id).WithOperation(log.OpDelete)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Entity deleted", fields.ToSlice()...)
}

// fail writes the mapped response for err, logging causes that become 500s.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, op, description string) {
	resp := errorResult(err, description)
	if resp.statusCode >= http.StatusInternalServerError {
		s.logFailure(r, description, err, op)
	}
	resp.Write(w)
}
