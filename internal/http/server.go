package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"budgets/internal/core"
	"budgets/internal/log"
	"budgets/internal/metrics"
	"budgets/internal/middleware/ratelimit"
	"budgets/internal/middleware/security"
	"budgets/internal/middleware/trace"
	appweb "budgets/web"
)

// BudgetService is what the handlers need from the service layer.
type BudgetService interface {
	Contacts(ctx context.Context) ([]core.Contact, error)
	BudgetsForContact(ctx context.Context, contactID int64) ([]core.Budget, error)
	Budget(ctx context.Context, id int64) (core.Budget, error)
	CreateBudget(ctx context.Context, b core.Budget) (int64, error)
	UpdateBudget(ctx context.Context, id int64, u core.BudgetUpdate) (int64, error)
	DeleteBudget(ctx context.Context, id int64) (int64, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the optional parts of the server.
type Options struct {
	// Pinger backs /readyz. Nil means the store has nothing to check.
	Pinger  Pinger
	Metrics *metrics.Metrics
	// RateLimitPerMinute bounds write requests per client.
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	budgets   BudgetService
	pinger    Pinger
	metrics   *metrics.Metrics
	limiter   *ratelimit.Limiter
	logger    *log.Logger
	startedAt time.Time

	stopBackground context.CancelFunc
	shutdownOnce   sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, budgets BudgetService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.Config{Component: log.ComponentHTTP, Handler: slog.Default().Handler()})
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	bg, stop := context.WithCancel(context.Background())
	s := &Server{
		budgets:        budgets,
		pinger:         opts.Pinger,
		metrics:        opts.Metrics,
		limiter:        ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		logger:         opts.Logger,
		startedAt:      time.Now(),
		stopBackground: stop,
	}
	go s.limiter.Run(bg, 5*time.Minute)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// UI partials
	mux.HandleFunc("GET /ui/budgets", s.handleBudgetTable)
	mux.HandleFunc("GET /budgets/{id}/edit", s.handleEditBudget)

	mux.HandleFunc("POST /budgets", s.handleCreateBudget)
	mux.HandleFunc("PUT /budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("POST /budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /budgets/{id}", s.handleDeleteBudget)
	mux.HandleFunc("POST /budgets/{id}/delete", s.handleDeleteBudget)

	clientIP := security.NewClientIPResolver()
	tracer := trace.NewMiddleware(s.logger, clientIP.ClientIP)

	var h http.Handler = mux
	h = trace.Metrics(s.metrics)(h)
	h = s.limiter.Middleware(clientIP.ClientIP, s.handleRateLimited)(h)
	h = tracer.Middleware(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and background routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.stopBackground()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests, please try again in a minute").Write(w)
}

// render executes a named template into w with the given status.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		InternalServerError("Templates not loaded").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			"template", name)
	}
}

var templateFuncs = template.FuncMap{
	"selected": func(a, b int64) bool { return a == b },
}
