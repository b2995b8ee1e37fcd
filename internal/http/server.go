package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/auth"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	appweb "fintrack/web"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services behind the HTTP surface.
type Deps struct {
	Credentials *services.CredentialService
	Sessions    *services.SessionService
	Ledger      *services.LedgerService
	Reports     *services.ReportService
	Categories  *services.CategoryCatalog
	Tokens      *auth.TokenIssuer
	Health      Pinger
}

// Options tune the server.
type Options struct {
	Logger             *applog.Logger
	SecureCookies      bool
	RateLimitPerMinute int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	templates map[string]*template.Template
	logger    *applog.Logger
	events    *applog.EventLogger

	credentials *services.CredentialService
	sessions    *services.SessionService
	ledger      *services.LedgerService
	reports     *services.ReportService
	categories  *services.CategoryCatalog
	tokens      *auth.TokenIssuer
	health      Pinger

	secureCookies bool
	now           func() time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime            time.Time
	totalTransactions int64
	failedLogins      int64
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, deps Deps, opts Options) (*Server, error) {
	if deps.Credentials == nil || deps.Sessions == nil || deps.Ledger == nil ||
		deps.Reports == nil || deps.Categories == nil || deps.Tokens == nil {
		return nil, errors.New("http server: missing service dependency")
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("http server: %w", err)
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, fmt.Errorf("http server: %w", err)
		}
	}
	httpLogger := logger.WithComponent(applog.ComponentHTTP)
	s := &Server{
		templates:        templates,
		logger:           httpLogger,
		events:           applog.NewEventLogger(httpLogger),
		credentials:      deps.Credentials,
		sessions:         deps.Sessions,
		ledger:           deps.Ledger,
		reports:          deps.Reports,
		categories:       deps.Categories,
		tokens:           deps.Tokens,
		health:           deps.Health,
		secureCookies:    opts.SecureCookies,
		now:              time.Now,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.detectSuspicious(handler)
	handler = s.rateLimiter.Middleware(detector.ExtractClientIP, s.onRateLimit)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	// Guest pages
	mux.HandleFunc("GET /auth/register", s.guestOnly(s.handleRegisterPage))
	mux.HandleFunc("POST /auth/register", s.guestOnly(s.handleRegister))
	mux.HandleFunc("GET /auth/login", s.guestOnly(s.handleLoginPage))
	mux.HandleFunc("POST /auth/login", s.guestOnly(s.handleLogin))

	// Session pages
	mux.HandleFunc("GET /auth/logout", s.requireSession(s.handleLogout))
	mux.HandleFunc("GET /auth/password", s.requireSession(s.handlePasswordPage))
	mux.HandleFunc("POST /auth/password", s.requireSession(s.handleChangePassword))
	mux.HandleFunc("GET /{$}", s.requireSession(s.handleIndex))
	mux.HandleFunc("GET /expenses/add", s.requireSession(s.handleAddPage))
	mux.HandleFunc("POST /expenses/add", s.requireSession(s.handleAdd))
	mux.HandleFunc("GET /expenses/month", s.requireSession(s.handleMonth))
	mux.HandleFunc("GET /expenses/report", s.requireSession(s.handleReport))
	mux.HandleFunc("GET /expenses/export", s.requireSession(s.handleExport))
	mux.HandleFunc("GET /expenses/{id}", s.requireSession(s.handleDetail))
	mux.HandleFunc("GET /expenses/{id}/edit", s.requireSession(s.handleEditPage))
	mux.HandleFunc("POST /expenses/{id}/edit", s.requireSession(s.handleEdit))
	mux.HandleFunc("POST /expenses/{id}/delete", s.requireSession(s.handleDelete))

	// JSON API
	mux.HandleFunc("POST /api/v1/auth/token", s.handleAPIToken)
	mux.HandleFunc("GET /api/v1/categories", s.requireToken(s.handleAPICategories))
	mux.HandleFunc("GET /api/v1/transactions", s.requireToken(s.handleAPIListTransactions))
	mux.HandleFunc("POST /api/v1/transactions", s.requireToken(s.handleAPICreateTransaction))
	mux.HandleFunc("GET /api/v1/transactions/{id}", s.requireToken(s.handleAPIGetTransaction))
	mux.HandleFunc("PUT /api/v1/transactions/{id}", s.requireToken(s.handleAPIUpdateTransaction))
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", s.requireToken(s.handleAPIDeleteTransaction))
	mux.HandleFunc("GET /api/v1/reports/monthly", s.requireToken(s.handleAPIMonthlyReport))
	mux.HandleFunc("GET /api/v1/reports/lifetime", s.requireToken(s.handleAPILifetimeReport))

	mux.HandleFunc("/", s.notFound)
}

// detectSuspicious logs scanner-like requests. They are still served.
func (s *Server) detectSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.securityDetector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request",
				applog.FieldComponent, applog.ComponentSecurity,
				applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldComponent, applog.ComponentRateLimit,
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
