// Package web provides the JSON HTTP API that exposes the ERP and quote
// connectors to the CRM platform.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/sheetlink/internal/audit"
	"github.com/JonMunkholm/sheetlink/internal/auth"
	"github.com/JonMunkholm/sheetlink/internal/config"
	"github.com/JonMunkholm/sheetlink/internal/erp"
	mw "github.com/JonMunkholm/sheetlink/internal/web/middleware"
)

// maxBodySize caps request bodies.
const maxBodySize = 10 * 1024 * 1024

// Options carries the optional collaborators of a Server.
type Options struct {
	// Audit receives one entry per operation. Nil disables auditing.
	Audit audit.Sink
	// Exchanger serves POST /api/auth/token. Nil answers 501.
	Exchanger *auth.Exchanger
	// Limiter bounds concurrent workbook operations. Nil builds one from
	// the server config.
	Limiter *WorkbookLimiter
}

// Server is the HTTP server of the connector.
type Server struct {
	cfg       *config.Config
	erp       *erp.Connector
	audit     audit.Sink
	exchanger *auth.Exchanger
	limiter   *WorkbookLimiter
	rate      *rateLimiter
	now       func() time.Time

	router *chi.Mux
	server *http.Server
}

// NewServer creates a Server serving connector.
func NewServer(cfg *config.Config, connector *erp.Connector, opts Options) *Server {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewWorkbookLimiter(cfg.Server.MaxConcurrent, cfg.Server.MaxWaitTime)
	}

	s := &Server{
		cfg:       cfg,
		erp:       connector,
		audit:     opts.Audit,
		exchanger: opts.Exchanger,
		limiter:   limiter,
		now:       time.Now,
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(auditClient)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.rate = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(s.rate.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		r.Post("/auth/token", s.handleTokenExchange)
		r.Get("/audit", s.handleAuditRecent)
		r.Get("/audit/export", s.handleAuditExport)

		r.Route("/erp", func(r chi.Router) {
			r.Get("/config-fields", s.handleConfigFields)
			r.Post("/config/test", s.handleTestConfig)
			r.Get("/connections", s.handleListConnections)

			r.Route("/connections/{id}", func(r chi.Router) {
				r.Use(s.limiter.middleware)

				r.Put("/", s.handleSaveConnection)
				r.Delete("/", s.handleDeleteConnection)
				r.Post("/test", s.handleTestConnection)
				r.Get("/actor-types", s.handleActorTypes)
				r.Get("/actor-types/{type}/fields", s.handleActorTypeFields)
				r.Get("/searchable-fields/{type}", s.handleSearchableFields)

				r.Post("/actors", s.handleCreateActor)
				r.Put("/actors", s.handleSaveActors)
				r.Post("/actors/{type}/get", s.handleGetActors)
				r.Post("/actors/{type}/search", s.handleSearchActors)
				r.Post("/actors/{type}/search-advanced", s.handleSearchActorsAdvanced)
				r.Post("/actors/{type}/search-by-parent", s.handleSearchActorsByParent)
				r.Post("/actors/{type}/since", s.handleGetActorsByTimestamp)

				r.Get("/lists/{list}", s.handleGetList)
				r.Post("/lists/{list}/items", s.handleGetListItems)
			})
		})

		r.With(s.limiter.middleware).Post("/quote/{operation}", s.handleQuote)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight workbook
// operations to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rate != nil {
		s.rate.stop()
	}
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.limiter.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// handleHealth reports liveness and the workbook limiter state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{
		"status":  "ok",
		"limiter": s.limiter.Status(),
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries once per window.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1,
			lastReset: time.Now(),
		}
		return true
	}

	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
// RemoteAddr has already been rewritten by TrustedRealIP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the host part of RemoteAddr.
// auditClient records the caller's address and User-Agent for audit entries.
func auditClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := audit.WithClient(r.Context(), clientIP(r), r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// writeJSON encodes v as JSON and writes it with status 200.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "path", r.URL.Path, "error", err)
	}
}
