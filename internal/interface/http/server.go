// Package http implements the REST API of the roster service.
// It serves the plain-text greeting and census routes, the JSON API
// under /api/v1 and the health probes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Roupies/holbertonschool-web-back-end/config"
	"github.com/Roupies/holbertonschool-web-back-end/internal/application/command"
	"github.com/Roupies/holbertonschool-web-back-end/internal/application/query"
	"github.com/Roupies/holbertonschool-web-back-end/internal/interface/http/handlers"
	"github.com/Roupies/holbertonschool-web-back-end/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Addr - address to listen on (default: ":1245").
	Addr string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// MaxHeaderBytes - maximum size of request headers.
	MaxHeaderBytes int

	// MaxBodyBytes - maximum size of request bodies.
	MaxBodyBytes int64

	// AllowedOrigins - allowed origins for CORS. Empty disables CORS.
	AllowedOrigins []string

	// RateLimitPerMinute - requests per minute per IP (0 = disabled).
	RateLimitPerMinute int

	// APIKeyHeader - header name for API key authentication.
	APIKeyHeader string

	// APIKeyHashes - bcrypt hashes of the keys accepted on write routes.
	APIKeyHashes []string

	// Version is reported by the health endpoints.
	Version string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:               ":1245",
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       15 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxHeaderBytes:     1 << 20, // 1 MB
		MaxBodyBytes:       1 << 20,
		AllowedOrigins:     []string{"*"},
		RateLimitPerMinute: 120,
		APIKeyHeader:       "X-API-Key",
	}
}

// ConfigFrom builds the server configuration from application config.
func ConfigFrom(cfg *config.Config) Config {
	c := DefaultConfig()
	c.Addr = cfg.HTTP.Addr
	c.ReadTimeout = cfg.HTTP.ReadTimeout
	c.WriteTimeout = cfg.HTTP.WriteTimeout
	c.IdleTimeout = cfg.HTTP.IdleTimeout
	c.AllowedOrigins = cfg.HTTP.AllowedOrigins
	c.RateLimitPerMinute = cfg.HTTP.RateLimit
	c.APIKeyHashes = cfg.Auth.APIKeyHashes
	c.Version = cfg.App.Version
	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies contains all dependencies required by HTTP handlers.
// A nil handler makes its routes answer 501.
type Dependencies struct {
	// Query Handlers (CQRS Read Side)
	ListStudentIDs      *query.ListStudentIDsHandler
	GetGradedByLocation *query.GetGradedByLocationHandler
	PageStudents        *query.PageStudentsHandler
	CountStudents       *query.CountStudentsHandler

	// Command Handlers (CQRS Write Side)
	NormalizeTags *command.NormalizeTagsHandler
	RosterWrites  *command.RosterWriteHandler

	// Features gates optional routes. Nil enables everything.
	Features *config.FeatureFlags

	// Logger
	Logger *logger.Logger

	// Health Check Dependencies
	HealthChecker handlers.HealthChecker
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	logger     *logger.Logger
	auth       *handlers.APIKeyAuth

	// Middleware state
	rateLimiter *rateLimiter

	// Server state
	mu        sync.RWMutex
	running   bool
	startedAt time.Time
	closeOnce sync.Once
}

// NewServer creates a new HTTP server with the given configuration and
// dependencies. Close or Shutdown must be called to release it.
func NewServer(cfg Config, deps Dependencies) *Server {
	s := &Server{
		config: cfg,
		deps:   deps,
		router: http.NewServeMux(),
		logger: deps.Logger,
		auth:   handlers.NewAPIKeyAuth(cfg.APIKeyHeader, cfg.APIKeyHashes),
	}

	if s.logger == nil {
		s.logger = logger.Nop()
	}
	s.logger = s.logger.With(logger.Component("http"))

	if s.deps.HealthChecker == nil {
		s.deps.HealthChecker = handlers.NewNoopHealthChecker()
	}

	if cfg.RateLimitPerMinute > 0 {
		s.rateLimiter = newRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	}

	s.setupRoutes()
	s.handler = s.buildMiddlewareChain(s.router)

	s.httpServer = &http.Server{
		Addr:           cfg.Addr,
		Handler:        s.handler,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Health & Status Endpoints
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /healthz", s.handleHealth) // Kubernetes alias
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /live", s.handleLive)

	// ─────────────────────────────────────────────────────────────────────────
	// Plain-text site
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /{$}", s.handleRoot)
	s.router.Handle("GET /students", s.feature(config.FeatureCensusRoute, s.handleStudentsText))

	// ─────────────────────────────────────────────────────────────────────────
	// API v1 - Public Endpoints
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /api/v1/students/ids", s.handleListIDs)
	s.router.HandleFunc("GET /api/v1/students", s.handleGradedByLocation)
	s.router.Handle("GET /api/v1/students/census", s.feature(config.FeatureCensusRoute, s.handleCensus))
	s.router.Handle("GET /api/v1/students/page", s.feature(config.FeaturePagination, s.handlePage))
	s.router.Handle("GET /api/v1/students/hyper", s.feature(config.FeaturePagination, s.handleHyper))
	s.router.Handle("GET /api/v1/students/hyper-index", s.feature(config.FeaturePagination, s.handleHyperIndex))
	s.router.HandleFunc("POST /api/v1/roster/grade", s.handleGradeRoster)
	s.router.HandleFunc("POST /api/v1/tags/normalize", s.handleNormalizeTags)

	// ─────────────────────────────────────────────────────────────────────────
	// API v1 - Authenticated Endpoints
	// ─────────────────────────────────────────────────────────────────────────
	s.router.Handle("POST /api/v1/tags/{name}/normalize",
		s.feature(config.FeatureTagWrites, s.authenticated(s.handleNormalizeStoredTags)))
	s.router.Handle("POST /api/v1/students", s.authenticated(s.handleImportRoster))
	s.router.Handle("POST /api/v1/grades", s.authenticated(s.handleRecordGrade))
}

// feature answers 404 unless the named feature is enabled for the caller.
func (s *Server) feature(name string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.deps.Features.IsEnabled(name, getClientIP(r)) {
			writeJSONError(w, http.StatusNotFound, "feature_disabled", "This endpoint is not enabled")
			return
		}
		next(w, r)
	})
}

func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return s.auth.Middleware(next).ServeHTTP
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE CHAIN
// ══════════════════════════════════════════════════════════════════════════════

// buildMiddlewareChain wraps the router with all middleware. The first
// entry is the outermost.
func (s *Server) buildMiddlewareChain(router http.Handler) http.Handler {
	chain := []handlers.MiddlewareFunc{
		s.requestIDMiddleware,
		s.recoveryMiddleware,
		s.loggingMiddleware,
	}

	if len(s.config.AllowedOrigins) > 0 {
		chain = append(chain, s.corsMiddleware)
	}

	if s.rateLimiter != nil {
		chain = append(chain, s.rateLimitMiddleware)
	}

	chain = append(chain, handlers.SecurityHeadersMiddleware)
	if s.config.MaxBodyBytes > 0 {
		chain = append(chain, handlers.RequestSizeLimitMiddleware(s.config.MaxBodyBytes))
	}

	return handlers.ChainHandler(router, chain...)
}

// requestIDMiddleware adds a unique request ID to each request.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
		ctx = logger.WithContext(ctx, s.logger.WithRequestID(requestID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs all HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		logger.FromContext(r.Context()).Info("http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", rw.statusCode),
			logger.Latency(time.Since(start)),
			logger.String("ip", getClientIP(r)),
			logger.String("user_agent", r.UserAgent()),
		)
	})
}

// recoveryMiddleware recovers from panics and returns 500.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.FromContext(r.Context()).Error("panic recovered",
					logger.Any("error", err),
					logger.String("stack", string(debug.Stack())),
					logger.String("path", r.URL.Path),
				)
				writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS headers.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowed := false
		for _, o := range s.config.AllowedOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.Header().Add("Vary", "Origin")
		}

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware implements per-IP rate limiting.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.Allow(getClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeJSONError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves requests on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		_ = ln.Close()
		return errors.New("server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", logger.String("address", ln.Addr().String()))

	err := s.httpServer.Serve(ln)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server and releases its background
// resources.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.Close()

	// Shutting down before Serve makes a later Serve return immediately.
	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	if wasRunning {
		s.logger.Info("shutting down HTTP server")
	}
	return s.httpServer.Shutdown(ctx)
}

// Close stops the background goroutines of the server. It does not stop a
// running listener; use Shutdown for that.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
	})
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Uptime returns the server uptime.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.config.Addr
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// JSONResponse represents a standard JSON response.
type JSONResponse struct {
	Success   bool          `json:"success"`
	Data      any           `json:"data,omitempty"`
	Error     *APIError     `json:"error,omitempty"`
	Meta      *ResponseMeta `json:"meta,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ResponseMeta contains response metadata.
type ResponseMeta struct {
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version,omitempty"`
	TotalCount int       `json:"total_count,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSONWithMeta(w, r, status, data, nil)
}

// writeJSONWithMeta writes a JSON response with custom metadata.
func writeJSONWithMeta(w http.ResponseWriter, r *http.Request, status int, data any, meta *ResponseMeta) {
	if meta == nil {
		meta = &ResponseMeta{}
	}
	meta.Timestamp = time.Now().UTC()
	meta.Version = "v1"

	response := JSONResponse{
		Success:   status >= 200 && status < 300,
		Data:      data,
		Meta:      meta,
		RequestID: getRequestID(r.Context()),
	}

	// Encode before the status line goes out so a failure can still become a 500.
	body, err := json.Marshal(response)
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// writeJSONError writes an error JSON response.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSONErrorWithDetails(w, status, code, message, "")
}

// writeJSONErrorWithDetails writes an error JSON response with details.
func writeJSONErrorWithDetails(w http.ResponseWriter, status int, code, message, details string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	response := JSONResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta: &ResponseMeta{
			Timestamp: time.Now().UTC(),
		},
	}

	_ = json.NewEncoder(w).Encode(response)
}

// writeText writes a text/plain response.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER TYPES AND FUNCTIONS
// ══════════════════════════════════════════════════════════════════════════════

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// getRequestID extracts the request ID from context.
func getRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// getQueryParamInt extracts an integer query parameter. A missing parameter
// yields defaultValue; a malformed one is an error.
func getQueryParamInt(r *http.Request, key string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITER
// ══════════════════════════════════════════════════════════════════════════════

type rateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration

	stop chan struct{}
	done chan struct{}
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

func (rl *rateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	valid := rl.prune(rl.requests[key], now.Add(-rl.window))

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

// Stop ends the cleanup goroutine and waits for it to exit.
func (rl *rateLimiter) Stop() {
	close(rl.stop)
	<-rl.done
}

func (rl *rateLimiter) prune(requests []time.Time, windowStart time.Time) []time.Time {
	var valid []time.Time
	for _, t := range requests {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	return valid
}

func (rl *rateLimiter) cleanup() {
	defer close(rl.done)

	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			windowStart := now.Add(-rl.window)
			for key, requests := range rl.requests {
				if valid := rl.prune(requests, windowStart); len(valid) == 0 {
					delete(rl.requests, key)
				} else {
					rl.requests[key] = valid
				}
			}
			rl.mu.Unlock()
		}
	}
}
