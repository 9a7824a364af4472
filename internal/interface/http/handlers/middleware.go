package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// APIKeyAuth authenticates requests against bcrypt hashes of API keys.
// Plain keys are never stored.
type APIKeyAuth struct {
	headerName string

	mu     sync.RWMutex
	hashes [][]byte
}

// NewAPIKeyAuth creates an authenticator that accepts any key matching one
// of hashes. Empty hashes are ignored.
func NewAPIKeyAuth(headerName string, hashes []string) *APIKeyAuth {
	a := &APIKeyAuth{headerName: headerName}
	for _, h := range hashes {
		if h = strings.TrimSpace(h); h != "" {
			a.hashes = append(a.hashes, []byte(h))
		}
	}
	return a
}

// HashKey returns the bcrypt hash to configure for key.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AddHash adds an accepted key hash.
func (a *APIKeyAuth) AddHash(hash string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hashes = append(a.hashes, []byte(hash))
}

// IsValid checks if an API key matches any configured hash.
func (a *APIKeyAuth) IsValid(key string) bool {
	if key == "" {
		return false
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, h := range a.hashes {
		if bcrypt.CompareHashAndPassword(h, []byte(key)) == nil {
			return true
		}
	}
	return false
}

var (
	errMissingAPIKey = errors.New("api key is required")
	errInvalidAPIKey = errors.New("invalid api key")
)

// Authenticate checks the key carried by r, either in the configured header
// or as a Bearer token. Failures match shared.ErrUnauthorized.
func (a *APIKeyAuth) Authenticate(r *http.Request) error {
	key := r.Header.Get(a.headerName)
	if key == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			key = strings.TrimPrefix(auth, "Bearer ")
		}
	}

	switch {
	case key == "":
		return shared.WrapError("http", "Authenticate", shared.ErrUnauthorized, "no key", errMissingAPIKey)
	case !a.IsValid(key):
		return shared.WrapError("http", "Authenticate", shared.ErrUnauthorized, "key rejected", errInvalidAPIKey)
	}
	return nil
}

// Middleware returns an HTTP middleware that checks for valid API keys.
func (a *APIKeyAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := a.Authenticate(r)
		switch {
		case err == nil:
			next.ServeHTTP(w, r)
		case errors.Is(err, errMissingAPIKey):
			writeError(w, http.StatusUnauthorized, `{"error":"missing_api_key","message":"API key is required"}`)
		default:
			writeError(w, http.StatusUnauthorized, `{"error":"invalid_api_key","message":"Invalid API key"}`)
		}
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SECURITY HEADERS MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// SecurityHeadersMiddleware adds security-related headers.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST SIZE LIMIT MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// RequestSizeLimitMiddleware limits the size of request bodies.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeError(w, http.StatusRequestEntityTooLarge,
					`{"error":"payload_too_large","message":"Request body too large"}`)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE CHAIN BUILDER
// ══════════════════════════════════════════════════════════════════════════════

// MiddlewareFunc is a function that wraps an http.Handler.
type MiddlewareFunc func(http.Handler) http.Handler

// Chain chains multiple middleware functions. The first one is outermost.
func Chain(middlewares ...MiddlewareFunc) MiddlewareFunc {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// ChainHandler chains middleware and wraps a final handler.
func ChainHandler(handler http.Handler, middlewares ...MiddlewareFunc) http.Handler {
	return Chain(middlewares...)(handler)
}

func writeError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
