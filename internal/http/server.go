package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"spendtracker/internal/remote"
	"spendtracker/internal/services"
	"spendtracker/internal/store"
)

type Server struct {
	http.Server

	remote    remote.Store
	auth      remote.Auth
	publisher services.ChangePublisher

	remoteTimeout time.Duration
	rateLimiter   *rateLimiter

	// One ledger service per authenticated user, opened lazily on the
	// first request and kept for the life of the process. The map lock
	// only guards the entry lookup; the remote load runs under the
	// entry's own once, so one user's slow first load cannot stall
	// another user's.
	mu      sync.Mutex
	ledgers map[string]*ledgerEntry

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. publisher may be nil; changes then stay off the feed.
func NewServer(addr string, rs remote.Store, auth remote.Auth, publisher services.ChangePublisher, remoteTimeout time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		remote:        rs,
		auth:          auth,
		publisher:     publisher,
		remoteTimeout: remoteTimeout,
		rateLimiter:   newRateLimiter(),
		ledgers:       make(map[string]*ledgerEntry),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/signup", s.withAPI(s.handleSignUp))
	mux.HandleFunc("POST /api/auth/signin", s.withAPI(s.handleSignIn))
	mux.HandleFunc("POST /api/auth/signout", s.withAPI(s.handleSignOut))
	mux.HandleFunc("POST /api/auth/password-reset", s.withAPI(s.handlePasswordResetRequest))
	mux.HandleFunc("POST /api/auth/password-reset/confirm", s.withAPI(s.handlePasswordResetConfirm))

	mux.HandleFunc("GET /api/categories", s.withAPI(s.handleCategories))

	mux.HandleFunc("GET /api/overview", s.withAPI(s.authenticated(s.handleOverview)))
	mux.HandleFunc("GET /api/transactions", s.withAPI(s.authenticated(s.handleListTransactions)))
	mux.HandleFunc("POST /api/transactions", s.withAPI(s.authenticated(s.handleCreateTransaction)))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withAPI(s.authenticated(s.handleDeleteTransaction)))
	mux.HandleFunc("GET /api/presets", s.withAPI(s.authenticated(s.handleListPresets)))
	mux.HandleFunc("PUT /api/presets", s.withAPI(s.authenticated(s.handleReplacePresets)))
	mux.HandleFunc("POST /api/months/{month}/close", s.withAPI(s.authenticated(s.handleCloseMonth)))
	mux.HandleFunc("GET /api/settings/currency", s.withAPI(s.authenticated(s.handleGetCurrency)))
	mux.HandleFunc("PUT /api/settings/currency", s.withAPI(s.authenticated(s.handleSetCurrency)))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withAPI adds request ids, security headers, rate limiting on mutating
// methods, and request logging.
func (s *Server) withAPI(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

// authenticated resolves the bearer token into a per-user ledger before
// invoking the handler.
func (s *Server) authenticated(next func(w http.ResponseWriter, r *http.Request, ledger *services.LedgerService)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		session, err := s.auth.SessionFromToken(r.Context(), token)
		if err != nil {
			writeDomainError(r.Context(), w, err)
			return
		}

		ledger, err := s.ledgerFor(r.Context(), session.UserID)
		if err != nil {
			writeDomainError(r.Context(), w, err)
			return
		}

		next(w, r, ledger)
	}
}

// ledgerEntry holds one user's lazily opened ledger. once collapses
// concurrent first requests for the same user into a single remote
// load.
type ledgerEntry struct {
	once   sync.Once
	ledger *services.LedgerService
	err    error
}

// ledgerFor returns the user's ledger service, opening the cached store
// on first use.
func (s *Server) ledgerFor(ctx context.Context, userID string) (*services.LedgerService, error) {
	s.mu.Lock()
	e, ok := s.ledgers[userID]
	if !ok {
		e = &ledgerEntry{}
		s.ledgers[userID] = e
	}
	s.mu.Unlock()

	e.once.Do(func() {
		st, err := store.Open(ctx, s.remote, userID)
		if err != nil {
			e.err = fmt.Errorf("open store for user: %w", err)
			return
		}
		st.SetRemoteTimeout(s.remoteTimeout)
		e.ledger = services.NewLedgerService(st, s.publisher)
	})

	if e.err != nil {
		// Drop the failed entry so the user's next request retries the
		// load instead of being stuck on a cached error.
		s.mu.Lock()
		if s.ledgers[userID] == e {
			delete(s.ledgers, userID)
		}
		s.mu.Unlock()
		return nil, e.err
	}
	return e.ledger, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type contextKey string

const requestIDKey contextKey = "request_id"

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
