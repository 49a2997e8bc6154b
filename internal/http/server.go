// Package http exposes the REST API: registration and login, owner-scoped
// transaction CRUD, and filtered summaries.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

const (
	summaryCacheSize = 256
	summaryCacheTTL  = 30 * time.Second
	cacheSweepEvery  = time.Minute
)

// TransactionAPI is the slice of the transaction service the handlers use.
type TransactionAPI interface {
	Create(ctx context.Context, ownerID int64, in services.CreateTransactionInput) (*core.Transaction, error)
	Get(ctx context.Context, ownerID, id int64) (*core.Transaction, error)
	Update(ctx context.Context, ownerID, id int64, fields map[string]json.RawMessage) (*core.Transaction, error)
	List(ctx context.Context, ownerID int64, page, limit int) (*services.TransactionPage, error)
}

// SummaryAPI computes filtered totals.
type SummaryAPI interface {
	Summarize(ctx context.Context, ownerID int64, q services.SummaryQuery) (*core.Summary, error)
}

// Accounts covers registration and credential checks.
type Accounts interface {
	Register(ctx context.Context, username, password string) (*core.User, error)
	Authenticate(ctx context.Context, username, password string) (*core.User, error)
}

type Config struct {
	Addr           string
	RequestTimeout time.Duration
	RateLimitRPM   int
}

type Server struct {
	httpSrv *http.Server
	logger  *log.Logger

	accounts Accounts
	jwt      *auth.JWTManager
	txns     TransactionAPI
	summary  SummaryAPI
	store    storage.Store

	requestTimeout time.Duration
	limiter        *ratelimit.Limiter
	summaryCache   *cache.LRU[*core.Summary]
	cacheManager   *cache.Manager
}

func NewServer(cfg Config, accounts Accounts, jwt *auth.JWTManager, txns TransactionAPI, summary SummaryAPI, store storage.Store, logger *log.Logger) *Server {
	s := &Server{
		logger:         logger.WithComponent(log.ComponentHTTP),
		accounts:       accounts,
		jwt:            jwt,
		txns:           txns,
		summary:        summary,
		store:          store,
		requestTimeout: cfg.RequestTimeout,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitRPM,
		}),
		summaryCache: cache.NewLRU[*core.Summary](summaryCacheSize, summaryCacheTTL),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(cacheSweepEvery)

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /login/{id}", s.handleLoginByID)

	mux.HandleFunc("POST /categories", s.requireAuth(s.handleCreateCategory))

	mux.HandleFunc("POST /transactions", s.requireAuth(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions", s.requireAuth(s.handleListTransactions))
	mux.HandleFunc("GET /transactions/{id}", s.requireAuth(s.handleGetTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.requireAuth(s.handleUpdateTransaction))

	mux.HandleFunc("GET /summary", s.requireAuth(s.handleSummary))

	rateLimited := s.limiter.Middleware(clientIP, s.handleRateLimited)
	secured := security.Headers(security.DefaultHeadersConfig())

	return s.withLogging(secured(rateLimited(s.withTimeout(mux))))
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports ready only when the database answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.GetUserByID(r.Context(), 1); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.cacheManager.Stop()
	return s.httpSrv.Shutdown(ctx)
}

// summaryCacheKey namespaces by owner so a write can invalidate exactly
// that owner's entries with one prefix delete.
func summaryCacheKey(ownerID int64, q services.SummaryQuery) string {
	return fmt.Sprintf("%d|%s|%s|%s", ownerID, q.From, q.To, q.CategoryName)
}

func (s *Server) invalidateSummaries(ownerID int64) {
	s.summaryCache.DeletePrefix(fmt.Sprintf("%d|", ownerID))
}
