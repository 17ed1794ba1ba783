// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budgetbook/internal/cache"
	"budgetbook/internal/core"
	"budgetbook/internal/log"
	"budgetbook/internal/middleware/ratelimit"
	"budgetbook/internal/middleware/security"
	"budgetbook/internal/middleware/trace"
	"budgetbook/internal/services"
)

const (
	cacheTTL       = 5 * time.Minute
	cacheSweep     = 10 * time.Minute
	defaultLimit   = 20
	maxListLimit   = 500
	shutdownWindow = 10 * time.Second
)

type Server struct {
	http.Server
	ledger      *services.LedgerService
	rateLimiter *ratelimit.Limiter

	// Report responses are cached briefly; any write clears them all.
	summaryCache  *cache.LRUCache[core.Summary]
	spendingCache *cache.LRUCache[[]core.CategorySpend]
	trendCache    *cache.LRUCache[[]core.MonthlyFlow]
	budgetCache   *cache.LRUCache[[]core.BudgetLine]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		ledger:        ledger,
		rateLimiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		summaryCache:  cache.NewLRUCache[core.Summary](10, cacheTTL),
		spendingCache: cache.NewLRUCache[[]core.CategorySpend](10, cacheTTL),
		trendCache:    cache.NewLRUCache[[]core.MonthlyFlow](10, cacheTTL),
		budgetCache:   cache.NewLRUCache[[]core.BudgetLine](100, cacheTTL),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.spendingCache)
	s.cacheManager.Register(s.trendCache)
	s.cacheManager.Register(s.budgetCache)
	s.cacheManager.StartCleanup(cacheSweep)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/search", s.handleSearchTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/reports/spending", s.handleSpendingByCategory)
	mux.HandleFunc("GET /api/reports/trend", s.handleMonthlyTrend)

	mux.HandleFunc("GET /api/budgets", s.handleBudgetsForMonth)
	mux.HandleFunc("PUT /api/budgets", s.handleSetBudget)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /api/goals/{id}", s.handleGetGoal)
	mux.HandleFunc("POST /api/goals/{id}/contributions", s.handleContribute)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(clientIP)

	logCfg := log.DefaultConfig()
	logCfg.Component = log.ComponentHTTP

	var handler http.Handler = mux
	handler = s.writeRateLimit(handler)
	handler = headers.Middleware(handler)
	handler = log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = log.Middleware(log.New(logCfg))(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// writeRateLimit applies the per-client limit to mutating requests only.
func (s *Server) writeRateLimit(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(clientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// invalidateReports clears all cached derived data after a write.
func (s *Server) invalidateReports() {
	s.summaryCache.Clear()
	s.spendingCache.Clear()
	s.trendCache.Clear()
	s.budgetCache.Clear()
}

// Shutdown stops background routines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
