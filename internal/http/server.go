package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"conto/internal/cache"
	"conto/internal/metrics"
	"conto/internal/middleware/ratelimit"
	"conto/internal/middleware/security"
	"conto/internal/middleware/trace"
	"conto/internal/services"
)

const listCacheKey = "splits:default"

type Server struct {
	http.Server

	service     *services.SplitService
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware
	headers     *security.HeadersMiddleware

	// Read caches, invalidated on every write to the split they cover.
	splitCache *cache.LRUCache[SplitView]
	listCache  *cache.LRUCache[[]SplitView]
	cacheMgr   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, service *services.SplitService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		service:     service,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:      trace.NewMiddleware(extractClientIP),
		headers:     security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		splitCache:  cache.NewLRUCache[SplitView](200, 5*time.Minute),
		listCache:   cache.NewLRUCache[[]SplitView](10, time.Minute),
		cacheMgr:    cache.NewManager(),
	}

	s.cacheMgr.Register(s.splitCache)
	s.cacheMgr.Register(s.listCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/v1/calculate", s.withAPIHeaders(s.handleCalculate))
	mux.HandleFunc("POST /api/v1/splits", s.withAPIHeaders(s.handleCreateSplit))
	mux.HandleFunc("GET /api/v1/splits", s.withAPIHeaders(s.handleListSplits))
	mux.HandleFunc("GET /api/v1/splits/{id}", s.withAPIHeaders(s.handleGetSplit))
	mux.HandleFunc("POST /api/v1/splits/{id}/deposits", s.withAPIHeaders(s.handleDeposit))
	mux.HandleFunc("POST /api/v1/splits/{id}/release", s.withAPIHeaders(s.handleRelease))
	mux.HandleFunc("POST /api/v1/splits/{id}/cancel", s.withAPIHeaders(s.handleCancel))

	s.Server = http.Server{
		Addr:         addr,
		Handler:      s.tracer.Middleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// withAPIHeaders adds security headers and rate limiting to API handlers.
// Rate limiting applies to writes only.
func (s *Server) withAPIHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !s.rateLimiter.Allow(extractClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
			return
		}

		s.headers.Apply(w)
		next(w, r)
	}
}

// invalidateSplit drops the cached views touched by a write to one split.
func (s *Server) invalidateSplit(id string) {
	s.splitCache.Delete(id)
	s.listCache.Delete(listCacheKey)
}

// extractClientIP resolves the client address, preferring proxy headers.
func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
