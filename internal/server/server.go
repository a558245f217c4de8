// Package server exposes the catalog, search and launch operations over HTTP.
package server

import (
	"net/http"

	"github.com/woozymasta/steamdex/internal/config"
	"github.com/woozymasta/steamdex/internal/plugin"
)

// New creates a Server over cat. The caller must Close it to stop the
// limiter housekeeping.
func New(cat Catalog, p *plugin.Plugin, cfg *config.Config) *Server {
	return &Server{
		catalog:    cat,
		plugin:     p,
		authToken:  cfg.Server.AuthToken,
		trustProxy: cfg.Server.TrustProxy,
		limiter:    newIPLimiter(cfg.RateLimit.Count, cfg.RateLimit.Window),
	}
}

// Close stops background housekeeping.
func (s *Server) Close() {
	s.limiter.stop()
}

// Handler configures the HTTP routes and returns the main handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /api/games", s.RateLimitMiddleware(http.HandlerFunc(s.handleGames)))
	mux.Handle("GET /api/search", s.RateLimitMiddleware(http.HandlerFunc(s.handleSearch)))
	mux.Handle("GET /api/query", s.RateLimitMiddleware(http.HandlerFunc(s.handleQuery)))
	mux.Handle("GET /api/version", http.HandlerFunc(s.handleVersion))

	mux.Handle("POST /api/launch", s.RateLimitMiddleware(AuthMiddleware(s.authToken, http.HandlerFunc(s.handleLaunch))))
	mux.Handle("POST /api/refresh", s.RateLimitMiddleware(AuthMiddleware(s.authToken, http.HandlerFunc(s.handleRefresh))))

	return s.LoggingMiddleware(mux)
}
