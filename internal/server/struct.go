package server

import (
	"context"
	"time"

	"github.com/woozymasta/steamdex/internal/catalog"
	"github.com/woozymasta/steamdex/internal/models"
	"github.com/woozymasta/steamdex/internal/plugin"
)

// Catalog is what the HTTP adapter needs from the catalog cache.
type Catalog interface {
	plugin.Catalog
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
}

// Server holds the dependencies and configuration required to serve the
// catalog over HTTP.
type Server struct {
	// catalog serves snapshots, searches and forced refreshes.
	catalog Catalog

	// plugin renders query results and launches games.
	plugin *plugin.Plugin

	// limiter throttles API calls per client IP.
	limiter *ipLimiter

	// authToken guards endpoints with side effects (launch, refresh).
	authToken string

	// trustProxy indicates whether the server should trust headers like X-Forwarded-For
	// or CF-Connecting-IP when determining the client's real IP address.
	trustProxy bool
}

// gamesResponse is the body of GET /api/games.
type gamesResponse struct {
	RefreshedAt time.Time     `json:"refreshed_at"`
	Count       int           `json:"count"`
	Games       []models.Game `json:"games"`
}

// launchResponse is the body of POST /api/launch.
type launchResponse struct {
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
