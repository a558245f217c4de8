package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/steamdex/internal/models"
	"github.com/woozymasta/steamdex/internal/search"
	"github.com/woozymasta/steamdex/internal/vars"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleGames returns the whole current snapshot.
func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Snapshot(r.Context())

	games := snap.Games
	if games == nil {
		games = []models.Game{}
	}

	writeJSON(w, http.StatusOK, gamesResponse{
		RefreshedAt: snap.RefreshedAt,
		Count:       snap.Len(),
		Games:       games,
	})
}

// handleSearch returns scored matches.
// Query params: ?q=half
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	matches := s.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if matches == nil {
		matches = []search.Match{}
	}

	writeJSON(w, http.StatusOK, matches)
}

// handleQuery returns plugin display rows, the same as the query command.
// Query params: ?q=half
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.plugin.Query(r.Context(), r.URL.Query().Get("q")))
}

// handleLaunch starts a game.
// Query params: ?id=440
func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id", http.StatusBadRequest)
		return
	}

	if _, found := s.catalog.Lookup(r.Context(), id); !found {
		writeJSON(w, http.StatusNotFound, launchResponse{ID: id, Message: "Game with ID " + id + " not found"})
		return
	}

	ok, msg := s.plugin.Launch(r.Context(), id)
	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, launchResponse{ID: id, OK: ok, Message: msg})
}

// handleRefresh forces a rescan.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.catalog.Refresh(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Forced refresh failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"refreshed_at": snap.RefreshedAt,
		"count":        snap.Len(),
	})
}

// handleVersion returns build information.
func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, vars.Info())
}
