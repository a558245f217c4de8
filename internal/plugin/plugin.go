// Package plugin implements the launcher plugin protocol: display results for
// a query and launch messages for a selected entry.
package plugin

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/steamdex/internal/catalog"
	"github.com/woozymasta/steamdex/internal/launcher"
	"github.com/woozymasta/steamdex/internal/models"
	"github.com/woozymasta/steamdex/internal/search"
)

// DefaultIcon is shown for headers and for games without a usable icon.
const DefaultIcon = "icon.png"

// MethodLaunch is the JSON-RPC method bound to every game entry.
const MethodLaunch = "launch_game"

const (
	recentLimit = 5
	searchLimit = 10
)

// Action is invoked by the host when the user picks an entry.
type Action struct {
	Method     string `json:"method"`
	Parameters []any  `json:"parameters"`
}

// Result is one display row.
type Result struct {
	Title         string  `json:"Title"`
	SubTitle      string  `json:"SubTitle"`
	IcoPath       string  `json:"IcoPath"`
	JsonRPCAction *Action `json:"JsonRPCAction,omitempty"`
}

// Catalog is the subset of the catalog used by the plugin.
type Catalog interface {
	Snapshot(ctx context.Context) *catalog.Snapshot
	Search(ctx context.Context, query string) []search.Match
	Lookup(ctx context.Context, id string) (models.Game, bool)
}

// Plugin answers queries and launches games.
type Plugin struct {
	Catalog  Catalog
	Launcher launcher.Launcher

	// Now defaults to time.Now.
	Now func() time.Time
}

// Query returns the header entry followed by games. A blank query lists the
// most recently played games; otherwise up to ten ranked matches.
func (p *Plugin) Query(ctx context.Context, query string) (results []Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("query", query).Msg("Query failed")
			results = []Result{{
				Title:    "Error",
				SubTitle: fmt.Sprint(r),
				IcoPath:  DefaultIcon,
			}}
		}
	}()

	query = strings.TrimSpace(query)
	if query == "" {
		return p.browse(ctx)
	}

	return p.search(ctx, query)
}

func (p *Plugin) browse(ctx context.Context) []Result {
	snap := p.Catalog.Snapshot(ctx)

	results := []Result{{
		Title:    "Steam Game Launcher",
		SubTitle: fmt.Sprintf("Found %d games. Type to search...", snap.Len()),
		IcoPath:  DefaultIcon,
	}}

	now := p.now()
	for _, g := range snap.Recent(recentLimit) {
		parts := []string{g.Kind()}
		if g.LastPlayed > 0 {
			parts = append(parts, LastPlayed(g.LastPlayed, now))
		}
		results = append(results, gameResult(g, parts))
	}

	return results
}

func (p *Plugin) search(ctx context.Context, query string) []Result {
	found := p.Catalog.Search(ctx, query)
	if len(found) == 0 {
		return []Result{{
			Title:    "No games found",
			SubTitle: fmt.Sprintf("No games matching '%s'", query),
			IcoPath:  DefaultIcon,
		}}
	}

	results := []Result{{
		Title:    fmt.Sprintf("Search Results (%d games)", len(found)),
		SubTitle: fmt.Sprintf("Found %d game(s) matching '%s'", len(found), query),
		IcoPath:  DefaultIcon,
	}}

	now := p.now()
	for _, m := range found[:min(len(found), searchLimit)] {
		g := m.Game
		parts := []string{g.Kind()}
		if h := g.PlaytimeMinutes / 60; h > 0 {
			parts = append(parts, fmt.Sprintf("%dh played", h))
		}
		parts = append(parts, LastPlayed(g.LastPlayed, now))
		results = append(results, gameResult(g, parts))
	}

	return results
}

// Launch starts the game with id and returns a message for the user.
func (p *Plugin) Launch(ctx context.Context, id string) (ok bool, msg string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("id", id).Msg("Launch failed")
			ok, msg = false, fmt.Sprintf("Failed to launch %s", id)
		}
	}()

	g, found := p.Catalog.Lookup(ctx, id)
	if !found {
		return false, fmt.Sprintf("Game with ID %s not found", id)
	}

	if err := p.Launcher.Launch(g); err != nil {
		log.Error().Err(err).Str("id", id).Msg("Launch failed")
		return false, fmt.Sprintf("Failed to launch %s", g.Title)
	}

	return true, fmt.Sprintf("Launched %s", g.Title)
}

// LastPlayed renders a last played timestamp relative to now in whole days.
func LastPlayed(epoch int64, now time.Time) string {
	if epoch <= 0 {
		return "Never played"
	}

	days := int(now.Sub(time.Unix(epoch, 0)) / (24 * time.Hour))
	switch days {
	case 0:
		return "Played today"
	case 1:
		return "Played yesterday"
	default:
		return fmt.Sprintf("Played %d days ago", days)
	}
}

func gameResult(g models.Game, subtitle []string) Result {
	return Result{
		Title:    g.Title,
		SubTitle: strings.Join(subtitle, " | "),
		IcoPath:  iconOrDefault(g.IconPath),
		JsonRPCAction: &Action{
			Method:     MethodLaunch,
			Parameters: []any{g.ID},
		},
	}
}

func iconOrDefault(path string) string {
	if path == "" {
		return DefaultIcon
	}
	if _, err := os.Stat(path); err != nil {
		return DefaultIcon
	}
	return path
}

func (p *Plugin) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
