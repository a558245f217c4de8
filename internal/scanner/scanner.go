// Package scanner walks Steam library folders and turns manifests and
// shortcut blobs into game records.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/steamdex/internal/models"
	"github.com/woozymasta/steamdex/internal/shortcuts"
	"github.com/woozymasta/steamdex/internal/steam"
	"github.com/woozymasta/steamdex/internal/vdf"
	"golang.org/x/sync/errgroup"
)

const (
	manifestPrefix = "appmanifest_"
	manifestSuffix = ".acf"
	shortcutsFile  = "shortcuts.vdf"

	// NonSteamPrefix starts every synthesized shortcut identifier.
	NonSteamPrefix = "nonsteam_"

	defaultWorkers = 4
)

var (
	errMissingAppState = errors.New("manifest has no AppState block")
	errMissingAppID    = errors.New("manifest has no appid")
)

// IconResolver finds an icon for a record; an empty result means none.
type IconResolver interface {
	Resolve(id, libraryPath, installPath string) string
}

// Scanner builds game records from library folders.
type Scanner struct {
	// Icons is optional.
	Icons IconResolver

	// Shortcuts defaults to shortcuts.New().
	Shortcuts *shortcuts.Parser

	Workers int
}

// manifestJob is one manifest file waiting to be parsed.
type manifestJob struct {
	path    string
	library string
}

// Scan returns every game found under the given libraries. root is the
// installation directory whose userdata/*/config folders are searched for
// shortcut files; it may be empty.
//
// Native titles come first in library order, then shortcuts. IDs are unique:
// the first native record wins over later ones and over any shortcut.
func (s *Scanner) Scan(ctx context.Context, root string, libraries []string) []models.Game {
	var jobs []manifestJob
	for _, lib := range libraries {
		entries, err := os.ReadDir(lib)
		if err != nil {
			log.Warn().Err(err).Str("library", lib).Msg("Skipping unreadable library")
			continue
		}

		for _, e := range entries {
			name := e.Name()
			if !e.IsDir() && strings.HasPrefix(name, manifestPrefix) && strings.HasSuffix(name, manifestSuffix) {
				jobs = append(jobs, manifestJob{path: filepath.Join(lib, name), library: lib})
			}
		}
	}

	var natives []models.Game
	for _, g := range s.parseManifests(ctx, jobs) {
		if g != nil {
			natives = append(natives, *g)
		}
	}

	return Merge(natives, s.scanShortcuts(ctx, root, libraries))
}

// Merge concatenates native and shortcut records keeping identifiers unique.
// The first record seen for an ID wins, so natives shadow colliding shortcuts.
func Merge(natives, others []models.Game) []models.Game {
	games := make([]models.Game, 0, len(natives)+len(others))
	seen := make(map[string]struct{}, len(natives)+len(others))

	for _, list := range [][]models.Game{natives, others} {
		for _, g := range list {
			if _, dup := seen[g.ID]; dup {
				log.Debug().Str("id", g.ID).Str("title", g.Title).Bool("native", g.IsNative).Msg("Duplicate game ignored")
				continue
			}
			seen[g.ID] = struct{}{}
			games = append(games, g)
		}
	}

	return games
}

// parseManifests parses jobs on a bounded worker pool. The result keeps job
// order; failed manifests leave a nil slot.
func (s *Scanner) parseManifests(ctx context.Context, jobs []manifestJob) []*models.Game {
	out := make([]*models.Game, len(jobs))

	workers := s.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			game, err := s.readManifest(job)
			if err != nil {
				log.Warn().Err(err).Str("path", job.path).Msg("Skipping manifest")
				return nil
			}
			out[i] = game
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (s *Scanner) readManifest(job manifestJob) (*models.Game, error) {
	doc, err := vdf.ParseFile(job.path)
	if err != nil {
		return nil, err
	}

	app, ok := doc.Child("AppState")
	if !ok || app.IsLeaf() {
		return nil, errMissingAppState
	}

	game := gameFromAppState(app, job.library)
	if game.ID == "" {
		return nil, errMissingAppID
	}

	if s.Icons != nil {
		game.IconPath = s.Icons.Resolve(game.ID, job.library, game.InstallPath)
	}

	return &game, nil
}

// gameFromAppState maps the manifest fields onto a native record.
func gameFromAppState(app *vdf.Node, library string) models.Game {
	id := strings.TrimSpace(app.String("appid"))

	title := app.String("name")
	if title == "" {
		title = models.UnknownTitle(id)
	}

	var install string
	if dir := app.String("installdir"); dir != "" {
		install = filepath.Join(library, steam.GamesDir, dir)
	}

	return models.Game{
		ID:              id,
		Title:           title,
		InstallPath:     install,
		LibraryPath:     library,
		IsNative:        true,
		LastPlayed:      max(app.Int("LastPlayed"), 0),
		PlaytimeMinutes: max(app.Int("PlaytimeForever"), 0),
	}
}

// shortcutSource is one shortcuts.vdf file and the library it belongs to, if any.
type shortcutSource struct {
	path    string
	library string
}

func (s *Scanner) scanShortcuts(ctx context.Context, root string, libraries []string) []models.Game {
	var sources []shortcutSource
	for _, lib := range libraries {
		sources = append(sources, shortcutSource{path: filepath.Join(lib, shortcutsFile), library: lib})
	}
	if root != "" {
		matches, _ := filepath.Glob(filepath.Join(root, "userdata", "*", "config", shortcutsFile))
		sort.Strings(matches)
		for _, m := range matches {
			sources = append(sources, shortcutSource{path: m})
		}
	}

	parser := s.Shortcuts
	if parser == nil {
		parser = shortcuts.New()
	}

	var games []models.Game
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}

		buf, err := os.ReadFile(src.path)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Warn().Err(err).Str("path", src.path).Msg("Failed to read shortcuts")
			}
			continue
		}

		found, err := parser.Parse(buf)
		if err != nil {
			log.Debug().Err(err).Str("path", src.path).Int("accepted", len(found)).Msg("Shortcut blob partially decoded")
		}

		for _, sc := range found {
			games = append(games, s.gameFromShortcut(sc, src.library))
		}
	}

	return games
}

func (s *Scanner) gameFromShortcut(sc shortcuts.Shortcut, library string) models.Game {
	id := ShortcutID(sc.Name, sc.Exe)

	title := strings.TrimSpace(sc.Name)
	if title == "" {
		title = models.UnknownTitle(id)
	}

	game := models.Game{
		ID:          id,
		Title:       title,
		InstallPath: sc.Exe,
		LibraryPath: library,
	}

	if s.Icons != nil {
		game.IconPath = s.Icons.Resolve(id, library, filepath.Dir(sc.Exe))
	}

	return game
}

// ShortcutID derives a stable identifier for a non-Steam shortcut from its
// name and executable path.
func ShortcutID(name, exe string) string {
	return fmt.Sprintf("%s%016x", NonSteamPrefix, xxhash.Sum64String(name+"\x00"+exe))
}
