// Package maintenance runs the one-shot housekeeping tasks selected by flags.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/steamdex/internal/catalog"
	"github.com/woozymasta/steamdex/internal/config"
	"github.com/woozymasta/steamdex/internal/fake"
	"github.com/woozymasta/steamdex/internal/icon"
	"github.com/woozymasta/steamdex/internal/storage"
)

// Deps are the components tasks operate on; Store may be nil when
// persistence is disabled.
type Deps struct {
	Store *storage.Repository
	Cache *catalog.Cache
}

// Run executes every maintenance task requested in cfg in a fixed order:
// fake library, database purge, icon warm-up, icon prune. It reports whether
// anything ran, in which case the program should exit.
func Run(ctx context.Context, cfg *config.Config, d Deps) bool {
	m := cfg.Maintenance
	if !m.Requested() {
		return false
	}

	if m.FakeLibrary != "" {
		sum, err := fake.GenerateLibrary(m.FakeLibrary, m.FakeGames)
		if err != nil {
			log.Error().Err(err).Str("path", m.FakeLibrary).Msg("Failed to generate fake library")
		} else {
			log.Info().Strs("libraries", sum.Libraries).Msg("Use --steam-path to scan it")
		}
	}

	if m.DBPurge {
		purge(ctx, d.Store)
	}

	if m.IconsWarm {
		WarmIcons(ctx, d.Cache, cfg.Icons.Dir)
	}

	if m.IconsPrune {
		referenced, err := referencedIcons(ctx, d)
		if err != nil {
			log.Warn().Err(err).Str("dir", cfg.Icons.Dir).Msg("Icon prune skipped, referenced icons unknown")
		} else {
			removed := PruneIcons(cfg.Icons.Dir, referenced, m.Workers)
			log.Info().Int64("removed", removed).Str("dir", cfg.Icons.Dir).Msg("Icon prune finished")
		}
	}

	return true
}

func purge(ctx context.Context, store *storage.Repository) {
	if store == nil {
		log.Warn().Msg("Persistence disabled, nothing to purge")
		return
	}

	count, err := store.Purge(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge catalog snapshot")
		return
	}

	log.Info().Int64("deleted", count).Msg("Purge finished")
}

// WarmStats counts games by the state of their icon after a warm-up scan.
type WarmStats struct {
	Optimized int
	Original  int
	Missing   int
}

// WarmIcons forces a rescan, which resolves and optimizes every icon, and
// reports how many icons ended up in dir.
func WarmIcons(ctx context.Context, cache *catalog.Cache, dir string) WarmStats {
	var stats WarmStats

	snap, err := cache.Refresh(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Icon warm-up scan failed")
		return stats
	}

	for _, g := range snap.Games {
		switch {
		case g.IconPath == "":
			stats.Missing++
		case dir != "" && inDir(dir, g.IconPath):
			stats.Optimized++
		default:
			stats.Original++
		}
	}

	log.Info().
		Int("optimized", stats.Optimized).
		Int("original", stats.Original).
		Int("missing", stats.Missing).
		Msg("Icon warm-up finished")

	return stats
}

// referencedIcons collects icon paths of the persisted snapshot, or of a
// fresh scan when nothing is persisted. It fails when neither source could
// be read, so a prune never runs against an unknown reference set.
func referencedIcons(ctx context.Context, d Deps) (map[string]struct{}, error) {
	var paths []string

	if d.Store != nil {
		stored, err := d.Store.IconPaths(ctx)
		if err != nil {
			return nil, fmt.Errorf("read icon paths: %w", err)
		}
		paths = stored
	}

	if len(paths) == 0 {
		if d.Cache == nil {
			return nil, errors.New("no persisted snapshot and no catalog to scan")
		}

		snap, err := d.Cache.Refresh(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan catalog: %w", err)
		}

		for _, g := range snap.Games {
			if g.IconPath != "" {
				paths = append(paths, g.IconPath)
			}
		}
	}

	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[filepath.Clean(p)] = struct{}{}
	}

	return set, nil
}

// PruneIcons deletes optimized icons in dir that are not in referenced and
// returns how many were removed.
func PruneIcons(dir string, referenced map[string]struct{}, workers int) int64 {
	if dir == "" {
		return 0
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error().Err(err).Str("dir", dir).Msg("Failed to list icon directory")
		}
		return 0
	}

	var stale []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, icon.OptimizedPrefix) {
			continue
		}

		path := filepath.Join(dir, name)
		if _, ok := referenced[filepath.Clean(path)]; !ok {
			stale = append(stale, path)
		}
	}

	if len(stale) == 0 {
		return 0
	}

	var removed atomic.Int64
	runWorkerPool(stale, workers, func(path string) {
		if err := os.Remove(path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to delete icon")
			return
		}
		removed.Add(1)
		log.Trace().Str("path", path).Msg("Icon deleted")
	})

	return removed.Load()
}

func runWorkerPool[T any](items []T, workers int, fn func(T)) {
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan T, len(items))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				fn(item)
			}
		}()
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)

	wg.Wait()
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}
