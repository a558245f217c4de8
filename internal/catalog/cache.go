// Package catalog keeps the last scanned set of games in memory and decides
// when it has to be rebuilt.
package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/steamdex/internal/models"
	"github.com/woozymasta/steamdex/internal/search"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a snapshot is served before the next rescan.
const DefaultTTL = 5 * time.Minute

// ScanFunc produces a complete list of games. An error means nothing usable
// was found, e.g. the installation is missing.
type ScanFunc func(ctx context.Context) ([]models.Game, error)

// Store persists snapshots between process runs.
type Store interface {
	LoadSnapshot(ctx context.Context) ([]models.Game, time.Time, error)
	SaveSnapshot(ctx context.Context, games []models.Game, refreshedAt time.Time) error
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithStore enables snapshot persistence.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

// Cache serves immutable snapshots and swaps them atomically on refresh.
type Cache struct {
	scan  ScanFunc
	store Store
	now   func() time.Time
	ttl   time.Duration

	current atomic.Pointer[Snapshot]
	flight  singleflight.Group
	restore sync.Once
}

// New creates a cache over scan. A non-positive ttl falls back to DefaultTTL.
func New(scan ScanFunc, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &Cache{
		scan: scan,
		ttl:  ttl,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// TTL returns the configured time to live.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Snapshot returns the current snapshot, refreshing it first when it is
// missing or older than the TTL. A failed refresh yields an empty snapshot
// and leaves the published one untouched.
func (c *Cache) Snapshot(ctx context.Context) *Snapshot {
	c.restore.Do(func() { c.adopt(ctx) })

	if cur := c.current.Load(); cur != nil && c.fresh(cur) {
		return cur
	}

	snap, err := c.Refresh(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Catalog refresh failed")
		return emptySnapshot()
	}

	return snap
}

// Search ranks the games of a fresh snapshot against query.
func (c *Cache) Search(ctx context.Context, query string) []search.Match {
	return search.Rank(c.Snapshot(ctx).Games, query, c.now())
}

// Lookup finds a game by id in a fresh snapshot.
func (c *Cache) Lookup(ctx context.Context, id string) (models.Game, bool) {
	return c.Snapshot(ctx).Get(id)
}

// Refresh rescans unconditionally. Concurrent calls share a single scan.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, shared := c.flight.Do("refresh", func() (any, error) {
		start := c.now()

		games, err := c.scan(ctx)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			return nil, err
		}

		snap := newSnapshot(games, c.now())
		c.current.Store(snap)

		log.Info().
			Int("games", snap.Len()).
			Dur("took", snap.RefreshedAt.Sub(start)).
			Msg("Catalog refreshed")

		c.save(ctx, snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		log.Debug().Msg("Joined in-flight catalog refresh")
	}

	return v.(*Snapshot), nil
}

func (c *Cache) fresh(s *Snapshot) bool {
	return c.now().Sub(s.RefreshedAt) < c.ttl
}

// adopt publishes a persisted snapshot that is still within the TTL.
func (c *Cache) adopt(ctx context.Context) {
	if c.store == nil {
		return
	}

	games, at, err := c.store.LoadSnapshot(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load persisted catalog")
		return
	}
	if at.IsZero() {
		return
	}

	snap := newSnapshot(games, at)
	if !c.fresh(snap) {
		log.Debug().Time("refreshed_at", at).Msg("Persisted catalog expired")
		return
	}

	c.current.CompareAndSwap(nil, snap)
	log.Debug().Int("games", snap.Len()).Time("refreshed_at", at).Msg("Persisted catalog adopted")
}

func (c *Cache) save(ctx context.Context, snap *Snapshot) {
	if c.store == nil {
		return
	}

	if err := c.store.SaveSnapshot(ctx, snap.Games, snap.RefreshedAt); err != nil {
		log.Warn().Err(err).Msg("Failed to persist catalog")
	}
}
