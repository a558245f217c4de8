package catalog

import (
	"slices"
	"sort"
	"time"

	"github.com/woozymasta/steamdex/internal/models"
)

// Snapshot is one immutable scan result. Games keeps scan order.
type Snapshot struct {
	RefreshedAt time.Time
	Games       []models.Game

	byID map[string]int
}

func newSnapshot(games []models.Game, at time.Time) *Snapshot {
	s := &Snapshot{
		RefreshedAt: at,
		Games:       games,
		byID:        make(map[string]int, len(games)),
	}

	for i, g := range games {
		if _, dup := s.byID[g.ID]; !dup {
			s.byID[g.ID] = i
		}
	}

	return s
}

func emptySnapshot() *Snapshot {
	return newSnapshot(nil, time.Time{})
}

// Get returns the game with the given id.
func (s *Snapshot) Get(id string) (models.Game, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Game{}, false
	}
	return s.Games[i], true
}

// Len returns the number of games.
func (s *Snapshot) Len() int { return len(s.Games) }

// Recent returns up to n games, most recently played first. Never played
// games sort last and keep scan order among themselves.
func (s *Snapshot) Recent(n int) []models.Game {
	games := slices.Clone(s.Games)
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].LastPlayed > games[j].LastPlayed
	})

	if len(games) > n {
		games = games[:n]
	}

	return games
}
