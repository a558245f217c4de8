// Package search scores catalog entries against a free-text query.
package search

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/woozymasta/steamdex/internal/models"
	"golang.org/x/text/cases"
)

// Base scores of the title match ladder; only the best applicable one counts.
const (
	ScoreExact     = 100
	ScorePrefix    = 80
	ScoreWord      = 60
	ScoreSubstring = 40
)

// Additive boosts.
const (
	BoostPlayedWeek  = 20
	BoostPlayedMonth = 10
	BoostPlaytime    = 5

	playtimeThreshold = 60 // minutes
)

const day = 24 * time.Hour

// Match is a game with its score.
type Match struct {
	Game  models.Game `json:"game"`
	Score int         `json:"score"`
}

// Rank scores every game against query and returns the matches by
// descending score; equal scores keep the input order. Games whose title does
// not contain the query are left out. A blank query returns every game with a
// zero score in input order.
func Rank(games []models.Game, query string, now time.Time) []Match {
	fold := cases.Fold()

	q := strings.TrimSpace(fold.String(query))
	if q == "" {
		out := make([]Match, len(games))
		for i, g := range games {
			out[i] = Match{Game: g}
		}
		return out
	}

	var out []Match
	for _, g := range games {
		base := titleScore(fold.String(g.Title), q)
		if base == 0 {
			continue
		}
		out = append(out, Match{Game: g, Score: base + boost(g, now)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out
}

// titleScore applies the match ladder to an already folded title and query.
func titleScore(title, q string) int {
	switch {
	case title == q:
		return ScoreExact
	case strings.HasPrefix(title, q):
		return ScorePrefix
	case containsWord(title, q):
		return ScoreWord
	case strings.Contains(title, q):
		return ScoreSubstring
	default:
		return 0
	}
}

// containsWord reports whether q occurs in s delimited by non-alphanumeric
// runes or the string edges on both sides.
func containsWord(s, q string) bool {
	for from := 0; from <= len(s)-len(q); {
		i := strings.Index(s[from:], q)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(q)

		if boundaryBefore(s, start) && boundaryAfter(s, end) {
			return true
		}

		_, size := utf8.DecodeRuneInString(s[start:])
		from = start + size
	}

	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func boost(g models.Game, now time.Time) int {
	score := 0

	if g.LastPlayed > 0 {
		since := now.Sub(time.Unix(g.LastPlayed, 0))
		switch {
		case since <= 7*day:
			score += BoostPlayedWeek
		case since <= 30*day:
			score += BoostPlayedMonth
		}
	}

	if g.PlaytimeMinutes > playtimeThreshold {
		score += BoostPlaytime
	}

	return score
}
