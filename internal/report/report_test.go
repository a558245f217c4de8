package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/woozymasta/steamdex/internal/catalog"
	"github.com/woozymasta/steamdex/internal/models"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func snapshot(t *testing.T, games []models.Game) *catalog.Snapshot {
	t.Helper()
	c := catalog.New(func(context.Context) ([]models.Game, error) { return games, nil }, time.Minute,
		catalog.WithClock(func() time.Time { return now }))
	return c.Snapshot(context.Background())
}

func TestWrite(t *testing.T) {
	snap := snapshot(t, []models.Game{
		{ID: "70", Title: "Half-Life", IsNative: true, PlaytimeMinutes: 75000, LastPlayed: now.Add(-72 * time.Hour).Unix()},
		{ID: "nonsteam_1", Title: "Emulator Station"},
	})

	var buf bytes.Buffer
	if err := Write(&buf, snap, now); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"2 games (1 Steam, 1 non-Steam)", "Half-Life", "Emulator Station", "1,250h", "3 days ago", "never", "shortcut"} {
		if !strings.Contains(out, want) {
			t.Errorf("report lacks %q:\n%s", want, out)
		}
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, snapshot(t, nil), now); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No games found") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestPlaytime(t *testing.T) {
	tests := map[int64]string{0: "-", -3: "-", 45: "45m", 60: "1h", 150: "2h", 120000: "2,000h"}
	for in, want := range tests {
		if got := Playtime(in); got != want {
			t.Errorf("Playtime(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Halo: The Master Chief Collection", 10); got != "Halo: The…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("Portal", 10); got != "Portal" {
		t.Errorf("truncate = %q", got)
	}
}
