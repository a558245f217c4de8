package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/woozymasta/steamdex/internal/models"
)

func open(t *testing.T, path string) *Repository {
	t.Helper()
	repo, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestEmptyDatabase(t *testing.T) {
	repo := open(t, filepath.Join(t.TempDir(), "steamdex.db"))

	games, at, err := repo.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 0 || !at.IsZero() {
		t.Fatalf("got %d games at %v", len(games), at)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "steamdex.db")
	repo := open(t, path)

	at := time.Date(2026, 10, 18, 12, 30, 0, 123, time.UTC)
	games := []models.Game{
		{ID: "440", Title: "Team Fortress 2", InstallPath: "/lib/common/tf", IconPath: "/icons/440.png", LibraryPath: "/lib", LastPlayed: 1700000000, PlaytimeMinutes: 90, IsNative: true},
		{ID: "10", Title: "Counter-Strike", IsNative: true},
		{ID: "nonsteam_00000000000000ff", Title: "Emulator", InstallPath: "/emu/emu.exe", IconPath: "/icons/440.png"},
	}

	if err := repo.SaveSnapshot(ctx, games, at); err != nil {
		t.Fatal(err)
	}

	// overwrite fully replaces the previous set
	if err := repo.SaveSnapshot(ctx, games, at); err != nil {
		t.Fatal(err)
	}

	got, gotAt, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !gotAt.Equal(at) {
		t.Errorf("refreshed_at = %v, want %v", gotAt, at)
	}
	if len(got) != len(games) {
		t.Fatalf("got %d games", len(got))
	}
	for i := range games {
		if got[i] != games[i] {
			t.Errorf("game %d = %+v\nwant    %+v", i, got[i], games[i])
		}
	}

	icons, err := repo.IconPaths(ctx)
	if err != nil || len(icons) != 1 || icons[0] != "/icons/440.png" {
		t.Fatalf("IconPaths = %v, %v", icons, err)
	}

	// migrations are idempotent across reopen
	_ = repo.Close()
	again := open(t, path)
	if got, _, err := again.LoadSnapshot(ctx); err != nil || len(got) != len(games) {
		t.Fatalf("reopen: %d games, %v", len(got), err)
	}
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	repo := open(t, filepath.Join(t.TempDir(), "steamdex.db"))

	if err := repo.SaveSnapshot(ctx, []models.Game{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}, time.Now()); err != nil {
		t.Fatal(err)
	}

	n, err := repo.Purge(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Purge = %d, %v", n, err)
	}

	games, at, err := repo.LoadSnapshot(ctx)
	if err != nil || len(games) != 0 || !at.IsZero() {
		t.Fatalf("after purge: %d games at %v, %v", len(games), at, err)
	}
}
