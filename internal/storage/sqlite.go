// Package storage persists catalog snapshots in SQLite so a fresh process can
// answer without rescanning while the snapshot is still within its TTL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/woozymasta/steamdex/internal/models"
	_ "modernc.org/sqlite" // Driver sqlite
)

// Repository manages the SQLite database connection.
type Repository struct {
	db *sql.DB
}

// New opens the database at dbPath and applies pending migrations.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// single writer; launcher invocations are short lived
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// LoadSnapshot returns the persisted games in scan order and the time of the
// refresh that produced them. A zero time means nothing was saved yet.
func (r *Repository) LoadSnapshot(ctx context.Context) ([]models.Game, time.Time, error) {
	var nanos int64
	err := r.db.QueryRowContext(ctx, `SELECT refreshed_at FROM catalog_state WHERE id = 1`).Scan(&nanos)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read catalog state: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, install_path, icon_path, library_path,
		       last_played, playtime_minutes, is_native
		FROM games
		ORDER BY position
	`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read games: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var games []models.Game
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(
			&g.ID, &g.Title, &g.InstallPath, &g.IconPath, &g.LibraryPath,
			&g.LastPlayed, &g.PlaytimeMinutes, &g.IsNative,
		); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, err
	}

	return games, time.Unix(0, nanos), nil
}

// SaveSnapshot replaces the persisted snapshot in one transaction.
func (r *Repository) SaveSnapshot(ctx context.Context, games []models.Game, refreshedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM games`); err != nil {
		return fmt.Errorf("clear games: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games (
			position, id, title, install_path, icon_path, library_path,
			last_played, playtime_minutes, is_native
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, g := range games {
		if _, err := stmt.ExecContext(ctx,
			i, g.ID, g.Title, g.InstallPath, g.IconPath, g.LibraryPath,
			g.LastPlayed, g.PlaytimeMinutes, g.IsNative,
		); err != nil {
			return fmt.Errorf("insert game %s: %w", g.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO catalog_state (id, refreshed_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET refreshed_at = excluded.refreshed_at
	`, refreshedAt.UnixNano()); err != nil {
		return fmt.Errorf("write catalog state: %w", err)
	}

	return tx.Commit()
}

// Purge drops the persisted snapshot and returns the number of removed games.
func (r *Repository) Purge(ctx context.Context) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM games`)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_state`); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// IconPaths returns the distinct non-empty icon paths of the persisted snapshot.
func (r *Repository) IconPaths(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT icon_path FROM games WHERE icon_path != ''`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			continue
		}
		paths = append(paths, p)
	}

	return paths, rows.Err()
}
