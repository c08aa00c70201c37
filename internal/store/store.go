// Package store persists cumulative scores in SQLite.
package store

import (
    "context"
    "database/sql"
    "fmt"
    "os"
    "path/filepath"

    _ "modernc.org/sqlite" // pure Go SQLite driver

    "github.com/jaminalder/octagon-tictactoe/internal/app"
    "github.com/jaminalder/octagon-tictactoe/internal/domain"
)

// Store is a score counter backed by a SQLite file.
type Store struct {
    db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
// Safe to call on an existing file.
func Open(ctx context.Context, path string) (*Store, error) {
    if dir := filepath.Dir(path); dir != "" {
        if err := os.MkdirAll(dir, 0o755); err != nil {
            return nil, fmt.Errorf("create database directory: %w", err)
        }
    }

    db, err := sql.Open("sqlite", path)
    if err != nil {
        return nil, fmt.Errorf("open sqlite database: %w", err)
    }
    // SQLite has one writer; a single connection avoids SQLITE_BUSY.
    db.SetMaxOpenConns(1)
    db.SetMaxIdleConns(1)

    if err := db.PingContext(ctx); err != nil {
        db.Close()
        return nil, fmt.Errorf("ping sqlite database: %w", err)
    }
    if err := applyPragmas(ctx, db); err != nil {
        db.Close()
        return nil, err
    }
    if err := createSchema(ctx, db); err != nil {
        db.Close()
        return nil, fmt.Errorf("create schema: %w", err)
    }
    return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
    if s.db == nil {
        return nil
    }
    return s.db.Close()
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
    pragmas := []string{
        "PRAGMA journal_mode = WAL",
        "PRAGMA busy_timeout = 5000",
    }
    for _, p := range pragmas {
        if _, err := db.ExecContext(ctx, p); err != nil {
            return fmt.Errorf("execute %q: %w", p, err)
        }
    }
    return nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
    schemas := []string{
        `CREATE TABLE IF NOT EXISTS scores (
            player INTEGER PRIMARY KEY,
            wins INTEGER NOT NULL DEFAULT 0
        );`,
        `INSERT OR IGNORE INTO scores (player, wins) VALUES (1, 0), (2, 0);`,
    }
    for _, q := range schemas {
        if _, err := db.ExecContext(ctx, q); err != nil {
            return err
        }
    }
    return nil
}

// Load returns the current scores.
func (s *Store) Load(ctx context.Context) (app.Scores, error) {
    return loadScores(ctx, s.db)
}

type querier interface {
    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadScores(ctx context.Context, q querier) (app.Scores, error) {
    var out app.Scores
    rows, err := q.QueryContext(ctx, `SELECT player, wins FROM scores`)
    if err != nil {
        return out, fmt.Errorf("load scores: %w", err)
    }
    defer rows.Close()
    for rows.Next() {
        var player, wins int
        if err := rows.Scan(&player, &wins); err != nil {
            return out, fmt.Errorf("scan score: %w", err)
        }
        switch domain.Player(player) {
        case domain.PlayerOne:
            out.One = wins
        case domain.PlayerTwo:
            out.Two = wins
        }
    }
    return out, rows.Err()
}

// RecordWin adds one win for winner and returns the updated scores.
func (s *Store) RecordWin(ctx context.Context, winner domain.Player) (app.Scores, error) {
    if winner != domain.PlayerOne && winner != domain.PlayerTwo {
        return app.Scores{}, fmt.Errorf("record win: unknown player %v", winner)
    }
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return app.Scores{}, fmt.Errorf("begin: %w", err)
    }
    defer tx.Rollback()

    _, err = tx.ExecContext(ctx, `
        INSERT INTO scores (player, wins) VALUES (?, 1)
        ON CONFLICT(player) DO UPDATE SET wins = wins + 1`, int(winner))
    if err != nil {
        return app.Scores{}, fmt.Errorf("record win: %w", err)
    }
    out, err := loadScores(ctx, tx)
    if err != nil {
        return app.Scores{}, err
    }
    if err := tx.Commit(); err != nil {
        return app.Scores{}, fmt.Errorf("commit: %w", err)
    }
    return out, nil
}

// ResetScores sets every counter back to zero.
func (s *Store) ResetScores(ctx context.Context) error {
    if _, err := s.db.ExecContext(ctx, `UPDATE scores SET wins = 0`); err != nil {
        return fmt.Errorf("reset scores: %w", err)
    }
    return nil
}

var _ app.ScoreStore = (*Store)(nil)
