// Package storage persists game snapshots, audit logs and final scores in
// SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"waterbarons/internal/engine"
)

var ErrNotFound = errors.New("game not found")

// Store wraps a SQLite connection.
type Store struct {
	conn *sqlx.DB
}

// GameSummary is one row of the games table without the snapshot body.
type GameSummary struct {
	ID            string `db:"id" json:"id"`
	Round         int    `db:"round" json:"round"`
	Phase         string `db:"phase" json:"phase"`
	Uninhabitable bool   `db:"uninhabitable" json:"uninhabitable"`
	UpdatedAt     string `db:"updated_at" json:"updated_at"`
}

// AuditEntry is one stored audit log line.
type AuditEntry struct {
	Seq   int    `db:"seq" json:"seq"`
	Round int    `db:"round" json:"round"`
	Phase string `db:"phase" json:"phase"`
	Text  string `db:"text" json:"text"`
}

// ScoreRow is one stored final score.
type ScoreRow struct {
	Rank     int    `db:"rank" json:"rank"`
	PlayerID string `db:"player_id" json:"player_id"`
	Name     string `db:"name" json:"name"`
	Total    int    `db:"total" json:"total"`
	Impact   int    `db:"impact" json:"impact"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		round INTEGER NOT NULL,
		phase TEXT NOT NULL,
		uninhabitable INTEGER NOT NULL,
		snapshot TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS audit_log (
		game_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		round INTEGER NOT NULL,
		phase TEXT NOT NULL,
		text TEXT NOT NULL,
		PRIMARY KEY (game_id, seq)
	);

	CREATE TABLE IF NOT EXISTS scores (
		game_id TEXT NOT NULL,
		rank INTEGER NOT NULL,
		player_id TEXT NOT NULL,
		name TEXT NOT NULL,
		total INTEGER NOT NULL,
		impact INTEGER NOT NULL,
		PRIMARY KEY (game_id, player_id)
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveGame replaces the game's snapshot row and appends audit lines not yet
// stored, in one transaction.
func (s *Store) SaveGame(ctx context.Context, g *engine.Game) error {
	data, err := g.MarshalSnapshot()
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", g.ID, err)
	}

	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO games (id, round, phase, uninhabitable, snapshot, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.Round, g.Phase.String(), g.Uninhabitable, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save game %s: %w", g.ID, err)
	}

	var stored int
	if err := tx.GetContext(ctx, &stored, "SELECT COUNT(*) FROM audit_log WHERE game_id = ?", g.ID); err != nil {
		return fmt.Errorf("count audit: %w", err)
	}
	entries := g.LogEntries()
	for i := stored; i < len(entries); i++ {
		e := entries[i]
		_, err := tx.ExecContext(ctx,
			"INSERT INTO audit_log (game_id, seq, round, phase, text) VALUES (?, ?, ?, ?, ?)",
			g.ID, i, e.Round, e.Phase.String(), e.Text,
		)
		if err != nil {
			return fmt.Errorf("insert audit %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("game saved", "game", g.ID, "round", g.Round, "audit", len(entries)-stored)
	return nil
}

// LoadSnapshot returns the stored snapshot for id.
func (s *Store) LoadSnapshot(ctx context.Context, id string) (engine.Snapshot, error) {
	var data string
	err := s.conn.GetContext(ctx, &data, "SELECT snapshot FROM games WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("load game %s: %w", id, err)
	}
	return engine.UnmarshalSnapshot([]byte(data))
}

// ListGames returns every stored game, most recently updated first.
func (s *Store) ListGames(ctx context.Context) ([]GameSummary, error) {
	var games []GameSummary
	err := s.conn.SelectContext(ctx, &games,
		"SELECT id, round, phase, uninhabitable, updated_at FROM games ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// SaveScores replaces the final scores of a game.
func (s *Store) SaveScores(ctx context.Context, gameID string, scores []engine.ScoreEntry) error {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM scores WHERE game_id = ?", gameID); err != nil {
		return err
	}
	for _, e := range scores {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO scores (game_id, rank, player_id, name, total, impact) VALUES (?, ?, ?, ?, ?, ?)",
			gameID, e.Rank, e.PlayerID, e.PlayerName, e.Total, e.Impact,
		)
		if err != nil {
			return fmt.Errorf("insert score %s: %w", e.PlayerID, err)
		}
	}
	return tx.Commit()
}

// Scores returns the stored scores of a game in rank order.
func (s *Store) Scores(ctx context.Context, gameID string) ([]ScoreRow, error) {
	var rows []ScoreRow
	err := s.conn.SelectContext(ctx, &rows,
		"SELECT rank, player_id, name, total, impact FROM scores WHERE game_id = ? ORDER BY rank", gameID)
	if err != nil {
		return nil, fmt.Errorf("scores %s: %w", gameID, err)
	}
	return rows, nil
}

// AuditLog returns up to limit audit lines of a game, oldest first. A limit
// of zero or less returns everything.
func (s *Store) AuditLog(ctx context.Context, gameID string, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	var entries []AuditEntry
	err := s.conn.SelectContext(ctx, &entries,
		"SELECT seq, round, phase, text FROM audit_log WHERE game_id = ? ORDER BY seq LIMIT ?",
		gameID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("audit log %s: %w", gameID, err)
	}
	return entries, nil
}
