// Package sqlite is the reference persistence collaborator: match results
// and rating movements land in a local SQLite file. Writes are treated as
// eventually consistent by the engine; it logs failures and moves on.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/WoKonings/ft-transcendence/internal/game"
	"github.com/WoKonings/ft-transcendence/internal/rating"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_results (
	session_id   TEXT PRIMARY KEY,
	winner_id    INTEGER NOT NULL,
	loser_id     INTEGER NOT NULL,
	winner_score INTEGER NOT NULL,
	loser_score  INTEGER NOT NULL,
	winner_delta INTEGER NOT NULL,
	loser_delta  INTEGER NOT NULL,
	forfeit      INTEGER NOT NULL,
	started_at   INTEGER NOT NULL,
	ended_at     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS ratings (
	player_id INTEGER PRIMARY KEY,
	elo       INTEGER NOT NULL
);`

// Store persists match outcomes in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

// RecordMatchResult inserts one finished match.
func (s *Store) RecordMatchResult(ctx context.Context, res game.MatchResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO match_results (
			session_id, winner_id, loser_id, winner_score, loser_score,
			winner_delta, loser_delta, forfeit, started_at, ended_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.SessionID, res.WinnerID, res.LoserID, res.WinnerScore, res.LoserScore,
		res.WinnerDelta, res.LoserDelta, boolToInt(res.Forfeit),
		toMillis(res.StartedAt), toMillis(res.EndedAt))
	if err != nil {
		return fmt.Errorf("insert match result: %w", err)
	}
	return nil
}

// ApplyRatingDelta moves a player's stored rating, starting unknown
// players from the default Elo.
func (s *Store) ApplyRatingDelta(ctx context.Context, playerID int64, delta int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ratings (player_id, elo) VALUES (?, ?)
		ON CONFLICT(player_id) DO UPDATE SET elo = elo + ?`,
		playerID, rating.DefaultElo+delta, delta)
	if err != nil {
		return fmt.Errorf("apply rating delta: %w", err)
	}
	return nil
}

// Rating returns a player's current rating, or the default for players
// with no history.
func (s *Store) Rating(ctx context.Context, playerID int64) (int, error) {
	var elo int
	err := s.db.QueryRowContext(ctx,
		`SELECT elo FROM ratings WHERE player_id = ?`, playerID).Scan(&elo)
	if errors.Is(err, sql.ErrNoRows) {
		return rating.DefaultElo, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query rating: %w", err)
	}
	return elo, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
