package game

import (
	"context"
	"time"
)

// MatchResult is the durable outcome of one finished match.
type MatchResult struct {
	SessionID   string
	WinnerID    int64
	LoserID     int64
	WinnerScore int
	LoserScore  int
	WinnerDelta int
	LoserDelta  int
	Forfeit     bool
	StartedAt   time.Time
	EndedAt     time.Time
}

// Store is the persistence collaborator. Writes are eventually consistent;
// the engine logs failures and does not retry, and a lost record never
// changes what the players were already told.
type Store interface {
	RecordMatchResult(ctx context.Context, res MatchResult) error
	ApplyRatingDelta(ctx context.Context, playerID int64, delta int) error
}

// Directory resolves a display name to a reachable player handle, or
// reports the player offline.
type Directory interface {
	Resolve(name string) (*Player, bool)
}

// Status is told about queue and match presence transitions so the rest
// of the system can display them.
type Status interface {
	PlayerStatus(playerID int64, inQueue, inGame bool)
}

// NopStore discards results; used when no persistence is wired.
type NopStore struct{}

func (NopStore) RecordMatchResult(context.Context, MatchResult) error { return nil }
func (NopStore) ApplyRatingDelta(context.Context, int64, int) error   { return nil }

// NopStatus ignores presence transitions.
type NopStatus struct{}

func (NopStatus) PlayerStatus(int64, bool, bool) {}
