// Package game is the session engine: it pairs waiting players, owns the
// registry of live matches, drives their simulations at a fixed rate, and
// settles ratings and persistence when a match ends or a player vanishes.
package game

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/exp/rand"

	"github.com/WoKonings/ft-transcendence/internal/pong"
	"github.com/WoKonings/ft-transcendence/internal/rating"
)

// DefaultWinScore ends a match when one side reaches it.
const DefaultWinScore = 7

const persistTimeout = 5 * time.Second

var ErrTargetUnavailable = errors.New("invite target unavailable")

// Engine exposes the command surface consumed by the transport layer.
// Commands arrive from independent connections; every session serializes
// them against its own tick through its lock, never a global one.
type Engine struct {
	log       *slog.Logger
	registry  *Registry
	store     Store
	directory Directory
	status    Status
	winScore  int
	seed      atomic.Uint64
}

type Option func(*Engine)

// WithWinScore overrides the score threshold that ends a match.
func WithWinScore(n int) Option {
	return func(e *Engine) { e.winScore = n }
}

// WithSeed fixes the base seed for session randomness, for deterministic
// tests.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.seed.Store(seed) }
}

func NewEngine(log *slog.Logger, store Store, directory Directory, status Status, opts ...Option) *Engine {
	e := &Engine{
		log:       log,
		registry:  NewRegistry(),
		store:     store,
		directory: directory,
		status:    status,
		winScore:  DefaultWinScore,
	}
	e.seed.Store(uint64(time.Now().UnixNano()))
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry exposes the session collection to the match loop.
func (e *Engine) Registry() *Registry { return e.registry }

func (e *Engine) newRand() *rand.Rand {
	return rand.New(rand.NewSource(e.seed.Add(1)))
}

// JoinQueue seats a player into the first public session of the matching
// variant with a free slot, or creates a new one with the player waiting.
// Private requests always get a fresh session that public joiners never
// see. A player already seated somewhere is rejected as a no-op.
func (e *Engine) JoinQueue(p *Player, private, variant bool) error {
	if s, ok := e.registry.SessionFor(p.ID); ok {
		e.log.Debug("join rejected, already seated",
			slog.Int64("player", p.ID), slog.String("session", s.ID))
		return ErrAlreadySeated
	}

	if !private {
		if s, ok := e.registry.FirstFit(variant); ok {
			if _, activated, err := s.Seat(p); err == nil {
				e.registry.Bind(p.ID, s.ID)
				if activated {
					e.activated(s)
				}
				return nil
			}
			// Lost the slot to a concurrent joiner; fall through and
			// open a new session instead.
		}
	}

	s := newSession(private, variant, e.winScore, e.newRand())
	if _, _, err := s.Seat(p); err != nil {
		return err
	}
	e.registry.Add(s, p.ID)
	e.status.PlayerStatus(p.ID, true, false)
	e.log.Info("session created",
		slog.String("session", s.ID),
		slog.Int64("player", p.ID),
		slog.Bool("private", private),
		slog.Bool("variant", variant))
	return nil
}

// activated tells both players who they are up against and flips their
// presence to in-game.
func (e *Engine) activated(s *Session) {
	near, far := s.Players()
	if near == nil || far == nil {
		return
	}
	near.Outbox.Send(opponentJoinedEvent(far.Name))
	far.Outbox.Send(opponentJoinedEvent(near.Name))
	e.status.PlayerStatus(near.ID, false, true)
	e.status.PlayerStatus(far.ID, false, true)
	e.log.Info("match started",
		slog.String("session", s.ID),
		slog.String("near", near.Name),
		slog.String("far", far.Name))
}

// LeaveMatch vacates the player's seat. Leaving a waiting session tears it
// down; abandoning an active match forfeits it to the remaining player.
// A leave with no session behind it is an expected race and drops silently.
func (e *Engine) LeaveMatch(playerID int64) {
	s, ok := e.registry.SessionFor(playerID)
	if !ok {
		e.log.Debug("leave with no session", slog.Int64("player", playerID))
		return
	}

	res := s.Leave(playerID)
	switch res.Kind {
	case LeaveNotSeated:
		// The index pointed at a session the player is no longer seated
		// in; drop the stale entry so the next lookup misses cleanly.
		e.registry.Unbind(playerID)
		return

	case LeaveEmptied:
		e.registry.Remove(s.ID)
		e.status.PlayerStatus(playerID, false, false)
		e.log.Info("waiting session emptied", slog.String("session", s.ID))

	case LeaveForfeit:
		// The session is Paused already, so it is out of the tick set
		// before removal; no further tick can observe it.
		e.registry.Remove(s.ID)
		s.finish(StateForfeited)
		res.Winner.Outbox.Send(opponentLeftEvent(res.Loser.Name))
		res.Winner.Outbox.Send(gameWonEvent())
		res.Loser.Outbox.Send(gameLostEvent())
		e.log.Info("match forfeited",
			slog.String("session", s.ID),
			slog.String("winner", res.Winner.Name),
			slog.String("loser", res.Loser.Name))
		winnerScore, loserScore := sideScores(res.Score, res.Winner, s)
		e.settle(s, res.Winner, res.Loser, winnerScore, loserScore, true)
	}
}

// MovePaddle applies directional input; the sign selects the direction at
// the fixed paddle speed, zero stops. Last write before a tick wins.
func (e *Engine) MovePaddle(playerID int64, delta float64) {
	if s, ok := e.registry.SessionFor(playerID); ok {
		s.Move(playerID, delta)
	}
}

// SetPaddleY applies the absolute positioning input scheme.
func (e *Engine) SetPaddleY(playerID int64, y float64) {
	if s, ok := e.registry.SessionFor(playerID); ok {
		s.SetPaddleY(playerID, y)
	}
}

// SendInvite targets a specific player for a private match. An offline
// target makes the invite fail silently; there is no retry. The sender's
// private session is created on demand.
func (e *Engine) SendInvite(sender *Player, targetName string) error {
	target, ok := e.directory.Resolve(targetName)
	if !ok {
		e.log.Info("invite target offline",
			slog.String("sender", sender.Name), slog.String("target", targetName))
		return nil
	}
	if target.ID == sender.ID {
		return ErrTargetUnavailable
	}

	s, ok := e.registry.SessionFor(sender.ID)
	if ok && !s.Private {
		e.log.Debug("invite while seated in a public session",
			slog.Int64("player", sender.ID))
		return nil
	}
	if !ok {
		s = newSession(true, false, e.winScore, e.newRand())
		if _, _, err := s.Seat(sender); err != nil {
			return err
		}
		e.registry.Add(s, sender.ID)
		e.status.PlayerStatus(sender.ID, true, false)
	}

	target.Outbox.Send(gameInviteEvent(sender.Name, s.ID))
	e.log.Info("invite sent",
		slog.String("sender", sender.Name),
		slog.String("target", target.Name),
		slog.String("session", s.ID))
	return nil
}

// AcceptInvite seats the accepter into the invited session if a slot is
// still free. Stale session IDs drop silently.
func (e *Engine) AcceptInvite(accepter *Player, sessionID string) error {
	if _, ok := e.registry.SessionFor(accepter.ID); ok {
		return ErrAlreadySeated
	}
	s, ok := e.registry.Get(sessionID)
	if !ok {
		e.log.Debug("accept for unknown session", slog.String("session", sessionID))
		return nil
	}
	_, activated, err := s.Seat(accepter)
	if err != nil {
		e.log.Debug("accept rejected", slog.String("session", sessionID),
			slog.String("reason", err.Error()))
		return nil
	}
	e.registry.Bind(accepter.ID, s.ID)
	if activated {
		e.activated(s)
	}
	return nil
}

// completeNatural handles a win-threshold crossing observed by the match
// loop. The session already flipped out of Active inside the tick.
func (e *Engine) completeNatural(s *Session, res TickResult) {
	var winner, loser *Player
	if res.Winner == pong.SideNear {
		winner, loser = res.Near, res.Far
	} else {
		winner, loser = res.Far, res.Near
	}

	e.registry.Remove(s.ID)
	winner.Outbox.Send(gameWonEvent())
	loser.Outbox.Send(gameLostEvent())
	e.log.Info("match completed",
		slog.String("session", s.ID),
		slog.String("winner", winner.Name),
		slog.Int("near", res.Snapshot.Score.Near),
		slog.Int("far", res.Snapshot.Score.Far))

	winnerScore, loserScore := res.Snapshot.Score.Near, res.Snapshot.Score.Far
	if res.Winner == pong.SideFar {
		winnerScore, loserScore = loserScore, winnerScore
	}
	e.settle(s, winner, loser, winnerScore, loserScore, false)
}

// settle computes the rating exchange and hands the durable record off to
// the store. Persistence runs off the tick path: a slow or failing write
// must never stall another session's tick, and once started it runs to
// completion independently of the session's removal.
func (e *Engine) settle(s *Session, winner, loser *Player, winnerScore, loserScore int, forfeit bool) {
	delta := rating.Delta(winner.Rating, loser.Rating)

	e.status.PlayerStatus(winner.ID, false, false)
	e.status.PlayerStatus(loser.ID, false, false)
	s.finish(StateDestroyed)

	startedAt, endedAt := s.Span()
	result := MatchResult{
		SessionID:   s.ID,
		WinnerID:    winner.ID,
		LoserID:     loser.ID,
		WinnerScore: winnerScore,
		LoserScore:  loserScore,
		WinnerDelta: delta,
		LoserDelta:  -delta,
		Forfeit:     forfeit,
		StartedAt:   startedAt,
		EndedAt:     endedAt,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := e.store.RecordMatchResult(ctx, result); err != nil {
			e.log.Error("record match result",
				slog.String("session", result.SessionID), slog.Any("error", err))
		}
		if err := e.store.ApplyRatingDelta(ctx, winner.ID, delta); err != nil {
			e.log.Error("apply winner rating delta",
				slog.Int64("player", winner.ID), slog.Any("error", err))
		}
		if err := e.store.ApplyRatingDelta(ctx, loser.ID, -delta); err != nil {
			e.log.Error("apply loser rating delta",
				slog.Int64("player", loser.ID), slog.Any("error", err))
		}
	}()
}

// sideScores maps a recorded score onto winner/loser order.
func sideScores(score pong.Score, winner *Player, s *Session) (int, int) {
	near, _ := s.Players()
	// After a forfeit the leaver's slot is vacated, so resolve by the
	// remaining player's side.
	if near != nil && near.ID == winner.ID {
		return score.Near, score.Far
	}
	return score.Far, score.Near
}
