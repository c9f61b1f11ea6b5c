package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"github.com/WoKonings/ft-transcendence/internal/pong"
)

// State is a session's lifecycle position.
type State int

const (
	// StateWaiting is a fresh session with one seat filled.
	StateWaiting State = iota
	// StateActive has both seats filled and the simulation ticking.
	StateActive
	// StatePaused freezes the simulation after a mid-match departure while
	// game-over handling runs. Flipping here before any asynchronous
	// follow-up is what keeps a second tick from re-triggering completion.
	StatePaused
	// StateCompleted ended by reaching the win threshold naturally.
	StateCompleted
	// StateForfeited ended by a player leaving mid-match.
	StateForfeited
	// StateDestroyed is terminal; the session left the registry.
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	case StateForfeited:
		return "forfeited"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}

var (
	ErrSessionFull   = errors.New("session already has two players")
	ErrAlreadySeated = errors.New("player already seated")
)

// Session is one forming or in-progress match: up to two seated players,
// one simulation, and a lifecycle state. All mutation goes through its
// own lock so ticks and player commands for the same match never overlap,
// while unrelated matches never contend.
type Session struct {
	ID      string
	Private bool
	Variant bool

	mu        sync.Mutex
	state     State
	near      Slot
	far       Slot
	sim       *pong.State
	winScore  int
	startedAt time.Time
	endedAt   time.Time
}

func newSession(private, variant bool, winScore int, rng *rand.Rand) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Private:  private,
		Variant:  variant,
		sim:      pong.NewState(variant, rng),
		winScore: winScore,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HasFreeSlot reports whether a public joiner could still be seated.
func (s *Session) HasFreeSlot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateWaiting && (s.near.Empty() || s.far.Empty())
}

// Seat places a player into the first free slot. When the second seat
// fills the session activates. Returns the side taken and whether this
// seat activated the match.
func (s *Session) Seat(p *Player) (pong.Side, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateWaiting {
		return 0, false, ErrSessionFull
	}
	for _, seated := range []*Player{s.near.player, s.far.player} {
		if seated != nil && seated.ID == p.ID {
			return 0, false, ErrAlreadySeated
		}
	}

	var side pong.Side
	switch {
	case s.near.Empty():
		s.near.seat(p)
		side = pong.SideNear
	case s.far.Empty():
		s.far.seat(p)
		side = pong.SideFar
	default:
		return 0, false, ErrSessionFull
	}

	if !s.near.Empty() && !s.far.Empty() {
		s.state = StateActive
		s.startedAt = time.Now()
		return side, true, nil
	}
	return side, false, nil
}

// Players returns the current seat occupants; either may be nil.
func (s *Session) Players() (near, far *Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.near.player, s.far.player
}

// Opponent returns the player seated opposite the given identity.
func (s *Session) Opponent(playerID int64) (*Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.near.Seated(); ok && p.ID == playerID {
		return s.far.Seated()
	}
	if p, ok := s.far.Seated(); ok && p.ID == playerID {
		return s.near.Seated()
	}
	return nil, false
}

func (s *Session) sideOfLocked(playerID int64) (pong.Side, bool) {
	if p, ok := s.near.Seated(); ok && p.ID == playerID {
		return pong.SideNear, true
	}
	if p, ok := s.far.Seated(); ok && p.ID == playerID {
		return pong.SideFar, true
	}
	return 0, false
}

// Move applies directional input: the sign of delta selects up, down or
// stop at the fixed paddle speed. Ignored unless the match is active.
func (s *Session) Move(playerID int64, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return
	}
	side, ok := s.sideOfLocked(playerID)
	if !ok {
		return
	}
	var dy float64
	switch {
	case delta > 0:
		dy = pong.PaddleSpeed
	case delta < 0:
		dy = -pong.PaddleSpeed
	}
	s.sim.SetPaddleVelocity(side, dy)
}

// SetPaddleY applies the absolute positioning input scheme.
func (s *Session) SetPaddleY(playerID int64, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return
	}
	side, ok := s.sideOfLocked(playerID)
	if !ok {
		return
	}
	s.sim.UpdatePaddlePosition(side, y)
}

// TickResult is what one simulation step produced for broadcast and
// win-condition handling.
type TickResult struct {
	Ran      bool
	Snapshot pong.Snapshot
	Near     *Player
	Far      *Player
	Over     bool
	Winner   pong.Side
}

// Tick advances the simulation one step and checks the win threshold.
// Crossing flips the session out of Active under the same lock, so the
// crossing is observed exactly once.
func (s *Session) Tick(deltaMs float64) TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return TickResult{}
	}

	s.sim.Advance(deltaMs)
	res := TickResult{
		Ran:      true,
		Snapshot: s.sim.Snapshot(),
		Near:     s.near.player,
		Far:      s.far.player,
	}

	score := s.sim.Score
	if score.Near >= s.winScore || score.Far >= s.winScore {
		s.state = StateCompleted
		s.endedAt = time.Now()
		res.Over = true
		if score.Near >= s.winScore {
			res.Winner = pong.SideNear
		} else {
			res.Winner = pong.SideFar
		}
	}
	return res
}

// LeaveKind classifies what a departure did to the session.
type LeaveKind int

const (
	// LeaveNotSeated means the identity was not in this session.
	LeaveNotSeated LeaveKind = iota
	// LeaveEmptied cleared the lone waiting seat; nothing to forfeit.
	LeaveEmptied
	// LeaveForfeit ended an active match in the remaining player's favor.
	LeaveForfeit
)

// LeaveResult carries the forfeit outcome when a live match was abandoned.
type LeaveResult struct {
	Kind   LeaveKind
	Winner *Player
	Loser  *Player
	// Score is the recorded final score: the winner's side forced to the
	// win threshold, the leaver keeping what they actually reached.
	Score pong.Score
}

// Leave vacates a player's seat. A waiting session simply empties; an
// active one freezes (Paused) and reports a forfeit for game-over
// handling. Calling again for the same identity is a no-op.
func (s *Session) Leave(playerID int64) LeaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	side, ok := s.sideOfLocked(playerID)
	if !ok {
		return LeaveResult{Kind: LeaveNotSeated}
	}

	switch s.state {
	case StateWaiting:
		s.near.clear()
		s.far.clear()
		s.state = StateDestroyed
		return LeaveResult{Kind: LeaveEmptied}

	case StateActive:
		res := LeaveResult{Kind: LeaveForfeit, Score: s.sim.Score}
		if side == pong.SideNear {
			res.Loser = s.near.player
			res.Winner = s.far.player
			res.Score.Far = s.winScore
			s.near.clear()
		} else {
			res.Loser = s.far.player
			res.Winner = s.near.player
			res.Score.Near = s.winScore
			s.far.clear()
		}
		s.state = StatePaused
		return res

	default:
		// Game-over handling is already in flight; nothing left to forfeit.
		return LeaveResult{Kind: LeaveNotSeated}
	}
}

// finish records the terminal state once game-over handling has resolved
// the outcome.
func (s *Session) finish(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	if s.endedAt.IsZero() {
		s.endedAt = time.Now()
	}
}

// Span returns the match's start and end timestamps.
func (s *Session) Span() (time.Time, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt, s.endedAt
}
