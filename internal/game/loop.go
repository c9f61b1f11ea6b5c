package game

import (
	"context"
	"log/slog"
	"time"
)

// DefaultTickInterval runs the simulation at 60Hz.
const DefaultTickInterval = time.Second / 60

// Loop is the single periodic driver: once per tick it advances every
// active session, broadcasts the resulting snapshot, and hands win
// crossings to game-over handling. The tick source is injectable so tests
// advance simulated time instead of the wall clock.
type Loop struct {
	engine   *Engine
	log      *slog.Logger
	interval time.Duration
	ticks    <-chan time.Time
}

type LoopOption func(*Loop)

// WithInterval changes the tick rate.
func WithInterval(d time.Duration) LoopOption {
	return func(l *Loop) { l.interval = d }
}

// WithTickSource replaces the wall-clock ticker with an external channel.
func WithTickSource(ch <-chan time.Time) LoopOption {
	return func(l *Loop) { l.ticks = ch }
}

func NewLoop(engine *Engine, log *slog.Logger, opts ...LoopOption) *Loop {
	l := &Loop{
		engine:   engine,
		log:      log,
		interval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run ticks until the context is canceled.
func (l *Loop) Run(ctx context.Context) {
	ticks := l.ticks
	if ticks == nil {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		ticks = ticker.C
	}
	deltaMs := float64(l.interval) / float64(time.Millisecond)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			l.Step(deltaMs)
		}
	}
}

// Step advances every active session by one fixed time step. Sessions that
// are waiting, paused or terminal are skipped. A fault inside one session
// is contained to it; every other session still ticks.
func (l *Loop) Step(deltaMs float64) {
	l.engine.Registry().Range(func(s *Session) {
		defer func() {
			if r := recover(); r != nil {
				l.log.Error("session tick panicked",
					slog.String("session", s.ID), slog.Any("panic", r))
			}
		}()

		res := s.Tick(deltaMs)
		if !res.Ran {
			return
		}

		update := updateEvent(res.Snapshot)
		res.Near.Outbox.Send(update)
		res.Far.Outbox.Send(update)

		if res.Over {
			l.engine.completeNatural(s, res)
		}
	})
}
