// Package pong holds the fixed-step simulation for one match: ball
// integration, wall and paddle collisions, goal detection and relaunch.
// All positions live in a small normalized coordinate space rather than
// pixels so the simulation is resolution independent.
package pong

import (
	"math"

	"golang.org/x/exp/rand"
)

const (
	fieldHalfW = 20.0
	fieldHalfH = 16.0

	paddleOffsetX = 14.0
	paddleWidth   = 1.0
	paddleHeight  = 4.0

	ballRadius = 0.5

	// TickMs is the nominal step at 60Hz; velocities are in units per tick.
	TickMs = 1000.0 / 60.0

	// bounceCooldownMs blocks further collisions right after a bounce so a
	// single contact cannot trigger twice across adjacent ticks.
	bounceCooldownMs = 150.0

	paddleSpeedup = 1.1
	// maxDeflection is the steepest angle a paddle edge can impart.
	maxDeflection = 45.0 * math.Pi / 180.0

	// PaddleSpeed is the fixed per-tick speed for directional move input.
	PaddleSpeed = 0.45

	LaunchSpeed = 0.4
	// Launch angles stay inside this band, away from both axes, so a fresh
	// ball never crawls along a wall or ping-pongs horizontally forever.
	minLaunchAngle = 15.0 * math.Pi / 180.0
	maxLaunchAngle = 60.0 * math.Pi / 180.0

	// variantScale grows the board for the large-field variant.
	variantScale = 1.25
)

// State is one match's physical state. It is not safe for concurrent use;
// the owning session serializes access.
type State struct {
	Ball  Ball
	Near  Paddle
	Far   Paddle
	Score Score

	scale      float64
	cooldownMs float64
	rng        *rand.Rand
}

// NewState builds a fresh simulation. The variant flag scales the board.
// The random source drives ball launches and may be seeded for tests.
func NewState(variant bool, rng *rand.Rand) *State {
	scale := 1.0
	if variant {
		scale = variantScale
	}
	s := &State{
		Near: Paddle{
			X:      -paddleOffsetX * scale,
			Width:  paddleWidth,
			Height: paddleHeight * scale,
		},
		Far: Paddle{
			X:      paddleOffsetX * scale,
			Width:  paddleWidth,
			Height: paddleHeight * scale,
		},
		scale: scale,
		rng:   rng,
	}
	s.resetBall()
	return s
}

func (s *State) halfW() float64 { return fieldHalfW * s.scale }
func (s *State) halfH() float64 { return fieldHalfH * s.scale }

// paddleClampY keeps a paddle's center inside the playfield with one unit
// of margin, matching the classic board's ±13 at default scale.
func (s *State) paddleClampY() float64 {
	return s.halfH() - s.Near.Height/2 - 1
}

// Advance integrates the simulation by deltaMs milliseconds and reports
// collision and scoring events in the order they were evaluated. Checks
// run in a fixed order: walls, near paddle, far paddle, goals.
func (s *State) Advance(deltaMs float64) []Event {
	step := deltaMs / TickMs

	s.Ball.Pos.X += s.Ball.Vel.X * step
	s.Ball.Pos.Y += s.Ball.Vel.Y * step
	s.movePaddles(step)

	if s.cooldownMs > 0 {
		s.cooldownMs -= deltaMs
	}

	var events []Event

	// Top and bottom walls, gated by the bounce cooldown.
	if s.cooldownMs <= 0 {
		if s.Ball.Pos.Y+s.Ball.Radius > s.halfH() && s.Ball.Vel.Y > 0 {
			s.Ball.Pos.Y = s.halfH() - s.Ball.Radius
			s.Ball.Vel.Y = -s.Ball.Vel.Y
			s.cooldownMs = bounceCooldownMs
			events = append(events, Event{Kind: EventWallBounce})
		} else if s.Ball.Pos.Y-s.Ball.Radius < -s.halfH() && s.Ball.Vel.Y < 0 {
			s.Ball.Pos.Y = -s.halfH() + s.Ball.Radius
			s.Ball.Vel.Y = -s.Ball.Vel.Y
			s.cooldownMs = bounceCooldownMs
			events = append(events, Event{Kind: EventWallBounce})
		}
	}

	// Paddle hits honor the same cooldown as the walls: no collision of
	// any kind registers while it runs.
	if s.cooldownMs <= 0 {
		if s.hitNearPaddle() {
			s.deflect(&s.Near, 1)
			s.Ball.Pos.X = s.Near.X + s.Near.Width + s.Ball.Radius
			s.cooldownMs = bounceCooldownMs
			events = append(events, Event{Kind: EventPaddleBounce, Side: SideNear})
		} else if s.hitFarPaddle() {
			s.deflect(&s.Far, -1)
			s.Ball.Pos.X = s.Far.X - s.Ball.Radius
			s.cooldownMs = bounceCooldownMs
			events = append(events, Event{Kind: EventPaddleBounce, Side: SideFar})
		}
	}

	// Goals: the leading edge crossing a side boundary scores for the
	// opposite side and relaunches the ball from center.
	if s.Ball.Pos.X-s.Ball.Radius < -s.halfW() {
		s.Score.Far++
		s.resetBall()
		events = append(events, Event{Kind: EventGoal, Side: SideFar})
	} else if s.Ball.Pos.X+s.Ball.Radius > s.halfW() {
		s.Score.Near++
		s.resetBall()
		events = append(events, Event{Kind: EventGoal, Side: SideNear})
	}

	return events
}

// hitNearPaddle reports whether the ball's leading edge is inside the near
// paddle's horizontal extent, moving toward it, and vertically overlapping.
func (s *State) hitNearPaddle() bool {
	if s.Ball.Vel.X >= 0 {
		return false
	}
	edge := s.Ball.Pos.X - s.Ball.Radius
	if edge > s.Near.X+s.Near.Width || edge < s.Near.X {
		return false
	}
	return math.Abs(s.Ball.Pos.Y-s.Near.Y) <= s.Near.Height/2+s.Ball.Radius
}

func (s *State) hitFarPaddle() bool {
	if s.Ball.Vel.X <= 0 {
		return false
	}
	edge := s.Ball.Pos.X + s.Ball.Radius
	if edge < s.Far.X || edge > s.Far.X+s.Far.Width {
		return false
	}
	return math.Abs(s.Ball.Pos.Y-s.Far.Y) <= s.Far.Height/2+s.Ball.Radius
}

// deflect reflects the ball off a paddle: horizontal speed grows by a
// fixed multiplier and the vertical component is derived from where the
// ball struck relative to the paddle center, clamped to the paddle's
// half-height and mapped through the maximum deflection angle.
func (s *State) deflect(p *Paddle, dir float64) {
	s.Ball.Vel.X = dir * math.Abs(s.Ball.Vel.X) * paddleSpeedup

	offset := (s.Ball.Pos.Y - p.Y) / (p.Height / 2)
	offset = math.Max(-1, math.Min(1, offset))
	s.Ball.Vel.Y = offset * math.Tan(maxDeflection) * math.Abs(s.Ball.Vel.X)
}

func (s *State) movePaddles(step float64) {
	clamp := s.paddleClampY()
	for _, p := range []*Paddle{&s.Near, &s.Far} {
		p.Y += p.DY * step
		p.Y = math.Max(-clamp, math.Min(clamp, p.Y))
	}
}

func (s *State) paddle(side Side) *Paddle {
	if side == SideNear {
		return &s.Near
	}
	return &s.Far
}

// UpdatePaddlePosition positions a paddle absolutely, clamped to the
// playfield. Used by the absolute input scheme.
func (s *State) UpdatePaddlePosition(side Side, y float64) {
	clamp := s.paddleClampY()
	s.paddle(side).Y = math.Max(-clamp, math.Min(clamp, y))
}

// SetPaddleVelocity sets a paddle's per-tick vertical velocity. Used by
// the directional input scheme; integration clamps the position each tick.
func (s *State) SetPaddleVelocity(side Side, dy float64) {
	s.paddle(side).DY = dy
}

// resetBall recenters the ball and launches it at the fixed speed along a
// randomized angle inside the launch band, with random direction on both
// axes.
func (s *State) resetBall() {
	angle := minLaunchAngle + s.rng.Float64()*(maxLaunchAngle-minLaunchAngle)
	dirX := float64(s.rng.Intn(2)*2 - 1)
	dirY := float64(s.rng.Intn(2)*2 - 1)

	s.Ball = Ball{
		Radius: ballRadius,
		Vel: Vector{
			X: dirX * LaunchSpeed * math.Cos(angle),
			Y: dirY * LaunchSpeed * math.Sin(angle),
		},
	}
}

// Snapshot copies the current state into the broadcast structure.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Version: SnapshotVersion,
		Ball:    s.Ball,
		Near:    s.Near,
		Far:     s.Far,
		Score:   s.Score,
	}
}

// InBounds reports whether the ball sits strictly inside the extended
// scoring boundary. It only goes false inside the tick a goal is detected,
// and Advance resets the ball before that tick returns.
func (s *State) InBounds() bool {
	return math.Abs(s.Ball.Pos.X) < s.halfW()+s.Ball.Radius
}
