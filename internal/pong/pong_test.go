package pong

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func testState(t *testing.T, variant bool) *State {
	t.Helper()
	return NewState(variant, rand.New(rand.NewSource(42)))
}

func speed(b Ball) float64 {
	return math.Hypot(b.Vel.X, b.Vel.Y)
}

func TestLaunchSpeedAndBand(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		s := NewState(false, rand.New(rand.NewSource(seed)))
		assert.InDelta(t, LaunchSpeed, speed(s.Ball), 1e-9)
		// Never near-horizontal or near-vertical.
		assert.Greater(t, math.Abs(s.Ball.Vel.X), 0.1)
		assert.Greater(t, math.Abs(s.Ball.Vel.Y), 0.05)
		assert.Zero(t, s.Ball.Pos.X)
		assert.Zero(t, s.Ball.Pos.Y)
	}
}

func TestWallBounceInvertsVerticalVelocity(t *testing.T) {
	s := testState(t, false)
	s.Ball.Pos = Vector{X: 0, Y: fieldHalfH - 0.6}
	s.Ball.Vel = Vector{X: 0.1, Y: 0.3}

	events := s.Advance(TickMs)

	require.Len(t, events, 1)
	assert.Equal(t, EventWallBounce, events[0].Kind)
	assert.Negative(t, s.Ball.Vel.Y)
	assert.Less(t, s.Ball.Pos.Y+s.Ball.Radius, fieldHalfH+1e-9)
}

func TestWallBounceCooldownBlocksDoubleTrigger(t *testing.T) {
	s := testState(t, false)
	s.Ball.Pos = Vector{X: 0, Y: fieldHalfH - 0.6}
	s.Ball.Vel = Vector{X: 0.1, Y: 0.3}

	events := s.Advance(TickMs)
	require.Len(t, events, 1)

	// Push the ball back against the wall while the cooldown is live; the
	// contact must not register again.
	s.Ball.Pos.Y = fieldHalfH + 0.1
	s.Ball.Vel.Y = 0.3
	events = s.Advance(TickMs)
	assert.Empty(t, events)
	assert.Positive(t, s.Ball.Vel.Y)
}

func TestPaddleHitBlockedDuringCooldown(t *testing.T) {
	s := testState(t, false)
	s.Near.Y = 0
	s.Ball.Pos = Vector{X: s.Near.X + s.Near.Width + s.Ball.Radius + 0.05, Y: 1.0}
	s.Ball.Vel = Vector{X: -0.3, Y: 0}
	s.cooldownMs = bounceCooldownMs

	events := s.Advance(TickMs)

	assert.Empty(t, events, "no collision of any kind registers during the cooldown")
	assert.Negative(t, s.Ball.Vel.X, "ball keeps traveling toward the goal line")
}

func TestNearPaddleDeflection(t *testing.T) {
	s := testState(t, false)
	s.Near.Y = 0
	// Ball just about to cross the near paddle face, struck above center.
	s.Ball.Pos = Vector{X: s.Near.X + s.Near.Width + s.Ball.Radius + 0.05, Y: 1.0}
	s.Ball.Vel = Vector{X: -0.3, Y: 0}

	events := s.Advance(TickMs)

	require.Len(t, events, 1)
	assert.Equal(t, EventPaddleBounce, events[0].Kind)
	assert.Equal(t, SideNear, events[0].Side)

	// Horizontal reflect with the speed multiplier.
	assert.InDelta(t, 0.3*1.1, s.Ball.Vel.X, 1e-9)
	// Struck above center: deflects upward, bounded by the 45° max angle.
	assert.Positive(t, s.Ball.Vel.Y)
	assert.LessOrEqual(t, s.Ball.Vel.Y, s.Ball.Vel.X+1e-9)
	// Repositioned flush against the paddle face.
	assert.InDelta(t, s.Near.X+s.Near.Width+s.Ball.Radius, s.Ball.Pos.X, 1e-9)
}

func TestFarPaddleDeflectionMirrors(t *testing.T) {
	s := testState(t, false)
	s.Far.Y = 0
	s.Ball.Pos = Vector{X: s.Far.X - s.Ball.Radius - 0.05, Y: -1.0}
	s.Ball.Vel = Vector{X: 0.3, Y: 0}

	events := s.Advance(TickMs)

	require.Len(t, events, 1)
	assert.Equal(t, EventPaddleBounce, events[0].Kind)
	assert.Equal(t, SideFar, events[0].Side)
	assert.InDelta(t, -0.3*1.1, s.Ball.Vel.X, 1e-9)
	assert.Negative(t, s.Ball.Vel.Y)
	assert.InDelta(t, s.Far.X-s.Ball.Radius, s.Ball.Pos.X, 1e-9)
}

func TestPaddleMissScoresOpponent(t *testing.T) {
	s := testState(t, false)
	// Ball heading past the near boundary, far from the paddle.
	s.Near.Y = 10
	s.Ball.Pos = Vector{X: -fieldHalfW + 0.2, Y: -10}
	s.Ball.Vel = Vector{X: -0.4, Y: 0.1}

	events := s.Advance(TickMs)

	require.Len(t, events, 1)
	assert.Equal(t, EventGoal, events[0].Kind)
	assert.Equal(t, SideFar, events[0].Side)
	assert.Equal(t, Score{Near: 0, Far: 1}, s.Score)

	// Fresh launch from center at the configured speed.
	assert.Zero(t, s.Ball.Pos.X)
	assert.Zero(t, s.Ball.Pos.Y)
	assert.InDelta(t, LaunchSpeed, speed(s.Ball), 1e-9)
}

func TestScoreMonotonicAndBallInBounds(t *testing.T) {
	s := testState(t, false)
	prev := s.Score
	for i := 0; i < 5000; i++ {
		s.Advance(TickMs)
		assert.True(t, s.InBounds(), "tick %d: ball escaped at %+v", i, s.Ball.Pos)
		require.GreaterOrEqual(t, s.Score.Near, prev.Near)
		require.GreaterOrEqual(t, s.Score.Far, prev.Far)
		prev = s.Score
	}
	// With both paddles parked the ball must have scored eventually.
	assert.Positive(t, s.Score.Near+s.Score.Far)
}

func TestPaddleVelocityIntegrationClamps(t *testing.T) {
	s := testState(t, false)
	s.Ball.Vel = Vector{} // park the ball
	s.SetPaddleVelocity(SideNear, PaddleSpeed)
	for i := 0; i < 1000; i++ {
		s.Advance(TickMs)
	}
	assert.InDelta(t, s.paddleClampY(), s.Near.Y, 1e-9)

	s.SetPaddleVelocity(SideNear, -PaddleSpeed)
	for i := 0; i < 1000; i++ {
		s.Advance(TickMs)
	}
	assert.InDelta(t, -s.paddleClampY(), s.Near.Y, 1e-9)
}

func TestAbsolutePaddlePositionClamps(t *testing.T) {
	s := testState(t, false)

	s.UpdatePaddlePosition(SideFar, 99)
	assert.InDelta(t, s.paddleClampY(), s.Far.Y, 1e-9)

	s.UpdatePaddlePosition(SideFar, -99)
	assert.InDelta(t, -s.paddleClampY(), s.Far.Y, 1e-9)

	s.UpdatePaddlePosition(SideFar, 3.5)
	assert.InDelta(t, 3.5, s.Far.Y, 1e-9)
}

func TestVariantScalesBoard(t *testing.T) {
	s := testState(t, true)
	assert.InDelta(t, -paddleOffsetX*variantScale, s.Near.X, 1e-9)
	assert.InDelta(t, paddleOffsetX*variantScale, s.Far.X, 1e-9)
	assert.InDelta(t, paddleHeight*variantScale, s.Near.Height, 1e-9)
	assert.InDelta(t, fieldHalfW*variantScale, s.halfW(), 1e-9)
}

func TestSnapshotVersioned(t *testing.T) {
	s := testState(t, false)
	snap := s.Snapshot()
	assert.Equal(t, SnapshotVersion, snap.Version)
	assert.Equal(t, s.Ball, snap.Ball)
	assert.Equal(t, s.Score, snap.Score)
}
