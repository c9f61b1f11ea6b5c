package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopRunsOffInjectedTickSource(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	_, _, aliceOut, bobOut, _ := activeMatch(t, e)

	ticks := make(chan time.Time)
	loop := NewLoop(e, testLogger(), WithTickSource(ticks))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	ticks <- time.Time{}
	ticks <- time.Time{}
	ticks <- time.Time{}

	require.Eventually(t, func() bool {
		return len(aliceOut.byType("update")) >= 3 && len(bobOut.byType("update")) >= 3
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on context cancellation")
	}
}

func TestLoopIsolatesSessionFaults(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	// A healthy match plus a session wired to a panicking outbox.
	_, _, healthyOut, _, _ := activeMatch(t, e)

	bad, _ := newPlayer(10, "bad", 1200)
	badPartner, _ := newPlayer(11, "worse", 1200)
	require.NoError(t, e.JoinQueue(bad, false, true))
	require.NoError(t, e.JoinQueue(badPartner, false, true))
	// Break the pair's outboxes once the match is live.
	bad.Outbox = panicOutbox{}
	badPartner.Outbox = panicOutbox{}

	loop := NewLoop(e, testLogger())
	loop.Step(16.67)

	// The faulty session panicked during broadcast; the healthy one still
	// received its frame.
	require.Len(t, healthyOut.byType("update"), 1)
}

type panicOutbox struct{}

func (panicOutbox) Send(Event) { panic("broken pipe") }
