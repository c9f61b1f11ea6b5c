package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func testSession(private, variant bool) *Session {
	return newSession(private, variant, DefaultWinScore, rand.New(rand.NewSource(1)))
}

func TestRegistryBindAndLookup(t *testing.T) {
	r := NewRegistry()
	s := testSession(false, false)
	r.Add(s, 1)

	got, ok := r.SessionFor(1)
	require.True(t, ok)
	assert.Same(t, s, got)

	r.Bind(2, s.ID)
	got, ok = r.SessionFor(2)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = r.SessionFor(3)
	assert.False(t, ok)
}

func TestRegistryUnbindDropsOnlyTheIndexEntry(t *testing.T) {
	r := NewRegistry()
	s := testSession(false, false)
	r.Add(s, 1)
	r.Bind(2, s.ID)

	r.Unbind(2)
	_, ok := r.SessionFor(2)
	assert.False(t, ok)

	// The session itself and other bindings are untouched.
	assert.Equal(t, 1, r.Len())
	got, ok := r.SessionFor(1)
	require.True(t, ok)
	assert.Same(t, s, got)
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	s := testSession(false, false)
	r.Add(s, 1)
	r.Bind(2, s.ID)

	r.Remove(s.ID)
	assert.Equal(t, 0, r.Len())
	_, ok := r.SessionFor(1)
	assert.False(t, ok, "removal drops every bound identity")
	_, ok = r.SessionFor(2)
	assert.False(t, ok)

	r.Remove(s.ID) // second removal is a no-op
	r.Remove("never-existed")
	assert.Equal(t, 0, r.Len())
}

func TestFirstFitSkipsPrivateAndMismatchedVariant(t *testing.T) {
	r := NewRegistry()

	private := testSession(true, false)
	private.Seat(&Player{ID: 1, Name: "a", Outbox: &recorder{}})
	r.Add(private, 1)

	variant := testSession(false, true)
	variant.Seat(&Player{ID: 2, Name: "b", Outbox: &recorder{}})
	r.Add(variant, 2)

	_, ok := r.FirstFit(false)
	assert.False(t, ok, "private and variant sessions are not candidates")

	public := testSession(false, false)
	public.Seat(&Player{ID: 3, Name: "c", Outbox: &recorder{}})
	r.Add(public, 3)

	got, ok := r.FirstFit(false)
	require.True(t, ok)
	assert.Same(t, public, got)
}

func TestFirstFitSkipsFullSessions(t *testing.T) {
	r := NewRegistry()
	s := testSession(false, false)
	s.Seat(&Player{ID: 1, Name: "a", Outbox: &recorder{}})
	s.Seat(&Player{ID: 2, Name: "b", Outbox: &recorder{}})
	r.Add(s, 1)
	r.Bind(2, s.ID)

	_, ok := r.FirstFit(false)
	assert.False(t, ok)
}

func TestSessionNeverSeatsThirdIdentity(t *testing.T) {
	s := testSession(false, false)
	_, _, err := s.Seat(&Player{ID: 1, Name: "a", Outbox: &recorder{}})
	require.NoError(t, err)
	_, activated, err := s.Seat(&Player{ID: 2, Name: "b", Outbox: &recorder{}})
	require.NoError(t, err)
	assert.True(t, activated)

	_, _, err = s.Seat(&Player{ID: 3, Name: "c", Outbox: &recorder{}})
	assert.ErrorIs(t, err, ErrSessionFull)
}

func TestSessionRejectsDuplicateIdentity(t *testing.T) {
	s := testSession(false, false)
	p := &Player{ID: 1, Name: "a", Outbox: &recorder{}}
	_, _, err := s.Seat(p)
	require.NoError(t, err)
	_, _, err = s.Seat(p)
	assert.ErrorIs(t, err, ErrAlreadySeated)
}
