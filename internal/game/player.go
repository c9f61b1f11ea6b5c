package game

// Outbox delivers events to one player's connection. Implementations must
// not block; the connection owns its own lifetime and a session only holds
// a weak reference to it through this interface.
type Outbox interface {
	Send(Event)
}

// Player is one seated identity: a stable ID, a display name, the outbox
// of its connection, and the rating snapshot taken when the player joined.
// The snapshot is what the match's Elo delta is computed from; it is never
// re-read mid-match.
type Player struct {
	ID     int64
	Name   string
	Rating int
	Outbox Outbox
}

// Slot is one of a session's two seats: empty, or seated with a player.
type Slot struct {
	player *Player
}

func (s Slot) Empty() bool { return s.player == nil }

// Seated returns the occupant, or false for an empty slot.
func (s Slot) Seated() (*Player, bool) {
	return s.player, s.player != nil
}

func (s *Slot) seat(p *Player) { s.player = p }
func (s *Slot) clear()         { s.player = nil }
