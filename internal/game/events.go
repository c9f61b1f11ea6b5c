package game

import "github.com/WoKonings/ft-transcendence/internal/pong"

// Event is one outbound message addressed to a player's connection.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type OpponentJoined struct {
	Opponent string `json:"opponent"`
}

type OpponentLeft struct {
	Opponent string `json:"opponent"`
}

type GameInvite struct {
	From      string `json:"from"`
	SessionID string `json:"session_id"`
}

// UserStatus is broadcast to everyone when a player's presence changes.
type UserStatus struct {
	ID      int64 `json:"id"`
	InQueue bool  `json:"in_queue"`
	InGame  bool  `json:"in_game"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

// Notice is a plain informational message, like the connect greeting.
type Notice struct {
	Message string `json:"message"`
}

func opponentJoinedEvent(name string) Event {
	return Event{Type: "opponentJoined", Data: OpponentJoined{Opponent: name}}
}

func opponentLeftEvent(name string) Event {
	return Event{Type: "opponentLeft", Data: OpponentLeft{Opponent: name}}
}

func updateEvent(snap pong.Snapshot) Event {
	return Event{Type: "update", Data: snap}
}

func gameWonEvent() Event  { return Event{Type: "gameWon"} }
func gameLostEvent() Event { return Event{Type: "gameLost"} }

func gameInviteEvent(from, sessionID string) Event {
	return Event{Type: "gameInvite", Data: GameInvite{From: from, SessionID: sessionID}}
}

// ErrorEvent reports a malformed command back to the player it came from.
func ErrorEvent(msg string) Event {
	return Event{Type: "error", Data: ErrorMessage{Message: msg}}
}
