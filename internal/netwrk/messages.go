package netwrk

import "encoding/json"

// Command is the inbound envelope from a client connection. The payload
// stays raw until the type is known, then decodes into the matching
// struct.
type Command struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type JoinQueue struct {
	Private bool `json:"private"`
	Variant bool `json:"variant"`
}

type Move struct {
	Delta float64 `json:"delta"`
}

type PaddlePos struct {
	Y float64 `json:"y"`
}

type Invite struct {
	Target string `json:"target"`
}

type Accept struct {
	SessionID string `json:"session_id"`
}
