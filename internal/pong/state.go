package pong

// Side identifies one of the two paddle positions.
type Side int

const (
	SideNear Side = iota // left, negative x
	SideFar              // right, positive x
)

func (s Side) String() string {
	if s == SideNear {
		return "near"
	}
	return "far"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideNear {
		return SideFar
	}
	return SideNear
}

type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Ball struct {
	Pos    Vector  `json:"pos"`
	Vel    Vector  `json:"vel"`
	Radius float64 `json:"radius"`
}

type Paddle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DY     float64 `json:"dy"`
}

type Score struct {
	Near int `json:"near"`
	Far  int `json:"far"`
}

// Snapshot is the fixed structure broadcast to both players every tick.
// Versioned so clients can reject frames they do not understand.
type Snapshot struct {
	Version int    `json:"v"`
	Ball    Ball   `json:"ball"`
	Near    Paddle `json:"near"`
	Far     Paddle `json:"far"`
	Score   Score  `json:"score"`
}

// SnapshotVersion is bumped whenever a Snapshot field changes meaning.
const SnapshotVersion = 1

type EventKind int

const (
	EventWallBounce EventKind = iota
	EventPaddleBounce
	EventGoal
)

// Event is one collision or scoring occurrence produced by Advance.
type Event struct {
	Kind EventKind
	// Side is the paddle that was hit for EventPaddleBounce, or the side
	// that scored for EventGoal.
	Side Side
}
