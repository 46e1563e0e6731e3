// Package protocol defines the JSON frames exchanged over a table's
// WebSocket. Clients stream normalized input; the server answers with table
// snapshots (shared) and seat state (per connection).
package protocol

// Client to server.
const (
	MsgHello   = "hello"
	MsgPointer = "pointer"
	MsgWheel   = "wheel"
	MsgKey     = "key"
	MsgZoom    = "zoom"
)

// Server to client.
const (
	MsgTable = "table"
	MsgSeat  = "seat"
	MsgError = "error"
)

// HelloMsg reports the client's viewport size, repeated on resize.
type HelloMsg struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PointerMsg is one normalized pointer/touch sample. X/Y track the first
// finger; Distance carries the inter-finger gap when TouchCount is two.
type PointerMsg struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Button     int     `json:"button,omitempty"`
	Touch      bool    `json:"touch,omitempty"`
	TouchCount int     `json:"touchCount,omitempty"`
	Distance   float64 `json:"distance,omitempty"`
	Phase      string  `json:"phase"` // start | move | end
}

// WheelMsg is a mouse wheel / trackpad sample at a cursor position. CtrlKey
// marks the ctrl-wheel events browsers synthesize for trackpad pinches.
type WheelMsg struct {
	DeltaY  float64 `json:"deltaY"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	CtrlKey bool    `json:"ctrlKey,omitempty"`
}

// KeyMsg tracks modifier keys; only "space" is meaningful today.
type KeyMsg struct {
	Key  string `json:"key"`
	Down bool   `json:"down"`
}

// ZoomMsg carries the discrete zoom controls.
type ZoomMsg struct {
	Op string `json:"op"` // in | out | reset
}

// ErrorMsg reports a refused command.
type ErrorMsg struct {
	Message string `json:"message"`
}

// TableState is the shared snapshot broadcast to every seat.
type TableState struct {
	Style        string        `json:"style"`
	Filter       string        `json:"filter"`
	PileCount    int           `json:"pileCount"`
	ReserveCount int           `json:"reserveCount"`
	Busy         bool          `json:"busy"`
	PileBack     string        `json:"pileBack,omitempty"` // back image of the current style
	Cards        []PlacedState `json:"cards"`
}

// PlacedState is one card instance on the canvas, with both face URLs
// resolved so a client can flip without a round trip.
type PlacedState struct {
	Instance    uint64  `json:"instance"`
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Rotation    float64 `json:"rotation"`
	FaceUp      bool    `json:"faceUp"`
	StackOrder  int     `json:"stackOrder"`
	Front       string  `json:"front"`
	Back        string  `json:"back"`
	Placeholder string  `json:"placeholder"`
}

// SeatState is the per-connection view: the camera and, mid-pile-drag, the
// ghost preview following the pointer.
type SeatState struct {
	PanX  float64     `json:"panX"`
	PanY  float64     `json:"panY"`
	Zoom  float64     `json:"zoom"`
	Ghost *GhostState `json:"ghost,omitempty"`
}

// GhostState is the screen-space preview of a card being dragged off the
// pile. No world state exists for it yet.
type GhostState struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Image string  `json:"image"`
}
