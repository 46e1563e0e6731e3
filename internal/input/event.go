// Package input turns the normalized pointer stream into viewport and table
// mutations: the gesture state machine that disambiguates panning, dragging,
// rotating and tapping from pointer-down alone.
package input

import "time"

// Phase of a pointer's lifecycle.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseMove
	PhaseEnd
)

// Button held during a mouse event. Touch input is normalized to ButtonLeft,
// matching how browsers report the primary touch.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// PointerEvent is the unified mouse/touch shape the controller consumes. For
// touch, X/Y track the first finger; Distance is the inter-finger gap when
// TouchCount is two.
type PointerEvent struct {
	X, Y       float64
	Button     Button
	Touch      bool
	TouchCount int
	Distance   float64
	Phase      Phase
}

// doubleInputWindow suppresses the synthetic mouse events some platforms emit
// after a touch, which would replay the same gesture a second time.
const doubleInputWindow = 500 * time.Millisecond

// Guard drops mouse events arriving within doubleInputWindow of touch input.
type Guard struct {
	now       func() time.Time
	lastTouch time.Time
}

// NewGuard builds a guard; now may be nil for the wall clock.
func NewGuard(now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{now: now}
}

// Admit reports whether ev may reach the controller, recording touch arrival
// times as a side effect.
func (g *Guard) Admit(ev PointerEvent) bool {
	if ev.Touch {
		g.lastTouch = g.now()
		return true
	}
	return g.lastTouch.IsZero() || g.now().Sub(g.lastTouch) >= doubleInputWindow
}
