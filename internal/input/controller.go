package input

import (
	"math"

	"github.com/MateoFB/TarotPoetico-Tablero/internal/table"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/view"
)

// Gesture tunables.
const (
	// WheelSensitivity converts wheel deltaY pixels to zoom delta.
	WheelSensitivity = 0.0015
	// PinchSensitivity converts finger-gap change to zoom delta.
	PinchSensitivity = 0.005
	// StepFactor is the multiplicative +/- zoom control step.
	StepFactor = 1.2

	// Tap thresholds in screen pixels. Touch targets are coarser, so touch
	// gets the more forgiving threshold.
	tapThresholdMouse = 5.0
	tapThresholdTouch = 15.0

	// Rotate handle: a grab circle floating above the card's top edge.
	// Radius is constant on screen; offset is in world units.
	handleRadius = 14.0
	handleOffset = 24.0

	// Draw pile anchor and footprint, fixed in screen space. The pile is
	// viewport chrome, drawn at card size regardless of zoom.
	PileScreenX = 24.0
	PileScreenY = 24.0
	pileWidth   = table.CardWidth
	pileHeight  = table.CardHeight
)

// gestureKind enumerates the mutually exclusive pointer gestures. A single
// tagged value replaces the isDragging/isPanning/isRotating flag soup: two
// gestures being active at once is unrepresentable.
type gestureKind int

const (
	gestureIdle gestureKind = iota
	gesturePanning
	gestureDraggingFromPile
	gestureDraggingCard
	gestureRotating
)

// gesture is the per-pointer-cycle state. Fields below kind are meaningful
// only for the kinds noted; the whole struct resets to zero on pointer-up.
type gesture struct {
	kind     gestureKind
	instance table.InstanceID // DraggingCard, Rotating

	startX, startY float64 // screen position at pointer-down, for the tap test
	lastX, lastY   float64 // Panning: previous pointer, for incremental deltas
	moved          float64 // max displacement from start, screen px
	touch          bool

	offsetX, offsetY float64 // world: DraggingCard pointer-to-card offset; DraggingFromPile half card dims
	pivotX, pivotY   float64 // screen: Rotating pivot (card center at grab time)
	lastAngle        float64 // degrees: Rotating previous pointer angle

	ghostX, ghostY float64 // screen: DraggingFromPile preview position

	pinchDist float64 // previous inter-finger distance
	pinchLive bool
}

// Controller runs one seat's interaction state machine over the shared table.
// The viewport is per-seat; the table is not. Not safe for concurrent use:
// the session loop feeds it one event at a time.
type Controller struct {
	tbl    *table.Table
	vp     view.Viewport
	width  float64
	height float64
	space  bool
	g      gesture
}

// NewController builds a controller with the identity camera and a default
// viewport size until the client reports its own.
func NewController(tbl *table.Table) *Controller {
	return &Controller{tbl: tbl, vp: view.New(), width: 1280, height: 800}
}

// Viewport returns the seat's camera snapshot.
func (c *Controller) Viewport() view.Viewport { return c.vp }

// SetViewportSize records the client's viewport so center-anchored zoom lands
// in the middle of what the client sees.
func (c *Controller) SetViewportSize(w, h float64) {
	if w > 0 && h > 0 {
		c.width, c.height = w, h
	}
}

// SetSpaceHeld tracks the space-bar pan modifier. While held, pointer-down
// pans even over cards.
func (c *Controller) SetSpaceHeld(held bool) { c.space = held }

// Ghost reports the screen position of the card being dragged off the pile,
// if one is.
func (c *Controller) Ghost() (x, y float64, ok bool) {
	if c.g.kind != gestureDraggingFromPile {
		return 0, 0, false
	}
	return c.g.ghostX, c.g.ghostY, true
}

// Wheel applies a wheel zoom anchored at the cursor. Browsers report a
// trackpad pinch as a ctrl-wheel whose deltaY tracks the finger gap, so
// those take the pinch sensitivity instead.
func (c *Controller) Wheel(deltaY, sx, sy float64, ctrl bool) {
	sens := WheelSensitivity
	if ctrl {
		sens = PinchSensitivity
	}
	c.vp = c.vp.ZoomedBy(-deltaY*sens, sx, sy)
}

// ZoomStep applies the discrete +/- controls, anchored at the viewport
// center.
func (c *Controller) ZoomStep(in bool) {
	f := StepFactor
	if !in {
		f = 1 / StepFactor
	}
	c.vp = c.vp.ZoomedAt(c.vp.Zoom*f, c.width/2, c.height/2)
}

// ZoomReset restores the identity camera.
func (c *Controller) ZoomReset() { c.vp = view.New() }

// Handle runs one pointer event through the state machine.
func (c *Controller) Handle(ev PointerEvent) {
	switch ev.Phase {
	case PhaseStart:
		c.pointerDown(ev)
	case PhaseMove:
		c.pointerMove(ev)
	case PhaseEnd:
		c.pointerUp(ev)
	}
}

// pointerDown picks the gesture. Target priority: rotate handle, card body,
// draw pile, background. A down while a gesture is running never transitions,
// which is what makes the states mutually exclusive.
func (c *Controller) pointerDown(ev PointerEvent) {
	if c.g.kind != gestureIdle {
		return
	}

	g := gesture{
		startX: ev.X, startY: ev.Y,
		lastX: ev.X, lastY: ev.Y,
		touch: ev.Touch,
	}

	// Middle button, held space and multi-finger starts always pan, even
	// over a card.
	forcePan := ev.Button == ButtonMiddle || c.space || (ev.Touch && ev.TouchCount > 1)

	if !forcePan {
		if pc := c.hitRotateHandle(ev.X, ev.Y); pc != nil {
			pc = c.tbl.BringToFront(pc.Instance)
			cx, cy := c.cardScreenCenter(pc)
			g.kind = gestureRotating
			g.instance = pc.Instance
			g.pivotX, g.pivotY = cx, cy
			g.lastAngle = angleDeg(ev.X-cx, ev.Y-cy)
			c.g = g
			return
		}
		if pc := c.hitCardBody(ev.X, ev.Y); pc != nil {
			pc = c.tbl.BringToFront(pc.Instance)
			wx, wy := c.vp.ScreenToWorld(ev.X, ev.Y)
			g.kind = gestureDraggingCard
			g.instance = pc.Instance
			g.offsetX, g.offsetY = wx-pc.X, wy-pc.Y
			c.g = g
			return
		}
		if c.hitPile(ev.X, ev.Y) {
			if ev.Button != ButtonLeft || c.tbl.PileSize() == 0 || c.tbl.Busy() {
				return
			}
			g.kind = gestureDraggingFromPile
			g.offsetX, g.offsetY = table.CardWidth/2, table.CardHeight/2
			g.ghostX, g.ghostY = ev.X, ev.Y
			c.g = g
			return
		}
	}

	if ev.Button == ButtonLeft || forcePan {
		g.kind = gesturePanning
		c.g = g
	}
}

func (c *Controller) pointerMove(ev PointerEvent) {
	// Two fingers on the glass: pinch-zoom overrides whatever gesture is
	// running. The gesture itself is untouched and resumes when the second
	// finger lifts.
	if ev.Touch && ev.TouchCount >= 2 {
		if c.g.pinchLive {
			delta := (ev.Distance - c.g.pinchDist) * PinchSensitivity
			c.vp = c.vp.ZoomedBy(delta, c.width/2, c.height/2)
		}
		c.g.pinchDist = ev.Distance
		c.g.pinchLive = true
		return
	}
	if c.g.pinchLive {
		// The finger kept moving while the pinch was live; restart the
		// incremental trackers from here or the resumed gesture jumps by
		// the whole travel accumulated during the pinch.
		c.g.pinchLive = false
		c.g.lastX, c.g.lastY = ev.X, ev.Y
		if c.g.kind == gestureRotating {
			c.g.lastAngle = angleDeg(ev.X-c.g.pivotX, ev.Y-c.g.pivotY)
		}
	}

	if d := math.Hypot(ev.X-c.g.startX, ev.Y-c.g.startY); d > c.g.moved {
		c.g.moved = d
	}

	switch c.g.kind {
	case gesturePanning:
		c.vp = c.vp.PannedBy(ev.X-c.g.lastX, ev.Y-c.g.lastY)
		c.g.lastX, c.g.lastY = ev.X, ev.Y

	case gestureRotating:
		angle := angleDeg(ev.X-c.g.pivotX, ev.Y-c.g.pivotY)
		c.tbl.RotateBy(c.g.instance, shortestDelta(angle-c.g.lastAngle))
		c.g.lastAngle = angle

	case gestureDraggingFromPile:
		c.g.ghostX, c.g.ghostY = ev.X, ev.Y

	case gestureDraggingCard:
		// Absolute placement from the current pointer and current zoom; an
		// additive scheme would accumulate error across mid-drag zooms.
		wx, wy := c.vp.ScreenToWorld(ev.X, ev.Y)
		c.tbl.MoveTo(c.g.instance, wx-c.g.offsetX, wy-c.g.offsetY)
	}
}

func (c *Controller) pointerUp(ev PointerEvent) {
	g := c.g
	c.g = gesture{} // back to Idle defaults no matter which branch runs

	if d := math.Hypot(ev.X-g.startX, ev.Y-g.startY); d > g.moved {
		g.moved = d
	}

	switch g.kind {
	case gestureDraggingFromPile:
		wx, wy := c.vp.ScreenToWorld(ev.X, ev.Y)
		// Drag anchors from the card center, so the definition lands with
		// its center under the pointer. Empty pile aborts silently.
		c.tbl.PlaceFromPile(wx-g.offsetX, wy-g.offsetY)

	case gestureDraggingCard:
		threshold := tapThresholdMouse
		if g.touch {
			threshold = tapThresholdTouch
		}
		if g.moved < threshold {
			// Never left the tap radius: this was a tap, not a drag.
			c.tbl.Flip(g.instance)
		}
	}
}

// --- Hit testing ---

// hitRotateHandle finds the topmost card whose rotate handle covers the
// screen point.
func (c *Controller) hitRotateHandle(sx, sy float64) *table.PlacedCard {
	wx, wy := c.vp.ScreenToWorld(sx, sy)
	r := handleRadius / c.vp.Zoom // constant size on screen
	placed := c.tbl.Placed()
	for i := len(placed) - 1; i >= 0; i-- {
		pc := placed[i]
		lx, ly := cardLocal(pc, wx, wy)
		dx := lx - table.CardWidth/2
		dy := ly + handleOffset
		if dx*dx+dy*dy <= r*r {
			return pc
		}
	}
	return nil
}

// hitCardBody finds the topmost card whose body covers the screen point,
// honoring the card's rotation.
func (c *Controller) hitCardBody(sx, sy float64) *table.PlacedCard {
	wx, wy := c.vp.ScreenToWorld(sx, sy)
	placed := c.tbl.Placed()
	for i := len(placed) - 1; i >= 0; i-- {
		pc := placed[i]
		lx, ly := cardLocal(pc, wx, wy)
		if lx >= 0 && lx <= table.CardWidth && ly >= 0 && ly <= table.CardHeight {
			return pc
		}
	}
	return nil
}

// hitPile tests the deck's fixed screen-space footprint.
func (c *Controller) hitPile(sx, sy float64) bool {
	return sx >= PileScreenX && sx <= PileScreenX+pileWidth &&
		sy >= PileScreenY && sy <= PileScreenY+pileHeight
}

// cardLocal maps a world point into the card's unrotated local frame, origin
// at the card's top-left corner. Rotation pivots on the card center.
func cardLocal(pc *table.PlacedCard, wx, wy float64) (float64, float64) {
	cx := pc.X + table.CardWidth/2
	cy := pc.Y + table.CardHeight/2
	rad := -pc.Rotation * math.Pi / 180
	sin, cos := math.Sincos(rad)
	dx, dy := wx-cx, wy-cy
	return dx*cos - dy*sin + table.CardWidth/2,
		dx*sin + dy*cos + table.CardHeight/2
}

func (c *Controller) cardScreenCenter(pc *table.PlacedCard) (float64, float64) {
	return c.vp.WorldToScreen(pc.X+table.CardWidth/2, pc.Y+table.CardHeight/2)
}

func angleDeg(dx, dy float64) float64 {
	return math.Atan2(dy, dx) * 180 / math.Pi
}

// shortestDelta folds an angle difference into (-180, 180] so a pointer
// crossing the atan2 seam rotates the short way round instead of jumping a
// near-full turn.
func shortestDelta(d float64) float64 {
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}
