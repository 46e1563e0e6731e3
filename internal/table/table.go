// Package table is the authoritative model of one tarot tabletop: the draw
// pile, the reserve held out by the category filter, and the card instances
// lying on the canvas.
package table

import (
	"time"

	"github.com/MateoFB/TarotPoetico-Tablero/internal/domain"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/ports"
)

// Card footprint in world units.
const (
	CardWidth  = 120.0
	CardHeight = 210.0
)

// InstanceID identifies one placement. Monotonic per table, so the same card
// definition placed again after a reshuffle gets a fresh identity.
type InstanceID uint64

// PlacedCard is one card instance on the canvas. X/Y anchor the top-left
// corner in world coordinates. Rotation accumulates in degrees without
// wrapping. StackOrder is the render z-order, bumped on every interaction.
type PlacedCard struct {
	domain.Card
	Instance   InstanceID
	X, Y       float64
	Rotation   float64
	FaceUp     bool
	StackOrder int
}

// Table owns pile, reserve and placed cards. Not safe for concurrent use: the
// session loop serializes every access, including deferred reshuffle work.
//
// Invariant: pile + reserve + placed is always the full 78-card catalog with
// no duplicates.
type Table struct {
	style   domain.Style
	filter  domain.Filter
	pile    []domain.Card
	reserve []domain.Card
	placed  []*PlacedCard // ascending stack order; last element renders on top

	rng         domain.RNG
	sched       ports.Scheduler
	settleDelay time.Duration // collect fly-back settle time
	shuffleAnim time.Duration // cosmetic in-place shuffle duration

	pending    ports.Timer // in-flight settle callback, nil when idle
	busy       bool
	collectGen uint64 // bumped per collect; stale settle callbacks check it

	nextInstance InstanceID
	nextStack    int
	version      uint64
}

// New deals a fresh table: catalog shuffled, partitioned by filter, empty
// canvas.
func New(style domain.Style, filter domain.Filter, rng domain.RNG, sched ports.Scheduler, settleDelay, shuffleAnim time.Duration) *Table {
	t := &Table{
		rng:         rng,
		sched:       sched,
		settleDelay: settleDelay,
		shuffleAnim: shuffleAnim,
	}
	t.Reset(style, filter)
	return t
}

// Reset re-deals from a fresh shuffle and clears every gesture-facing flag.
// The universal recovery action: all invariants hold afterwards.
func (t *Table) Reset(style domain.Style, filter domain.Filter) {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.busy = false
	t.style = style
	t.filter = filter
	cards := domain.Catalog()
	domain.Shuffle(cards, t.rng)
	t.pile, t.reserve = domain.Partition(cards, filter)
	t.placed = t.placed[:0]
	t.touch()
}

func (t *Table) Style() domain.Style   { return t.style }
func (t *Table) Filter() domain.Filter { return t.filter }
func (t *Table) PileSize() int         { return len(t.pile) }
func (t *Table) ReserveSize() int      { return len(t.reserve) }
func (t *Table) PlacedCount() int      { return len(t.placed) }

// Busy reports whether a collect/reshuffle settle callback is pending.
func (t *Table) Busy() bool { return t.busy }

// Version increments on every state change; broadcasters use it to skip
// redundant snapshots.
func (t *Table) Version() uint64 { return t.version }

func (t *Table) touch() { t.version++ }

// Placed returns the live instances in ascending stack order. Callers must
// treat the slice as read-only.
func (t *Table) Placed() []*PlacedCard { return t.placed }

// PlaceFromPile draws the front card of the pile and drops it at world (x, y)
// face down with rotation zero, on top of everything. Returns nil when the
// pile is empty or a reshuffle is in flight; drawing then is a no-op, not an
// error.
func (t *Table) PlaceFromPile(x, y float64) *PlacedCard {
	if t.busy || len(t.pile) == 0 {
		return nil
	}
	def := t.pile[0]
	t.pile = t.pile[1:]
	t.nextInstance++
	t.nextStack++
	pc := &PlacedCard{
		Card:       def,
		Instance:   t.nextInstance,
		X:          x,
		Y:          y,
		StackOrder: t.nextStack,
	}
	t.placed = append(t.placed, pc)
	t.touch()
	return pc
}

func (t *Table) find(id InstanceID) (int, *PlacedCard) {
	for i, pc := range t.placed {
		if pc.Instance == id {
			return i, pc
		}
	}
	return -1, nil
}

// Get returns the placed instance, or nil if it left the table.
func (t *Table) Get(id InstanceID) *PlacedCard {
	_, pc := t.find(id)
	return pc
}

// BringToFront bumps the card above everything else and returns it. Nil if
// the instance is gone.
func (t *Table) BringToFront(id InstanceID) *PlacedCard {
	i, pc := t.find(id)
	if pc == nil {
		return nil
	}
	copy(t.placed[i:], t.placed[i+1:])
	t.placed[len(t.placed)-1] = pc
	t.nextStack++
	pc.StackOrder = t.nextStack
	t.touch()
	return pc
}

// MoveTo replaces the card's world position. Absolute, not additive: each
// drag move recomputes from the current pointer, so zoom changes mid-drag
// cannot accumulate error.
func (t *Table) MoveTo(id InstanceID, x, y float64) bool {
	_, pc := t.find(id)
	if pc == nil {
		return false
	}
	pc.X, pc.Y = x, y
	t.touch()
	return true
}

// RotateBy adds a delta to the card's accumulated rotation. The total is
// deliberately unbounded; nothing wraps it to 0-360.
func (t *Table) RotateBy(id InstanceID, deltaDeg float64) bool {
	_, pc := t.find(id)
	if pc == nil {
		return false
	}
	pc.Rotation += deltaDeg
	t.touch()
	return true
}

// Flip toggles the card face.
func (t *Table) Flip(id InstanceID) bool {
	_, pc := t.find(id)
	if pc == nil {
		return false
	}
	pc.FaceUp = !pc.FaceUp
	t.touch()
	return true
}

// CollectAndReshuffle pulls every placed card back into the deck. The placed
// cards first fly to the pile anchor (world target supplied by the caller's
// viewport), face down, rotation reset, above everything; after the settle
// delay the union of pile, reserve and table is shuffled and repartitioned
// under the active filter. With an empty table it degrades to an in-place
// shuffle behind a cosmetic busy window. A second collect while one is
// pending is refused so the fly-back targets cannot be corrupted mid-flight.
func (t *Table) CollectAndReshuffle(targetX, targetY float64) error {
	if t.busy {
		return domain.ErrReshuffleBusy
	}
	t.busy = true
	t.collectGen++
	gen := t.collectGen

	if len(t.placed) == 0 {
		domain.Shuffle(t.pile, t.rng)
		t.touch()
		t.pending = t.sched.AfterFunc(t.shuffleAnim, func() { t.finishShuffle(gen) })
		return nil
	}

	for _, pc := range t.placed {
		t.nextStack++
		pc.X, pc.Y = targetX, targetY
		pc.Rotation = 0
		pc.FaceUp = false
		pc.StackOrder = t.nextStack
	}
	t.touch()
	t.pending = t.sched.AfterFunc(t.settleDelay, func() { t.finishCollect(gen) })
	return nil
}

// finishCollect runs after the settle delay, on the session loop. A timer
// that fired just before Reset stopped it can be delivered late, even after
// a newer collect has started; the generation check keeps the stale callback
// from settling anything but its own collect.
func (t *Table) finishCollect(gen uint64) {
	if !t.busy || gen != t.collectGen {
		return
	}
	all := make([]domain.Card, 0, len(t.pile)+len(t.reserve)+len(t.placed))
	all = append(all, t.pile...)
	all = append(all, t.reserve...)
	for _, pc := range t.placed {
		all = append(all, pc.Card)
	}
	domain.Shuffle(all, t.rng)
	t.pile, t.reserve = domain.Partition(all, t.filter)
	t.placed = t.placed[:0]
	t.clearBusy()
}

// finishShuffle ends the cosmetic busy window of an empty-table collect.
func (t *Table) finishShuffle(gen uint64) {
	if !t.busy || gen != t.collectGen {
		return
	}
	t.clearBusy()
}

func (t *Table) clearBusy() {
	t.busy = false
	t.pending = nil
	t.touch()
}

// SetFilter repartitions the cards not currently on the canvas. Relative
// order inside pile and reserve is preserved: changing the filter never
// reshuffles. Refused while a collect is settling, since the settle callback
// rebuilds both piles.
func (t *Table) SetFilter(f domain.Filter) error {
	if t.busy {
		return domain.ErrReshuffleBusy
	}
	if f == t.filter {
		return nil
	}
	t.filter = f
	avail := make([]domain.Card, 0, len(t.pile)+len(t.reserve))
	avail = append(avail, t.pile...)
	avail = append(avail, t.reserve...)
	t.pile, t.reserve = domain.Partition(avail, f)
	t.touch()
	return nil
}

// SetStyle re-skins the deck. Identity, positions, rotations and faces are
// untouched: asset URLs are resolved from the table's style at snapshot time,
// so every card re-resolves on the next broadcast. Never a re-deal.
func (t *Table) SetStyle(s domain.Style) {
	if s == t.style {
		return
	}
	t.style = s
	t.touch()
}
