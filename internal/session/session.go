// Package session runs one event loop per table. The loop is the only
// goroutine that touches the table and the seat controllers, so the core
// stays lock-free: handlers run to completion one at a time, and deferred
// reshuffle work re-enters through the same loop.
package session

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/MateoFB/TarotPoetico-Tablero/internal/domain"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/input"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/ports"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/protocol"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/table"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/view"
)

const sendBuffer = 256

// Seat is one connected client: its own camera and gesture machine over the
// shared table, plus the outbound frame queue its write pump drains.
type Seat struct {
	ctrl  *input.Controller
	guard *input.Guard
	send  chan []byte
}

// Frames is the outbound queue. Closed when the seat leaves or the session
// stops.
func (s *Seat) Frames() <-chan []byte { return s.send }

// Incoming pairs a decoded frame with the seat that sent it.
type Incoming struct {
	Seat *Seat
	Env  protocol.Envelope
}

// Session owns one table and serializes every mutation through its run loop.
type Session struct {
	ID string

	tbl      *table.Table
	resolver ports.AssetResolver
	logger   *slog.Logger

	register   chan *Seat
	unregister chan *Seat
	incoming   chan Incoming
	commands   chan command

	quit     chan struct{}
	stopOnce sync.Once

	seats     map[*Seat]bool
	broadcast uint64 // table version last broadcast
}

type command struct {
	fn   func() error
	done chan error
}

// New builds a session and deals its table. Call Run to start the loop.
func New(id string, style domain.Style, filter domain.Filter, rng domain.RNG, resolver ports.AssetResolver, settleDelay, shuffleAnim time.Duration, logger *slog.Logger) *Session {
	s := &Session{
		ID:         id,
		resolver:   resolver,
		logger:     logger.With("table", id),
		register:   make(chan *Seat),
		unregister: make(chan *Seat),
		incoming:   make(chan Incoming, 256),
		commands:   make(chan command),
		quit:       make(chan struct{}),
		seats:      make(map[*Seat]bool),
	}
	s.tbl = table.New(style, filter, rng, loopScheduler{s}, settleDelay, shuffleAnim)
	return s
}

// Run processes events until Stop. One event at a time: this loop is the
// implicit lock around the table.
func (s *Session) Run() {
	for {
		select {
		case seat := <-s.register:
			s.seats[seat] = true
			s.sendTo(seat, protocol.MustEnvelope(protocol.MsgTable, s.tableState()))
			s.sendSeatState(seat)

		case seat := <-s.unregister:
			if s.seats[seat] {
				delete(s.seats, seat)
				close(seat.send)
			}

		case msg := <-s.incoming:
			// The read pump can submit a frame and then unregister before
			// the loop services it; a frame from a departed seat would send
			// on its closed queue. Drop them.
			if s.seats[msg.Seat] {
				s.handle(msg)
				s.syncTable()
			}

		case cmd := <-s.commands:
			cmd.done <- cmd.fn()
			s.syncTable()

		case <-s.quit:
			for seat := range s.seats {
				close(seat.send)
			}
			return
		}
	}
}

// Stop shuts the loop down and disconnects every seat.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
}

// NewSeat attaches a fresh camera and gesture machine for one connection.
func (s *Session) NewSeat() *Seat {
	return &Seat{
		ctrl:  input.NewController(s.tbl),
		guard: input.NewGuard(nil),
		send:  make(chan []byte, sendBuffer),
	}
}

// Register adds the seat to the loop; the seat immediately receives the
// current table and its seat state.
func (s *Session) Register(seat *Seat) {
	select {
	case s.register <- seat:
	case <-s.quit:
	}
}

// Unregister detaches the seat and closes its frame queue.
func (s *Session) Unregister(seat *Seat) {
	select {
	case s.unregister <- seat:
	case <-s.quit:
	}
}

// Submit queues one decoded client frame for the loop.
func (s *Session) Submit(msg Incoming) {
	select {
	case s.incoming <- msg:
	case <-s.quit:
	}
}

// Do runs fn on the loop and waits for it. This is how the HTTP surface and
// deferred timers touch the table without racing the pointer stream.
func (s *Session) Do(fn func() error) error {
	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case s.commands <- cmd:
	case <-s.quit:
		return domain.ErrTableClosed
	}
	select {
	case err := <-cmd.done:
		return err
	case <-s.quit:
		return domain.ErrTableClosed
	}
}

// --- Table-level operations (REST surface) ---

// Snapshot returns the shared table state.
func (s *Session) Snapshot() (protocol.TableState, error) {
	var st protocol.TableState
	err := s.Do(func() error {
		st = s.tableState()
		return nil
	})
	return st, err
}

// Collect pulls all placed cards back into the deck and reshuffles. The
// fly-back targets the pile anchor under the identity camera; seats watching
// through other cameras still see every card converge on the pile.
func (s *Session) Collect() error {
	return s.Do(func() error {
		wx, wy := view.New().ScreenToWorld(input.PileScreenX, input.PileScreenY)
		return s.tbl.CollectAndReshuffle(wx, wy)
	})
}

// SetFilter repartitions pile and reserve.
func (s *Session) SetFilter(f domain.Filter) error {
	return s.Do(func() error { return s.tbl.SetFilter(f) })
}

// SetStyle re-skins the deck in place.
func (s *Session) SetStyle(style domain.Style) error {
	return s.Do(func() error {
		s.tbl.SetStyle(style)
		return nil
	})
}

// Reset re-deals the table from scratch.
func (s *Session) Reset(style domain.Style, filter domain.Filter) error {
	return s.Do(func() error {
		s.tbl.Reset(style, filter)
		return nil
	})
}

// --- Loop internals ---

func (s *Session) handle(msg Incoming) {
	seat := msg.Seat
	switch msg.Env.Type {
	case protocol.MsgHello:
		var m protocol.HelloMsg
		if err := json.Unmarshal(msg.Env.Payload, &m); err != nil {
			s.sendError(seat, "invalid hello")
			return
		}
		seat.ctrl.SetViewportSize(m.Width, m.Height)

	case protocol.MsgPointer:
		var m protocol.PointerMsg
		if err := json.Unmarshal(msg.Env.Payload, &m); err != nil {
			s.sendError(seat, "invalid pointer")
			return
		}
		ev, ok := pointerEvent(m)
		if !ok {
			s.sendError(seat, "invalid pointer phase "+m.Phase)
			return
		}
		if seat.guard.Admit(ev) {
			seat.ctrl.Handle(ev)
		}

	case protocol.MsgWheel:
		var m protocol.WheelMsg
		if err := json.Unmarshal(msg.Env.Payload, &m); err != nil {
			s.sendError(seat, "invalid wheel")
			return
		}
		seat.ctrl.Wheel(m.DeltaY, m.X, m.Y, m.CtrlKey)

	case protocol.MsgKey:
		var m protocol.KeyMsg
		if err := json.Unmarshal(msg.Env.Payload, &m); err != nil {
			s.sendError(seat, "invalid key")
			return
		}
		if m.Key == "space" {
			seat.ctrl.SetSpaceHeld(m.Down)
		}

	case protocol.MsgZoom:
		var m protocol.ZoomMsg
		if err := json.Unmarshal(msg.Env.Payload, &m); err != nil {
			s.sendError(seat, "invalid zoom")
			return
		}
		switch m.Op {
		case "in":
			seat.ctrl.ZoomStep(true)
		case "out":
			seat.ctrl.ZoomStep(false)
		case "reset":
			seat.ctrl.ZoomReset()
		default:
			s.sendError(seat, "invalid zoom op "+m.Op)
			return
		}

	default:
		s.sendError(seat, "unknown message type "+msg.Env.Type)
		return
	}
	s.sendSeatState(seat)
}

func pointerEvent(m protocol.PointerMsg) (input.PointerEvent, bool) {
	ev := input.PointerEvent{
		X:          m.X,
		Y:          m.Y,
		Button:     input.Button(m.Button),
		Touch:      m.Touch,
		TouchCount: m.TouchCount,
		Distance:   m.Distance,
	}
	switch m.Phase {
	case "start":
		ev.Phase = input.PhaseStart
	case "move":
		ev.Phase = input.PhaseMove
	case "end":
		ev.Phase = input.PhaseEnd
	default:
		return input.PointerEvent{}, false
	}
	return ev, true
}

// syncTable broadcasts the table when its version moved since the last
// broadcast.
func (s *Session) syncTable() {
	if s.tbl.Version() == s.broadcast {
		return
	}
	s.broadcast = s.tbl.Version()
	env := protocol.MustEnvelope(protocol.MsgTable, s.tableState())
	for seat := range s.seats {
		s.sendTo(seat, env)
	}
}

func (s *Session) tableState() protocol.TableState {
	style := s.tbl.Style()
	placed := s.tbl.Placed()
	cards := make([]protocol.PlacedState, len(placed))
	for i, pc := range placed {
		cards[i] = protocol.PlacedState{
			Instance:    uint64(pc.Instance),
			ID:          pc.ID,
			Name:        pc.DisplayName,
			X:           pc.X,
			Y:           pc.Y,
			Rotation:    pc.Rotation,
			FaceUp:      pc.FaceUp,
			StackOrder:  pc.StackOrder,
			Front:       s.resolver.CardURL(pc.Card, style, domain.FaceFront),
			Back:        s.resolver.CardURL(pc.Card, style, domain.FaceBack),
			Placeholder: s.resolver.PlaceholderURL(pc.Card),
		}
	}
	return protocol.TableState{
		Style:        string(style),
		Filter:       string(s.tbl.Filter()),
		PileCount:    s.tbl.PileSize(),
		ReserveCount: s.tbl.ReserveSize(),
		Busy:         s.tbl.Busy(),
		PileBack:     s.resolver.CardURL(domain.Card{}, style, domain.FaceBack),
		Cards:        cards,
	}
}

func (s *Session) sendSeatState(seat *Seat) {
	vp := seat.ctrl.Viewport()
	st := protocol.SeatState{PanX: vp.PanX, PanY: vp.PanY, Zoom: vp.Zoom}
	if gx, gy, ok := seat.ctrl.Ghost(); ok {
		st.Ghost = &protocol.GhostState{
			X:     gx,
			Y:     gy,
			Image: s.resolver.CardURL(domain.Card{}, s.tbl.Style(), domain.FaceBack),
		}
	}
	s.sendTo(seat, protocol.MustEnvelope(protocol.MsgSeat, st))
}

func (s *Session) sendError(seat *Seat, message string) {
	s.sendTo(seat, protocol.MustEnvelope(protocol.MsgError, protocol.ErrorMsg{Message: message}))
}

func (s *Session) sendTo(seat *Seat, env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		s.logger.Error("marshal frame", "error", err)
		return
	}
	select {
	case seat.send <- data:
	default:
		s.logger.Warn("seat buffer full, dropping frame", "type", env.Type)
	}
}

// loopScheduler defers table callbacks back through the session loop, so the
// settle timer never touches the table from its own goroutine.
type loopScheduler struct {
	s *Session
}

func (ls loopScheduler) AfterFunc(d time.Duration, fn func()) ports.Timer {
	return time.AfterFunc(d, func() {
		if err := ls.s.Do(func() error { fn(); return nil }); err != nil {
			ls.s.logger.Debug("deferred table work dropped", "error", err)
		}
	})
}
