package session

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MateoFB/TarotPoetico-Tablero/internal/adapters/assets"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/domain"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/protocol"
)

type zeroRNG struct{}

func (zeroRNG) Intn(int) int { return 0 }

func newTestSession(t *testing.T) *Session {
	t.Helper()
	resolver, err := assets.NewRegistry()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(discard{}, nil))
	s := New("t1", "marseille", domain.FilterAll, zeroRNG{}, resolver, 100*time.Millisecond, 100*time.Millisecond, logger)
	go s.Run()
	t.Cleanup(s.Stop)
	return s
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// recvFrame blocks for the next frame of the given type, skipping others.
func recvFrame(t *testing.T, seat *Seat, msgType string) protocol.Envelope {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case data, ok := <-seat.Frames():
			require.True(t, ok, "frame queue closed while waiting for %q", msgType)
			var env protocol.Envelope
			require.NoError(t, json.Unmarshal(data, &env))
			if env.Type == msgType {
				return env
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q frame", msgType)
		}
	}
}

func tableFrame(t *testing.T, seat *Seat) protocol.TableState {
	t.Helper()
	env := recvFrame(t, seat, protocol.MsgTable)
	var st protocol.TableState
	require.NoError(t, json.Unmarshal(env.Payload, &st))
	return st
}

func seatFrame(t *testing.T, seat *Seat) protocol.SeatState {
	t.Helper()
	env := recvFrame(t, seat, protocol.MsgSeat)
	var st protocol.SeatState
	require.NoError(t, json.Unmarshal(env.Payload, &st))
	return st
}

func pointer(t *testing.T, s *Session, seat *Seat, phase string, x, y float64) {
	t.Helper()
	s.Submit(Incoming{Seat: seat, Env: protocol.MustEnvelope(protocol.MsgPointer, protocol.PointerMsg{
		X: x, Y: y, Phase: phase,
	})})
}

func TestRegister_SendsInitialState(t *testing.T) {
	s := newTestSession(t)
	seat := s.NewSeat()
	s.Register(seat)

	st := tableFrame(t, seat)
	assert.Equal(t, "marseille", st.Style)
	assert.Equal(t, 78, st.PileCount)
	assert.Empty(t, st.Cards)

	seatSt := seatFrame(t, seat)
	assert.Equal(t, 1.0, seatSt.Zoom)
	assert.Nil(t, seatSt.Ghost)
}

func TestPointerStream_DrawsCardAndBroadcasts(t *testing.T) {
	s := newTestSession(t)
	seat := s.NewSeat()
	other := s.NewSeat()
	s.Register(seat)
	s.Register(other)
	tableFrame(t, seat)
	tableFrame(t, other)

	pointer(t, s, seat, "start", 100, 100)
	pointer(t, s, seat, "move", 300, 300)
	pointer(t, s, seat, "end", 300, 300)

	st := tableFrame(t, seat)
	require.Len(t, st.Cards, 1)
	assert.Equal(t, 77, st.PileCount)
	assert.False(t, st.Cards[0].FaceUp)
	assert.NotEmpty(t, st.Cards[0].Front)
	assert.NotEmpty(t, st.Cards[0].Back)

	// The other seat sees the same table without having touched anything.
	otherSt := tableFrame(t, other)
	require.Len(t, otherSt.Cards, 1)
	assert.Equal(t, st.Cards[0].Instance, otherSt.Cards[0].Instance)
}

func TestPileDrag_ReportsGhostToDraggingSeatOnly(t *testing.T) {
	s := newTestSession(t)
	seat := s.NewSeat()
	s.Register(seat)
	tableFrame(t, seat)
	seatFrame(t, seat)

	pointer(t, s, seat, "start", 100, 100)
	st0 := seatFrame(t, seat)
	require.NotNil(t, st0.Ghost)
	assert.Equal(t, 100.0, st0.Ghost.X)

	pointer(t, s, seat, "move", 250, 250)
	st := seatFrame(t, seat)
	require.NotNil(t, st.Ghost)
	assert.Equal(t, 250.0, st.Ghost.X)
	assert.Equal(t, 250.0, st.Ghost.Y)
	assert.NotEmpty(t, st.Ghost.Image)

	pointer(t, s, seat, "end", 250, 250)
	st = seatFrame(t, seat)
	assert.Nil(t, st.Ghost)
}

func TestWheel_UpdatesSeatCameraOnly(t *testing.T) {
	s := newTestSession(t)
	seat := s.NewSeat()
	s.Register(seat)
	tableFrame(t, seat)
	seatFrame(t, seat)

	s.Submit(Incoming{Seat: seat, Env: protocol.MustEnvelope(protocol.MsgWheel, protocol.WheelMsg{
		DeltaY: -400, X: 0, Y: 0,
	})})

	st := seatFrame(t, seat)
	assert.InDelta(t, 1.6, st.Zoom, 1e-9)
}

func TestZoomOps(t *testing.T) {
	s := newTestSession(t)
	seat := s.NewSeat()
	s.Register(seat)
	tableFrame(t, seat)
	seatFrame(t, seat)

	zoom := func(op string) protocol.SeatState {
		s.Submit(Incoming{Seat: seat, Env: protocol.MustEnvelope(protocol.MsgZoom, protocol.ZoomMsg{Op: op})})
		return seatFrame(t, seat)
	}

	st := zoom("in")
	assert.InDelta(t, 1.2, st.Zoom, 1e-9)
	st = zoom("reset")
	assert.Equal(t, 1.0, st.Zoom)
	assert.Equal(t, 0.0, st.PanX)
	st = zoom("out")
	assert.InDelta(t, 1/1.2, st.Zoom, 1e-9)
}

func TestUnknownMessage_SendsError(t *testing.T) {
	s := newTestSession(t)
	seat := s.NewSeat()
	s.Register(seat)
	tableFrame(t, seat)

	s.Submit(Incoming{Seat: seat, Env: protocol.Envelope{Type: "bogus", Payload: json.RawMessage(`{}`)}})

	env := recvFrame(t, seat, protocol.MsgError)
	var msg protocol.ErrorMsg
	require.NoError(t, json.Unmarshal(env.Payload, &msg))
	assert.Contains(t, msg.Message, "bogus")
}

func TestCollect_SettlesAndRestoresPile(t *testing.T) {
	s := newTestSession(t)
	seat := s.NewSeat()
	s.Register(seat)
	tableFrame(t, seat)

	pointer(t, s, seat, "start", 100, 100)
	pointer(t, s, seat, "move", 400, 300)
	pointer(t, s, seat, "end", 400, 300)
	tableFrame(t, seat)

	require.NoError(t, s.Collect())

	// Fly-back phase: the placed card is still on the canvas, heading home.
	st, err := s.Snapshot()
	require.NoError(t, err)
	assert.True(t, st.Busy)
	require.Len(t, st.Cards, 1)

	// After the settle delay the deferred work runs on the loop.
	require.Eventually(t, func() bool {
		st, err := s.Snapshot()
		return err == nil && !st.Busy && st.PileCount == 78
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSetFilter_WhileCollecting(t *testing.T) {
	s := newTestSession(t)
	seat := s.NewSeat()
	s.Register(seat)
	tableFrame(t, seat)

	pointer(t, s, seat, "start", 100, 100)
	pointer(t, s, seat, "move", 400, 300)
	pointer(t, s, seat, "end", 400, 300)
	tableFrame(t, seat)

	require.NoError(t, s.Collect())
	assert.ErrorIs(t, s.SetFilter(domain.FilterMajor), domain.ErrReshuffleBusy)

	require.Eventually(t, func() bool {
		st, err := s.Snapshot()
		return err == nil && !st.Busy
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.SetFilter(domain.FilterMajor))

	st, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "major", st.Filter)
	assert.Equal(t, 22, st.PileCount)
	assert.Equal(t, 56, st.ReserveCount)
}

func TestFrameAfterUnregisterIsDropped(t *testing.T) {
	s := newTestSession(t)
	seat := s.NewSeat()
	other := s.NewSeat()
	s.Register(seat)
	s.Register(other)
	tableFrame(t, other)

	// The read pump can disconnect right after submitting frames; the loop
	// may service the unregister first and must then drop the frames rather
	// than send on the seat's closed queue.
	s.Unregister(seat)
	pointer(t, s, seat, "start", 100, 100)
	pointer(t, s, seat, "move", 300, 300)
	pointer(t, s, seat, "end", 300, 300)

	// The loop survives and the departed seat's input never touched the
	// table.
	st, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 78, st.PileCount)
	assert.Empty(t, st.Cards)
}

func TestStop_ClosesSeatsAndRefusesWork(t *testing.T) {
	s := newTestSession(t)
	seat := s.NewSeat()
	s.Register(seat)
	tableFrame(t, seat)

	s.Stop()

	assert.ErrorIs(t, s.Do(func() error { return nil }), domain.ErrTableClosed)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-seat.Frames():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("frame queue never closed")
		}
	}
}

func TestManager_CreateGetShutdown(t *testing.T) {
	resolver, err := assets.NewRegistry()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(discard{}, nil))
	m := NewManager(resolver, func() domain.RNG { return zeroRNG{} }, time.Millisecond, time.Millisecond, logger)

	s := m.Create("marseille", domain.FilterAll)
	require.NotEmpty(t, s.ID)

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = m.Get("missing")
	assert.False(t, ok)

	m.Shutdown()
	assert.ErrorIs(t, s.Do(func() error { return nil }), domain.ErrTableClosed)
	_, ok = m.Get(s.ID)
	assert.False(t, ok)
}
