package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pokearena/arena/internal/email"
	"github.com/pokearena/arena/internal/input"
	"github.com/pokearena/arena/internal/logging"
	"github.com/pokearena/arena/internal/menu"
	"github.com/pokearena/arena/internal/registry"
	"github.com/pokearena/arena/internal/render"
	"github.com/pokearena/arena/internal/screen"
	"github.com/pokearena/arena/internal/session"
)

// Phase tracks a supervisor through its lifecycle. Transitions are strictly
// forward: Opening -> Active -> Closing -> Closed.
type Phase int

const (
	PhaseOpening Phase = iota
	PhaseActive
	PhaseClosing
	PhaseClosed
)

// String returns the phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseOpening:
		return "Opening"
	case PhaseActive:
		return "Active"
	case PhaseClosing:
		return "Closing"
	case PhaseClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// sendTimeout bounds one verification email delivery attempt.
const sendTimeout = 30 * time.Second

// drainInterval is how often the supervisor flushes a pending lone ESC out
// of the decoder so a bare Escape press is not stuck waiting for more bytes.
const drainInterval = 250 * time.Millisecond

// emailResult is the completion of an asynchronous send, fed back into the
// state machine on the supervisor goroutine.
type emailResult struct {
	address string
	code    string
	err     error
}

// Deps are the process-wide collaborators shared by every supervisor.
type Deps struct {
	Registry *registry.Registry
	Renderer render.Renderer
	Sender   email.Sender
	Machine  *menu.Machine
}

// Supervisor owns one client session end to end: it decodes inbound bytes,
// drives the menu state machine, executes the effects transitions request,
// and renders frames into the connection's outbound channel. All state is
// touched only on the Run goroutine; email delivery is the one operation
// that leaves it, and its result returns through a channel.
type Supervisor struct {
	id    uint64
	conn  *Conn
	deps  Deps
	phase Phase

	st      *session.State
	dec     *input.Decoder
	sink    *screen.Sink
	results chan emailResult

	// genCode is swapped out in tests for a deterministic code
	genCode func() (string, error)
}

// NewSupervisor registers the connection and prepares a session for it.
// The caller must follow up with Run; until then the session exists in the
// registry but has produced no output.
func NewSupervisor(conn *Conn, deps Deps) *Supervisor {
	id := deps.Registry.Register(conn.Outbound)
	return &Supervisor{
		id:      id,
		conn:    conn,
		deps:    deps,
		phase:   PhaseOpening,
		st:      session.New(id),
		dec:     input.NewDecoder(),
		sink:    screen.NewSink(id, conn.Outbound),
		results: make(chan emailResult, 4),
		genCode: email.GenerateCode,
	}
}

// ID returns the registry identity assigned to this session.
func (s *Supervisor) ID() uint64 {
	return s.id
}

// CurrentPhase returns the lifecycle phase the supervisor is in.
func (s *Supervisor) CurrentPhase() Phase {
	return s.phase
}

func (s *Supervisor) setPhase(p Phase) {
	logging.LogSession(s.id, "phase change",
		zap.Stringer("from", s.phase), zap.Stringer("to", p))
	s.phase = p
}

// Run drives the session until the client disconnects, the session quits, or
// ctx is cancelled. It always unregisters the session and closes the outbound
// channel before returning, so the transport writer goroutine is released.
func (s *Supervisor) Run(ctx context.Context) {
	defer s.teardown()

	s.setPhase(PhaseActive)
	logging.LogConnection(s.conn.RemoteAddr, "session active")

	if err := s.redraw(); err != nil {
		return
	}

	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.LogSession(s.id, "server shutdown")
			return

		case <-s.conn.Outbound.Done():
			logging.LogSession(s.id, "outbound closed by transport")
			return

		case data, ok := <-s.conn.Inbound:
			if !ok {
				logging.LogSession(s.id, "client disconnected")
				return
			}
			if s.apply(s.dec.Feed(data)) {
				return
			}

		case vp, ok := <-s.conn.Resizes:
			if !ok {
				continue
			}
			s.deps.Machine.HandleResize(s.st, vp.Cols, vp.Rows)
			if err := s.redraw(); err != nil {
				return
			}

		case res := <-s.results:
			s.deps.Machine.HandleEmailResult(s.st, res.address, res.code, res.err)
			if err := s.redraw(); err != nil {
				return
			}

		case <-ticker.C:
			if s.apply(s.dec.Drain()) {
				return
			}
		}
	}
}

// apply feeds decoded events through the state machine and redraws once at
// the end. It reports true when the session should end.
func (s *Supervisor) apply(events []input.Event) bool {
	if len(events) == 0 {
		return false
	}
	quit := false
	for _, ev := range events {
		if ev.Kind == input.KindResize {
			s.deps.Machine.HandleResize(s.st, ev.Cols, ev.Rows)
			continue
		}
		effect := s.deps.Machine.HandleKey(s.st, ev)
		switch effect.Kind {
		case menu.EffectQuit:
			logging.LogSession(s.id, "quit requested")
			quit = true
		case menu.EffectSendEmail:
			s.dispatchSend(effect.Address)
		case menu.EffectVerifyCode:
			ok := subtle.ConstantTimeCompare(
				[]byte(effect.Submitted), []byte(effect.Expected)) == 1
			s.deps.Machine.HandleVerifyResult(s.st, ok)
		}
		if quit {
			break
		}
	}
	if quit {
		return true
	}
	return s.redraw() != nil
}

// dispatchSend generates a code and mails it off the supervisor goroutine.
// The session keeps handling input while the send is in flight; the outcome
// arrives on s.results.
func (s *Supervisor) dispatchSend(address string) {
	code, err := s.genCode()
	if err != nil {
		// No code, nothing to verify against; report as a failed send.
		s.deps.Machine.HandleEmailResult(s.st, address, "", err)
		return
	}
	logging.LogSession(s.id, "sending verification email", zap.String("address", address))
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		sendErr := s.deps.Sender.Send(ctx, code, address)
		s.results <- emailResult{address: address, code: code, err: sendErr}
	}()
}

// redraw renders the current state into the sink and flushes it as one
// frame. A full outbound channel is tolerated (the frame is dropped, a later
// redraw replaces it); a closed one ends the session.
func (s *Supervisor) redraw() error {
	if err := s.deps.Renderer.Render(s.sink, s.st); err != nil {
		logging.LogSession(s.id, "render failed", zap.Error(err))
		return err
	}
	if err := s.sink.Flush(); err != nil {
		if errors.Is(err, screen.ErrClosed) {
			logging.LogSession(s.id, "flush on closed outbound")
		}
		return err
	}
	return nil
}

// teardown runs the Closing work exactly once, on the Run goroutine. The
// registry entry is removed before the outbound channel closes, so no
// late Broadcast can race a write into a closing channel.
func (s *Supervisor) teardown() {
	s.setPhase(PhaseClosing)
	s.deps.Registry.Unregister(s.id)
	s.conn.Outbound.Close()
	s.setPhase(PhaseClosed)
	logging.LogConnection(s.conn.RemoteAddr, "session closed")
}
