package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pokearena/arena/internal/email"
	"github.com/pokearena/arena/internal/menu"
	"github.com/pokearena/arena/internal/registry"
	"github.com/pokearena/arena/internal/render"
	"github.com/pokearena/arena/internal/screen"
	"github.com/pokearena/arena/internal/session"
)

const frameTimeout = 2 * time.Second

type sentMail struct {
	code    string
	address string
}

// fakeSender records deliveries instead of talking SMTP.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, code, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{code: code, address: address})
	return f.err
}

func (f *fakeSender) deliveries() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

var _ email.Sender = (*fakeSender)(nil)

type testConn struct {
	inbound chan []byte
	resizes chan session.Viewport
	out     *screen.Outbound
	sup     *Supervisor
	done    chan struct{}
}

func testDeps(sender email.Sender) Deps {
	return Deps{
		Registry: registry.New(),
		Renderer: render.NewFrame(),
		Sender:   sender,
		Machine:  menu.NewMachine(false),
	}
}

// startSession spins up a supervisor over in-memory channels with a
// deterministic verification code. A genCode override must be passed here,
// before the supervisor goroutine starts.
func startSession(t *testing.T, deps Deps, genCode ...func() (string, error)) *testConn {
	t.Helper()
	tc := &testConn{
		inbound: make(chan []byte, 16),
		resizes: make(chan session.Viewport, 4),
		out:     screen.NewOutbound(64),
		done:    make(chan struct{}),
	}
	tc.sup = NewSupervisor(&Conn{
		RemoteAddr: "test:0",
		Inbound:    tc.inbound,
		Resizes:    tc.resizes,
		Outbound:   tc.out,
	}, deps)
	tc.sup.genCode = func() (string, error) { return "123456", nil }
	if len(genCode) > 0 {
		tc.sup.genCode = genCode[0]
	}
	go func() {
		tc.sup.Run(context.Background())
		close(tc.done)
	}()
	t.Cleanup(func() {
		select {
		case <-tc.done:
		default:
			close(tc.inbound)
			<-tc.done
		}
	})
	return tc
}

// waitFrame reads outbound frames until one contains substr.
func waitFrame(out *screen.Outbound, substr string) (string, bool) {
	deadline := time.After(frameTimeout)
	for {
		select {
		case frame := <-out.Recv():
			if strings.Contains(string(frame), substr) {
				return string(frame), true
			}
		case <-deadline:
			return "", false
		}
	}
}

func mustFrame(t *testing.T, out *screen.Outbound, substr string) string {
	t.Helper()
	frame, ok := waitFrame(out, substr)
	if !ok {
		t.Fatalf("no frame containing %q within %v", substr, frameTimeout)
	}
	return frame
}

func waitDone(t *testing.T, tc *testConn) {
	t.Helper()
	select {
	case <-tc.done:
	case <-time.After(frameTimeout):
		t.Fatal("supervisor did not stop")
	}
}

func TestSupervisorInitialFrame(t *testing.T) {
	deps := testDeps(&fakeSender{})
	tc := startSession(t, deps)

	frame := mustFrame(t, tc.out, "Email:")
	if !strings.Contains(frame, "Send Verification Email") {
		t.Errorf("initial frame missing email menu, got:\n%s", frame)
	}
	if deps.Registry.Len() != 1 {
		t.Errorf("Registry.Len() = %d, want 1", deps.Registry.Len())
	}
}

func TestSupervisorCtrlQEndsSession(t *testing.T) {
	deps := testDeps(&fakeSender{})
	tc := startSession(t, deps)
	mustFrame(t, tc.out, "Email:")

	tc.inbound <- []byte{0x11} // Ctrl+Q
	waitDone(t, tc)

	if deps.Registry.Len() != 0 {
		t.Errorf("Registry.Len() = %d after quit, want 0", deps.Registry.Len())
	}
	if got := tc.sup.CurrentPhase(); got != PhaseClosed {
		t.Errorf("CurrentPhase() = %v, want %v", got, PhaseClosed)
	}
	select {
	case <-tc.out.Done():
	default:
		t.Error("outbound channel still open after quit")
	}
}

func TestSupervisorQFromMainMenuEndsSession(t *testing.T) {
	deps := testDeps(&fakeSender{})
	tc := startSession(t, deps)
	mustFrame(t, tc.out, "Email:")

	// Leave editing, back out to the main menu, then q
	tc.inbound <- []byte{0x1b}
	tc.inbound <- []byte{0x1b}
	mustFrame(t, tc.out, "Main Menu")

	tc.inbound <- []byte("q")
	waitDone(t, tc)

	if deps.Registry.Len() != 0 {
		t.Errorf("Registry.Len() = %d after q quit, want 0", deps.Registry.Len())
	}
}

func TestSupervisorDisconnectCleansUp(t *testing.T) {
	deps := testDeps(&fakeSender{})
	tc := startSession(t, deps)
	mustFrame(t, tc.out, "Email:")

	close(tc.inbound)
	waitDone(t, tc)

	if deps.Registry.Len() != 0 {
		t.Errorf("Registry.Len() = %d after disconnect, want 0", deps.Registry.Len())
	}
}

func TestSupervisorEmailVerificationFlow(t *testing.T) {
	sender := &fakeSender{}
	deps := testDeps(sender)
	tc := startSession(t, deps)
	mustFrame(t, tc.out, "Email:")

	// Type the address and submit it
	tc.inbound <- []byte("a@b.com\r")
	mustFrame(t, tc.out, "Code (0/3 attempts used):")

	sent := sender.deliveries()
	if len(sent) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(sent))
	}
	if sent[0] != (sentMail{code: "123456", address: "a@b.com"}) {
		t.Errorf("delivery = %+v", sent[0])
	}

	// Wrong code costs a strike
	tc.inbound <- []byte("000000\r")
	mustFrame(t, tc.out, "Incorrect code (1/3 attempts)")

	// Correct code logs in
	tc.inbound <- []byte("123456\r")
	frame := mustFrame(t, tc.out, "Logged in as a@b.com")
	if !strings.Contains(frame, "Main Menu") {
		t.Errorf("post-login frame not on main menu:\n%s", frame)
	}
}

func TestSupervisorThirdStrikeRestartsAuth(t *testing.T) {
	sender := &fakeSender{}
	deps := testDeps(sender)
	tc := startSession(t, deps)
	mustFrame(t, tc.out, "Email:")

	tc.inbound <- []byte("a@b.com\r")
	mustFrame(t, tc.out, "Code (0/3")

	tc.inbound <- []byte("000000\r")
	mustFrame(t, tc.out, "Incorrect code (1/3 attempts)")
	tc.inbound <- []byte("000000\r")
	mustFrame(t, tc.out, "Incorrect code (2/3 attempts)")
	tc.inbound <- []byte("000000\r")
	frame := mustFrame(t, tc.out, "Too many failed attempts")
	if !strings.Contains(frame, "Email:") {
		t.Errorf("third strike should restart email entry:\n%s", frame)
	}
}

func TestSupervisorResizeClipsFrames(t *testing.T) {
	deps := testDeps(&fakeSender{})
	tc := startSession(t, deps)
	mustFrame(t, tc.out, "Email:")

	tc.resizes <- session.Viewport{Cols: 100, Rows: 5}

	frame := mustFrame(t, tc.out, "Email:")
	if got := strings.Count(frame, "\r\n"); got > 4 {
		t.Errorf("frame has %d line breaks for a 5-row viewport", got)
	}
}

func TestSupervisorDrainsLoneEscape(t *testing.T) {
	deps := testDeps(&fakeSender{})
	tc := startSession(t, deps)
	mustFrame(t, tc.out, "Email:")

	// A bare ESC has no continuation; the periodic drain must still
	// deliver it, leaving editing mode.
	tc.inbound <- []byte{0x1b}
	mustFrame(t, tc.out, "<empty>")
}

// TestSessionIsolation runs several concurrent sessions through different
// scripts against shared dependencies and checks that each one lands on
// the screen its own script selects.
func TestSessionIsolation(t *testing.T) {
	deps := testDeps(&fakeSender{})
	mainItems := []string{"Start", "Settings", "Pokedex", "Quit"}

	const sessions = 6
	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tc := startSession(t, deps)
			if _, ok := waitFrame(tc.out, "Email:"); !ok {
				t.Errorf("session %d: no initial frame", i)
				return
			}

			// Two escapes back out to the main menu, then i downs
			script := []byte{0x1b, 0x1b}
			for d := 0; d < i; d++ {
				script = append(script, 0x1b, '[', 'B')
			}
			tc.inbound <- script

			want := mainItems[min(i, len(mainItems)-1)]
			frame, ok := waitFrame(tc.out, "> "+want+"  ")
			if !ok {
				t.Errorf("session %d: never selected %q", i, want)
				return
			}
			if !strings.Contains(frame, "Main Menu") {
				t.Errorf("session %d: not on main menu:\n%s", i, frame)
			}

			tc.inbound <- []byte{0x11}
			select {
			case <-tc.done:
			case <-time.After(frameTimeout):
				t.Errorf("session %d: did not stop", i)
			}
		}(i)
	}
	wg.Wait()

	if deps.Registry.Len() != 0 {
		t.Errorf("Registry.Len() = %d after all sessions quit, want 0", deps.Registry.Len())
	}
}

func TestSupervisorGenCodeFailureReportsAsFailedSend(t *testing.T) {
	deps := testDeps(&fakeSender{})
	tc := startSession(t, deps, func() (string, error) {
		return "", fmt.Errorf("entropy exhausted")
	})
	mustFrame(t, tc.out, "Email:")

	tc.inbound <- []byte("a@b.com\r")
	frame := mustFrame(t, tc.out, "Delivery may have failed")
	if !strings.Contains(frame, "Code (0/3") {
		t.Errorf("failed send should still reach verification step:\n%s", frame)
	}
}
