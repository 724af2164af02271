package menu

import (
	"fmt"

	"github.com/pokearena/arena/internal/input"
	"github.com/pokearena/arena/internal/session"
)

// EffectKind names the side effect a transition requests. The machine never
// performs I/O itself; the supervisor executes the effect and feeds the
// outcome back through HandleEmailResult or HandleVerifyResult.
type EffectKind int

const (
	// EffectNone means the transition was self-contained
	EffectNone EffectKind = iota
	// EffectQuit asks the supervisor to end the session
	EffectQuit
	// EffectSendEmail asks for a verification code to be generated and
	// mailed to Address
	EffectSendEmail
	// EffectVerifyCode asks for Submitted to be checked against Expected
	EffectVerifyCode
)

// Effect is a side-effect request emitted by a transition.
type Effect struct {
	Kind      EffectKind
	Address   string // EffectSendEmail: destination address
	Expected  string // EffectVerifyCode: the code that was mailed
	Submitted string // EffectVerifyCode: what the user typed
}

// String returns the effect name for logging.
func (e Effect) String() string {
	switch e.Kind {
	case EffectNone:
		return "None"
	case EffectQuit:
		return "Quit"
	case EffectSendEmail:
		return fmt.Sprintf("SendEmail{%s}", e.Address)
	case EffectVerifyCode:
		return "VerifyCode"
	default:
		return fmt.Sprintf("Effect(%d)", int(e.Kind))
	}
}

var none = Effect{Kind: EffectNone}

// Machine computes session state transitions from input events. It holds no
// per-session data; the same Machine value can serve every session.
//
// Wrap selects the Up/Down policy at the menu edges: the network server
// clamps, the single-user local variant wraps around.
type Machine struct {
	Wrap bool
}

// NewMachine returns a machine with the given selection policy.
func NewMachine(wrap bool) *Machine {
	return &Machine{Wrap: wrap}
}

// HandleKey applies one key event to st and returns the side effect the
// transition requests. Selection is clamped into the active menu's range
// before returning, so a render immediately after is always in bounds.
func (m *Machine) HandleKey(st *session.State, ev input.Event) Effect {
	if ev.Kind != input.KindKey {
		return none
	}

	effect := m.handleKey(st, ev)
	clampSelection(st)
	return effect
}

func (m *Machine) handleKey(st *session.State, ev input.Event) Effect {
	// Ctrl+Q quits from anywhere, editing mode included
	if ev.Key == input.KeyRune && ev.Mod&input.ModCtrl != 0 && ev.Rune == 'q' {
		return Effect{Kind: EffectQuit}
	}

	editing := st.App == session.AppAuth && st.Input.Editing()

	switch ev.Key {
	case input.KeyUp:
		if !editing {
			m.moveSelection(st, -1)
		}

	case input.KeyDown:
		if !editing {
			m.moveSelection(st, +1)
		}

	case input.KeyLeft:
		if editing {
			st.Input.MoveLeft()
		}

	case input.KeyRight:
		if editing {
			st.Input.MoveRight()
		}

	case input.KeyBackspace:
		if editing {
			st.Input.DeleteRune()
		}

	case input.KeyTab:
		// Tab toggles between text entry and menu navigation on the auth
		// screens that have an input line
		if st.App == session.AppAuth && st.Auth != session.AuthLoggedIn {
			st.Input.ToggleEditing()
		}

	case input.KeyEsc:
		return m.handleEsc(st)

	case input.KeyEnter:
		return m.handleEnter(st)

	case input.KeyRune:
		if editing {
			if ev.Mod == 0 {
				st.Input.InsertRune(ev.Rune)
			}
			return none
		}
		// 'q' quits, but only from the main menu
		if ev.Rune == 'q' && ev.Mod == 0 && st.App == session.AppMainMenu {
			return Effect{Kind: EffectQuit}
		}
	}

	return none
}

func (m *Machine) handleEsc(st *session.State) Effect {
	switch st.App {
	case session.AppAuth:
		if st.Input.Editing() {
			st.Input.StopEditing()
			return none
		}
		st.App = session.AppMainMenu
		st.Selected = 0
		return none

	case session.AppSettings, session.AppPokedex:
		st.App = session.AppMainMenu
		st.Selected = 0
		return none

	default:
		// Esc from the top level requests quit
		return Effect{Kind: EffectQuit}
	}
}

func (m *Machine) handleEnter(st *session.State) Effect {
	switch st.App {
	case session.AppMainMenu:
		switch st.Selected {
		case MainStart:
			st.App = session.AppAuth
			st.Selected = 0
			if st.Auth == session.AuthInputEmail {
				st.Input.StartEditing()
			}
		case MainSettings:
			st.App = session.AppSettings
			st.Selected = 0
		case MainPokedex:
			st.App = session.AppPokedex
			st.Selected = 0
		case MainQuit:
			return Effect{Kind: EffectQuit}
		}

	case session.AppSettings, session.AppPokedex:
		if st.Selected == SubScreenBack {
			st.App = session.AppMainMenu
			st.Selected = 0
		}

	case session.AppAuth:
		return m.handleAuthEnter(st)
	}

	return none
}

func (m *Machine) handleAuthEnter(st *session.State) Effect {
	switch st.Auth {
	case session.AuthInputEmail:
		if st.Input.Editing() {
			// Enter leaves editing mode; with "send" selected it also
			// submits the address
			st.Input.StopEditing()
			if st.Selected != InputEmailSend {
				return none
			}
		}
		switch st.Selected {
		case InputEmailSend:
			addr := st.Input.Value()
			if addr == "" {
				st.Notice = "Enter an email address first"
				st.Input.StartEditing()
				return none
			}
			return Effect{Kind: EffectSendEmail, Address: addr}
		case InputEmailExit:
			return Effect{Kind: EffectQuit}
		}

	case session.AuthVerifyEmail:
		if st.Input.Editing() {
			st.Input.StopEditing()
			if st.Selected != VerifySubmit {
				return none
			}
		}
		switch st.Selected {
		case VerifySubmit:
			return Effect{
				Kind:      EffectVerifyCode,
				Expected:  st.VerificationCode,
				Submitted: st.Input.Value(),
			}
		case VerifyResend:
			// A resend generates a fresh code for the address on file
			st.Input.Reset()
			return Effect{Kind: EffectSendEmail, Address: st.UserEmail}
		case VerifyChangeEmail:
			st.ResetAuth()
		case VerifyExit:
			st.App = session.AppMainMenu
			st.Selected = 0
		}

	case session.AuthLoggedIn:
		switch st.Selected {
		case LoggedInContinue:
			st.App = session.AppMainMenu
			st.Selected = 0
		case LoggedInLogout:
			st.UserEmail = ""
			st.VerificationCode = ""
			st.Notice = "Logged out"
			st.ResetAuth()
		}
	}

	return none
}

// HandleEmailResult is the synthetic event fed back once an EffectSendEmail
// has been executed. Send failure and success both advance to the
// verification step: a failed delivery looks to the user like a code that
// has not arrived yet, and the Resend action covers both cases.
func (m *Machine) HandleEmailResult(st *session.State, address, code string, sendErr error) {
	st.UserEmail = address
	st.VerificationCode = code
	st.Auth = session.AuthVerifyEmail
	st.Selected = 0
	st.Input.Reset()
	st.Input.StartEditing()
	if sendErr != nil {
		st.Notice = "Delivery may have failed - use Resend if no code arrives"
	} else {
		st.Notice = "Verification code sent to " + address
	}
	clampSelection(st)
}

// HandleVerifyResult is the synthetic event fed back once an
// EffectVerifyCode has been executed. Success logs the session in; failure
// adds a strike, and the third strike forces a restart of the email-entry
// step.
func (m *Machine) HandleVerifyResult(st *session.State, ok bool) {
	if ok {
		st.Auth = session.AuthLoggedIn
		st.App = session.AppMainMenu
		st.Selected = 0
		st.Strikes = 0
		st.Input.Reset()
		st.Input.StopEditing()
		st.Notice = "Logged in as " + st.UserEmail
		clampSelection(st)
		return
	}

	if st.Strikes >= session.MaxStrikes-1 {
		st.ResetAuth()
		st.Notice = "Too many failed attempts - start over"
	} else {
		st.Strikes++
		st.Input.Reset()
		st.Input.StartEditing()
		st.Notice = fmt.Sprintf("Incorrect code (%d/%d attempts)", st.Strikes, session.MaxStrikes)
	}
	clampSelection(st)
}

// HandleResize records a new viewport size.
func (m *Machine) HandleResize(st *session.State, cols, rows int) {
	if cols > 0 && rows > 0 {
		st.Viewport = session.Viewport{Cols: cols, Rows: rows}
	}
}

func (m *Machine) moveSelection(st *session.State, delta int) {
	size := Size(st.App, st.Auth)
	if size == 0 {
		st.Selected = 0
		return
	}

	next := st.Selected + delta
	if m.Wrap {
		next = (next + size) % size
	} else {
		if next < 0 {
			next = 0
		}
		if next > size-1 {
			next = size - 1
		}
	}
	st.Selected = next
}

// clampSelection forces Selected into the active menu's range. Transitions
// that change the active menu rely on this running before the next render.
func clampSelection(st *session.State) {
	size := Size(st.App, st.Auth)
	if size == 0 {
		st.Selected = 0
		return
	}
	if st.Selected < 0 {
		st.Selected = 0
	}
	if st.Selected >= size {
		st.Selected = size - 1
	}
}
