package session

import "fmt"

// AppState identifies which top-level screen a session is showing.
type AppState int

const (
	AppMainMenu AppState = iota
	AppSettings
	AppPokedex
	AppAuth
)

// String returns the screen name for logging.
func (s AppState) String() string {
	switch s {
	case AppMainMenu:
		return "MainMenu"
	case AppSettings:
		return "Settings"
	case AppPokedex:
		return "Pokedex"
	case AppAuth:
		return "Auth"
	default:
		return fmt.Sprintf("AppState(%d)", int(s))
	}
}

// AuthState is the authentication sub-state, meaningful while the app state
// is AppAuth.
type AuthState int

const (
	AuthInputEmail AuthState = iota
	AuthVerifyEmail
	AuthLoggedIn
)

// String returns the sub-state name for logging.
func (s AuthState) String() string {
	switch s {
	case AuthInputEmail:
		return "InputEmail"
	case AuthVerifyEmail:
		return "VerifyEmail"
	case AuthLoggedIn:
		return "LoggedIn"
	default:
		return fmt.Sprintf("AuthState(%d)", int(s))
	}
}

// MaxStrikes is how many failed verification attempts force a restart of
// the email-entry step.
const MaxStrikes = 3

// Viewport is the client's reported terminal size.
type Viewport struct {
	Cols int
	Rows int
}

// State is the complete per-client session record. It is created when a
// connection is accepted, mutated only by that session's supervisor
// goroutine, and discarded at disconnect. Sessions never see each other's
// State.
type State struct {
	// ClientID is assigned monotonically by the registry at connect time
	ClientID uint64

	App  AppState
	Auth AuthState

	// Selected is the zero-based index into the menu active for (App, Auth)
	Selected int

	// Input is the text-entry buffer, used for the email address in
	// InputEmail and the verification code in VerifyEmail
	Input TextInput

	UserEmail        string
	VerificationCode string

	// Strikes counts failed verification attempts, always within
	// [0, MaxStrikes]
	Strikes int

	// Notice is a one-line status message shown under the menu
	Notice string

	Viewport Viewport
}

// New creates the initial state for a freshly connected client. Sessions
// start on the authentication screen with the email input focused, matching
// the first thing a connecting user has to do.
func New(clientID uint64) *State {
	st := &State{
		ClientID: clientID,
		App:      AppAuth,
		Auth:     AuthInputEmail,
		Viewport: Viewport{Cols: 80, Rows: 24},
	}
	st.Input.StartEditing()
	return st
}

// ResetAuth returns the auth flow to the email-entry step with a clean
// slate. Strikes always reset with it.
func (st *State) ResetAuth() {
	st.Auth = AuthInputEmail
	st.Strikes = 0
	st.Selected = 0
	st.Input.Reset()
	st.Input.StartEditing()
}
