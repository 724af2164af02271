package menu

import "github.com/pokearena/arena/internal/session"

// Menu is one navigable list of actions with a title.
type Menu struct {
	Title string
	Items []string
}

// Len returns the number of items.
func (m Menu) Len() int {
	return len(m.Items)
}

// Item indices for the main menu.
const (
	MainStart = iota
	MainSettings
	MainPokedex
	MainQuit
)

// Item indices for the email-entry menu.
const (
	InputEmailSend = iota
	InputEmailExit
)

// Item indices for the verification menu.
const (
	VerifySubmit = iota
	VerifyResend
	VerifyChangeEmail
	VerifyExit
)

// Item indices for the logged-in menu.
const (
	LoggedInContinue = iota
	LoggedInLogout
)

// Item index for the shared "Back" entry on sub-screens.
const SubScreenBack = 3

var (
	mainMenu     = Menu{Title: "Main Menu", Items: []string{"Start", "Settings", "Pokedex", "Quit"}}
	settingsMenu = Menu{Title: "Settings", Items: []string{"Option 1", "Option 2", "Option 3", "Back"}}
	pokedexMenu  = Menu{Title: "Pokedex", Items: []string{"Search Pokemon", "View All", "Favorites", "Back"}}
	emailMenu    = Menu{Title: "Email Input", Items: []string{"Send Verification Email", "Exit"}}
	verifyMenu   = Menu{Title: "Verification", Items: []string{"Submit", "Resend Email", "Change Email", "Exit"}}
	loggedInMenu = Menu{Title: "Logged In", Items: []string{"Continue", "Logout"}}
)

// For returns the menu active for the given screen and auth sub-state. It
// is the single lookup consumed by both the transition logic and the
// renderer, so the two can never disagree about what is on screen.
func For(app session.AppState, auth session.AuthState) Menu {
	switch app {
	case session.AppSettings:
		return settingsMenu
	case session.AppPokedex:
		return pokedexMenu
	case session.AppAuth:
		switch auth {
		case session.AuthVerifyEmail:
			return verifyMenu
		case session.AuthLoggedIn:
			return loggedInMenu
		default:
			return emailMenu
		}
	default:
		return mainMenu
	}
}

// Size returns the item count of the active menu.
func Size(app session.AppState, auth session.AuthState) int {
	return For(app, auth).Len()
}
