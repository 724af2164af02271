package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/pokearena/arena/internal/menu"
	"github.com/pokearena/arena/internal/session"
)

// Renderer produces a full redraw of one session's screen from its state.
// The supervisor invokes it after every transition that changes what should
// be visible, writing into that session's sink.
type Renderer interface {
	Render(w io.Writer, st *session.State) error
}

// Terminal control sequences for a full redraw
const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	hideCursor  = "\x1b[?25l"
)

// Frame renders session screens as plain ANSI frames: clear, menu title,
// items with an inverted selection bar, the text-entry line on auth
// screens, notices and a key-hint footer. One Frame value serves every
// session.
type Frame struct{}

// NewFrame returns the default frame renderer.
func NewFrame() *Frame {
	return &Frame{}
}

// Render writes a complete redraw of st to w.
func (f *Frame) Render(w io.Writer, st *session.State) error {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(cursorHome)
	b.WriteString(hideCursor)

	// Raw-mode terminals need explicit carriage returns
	b.WriteString(strings.Join(Lines(st), "\r\n"))

	_, err := io.WriteString(w, b.String())
	return err
}

// Lines builds the visible lines for st, clipped to its viewport. The
// network renderer joins them with CRLF for raw terminals; the local
// client joins them with plain newlines.
func Lines(st *session.State) []string {
	m := menu.For(st.App, st.Auth)

	lines := []string{
		"",
		TitleStyle.Render("  " + m.Title),
		"",
	}

	if st.App == session.AppAuth {
		lines = append(lines, inputLines(st)...)
	}

	for i, item := range m.Items {
		if i == st.Selected {
			lines = append(lines, SelectedItemStyle.Render("  > "+item+"  "))
		} else {
			lines = append(lines, ItemStyle.Render("    "+item))
		}
	}

	if st.Auth == session.AuthLoggedIn && st.UserEmail != "" {
		lines = append(lines, "", AccountStyle.Render("  Signed in: "+st.UserEmail))
	}

	if st.Notice != "" {
		lines = append(lines, "", NoticeStyle.Render("  "+st.Notice))
	}

	lines = append(lines, "", FooterStyle.Render(footer(st)))

	// Clip to the viewport; the client terminal handles anything narrower
	rows := st.Viewport.Rows
	if rows > 0 && len(lines) > rows {
		lines = lines[:rows]
	}
	return lines
}

// inputLines renders the text-entry line for the auth screens, including a
// visible cursor position while editing.
func inputLines(st *session.State) []string {
	var label string
	switch st.Auth {
	case session.AuthInputEmail:
		label = "Email:"
	case session.AuthVerifyEmail:
		label = fmt.Sprintf("Code (%d/%d attempts used):", st.Strikes, session.MaxStrikes)
	default:
		return nil
	}

	value := st.Input.Value()
	if st.Input.Editing() {
		// Mark the cursor with an underscore block at its rune position
		runes := []rune(value)
		cur := st.Input.Cursor()
		shown := string(runes[:cur]) + "█" + string(runes[cur:])
		return []string{
			"  " + InputLabelStyle.Render(label) + " " + InputEditingStyle.Render(shown),
			"",
		}
	}

	display := value
	if display == "" {
		display = "<empty>"
	}
	return []string{
		"  " + InputLabelStyle.Render(label) + " " + display,
		"",
	}
}

func footer(st *session.State) string {
	if st.App == session.AppAuth && st.Input.Editing() {
		return "  type to edit · Tab switch to menu · Enter submit · Ctrl+Q quit"
	}
	if st.App == session.AppMainMenu {
		return "  ↑/↓ navigate · Enter select · q quit"
	}
	if st.App == session.AppAuth {
		return "  ↑/↓ navigate · Enter select · Tab edit · Esc back"
	}
	return "  ↑/↓ navigate · Enter select · Esc back"
}
