package input

import "fmt"

// Key identifies a decoded key press.
type Key int

// Key constants for the keys the menu system reacts to. Anything else the
// decoder can name arrives as KeyRune with the rune populated.
const (
	KeyRune Key = iota
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEsc
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// Modifiers is a bitmask of modifier keys held during a key press.
type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
	ModAlt
)

// Kind distinguishes the two event classes the decoder emits.
type Kind int

const (
	// KindKey is a key press with optional modifiers
	KindKey Kind = iota
	// KindResize is an in-band terminal size report
	KindResize
)

// Event is one decoded input event.
type Event struct {
	Kind Kind
	Key  Key
	Rune rune      // populated when Key == KeyRune
	Mod  Modifiers // modifier mask for key events
	Cols int       // populated when Kind == KindResize
	Rows int       // populated when Kind == KindResize
}

// KeyEvent builds a key press event.
func KeyEvent(k Key) Event {
	return Event{Kind: KindKey, Key: k}
}

// RuneEvent builds a printable character event.
func RuneEvent(r rune) Event {
	return Event{Kind: KindKey, Key: KeyRune, Rune: r}
}

// CtrlEvent builds a control-chord event (e.g. Ctrl+Q).
func CtrlEvent(r rune) Event {
	return Event{Kind: KindKey, Key: KeyRune, Rune: r, Mod: ModCtrl}
}

// ResizeEvent builds a viewport size event.
func ResizeEvent(cols, rows int) Event {
	return Event{Kind: KindResize, Cols: cols, Rows: rows}
}

// String returns a readable form of the event for logging.
func (e Event) String() string {
	if e.Kind == KindResize {
		return fmt.Sprintf("Resize{%dx%d}", e.Cols, e.Rows)
	}

	var mod string
	if e.Mod&ModCtrl != 0 {
		mod = "Ctrl+"
	}
	if e.Mod&ModAlt != 0 {
		mod += "Alt+"
	}

	switch e.Key {
	case KeyRune:
		return fmt.Sprintf("Key{%s%q}", mod, e.Rune)
	case KeyEnter:
		return "Key{" + mod + "Enter}"
	case KeyBackspace:
		return "Key{" + mod + "Backspace}"
	case KeyTab:
		return "Key{" + mod + "Tab}"
	case KeyEsc:
		return "Key{" + mod + "Esc}"
	case KeyUp:
		return "Key{" + mod + "Up}"
	case KeyDown:
		return "Key{" + mod + "Down}"
	case KeyLeft:
		return "Key{" + mod + "Left}"
	case KeyRight:
		return "Key{" + mod + "Right}"
	default:
		return fmt.Sprintf("Key{unknown(%d)}", e.Key)
	}
}
