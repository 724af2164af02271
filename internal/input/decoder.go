package input

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxSequenceLen bounds how many bytes a single escape sequence may span.
// A sequence that grows past this without terminating is malformed and is
// discarded rather than retained forever.
const maxSequenceLen = 32

// Decoder incrementally parses raw terminal bytes into input events.
//
// Feed may be called with arbitrary byte slices: a multi-byte sequence split
// across network reads is retained internally until the remaining bytes
// arrive, so feeding a stream one byte at a time yields the same events as
// feeding it whole. Malformed sequences are discarded without an event and
// decoding resumes at the next byte.
type Decoder struct {
	pending []byte
}

// NewDecoder returns a decoder with no buffered state.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed consumes data and returns the complete events it terminates.
// Trailing bytes that do not yet form a complete event are retained for the
// next call.
func (d *Decoder) Feed(data []byte) []Event {
	buf := append(d.pending, data...)
	d.pending = nil

	var events []Event
	for len(buf) > 0 {
		ev, n, ok := decodeOne(buf)
		if n == 0 {
			// Incomplete sequence - keep it for the next Feed
			d.pending = buf
			break
		}
		buf = buf[n:]
		if ok {
			events = append(events, ev)
		}
	}
	return events
}

// Drain flushes state that is only ambiguous because no further bytes have
// arrived. A lone ESC byte becomes an Esc key press; an unterminated escape
// sequence is discarded. Callers invoke this on an idle tick so a bare Esc
// press is not held hostage waiting for the next keystroke.
func (d *Decoder) Drain() []Event {
	if len(d.pending) == 0 {
		return nil
	}
	pending := d.pending
	d.pending = nil

	if len(pending) == 1 && pending[0] == 0x1b {
		return []Event{KeyEvent(KeyEsc)}
	}
	if pending[0] == 0x1b {
		// Unterminated sequence, drop it
		return nil
	}
	// Incomplete UTF-8 rune, drop it
	return nil
}

// decodeOne decodes the first event in buf. It returns the event, the number
// of bytes consumed, and whether an event was produced. n == 0 means the
// bytes are an incomplete prefix and should be retained.
func decodeOne(buf []byte) (Event, int, bool) {
	switch b := buf[0]; {
	case b == 0x1b:
		return decodeEscape(buf)

	case b == '\r':
		// Swallow a following LF so CRLF is one Enter
		if len(buf) >= 2 && buf[1] == '\n' {
			return KeyEvent(KeyEnter), 2, true
		}
		return KeyEvent(KeyEnter), 1, true

	case b == '\n':
		return KeyEvent(KeyEnter), 1, true

	case b == '\t':
		return KeyEvent(KeyTab), 1, true

	case b == 0x7f || b == 0x08:
		return KeyEvent(KeyBackspace), 1, true

	case b < 0x20:
		// Control chord: 0x01..0x1a map to Ctrl+A..Ctrl+Z
		if b >= 0x01 && b <= 0x1a {
			return CtrlEvent(rune('a' + b - 1)), 1, true
		}
		// Other control bytes carry no meaning here
		return Event{}, 1, false

	default:
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size == 1 {
			if !utf8.FullRune(buf) && len(buf) < utf8.UTFMax {
				// Possibly a rune split across reads
				return Event{}, 0, false
			}
			// Genuinely invalid byte, discard it
			return Event{}, 1, false
		}
		return RuneEvent(r), size, true
	}
}

// decodeEscape handles everything starting with ESC: bare Esc, Alt-chords,
// SS3 cursor keys (ESC O A..D) and CSI sequences (ESC [ ...).
func decodeEscape(buf []byte) (Event, int, bool) {
	if len(buf) == 1 {
		// Could be a bare Esc or the start of a sequence
		return Event{}, 0, false
	}

	switch buf[1] {
	case 0x1b:
		// ESC ESC: the first one is a bare Esc press
		return KeyEvent(KeyEsc), 1, true

	case '[':
		return decodeCSI(buf)

	case 'O':
		// SS3: application cursor keys
		if len(buf) < 3 {
			return Event{}, 0, false
		}
		if ev, ok := arrowKey(buf[2]); ok {
			return ev, 3, true
		}
		// Unknown SS3 final byte, discard the sequence
		return Event{}, 3, false

	default:
		// ESC followed by a printable byte is an Alt-chord; ESC followed by
		// anything else stands alone as Esc.
		if buf[1] >= 0x20 && buf[1] < 0x7f {
			return Event{Kind: KindKey, Key: KeyRune, Rune: rune(buf[1]), Mod: ModAlt}, 2, true
		}
		return KeyEvent(KeyEsc), 1, true
	}
}

// decodeCSI parses an ESC [ sequence: parameter bytes (0x30-0x3f),
// intermediate bytes (0x20-0x2f), then one final byte (0x40-0x7e).
func decodeCSI(buf []byte) (Event, int, bool) {
	// Find the final byte
	i := 2
	for ; i < len(buf); i++ {
		b := buf[i]
		if b >= 0x40 && b <= 0x7e {
			break
		}
		if !(b >= 0x20 && b <= 0x3f) {
			// Byte not valid inside a CSI sequence: malformed, discard up
			// to and including it and resume after
			return Event{}, i + 1, false
		}
	}
	if i == len(buf) {
		if len(buf) > maxSequenceLen {
			// Runaway sequence, give up on it
			return Event{}, len(buf), false
		}
		// Final byte not here yet
		return Event{}, 0, false
	}

	final := buf[i]
	params := string(buf[2:i])
	consumed := i + 1

	if ev, ok := arrowKey(final); ok && params == "" {
		return ev, consumed, true
	}

	if final == 't' {
		// XTWINOPS size report: CSI 8 ; rows ; cols t
		if ev, ok := parseSizeReport(params); ok {
			return ev, consumed, true
		}
	}

	// A sequence we parse but do not act on (mouse, function keys, ...)
	return Event{}, consumed, false
}

// parseSizeReport parses the "8;rows;cols" parameter string of an in-band
// terminal size report.
func parseSizeReport(params string) (Event, bool) {
	parts := strings.Split(params, ";")
	if len(parts) != 3 || parts[0] != "8" {
		return Event{}, false
	}
	rows, err := strconv.Atoi(parts[1])
	if err != nil || rows <= 0 {
		return Event{}, false
	}
	cols, err := strconv.Atoi(parts[2])
	if err != nil || cols <= 0 {
		return Event{}, false
	}
	return ResizeEvent(cols, rows), true
}

func arrowKey(final byte) (Event, bool) {
	switch final {
	case 'A':
		return KeyEvent(KeyUp), true
	case 'B':
		return KeyEvent(KeyDown), true
	case 'C':
		return KeyEvent(KeyRight), true
	case 'D':
		return KeyEvent(KeyLeft), true
	}
	return Event{}, false
}
