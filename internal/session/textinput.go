package session

// TextInput is a single-line text-entry buffer with a cursor and an
// editing/normal mode toggle. While editing, character and cursor keys are
// routed here instead of the menu.
//
// The cursor is rune-indexed so multi-byte input behaves correctly.
type TextInput struct {
	runes   []rune
	cursor  int
	editing bool
}

// Value returns the current buffer contents.
func (t *TextInput) Value() string {
	return string(t.runes)
}

// Cursor returns the rune index of the cursor.
func (t *TextInput) Cursor() int {
	return t.cursor
}

// Editing reports whether the input currently captures keystrokes.
func (t *TextInput) Editing() bool {
	return t.editing
}

// StartEditing switches the input into editing mode.
func (t *TextInput) StartEditing() {
	t.editing = true
}

// StopEditing switches the input back to menu-navigation mode.
func (t *TextInput) StopEditing() {
	t.editing = false
}

// ToggleEditing flips between editing and normal mode.
func (t *TextInput) ToggleEditing() {
	t.editing = !t.editing
}

// InsertRune inserts r at the cursor and advances it.
func (t *TextInput) InsertRune(r rune) {
	t.runes = append(t.runes[:t.cursor], append([]rune{r}, t.runes[t.cursor:]...)...)
	t.cursor++
}

// DeleteRune removes the rune before the cursor, if any.
func (t *TextInput) DeleteRune() {
	if t.cursor == 0 {
		return
	}
	t.runes = append(t.runes[:t.cursor-1], t.runes[t.cursor:]...)
	t.cursor--
}

// MoveLeft moves the cursor one rune left, stopping at the start.
func (t *TextInput) MoveLeft() {
	if t.cursor > 0 {
		t.cursor--
	}
}

// MoveRight moves the cursor one rune right, stopping at the end.
func (t *TextInput) MoveRight() {
	if t.cursor < len(t.runes) {
		t.cursor++
	}
}

// Reset clears the buffer and returns the cursor to the start. The mode is
// left untouched.
func (t *TextInput) Reset() {
	t.runes = nil
	t.cursor = 0
}
