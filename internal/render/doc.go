// Package render draws session state as terminal frames.
//
// The renderer is deliberately dumb: it gets a State and produces a full
// redraw as plain bytes, which flow through the session's screen sink like
// any other output. Styling uses lipgloss; layout is line-oriented with
// explicit CR/LF so it behaves in raw-mode remote terminals.
package render
