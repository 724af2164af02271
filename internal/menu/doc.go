// Package menu holds the menu tables and the state machine that drives
// them.
//
// The machine is pure in the I/O sense: given the current session state and
// a decoded input event it updates the state and returns an Effect
// describing any side effect the caller must perform (send a verification
// email, check a code, quit). Results of those effects come back in as
// synthetic events. Both the transition logic and the renderer read the
// active menu through the same For lookup.
package menu
