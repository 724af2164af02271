// Package session defines the per-client session state.
//
// A State is exclusively owned by the goroutine running its session; the
// only cross-session state in the server is the registry's id map. Screens,
// authentication progress, menu selection, text entry and viewport size all
// live here.
package session
