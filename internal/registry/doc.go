// Package registry tracks live sessions by client id.
//
// The registry's map is the only mutable state shared across sessions.
// Mutations are single map operations under one mutex, and the lock is
// never held while sending to a channel or doing I/O, so no session can
// stall another through the registry.
package registry
