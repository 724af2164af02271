package server

import (
	"github.com/pokearena/arena/internal/screen"
	"github.com/pokearena/arena/internal/session"
)

// Conn is the transport-neutral face of one connected client. Transports
// (SSH, WebSocket) produce a Conn per connection; a SessionSupervisor
// consumes it.
//
// The transport closes Inbound when the peer stops sending and closes
// Outbound when writes start failing. Either is enough to unwind the
// session; no other cancellation signal exists or is needed.
type Conn struct {
	// RemoteAddr is the peer address, for logging only
	RemoteAddr string

	// Inbound delivers raw bytes read from the peer
	Inbound <-chan []byte

	// Resizes delivers viewport change notifications
	Resizes <-chan session.Viewport

	// Outbound is the bounded channel the transport writer drains
	Outbound *screen.Outbound
}
