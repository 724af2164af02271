// Package server hosts arena sessions over SSH and WebSocket.
//
// Each accepted connection is reduced to a transport-neutral Conn (an
// inbound byte channel, a resize channel, and a bounded outbound channel)
// and handed to a SessionSupervisor. The supervisor is the only goroutine
// that touches session state: it decodes bytes into key events, drives the
// menu state machine, executes requested effects (email delivery, code
// verification, quit), and renders a full frame into the outbound channel
// after every state change.
//
// # Session Lifecycle
//
// A supervisor moves through four phases:
//
//	Opening -> Active -> Closing -> Closed
//
// Opening covers registration in the session registry; Active is the event
// loop; Closing removes the registry entry and closes the outbound channel
// so the transport writer unwinds; Closed is terminal. Teardown runs on
// the supervisor goroutine, so a session that quits is fully deregistered
// before Run returns.
//
// # Transports
//
// SSH is the primary transport: each "session" channel on a connection
// gets its own supervisor, with pty-req and window-change requests mapped
// to viewport resizes. The optional WebSocket endpoint at /terminal serves
// browser terminals: binary messages carry terminal bytes, text messages
// carry JSON control messages such as {"type":"resize","cols":80,"rows":24}.
//
// Slow or stalled clients never block a supervisor: frames that do not fit
// in the outbound channel are dropped, and the next render replaces them.
//
// # Host Identity
//
// The SSH host key is an ED25519 key persisted under the config directory
// on first start and reused afterwards.
package server
