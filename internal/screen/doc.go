// Package screen decouples render cadence from network write cadence.
//
// Each session owns a Sink that buffers rendered bytes and flushes them as
// one atomic frame into a bounded Outbound channel. Flushing never blocks:
// when the peer is too slow to drain its channel the frame is dropped and a
// warning logged, so one frozen client cannot back-pressure the server into
// stalling other sessions.
package screen
