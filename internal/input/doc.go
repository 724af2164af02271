// Package input decodes raw terminal byte streams into discrete key and
// resize events.
//
// The decoder is incremental: bytes that do not yet form a complete event
// (a split escape sequence, a partial UTF-8 rune) are retained across Feed
// calls, so network reads can fragment the stream at any boundary without
// changing the decoded event sequence. Malformed sequences are discarded
// without producing an event.
package input
