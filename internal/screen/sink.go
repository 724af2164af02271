package screen

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/pokearena/arena/internal/logging"
)

// Sink buffers rendered output for one session and flushes it to that
// session's outbound channel as a single unit.
//
// Write has no observable side effect; only Flush touches the channel, and
// it never blocks: a frame that finds the channel full is dropped with a
// warning so one slow peer can never stall rendering. A closed channel is
// the one terminal condition, reported as ErrClosed so the supervisor can
// tear the session down.
//
// A Sink is owned by its session's supervisor goroutine and is not safe for
// concurrent use.
type Sink struct {
	clientID uint64
	out      *Outbound
	buf      bytes.Buffer
	dropped  uint64
}

// NewSink creates a sink that flushes to out.
func NewSink(clientID uint64, out *Outbound) *Sink {
	return &Sink{clientID: clientID, out: out}
}

// Write appends p to the internal buffer. It implements io.Writer so the
// renderer can draw straight into the sink. It never fails.
func (s *Sink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

// Flush takes ownership of the buffered bytes, clears the buffer, and hands
// the bytes to the outbound channel in one atomic unit.
//
// A full channel drops exactly this flush and returns nil. A closed channel
// returns ErrClosed.
func (s *Sink) Flush() error {
	if s.buf.Len() == 0 {
		return nil
	}

	frame := make([]byte, s.buf.Len())
	copy(frame, s.buf.Bytes())
	s.buf.Reset()

	switch err := s.out.TrySend(frame); err {
	case nil:
		return nil
	case ErrFull:
		s.dropped++
		logging.Warn("Outbound channel full, dropping frame",
			zap.Uint64("client_id", s.clientID),
			zap.Int("frame_bytes", len(frame)),
			zap.Uint64("dropped_total", s.dropped),
		)
		return nil
	default:
		return err
	}
}

// Dropped returns how many flushes have been dropped due to backpressure.
func (s *Sink) Dropped() uint64 {
	return s.dropped
}
