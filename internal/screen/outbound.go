package screen

import (
	"errors"
	"sync"
)

// Sentinel errors for outbound channel operations
var (
	// ErrFull means the bounded channel had no capacity for the payload
	ErrFull = errors.New("outbound channel full")
	// ErrClosed means the peer is gone and the channel accepts nothing more
	ErrClosed = errors.New("outbound channel closed")
)

// Outbound is the bounded, non-blocking byte channel between one session's
// renderer and its transport writer. The session side hands frames in with
// TrySend; the transport side drains Recv and calls Close when the peer
// disconnects.
type Outbound struct {
	ch     chan []byte
	closed chan struct{}
	once   sync.Once
}

// NewOutbound creates an outbound channel with the given capacity.
func NewOutbound(capacity int) *Outbound {
	if capacity <= 0 {
		capacity = 1
	}
	return &Outbound{
		ch:     make(chan []byte, capacity),
		closed: make(chan struct{}),
	}
}

// TrySend enqueues p without blocking. It returns ErrFull when the channel
// has no capacity and ErrClosed when the channel has been closed.
func (o *Outbound) TrySend(p []byte) error {
	select {
	case <-o.closed:
		return ErrClosed
	default:
	}

	select {
	case o.ch <- p:
		return nil
	case <-o.closed:
		return ErrClosed
	default:
		return ErrFull
	}
}

// Recv returns the channel the transport writer drains.
func (o *Outbound) Recv() <-chan []byte {
	return o.ch
}

// Close marks the channel closed. Safe to call more than once; pending
// frames already enqueued remain readable from Recv.
func (o *Outbound) Close() {
	o.once.Do(func() {
		close(o.closed)
	})
}

// Done returns a channel that is closed once Close has been called.
func (o *Outbound) Done() <-chan struct{} {
	return o.closed
}
