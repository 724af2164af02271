package screen

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestSinkFlushDeliversBufferAsOneUnit(t *testing.T) {
	out := NewOutbound(4)
	sink := NewSink(1, out)

	if _, err := sink.Write([]byte("hello ")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := sink.Write([]byte("world")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := sink.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	select {
	case frame := <-out.Recv():
		if !bytes.Equal(frame, []byte("hello world")) {
			t.Errorf("frame = %q, want %q", frame, "hello world")
		}
	default:
		t.Fatal("no frame enqueued")
	}

	// Buffer must be clear after flush
	if err := sink.Flush(); err != nil {
		t.Fatalf("empty Flush() error = %v", err)
	}
	select {
	case frame := <-out.Recv():
		t.Errorf("empty flush enqueued frame %q", frame)
	default:
	}
}

func TestSinkFlushOnFullChannelDropsAndNeverBlocks(t *testing.T) {
	out := NewOutbound(1)
	sink := NewSink(1, out)

	sink.Write([]byte("first"))
	if err := sink.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	// Channel is now full; this flush must return promptly with no error.
	done := make(chan error, 1)
	go func() {
		sink.Write([]byte("second"))
		done <- sink.Flush()
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Flush() on full channel error = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Flush() blocked on a full channel")
	}

	if sink.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", sink.Dropped())
	}

	// Only the first frame made it through
	frame := <-out.Recv()
	if !bytes.Equal(frame, []byte("first")) {
		t.Errorf("frame = %q, want %q", frame, "first")
	}
}

func TestSinkFlushOnClosedChannel(t *testing.T) {
	out := NewOutbound(4)
	sink := NewSink(1, out)
	out.Close()

	sink.Write([]byte("late frame"))
	if err := sink.Flush(); !errors.Is(err, ErrClosed) {
		t.Errorf("Flush() error = %v, want ErrClosed", err)
	}
}

func TestOutboundTrySend(t *testing.T) {
	tests := []struct {
		name    string
		prep    func(o *Outbound)
		wantErr error
	}{
		{
			name:    "capacity available",
			prep:    func(o *Outbound) {},
			wantErr: nil,
		},
		{
			name: "full",
			prep: func(o *Outbound) {
				_ = o.TrySend([]byte("fill"))
			},
			wantErr: ErrFull,
		},
		{
			name: "closed",
			prep: func(o *Outbound) {
				o.Close()
			},
			wantErr: ErrClosed,
		},
		{
			name: "closed wins over full",
			prep: func(o *Outbound) {
				_ = o.TrySend([]byte("fill"))
				o.Close()
			},
			wantErr: ErrClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewOutbound(1)
			tt.prep(out)
			if err := out.TrySend([]byte("payload")); !errors.Is(err, tt.wantErr) {
				t.Errorf("TrySend() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOutboundCloseIsIdempotent(t *testing.T) {
	out := NewOutbound(1)
	out.Close()
	out.Close()

	select {
	case <-out.Done():
	default:
		t.Error("Done() not closed after Close()")
	}
}
