package registry

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/pokearena/arena/internal/screen"
)

func TestRegisterAssignsMonotonicIDs(t *testing.T) {
	r := New()

	a := r.Register(screen.NewOutbound(1))
	b := r.Register(screen.NewOutbound(1))
	c := r.Register(screen.NewOutbound(1))

	if !(a < b && b < c) {
		t.Errorf("ids not monotonic: %d, %d, %d", a, b, c)
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}

	// Ids are not reused after unregister
	r.Unregister(c)
	d := r.Register(screen.NewOutbound(1))
	if d <= c {
		t.Errorf("id %d reused after unregister of %d", d, c)
	}
}

func TestSend(t *testing.T) {
	r := New()
	out := screen.NewOutbound(2)
	id := r.Register(out)

	if err := r.Send(id, []byte("frame")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got := <-out.Recv(); !bytes.Equal(got, []byte("frame")) {
		t.Errorf("received %q, want %q", got, "frame")
	}

	t.Run("unknown id", func(t *testing.T) {
		if err := r.Send(9999, []byte("x")); !errors.Is(err, ErrNotFound) {
			t.Errorf("Send() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("closed channel", func(t *testing.T) {
		out.Close()
		if err := r.Send(id, []byte("x")); !errors.Is(err, ErrClosed) {
			t.Errorf("Send() error = %v, want ErrClosed", err)
		}
	})

	t.Run("full channel drops silently", func(t *testing.T) {
		full := screen.NewOutbound(1)
		fid := r.Register(full)
		if err := r.Send(fid, []byte("one")); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if err := r.Send(fid, []byte("two")); err != nil {
			t.Errorf("Send() on full channel error = %v, want nil (drop)", err)
		}
	})
}

func TestUnregister(t *testing.T) {
	r := New()
	id := r.Register(screen.NewOutbound(1))

	r.Unregister(id)
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
	if err := r.Send(id, []byte("x")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Send() after unregister error = %v, want ErrNotFound", err)
	}

	// Unregistering twice is a no-op
	r.Unregister(id)
}

func TestBroadcast(t *testing.T) {
	r := New()
	outs := make([]*screen.Outbound, 3)
	for i := range outs {
		outs[i] = screen.NewOutbound(4)
		r.Register(outs[i])
	}
	// One closed session must not stop the others receiving
	outs[1].Close()

	r.Broadcast([]byte("announcement"))

	for i, out := range outs {
		if i == 1 {
			continue
		}
		select {
		case got := <-out.Recv():
			if !bytes.Equal(got, []byte("announcement")) {
				t.Errorf("session %d received %q", i, got)
			}
		default:
			t.Errorf("session %d received nothing", i)
		}
	}
}

func TestConcurrentRegistration(t *testing.T) {
	r := New()
	const n = 50

	var wg sync.WaitGroup
	ids := make(chan uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- r.Register(screen.NewOutbound(1))
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if r.Len() != n {
		t.Errorf("Len() = %d, want %d", r.Len(), n)
	}
}
