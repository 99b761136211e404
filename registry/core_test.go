package registry

import (
	"context"
	"testing"

	"github.com/motionmpc/coreengine/internal/xerrors"
	"github.com/motionmpc/coreengine/transport"
)

type fakeGate struct {
	id GateID
}

func (g *fakeGate) ID() GateID { return g.id }

// TestNextGateID covers spec §8 scenario 1's first half: three calls return
// 0, 1, 2.
func TestNextGateID(t *testing.T) {
	c := New(0, nil, nil)
	got := []GateID{c.NextGateID(), c.NextGateID(), c.NextGateID()}
	want := []GateID{0, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

// TestNextArithmeticSharingID covers spec §8 scenario 1's second half.
func TestNextArithmeticSharingID(t *testing.T) {
	c := New(0, nil, nil)

	for _, tc := range []struct {
		n       uint64
		want    uint64
		wantErr bool
	}{
		{n: 4, want: 0},
		{n: 1, want: 4},
		{n: 3, want: 5},
	} {
		got, err := c.NextArithmeticSharingID(tc.n)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("n=%d: expected error", tc.n)
			}
			continue
		}
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", tc.n, err)
		}
		if got != tc.want {
			t.Fatalf("n=%d: got start %d, want %d", tc.n, got, tc.want)
		}
	}
}

func TestNextArithmeticSharingID_ZeroRejected(t *testing.T) {
	c := New(0, nil, nil)
	_, err := c.NextArithmeticSharingID(0)
	if !xerrors.Is(err, xerrors.InvalidArgument) {
		t.Fatalf("got %v, want InvalidArgument", err)
	}
}

// TestTombstone covers spec §8 scenario 3.
func TestTombstone(t *testing.T) {
	c := New(0, nil, nil)
	g := &fakeGate{id: c.NextGateID()}
	c.RegisterGate(g)

	got, ok := c.GetGate(0)
	if !ok || got != Gate(g) {
		t.Fatalf("GetGate(0) = %v, %v; want %v, true", got, ok, g)
	}

	c.UnregisterGate(0)

	if _, ok := c.GetGate(0); ok {
		t.Fatalf("GetGate(0) after unregister: ok = true, want false")
	}
}

// recordingHandler counts how many times SendMessage was called.
type recordingHandler struct {
	calls int
}

func (h *recordingHandler) SendMessage(ctx context.Context, buf []byte) error {
	h.calls++
	return nil
}

// TestSend_SelfFails covers spec §8 scenario 2.
func TestSend_SelfFails(t *testing.T) {
	c := New(1, nil, nil)
	h0 := &recordingHandler{}
	c.RegisterTransports([]transport.Handler{h0, nil})

	err := c.Send(context.Background(), 1, []byte("buf"))
	if !xerrors.Is(err, xerrors.InvalidArgument) {
		t.Fatalf("self-send: got %v, want InvalidArgument", err)
	}
	if h0.calls != 0 {
		t.Fatalf("self-send performed I/O: %d calls", h0.calls)
	}

	if err := c.Send(context.Background(), 0, []byte("buf")); err != nil {
		t.Fatalf("Send(0): unexpected error: %v", err)
	}
	if h0.calls != 1 {
		t.Fatalf("Send(0): handler called %d times, want 1", h0.calls)
	}
}

func TestGetGate_OutOfRange(t *testing.T) {
	c := New(0, nil, nil)
	if _, ok := c.GetGate(42); ok {
		t.Fatalf("GetGate(42) on empty registry: ok = true, want false")
	}
}
