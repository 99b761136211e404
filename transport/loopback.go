package transport

import "context"

// Loopback is a Handler that queues every sent message on a buffered
// in-memory channel, for use in cmd/mpcdemo where no real network is
// involved.
// Safe for concurrent use by multiple callers of SendMessage.
type Loopback struct {
	recv chan []byte
}

// NewLoopback constructs a Loopback with the given inbound buffer depth.
func NewLoopback(buffer int) *Loopback {
	return &Loopback{recv: make(chan []byte, buffer)}
}

// SendMessage enqueues buf, blocking if the buffer is full and ctx has no
// deadline, or returning ctx.Err() if ctx is canceled first.
func (l *Loopback) SendMessage(ctx context.Context, buf []byte) error {
	msg := append([]byte(nil), buf...)
	select {
	case l.recv <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv returns the channel of inbound messages, for a test driver to read
// from.
func (l *Loopback) Recv() <-chan []byte {
	return l.recv
}
