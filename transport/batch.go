package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"
)

// BatchSender wraps a Handler, coalescing short-lived bursts of SendMessage
// calls into a single framed write to the underlying Handler: one flush per
// MaxSize accumulated messages, or per FlushInterval, whichever comes first.
// Coordination follows the teacher's microbatch.Batcher ping-pong shape (a
// job channel paired with a per-pending-batch done channel broadcast on
// flush) rather than a mutex+condvar, adapted here to a fixed-arity "one
// flush, one underlying write" sender instead of a generic job processor.
type BatchSender struct {
	next Handler

	maxSize       int
	flushInterval time.Duration

	jobCh   chan []byte
	stateCh chan *pendingBatch

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

type pendingBatch struct {
	mu       sync.Mutex
	messages [][]byte
	err      error
	flushed  chan struct{}
}

func newPendingBatch() *pendingBatch {
	return &pendingBatch{flushed: make(chan struct{})}
}

// NewBatchSender constructs a BatchSender delivering through next. maxSize
// <= 0 disables size-triggered flush; flushInterval <= 0 disables
// time-triggered flush. At least one must be positive.
func NewBatchSender(next Handler, maxSize int, flushInterval time.Duration) *BatchSender {
	if next == nil {
		panic("transport: NewBatchSender: next must not be nil")
	}
	if maxSize <= 0 && flushInterval <= 0 {
		panic("transport: NewBatchSender: one of maxSize or flushInterval must be positive")
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &BatchSender{
		next:          next,
		maxSize:       maxSize,
		flushInterval: flushInterval,
		jobCh:         make(chan []byte),
		stateCh:       make(chan *pendingBatch),
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}
	go b.run()
	return b
}

// SendMessage enqueues buf, blocking until the batch it lands in has been
// flushed through the underlying Handler (or ctx is canceled first).
func (b *BatchSender) SendMessage(ctx context.Context, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := append([]byte(nil), buf...)
	select {
	case b.jobCh <- msg:
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return fmt.Errorf("transport: BatchSender: closed")
	}

	batch := <-b.stateCh

	select {
	case <-batch.flushed:
		batch.mu.Lock()
		err := batch.err
		batch.mu.Unlock()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes any pending batch and stops the background flush loop.
func (b *BatchSender) Close() error {
	b.cancel()
	<-b.done
	return nil
}

func (b *BatchSender) run() {
	defer close(b.done)

	batch := newPendingBatch()
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch.messages) == 0 {
			return
		}
		cur := batch
		batch = newPendingBatch()
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
		cur.mu.Lock()
		cur.err = b.writeFramed(cur.messages)
		cur.mu.Unlock()
		close(cur.flushed)
	}

	for {
		select {
		case <-b.ctx.Done():
			flush()
			return

		case job := <-b.jobCh:
			batch.messages = append(batch.messages, job)
			b.stateCh <- batch

			if b.maxSize > 0 && len(batch.messages) >= b.maxSize {
				flush()
			} else if b.flushInterval > 0 && timer == nil {
				timer = time.NewTimer(b.flushInterval)
				timerC = timer.C
			}

		case <-timerC:
			flush()
		}
	}
}

// writeFramed joins messages into one length-prefixed buffer and issues a
// single write against the underlying Handler, so a burst of n SendMessage
// calls costs one round trip instead of n.
func (b *BatchSender) writeFramed(messages [][]byte) error {
	var buf []byte
	var lenBuf [4]byte
	for _, m := range messages {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(m)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, m...)
	}
	return b.next.SendMessage(context.Background(), buf)
}

// SplitFramed decodes a buffer produced by BatchSender's framing back into
// the individual messages it coalesced, for a receiver built against the
// same framing.
func SplitFramed(buf []byte) ([][]byte, error) {
	var out [][]byte
	for len(buf) > 0 {
		if len(buf) < 4 {
			return nil, fmt.Errorf("transport: SplitFramed: truncated length prefix")
		}
		n := binary.BigEndian.Uint32(buf[:4])
		buf = buf[4:]
		if uint32(len(buf)) < n {
			return nil, fmt.Errorf("transport: SplitFramed: truncated message")
		}
		out = append(out, buf[:n])
		buf = buf[n:]
	}
	return out, nil
}
