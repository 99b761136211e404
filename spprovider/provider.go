// Package spprovider implements the square-pair provider (spec §4.2): it
// generates, for each configured integer width, additive shares of pairs
// (a, a*a) between every pair of parties, driving the exchange through a
// two-phase PreSetup/Setup lifecycle over an ot.Provider.
package spprovider

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/motionmpc/coreengine/config"
	"github.com/motionmpc/coreengine/internal/stats"
	"github.com/motionmpc/coreengine/internal/width"
	"github.com/motionmpc/coreengine/internal/xerrors"
	"github.com/motionmpc/coreengine/internal/xlog"
	"github.com/motionmpc/coreengine/ot"
)

// senderBatch and receiverBatch record one registered OT batch together
// with enough bookkeeping (width, starting sp index, batch size) to fold
// its outputs back into the right slice of the (a, c) batch in ParseOutputs.
// The per-peer slices double as the "OT-handle lists" of spec §3: appended
// in RegisterOts, walked front-to-back in ParseOutputs, which is exactly
// FIFO consumption in registration order.
type senderBatch struct {
	width  width.Width
	start  int
	size   int
	handle ot.SenderHandle
}

type receiverBatch struct {
	width  width.Width
	start  int
	size   int
	handle ot.ReceiverHandle
}

// Provider is the square-pair provider for one local party. The zero value
// is not usable; construct with New.
type Provider struct {
	myID       int
	partyCount int
	maxBatch   int
	counts     map[width.Width]int

	otProvider ot.Provider
	logger     *xlog.Logger
	stats      stats.Sink

	batches width.Batches

	senderHandles   map[int][]senderBatch
	receiverHandles map[int][]receiverBatch

	mu       sync.Mutex
	finished bool
	doneCh   chan struct{}
}

// New constructs a Provider for the local party described by cfg, requesting
// counts[w] square pairs for each width w, exchanging OTs against peers
// through otProvider. partyCount is the number of parties in the session.
func New(cfg *config.Config, counts map[width.Width]int, otProvider ot.Provider, partyCount int, logger *xlog.Logger, sink stats.Sink) *Provider {
	if logger == nil {
		logger = xlog.Nop()
	}
	if sink == nil {
		sink = stats.Nop{}
	}
	normalized := make(map[width.Width]int, len(counts))
	for w, n := range counts {
		if n > 0 {
			normalized[w] = n
		}
	}
	return &Provider{
		myID:            cfg.MyID,
		partyCount:      partyCount,
		maxBatch:        cfg.MaxBatch,
		counts:          normalized,
		otProvider:      otProvider,
		logger:          logger,
		stats:           sink,
		senderHandles:   make(map[int][]senderBatch),
		receiverHandles: make(map[int][]receiverBatch),
		doneCh:          make(chan struct{}),
	}
}

// NeedSPs reports whether any configured width has a positive request
// count. Monotone and invariant once the circuit build phase ends
// (spec §8 invariant 7): counts are frozen at construction.
func (p *Provider) NeedSPs() bool {
	return len(p.counts) > 0
}

// PreSetup registers the OT batches required to produce every requested
// square pair. Per spec §4.2, it is a no-op if NeedSPs is false.
func (p *Provider) PreSetup(ctx context.Context) error {
	if !p.NeedSPs() {
		return nil
	}
	p.stats.RecordStart(stats.SPPresetup)
	p.logger.Debug("sp-presetup start")
	err := p.registerOts(ctx)
	p.logger.Debug("sp-presetup end")
	p.stats.RecordEnd(stats.SPPresetup)
	return err
}

// Setup drives every registered OT batch to completion, derives the final
// additive shares, and signals the completion condition. Per spec §4.2, it
// is a no-op if NeedSPs is false — no completion signal fires in that case,
// matching the reference's early return.
func (p *Provider) Setup(ctx context.Context) error {
	if !p.NeedSPs() {
		return nil
	}
	p.stats.RecordStart(stats.SPSetup)
	p.logger.Debug("sp-setup start")
	defer func() {
		p.logger.Debug("sp-setup end")
		p.stats.RecordEnd(stats.SPSetup)
	}()

	// Parallel over peers (spec §5): each peer's sender/receiver handles
	// touch only that peer's own state, so the fan-out needs no additional
	// synchronization beyond errgroup's join.
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.partyCount; i++ {
		if i == p.myID {
			continue
		}
		peer := i
		g.Go(func() error {
			for _, sb := range p.senderHandles[peer] {
				if err := sb.handle.SendMessages(gctx); err != nil {
					return xerrors.New(xerrors.TransportFailure, "Setup.SendMessages", err)
				}
			}
			for _, rb := range p.receiverHandles[peer] {
				if err := rb.handle.SendCorrections(gctx); err != nil {
					return xerrors.New(xerrors.TransportFailure, "Setup.SendCorrections", err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := p.parseOutputs(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	p.finished = true
	p.mu.Unlock()
	close(p.doneCh) // broadcast: every waiter on Done() wakes.

	return nil
}

// Done returns the completion condition (spec §4.2 "completion_condition"):
// a channel that closes exactly once, when Setup has finished successfully.
// A Go channel close is this package's broadcast primitive, equivalent to
// the mutex+condvar pairing spec §3/§5 describe, without requiring callers
// to juggle a separate lock just to observe readiness.
func (p *Provider) Done() <-chan struct{} {
	return p.doneCh
}

// GetSPs returns the (a, c) batch for width w. Returns a NotReady error if
// called before Done() has fired.
func (p *Provider) GetSPs(w width.Width) (*width.Batch, error) {
	p.mu.Lock()
	finished := p.finished
	p.mu.Unlock()
	if !finished {
		return nil, xerrors.New(xerrors.NotReady, "GetSPs", nil)
	}
	b, ok := p.batches[w]
	if !ok {
		return nil, xerrors.New(xerrors.InvalidArgument, "GetSPs", nil)
	}
	return b, nil
}
