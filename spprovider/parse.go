package spprovider

import (
	"context"

	"github.com/motionmpc/coreengine/internal/width"
	"github.com/motionmpc/coreengine/internal/xerrors"
)

// parseOutputs folds the completed OT outputs back into each width's c
// vector, in the same per-peer, per-batch order they were registered in
// (spec §4.2 ParseOutputs). Sender-side outputs subtract 2m; receiver-side
// outputs add 2m — the exact sign convention spec §4.2's correctness
// sketch requires for protocol compatibility.
func (p *Provider) parseOutputs(ctx context.Context) error {
	for peer := 0; peer < p.partyCount; peer++ {
		if peer == p.myID {
			continue
		}
		for _, sb := range p.senderHandles[peer] {
			if err := p.applySenderBatch(ctx, sb); err != nil {
				return err
			}
		}
		for _, rb := range p.receiverHandles[peer] {
			if err := p.applyReceiverBatch(ctx, rb); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Provider) applySenderBatch(ctx context.Context, sb senderBatch) error {
	outputs, err := sb.handle.GetOutputs(ctx)
	if err != nil {
		return xerrors.New(xerrors.ProtocolViolation, "ParseOutputs", err)
	}
	want := sb.size * int(sb.width)
	if len(outputs) != want {
		return xerrors.New(xerrors.ProtocolViolation, "ParseOutputs", nil)
	}
	b := p.batches[sb.width]
	for k := 0; k < sb.size; k++ {
		for bit := 0; bit < int(sb.width); bit++ {
			m := outputs[k*int(sb.width)+bit]
			idx := sb.start + k
			b.C[idx] = width.Sub(sb.width, b.C[idx], width.DoubleMod2(sb.width, m))
		}
	}
	return nil
}

func (p *Provider) applyReceiverBatch(ctx context.Context, rb receiverBatch) error {
	outputs, err := rb.handle.GetOutputs(ctx)
	if err != nil {
		return xerrors.New(xerrors.ProtocolViolation, "ParseOutputs", err)
	}
	want := rb.size * int(rb.width)
	if len(outputs) != want {
		return xerrors.New(xerrors.ProtocolViolation, "ParseOutputs", nil)
	}
	b := p.batches[rb.width]
	for k := 0; k < rb.size; k++ {
		for bit := 0; bit < int(rb.width); bit++ {
			m := outputs[k*int(rb.width)+bit]
			idx := rb.start + k
			b.C[idx] = width.Add(rb.width, b.C[idx], width.DoubleMod2(rb.width, m))
		}
	}
	return nil
}
