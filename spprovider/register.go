package spprovider

import (
	"context"

	"github.com/motionmpc/coreengine/internal/width"
	"github.com/motionmpc/coreengine/ot"
)

// registerOts samples fresh (a, c=a*a) batches for every configured width,
// then registers the OT batches needed to turn those local samples into
// additive shares of a*a with every peer (spec §4.2 RegisterOts).
//
// Widths are iterated in the fixed order width.All, and each width's SPs are
// iterated in batches of at most maxBatch, starting from index 0. spec §9's
// Open Question about this ordering is resolved as a protocol invariant:
// every party MUST walk the same width/batch sequence, since ParseOutputs
// matches sender and receiver outputs up purely by registration order.
func (p *Provider) registerOts(ctx context.Context) error {
	p.batches = width.NewBatches(p.counts)

	for _, w := range width.All {
		b := p.batches[w]
		if b == nil {
			continue
		}
		for i := 0; i < b.Len(); i++ {
			a, err := width.Random(w, nil)
			if err != nil {
				return err
			}
			b.A[i] = a
			b.C[i] = width.Mul(w, a, a)
		}
	}

	for peer := 0; peer < p.partyCount; peer++ {
		if peer == p.myID {
			continue
		}
		for _, w := range width.All {
			b := p.batches[w]
			if b == nil {
				continue
			}
			if err := p.registerBatchesForPeerWidth(ctx, peer, w, b); err != nil {
				return err
			}
		}
	}

	return nil
}

func (p *Provider) registerBatchesForPeerWidth(ctx context.Context, peer int, w width.Width, b *width.Batch) error {
	n := b.Len()
	for start := 0; start < n; start += p.maxBatch {
		end := start + p.maxBatch
		if end > n {
			end = n
		}
		size := end - start
		messageCount := size * int(w)

		if peer < p.myID {
			handle, err := p.otProvider.RegisterSend(ctx, peer, int(w), messageCount)
			if err != nil {
				return err
			}
			if err := handle.SetInputs(senderMessages(b, start, size, w)); err != nil {
				return err
			}
			p.senderHandles[peer] = append(p.senderHandles[peer], senderBatch{width: w, start: start, size: size, handle: handle})
		} else {
			handle, err := p.otProvider.RegisterReceive(ctx, peer, int(w), messageCount)
			if err != nil {
				return err
			}
			if err := handle.SetChoices(choiceBits(b, start, size, w)); err != nil {
				return err
			}
			p.receiverHandles[peer] = append(p.receiverHandles[peer], receiverBatch{width: w, start: start, size: size, handle: handle})
		}
	}
	return nil
}

// senderMessages builds the b·W chosen messages for a sender OT batch: the
// message at position k·W+bit is a_W[start+k] << bit (spec §4.2).
func senderMessages(b *width.Batch, start, size int, w width.Width) []ot.BitString {
	messages := make([]ot.BitString, size*int(w))
	for k := 0; k < size; k++ {
		for bit := 0; bit < int(w); bit++ {
			messages[k*int(w)+bit] = width.Lsh(w, b.A[start+k], uint(bit))
		}
	}
	return messages
}

// choiceBits packs the b·W choice bits for a receiver OT batch: the choice
// bit at position k·W+bit is bit `bit` of a_W[start+k] (spec §4.2).
func choiceBits(b *width.Batch, start, size int, w width.Width) ot.BitString {
	n := size * int(w)
	buf := make([]byte, (n+7)/8)
	for k := 0; k < size; k++ {
		for bit := 0; bit < int(w); bit++ {
			if width.Bit(b.A[start+k], uint(bit)) == 1 {
				pos := k*int(w) + bit
				buf[pos/8] |= 1 << uint(pos%8)
			}
		}
	}
	return buf
}
