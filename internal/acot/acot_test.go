package acot_test

import (
	"context"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/motionmpc/coreengine/internal/acot"
	"github.com/motionmpc/coreengine/internal/width"
	"github.com/motionmpc/coreengine/ot"
)

// TestSingleCorrelation runs one AC-OT instance directly against the
// interfaces spprovider consumes, checking the mask/correction arithmetic
// in isolation from the batching logic.
func TestSingleCorrelation(t *testing.T) {
	net := acot.NewNetwork()
	sender := acot.NewProvider(net, 1) // party 1 > party 0, so 1 sends to 0
	receiver := acot.NewProvider(net, 0)

	w := width.W16
	delta, err := width.Random(w, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	g, gctx := errgroup.WithContext(ctx)

	var senderMask ot.BitString
	g.Go(func() error {
		h, err := sender.RegisterSend(gctx, 0, int(w), 1)
		if err != nil {
			return err
		}
		if err := h.SetInputs([]ot.BitString{delta}); err != nil {
			return err
		}
		if err := h.SendMessages(gctx); err != nil {
			return err
		}
		outputs, err := h.GetOutputs(gctx)
		if err != nil {
			return err
		}
		senderMask = outputs[0]
		return nil
	})

	var receiverOut ot.BitString
	g.Go(func() error {
		h, err := receiver.RegisterReceive(gctx, 1, int(w), 1)
		if err != nil {
			return err
		}
		if err := h.SetChoices(ot.BitString{1}); err != nil { // choice bit 0 = 1
			return err
		}
		if err := h.SendCorrections(gctx); err != nil {
			return err
		}
		outputs, err := h.GetOutputs(gctx)
		if err != nil {
			return err
		}
		receiverOut = outputs[0]
		return nil
	})

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	want := width.Add(w, senderMask, delta)
	if !width.Equal(receiverOut, want) {
		t.Fatalf("receiver output = %v, want mask+delta = %v", receiverOut, want)
	}
}
