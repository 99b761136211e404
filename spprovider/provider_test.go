package spprovider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/motionmpc/coreengine/config"
	"github.com/motionmpc/coreengine/internal/acot"
	"github.com/motionmpc/coreengine/internal/width"
	"github.com/motionmpc/coreengine/internal/xerrors"
	"github.com/motionmpc/coreengine/spprovider"
)

// runSession builds one Provider per party sharing a single acot.Network,
// then runs PreSetup and Setup for every party concurrently: each party is
// logically a separate process, and the simulated OT network rendezvous
// (a receiver blocks until its peer's matching sender registers) only
// resolves if every party's protocol is actually running at the same time.
func runSession(t *testing.T, partyCount int, counts map[width.Width]int) []*spprovider.Provider {
	t.Helper()

	net := acot.NewNetwork()
	providers := make([]*spprovider.Provider, partyCount)
	for i := 0; i < partyCount; i++ {
		cfg := config.New(config.WithMyID(i), config.WithMaxBatch(2))
		otp := acot.NewProvider(net, i)
		providers[i] = spprovider.New(cfg, counts, otp, partyCount, nil, nil)
	}

	ctx := context.Background()

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range providers {
		p := p
		g.Go(func() error { return p.PreSetup(gctx) })
	}
	require.NoError(t, g.Wait())

	g, gctx = errgroup.WithContext(ctx)
	for _, p := range providers {
		p := p
		g.Go(func() error { return p.Setup(gctx) })
	}
	require.NoError(t, g.Wait())

	for _, p := range providers {
		select {
		case <-p.Done():
		default:
			t.Fatal("Setup returned without signalling completion")
		}
	}

	return providers
}

// sumMod2W sums the width-w values in vals modulo 2^w.
func sumMod2W(w width.Width, vals [][]byte) []byte {
	acc := width.Zero(w)
	for _, v := range vals {
		acc = width.Add(w, acc, v)
	}
	return acc
}

// TestSquarePair_TwoParties covers spec §8 scenario 5: two parties, W=32,
// n=4.
func TestSquarePair_TwoParties(t *testing.T) {
	const w = width.W32
	counts := map[width.Width]int{w: 4}

	providers := runSession(t, 2, counts)

	b0, err := providers[0].GetSPs(w)
	require.NoError(t, err)
	b1, err := providers[1].GetSPs(w)
	require.NoError(t, err)
	require.Equal(t, 4, b0.Len())
	require.Equal(t, 4, b1.Len())

	for i := 0; i < 4; i++ {
		sumA := sumMod2W(w, [][]byte{b0.A[i], b1.A[i]})
		sumC := sumMod2W(w, [][]byte{b0.C[i], b1.C[i]})
		wantC := width.Mul(w, sumA, sumA)
		require.Truef(t, width.Equal(sumC, wantC), "index %d: sum(c) != sum(a)^2", i)
	}
}

// TestSquarePair_ThreeParties_MixedWidths covers spec §8 scenario 6: three
// parties, counts (n8, n16, n32, n64, n128) = (1, 0, 2, 0, 1).
func TestSquarePair_ThreeParties_MixedWidths(t *testing.T) {
	counts := map[width.Width]int{
		width.W8:   1,
		width.W32:  2,
		width.W128: 1,
	}

	providers := runSession(t, 3, counts)

	for w, n := range counts {
		batches := make([]*width.Batch, 3)
		for p := 0; p < 3; p++ {
			b, err := providers[p].GetSPs(w)
			require.NoError(t, err)
			require.Equal(t, n, b.Len())
			batches[p] = b
		}
		for i := 0; i < n; i++ {
			sumA := sumMod2W(w, [][]byte{batches[0].A[i], batches[1].A[i], batches[2].A[i]})
			sumC := sumMod2W(w, [][]byte{batches[0].C[i], batches[1].C[i], batches[2].C[i]})
			wantC := width.Mul(w, sumA, sumA)
			require.Truef(t, width.Equal(sumC, wantC), "width %d index %d: sum(c) != sum(a)^2", w, i)
		}
	}
}

// TestNeedSPs_FalseWhenNoCounts covers spec §8 invariant 7.
func TestNeedSPs_FalseWhenNoCounts(t *testing.T) {
	net := acot.NewNetwork()
	cfg := config.New(config.WithMyID(0))
	otp := acot.NewProvider(net, 0)
	p := spprovider.New(cfg, nil, otp, 2, nil, nil)

	require.False(t, p.NeedSPs())
	require.NoError(t, p.PreSetup(context.Background()))
	require.NoError(t, p.Setup(context.Background()))

	select {
	case <-p.Done():
		t.Fatal("Setup with NeedSPs()==false must not signal completion")
	default:
	}
}

// TestGetSPs_NotReadyBeforeSetup covers spec §7's NotReady error kind.
func TestGetSPs_NotReadyBeforeSetup(t *testing.T) {
	net := acot.NewNetwork()
	cfg := config.New(config.WithMyID(0))
	otp := acot.NewProvider(net, 0)
	p := spprovider.New(cfg, map[width.Width]int{width.W8: 1}, otp, 2, nil, nil)

	_, err := p.GetSPs(width.W8)
	require.True(t, xerrors.Is(err, xerrors.NotReady))
}
