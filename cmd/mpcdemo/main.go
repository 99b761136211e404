// Command mpcdemo is a small end-to-end driver for the core engine: it
// spawns as many in-process parties as the session file's parties count
// names, runs PreSetup and Setup for a small square-pair request, drains a
// tiny circuit through each party's active-gate queue, and prints, for each
// square pair, the sums of all parties' a and c shares. It does not call the
// sharing-id allocators or the unregister operations. It is example/driver
// code (spec §1 explicitly
// treats "the command-line / example drivers" as out of scope for the core
// itself), not a production party runtime.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/motionmpc/coreengine/config"
	"github.com/motionmpc/coreengine/internal/acot"
	"github.com/motionmpc/coreengine/internal/circuit"
	"github.com/motionmpc/coreengine/internal/stats"
	"github.com/motionmpc/coreengine/internal/width"
	"github.com/motionmpc/coreengine/internal/xlog"
	"github.com/motionmpc/coreengine/registry"
	"github.com/motionmpc/coreengine/spprovider"
	"github.com/motionmpc/coreengine/transport"
)

const simdWidth = 4

func main() {
	configPath := flag.String("config", "session.toml", "path to session TOML file")
	flag.Parse()

	sf, err := loadSessionFile(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	counts, err := sf.spCounts()
	if err != nil {
		log.Fatal(err)
	}

	net := acot.NewNetwork()
	handlers := buildLoopbackMesh(sf.Parties)

	cores := make([]*registry.Core, sf.Parties)
	providers := make([]*spprovider.Provider, sf.Parties)
	wires := make([]*circuit.Wire, sf.Parties)
	inputA := make([]registry.GateID, sf.Parties)
	inputB := make([]registry.GateID, sf.Parties)

	for i := 0; i < sf.Parties; i++ {
		logger := xlog.New(xlog.WithSeverity(sf.severity()))
		sink := stats.NewMemorySink()

		core := registry.New(i, logger, sink)
		core.RegisterTransports(handlers[i])
		cores[i] = core

		cfg := config.New(
			config.WithMyID(i),
			config.WithMaxBatch(sf.MaxBatch),
			config.WithLoggingSeverity(sf.severity()),
		)
		providers[i] = spprovider.New(cfg, counts, acot.NewProvider(net, i), sf.Parties, logger, sink)

		var gA, gB registry.GateID
		gA, gB, wires[i] = buildCircuit(core, byte(i+1))
		inputA[i], inputB[i] = gA, gB
	}

	ctx := context.Background()

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range providers {
		p := p
		g.Go(func() error { return p.PreSetup(gctx) })
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("PreSetup: %v", err)
	}

	g, gctx = errgroup.WithContext(ctx)
	for _, p := range providers {
		p := p
		g.Go(func() error { return p.Setup(gctx) })
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Setup: %v", err)
	}

	for i, core := range cores {
		core.AddToActiveQueue(inputA[i])
		core.AddToActiveQueue(inputB[i])
		evaluateCircuit(core, 2)

		if err := core.Send(ctx, (i+1)%sf.Parties, []byte("done")); err != nil {
			log.Fatalf("party %d: Send: %v", i, err)
		}
	}

	fmt.Printf("circuit output (party 0), lanes: %v\n", wires[0].Values)

	for _, w := range width.All {
		n := counts[w]
		if n == 0 {
			continue
		}
		fmt.Printf("width %d square pairs:\n", w)
		for idx := 0; idx < n; idx++ {
			sumA := width.Zero(w)
			sumC := width.Zero(w)
			for _, p := range providers {
				b, err := p.GetSPs(w)
				if err != nil {
					log.Fatalf("GetSPs(%d): %v", w, err)
				}
				sumA = width.Add(w, sumA, b.A[idx])
				sumC = width.Add(w, sumC, b.C[idx])
			}
			fmt.Printf("  sp[%d]: sum(a)=%x sum(c)=%x\n", idx, sumA, sumC)
		}
	}
}

// buildLoopbackMesh wires every ordered party pair through an in-memory
// Loopback, wrapped in a transport.BatchSender so bursts of Core.Send calls
// aimed at the same peer coalesce into one underlying write instead of one
// round trip per message.
func buildLoopbackMesh(parties int) [][]transport.Handler {
	loopbacks := make([]*transport.Loopback, parties)
	for i := range loopbacks {
		loopbacks[i] = transport.NewLoopback(16)
	}
	handlers := make([][]transport.Handler, parties)
	for i := 0; i < parties; i++ {
		row := make([]transport.Handler, parties)
		for j := 0; j < parties; j++ {
			if j == i {
				continue
			}
			row[j] = transport.NewBatchSender(loopbacks[j], 8, 10*time.Millisecond)
		}
		handlers[i] = row
	}
	return handlers
}

// buildCircuit registers a two-input combine gate on core: wireA XOR wireB
// -> output, seeded with a party-specific pattern so each party's local
// view differs.
func buildCircuit(core *registry.Core, seed byte) (inputA, inputB registry.GateID, output *circuit.Wire) {
	wireA := circuit.NewWire(core.NextWireID(), simdWidth)
	wireB := circuit.NewWire(core.NextWireID(), simdWidth)
	wireOut := circuit.NewWire(core.NextWireID(), simdWidth)
	for i := 0; i < simdWidth; i++ {
		wireA.Values[i] = seed & 1
		wireB.Values[i] = (seed >> 1) & 1
	}
	core.RegisterWire(wireA)
	core.RegisterWire(wireB)
	core.RegisterWire(wireOut)

	gA := circuit.NewInputGate(core.NextGateID(), wireA)
	gB := circuit.NewInputGate(core.NextGateID(), wireB)
	gC := circuit.NewCombineGate(core.NextGateID(), wireA, wireB, wireOut)
	gA.AddDependent(gC.ID())
	gB.AddDependent(gC.ID())

	core.RegisterInputGate(gA)
	core.RegisterInputGate(gB)
	core.RegisterGate(gC)

	return gA.ID(), gB.ID(), wireOut
}

// evaluateCircuit spawns workers goroutines draining core's active queue
// until every registered gate has been evaluated, exercising the
// concurrent producer/consumer path described in spec §5.
func evaluateCircuit(core *registry.Core, workers int) {
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !core.Done() {
				id := core.PopActiveGate()
				if id == registry.NoGate {
					runtime.Gosched()
					continue
				}
				g, ok := core.GetGate(id)
				if !ok {
					core.IncrementEvaluated()
					continue
				}
				cg, ok := g.(circuit.Gate)
				if !ok {
					core.IncrementEvaluated()
					continue
				}
				cg.Evaluate()
				core.IncrementEvaluated()
				for _, depID := range cg.Dependents() {
					dep, ok := core.GetGate(depID)
					if !ok {
						continue
					}
					if cb, ok := dep.(*circuit.CombineGate); ok {
						if cb.ResolveDependency() {
							core.AddToActiveQueue(depID)
						}
					}
				}
			}
		}()
	}
	wg.Wait()
}
