// Package circuit supplies the minimal gate/wire implementations needed to
// exercise registry.Core end-to-end (SPEC_FULL.md's "SIMD-aware wire/gate
// stubs" supplement). spec.md treats gate and wire implementations as
// external collaborators and explicitly excludes circuit-description
// parsing from scope; this package is test/example infrastructure, not a
// circuit compiler.
package circuit

import (
	"sync/atomic"

	"github.com/motionmpc/coreengine/registry"
)

// Wire carries a SIMD-width vector of single-bit lane values: one byte per
// lane, each either 0 or 1.
type Wire struct {
	id     registry.WireID
	Values []byte
}

// NewWire constructs a Wire with the given SIMD width, all lanes zeroed.
func NewWire(id registry.WireID, simdWidth int) *Wire {
	return &Wire{id: id, Values: make([]byte, simdWidth)}
}

func (w *Wire) ID() registry.WireID { return w.id }

// Gate extends registry.Gate with the evaluation and dependency-tracking
// hooks the online-phase scheduler needs.
type Gate interface {
	registry.Gate

	// Evaluate computes the gate's output wire(s) from its input wire(s).
	Evaluate()

	// Dependents returns the gate ids that become ready once this gate has
	// been evaluated (i.e. the successor gates spec §2 describes pushing
	// onto the active queue).
	Dependents() []registry.GateID
}

// InputGate carries externally-supplied lane values; it has no
// dependencies and is pushed directly onto the active queue at the start
// of evaluation.
type InputGate struct {
	id         registry.GateID
	Output     *Wire
	dependents []registry.GateID
}

// NewInputGate constructs an InputGate producing output.
func NewInputGate(id registry.GateID, output *Wire) *InputGate {
	return &InputGate{id: id, Output: output}
}

func (g *InputGate) ID() registry.GateID { return g.id }

// Evaluate is a no-op: an InputGate's output is set by the caller before
// evaluation begins.
func (g *InputGate) Evaluate() {}

func (g *InputGate) Dependents() []registry.GateID { return g.dependents }

// AddDependent records a downstream gate that becomes ready once this gate
// is evaluated. Build-phase only, like the rest of circuit construction.
func (g *InputGate) AddDependent(id registry.GateID) {
	g.dependents = append(g.dependents, id)
}

// CombineGate is a lane-wise XOR of two input wires, standing in for a
// boolean-sharing combine step. Wide enough to carry a SIMD width, per
// SPEC_FULL.md, without modeling any particular real gate's arithmetic.
type CombineGate struct {
	id          registry.GateID
	Left, Right *Wire
	Output      *Wire
	remaining   atomic.Int64 // pending-dependency counter
	dependents  []registry.GateID
}

// NewCombineGate constructs a CombineGate. The pending-dependency counter
// starts at 2 (the two input wires); concurrent evaluator workers decrement
// it via ResolveDependency as upstream gates complete.
func NewCombineGate(id registry.GateID, left, right, output *Wire) *CombineGate {
	g := &CombineGate{id: id, Left: left, Right: right, Output: output}
	g.remaining.Store(2)
	return g
}

func (g *CombineGate) ID() registry.GateID { return g.id }

func (g *CombineGate) Evaluate() {
	for i := range g.Output.Values {
		g.Output.Values[i] = g.Left.Values[i] ^ g.Right.Values[i]
	}
}

func (g *CombineGate) Dependents() []registry.GateID { return g.dependents }

// AddDependent records a downstream gate.
func (g *CombineGate) AddDependent(id registry.GateID) {
	g.dependents = append(g.dependents, id)
}

// ResolveDependency atomically decrements the pending-dependency counter,
// reporting true exactly once, when it reaches zero (the gate is ready for
// the active queue). Safe to call from multiple evaluator workers
// concurrently resolving gA and gB's dependents.
func (g *CombineGate) ResolveDependency() bool {
	return g.remaining.Add(-1) == 0
}
