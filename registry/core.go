package registry

import (
	"context"
	"sync/atomic"

	"github.com/motionmpc/coreengine/internal/stats"
	"github.com/motionmpc/coreengine/internal/xerrors"
	"github.com/motionmpc/coreengine/internal/xlog"
	"github.com/motionmpc/coreengine/transport"
)

// GateID and WireID are allocated monotonically from zero and never reused.
type (
	GateID uint64
	WireID uint64
)

// Gate is the polymorphic gate object a slot owns. spec §9 models gate
// storage as a tagged variant / interface table rather than inheritance;
// this interface is that table's element type. Concrete gate kinds
// (input gates, combine gates, ...) live outside this package — spec §1
// treats gate/wire implementations as external collaborators.
type Gate interface {
	ID() GateID
}

// Wire is the minimal contract the registry needs from a wire
// implementation.
type Wire interface {
	ID() WireID
}

// Core is the circuit registry. The zero value is not usable; construct
// with New.
type Core struct {
	myID   int
	logger *xlog.Logger
	stats  stats.Sink

	// --- build-phase state: single-threaded, plain counters (spec §4.1
	// rationale: ID allocation runs before any evaluator goroutine exists). ---
	nextGateID   uint64
	nextWireID   uint64
	nextArithID  uint64
	nextBoolID   uint64
	gates        []Gate // slot == nil means tombstoned
	wires        []Wire
	inputGateIDs []GateID
	transports   []transport.Handler
	totalGates   uint64

	// --- online-phase state: touched concurrently. ---
	queue     *activeQueue
	evaluated atomic.Uint64
}

// New constructs an empty Core for party myID, using logger and sink for
// the ambient logging/statistics collaborators described in spec §6.
func New(myID int, logger *xlog.Logger, sink stats.Sink) *Core {
	if logger == nil {
		logger = xlog.Nop()
	}
	if sink == nil {
		sink = stats.Nop{}
	}
	return &Core{
		myID:   myID,
		logger: logger,
		stats:  sink,
		queue:  newActiveQueue(),
	}
}

// MyID returns this party's 0-based index.
func (c *Core) MyID() int { return c.myID }

// NextGateID returns the current gate-id counter, then increments it.
// Single-threaded: callable only from the circuit-build phase.
func (c *Core) NextGateID() GateID {
	id := c.nextGateID
	c.nextGateID++
	return GateID(id)
}

// NextWireID returns the current wire-id counter, then increments it.
func (c *Core) NextWireID() WireID {
	id := c.nextWireID
	c.nextWireID++
	return WireID(id)
}

// NextArithmeticSharingID requires n >= 1; returns the current counter and
// advances it by n.
func (c *Core) NextArithmeticSharingID(n uint64) (uint64, error) {
	if n < 1 {
		return 0, xerrors.New(xerrors.InvalidArgument, "NextArithmeticSharingID", nil)
	}
	start := c.nextArithID
	c.nextArithID += n
	return start, nil
}

// NextBooleanSharingID requires n >= 1; returns the current counter and
// advances it by n.
func (c *Core) NextBooleanSharingID(n uint64) (uint64, error) {
	if n < 1 {
		return 0, xerrors.New(xerrors.InvalidArgument, "NextBooleanSharingID", nil)
	}
	start := c.nextBoolID
	c.nextBoolID += n
	return start, nil
}

// RegisterGate appends g to the gate table. Panics if g is nil: a missing
// gate is a programmer error, not a protocol error (spec §4.1).
func (c *Core) RegisterGate(g Gate) {
	if g == nil {
		panic("registry: RegisterGate: g must not be nil")
	}
	c.growGates(int(g.ID()))
	c.gates[g.ID()] = g
	c.totalGates++
}

// RegisterInputGate registers g like RegisterGate, and additionally records
// it in the input-gate index.
func (c *Core) RegisterInputGate(g Gate) {
	c.RegisterGate(g)
	c.inputGateIDs = append(c.inputGateIDs, g.ID())
}

func (c *Core) growGates(id int) {
	if id < len(c.gates) {
		return
	}
	grown := make([]Gate, id+1)
	copy(grown, c.gates)
	c.gates = grown
}

// GetGate looks up a gate by id. ok is false if id is out of range or the
// slot has been tombstoned by UnregisterGate — spec §9's open question on
// tombstoned lookups is resolved here as "return a null handle" (ok=false),
// matching the reference's nil-return behavior, expressed the idiomatic Go
// way instead of via a sentinel.
func (c *Core) GetGate(id GateID) (Gate, bool) {
	if int(id) < 0 || int(id) >= len(c.gates) {
		return nil, false
	}
	g := c.gates[id]
	return g, g != nil
}

// GetWire looks up a wire by id, analogous to GetGate.
//
// spec §9 leaves open whether UnregisterWire is ever called during
// evaluation; this package asserts build-time-only usage by not
// synchronizing the wire table, matching the reference.
func (c *Core) GetWire(id WireID) (Wire, bool) {
	if int(id) < 0 || int(id) >= len(c.wires) {
		return nil, false
	}
	w := c.wires[id]
	return w, w != nil
}

// RegisterWire appends w to the wire table at w.ID(), single-threaded,
// build-phase only.
func (c *Core) RegisterWire(w Wire) {
	if w == nil {
		panic("registry: RegisterWire: w must not be nil")
	}
	if int(w.ID()) >= len(c.wires) {
		grown := make([]Wire, w.ID()+1)
		copy(grown, c.wires)
		c.wires = grown
	}
	c.wires[w.ID()] = w
}

// UnregisterGate tombstones the gate slot at id. The slot remains
// indexable; GetGate subsequently reports ok=false for it.
func (c *Core) UnregisterGate(id GateID) {
	if int(id) >= 0 && int(id) < len(c.gates) {
		c.gates[id] = nil
	}
}

// UnregisterWire tombstones the wire slot at id. Per spec §9, this is
// asserted build-time-only: no lock guards the wire table.
func (c *Core) UnregisterWire(id WireID) {
	if int(id) >= 0 && int(id) < len(c.wires) {
		c.wires[id] = nil
	}
}

// InputGateIDs returns the append-only sequence of gate ids flagged as
// inputs, in registration order.
func (c *Core) InputGateIDs() []GateID {
	return c.inputGateIDs
}

// RegisterTransports installs the per-party transport handler table. Must
// precede any call to Send.
func (c *Core) RegisterTransports(handlers []transport.Handler) {
	c.transports = handlers
}

// Send delegates message to the transport handler for partyID. Fails with
// InvalidArgument if partyID is the local party's own id (spec §4.1).
func (c *Core) Send(ctx context.Context, partyID int, message []byte) error {
	if partyID == c.myID {
		return xerrors.New(xerrors.InvalidArgument, "Send", nil)
	}
	if partyID < 0 || partyID >= len(c.transports) || c.transports[partyID] == nil {
		return xerrors.New(xerrors.InvalidArgument, "Send", nil)
	}
	if err := c.transports[partyID].SendMessage(ctx, message); err != nil {
		return xerrors.New(xerrors.TransportFailure, "Send", err)
	}
	return nil
}

// PartyCount returns the number of parties, implied by the length of the
// transport-handler table (spec §6).
func (c *Core) PartyCount() int { return len(c.transports) }

// AddToActiveQueue pushes gateID onto the active-gate queue under the
// queue's mutex, then emits a trace log line (spec §6: "trace-level entries
// are emitted on every add_to_active_queue").
func (c *Core) AddToActiveQueue(gateID GateID) {
	c.queue.push(gateID)
	c.logger.Trace("gate pushed to active queue", xlog.Uint64("gate_id", uint64(gateID)))
}

// NoGate is returned by PopActiveGate when the queue is empty.
const NoGate GateID = ^GateID(0)

// PopActiveGate returns the next ready gate id, or NoGate if the queue is
// currently empty. Race-free with concurrent AddToActiveQueue: per spec §9,
// the empty check happens inside the same critical section as the pop,
// fixing the reference's racy check-then-lock sequence.
func (c *Core) PopActiveGate() GateID {
	if id, ok := c.queue.pop(); ok {
		return id
	}
	return NoGate
}

// IncrementEvaluated atomically increments the evaluated-gate counter.
func (c *Core) IncrementEvaluated() {
	c.evaluated.Add(1)
}

// EvaluatedCount atomically reads the evaluated-gate counter.
func (c *Core) EvaluatedCount() uint64 {
	return c.evaluated.Load()
}

// TotalGates returns the number of registered gates, set during the
// single-threaded build phase.
func (c *Core) TotalGates() uint64 {
	return c.totalGates
}

// Done reports whether every registered gate has been evaluated, the
// termination condition evaluator workers poll for.
func (c *Core) Done() bool {
	return c.EvaluatedCount() >= c.TotalGates()
}
