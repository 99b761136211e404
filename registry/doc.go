// Package registry implements the circuit registry (spec §4.1): the single
// point of truth for a running MPC session. It hands out monotonically
// increasing gate, wire, and sharing-slot ids, holds the indexed gate/wire
// tables, and owns the thread-safe active-gate queue evaluator workers drain.
package registry
