// Package anon implements a full-domain generalization anonymizer.
//
// The engine searches the generalization lattice of a projected dataset for
// the transformation with the lowest information loss that satisfies the
// configured privacy criteria within the record suppression limit. Four
// search strategies are provided: an exhaustive optimal search and three
// best-effort heuristics (bottom-up, top-down and genetic) that honor time,
// step and loss limits.
//
// All per-run mutable state lives in a RunContext owned by the caller:
//
//   - the loss limit a heuristic stops at, typically a precomputed optimum
//   - the trajectory of improving solutions found during the run
//
// Nothing in this package is process-global, so two runs never share state
// unless the caller passes them the same RunContext.
package anon
