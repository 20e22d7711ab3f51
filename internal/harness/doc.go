// Package harness runs benchmark sweeps.
//
// A sweep is an ordered list of trials executed strictly sequentially. For
// every trial the harness resets a run context, translates the trial into
// an engine configuration, optionally bounds the search by the optimal loss
// of the trial's objective, runs the engine, optionally refines the result
// with local recoding, and writes one result row (or one row per trajectory
// checkpoint when trajectory tracking is on).
//
// # Baselines
//
// Optimal losses are memoized in a BaselineCache. By default the cache is
// keyed by the composite objective tuple. WithAdditiveKeys switches to the
// additive integer key, which reproduces result sets computed with it,
// including baselines shared between colliding objectives.
//
// # Utility resolution
//
// In trajectory mode each checkpoint's transformation is located in the
// result's lattice by walking up from the bottom, always stepping to the
// successor closest to the target. A walk that overshoots or runs out of
// successors resolves to utility 0.
//
// # Errors
//
// Every failure is fatal to the sweep and is reported as a *TrialError
// carrying the failing trial and a Code. There is no partial-sweep
// continuation.
package harness
