// Package experiment defines benchmark sweeps and expands them into trials.
//
// A Definition lists the axes of a sweep (privacy models, datasets, time
// limits, algorithms and an optional one-at-a-time tuning axis) together
// with the trial fields it holds fixed. Definitions are YAML documents;
// the four built-in presets reproduce the published experiments:
//
//	experiment1          heuristics vs. optimal, 5-anonymity
//	experiment1-tuning   genetic algorithm parameter tuning
//	experiment2-global   search trajectories, global recoding
//	experiment2-local    heuristics plus local transformation
//
// Generate is pure. Repetition 0 of every configuration is a warm-up whose
// results are not logged.
package experiment
