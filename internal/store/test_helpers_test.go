package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/latticebench/internal/resultlog"
)

// resultColumns are the log columns as stored in the results table.
var resultColumns = []string{
	"algorithm", "dataset", "privacy_model", "k", "qids", "weighted", "iterations",
	"elite_fraction", "crossover_fraction", "production_fraction",
	"mutation_probability", "immigration_fraction", "immigration_interval",
	"subpopulation_size", "triangle_pattern", "dual_population",
	"time_limit", "step_limit", "limit_by_optimal_loss", "batch_number",
	"time", "external_utility", "internal_utility",
	"tuning_parameter", "tuning_value",
}

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleRow creates a result row with every column set.
func sampleRow(dataset string, run int) resultlog.Row {
	return resultlog.Row{
		Algorithm:           "BEST_EFFORT_GENETIC",
		Dataset:             dataset,
		PrivacyModel:        "K_ANONYMITY",
		K:                   5,
		QIs:                 9,
		Weighted:            true,
		Iterations:          2147483647,
		EliteFraction:       0.2,
		CrossoverFraction:   0.3,
		ProductionFraction:  0.4,
		MutationProbability: 0.05,
		ImmigrationFraction: 0.1,
		ImmigrationInterval: 10,
		SubpopulationSize:   100,
		TrianglePattern:     true,
		DualPopulation:      false,
		TimeLimit:           5000,
		StepLimit:           2147483647,
		LimitByOptimalLoss:  true,
		BatchNumber:         run,
		Time:                5012,
		ExternalUtility:     0.8125,
		InternalUtility:     0.75,
		TuningParameter:     "eliteFraction",
		TuningValue:         "0.2",
		Fingerprint:         "fp-" + dataset,
	}
}
