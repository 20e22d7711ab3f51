package harness

import (
	"time"

	"github.com/roach88/latticebench/internal/anon"
	"github.com/roach88/latticebench/internal/dataset"
	"github.com/roach88/latticebench/internal/trial"
)

// Translate builds the engine configuration of trial t over data. Limits at
// or above trial.Unlimited are passed on as unbounded.
func Translate(t trial.Trial, data *dataset.Data) anon.Config {
	cfg := anon.Config{
		Quality: anon.QualityModel{
			GSFactor:  t.GSFactor,
			Aggregate: t.Aggregate,
		},
		SuppressionLimit: t.Suppression,
		Algorithm:        t.Algorithm,
		Genetic: anon.GeneticParams{
			Iterations:          t.Iterations,
			SubpopulationSize:   t.SubpopulationSize,
			EliteFraction:       t.EliteFraction,
			CrossoverFraction:   t.CrossoverFraction,
			ProductionFraction:  t.ProductionFraction,
			MutationProbability: t.MutationProbability,
			ImmigrationFraction: t.ImmigrationFraction,
			ImmigrationInterval: t.ImmigrationInterval,
			Triangle:            t.Triangle,
			DualPopulation:      t.DualPopulation,
		},
		Seed: t.Seed,
	}
	if t.Privacy != nil {
		cfg.Criteria = []anon.Criterion{t.Privacy.Criterion()}
	}
	if t.TimeLimit > 0 && t.TimeLimit < trial.Unlimited {
		cfg.TimeLimit = time.Duration(t.TimeLimit) * time.Millisecond
	}
	if t.StepLimit > 0 && t.StepLimit < trial.Unlimited {
		cfg.StepLimit = t.StepLimit
	}
	if t.WeightedQIs && data != nil {
		cfg.Weights = projectedWeights(data)
	}
	return cfg
}

// projectedWeights ramps weights over the dataset's full quasi-identifier
// list and keeps those of the projected columns, so an attribute weighs the
// same whatever the projection.
func projectedWeights(data *dataset.Data) map[string]float64 {
	if len(data.QIs) == 0 {
		return RampWeights(data.Header)
	}
	all := RampWeights(data.QIs)
	weights := make(map[string]float64, len(data.Header))
	for _, a := range data.Header {
		weights[a] = all[a]
	}
	return weights
}

// RampWeights weighs the i-th of n attributes min(1, i/(n-1)), so the first
// attribute weighs 0 and the last 1. A single attribute weighs 1.
func RampWeights(attributes []string) map[string]float64 {
	weights := make(map[string]float64, len(attributes))
	n := len(attributes)
	for i, a := range attributes {
		if n == 1 {
			weights[a] = 1
			continue
		}
		w := float64(i) / float64(n-1)
		if w > 1 {
			w = 1
		}
		weights[a] = w
	}
	return weights
}
