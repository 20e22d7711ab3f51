package anon

import (
	"fmt"
	"math"
	"time"
)

// Algorithm selects the lattice search strategy.
type Algorithm string

const (
	// Optimal evaluates every node and ignores all limits.
	Optimal Algorithm = "OPTIMAL"

	// BestEffortBottomUp is a best-first search upwards from the bottom node.
	BestEffortBottomUp Algorithm = "BEST_EFFORT_BOTTOM_UP"

	// BestEffortGenetic evolves populations of transformations.
	BestEffortGenetic Algorithm = "BEST_EFFORT_GENETIC"

	// BestEffortTopDown is a best-first search downwards from the top node.
	BestEffortTopDown Algorithm = "BEST_EFFORT_TOP_DOWN"
)

// Algorithms lists every supported algorithm.
var Algorithms = []Algorithm{Optimal, BestEffortBottomUp, BestEffortGenetic, BestEffortTopDown}

// ParseAlgorithm maps a name to an Algorithm. The short names OPTIMAL,
// BOTTOM_UP, GENETIC and TOP_DOWN are accepted too.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case string(Optimal):
		return Optimal, nil
	case string(BestEffortBottomUp), "BOTTOM_UP":
		return BestEffortBottomUp, nil
	case string(BestEffortGenetic), "GENETIC":
		return BestEffortGenetic, nil
	case string(BestEffortTopDown), "TOP_DOWN":
		return BestEffortTopDown, nil
	}
	return "", fmt.Errorf("unknown algorithm %q", s)
}

// AggregateFunction combines per-attribute loss into one value.
type AggregateFunction string

const (
	ArithmeticMean AggregateFunction = "ARITHMETIC_MEAN"
	GeometricMean  AggregateFunction = "GEOMETRIC_MEAN"
	Sum            AggregateFunction = "SUM"
	Maximum        AggregateFunction = "MAXIMUM"
)

// ParseAggregateFunction maps a name to an AggregateFunction.
func ParseAggregateFunction(s string) (AggregateFunction, error) {
	switch f := AggregateFunction(s); f {
	case ArithmeticMean, GeometricMean, Sum, Maximum:
		return f, nil
	}
	return "", fmt.Errorf("unknown aggregate function %q", s)
}

// QualityModel configures the loss metric.
//
// GSFactor trades generalization against suppression: 0 makes suppressed
// cells free, 1 makes generalized cells free, 0.5 weighs both fully.
type QualityModel struct {
	GSFactor  float64
	Aggregate AggregateFunction
}

// factors returns the weights of generalized and suppressed cells.
func (q QualityModel) factors() (g, s float64) {
	g = math.Min(1, 2*(1-q.GSFactor))
	s = math.Min(1, 2*q.GSFactor)
	return g, s
}

// GeneticParams configures BestEffortGenetic.
type GeneticParams struct {
	Iterations          int
	SubpopulationSize   int
	EliteFraction       float64
	CrossoverFraction   float64
	ProductionFraction  float64
	MutationProbability float64
	ImmigrationFraction float64
	ImmigrationInterval int
	Triangle            bool
	DualPopulation      bool
}

// Config is the complete configuration of one anonymization run.
type Config struct {
	Quality          QualityModel
	Criteria         []Criterion
	SuppressionLimit float64
	Algorithm        Algorithm
	Genetic          GeneticParams

	// TimeLimit bounds heuristic searches. Zero means unbounded.
	TimeLimit time.Duration

	// StepLimit bounds the number of evaluated transformations of a
	// heuristic search. Zero means unbounded.
	StepLimit int

	// Weights maps attribute names to loss weights. Attributes missing from
	// a non-nil map weigh 0; a nil map weighs every attribute 1.
	Weights map[string]float64

	// Seed drives the genetic search.
	Seed uint64
}

// DefaultConfig returns a k-anonymity (k=5) configuration for the optimal
// algorithm with an arithmetic-mean loss and no suppression limit.
func DefaultConfig() Config {
	return Config{
		Quality:          QualityModel{GSFactor: 0.5, Aggregate: ArithmeticMean},
		Criteria:         []Criterion{KAnonymity{K: 5}},
		SuppressionLimit: 1,
		Algorithm:        Optimal,
		Genetic: GeneticParams{
			Iterations:          math.MaxInt32,
			SubpopulationSize:   100,
			EliteFraction:       0.2,
			CrossoverFraction:   0.2,
			ProductionFraction:  0.2,
			MutationProbability: 0.2,
			ImmigrationFraction: 0.2,
			ImmigrationInterval: 10,
			Triangle:            true,
			DualPopulation:      true,
		},
	}
}

// Validate checks that every parameter is in range.
func (c Config) Validate() error {
	if _, err := ParseAlgorithm(string(c.Algorithm)); err != nil {
		return err
	}
	if _, err := ParseAggregateFunction(string(c.Quality.Aggregate)); err != nil {
		return err
	}
	if len(c.Criteria) == 0 {
		return fmt.Errorf("no privacy criterion configured")
	}
	for _, cr := range c.Criteria {
		if err := cr.validate(); err != nil {
			return err
		}
	}
	if err := unit("gs factor", c.Quality.GSFactor); err != nil {
		return err
	}
	if err := unit("suppression limit", c.SuppressionLimit); err != nil {
		return err
	}
	if c.TimeLimit < 0 || c.StepLimit < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	if c.Algorithm == BestEffortGenetic {
		g := c.Genetic
		if g.SubpopulationSize < 1 {
			return fmt.Errorf("subpopulation size must be positive, got %d", g.SubpopulationSize)
		}
		for name, v := range map[string]float64{
			"elite fraction":       g.EliteFraction,
			"crossover fraction":   g.CrossoverFraction,
			"production fraction":  g.ProductionFraction,
			"mutation probability": g.MutationProbability,
			"immigration fraction": g.ImmigrationFraction,
		} {
			if err := unit(name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func unit(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%s must be in [0,1], got %v", name, v)
	}
	return nil
}
