package trial

import (
	"fmt"
	"math"
	"strconv"

	"github.com/roach88/latticebench/internal/anon"
)

// Unlimited is the value of an iteration, time or step limit that does not
// bound the search.
const Unlimited = math.MaxInt32

// NoTuningParameter is the tuning parameter name of trials outside a
// tuning sweep.
const NoTuningParameter = "none"

// NoTuningValue is the tuning value of trials outside a tuning sweep.
const NoTuningValue = "null"

// Trial is the complete parameter set of one benchmark trial.
type Trial struct {
	// Objective identity.
	Dataset     string
	QIs         int // leading quasi-identifiers used; 0 means all
	Privacy     PrivacyModel
	Suppression float64

	// Algorithm and quality model.
	Algorithm           anon.Algorithm
	GSFactor            float64
	Aggregate           anon.AggregateFunction
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
	TimeLimit           int // milliseconds
	StepLimit           int
	LocalTransformation bool
	LocalIterations     int
	WeightedQIs         bool
	Seed                uint64

	// Bookkeeping.
	Run                int
	Log                bool
	TuningParameter    string
	TuningValue        string
	LimitByOptimalLoss bool
}

// Default returns a trial with the benchmark defaults: 5-anonymity with
// full suppression allowed, an arithmetic-mean loss with gs factor 0.5, the
// optimal algorithm and unbounded limits.
func Default() Trial {
	return Trial{
		Privacy:             KAnonymity(5),
		Suppression:         1,
		Algorithm:           anon.Optimal,
		GSFactor:            0.5,
		Aggregate:           anon.ArithmeticMean,
		Iterations:          Unlimited,
		SubpopulationSize:   100,
		EliteFraction:       0.2,
		CrossoverFraction:   0.2,
		ProductionFraction:  0.2,
		MutationProbability: 0.2,
		ImmigrationFraction: 0.2,
		ImmigrationInterval: 10,
		Triangle:            true,
		DualPopulation:      true,
		TimeLimit:           Unlimited,
		StepLimit:           Unlimited,
		Run:                 -1,
		Log:                 true,
		TuningParameter:     NoTuningParameter,
		TuningValue:         NoTuningValue,
	}
}

// String returns the progress label of the trial.
func (t Trial) String() string {
	return fmt.Sprintf("%s | %s | TimeLimit=%d | TuningParameter=%s (%s) | RunNumber=%d",
		t.Algorithm, t.Dataset, t.TimeLimit, t.TuningParameter, t.TuningValue, t.Run)
}

// PrivacyTag returns the tag of the trial's privacy model, or "" when none
// is set.
func (t Trial) PrivacyTag() string {
	if t.Privacy == nil {
		return ""
	}
	return t.Privacy.Tag()
}

// Baseline returns the trial that computes the optimal loss for t: the same
// objective and quality model searched exhaustively.
func (t Trial) Baseline() Trial {
	b := t
	b.Algorithm = anon.Optimal
	b.LimitByOptimalLoss = false
	b.LocalTransformation = false
	b.Log = false
	return b
}

// Validate checks the fields the harness depends on.
func (t Trial) Validate() error {
	if t.Dataset == "" {
		return fmt.Errorf("trial has no dataset")
	}
	if t.Privacy == nil {
		return fmt.Errorf("trial %s has no privacy model", t.Dataset)
	}
	if t.QIs < 0 {
		return fmt.Errorf("trial %s: negative quasi-identifier count %d", t.Dataset, t.QIs)
	}
	if t.LocalTransformation && t.LocalIterations < 1 {
		return fmt.Errorf("trial %s: local transformation needs at least one iteration", t.Dataset)
	}
	return nil
}

// formatFloat renders a float in its shortest round-tripping form.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
