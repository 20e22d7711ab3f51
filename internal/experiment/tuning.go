package experiment

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/latticebench/internal/trial"
)

// Parameter is a genetic algorithm setting a tuning sweep can vary.
type Parameter string

// Tunable parameters, named as they appear in result logs.
const (
	EliteFraction       Parameter = "eliteFraction"
	CrossoverFraction   Parameter = "crossOverFraction"
	ProductionFraction  Parameter = "productionFraction"
	MutationProbability Parameter = "mutationProbability"
	ImmigrationFraction Parameter = "immigrationFraction"
	ImmigrationInterval Parameter = "immigrationInterval"
	SubpopulationSize   Parameter = "subpopulationSize"
	GAImplementation    Parameter = "gaImplementation"
)

// Parameters lists every tunable parameter.
var Parameters = []Parameter{
	EliteFraction,
	CrossoverFraction,
	ProductionFraction,
	MutationProbability,
	ImmigrationFraction,
	ImmigrationInterval,
	SubpopulationSize,
	GAImplementation,
}

// GA implementation variants.
const (
	GATriangleDual = 0 // triangle initialization, two populations
	GADual         = 1 // random initialization, two populations
	GASingle       = 2 // random initialization, one population of twice the size
)

// ParseParameter maps a name to a Parameter, ignoring case.
func ParseParameter(name string) (Parameter, error) {
	for _, p := range Parameters {
		if strings.EqualFold(name, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown tuning parameter %q", name)
}

func (p Parameter) integral() bool {
	switch p {
	case ImmigrationInterval, SubpopulationSize, GAImplementation:
		return true
	}
	return false
}

func (p Parameter) check(v float64) error {
	if p.integral() && v != math.Trunc(v) {
		return fmt.Errorf("%s takes integers, got %v", p, v)
	}
	switch p {
	case EliteFraction, CrossoverFraction, ProductionFraction, MutationProbability, ImmigrationFraction:
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", p, v)
		}
	case ImmigrationInterval, SubpopulationSize:
		if v < 1 {
			return fmt.Errorf("%s must be at least 1, got %v", p, v)
		}
	case GAImplementation:
		if v < GATriangleDual || v > GASingle {
			return fmt.Errorf("%s must be 0, 1 or 2, got %v", p, v)
		}
	}
	return nil
}

// format renders v as the log's tuning value.
func (p Parameter) format(v float64) string {
	if p.integral() {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// apply sets the parameter on t and records it as the trial's tuning
// parameter.
func (p Parameter) apply(t *trial.Trial, v float64) {
	t.TuningParameter = string(p)
	t.TuningValue = p.format(v)
	switch p {
	case EliteFraction:
		t.EliteFraction = v
	case CrossoverFraction:
		t.CrossoverFraction = v
	case ProductionFraction:
		t.ProductionFraction = v
	case MutationProbability:
		t.MutationProbability = v
	case ImmigrationFraction:
		t.ImmigrationFraction = v
	case ImmigrationInterval:
		t.ImmigrationInterval = int(v)
	case SubpopulationSize:
		t.SubpopulationSize = int(v)
	case GAImplementation:
		switch int(v) {
		case GATriangleDual:
			t.Triangle, t.DualPopulation = true, true
		case GADual:
			t.Triangle, t.DualPopulation = false, true
		case GASingle:
			t.Triangle, t.DualPopulation = false, false
			t.SubpopulationSize *= 2
		}
	}
}
