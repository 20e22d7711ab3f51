package trial

import (
	"fmt"
	"strconv"

	"github.com/roach88/latticebench/internal/anon"
)

// Privacy model tags as written to result logs.
const (
	TagKAnonymity           = "K_ANONYMITY"
	TagPopulationUniqueness = "POPULATION_UNIQUENESS"
)

// UniquenessThreshold is the fixed population-uniqueness bound.
const UniquenessThreshold = 0.01

// PrivacyModel is the privacy requirement of a trial. The set of models is
// closed: KAnonymity and PopulationUniqueness are the only variants.
type PrivacyModel interface {
	// Tag returns the model's log name.
	Tag() string

	// K returns the k of k-anonymity, or 0 for other models.
	K() int

	// Parameter returns the model's parameter in canonical string form.
	Parameter() string

	// Criterion builds the engine criterion enforcing the model.
	Criterion() anon.Criterion

	privacyModel()
}

type kAnonymity struct {
	k int
}

// KAnonymity requires every equivalence class to contain at least k records.
func KAnonymity(k int) PrivacyModel {
	return kAnonymity{k: k}
}

func (m kAnonymity) Tag() string               { return TagKAnonymity }
func (m kAnonymity) K() int                    { return m.k }
func (m kAnonymity) Parameter() string         { return strconv.Itoa(m.k) }
func (m kAnonymity) Criterion() anon.Criterion { return anon.KAnonymity{K: m.k} }
func (kAnonymity) privacyModel()               {}

type populationUniqueness struct{}

// PopulationUniqueness bounds the share of population uniques at 1%, as
// estimated by the Pitman model against the population of the USA.
func PopulationUniqueness() PrivacyModel {
	return populationUniqueness{}
}

func (populationUniqueness) Tag() string { return TagPopulationUniqueness }
func (populationUniqueness) K() int      { return 0 }
func (populationUniqueness) Parameter() string {
	return strconv.FormatFloat(UniquenessThreshold, 'g', -1, 64)
}
func (populationUniqueness) Criterion() anon.Criterion {
	return anon.PopulationUniqueness{
		Threshold:  UniquenessThreshold,
		Model:      anon.Pitman,
		Population: anon.USA,
	}
}
func (populationUniqueness) privacyModel() {}

// ParsePrivacyModel maps a log tag to a model. k is only used by
// k-anonymity.
func ParsePrivacyModel(tag string, k int) (PrivacyModel, error) {
	switch tag {
	case TagKAnonymity, "K":
		if k < 1 {
			return nil, fmt.Errorf("k-anonymity needs k >= 1, got %d", k)
		}
		return KAnonymity(k), nil
	case TagPopulationUniqueness, "PU":
		return PopulationUniqueness(), nil
	}
	return nil, fmt.Errorf("unknown privacy model %q", tag)
}
