package experiment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/latticebench/internal/anon"
	"github.com/roach88/latticebench/internal/trial"
)

// Generate expands d into its ordered trial list. Axes nest, outermost
// first: privacy model, repetition, dataset, time limit, algorithm, tuning
// parameter and tuning value. An absent axis contributes one element.
//
// Generate is deterministic: equal definitions give equal lists.
func Generate(d *Definition) ([]trial.Trial, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	base, err := d.base()
	if err != nil {
		return nil, err
	}
	models, err := d.privacyModels(base.Privacy.K())
	if err != nil {
		return nil, err
	}
	algorithms := make([]anon.Algorithm, 0, len(d.Algorithms))
	for _, name := range d.Algorithms {
		a, err := anon.ParseAlgorithm(name)
		if err != nil {
			return nil, err
		}
		algorithms = append(algorithms, a)
	}
	timeLimits := d.TimeLimits
	if len(timeLimits) == 0 {
		timeLimits = []int{base.TimeLimit}
	}
	type setting struct {
		param Parameter
		value float64
	}
	settings := []setting{{}}
	if len(d.Tuning) > 0 {
		settings = settings[:0]
		for _, axis := range d.Tuning {
			p, _ := ParseParameter(axis.Parameter)
			for _, v := range axis.Values {
				settings = append(settings, setting{param: p, value: v})
			}
		}
	}

	trials := make([]trial.Trial, 0,
		len(models)*d.Repetitions*len(d.Datasets)*len(timeLimits)*len(algorithms)*len(settings))
	for _, model := range models {
		for run := 0; run < d.Repetitions; run++ {
			for _, ds := range d.Datasets {
				for _, limit := range timeLimits {
					for _, alg := range algorithms {
						for _, s := range settings {
							t := base
							t.Privacy = model
							t.Run = run
							t.Seed = base.Seed + uint64(run)
							t.Dataset = ds
							t.Algorithm = alg
							t.TimeLimit = d.timeLimit(limit, run)
							if s.param != "" {
								s.param.apply(&t, s.value)
							}
							if run == 0 {
								t.Log = false
							}
							trials = append(trials, t)
						}
					}
				}
			}
		}
	}
	return trials, nil
}

// base returns the trial every generated trial starts from.
func (d *Definition) base() (trial.Trial, error) {
	t := trial.Default()
	o := d.Defaults
	k := 5
	if o.K != nil {
		k = *o.K
	}
	t.Privacy = trial.KAnonymity(k)
	setFloat(&t.Suppression, o.Suppression)
	setFloat(&t.GSFactor, o.GSFactor)
	if o.Aggregate != nil {
		f, err := anon.ParseAggregateFunction(*o.Aggregate)
		if err != nil {
			return t, err
		}
		t.Aggregate = f
	}
	setInt(&t.Iterations, o.Iterations)
	setInt(&t.SubpopulationSize, o.SubpopulationSize)
	setFloat(&t.EliteFraction, o.EliteFraction)
	setFloat(&t.CrossoverFraction, o.CrossoverFraction)
	setFloat(&t.ProductionFraction, o.ProductionFraction)
	setFloat(&t.MutationProbability, o.MutationProbability)
	setFloat(&t.ImmigrationFraction, o.ImmigrationFraction)
	setInt(&t.ImmigrationInterval, o.ImmigrationInterval)
	if o.Triangle != nil {
		t.Triangle = *o.Triangle
	}
	if o.DualPopulation != nil {
		t.DualPopulation = *o.DualPopulation
	}
	setInt(&t.TimeLimit, o.TimeLimit)
	setInt(&t.StepLimit, o.StepLimit)
	if o.Seed != nil {
		t.Seed = *o.Seed
	}
	t.QIs = d.QIs
	t.WeightedQIs = d.Weighted
	t.LimitByOptimalLoss = d.LimitByOptimalLoss

	if d.Local != nil {
		t.LocalTransformation = true
		t.LocalIterations = d.Local.Iterations
		t.GSFactor = 0
		t.Suppression = 1 - 1/float64(d.Local.Iterations)
	}
	return t, nil
}

// timeLimit returns the limit of one run: the warm-up limit on run 0 when
// set, divided between local iterations when splitting.
func (d *Definition) timeLimit(limit, run int) int {
	if run == 0 && d.WarmupTimeLimit > 0 {
		limit = d.WarmupTimeLimit
	}
	if d.Local != nil && d.Local.SplitTimeLimit && limit < trial.Unlimited {
		limit = int(float64(limit) / float64(d.Local.Iterations))
	}
	return limit
}

// privacyModels parses the privacy model axis. Entries are a tag, a short
// tag or a tag with a parameter, e.g. K_ANONYMITY(10).
func (d *Definition) privacyModels(k int) ([]trial.PrivacyModel, error) {
	models := make([]trial.PrivacyModel, 0, len(d.PrivacyModels))
	for _, entry := range d.PrivacyModels {
		tag, param := entry, ""
		if open := strings.IndexByte(entry, '('); open >= 0 && strings.HasSuffix(entry, ")") {
			tag, param = entry[:open], entry[open+1:len(entry)-1]
		}
		modelK := k
		if param != "" {
			n, err := strconv.Atoi(param)
			if err != nil {
				return nil, fmt.Errorf("privacy model %q: bad parameter: %w", entry, err)
			}
			modelK = n
		}
		m, err := trial.ParsePrivacyModel(tag, modelK)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
