package experiment

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// Definition describes a sweep: the axes it varies and the trial fields it
// holds fixed.
type Definition struct {
	// Name identifies the experiment in logs and the result store.
	Name string `yaml:"name"`

	Description string `yaml:"description,omitempty"`

	// Output is the default CSV log path.
	Output string `yaml:"output"`

	// TrackTrajectory logs one row per improving checkpoint.
	TrackTrajectory bool `yaml:"track_trajectory,omitempty"`

	// Repetitions is the number of runs of every configuration. Run 0 is a
	// warm-up and is not logged.
	Repetitions int `yaml:"repetitions"`

	// WarmupTimeLimit replaces the time limit of run 0 when positive.
	WarmupTimeLimit int `yaml:"warmup_time_limit,omitempty"`

	Datasets      []string `yaml:"datasets"`
	Algorithms    []string `yaml:"algorithms"`
	PrivacyModels []string `yaml:"privacy_models"`

	// TimeLimits in milliseconds. Empty means the default limit only.
	TimeLimits []int `yaml:"time_limits,omitempty"`

	// Tuning varies one parameter at a time, all others at their defaults.
	Tuning []TuningAxis `yaml:"tuning,omitempty"`

	// Local enables iterated local transformation after the search.
	Local *Local `yaml:"local,omitempty"`

	Defaults Defaults `yaml:"defaults,omitempty"`

	// QIs is the number of leading quasi-identifiers used; 0 means all.
	QIs int `yaml:"qids,omitempty"`

	// Weighted assigns ascending loss weights to the quasi-identifiers.
	Weighted bool `yaml:"weighted,omitempty"`

	// LimitByOptimalLoss stops heuristics once they reach the optimal loss.
	LimitByOptimalLoss bool `yaml:"limit_by_optimal_loss,omitempty"`
}

// TuningAxis is one tuned parameter and the values it takes.
type TuningAxis struct {
	Parameter string    `yaml:"parameter"`
	Values    []float64 `yaml:"values"`
}

// Local configures iterated local transformation.
type Local struct {
	Iterations int `yaml:"iterations"`

	// SplitTimeLimit divides each time limit evenly between iterations.
	SplitTimeLimit bool `yaml:"split_time_limit,omitempty"`
}

// Defaults overrides trial fields for every generated trial. Nil fields
// keep the benchmark defaults.
type Defaults struct {
	K                   *int     `yaml:"k,omitempty"`
	Suppression         *float64 `yaml:"suppression,omitempty"`
	GSFactor            *float64 `yaml:"gs_factor,omitempty"`
	Aggregate           *string  `yaml:"aggregate,omitempty"`
	Iterations          *int     `yaml:"iterations,omitempty"`
	SubpopulationSize   *int     `yaml:"subpopulation_size,omitempty"`
	EliteFraction       *float64 `yaml:"elite_fraction,omitempty"`
	CrossoverFraction   *float64 `yaml:"crossover_fraction,omitempty"`
	ProductionFraction  *float64 `yaml:"production_fraction,omitempty"`
	MutationProbability *float64 `yaml:"mutation_probability,omitempty"`
	ImmigrationFraction *float64 `yaml:"immigration_fraction,omitempty"`
	ImmigrationInterval *int     `yaml:"immigration_interval,omitempty"`
	Triangle            *bool    `yaml:"triangle,omitempty"`
	DualPopulation      *bool    `yaml:"dual_population,omitempty"`
	TimeLimit           *int     `yaml:"time_limit,omitempty"`
	StepLimit           *int     `yaml:"step_limit,omitempty"`
	Seed                *uint64  `yaml:"seed,omitempty"`
}

// Load reads and validates a definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML definition. Unknown fields are rejected.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid experiment: %w", err)
	}
	return &def, nil
}

// Validate checks the required fields and the axis values.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.Repetitions < 1 {
		return fmt.Errorf("repetitions must be at least 1, got %d", d.Repetitions)
	}
	if len(d.Datasets) == 0 {
		return fmt.Errorf("datasets list is required and must be non-empty")
	}
	if len(d.Algorithms) == 0 {
		return fmt.Errorf("algorithms list is required and must be non-empty")
	}
	if len(d.PrivacyModels) == 0 {
		return fmt.Errorf("privacy_models list is required and must be non-empty")
	}
	if d.QIs < 0 {
		return fmt.Errorf("qids must not be negative, got %d", d.QIs)
	}
	for _, limit := range d.TimeLimits {
		if limit <= 0 {
			return fmt.Errorf("time limits must be positive, got %d", limit)
		}
	}
	if d.Local != nil && d.Local.Iterations < 1 {
		return fmt.Errorf("local.iterations must be at least 1, got %d", d.Local.Iterations)
	}
	for i, axis := range d.Tuning {
		p, err := ParseParameter(axis.Parameter)
		if err != nil {
			return fmt.Errorf("tuning[%d]: %w", i, err)
		}
		if len(axis.Values) == 0 {
			return fmt.Errorf("tuning[%d]: %s has no values", i, p)
		}
		for _, v := range axis.Values {
			if err := p.check(v); err != nil {
				return fmt.Errorf("tuning[%d]: %w", i, err)
			}
		}
	}
	return nil
}

// Preset returns the named built-in experiment.
func Preset(name string) (*Definition, error) {
	data, err := presetFS.ReadFile(path.Join("presets", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown experiment %q (available: %s)", name, strings.Join(Presets(), ", "))
	}
	return Parse(data)
}

// Presets lists the built-in experiment names in sorted order.
func Presets() []string {
	entries, err := fs.ReadDir(presetFS, "presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Resolve returns the definition at path when it names a file and the
// preset of that name otherwise.
func Resolve(nameOrPath string) (*Definition, error) {
	if strings.HasSuffix(nameOrPath, ".yaml") || strings.HasSuffix(nameOrPath, ".yml") {
		return Load(nameOrPath)
	}
	return Preset(nameOrPath)
}
