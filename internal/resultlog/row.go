// Package resultlog records benchmark results.
//
// A Row holds the 25 columns of one result line. Sinks persist rows: the CSV
// sink appends ';'-separated lines to a log file, writing the header once,
// and the store package provides a SQLite sink. ReadCSV parses a log back
// for reporting.
package resultlog

import (
	"fmt"
	"strconv"

	"github.com/roach88/latticebench/internal/trial"
)

// Columns are the log columns in file order.
var Columns = []string{
	"algorithm",
	"dataset",
	"privacyModel",
	"k",
	"qids",
	"weighted",
	"iterations",
	"eliteFraction",
	"crossoverFraction",
	"productionFraction",
	"mutationProbability",
	"immigrationFraction",
	"immigrationInterval",
	"subpopulationSize",
	"trianglePattern",
	"dualPopulation",
	"timeLimit",
	"stepLimit",
	"limitByOptimalLoss",
	"batchNumber",
	"time",
	"externalUtility",
	"internalUtility",
	"tuningParameter",
	"tuningValue",
}

// Row is one result line.
type Row struct {
	Algorithm           string  `json:"algorithm"`
	Dataset             string  `json:"dataset"`
	PrivacyModel        string  `json:"privacy_model"`
	K                   int     `json:"k"`
	QIs                 int     `json:"qids"`
	Weighted            bool    `json:"weighted"`
	Iterations          int     `json:"iterations"`
	EliteFraction       float64 `json:"elite_fraction"`
	CrossoverFraction   float64 `json:"crossover_fraction"`
	ProductionFraction  float64 `json:"production_fraction"`
	MutationProbability float64 `json:"mutation_probability"`
	ImmigrationFraction float64 `json:"immigration_fraction"`
	ImmigrationInterval int     `json:"immigration_interval"`
	SubpopulationSize   int     `json:"subpopulation_size"`
	TrianglePattern     bool    `json:"triangle_pattern"`
	DualPopulation      bool    `json:"dual_population"`
	TimeLimit           int     `json:"time_limit"`
	StepLimit           int     `json:"step_limit"`
	LimitByOptimalLoss  bool    `json:"limit_by_optimal_loss"`
	BatchNumber         int     `json:"batch_number"`
	Time                int64   `json:"time"`
	ExternalUtility     float64 `json:"external_utility"`
	InternalUtility     float64 `json:"internal_utility"`
	TuningParameter     string  `json:"tuning_parameter"`
	TuningValue         string  `json:"tuning_value"`

	// Fingerprint identifies the trial that produced the row. It is not a
	// log column; the SQLite store keeps it.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// NewRow builds the row of trial t with the measured time in milliseconds
// and the two utilities.
func NewRow(t trial.Trial, elapsed int64, external, internal float64) Row {
	k := 0
	if t.Privacy != nil {
		k = t.Privacy.K()
	}
	return Row{
		Algorithm:           string(t.Algorithm),
		Dataset:             t.Dataset,
		PrivacyModel:        t.PrivacyTag(),
		K:                   k,
		QIs:                 t.QIs,
		Weighted:            t.WeightedQIs,
		Iterations:          t.Iterations,
		EliteFraction:       t.EliteFraction,
		CrossoverFraction:   t.CrossoverFraction,
		ProductionFraction:  t.ProductionFraction,
		MutationProbability: t.MutationProbability,
		ImmigrationFraction: t.ImmigrationFraction,
		ImmigrationInterval: t.ImmigrationInterval,
		SubpopulationSize:   t.SubpopulationSize,
		TrianglePattern:     t.Triangle,
		DualPopulation:      t.DualPopulation,
		TimeLimit:           t.TimeLimit,
		StepLimit:           t.StepLimit,
		LimitByOptimalLoss:  t.LimitByOptimalLoss,
		BatchNumber:         t.Run,
		Time:                elapsed,
		ExternalUtility:     external,
		InternalUtility:     internal,
		TuningParameter:     t.TuningParameter,
		TuningValue:         t.TuningValue,
	}
}

// Values renders the row in column order.
func (r Row) Values() []string {
	return []string{
		r.Algorithm,
		r.Dataset,
		r.PrivacyModel,
		strconv.Itoa(r.K),
		strconv.Itoa(r.QIs),
		strconv.FormatBool(r.Weighted),
		strconv.Itoa(r.Iterations),
		formatFloat(r.EliteFraction),
		formatFloat(r.CrossoverFraction),
		formatFloat(r.ProductionFraction),
		formatFloat(r.MutationProbability),
		formatFloat(r.ImmigrationFraction),
		strconv.Itoa(r.ImmigrationInterval),
		strconv.Itoa(r.SubpopulationSize),
		strconv.FormatBool(r.TrianglePattern),
		strconv.FormatBool(r.DualPopulation),
		strconv.Itoa(r.TimeLimit),
		strconv.Itoa(r.StepLimit),
		strconv.FormatBool(r.LimitByOptimalLoss),
		strconv.Itoa(r.BatchNumber),
		strconv.FormatInt(r.Time, 10),
		formatFloat(r.ExternalUtility),
		formatFloat(r.InternalUtility),
		r.TuningParameter,
		r.TuningValue,
	}
}

// ParseRow is the inverse of Values.
func ParseRow(values []string) (Row, error) {
	if len(values) != len(Columns) {
		return Row{}, fmt.Errorf("row has %d fields, want %d", len(values), len(Columns))
	}
	p := parser{values: values}
	r := Row{
		Algorithm:           values[0],
		Dataset:             values[1],
		PrivacyModel:        values[2],
		K:                   p.intAt(3),
		QIs:                 p.intAt(4),
		Weighted:            p.boolAt(5),
		Iterations:          p.intAt(6),
		EliteFraction:       p.floatAt(7),
		CrossoverFraction:   p.floatAt(8),
		ProductionFraction:  p.floatAt(9),
		MutationProbability: p.floatAt(10),
		ImmigrationFraction: p.floatAt(11),
		ImmigrationInterval: p.intAt(12),
		SubpopulationSize:   p.intAt(13),
		TrianglePattern:     p.boolAt(14),
		DualPopulation:      p.boolAt(15),
		TimeLimit:           p.intAt(16),
		StepLimit:           p.intAt(17),
		LimitByOptimalLoss:  p.boolAt(18),
		BatchNumber:         p.intAt(19),
		Time:                int64(p.intAt(20)),
		ExternalUtility:     p.floatAt(21),
		InternalUtility:     p.floatAt(22),
		TuningParameter:     values[23],
		TuningValue:         values[24],
	}
	if p.err != nil {
		return Row{}, p.err
	}
	return r, nil
}

// parser keeps the first conversion error.
type parser struct {
	values []string
	err    error
}

func (p *parser) fail(i int, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("column %s: %w", Columns[i], err)
	}
}

func (p *parser) intAt(i int) int {
	n, err := strconv.Atoi(p.values[i])
	if err != nil {
		p.fail(i, err)
	}
	return n
}

func (p *parser) floatAt(i int) float64 {
	f, err := strconv.ParseFloat(p.values[i], 64)
	if err != nil {
		p.fail(i, err)
	}
	return f
}

func (p *parser) boolAt(i int) bool {
	b, err := strconv.ParseBool(p.values[i])
	if err != nil {
		p.fail(i, err)
	}
	return b
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
