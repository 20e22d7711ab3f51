package anon

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/latticebench/internal/dataset"
	"github.com/roach88/latticebench/internal/lattice"
)

// class is an equivalence class of records sharing generalized values.
type class struct {
	values     []string
	size       int
	suppressed bool
}

// evaluation is the assessment of one transformation.
type evaluation struct {
	transformation []int
	anonymous      bool
	loss           float64
	// granularity is the mean over attributes of the mean cell
	// granularity, counting suppressed cells as 1.
	granularity float64
	suppressed  int
	records     int
}

func (e *evaluation) suppressedFraction() float64 {
	if e.records == 0 {
		return 0
	}
	return float64(e.suppressed) / float64(e.records)
}

// evaluator assesses transformations of one dataset under one config.
type evaluator struct {
	data    *dataset.Data
	cfg     Config
	weights []float64
	g, s    float64
	maxLoss float64
	// gen[attr][level][row] is the generalized value of a cell.
	gen  [][][]string
	memo map[*lattice.Node]*evaluation
}

func newEvaluator(data *dataset.Data, cfg Config) (*evaluator, error) {
	e := &evaluator{
		data: data,
		cfg:  cfg,
		memo: make(map[*lattice.Node]*evaluation),
	}
	e.g, e.s = cfg.Quality.factors()

	e.weights = make([]float64, len(data.Header))
	total := 0.0
	for i, name := range data.Header {
		w := 1.0
		if cfg.Weights != nil {
			w = cfg.Weights[name]
		}
		e.weights[i] = w
		total += w
	}
	if total == 0 {
		for i := range e.weights {
			e.weights[i] = 1
		}
	}

	e.gen = make([][][]string, len(data.Hierarchies))
	for j, h := range data.Hierarchies {
		e.gen[j] = make([][]string, h.MaxLevel()+1)
		for level := range e.gen[j] {
			col := make([]string, len(data.Rows))
			for r, row := range data.Rows {
				v, err := h.Generalize(row[j], level)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", r+1, err)
				}
				col[r] = v
			}
			e.gen[j][level] = col
		}
	}

	ones := make([]float64, len(data.Header))
	m := math.Max(e.g, e.s)
	for i := range ones {
		ones[i] = m
	}
	e.maxLoss = e.aggregate(ones)
	return e, nil
}

// evaluate assesses a lattice node over all records. The second result is
// true when the node had not been assessed before.
func (e *evaluator) evaluate(n *lattice.Node) (*evaluation, bool) {
	if ev, ok := e.memo[n]; ok {
		return ev, false
	}
	ev, _, _ := e.assess(n.Transformation(), nil)
	e.memo[n] = ev
	return ev, true
}

// evaluated returns the number of memoized assessments.
func (e *evaluator) evaluated() int {
	return len(e.memo)
}

// classes partitions rows (all rows when nil) by their generalized values
// under t. Classes are in order of first occurrence; the second result maps
// each considered row to its class.
func (e *evaluator) classes(t []int, rows []int) ([]*class, []int) {
	n := len(e.data.Rows)
	if rows != nil {
		n = len(rows)
	}
	index := make(map[string]int)
	var classes []*class
	rowClass := make([]int, n)

	var key strings.Builder
	for i := 0; i < n; i++ {
		r := i
		if rows != nil {
			r = rows[i]
		}
		key.Reset()
		for j := range t {
			if j > 0 {
				key.WriteByte(0x1f)
			}
			key.WriteString(e.gen[j][t[j]][r])
		}
		k := key.String()
		ci, ok := index[k]
		if !ok {
			values := make([]string, len(t))
			for j := range t {
				values[j] = e.gen[j][t[j]][r]
			}
			ci = len(classes)
			index[k] = ci
			classes = append(classes, &class{values: values})
		}
		classes[ci].size++
		rowClass[i] = ci
	}
	return classes, rowClass
}

// assess evaluates transformation t over rows (all rows when nil).
func (e *evaluator) assess(t []int, rows []int) (*evaluation, []*class, []int) {
	classes, rowClass := e.classes(t, rows)
	n := len(rowClass)
	for _, c := range e.cfg.Criteria {
		c.apply(classes, n)
	}

	suppressed := 0
	for _, c := range classes {
		if c.suppressed {
			suppressed += c.size
		}
	}

	ev := &evaluation{
		transformation: append([]int(nil), t...),
		suppressed:     suppressed,
		records:        n,
	}
	ev.anonymous = float64(suppressed) <= e.cfg.SuppressionLimit*float64(n)+1e-9
	if n == 0 {
		return ev, classes, rowClass
	}

	lossAttr := make([]float64, len(t))
	granSum := 0.0
	for j := range t {
		h := e.data.Hierarchies[j]
		retained := 0.0
		for _, c := range classes {
			if !c.suppressed {
				retained += float64(c.size) * h.Granularity(c.values[j], t[j])
			}
		}
		lossAttr[j] = (e.g*retained + e.s*float64(suppressed)) / float64(n)
		granSum += (retained + float64(suppressed)) / float64(n)
	}
	ev.loss = e.aggregate(lossAttr)
	ev.granularity = granSum / float64(len(t))
	return ev, classes, rowClass
}

// aggregate combines per-attribute values with the configured function.
func (e *evaluator) aggregate(values []float64) float64 {
	wsum := 0.0
	for _, w := range e.weights {
		wsum += w
	}
	switch e.cfg.Quality.Aggregate {
	case GeometricMean:
		acc := 0.0
		for i, v := range values {
			acc += e.weights[i] * math.Log1p(v)
		}
		return math.Expm1(acc / wsum)
	case Sum:
		acc := 0.0
		for i, v := range values {
			acc += e.weights[i] * v
		}
		return acc
	case Maximum:
		acc := 0.0
		for i, v := range values {
			acc = math.Max(acc, e.weights[i]*v)
		}
		return acc
	default:
		acc := 0.0
		for i, v := range values {
			acc += e.weights[i] * v
		}
		return acc / wsum
	}
}

// internalUtility normalizes a loss to a utility in [0,1].
func (e *evaluator) internalUtility(ev *evaluation) float64 {
	if e.maxLoss == 0 {
		return 1
	}
	return 1 - ev.loss/e.maxLoss
}
