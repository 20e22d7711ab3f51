package report

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/roach88/latticebench/internal/resultlog"
)

// TracePoints is the number of sample points of an averaged trace.
const TracePoints = 100

// Trace is the utility trajectory of one run.
type Trace struct {
	Algorithm string
	Dataset   string
	Run       int
	Times     []float64 // seconds
	Utilities []float64
}

// Traces splits trajectory rows into one trace per algorithm, run and
// dataset, keeping the row order within each trace.
func Traces(rows []resultlog.Row) []Trace {
	type key struct {
		algorithm, dataset string
		run                int
	}
	var order []key
	byKey := map[key]*Trace{}
	for _, r := range rows {
		k := key{r.Algorithm, r.Dataset, r.BatchNumber}
		tr, ok := byKey[k]
		if !ok {
			tr = &Trace{Algorithm: r.Algorithm, Dataset: r.Dataset, Run: r.BatchNumber}
			byKey[k] = tr
			order = append(order, k)
		}
		tr.Times = append(tr.Times, seconds(r.Time))
		tr.Utilities = append(tr.Utilities, r.ExternalUtility)
	}
	out := make([]Trace, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out
}

// AverageTraces samples every trace at TracePoints evenly spaced times in
// [0, xMax] and returns the sample times and the mean utility in percent.
//
// Each trace is cleaned first: utilities above 1 count as 0, the trace is
// made non-decreasing, points at or after xMax are dropped, and it is
// anchored at (0, 0) and (xMax, best utility).
func AverageTraces(traces []Trace, xMax float64) (xs, ys []float64, err error) {
	if xMax <= 0 {
		return nil, nil, fmt.Errorf("x range must be positive, got %v", xMax)
	}
	if len(traces) == 0 {
		return nil, nil, errors.New("no traces to average")
	}
	xs = floats.Span(make([]float64, TracePoints), 0, xMax)
	ys = make([]float64, TracePoints)
	for _, tr := range traces {
		if len(tr.Times) != len(tr.Utilities) {
			return nil, nil, fmt.Errorf("trace %s/%s/%d: %d times but %d utilities",
				tr.Algorithm, tr.Dataset, tr.Run, len(tr.Times), len(tr.Utilities))
		}
		tx, ty := clean(tr, xMax)
		var pl interp.PiecewiseLinear
		if err := pl.Fit(tx, ty); err != nil {
			return nil, nil, fmt.Errorf("trace %s/%s/%d: %w", tr.Algorithm, tr.Dataset, tr.Run, err)
		}
		for i, x := range xs {
			ys[i] += pl.Predict(x)
		}
	}
	floats.Scale(100/float64(len(traces)), ys)
	return xs, ys, nil
}

// clean returns the anchored, monotone trace with strictly increasing
// times. Of points sharing a time the last one is kept.
func clean(tr Trace, xMax float64) (xs, ys []float64) {
	xs = append(xs, 0)
	ys = append(ys, 0)
	best := 0.0
	for i, t := range tr.Times {
		u := tr.Utilities[i]
		if u > 1 {
			u = 0
		}
		if u < best {
			u = best
		}
		best = u
		if t >= xMax {
			break
		}
		if t <= xs[len(xs)-1] {
			ys[len(ys)-1] = u
			continue
		}
		xs = append(xs, t)
		ys = append(ys, u)
	}
	xs = append(xs, xMax)
	ys = append(ys, floats.Max(ys))
	return xs, ys
}
