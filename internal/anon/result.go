package anon

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/latticebench/internal/lattice"
)

var (
	// ErrRollbackRequired is returned by Refine when the refined output no
	// longer satisfies the privacy criteria. The result must be discarded.
	ErrRollbackRequired = errors.New("rollback required")

	// ErrNotAvailable is returned by operations that need a solution when
	// the search found none.
	ErrNotAvailable = errors.New("no anonymous transformation found")
)

// Result is the outcome of one anonymization run.
type Result struct {
	eval     *evaluator
	lattice  *lattice.Lattice
	best     *evaluation
	bestNode *lattice.Node
	steps    int

	// Output, one entry per record. Records recoded by Refine carry their
	// own levels; suppressed records have nil values.
	levels     [][]int
	values     [][]string
	suppressed []bool
}

func newResult(s *search) *Result {
	r := &Result{
		eval:     s.eval,
		lattice:  s.lattice,
		best:     s.best,
		bestNode: s.bestNode,
		steps:    s.steps,
	}
	if r.best != nil {
		r.buildOutput()
	}
	return r
}

func (r *Result) buildOutput() {
	t := r.best.transformation
	n := len(r.eval.data.Rows)
	classes, rowClass := r.eval.classes(t, nil)
	for _, c := range r.eval.cfg.Criteria {
		c.apply(classes, n)
	}
	r.levels = make([][]int, n)
	r.values = make([][]string, n)
	r.suppressed = make([]bool, n)
	for i := 0; i < n; i++ {
		c := classes[rowClass[i]]
		r.levels[i] = t
		if c.suppressed {
			r.suppressed[i] = true
			continue
		}
		r.values[i] = c.values
	}
}

// Available reports whether an anonymous transformation was found.
func (r *Result) Available() bool {
	return r.best != nil
}

// Best returns the generalization vector of the solution, or nil.
func (r *Result) Best() []int {
	if r.bestNode == nil {
		return nil
	}
	return r.bestNode.Transformation()
}

// OptimumScore returns the loss of the best solution found, or +Inf when
// none was found.
func (r *Result) OptimumScore() float64 {
	if r.best == nil {
		return math.Inf(1)
	}
	return r.best.loss
}

// Lattice returns the lattice the search materialized.
func (r *Result) Lattice() *lattice.Lattice {
	return r.lattice
}

// Evaluations returns the number of distinct transformations assessed.
func (r *Result) Evaluations() int {
	return r.steps
}

// Suppressed returns the number of suppressed records in the output.
func (r *Result) Suppressed() int {
	n := 0
	for _, s := range r.suppressed {
		if s {
			n++
		}
	}
	return n
}

// Utility returns the quality of the output: 1 minus the mean over
// attributes of the mean cell granularity, where suppressed cells count as
// fully generalized. It is 0 when no solution is available.
func (r *Result) Utility() float64 {
	if r.best == nil {
		return 0
	}
	n := len(r.suppressed)
	if n == 0 {
		return 1
	}
	attrs := len(r.eval.data.Hierarchies)
	total := 0.0
	for j, h := range r.eval.data.Hierarchies {
		sum := 0.0
		for i := 0; i < n; i++ {
			if r.suppressed[i] {
				sum++
				continue
			}
			sum += h.Granularity(r.values[i][j], r.levels[i][j])
		}
		total += sum / float64(n)
	}
	return 1 - total/float64(attrs)
}

// UtilityOf returns the output quality the transformation of node would
// have, using the same measure as Utility.
func (r *Result) UtilityOf(n *lattice.Node) float64 {
	ev, _ := r.eval.evaluate(n)
	return 1 - ev.granularity
}

// Refine recodes suppressed records locally. Each step searches a
// transformation for the records still suppressed that retains at least
// stepFraction of them, and stops when nothing is suppressed, a step makes
// no progress, or 1/stepFraction steps have run.
//
// It returns ErrRollbackRequired when the merged output violates a
// criterion; the result is then inconsistent and must be discarded.
func (r *Result) Refine(stepFraction float64) error {
	if r.best == nil {
		return ErrNotAvailable
	}
	if !(stepFraction > 0 && stepFraction <= 1) {
		return fmt.Errorf("step fraction must be in (0,1], got %v", stepFraction)
	}

	steps := int(math.Ceil(1 / stepFraction))
	for step := 0; step < steps; step++ {
		var rows []int
		for i, s := range r.suppressed {
			if s {
				rows = append(rows, i)
			}
		}
		if len(rows) == 0 {
			return nil
		}

		t, ok := r.localTransformation(rows, 1-stepFraction)
		if !ok {
			return nil
		}

		_, classes, rowClass := r.eval.assess(t, rows)
		progress := false
		for i, row := range rows {
			c := classes[rowClass[i]]
			if c.suppressed {
				continue
			}
			r.suppressed[row] = false
			r.levels[row] = t
			r.values[row] = c.values
			progress = true
		}
		if !progress {
			return nil
		}
		if err := r.verify(); err != nil {
			return err
		}
	}
	return nil
}

// localTransformation ascends greedily from the bottom to the first
// transformation of rows that suppresses at most maxSuppressed of them and
// retains at least one record.
func (r *Result) localTransformation(rows []int, maxSuppressed float64) ([]int, bool) {
	maxLevels := r.eval.data.MaxLevels()
	t := make([]int, len(maxLevels))
	for {
		ev, _, _ := r.eval.assess(t, rows)
		if ev.suppressed < ev.records && ev.suppressedFraction() <= maxSuppressed+1e-9 {
			return t, true
		}

		var next []int
		var nextEval *evaluation
		for j := range t {
			if t[j] == maxLevels[j] {
				continue
			}
			cand := append([]int(nil), t...)
			cand[j]++
			ce, _, _ := r.eval.assess(cand, rows)
			if nextEval == nil || ce.suppressed < nextEval.suppressed ||
				(ce.suppressed == nextEval.suppressed && ce.loss < nextEval.loss) {
				next, nextEval = cand, ce
			}
		}
		if next == nil {
			return nil, false
		}
		t = next
	}
}

// verify checks the merged output against every criterion.
func (r *Result) verify() error {
	sizes := map[string]int{}
	var order []string
	for i, s := range r.suppressed {
		if s {
			continue
		}
		k := strings.Join(r.values[i], "\x1f")
		if _, ok := sizes[k]; !ok {
			order = append(order, k)
		}
		sizes[k]++
	}
	list := make([]int, 0, len(order))
	for _, k := range order {
		list = append(list, sizes[k])
	}
	for _, c := range r.eval.cfg.Criteria {
		if !c.satisfied(list) {
			return fmt.Errorf("refined output violates %s: %w", c, ErrRollbackRequired)
		}
	}
	return nil
}
