package harness

import (
	"context"

	"github.com/roach88/latticebench/internal/anon"
	"github.com/roach88/latticebench/internal/dataset"
	"github.com/roach88/latticebench/internal/lattice"
)

// Scorer locates transformations in a search lattice and scores them.
type Scorer interface {
	Lattice() *lattice.Lattice
	UtilityOf(n *lattice.Node) float64
}

// Outcome is the result of one engine run.
type Outcome interface {
	Scorer

	// Available reports whether a solution satisfying the criteria exists.
	Available() bool

	// Utility is the quality of the current output, 0 when unavailable.
	Utility() float64

	// OptimumScore is the loss of the best solution found.
	OptimumScore() float64

	// Refine locally recodes suppressed records.
	Refine(stepFraction float64) error
}

// Engine runs one anonymization synchronously. Implementations honor the
// loss limit of run and append improving checkpoints to it.
type Engine interface {
	Anonymize(ctx context.Context, data *dataset.Data, cfg anon.Config, run *anon.RunContext) (Outcome, error)
}

// DataSource loads a dataset projected to its first qids quasi-identifiers.
type DataSource interface {
	Load(name string, qids int) (*dataset.Data, error)
}

// AnonEngine adapts an *anon.Anonymizer to Engine.
type AnonEngine struct {
	Anonymizer *anon.Anonymizer
}

// NewAnonEngine wraps a.
func NewAnonEngine(a *anon.Anonymizer) AnonEngine {
	return AnonEngine{Anonymizer: a}
}

func (e AnonEngine) Anonymize(ctx context.Context, data *dataset.Data, cfg anon.Config, run *anon.RunContext) (Outcome, error) {
	res, err := e.Anonymizer.Anonymize(ctx, data, cfg, run)
	if err != nil {
		return nil, err
	}
	return res, nil
}
