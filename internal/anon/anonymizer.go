package anon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/latticebench/internal/dataset"
	"github.com/roach88/latticebench/internal/lattice"
)

// ErrNoHierarchy is returned for datasets without a hierarchy per column.
var ErrNoHierarchy = errors.New("every quasi-identifier needs a hierarchy")

// Anonymizer runs lattice searches.
type Anonymizer struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Anonymizer.
type Option func(*Anonymizer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Anonymizer) { a.logger = l }
}

// WithClock sets the time source used for time limits and checkpoints.
func WithClock(now func() time.Time) Option {
	return func(a *Anonymizer) { a.now = now }
}

// New creates an Anonymizer.
func New(opts ...Option) *Anonymizer {
	a := &Anonymizer{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Anonymize searches the generalization lattice of data for the best
// transformation under cfg. Heuristics stop at the loss limit of run and
// record improving solutions into its trajectory. A nil run is treated as a
// fresh, unbounded context.
//
// The call blocks until the search completes or its limits expire.
func (a *Anonymizer) Anonymize(ctx context.Context, data *dataset.Data, cfg Config, run *RunContext) (*Result, error) {
	if run == nil {
		run = NewRunContext()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("anonymize: invalid config: %w", err)
	}
	if len(data.Header) == 0 || len(data.Hierarchies) != len(data.Header) {
		return nil, fmt.Errorf("anonymize %s: %w", data.Name, ErrNoHierarchy)
	}

	ev, err := newEvaluator(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("anonymize %s: %w", data.Name, err)
	}
	lat := lattice.FullDomain(data.MaxLevels())
	s := newSearch(ctx, ev, lat, run, a.now)

	switch cfg.Algorithm {
	case Optimal:
		s.optimal()
	case BestEffortBottomUp:
		s.bottomUp()
	case BestEffortTopDown:
		s.topDown()
	case BestEffortGenetic:
		s.genetic()
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("anonymize %s: %w", data.Name, err)
	}

	res := newResult(s)
	a.logger.Debug("anonymization finished",
		"dataset", data.Name,
		"algorithm", cfg.Algorithm,
		"evaluations", s.steps,
		"available", res.Available(),
		"loss", res.OptimumScore(),
		"checkpoints", len(run.Trajectory()))
	return res, nil
}
