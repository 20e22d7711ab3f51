package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/latticebench/internal/anon"
	"github.com/roach88/latticebench/internal/trial"
)

// BaselineCache memoizes the optimal loss of each objective for the life
// of the process. Entries are computed lazily, at most once per key, and
// never evicted. A BaselineCache is not safe for concurrent use.
type BaselineCache struct {
	engine   Engine
	source   DataSource
	additive bool
	logger   *slog.Logger

	losses map[any]float64
	calls  int
}

// NewBaselineCache returns an empty cache keyed by the composite objective
// tuple, or by the additive objective key when additive is set.
func NewBaselineCache(engine Engine, source DataSource, additive bool, logger *slog.Logger) *BaselineCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaselineCache{
		engine:   engine,
		source:   source,
		additive: additive,
		logger:   logger,
		losses:   make(map[any]float64),
	}
}

// Key returns the cache key of t in the cache's key mode.
func (c *BaselineCache) Key(t trial.Trial) any {
	if c.additive {
		return trial.ObjectiveKey(t)
	}
	return trial.CompositeKey(t)
}

// Resolve returns the optimal loss of t's objective, computing it with an
// exhaustive search on a miss, and bounds run by it. A started search is
// not interrupted by cancellation of ctx.
func (c *BaselineCache) Resolve(ctx context.Context, t trial.Trial, run *anon.RunContext) (float64, error) {
	key := c.Key(t)
	loss, ok := c.losses[key]
	if !ok {
		var err error
		loss, err = c.compute(ctx, t)
		if err != nil {
			return 0, err
		}
		c.losses[key] = loss
		c.logger.Info("created optimum", "key", fmt.Sprint(key), "loss", loss)
	}
	run.SetLossLimit(loss)
	return loss, nil
}

func (c *BaselineCache) compute(ctx context.Context, t trial.Trial) (float64, error) {
	b := t.Baseline()
	data, err := c.source.Load(b.Dataset, b.QIs)
	if err != nil {
		return 0, fmt.Errorf("load baseline data: %w", err)
	}

	c.calls++
	out, err := c.engine.Anonymize(context.WithoutCancel(ctx), data, Translate(b, data), anon.NewRunContext())
	if err != nil {
		return 0, fmt.Errorf("compute optimum: %w", err)
	}
	if !out.Available() {
		return 0, fmt.Errorf("compute optimum: %w", anon.ErrNotAvailable)
	}
	return out.OptimumScore(), nil
}

// Len returns the number of memoized objectives.
func (c *BaselineCache) Len() int {
	return len(c.losses)
}

// Calls returns how many exhaustive searches the cache has run.
func (c *BaselineCache) Calls() int {
	return c.calls
}
