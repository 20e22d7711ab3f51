package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/latticebench/internal/anon"
	"github.com/roach88/latticebench/internal/resultlog"
	"github.com/roach88/latticebench/internal/trial"
)

// Harness executes sweeps. It owns the baseline cache, so trials of one
// harness share optimal losses. A Harness is not safe for concurrent use.
type Harness struct {
	engine     Engine
	source     DataSource
	sink       resultlog.Sink
	cache      *BaselineCache
	clock      Clock
	logger     *slog.Logger
	session    string
	trajectory bool
	additive   bool
}

// Option configures a Harness.
type Option func(*Harness)

// WithTrajectoryTracking writes one row per improving checkpoint instead of
// one row per trial.
func WithTrajectoryTracking() Option {
	return func(h *Harness) { h.trajectory = true }
}

// WithAdditiveKeys keys the baseline cache by the additive objective key.
func WithAdditiveKeys() Option {
	return func(h *Harness) { h.additive = true }
}

// WithClock sets the clock elapsed times are measured with.
func WithClock(c Clock) Option {
	return func(h *Harness) { h.clock = c }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithSession tags progress logs with a session id.
func WithSession(id string) Option {
	return func(h *Harness) { h.session = id }
}

// New returns a harness running trials on engine with data from source and
// writing rows to sink.
func New(engine Engine, source DataSource, sink resultlog.Sink, opts ...Option) *Harness {
	h := &Harness{
		engine: engine,
		source: source,
		sink:   sink,
		clock:  SystemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.session != "" {
		h.logger = h.logger.With("session", h.session)
	}
	h.cache = NewBaselineCache(engine, source, h.additive, h.logger)
	return h
}

// Cache returns the harness's baseline cache.
func (h *Harness) Cache() *BaselineCache {
	return h.cache
}

// RunAll runs trials in order and stops at the first failure. Cancellation
// is checked between trials; a running engine call is never interrupted by
// the harness.
func (h *Harness) RunAll(ctx context.Context, trials []trial.Trial) error {
	for i, t := range trials {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sweep stopped before trial %d of %d: %w", i+1, len(trials), err)
		}
		h.logger.Info("running trial", "trial", i+1, "total", len(trials), "config", t.String())
		if err := h.RunTrial(ctx, i, t); err != nil {
			return err
		}
	}
	h.logger.Info("sweep complete", "total", len(trials), "baselines", h.cache.Len())
	return nil
}

// RunTrial runs trial t, the index-th trial of its sweep.
func (h *Harness) RunTrial(ctx context.Context, index int, t trial.Trial) error {
	if err := t.Validate(); err != nil {
		return newTrialError(ErrCodeInvalidTrial, index, t, "invalid trial", err)
	}
	if h.trajectory && t.LocalTransformation {
		return newTrialError(ErrCodeInvalidTrial, index, t,
			"trajectory tracking cannot be combined with local transformation", nil)
	}

	run := anon.NewRunContext()
	run.Reset()
	defer run.Reset()

	// A started trial runs to completion and logs its rows even when the
	// sweep is cancelled meanwhile.
	trialCtx := context.WithoutCancel(ctx)

	data, err := h.source.Load(t.Dataset, t.QIs)
	if err != nil {
		return newTrialError(ErrCodeDataset, index, t, "load dataset", err)
	}
	cfg := Translate(t, data)

	if t.LimitByOptimalLoss {
		if _, err := h.cache.Resolve(trialCtx, t, run); err != nil {
			return newTrialError(ErrCodeBaseline, index, t, "resolve optimal loss", err)
		}
	}

	start := h.clock.Now()
	out, err := h.engine.Anonymize(trialCtx, data, cfg, run)
	if err != nil {
		return newTrialError(ErrCodeEngine, index, t, "anonymize", err)
	}
	if t.LocalTransformation && out.Available() {
		if err := out.Refine(1 / float64(t.LocalIterations)); err != nil {
			h.logger.Error("local transformation failed", "trial", index+1, "error", err)
			if errors.Is(err, anon.ErrRollbackRequired) {
				return newTrialError(ErrCodeRollbackRequired, index, t, "local transformation", err)
			}
			return newTrialError(ErrCodeEngine, index, t, "local transformation", err)
		}
	}
	elapsed := h.clock.Now().Sub(start).Milliseconds()
	h.logger.Debug("trial finished", "trial", index+1, "elapsed_ms", elapsed, "available", out.Available())

	if !t.Log {
		return nil
	}
	rows, err := h.rows(t, out, run, elapsed)
	if err != nil {
		return newTrialError(ErrCodeEngine, index, t, "resolve utilities", err)
	}
	for _, row := range rows {
		if err := h.sink.Write(trialCtx, row); err != nil {
			return newTrialError(ErrCodeLog, index, t, "write result", err)
		}
	}
	h.logger.Debug("logged trial", "trial", index+1, "rows", len(rows))
	return nil
}

func (h *Harness) rows(t trial.Trial, out Outcome, run *anon.RunContext, elapsed int64) ([]resultlog.Row, error) {
	fingerprint, err := trial.Fingerprint(t)
	if err != nil {
		return nil, err
	}

	if !h.trajectory {
		utility := 0.0
		if out.Available() {
			utility = out.Utility()
		}
		row := resultlog.NewRow(t, elapsed, utility, 0)
		row.Fingerprint = fingerprint
		return []resultlog.Row{row}, nil
	}

	traj := run.Trajectory()
	if err := ResolveUtilities(out, traj); err != nil {
		return nil, err
	}
	rows := make([]resultlog.Row, 0, len(traj))
	for _, cp := range traj {
		row := resultlog.NewRow(t, cp.Elapsed, cp.ExternalUtility, cp.InternalUtility)
		row.Fingerprint = fingerprint
		rows = append(rows, row)
	}
	return rows, nil
}
