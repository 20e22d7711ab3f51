package store

import (
	"context"
	"fmt"

	"github.com/roach88/latticebench/internal/resultlog"
)

// BeginSession registers a session. Registering an existing id is a no-op.
func (s *Store) BeginSession(ctx context.Context, id, experiment string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, experiment)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, experiment)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	return nil
}

// WriteRow inserts a result row at position seq of a session.
// Uses ON CONFLICT DO NOTHING for idempotency: rewriting a (session, seq)
// pair is silently ignored. The session must have been registered.
func (s *Store) WriteRow(ctx context.Context, session string, seq int64, row resultlog.Row) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (
			session_id, seq, fingerprint,
			algorithm, dataset, privacy_model, k, qids, weighted, iterations,
			elite_fraction, crossover_fraction, production_fraction,
			mutation_probability, immigration_fraction, immigration_interval,
			subpopulation_size, triangle_pattern, dual_population,
			time_limit, step_limit, limit_by_optimal_loss, batch_number,
			time, external_utility, internal_utility,
			tuning_parameter, tuning_value
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		session, seq, row.Fingerprint,
		row.Algorithm, row.Dataset, row.PrivacyModel, row.K, row.QIs, row.Weighted, row.Iterations,
		row.EliteFraction, row.CrossoverFraction, row.ProductionFraction,
		row.MutationProbability, row.ImmigrationFraction, row.ImmigrationInterval,
		row.SubpopulationSize, row.TrianglePattern, row.DualPopulation,
		row.TimeLimit, row.StepLimit, row.LimitByOptimalLoss, row.BatchNumber,
		row.Time, row.ExternalUtility, row.InternalUtility,
		row.TuningParameter, row.TuningValue,
	)
	if err != nil {
		return fmt.Errorf("write row %d: %w", seq, err)
	}
	return nil
}

// Sink writes result rows of one session to the store. Rows are numbered
// from 1 in write order.
type Sink struct {
	store   *Store
	session string
	seq     int64
}

// NewSink registers the session and returns a sink appending to it.
func NewSink(ctx context.Context, s *Store, session, experiment string) (*Sink, error) {
	if err := s.BeginSession(ctx, session, experiment); err != nil {
		return nil, err
	}
	return &Sink{store: s, session: session}, nil
}

// Session returns the id the sink writes under.
func (k *Sink) Session() string {
	return k.session
}

func (k *Sink) Write(ctx context.Context, row resultlog.Row) error {
	k.seq++
	return k.store.WriteRow(ctx, k.session, k.seq, row)
}

// Close is a no-op: the store is owned by the caller.
func (k *Sink) Close() error {
	return nil
}
