package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/latticebench/internal/resultlog"
)

// Session summarizes one stored benchmark session.
type Session struct {
	ID         string `json:"id"`
	Experiment string `json:"experiment"`
	Rows       int    `json:"rows"`
}

// Sessions returns every session in registration order.
//
// Returns an empty slice (not nil) if the store has no sessions.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.experiment, COUNT(r.seq)
		FROM sessions s
		LEFT JOIN results r ON r.session_id = s.id
		GROUP BY s.seq, s.id, s.experiment
		ORDER BY s.seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Experiment, &sess.Rows); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// LatestSession returns the most recently registered session, or
// sql.ErrNoRows when the store is empty.
func (s *Store) LatestSession(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM sessions ORDER BY seq DESC LIMIT 1
	`).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("latest session: %w", err)
	}
	return id, nil
}

// ReadRows returns the rows of a session ordered by seq.
//
// Returns an empty slice (not nil) if the session has no rows.
func (s *Store) ReadRows(ctx context.Context, session string) ([]resultlog.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint,
			algorithm, dataset, privacy_model, k, qids, weighted, iterations,
			elite_fraction, crossover_fraction, production_fraction,
			mutation_probability, immigration_fraction, immigration_interval,
			subpopulation_size, triangle_pattern, dual_population,
			time_limit, step_limit, limit_by_optimal_loss, batch_number,
			time, external_utility, internal_utility,
			tuning_parameter, tuning_value
		FROM results
		WHERE session_id = ?
		ORDER BY seq ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	out := []resultlog.Row{}
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

// CountByFingerprint returns how many rows across all sessions were
// produced by the trial with the given fingerprint.
func (s *Store) CountByFingerprint(ctx context.Context, fingerprint string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM results WHERE fingerprint = ?
	`, fingerprint).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

func scanRow(rows *sql.Rows) (resultlog.Row, error) {
	var r resultlog.Row
	err := rows.Scan(
		&r.Fingerprint,
		&r.Algorithm, &r.Dataset, &r.PrivacyModel, &r.K, &r.QIs, &r.Weighted, &r.Iterations,
		&r.EliteFraction, &r.CrossoverFraction, &r.ProductionFraction,
		&r.MutationProbability, &r.ImmigrationFraction, &r.ImmigrationInterval,
		&r.SubpopulationSize, &r.TrianglePattern, &r.DualPopulation,
		&r.TimeLimit, &r.StepLimit, &r.LimitByOptimalLoss, &r.BatchNumber,
		&r.Time, &r.ExternalUtility, &r.InternalUtility,
		&r.TuningParameter, &r.TuningValue,
	)
	if err != nil {
		return resultlog.Row{}, fmt.Errorf("scan result: %w", err)
	}
	return r, nil
}
