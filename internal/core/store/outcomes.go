package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/logolens/logolens/internal/core"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		success INTEGER NOT NULL,
		source TEXT NOT NULL,
		error TEXT,
		output_path TEXT,
		domain TEXT,
		completed_at INTEGER NOT NULL,
		UNIQUE(run_id, entity_id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);`,
	`CREATE INDEX IF NOT EXISTS idx_outcomes_entity ON outcomes(entity_id);`,
}

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}
	return nil
}

// SaveOutcomes persists a run's per-entity results for reporting.
func (s *Store) SaveOutcomes(ctx context.Context, runID string, outcomes []*core.AcquisitionOutcome) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if runID == "" {
		return errors.New("run id is required")
	}
	if len(outcomes) == 0 {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outcome transaction: %w", err)
	}

	const insert = `INSERT OR REPLACE INTO outcomes
		(run_id, entity_id, success, source, error, output_path, domain, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	for _, outcome := range outcomes {
		if outcome == nil {
			continue
		}
		success := 0
		if outcome.Success {
			success = 1
		}
		completedAt := outcome.CompletedAt
		if completedAt.IsZero() {
			completedAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, insert,
			runID, outcome.EntityID, success, string(outcome.Source),
			outcome.ErrorReason, outcome.OutputPath, outcome.Domain,
			completedAt.Unix(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert outcome for %s: %w", outcome.EntityID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit outcomes: %w", err)
	}
	return nil
}

// RunOutcomes loads the persisted outcomes of one run, ordered by
// entity id.
func (s *Store) RunOutcomes(ctx context.Context, runID string) ([]*core.AcquisitionOutcome, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT entity_id, success, source, error, output_path, domain, completed_at
		 FROM outcomes WHERE run_id = ? ORDER BY entity_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var outcomes []*core.AcquisitionOutcome
	for rows.Next() {
		var (
			outcome     core.AcquisitionOutcome
			success     int
			source      string
			completedAt int64
		)
		if err := rows.Scan(&outcome.EntityID, &success, &source,
			&outcome.ErrorReason, &outcome.OutputPath, &outcome.Domain, &completedAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcome.Success = success != 0
		outcome.Source = core.Source(source)
		outcome.CompletedAt = time.Unix(completedAt, 0).UTC()
		outcomes = append(outcomes, &outcome)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return outcomes, nil
}

// PruneRuns deletes persisted outcomes older than cutoff.
func (s *Store) PruneRuns(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM outcomes WHERE completed_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune outcomes: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
