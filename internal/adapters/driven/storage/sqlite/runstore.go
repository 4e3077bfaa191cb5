package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/reshelve/internal/core/domain"
	"github.com/custodia-labs/reshelve/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// SaveRun stores or replaces a run and its file results in one transaction.
func (s *runStore) SaveRun(ctx context.Context, run *domain.Run) error {
	input, err := json.Marshal(run.Schema.Input)
	if err != nil {
		return fmt.Errorf("marshalling schema input: %w", err)
	}
	output, err := json.Marshal(run.Schema.Output)
	if err != nil {
		return fmt.Errorf("marshalling schema output: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var finishedAt sql.NullTime
	if !run.FinishedAt.IsZero() {
		finishedAt = sql.NullTime{Time: run.FinishedAt, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, source_root, destination_root, schema_input, schema_output,
			started_at, finished_at, seen, copied, ignored, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_root = excluded.source_root,
			destination_root = excluded.destination_root,
			schema_input = excluded.schema_input,
			schema_output = excluded.schema_output,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			seen = excluded.seen,
			copied = excluded.copied,
			ignored = excluded.ignored,
			skipped = excluded.skipped,
			failed = excluded.failed
	`, run.ID, run.SourceRoot, run.DestinationRoot, string(input), string(output),
		run.StartedAt, finishedAt,
		run.Tally.Seen, run.Tally.Copied, run.Tally.Ignored, run.Tally.Skipped, run.Tally.Failed)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_files WHERE run_id = ?", run.ID); err != nil {
		return fmt.Errorf("clearing run files: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_files (run_id, seq, source_path, relative_path, destination_path, outcome, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing run file insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range run.Results {
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.SourcePath, r.RelativePath,
			r.DestinationPath, string(r.Outcome), r.Error); err != nil {
			return fmt.Errorf("saving run file %s: %w", r.SourcePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID, without file results.
func (s *runStore) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source_root, destination_root, schema_input, schema_output,
			started_at, finished_at, seen, copied, ignored, skipped, failed
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first.
func (s *runStore) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	query := `
		SELECT id, source_root, destination_root, schema_input, schema_output,
			started_at, finished_at, seen, copied, ignored, skipped, failed
		FROM runs ORDER BY started_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// ListFiles returns the file results of a run in processing order.
func (s *runStore) ListFiles(ctx context.Context, runID string) ([]domain.FileResult, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source_path, relative_path, destination_path, outcome, error
		FROM run_files WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run files: %w", err)
	}
	defer rows.Close()

	var results []domain.FileResult
	for rows.Next() {
		var r domain.FileResult
		var outcome string
		if err := rows.Scan(&r.SourcePath, &r.RelativePath, &r.DestinationPath, &outcome, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning run file: %w", err)
		}
		r.Outcome = domain.Outcome(outcome)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run files: %w", err)
	}
	return results, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.Run, error) {
	var run domain.Run
	var input, output string
	var finishedAt sql.NullTime

	err := row.Scan(&run.ID, &run.SourceRoot, &run.DestinationRoot, &input, &output,
		&run.StartedAt, &finishedAt,
		&run.Tally.Seen, &run.Tally.Copied, &run.Tally.Ignored, &run.Tally.Skipped, &run.Tally.Failed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if err := json.Unmarshal([]byte(input), &run.Schema.Input); err != nil {
		return nil, fmt.Errorf("unmarshalling schema input: %w", err)
	}
	if err := json.Unmarshal([]byte(output), &run.Schema.Output); err != nil {
		return nil, fmt.Errorf("unmarshalling schema output: %w", err)
	}
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}

	return &run, nil
}
