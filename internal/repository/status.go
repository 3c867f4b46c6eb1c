package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/UnknownOlympus/roster-console/internal/models"
)

// SaveMirrorRun records a completed mirror run.
func (r *Repository) SaveMirrorRun(ctx context.Context, run models.MirrorRun) error {
	defer r.observe("save_mirror_run", time.Now())

	query := `
		INSERT INTO mirror_runs (finished_at, divisions, employees, changed)
		VALUES ($1, $2, $3, $4);`

	_, err := r.db.Exec(ctx, query, run.FinishedAt, run.Divisions, run.Employees, run.Changed)
	if err != nil {
		return fmt.Errorf("failed to execute insert query: %w", err)
	}

	return nil
}

// GetLastMirrorRun returns the most recent mirror run, or ErrNotFound before the first one.
func (r *Repository) GetLastMirrorRun(ctx context.Context) (models.MirrorRun, error) {
	defer r.observe("get_last_mirror_run", time.Now())

	query := "SELECT finished_at, divisions, employees, changed FROM mirror_runs ORDER BY finished_at DESC LIMIT 1"

	var run models.MirrorRun
	err := r.db.QueryRow(ctx, query).Scan(&run.FinishedAt, &run.Divisions, &run.Employees, &run.Changed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.MirrorRun{}, fmt.Errorf("mirror run: %w", ErrNotFound)
		}
		return models.MirrorRun{}, fmt.Errorf("failed to get last mirror run from table mirror_runs: %w", err)
	}

	return run, nil
}
