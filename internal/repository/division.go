package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/UnknownOlympus/roster-console/internal/models"
)

// SaveDivision inserts a division unless one with the same identifier already exists.
func (r *Repository) SaveDivision(ctx context.Context, division models.Division) error {
	defer r.observe("save_division", time.Now())

	query := `
		INSERT INTO divisions (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING;
	`

	_, err := r.db.Exec(ctx, query, division.ID, division.Name)
	if err != nil {
		return fmt.Errorf("failed to save division: %w", err)
	}

	return nil
}

// UpdateDivision updates the name of a mirrored division.
func (r *Repository) UpdateDivision(ctx context.Context, division models.Division) error {
	defer r.observe("update_division", time.Now())

	query := `
		UPDATE divisions
		SET name = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1;
	`

	_, err := r.db.Exec(ctx, query, division.ID, division.Name)
	if err != nil {
		return fmt.Errorf("failed to update division data: %w", err)
	}

	return nil
}

// GetDivisionByID retrieves a mirrored division. It returns ErrNotFound when there is none.
func (r *Repository) GetDivisionByID(ctx context.Context, id string) (models.Division, error) {
	defer r.observe("get_division_by_id", time.Now())

	query := `SELECT id, name FROM divisions WHERE id=$1`

	var result models.Division
	err := r.db.QueryRow(ctx, query, id).Scan(&result.ID, &result.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Division{}, fmt.Errorf("division %s: %w", id, ErrNotFound)
		}
		return models.Division{}, fmt.Errorf("failed to get division by id: %w", err)
	}

	return result, nil
}
