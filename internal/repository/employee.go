package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/UnknownOlympus/roster-console/internal/models"
)

// SaveEmployee saves an employee to the database. It inserts a new record with the provided details
// unless an employee with the same identifier already exists.
func (r *Repository) SaveEmployee(ctx context.Context, employee models.Employee) error {
	defer r.observe("save_employee", time.Now())

	query := `
		INSERT INTO employees (id, name, phone, position, image, division_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		ON CONFLICT (id) DO NOTHING;
	`

	_, err := r.db.Exec(ctx, query, employee.ID, employee.Name, employee.Phone, employee.Position,
		employee.Image, employee.Division.ID)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}

	return nil
}

// UpdateEmployee updates an employee's information in the database.
func (r *Repository) UpdateEmployee(ctx context.Context, employee models.Employee) error {
	defer r.observe("update_employee", time.Now())

	query := `
		UPDATE employees
		SET name = $2, phone = $3, position = $4, image = $5, division_id = NULLIF($6, ''),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1;
	`

	_, err := r.db.Exec(ctx, query, employee.ID, employee.Name, employee.Phone, employee.Position,
		employee.Image, employee.Division.ID)
	if err != nil {
		return fmt.Errorf("failed to update employee data: %w", err)
	}

	return nil
}

// GetEmployeeByID retrieves an employee with its division. It returns ErrNotFound when there is none.
func (r *Repository) GetEmployeeByID(ctx context.Context, id string) (models.Employee, error) {
	defer r.observe("get_employee_by_id", time.Now())

	query := `
		SELECT e.id, e.name, e.phone, e.position, e.image, COALESCE(e.division_id, ''), COALESCE(d.name, '')
		FROM employees e
		LEFT JOIN divisions d ON d.id = e.division_id
		WHERE e.id=$1`

	var result models.Employee
	err := r.db.QueryRow(ctx, query, id).Scan(&result.ID, &result.Name, &result.Phone, &result.Position,
		&result.Image, &result.Division.ID, &result.Division.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Employee{}, fmt.Errorf("employee %s: %w", id, ErrNotFound)
		}
		return models.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}

	return result, nil
}
