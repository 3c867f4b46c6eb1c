package repository_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/UnknownOlympus/roster-console/internal/metrics"
	"github.com/UnknownOlympus/roster-console/internal/models"
	"github.com/UnknownOlympus/roster-console/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivisionRepository(t *testing.T) {
	t.Parallel()

	division := models.Division{ID: "d1", Name: "Backend"}

	tests := []struct {
		name    string
		prepare func(mock pgxmock.PgxPoolIface)
		run     func(repo *repository.Repository) error
		wantErr string
	}{
		{
			name: "save",
			prepare: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO divisions (id, name)")).
					WithArgs("d1", "Backend").
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
			run: func(repo *repository.Repository) error {
				return repo.SaveDivision(context.Background(), division)
			},
		},
		{
			name: "save error",
			prepare: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO divisions (id, name)")).
					WithArgs("d1", "Backend").
					WillReturnError(assert.AnError)
			},
			run: func(repo *repository.Repository) error {
				return repo.SaveDivision(context.Background(), division)
			},
			wantErr: "failed to save division",
		},
		{
			name: "update",
			prepare: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE divisions SET name = $2")).
					WithArgs("d1", "Backend").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			run: func(repo *repository.Repository) error {
				return repo.UpdateDivision(context.Background(), division)
			},
		},
		{
			name: "update error",
			prepare: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE divisions SET name = $2")).
					WithArgs("d1", "Backend").
					WillReturnError(assert.AnError)
			},
			run: func(repo *repository.Repository) error {
				return repo.UpdateDivision(context.Background(), division)
			},
			wantErr: "failed to update division data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.prepare(mock)
			err = tt.run(repository.NewRepository(mock, metrics.NewNopMetrics()))

			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.ErrorContains(t, err, tt.wantErr)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetDivisionByID(t *testing.T) {
	t.Parallel()

	query := regexp.QuoteMeta("SELECT id, name FROM divisions WHERE id=$1")

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(query).WithArgs("d1").
			WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow("d1", "Backend"))

		got, err := repository.NewRepository(mock, metrics.NewNopMetrics()).GetDivisionByID(context.Background(), "d1")
		require.NoError(t, err)
		assert.Equal(t, models.Division{ID: "d1", Name: "Backend"}, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(query).WithArgs("d9").WillReturnError(pgx.ErrNoRows)

		_, err = repository.NewRepository(mock, metrics.NewNopMetrics()).GetDivisionByID(context.Background(), "d9")
		require.ErrorIs(t, err, repository.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
