//go:build integration

package repository_test

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/UnknownOlympus/roster-console/internal/config"
	"github.com/UnknownOlympus/roster-console/internal/metrics"
	"github.com/UnknownOlympus/roster-console/internal/models"
	"github.com/UnknownOlympus/roster-console/internal/repository"
)

func TestRepository_Postgres(t *testing.T) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("roster"),
		postgres.WithUsername("roster"),
		postgres.WithPassword("roster"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(endpoint)
	require.NoError(t, err)

	pool, err := repository.NewDatabase(ctx, config.PostgresConfig{
		Host: host, Port: port, User: "roster", Password: "roster", Dbname: "roster",
	})
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, goose.Up(stdlib.OpenDBFromPool(pool), filepath.Join("..", "..", "migrations")))

	repo := repository.NewRepository(pool, metrics.NewNopMetrics())

	division := models.Division{ID: "d1", Name: "Backend"}
	require.NoError(t, repo.SaveDivision(ctx, division))
	require.NoError(t, repo.SaveDivision(ctx, models.Division{ID: "d1", Name: "ignored"}))

	got, err := repo.GetDivisionByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, division, got)

	image := "https://roster.example.com/storage/budi.png"
	employee := models.Employee{ID: "e1", Name: "Budi", Phone: "+6281234567890", Position: "Engineer",
		Image: &image, Division: division}
	require.NoError(t, repo.SaveEmployee(ctx, employee))

	employee.Position = "Lead"
	employee.Image = nil
	require.NoError(t, repo.UpdateEmployee(ctx, employee))

	stored, err := repo.GetEmployeeByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, employee, stored)

	_, err = repo.GetEmployeeByID(ctx, "e404")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetLastMirrorRun(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)

	run := models.MirrorRun{FinishedAt: time.Now().UTC().Truncate(time.Millisecond), Divisions: 1, Employees: 1, Changed: 2}
	require.NoError(t, repo.SaveMirrorRun(ctx, run))
	last, err := repo.GetLastMirrorRun(ctx)
	require.NoError(t, err)
	assert.True(t, run.FinishedAt.Equal(last.FinishedAt))
	assert.Equal(t, run.Changed, last.Changed)
}
