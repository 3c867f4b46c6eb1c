package repository

import (
	"context"
	"errors"
	"time"

	"github.com/UnknownOlympus/roster-console/internal/metrics"
	"github.com/UnknownOlympus/roster-console/internal/models"
)

var ErrNotFound = errors.New("record not found")

type Repository struct {
	db      Database
	metrics *metrics.Metrics
}

// NewRepository creates a repository over db.
func NewRepository(db Database, metrics *metrics.Metrics) *Repository {
	return &Repository{db: db, metrics: metrics}
}

// DivisionRepoIface represents the interface for interacting with mirrored divisions.
type DivisionRepoIface interface {
	SaveDivision(ctx context.Context, division models.Division) error
	UpdateDivision(ctx context.Context, division models.Division) error
	GetDivisionByID(ctx context.Context, id string) (models.Division, error)
}

// EmployeeRepoIface represents the interface for interacting with mirrored employees.
type EmployeeRepoIface interface {
	SaveEmployee(ctx context.Context, employee models.Employee) error
	UpdateEmployee(ctx context.Context, employee models.Employee) error
	GetEmployeeByID(ctx context.Context, id string) (models.Employee, error)
}

// StatusRepoIface stores the outcome of mirror runs.
type StatusRepoIface interface {
	SaveMirrorRun(ctx context.Context, run models.MirrorRun) error
	GetLastMirrorRun(ctx context.Context) (models.MirrorRun, error)
}

// RosterRepoIface is everything the mirror service writes.
type RosterRepoIface interface {
	DivisionRepoIface
	EmployeeRepoIface
	StatusRepoIface
}

func (r *Repository) observe(queryType string, startTime time.Time) {
	r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(startTime).Seconds())
}
