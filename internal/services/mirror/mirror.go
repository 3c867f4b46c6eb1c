// Package mirror keeps a Postgres copy of the roster's divisions and employees.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/UnknownOlympus/roster-console/internal/client"
	"github.com/UnknownOlympus/roster-console/internal/collection"
	"github.com/UnknownOlympus/roster-console/internal/lib/logger/sl"
	"github.com/UnknownOlympus/roster-console/internal/metrics"
	"github.com/UnknownOlympus/roster-console/internal/models"
	"github.com/UnknownOlympus/roster-console/internal/repository"
	"github.com/UnknownOlympus/roster-console/internal/services/roster"
)

const (
	runTimeout    = 2 * time.Minute
	pageWorkers   = 4
	maxPages      = 1000
	runMetricType = "roster"
)

var e164Regex = regexp.MustCompile(`^\+?[0-9]\d{1,14}$`)

var ErrTooManyPages = errors.New("employee listing exceeds the page limit")

type Service struct {
	log     *slog.Logger
	api     client.Caller
	repo    repository.RosterRepoIface
	metrics *metrics.Metrics
}

func NewService(
	log *slog.Logger,
	api client.Caller,
	repo repository.RosterRepoIface,
	metrics *metrics.Metrics,
) *Service {
	return &Service{log: log, api: api, repo: repo, metrics: metrics}
}

func (s *Service) initLogger(opn string) *slog.Logger {
	return s.log.With(
		slog.String("op", opn),
		slog.String("view", "mirror"),
	)
}

// Start runs one catch-up mirror pass and then one pass per interval until ctx is done.
func (s *Service) Start(ctx context.Context, interval time.Duration) error {
	const opn = "Mirror.Start"
	log := s.initLogger(opn)

	// 1. Catch-up mode
	log.InfoContext(ctx, "Starting catch-up mode")
	if _, err := s.ProcessRoster(ctx); err != nil {
		return fmt.Errorf("failed during catch-up process: %w", err)
	}

	// 2. Maintenance mode
	log.InfoContext(ctx, "Starting maintenance mode", "interval", interval.String())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			log.InfoContext(ctx, "Periodic check triggered.")
			if _, err := s.ProcessRoster(ctx); err != nil {
				log.ErrorContext(ctx, "Periodic run failed", sl.Err(err))
			}
		case <-ctx.Done():
			log.InfoContext(ctx, "Service shutting down.")
			return nil
		}
	}
}

// ProcessRoster fetches every division and employee and writes the differences to the repository.
func (s *Service) ProcessRoster(pctx context.Context) (models.MirrorRun, error) {
	const opn = "Mirror.ProcessRoster"
	log := s.initLogger(opn)

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(pctx, runTimeout)
	defer cancel()

	run, err := s.process(ctx, log)
	if err != nil {
		s.metrics.Runs.WithLabelValues("failure").Inc()
		return models.MirrorRun{}, err
	}

	s.metrics.Runs.WithLabelValues("success").Inc()
	s.metrics.LastSuccessfulRun.WithLabelValues(runMetricType).SetToCurrentTime()
	s.metrics.RunDuration.WithLabelValues(runMetricType).Observe(time.Since(startTime).Seconds())
	log.InfoContext(ctx, "Mirror run completed",
		"divisions", run.Divisions, "employees", run.Employees, "changed", run.Changed)

	return run, nil
}

func (s *Service) process(ctx context.Context, log *slog.Logger) (models.MirrorRun, error) {
	var (
		divisions []models.Division
		employees []models.Employee
	)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		divisions, err = roster.AllDivisions(gctx, s.api)
		return err
	})
	group.Go(func() error {
		var err error
		employees, err = s.fetchEmployees(gctx)
		return err
	})
	if err := group.Wait(); err != nil {
		return models.MirrorRun{}, fmt.Errorf("failed to fetch roster: %w", err)
	}

	divisions = mergeDivisions(divisions, employees)
	countInvalidPhones(ctx, log, s.metrics, employees)

	var changed int
	for _, division := range divisions {
		updated, err := s.upsertDivision(ctx, log, division)
		if err != nil {
			return models.MirrorRun{}, err
		}
		if updated {
			changed++
			s.metrics.ItemsMirrored.WithLabelValues("division").Inc()
		}
	}
	for _, employee := range employees {
		updated, err := s.upsertEmployee(ctx, log, employee)
		if err != nil {
			return models.MirrorRun{}, err
		}
		if updated {
			changed++
			s.metrics.ItemsMirrored.WithLabelValues("employee").Inc()
		}
	}

	run := models.MirrorRun{
		FinishedAt: time.Now(),
		Divisions:  len(divisions),
		Employees:  len(employees),
		Changed:    changed,
	}
	if err := s.repo.SaveMirrorRun(ctx, run); err != nil {
		return models.MirrorRun{}, fmt.Errorf("failed to save mirror run: %w", err)
	}

	return run, nil
}

// fetchEmployees reads the first page to learn the page count, then the remaining pages concurrently.
func (s *Service) fetchEmployees(ctx context.Context) ([]models.Employee, error) {
	source := roster.EmployeeSource(s.api)

	first, err := source.Fetch(ctx, collection.Descriptor{Page: 1})
	if err != nil {
		return nil, err
	}
	lastPage := first.Pagination.Sanitize().LastPage
	if lastPage > maxPages {
		return nil, fmt.Errorf("%w: %d pages", ErrTooManyPages, lastPage)
	}

	pages := make([][]models.Employee, lastPage)
	pages[0] = first.Rows

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(pageWorkers)
	for page := 2; page <= lastPage; page++ {
		group.Go(func() error {
			result, fetchErr := source.Fetch(gctx, collection.Descriptor{Page: page})
			if fetchErr != nil {
				return fetchErr
			}
			pages[page-1] = result.Rows
			return nil
		})
	}
	if err = group.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	employees := make([]models.Employee, 0, len(first.Rows)*lastPage)
	for _, rows := range pages {
		for _, employee := range rows {
			if _, ok := seen[employee.ID]; ok {
				continue
			}
			seen[employee.ID] = struct{}{}
			employees = append(employees, employee)
		}
	}

	return employees, nil
}

func (s *Service) upsertDivision(ctx context.Context, log *slog.Logger, division models.Division) (bool, error) {
	existing, err := s.repo.GetDivisionByID(ctx, division.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if err = s.repo.SaveDivision(ctx, division); err != nil {
			return false, fmt.Errorf("failed to save new division %s: %w", division.Name, err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to get division %s: %w", division.ID, err)
	case existing == division:
		log.DebugContext(ctx, "division is existed, skipped", "name", division.Name)
		return false, nil
	}

	if err = s.repo.UpdateDivision(ctx, division); err != nil {
		return false, fmt.Errorf("failed to update division: '%s': %w", division.Name, err)
	}

	return true, nil
}

func (s *Service) upsertEmployee(ctx context.Context, log *slog.Logger, employee models.Employee) (bool, error) {
	existing, err := s.repo.GetEmployeeByID(ctx, employee.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if err = s.repo.SaveEmployee(ctx, employee); err != nil {
			return false, fmt.Errorf("failed to save new employee %s: %w", employee.Name, err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to get employee %s: %w", employee.ID, err)
	case sameEmployee(existing, employee):
		log.DebugContext(ctx, "employee is existed, skipped", "name", employee.Name)
		return false, nil
	}

	if err = s.repo.UpdateEmployee(ctx, employee); err != nil {
		return false, fmt.Errorf("failed to update employee: '%s': %w", employee.Name, err)
	}

	return true, nil
}

func sameEmployee(a, b models.Employee) bool {
	return a.ID == b.ID && a.Name == b.Name && a.Phone == b.Phone && a.Position == b.Position &&
		a.Division.ID == b.Division.ID && imageOf(a) == imageOf(b)
}

func imageOf(e models.Employee) string {
	if e.Image == nil {
		return ""
	}

	return *e.Image
}

// mergeDivisions adds divisions that are only known from employee records.
func mergeDivisions(divisions []models.Division, employees []models.Employee) []models.Division {
	known := make(map[string]struct{}, len(divisions))
	for _, division := range divisions {
		known[division.ID] = struct{}{}
	}

	for _, employee := range employees {
		if employee.Division.ID == "" {
			continue
		}
		if _, ok := known[employee.Division.ID]; ok {
			continue
		}
		known[employee.Division.ID] = struct{}{}
		divisions = append(divisions, employee.Division)
	}

	return divisions
}

func countInvalidPhones(ctx context.Context, log *slog.Logger, m *metrics.Metrics, employees []models.Employee) {
	var invalidCounter int
	for _, employee := range employees {
		if !ValidPhone(employee.Phone) {
			log.InfoContext(ctx, "Employee has invalid phone number", "name", employee.Name, "phone", employee.Phone)
			invalidCounter++
		}
	}

	if invalidCounter != 0 {
		m.InvalidPhones.Add(float64(invalidCounter))
		log.WarnContext(ctx, "Number of employees with invalid phone numbers. For more information, enable info mode",
			"value", invalidCounter)
	}
}

// ValidPhone checks if a phone number is valid according to the E.164 format.
// Spaces and dashes are ignored.
func ValidPhone(phone string) bool {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")

	return e164Regex.MatchString(phone)
}
