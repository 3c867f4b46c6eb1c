package roster

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sync"

	"github.com/UnknownOlympus/roster-console/internal/client"
	"github.com/UnknownOlympus/roster-console/internal/collection"
	"github.com/UnknownOlympus/roster-console/internal/lib/logger/sl"
	"github.com/UnknownOlympus/roster-console/internal/metrics"
	"github.com/UnknownOlympus/roster-console/internal/models"
)

// DivisionField is the form field the server reports division errors under.
const DivisionField = "divisi_id"

type employeesData struct {
	Employees []models.Employee `json:"employees"`
}

// EmployeeView is the employees list view together with its create/edit/delete dialogs
// and the division options offered by the edit form.
type EmployeeView struct {
	*collection.Controller[models.Employee]

	Editor *collection.Coordinator[models.Employee, models.EmployeeInput]

	api client.Caller
	log *slog.Logger

	mu        sync.RWMutex
	divisions []models.Division
}

// NewEmployeeView returns the employees list view. The page size is chosen by the server.
func NewEmployeeView(log *slog.Logger, m *metrics.Metrics, api client.Caller) *EmployeeView {
	view := &EmployeeView{api: api, log: log}
	view.Controller = collection.NewController[models.Employee](EmployeesView, log, m, EmployeeSource(api),
		collection.QueryOptions{})
	view.Editor = collection.NewCoordinator[models.Employee, models.EmployeeInput](view.Controller,
		NewEmployeeMutator(api), models.InputFromEmployee, view.validate, log, m)

	return view
}

func (v *EmployeeView) initLogger(opn string) *slog.Logger {
	return v.log.With(
		slog.String("op", opn),
		slog.String("view", EmployeesView),
	)
}

// LoadDivisions replaces the division options with the result of GET /divisions/all.
// On failure the previous options are kept.
func (v *EmployeeView) LoadDivisions(ctx context.Context) ([]models.Division, error) {
	const opn = "EmployeeView.LoadDivisions"
	log := v.initLogger(opn)

	divisions, err := AllDivisions(ctx, v.api)
	if err != nil {
		log.ErrorContext(ctx, "Error fetching divisions", sl.Err(err))
		return v.Divisions(), err
	}

	v.mu.Lock()
	v.divisions = divisions
	v.mu.Unlock()

	log.DebugContext(ctx, "Division options loaded", "count", len(divisions))

	return slices.Clone(divisions), nil
}

// Divisions returns the division options currently offered.
func (v *EmployeeView) Divisions() []models.Division {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return slices.Clone(v.divisions)
}

// validate rejects a form whose division is not one of the offered options.
func (v *EmployeeView) validate(input models.EmployeeInput) map[string][]string {
	if input.DivisionID == "" {
		return map[string][]string{DivisionField: {"The division field is required."}}
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if !slices.ContainsFunc(v.divisions, func(d models.Division) bool { return d.ID == input.DivisionID }) {
		return map[string][]string{DivisionField: {"The selected division is not available."}}
	}

	return nil
}

// EmployeeSource fetches pages of GET /employees and resolves image paths to absolute URLs.
func EmployeeSource(api client.Caller) collection.Source[models.Employee] {
	return collection.SourceFunc[models.Employee](
		func(ctx context.Context, desc collection.Descriptor) (collection.Page[models.Employee], error) {
			query := pageQuery(desc.Page)
			if desc.Name != "" {
				query.Set("name", desc.Name)
			}
			if desc.FilterID != "" {
				query.Set("division_id", desc.FilterID)
			}

			var resp listEnvelope[employeesData]
			err := api.Call(ctx, client.Request{Method: http.MethodGet, Path: "/employees", Query: query}, &resp)
			if err != nil {
				return collection.Page[models.Employee]{}, fmt.Errorf("failed to list employees: %w", err)
			}
			if resp.Data == nil {
				return collection.Page[models.Employee]{}, fmt.Errorf("failed to list employees: %w", ErrMalformedResponse)
			}

			rows := resp.Data.Employees
			for i := range rows {
				if rows[i].Image != nil {
					resolved := api.ResolveAsset(*rows[i].Image)
					rows[i].Image = &resolved
				}
			}

			return toPage(rows, resp.Pagination), nil
		})
}

// EmployeeMutator creates, updates and deletes employees.
type EmployeeMutator struct {
	api client.Caller
}

// NewEmployeeMutator returns a mutator backed by api.
func NewEmployeeMutator(api client.Caller) *EmployeeMutator {
	return &EmployeeMutator{api: api}
}

// Create posts a new employee as a multipart form.
func (m *EmployeeMutator) Create(ctx context.Context, input models.EmployeeInput) error {
	err := m.api.Call(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/employees",
		Form:   employeeForm(input),
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}

	return nil
}

// Update posts the edited fields of employee id as a multipart form.
func (m *EmployeeMutator) Update(ctx context.Context, id string, input models.EmployeeInput) error {
	err := m.api.Call(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/employees/" + url.PathEscape(id),
		Route:  "/employees/{id}",
		Form:   employeeForm(input),
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to update employee %s: %w", id, err)
	}

	return nil
}

// Delete deletes employee id.
func (m *EmployeeMutator) Delete(ctx context.Context, id string) error {
	err := m.api.Call(ctx, client.Request{
		Method: http.MethodDelete,
		Path:   "/employees/" + url.PathEscape(id),
		Route:  "/employees/{id}",
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete employee %s: %w", id, err)
	}

	return nil
}

func employeeForm(input models.EmployeeInput) *client.Form {
	form := client.NewForm().
		Set("name", input.Name).
		Set("phone", input.Phone).
		Set("position", input.Position).
		Set(DivisionField, input.DivisionID)
	if input.Image != nil && len(input.Image.Data) > 0 {
		form.AttachFile("image", input.Image.Filename, input.Image.Data)
	}

	return form
}
