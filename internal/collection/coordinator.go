package collection

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"

	"github.com/UnknownOlympus/roster-console/internal/client"
	"github.com/UnknownOlympus/roster-console/internal/lib/logger/sl"
	"github.com/UnknownOlympus/roster-console/internal/metrics"
)

var (
	ErrModalOpen   = errors.New("another dialog is already open")
	ErrNoForm      = errors.New("no edit form is open")
	ErrNoDelete    = errors.New("no delete confirmation is open")
	ErrBusy        = errors.New("an operation is in progress")
	ErrRowNotFound = errors.New("row is not displayed")
	ErrInvalidForm = errors.New("form has invalid fields")
)

// Keyed is a row with a stable identifier.
type Keyed interface {
	Key() string
}

// Mutator performs create, update and delete calls against the backend.
type Mutator[In any] interface {
	Create(ctx context.Context, input In) error
	Update(ctx context.Context, id string, input In) error
	Delete(ctx context.Context, id string) error
}

// ModalKind is the state of the single dialog a list view may show.
type ModalKind int

const (
	ModalNone ModalKind = iota
	ModalEditing
	ModalSaving
	ModalConfirmingDelete
	ModalDeleting
)

func (k ModalKind) String() string {
	switch k {
	case ModalNone:
		return "none"
	case ModalEditing:
		return "editing"
	case ModalSaving:
		return "saving"
	case ModalConfirmingDelete:
		return "confirming_delete"
	case ModalDeleting:
		return "deleting"
	default:
		return "unknown"
	}
}

// Form is the state of the create/edit dialog.
type Form[In any] struct {
	// TargetID is empty when creating.
	TargetID string
	Input    In
	Errors   map[string][]string
	Message  string
}

// Creating reports whether the form creates a new entity.
func (f Form[In]) Creating() bool { return f.TargetID == "" }

// Modal is a snapshot of the dialog state.
type Modal[In any] struct {
	Kind     ModalKind
	Form     *Form[In]
	DeleteID string
}

// Coordinator executes mutations for one list view and keeps its rows consistent.
type Coordinator[T Keyed, In any] struct {
	ctrl     *Controller[T]
	mutator  Mutator[In]
	prefill  func(T) In
	validate func(In) map[string][]string
	log      *slog.Logger
	metrics  *metrics.Metrics

	mu       sync.Mutex
	kind     ModalKind
	form     *Form[In]
	deleteID string
}

// NewCoordinator creates a coordinator. prefill builds an edit form from a displayed row;
// validate, when not nil, reports local field errors before anything is sent.
func NewCoordinator[T Keyed, In any](
	ctrl *Controller[T],
	mutator Mutator[In],
	prefill func(T) In,
	validate func(In) map[string][]string,
	log *slog.Logger,
	metrics *metrics.Metrics,
) *Coordinator[T, In] {
	return &Coordinator[T, In]{
		ctrl:     ctrl,
		mutator:  mutator,
		prefill:  prefill,
		validate: validate,
		log:      log,
		metrics:  metrics,
	}
}

func (m *Coordinator[T, In]) initLogger(opn string) *slog.Logger {
	return m.log.With(
		slog.String("op", opn),
		slog.String("view", m.ctrl.Name()),
	)
}

// Modal returns the current dialog state.
func (m *Coordinator[T, In]) Modal() Modal[In] {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.modalLocked()
}

// OpenCreate opens an empty create form.
func (m *Coordinator[T, In]) OpenCreate() (Modal[In], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.kind != ModalNone {
		return m.modalLocked(), ErrModalOpen
	}
	m.kind = ModalEditing
	m.form = &Form[In]{}

	return m.modalLocked(), nil
}

// OpenEdit opens the edit form prefilled from the displayed row with the given id.
func (m *Coordinator[T, In]) OpenEdit(id string) (Modal[In], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.kind != ModalNone {
		return m.modalLocked(), ErrModalOpen
	}
	row, ok := m.ctrl.find(func(row T) bool { return row.Key() == id })
	if !ok {
		return m.modalLocked(), ErrRowNotFound
	}
	m.kind = ModalEditing
	m.form = &Form[In]{TargetID: id, Input: m.prefill(row)}

	return m.modalLocked(), nil
}

// CloseForm dismisses the create/edit form without saving.
func (m *Coordinator[T, In]) CloseForm() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.kind {
	case ModalEditing:
		m.kind, m.form = ModalNone, nil
		return nil
	case ModalSaving:
		return ErrBusy
	case ModalNone, ModalConfirmingDelete, ModalDeleting:
		return ErrNoForm
	}

	return ErrNoForm
}

// Submit saves the open form with input. On success the dialog closes and the current page is
// re-fetched; the returned error is then the refresh outcome. On failure the form stays open,
// keeps input, and carries the server's field errors.
func (m *Coordinator[T, In]) Submit(ctx context.Context, input In) (View[T], error) {
	const opn = "Coordinator.Submit"
	log := m.initLogger(opn)

	m.mu.Lock()
	if kind := m.kind; kind != ModalEditing {
		m.mu.Unlock()
		if kind == ModalSaving {
			return m.ctrl.View(), ErrBusy
		}
		return m.ctrl.View(), ErrNoForm
	}
	m.form.Input = input
	m.form.Errors, m.form.Message = nil, ""
	if m.validate != nil {
		if fields := m.validate(input); len(fields) > 0 {
			m.form.Errors = fields
			m.form.Message = "Validation Error"
			m.mu.Unlock()
			return m.ctrl.View(), ErrInvalidForm
		}
	}
	m.kind = ModalSaving
	targetID := m.form.TargetID
	m.mu.Unlock()

	operation := "update"
	var err error
	if targetID == "" {
		operation = "create"
		err = m.mutator.Create(ctx, input)
	} else {
		err = m.mutator.Update(ctx, targetID, input)
	}

	m.mu.Lock()
	if err != nil {
		m.kind = ModalEditing
		m.form.Errors = maps.Clone(client.FieldErrors(err))
		m.form.Message = failureMessage(err, "Failed to save. Please check the inputs.")
		m.mu.Unlock()

		m.metrics.Mutations.WithLabelValues(m.ctrl.Name(), operation, "failure").Inc()
		log.WarnContext(ctx, "Save failed, form stays open", "operation", operation, "id", targetID, sl.Err(err))
		return m.ctrl.View(), err
	}
	m.kind, m.form = ModalNone, nil
	m.mu.Unlock()

	m.metrics.Mutations.WithLabelValues(m.ctrl.Name(), operation, "success").Inc()
	log.InfoContext(ctx, "Saved", "operation", operation, "id", targetID)

	return m.ctrl.Refresh(ctx)
}

// RequestDelete opens the delete confirmation for the displayed row with the given id.
func (m *Coordinator[T, In]) RequestDelete(id string) (Modal[In], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.kind != ModalNone {
		return m.modalLocked(), ErrModalOpen
	}
	if _, ok := m.ctrl.find(func(row T) bool { return row.Key() == id }); !ok {
		return m.modalLocked(), ErrRowNotFound
	}
	m.kind, m.deleteID = ModalConfirmingDelete, id

	return m.modalLocked(), nil
}

// CancelDelete closes the confirmation without any network call.
func (m *Coordinator[T, In]) CancelDelete() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.kind != ModalConfirmingDelete {
		return ErrNoDelete
	}
	m.kind, m.deleteID = ModalNone, ""

	return nil
}

// ConfirmDelete deletes the pending row. The row leaves the displayed set only after the server
// confirmed; pagination is not re-fetched. The confirmation closes whatever the outcome.
func (m *Coordinator[T, In]) ConfirmDelete(ctx context.Context) (View[T], error) {
	const opn = "Coordinator.ConfirmDelete"
	log := m.initLogger(opn)

	m.mu.Lock()
	if m.kind != ModalConfirmingDelete {
		m.mu.Unlock()
		return m.ctrl.View(), ErrNoDelete
	}
	m.kind = ModalDeleting
	id := m.deleteID
	m.mu.Unlock()

	err := m.mutator.Delete(ctx, id)

	m.mu.Lock()
	m.kind, m.deleteID = ModalNone, ""
	m.mu.Unlock()

	if err != nil {
		m.metrics.Mutations.WithLabelValues(m.ctrl.Name(), "delete", "failure").Inc()
		log.WarnContext(ctx, "Delete failed, row kept", "id", id, sl.Err(err))
		return m.ctrl.View(), err
	}

	removed := m.ctrl.removeFirst(func(row T) bool { return row.Key() == id })
	m.metrics.Mutations.WithLabelValues(m.ctrl.Name(), "delete", "success").Inc()
	log.InfoContext(ctx, "Deleted", "id", id, "removed", removed)

	return m.ctrl.View(), nil
}

func (m *Coordinator[T, In]) modalLocked() Modal[In] {
	modal := Modal[In]{Kind: m.kind, DeleteID: m.deleteID}
	if m.form != nil {
		form := *m.form
		form.Errors = maps.Clone(m.form.Errors)
		modal.Form = &form
	}

	return modal
}

func failureMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Kind == client.KindValidation {
			return "Validation Error: " + apiErr.Message
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}

	return fallback
}
