package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/UnknownOlympus/roster-console/internal/client"
	"github.com/UnknownOlympus/roster-console/internal/lib/logger/sl"
	"github.com/UnknownOlympus/roster-console/internal/metrics"
	"github.com/UnknownOlympus/roster-console/internal/models"
)

var (
	// ErrSuperseded is returned by a fetch whose response arrived after a newer fetch was issued.
	// The response was discarded; the returned view reflects the newer state.
	ErrSuperseded     = errors.New("response superseded by a newer request")
	ErrPageOutOfRange = errors.New("page is outside the available range")
)

// Page is one page of rows together with the server's pagination metadata.
type Page[T any] struct {
	Rows       []T
	Pagination models.Pagination
}

// Source fetches one page of a collection for a descriptor.
type Source[T any] interface {
	Fetch(ctx context.Context, desc Descriptor) (Page[T], error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] func(ctx context.Context, desc Descriptor) (Page[T], error)

// Fetch calls f.
func (f SourceFunc[T]) Fetch(ctx context.Context, desc Descriptor) (Page[T], error) {
	return f(ctx, desc)
}

// FetchError is a failed fetch, carrying a user-facing message.
type FetchError struct {
	View    string
	Message string
	Err     error
}

func newFetchError(view string, err error) *FetchError {
	msg := "Error fetching " + view + "."
	switch {
	case client.IsUnauthorized(err):
		msg = "Your session is not authorized, please log in again."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		msg = "Fetching " + view + " was interrupted."
	}

	return &FetchError{View: view, Message: msg, Err: err}
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// View is an immutable snapshot of a list view.
type View[T any] struct {
	Rows       []T
	Pagination models.Pagination
	Query      Descriptor
	PageSizes  []int
	Sources    []string
	// Loaded is true once at least one fetch succeeded.
	Loaded bool
	// Loading is true while the most recently issued fetch has not resolved.
	Loading bool
	// Err is the last fetch failure; it is cleared by the next applied fetch.
	Err *FetchError
}

// HasPrev reports whether the "previous" button is enabled.
func (v View[T]) HasPrev() bool { return v.Pagination.CurrentPage > 1 }

// HasNext reports whether the "next" button is enabled.
func (v View[T]) HasNext() bool { return v.Pagination.CurrentPage < v.Pagination.LastPage }

// Empty reports whether a successful fetch returned no rows.
func (v View[T]) Empty() bool { return v.Loaded && len(v.Rows) == 0 }

// Controller reconciles one list view's query state with asynchronous fetches.
// It is safe for concurrent use; the most recently issued fetch always determines the displayed page.
type Controller[T any] struct {
	name    string
	log     *slog.Logger
	metrics *metrics.Metrics
	source  Source[T]

	mu         sync.Mutex
	query      *QueryState
	applied    QueryState
	issued     uint64
	rows       []T
	pagination models.Pagination
	loaded     bool
	loading    bool
	lastErr    *FetchError
}

// NewController creates a controller for the view called name.
func NewController[T any](
	name string,
	log *slog.Logger,
	metrics *metrics.Metrics,
	source Source[T],
	opts QueryOptions,
) *Controller[T] {
	query := NewQueryState(opts)

	return &Controller[T]{
		name:       name,
		log:        log,
		metrics:    metrics,
		source:     source,
		query:      query,
		applied:    *query,
		pagination: models.Pagination{}.Sanitize(),
	}
}

func (c *Controller[T]) initLogger(opn string) *slog.Logger {
	return c.log.With(
		slog.String("op", opn),
		slog.String("view", c.name),
	)
}

// Name returns the view name.
func (c *Controller[T]) Name() string { return c.name }

// View returns the current snapshot.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.viewLocked()
}

// Refresh re-fetches the current query.
func (c *Controller[T]) Refresh(ctx context.Context) (View[T], error) {
	return c.update(ctx, func(*QueryState) error { return nil })
}

// Load sets both filters and requests page in a single fetch. The server clamps a page past
// the end and the adjusted page is written back, as for any other fetch.
func (c *Controller[T]) Load(ctx context.Context, name, filterID string, page int) (View[T], error) {
	return c.update(ctx, func(q *QueryState) error {
		q.SetName(name)
		q.SetFilter(filterID)
		return q.SetPage(page)
	})
}

// Apply changes several query parameters at once and issues a single fetch.
// When mutate fails nothing is issued and the query is unchanged.
func (c *Controller[T]) Apply(ctx context.Context, mutate func(q *QueryState) error) (View[T], error) {
	return c.update(ctx, mutate)
}

// SetName sets the name filter, resets to page 1 and fetches.
func (c *Controller[T]) SetName(ctx context.Context, name string) (View[T], error) {
	return c.update(ctx, func(q *QueryState) error {
		q.SetName(name)
		return nil
	})
}

// SetFilter sets the secondary filter ("" clears it), resets to page 1 and fetches.
func (c *Controller[T]) SetFilter(ctx context.Context, id string) (View[T], error) {
	return c.update(ctx, func(q *QueryState) error {
		q.SetFilter(id)
		return nil
	})
}

// SetSource selects a data source, resets to page 1 and fetches.
func (c *Controller[T]) SetSource(ctx context.Context, source string) (View[T], error) {
	return c.update(ctx, func(q *QueryState) error { return q.SetSource(source) })
}

// SetPageSize selects a page size, resets to page 1 and fetches.
func (c *Controller[T]) SetPageSize(ctx context.Context, size int) (View[T], error) {
	return c.update(ctx, func(q *QueryState) error { return q.SetPageSize(size) })
}

// GoTo fetches page p. Pages outside 1..LastPage issue no request and return ErrPageOutOfRange.
func (c *Controller[T]) GoTo(ctx context.Context, page int) (View[T], error) {
	return c.update(ctx, func(q *QueryState) error {
		if page < 1 || page > c.pagination.LastPage {
			return fmt.Errorf("%w: %d not in 1..%d", ErrPageOutOfRange, page, c.pagination.LastPage)
		}
		return q.SetPage(page)
	})
}

// Next moves to the following page. On the last page it is a no-op.
func (c *Controller[T]) Next(ctx context.Context) (View[T], error) {
	return c.step(ctx, 1)
}

// Previous moves to the preceding page. On the first page it is a no-op.
func (c *Controller[T]) Previous(ctx context.Context) (View[T], error) {
	return c.step(ctx, -1)
}

func (c *Controller[T]) step(ctx context.Context, delta int) (View[T], error) {
	c.mu.Lock()
	target := c.pagination.CurrentPage + delta
	if target < 1 || target > c.pagination.LastPage {
		view := c.viewLocked()
		c.mu.Unlock()
		return view, nil
	}
	if err := c.query.SetPage(target); err != nil {
		view := c.viewLocked()
		c.mu.Unlock()
		return view, err
	}
	seq, desc := c.issueLocked()
	c.mu.Unlock()

	return c.fetch(ctx, seq, desc)
}

// update applies mutate and issues a fetch for the resulting descriptor atomically.
// When mutate fails nothing is issued and the state is unchanged.
func (c *Controller[T]) update(ctx context.Context, mutate func(q *QueryState) error) (View[T], error) {
	c.mu.Lock()
	next := *c.query
	if err := mutate(&next); err != nil {
		view := c.viewLocked()
		c.mu.Unlock()
		return view, err
	}
	*c.query = next
	seq, desc := c.issueLocked()
	c.mu.Unlock()

	return c.fetch(ctx, seq, desc)
}

func (c *Controller[T]) issueLocked() (uint64, Descriptor) {
	c.issued++
	c.loading = true

	return c.issued, c.query.Descriptor()
}

func (c *Controller[T]) fetch(ctx context.Context, seq uint64, desc Descriptor) (View[T], error) {
	const opn = "Collection.Fetch"
	log := c.initLogger(opn)

	log.DebugContext(ctx, "Fetch issued", "seq", seq, "page", desc.Page, "name", desc.Name,
		"filter", desc.FilterID, "source", desc.Source, "page_size", desc.PageSize)

	page, err := c.source.Fetch(ctx, desc)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.issued {
		c.metrics.Fetches.WithLabelValues(c.name, "stale").Inc()
		log.DebugContext(ctx, "Discarded stale response", "seq", seq, "latest", c.issued)
		return c.viewLocked(), ErrSuperseded
	}

	c.loading = false
	if err != nil {
		// The query must keep describing the displayed rows.
		*c.query = c.applied
		c.lastErr = newFetchError(c.name, err)
		c.metrics.Fetches.WithLabelValues(c.name, "failed").Inc()
		log.WarnContext(ctx, "Fetch failed, keeping previous rows", "seq", seq, sl.Err(err))
		return c.viewLocked(), c.lastErr
	}

	c.reconcileLocked(ctx, log, desc, page)
	c.applied = *c.query
	c.metrics.Fetches.WithLabelValues(c.name, "applied").Inc()

	return c.viewLocked(), nil
}

// reconcileLocked replaces the rows and writes the server's pagination back into the query state.
func (c *Controller[T]) reconcileLocked(ctx context.Context, log *slog.Logger, desc Descriptor, page Page[T]) {
	pagination := page.Pagination.Sanitize()

	c.rows = slices.Clone(page.Rows)
	c.pagination = pagination
	c.loaded = true
	c.lastErr = nil

	if c.query.Page() != pagination.CurrentPage {
		log.DebugContext(ctx, "Server adjusted requested page",
			"requested", desc.Page, "current", pagination.CurrentPage, "last", pagination.LastPage)
		_ = c.query.SetPage(pagination.CurrentPage)
	}
}

// find returns the first displayed row matching pred.
func (c *Controller[T]) find(pred func(T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, row := range c.rows {
		if pred(row) {
			return row, true
		}
	}

	var zero T
	return zero, false
}

// removeFirst deletes the first displayed row matching pred and reports whether one was removed.
// Pagination metadata is left untouched.
func (c *Controller[T]) removeFirst(pred func(T) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.rows, pred)
	if i < 0 {
		return false
	}
	c.rows = slices.Delete(slices.Clone(c.rows), i, i+1)

	return true
}

func (c *Controller[T]) viewLocked() View[T] {
	return View[T]{
		Rows:       slices.Clone(c.rows),
		Pagination: c.pagination,
		Query:      c.query.Descriptor(),
		PageSizes:  c.query.PageSizes(),
		Sources:    c.query.Sources(),
		Loaded:     c.loaded,
		Loading:    c.loading,
		Err:        c.lastErr,
	}
}
