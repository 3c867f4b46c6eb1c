package collection

import (
	"errors"
	"slices"
	"strings"
)

var (
	ErrInvalidPage     = errors.New("page must be a positive integer")
	ErrInvalidPageSize = errors.New("page size is not one of the offered sizes")
	ErrInvalidSource   = errors.New("data source is not one of the offered sources")
)

// QueryOptions configures the domain of a view's query state.
type QueryOptions struct {
	// PageSizes lists the offered page sizes. DefaultPageSize must be one of them;
	// when it is zero the first offered size is used.
	PageSizes       []int
	DefaultPageSize int
	// Sources lists the offered data sources. Views without a source selector leave it empty.
	Sources       []string
	DefaultSource string
}

// Descriptor is the canonical set of parameters for one fetch.
type Descriptor struct {
	Page     int
	PageSize int
	Name     string
	FilterID string
	Source   string
}

// Offset returns the number of rows before the first row of the page.
func (d Descriptor) Offset() int {
	return (d.Page - 1) * d.PageSize
}

// QueryState holds the user-driven query of one list view.
// It is not safe for concurrent use; the owning Controller serializes access.
type QueryState struct {
	name      string
	filterID  string
	source    string
	page      int
	pageSize  int
	pageSizes []int
	sources   []string
}

// NewQueryState returns a query state positioned on page 1 with empty filters.
func NewQueryState(opts QueryOptions) *QueryState {
	sizes := slices.Clone(opts.PageSizes)
	pageSize := opts.DefaultPageSize
	if pageSize <= 0 && len(sizes) > 0 {
		pageSize = sizes[0]
	}
	if pageSize > 0 && !slices.Contains(sizes, pageSize) {
		sizes = append(sizes, pageSize)
	}

	sources := slices.Clone(opts.Sources)
	source := opts.DefaultSource
	if source == "" && len(sources) > 0 {
		source = sources[0]
	}

	return &QueryState{
		page:      1,
		pageSize:  pageSize,
		pageSizes: sizes,
		source:    source,
		sources:   sources,
	}
}

// Descriptor returns the request descriptor for the current state.
func (q *QueryState) Descriptor() Descriptor {
	return Descriptor{
		Page:     q.page,
		PageSize: q.pageSize,
		Name:     strings.TrimSpace(q.name),
		FilterID: strings.TrimSpace(q.filterID),
		Source:   q.source,
	}
}

// Page returns the requested page.
func (q *QueryState) Page() int { return q.page }

// PageSizes returns the offered page sizes.
func (q *QueryState) PageSizes() []int { return slices.Clone(q.pageSizes) }

// Sources returns the offered data sources.
func (q *QueryState) Sources() []string { return slices.Clone(q.sources) }

// SetName sets the free-text name filter and resets to page 1.
func (q *QueryState) SetName(name string) {
	q.name = name
	q.page = 1
}

// SetFilter sets the secondary filter id ("" clears it) and resets to page 1.
func (q *QueryState) SetFilter(id string) {
	q.filterID = id
	q.page = 1
}

// SetSource selects a data source and resets to page 1.
func (q *QueryState) SetSource(source string) error {
	if !slices.Contains(q.sources, source) {
		return ErrInvalidSource
	}
	q.source = source
	q.page = 1

	return nil
}

// SetPageSize selects one of the offered page sizes and resets to page 1.
func (q *QueryState) SetPageSize(size int) error {
	if !slices.Contains(q.pageSizes, size) {
		return ErrInvalidPageSize
	}
	q.pageSize = size
	q.page = 1

	return nil
}

// SetPage changes only the requested page.
func (q *QueryState) SetPage(page int) error {
	if page < 1 {
		return ErrInvalidPage
	}
	q.page = page

	return nil
}
