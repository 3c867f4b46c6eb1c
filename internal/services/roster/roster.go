// Package roster wires the generic collection controller to the roster API endpoints:
// divisions, employees and score records.
package roster

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/UnknownOlympus/roster-console/internal/collection"
	"github.com/UnknownOlympus/roster-console/internal/models"
)

// View names, used in log attributes, metrics labels and user-facing messages.
const (
	DivisionsView = "divisions"
	EmployeesView = "employees"
	ScoresView    = "nilai"
)

// ErrMalformedResponse is returned when a list response carries no data.
var ErrMalformedResponse = errors.New("invalid response structure")

// listEnvelope is the body of every paginated list endpoint.
type listEnvelope[D any] struct {
	Data       *D                `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

func pageQuery(page int) url.Values {
	query := url.Values{}
	query.Set("page", strconv.Itoa(max(page, 1)))

	return query
}

func toPage[T any](rows []T, pagination models.Pagination) collection.Page[T] {
	if rows == nil {
		rows = []T{}
	}

	return collection.Page[T]{Rows: rows, Pagination: pagination}
}
