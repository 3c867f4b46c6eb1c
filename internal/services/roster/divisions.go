package roster

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/UnknownOlympus/roster-console/internal/client"
	"github.com/UnknownOlympus/roster-console/internal/collection"
	"github.com/UnknownOlympus/roster-console/internal/metrics"
	"github.com/UnknownOlympus/roster-console/internal/models"
)

type divisionsData struct {
	Divisions []models.Division `json:"divisions"`
}

// NewDivisionView returns the divisions list view. The page size is chosen by the server.
func NewDivisionView(log *slog.Logger, m *metrics.Metrics, api client.Caller) *collection.Controller[models.Division] {
	return collection.NewController[models.Division](DivisionsView, log, m, DivisionSource(api), collection.QueryOptions{})
}

// DivisionSource fetches pages of GET /divisions.
func DivisionSource(api client.Caller) collection.Source[models.Division] {
	return collection.SourceFunc[models.Division](
		func(ctx context.Context, desc collection.Descriptor) (collection.Page[models.Division], error) {
			var resp listEnvelope[divisionsData]
			err := api.Call(ctx, client.Request{
				Method: http.MethodGet,
				Path:   "/divisions",
				Query:  divisionQuery(desc),
			}, &resp)
			if err != nil {
				return collection.Page[models.Division]{}, fmt.Errorf("failed to list divisions: %w", err)
			}
			if resp.Data == nil {
				return collection.Page[models.Division]{}, fmt.Errorf("failed to list divisions: %w", ErrMalformedResponse)
			}

			return toPage(resp.Data.Divisions, resp.Pagination), nil
		})
}

// divisionQuery sends the name filter alone on its first page; page is added only when navigating
// a filtered result past page 1.
func divisionQuery(desc collection.Descriptor) url.Values {
	if desc.Name == "" {
		return pageQuery(desc.Page)
	}

	query := url.Values{}
	query.Set("name", desc.Name)
	if desc.Page > 1 {
		query.Set("page", strconv.Itoa(desc.Page))
	}

	return query
}

// AllDivisions returns every division from GET /divisions/all.
func AllDivisions(ctx context.Context, api client.Caller) ([]models.Division, error) {
	var resp struct {
		Data []models.Division `json:"data"`
	}
	if err := api.Call(ctx, client.Request{Method: http.MethodGet, Path: "/divisions/all"}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list all divisions: %w", err)
	}
	if resp.Data == nil {
		return []models.Division{}, nil
	}

	return resp.Data, nil
}
