package roster

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/roster-console/internal/client"
	"github.com/UnknownOlympus/roster-console/internal/collection"
	"github.com/UnknownOlympus/roster-console/internal/metrics"
	"github.com/UnknownOlympus/roster-console/internal/models"
)

// Score record sources, each served by its own route.
const (
	SourceNilai   = "nilai"
	SourceNilaiRT = "nilairt"
	SourceNilaiST = "nilaist"
)

// DefaultScorePageSizes are the page sizes offered by the score records view.
var DefaultScorePageSizes = []int{5, 10, 15}

// ScoreOptions configures the score records view. Zero values select the defaults.
type ScoreOptions struct {
	PageSizes       []int
	DefaultPageSize int
}

// NewScoreView returns the score records view. It starts on the "nilai" source.
func NewScoreView(
	log *slog.Logger,
	m *metrics.Metrics,
	api client.Caller,
	opts ScoreOptions,
) *collection.Controller[models.ScoreRow] {
	sizes := opts.PageSizes
	if len(sizes) == 0 {
		sizes = DefaultScorePageSizes
	}

	return collection.NewController[models.ScoreRow](ScoresView, log, m, ScoreSource(log, api),
		collection.QueryOptions{
			PageSizes:       sizes,
			DefaultPageSize: opts.DefaultPageSize,
			Sources:         []string{SourceNilai, SourceNilaiRT, SourceNilaiST},
			DefaultSource:   SourceNilai,
		})
}

// ScoreSource fetches pages of GET /{source} and normalizes the records into display rows.
func ScoreSource(log *slog.Logger, api client.Caller) collection.Source[models.ScoreRow] {
	log = log.With(slog.String("op", "Scores.Fetch"), slog.String("view", ScoresView))

	return collection.SourceFunc[models.ScoreRow](
		func(ctx context.Context, desc collection.Descriptor) (collection.Page[models.ScoreRow], error) {
			query := pageQuery(desc.Page)
			query.Set("per_page", strconv.Itoa(desc.PageSize))

			var resp listEnvelope[[]models.ScoreRecord]
			err := api.Call(ctx, client.Request{
				Method: http.MethodGet,
				Path:   "/" + desc.Source,
				Query:  query,
			}, &resp)
			if err != nil {
				return collection.Page[models.ScoreRow]{}, fmt.Errorf("failed to list %s: %w", desc.Source, err)
			}
			if resp.Data == nil {
				log.ErrorContext(ctx, "Invalid response structure", "source", desc.Source)
				return collection.Page[models.ScoreRow]{}, fmt.Errorf("failed to list %s: %w", desc.Source, ErrMalformedResponse)
			}

			pagination := resp.Pagination.Sanitize()
			rows := NormalizeScores(ctx, log, *resp.Data, pagination.CurrentPage, desc.PageSize)

			return toPage(rows, pagination), nil
		})
}

// NormalizeScores turns raw records of one page into display rows numbered from the page offset.
func NormalizeScores(
	ctx context.Context,
	log *slog.Logger,
	records []models.ScoreRecord,
	page, pageSize int,
) []models.ScoreRow {
	offset := (max(page, 1) - 1) * pageSize
	rows := make([]models.ScoreRow, 0, len(records))

	for i, record := range records {
		if record.Conflicting() {
			log.DebugContext(ctx, "Record carries both score fields, using nilai",
				"nisn", record.StudentID, "nilai", record.Nilai.String(), "nilaiST", record.NilaiST.String())
		}
		rows = append(rows, models.ScoreRow{
			Ordinal:   offset + i + 1,
			Name:      record.Name,
			StudentID: record.StudentID,
			Score:     record.Normalized(),
		})
	}

	return rows
}
