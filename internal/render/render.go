// Package render formats list views, dialogs and errors for the terminal.
package render

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/UnknownOlympus/roster-console/internal/client"
	"github.com/UnknownOlympus/roster-console/internal/collection"
	"github.com/UnknownOlympus/roster-console/internal/models"
)

var (
	accentColor = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	mutedColor  = lipgloss.AdaptiveColor{Light: "8", Dark: "7"}
	errorColor  = lipgloss.AdaptiveColor{Light: "1", Dark: "9"}
	borderColor = lipgloss.AdaptiveColor{Light: "#555", Dark: "#555"}
)

// Renderer holds the styles for one output stream. Colors are dropped when w is not a terminal.
type Renderer struct {
	title   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	muted   lipgloss.Style
	errText lipgloss.Style
	border  lipgloss.Style
}

// New creates a renderer for w.
func New(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)

	return &Renderer{
		title:   r.NewStyle().Bold(true).Foreground(accentColor),
		header:  r.NewStyle().Bold(true).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
		muted:   r.NewStyle().Foreground(mutedColor),
		errText: r.NewStyle().Foreground(errorColor).Bold(true),
		border:  r.NewStyle().Foreground(borderColor),
	}
}

// Divisions renders the divisions list view.
func (r *Renderer) Divisions(view collection.View[models.Division]) string {
	filters := filterLine("Name", view.Query.Name)

	return list(r, "Divisions", filters, view, []string{"ID", "Name"}, func(d models.Division) []string {
		return []string{d.ID, d.Name}
	})
}

// Employees renders the employees list view. divisions names the active division filter.
func (r *Renderer) Employees(view collection.View[models.Employee], divisions []models.Division) string {
	filters := filterLine("Name", view.Query.Name)
	if view.Query.FilterID != "" {
		name := view.Query.FilterID
		if i := slices.IndexFunc(divisions, func(d models.Division) bool { return d.ID == view.Query.FilterID }); i >= 0 {
			name = divisions[i].Name
		}
		filters = joinNonEmpty(filters, "Division: "+name)
	}

	headers := []string{"ID", "Name", "Phone", "Position", "Division", "Image"}

	return list(r, "Employees", filters, view, headers, func(e models.Employee) []string {
		image := "-"
		if e.Image != nil && *e.Image != "" {
			image = *e.Image
		}
		return []string{e.ID, e.Name, e.Phone, e.Position, orDash(e.Division.Name), image}
	})
}

// Scores renders the score records view together with its source and page size selectors.
func (r *Renderer) Scores(view collection.View[models.ScoreRow]) string {
	sizes := make([]string, 0, len(view.PageSizes))
	for _, size := range view.PageSizes {
		sizes = append(sizes, strconv.Itoa(size))
	}
	filters := fmt.Sprintf("Source: %s (%s)  Per page: %d (%s)", view.Query.Source,
		strings.Join(view.Sources, ", "), view.Query.PageSize, strings.Join(sizes, ", "))

	headers := []string{"No", "Nama", "NISN", "Nilai"}

	return list(r, "Nilai", filters, view, headers, func(row models.ScoreRow) []string {
		return []string{strconv.Itoa(row.Ordinal), row.Name, row.StudentID, row.Score.String()}
	})
}

// Pagination renders the page indicator with the state of the previous and next controls.
func (r *Renderer) Pagination(p models.Pagination) string {
	prev, next := r.muted.Render("‹ prev"), r.muted.Render("next ›")
	if p.CurrentPage > 1 {
		prev = "‹ prev"
	}
	if p.CurrentPage < p.LastPage {
		next = "next ›"
	}

	return fmt.Sprintf("%s  Page %d of %d  %s", prev, p.CurrentPage, p.LastPage, next)
}

// FormErrors renders a dialog's general message followed by its field errors in field order.
func (r *Renderer) FormErrors(message string, fields map[string][]string) string {
	var b strings.Builder
	if message != "" {
		b.WriteString(r.errText.Render(message))
		b.WriteString("\n")
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		for _, msg := range fields[name] {
			fmt.Fprintf(&b, "  %s: %s\n", name, msg)
		}
	}

	return b.String()
}

// Error renders the user-facing message of err.
func (r *Renderer) Error(err error) string {
	return r.errText.Render(Message(err))
}

// Message returns the message a user should see for err.
func Message(err error) string {
	var fetchErr *collection.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Message
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Kind == client.KindValidation {
			return "Validation Error: " + apiErr.Message
		}
		return apiErr.Message
	}

	return err.Error()
}

// User renders the account behind the current token.
func (r *Renderer) User(u models.User) string {
	var b strings.Builder
	b.WriteString(r.title.Render("Signed in"))
	b.WriteString("\n")
	for _, line := range [][2]string{
		{"Name", u.Name}, {"Username", u.Username}, {"Email", u.Email}, {"Phone", u.Phone},
	} {
		if line[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", r.muted.Render(line[0]+":"), line[1])
	}

	return b.String()
}

// MirrorRun renders the summary of a mirror run.
func (r *Renderer) MirrorRun(run models.MirrorRun) string {
	return fmt.Sprintf("%s divisions=%d employees=%d changed=%d at %s",
		r.title.Render("Mirror run"), run.Divisions, run.Employees, run.Changed,
		run.FinishedAt.Format("2006-01-02 15:04:05"))
}

func list[T any](
	r *Renderer,
	title, filters string,
	view collection.View[T],
	headers []string,
	cells func(row T) []string,
) string {
	var b strings.Builder
	b.WriteString(r.title.Render(title))
	if filters != "" {
		b.WriteString("  ")
		b.WriteString(r.muted.Render(filters))
	}
	b.WriteString("\n")

	if view.Err != nil {
		b.WriteString(r.errText.Render(view.Err.Message))
		b.WriteString("\n")
	}

	switch {
	case view.Loading && !view.Loaded:
		b.WriteString(r.muted.Render("Loading..."))
		b.WriteString("\n")
		return b.String()
	case !view.Loaded:
		return b.String()
	case len(view.Rows) == 0:
		b.WriteString(r.muted.Render("No " + strings.ToLower(title) + " found."))
		b.WriteString("\n")
	default:
		rows := make([][]string, 0, len(view.Rows))
		for _, row := range view.Rows {
			rows = append(rows, cells(row))
		}
		tbl := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(r.border).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return r.header
				}
				return r.cell
			}).
			Headers(headers...).
			Rows(rows...)
		b.WriteString(tbl.String())
		b.WriteString("\n")
	}

	b.WriteString(r.Pagination(view.Pagination))
	b.WriteString("\n")

	return b.String()
}

func filterLine(label, value string) string {
	if value == "" {
		return ""
	}

	return label + ": " + value
}

func joinNonEmpty(parts ...string) string {
	return strings.Join(slices.DeleteFunc(parts, func(s string) bool { return s == "" }), "  ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
