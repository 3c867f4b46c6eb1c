package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UnknownOlympus/roster-console/internal/collection"
	"github.com/UnknownOlympus/roster-console/internal/models"
	"github.com/UnknownOlympus/roster-console/internal/services/roster"
)

func newDivisionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "divisions",
		Short: "Divisions list",
	}

	var (
		name string
		page int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List one page of divisions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := roster.NewDivisionView(a.log, a.metrics, a.api).Load(cmd.Context(), name, "", page)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, a.render.Divisions(view))

			return nil
		},
	}
	list.Flags().StringVar(&name, "name", "", "filter by name")
	list.Flags().IntVar(&page, "page", 1, "page to show")
	cmd.AddCommand(list)

	return cmd
}

func newEmployeesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "Employees list and editing",
	}

	var (
		name     string
		division string
		page     int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List one page of employees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := roster.NewEmployeeView(a.log, a.metrics, a.api)

			var divisions []models.Division
			if division != "" {
				// Only used to show the division name; the list works without it.
				divisions, _ = view.LoadDivisions(cmd.Context())
			}

			rows, err := view.Load(cmd.Context(), name, division, page)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, a.render.Employees(rows, divisions))

			return nil
		},
	}
	list.Flags().StringVar(&name, "name", "", "filter by name")
	list.Flags().StringVar(&division, "division", "", "filter by division id")
	list.Flags().IntVar(&page, "page", 1, "page to show")

	cmd.AddCommand(list)
	cmd.AddCommand(newEmployeeCreateCmd(a))
	cmd.AddCommand(newEmployeeUpdateCmd(a))
	cmd.AddCommand(newEmployeeDeleteCmd(a))

	return cmd
}

func newScoresCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Score records",
	}

	var (
		source  string
		perPage int
		page    int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List one page of score records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl := a.scoreView()
			view, err := ctrl.Apply(cmd.Context(), func(q *collection.QueryState) error {
				if err := q.SetSource(source); err != nil {
					return fmt.Errorf("%w: %q", err, source)
				}
				if perPage != 0 {
					if err := q.SetPageSize(perPage); err != nil {
						return fmt.Errorf("%w: %d", err, perPage)
					}
				}
				return q.SetPage(page)
			})
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, a.render.Scores(view))

			return nil
		},
	}
	list.Flags().StringVar(&source, "source", roster.SourceNilai, "score source: nilai, nilairt or nilaist")
	list.Flags().IntVar(&perPage, "per-page", 0, "rows per page (defaults to views.scores.page_size)")
	list.Flags().IntVar(&page, "page", 1, "page to show")
	cmd.AddCommand(list)

	return cmd
}

func (a *app) scoreView() *collection.Controller[models.ScoreRow] {
	return roster.NewScoreView(a.log, a.metrics, a.api, roster.ScoreOptions{
		PageSizes:       a.cfg.Views.Scores.PageSizes,
		DefaultPageSize: a.cfg.Views.Scores.PageSize,
	})
}
