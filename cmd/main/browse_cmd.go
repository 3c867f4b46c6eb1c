package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/UnknownOlympus/roster-console/internal/collection"
	"github.com/UnknownOlympus/roster-console/internal/models"
	"github.com/UnknownOlympus/roster-console/internal/services/roster"
)

const browseHelp = `n  next page          p  previous page
g <page>  go to page    s <text>  search by name
r  refresh              q  quit`

// action handles one browse command. arg is the rest of the input line.
type action[T any] func(ctx context.Context, arg string) (collection.View[T], error)

// browser drives one list view from line-based input.
type browser[T any] struct {
	ctrl    *collection.Controller[T]
	show    func(collection.View[T]) string
	actions map[string]action[T]
	help    string
}

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "browse {divisions|employees|scores}",
		Short:     "Page through a list interactively",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{roster.DivisionsView, roster.EmployeesView, "scores"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case roster.DivisionsView:
				return runBrowser(cmd.Context(), a, a.divisionBrowser())
			case roster.EmployeesView:
				return runBrowser(cmd.Context(), a, a.employeeBrowser(cmd.Context()))
			default:
				return runBrowser(cmd.Context(), a, a.scoreBrowser())
			}
		},
	}
}

func (a *app) divisionBrowser() browser[models.Division] {
	return browser[models.Division]{
		ctrl: roster.NewDivisionView(a.log, a.metrics, a.api),
		show: a.render.Divisions,
	}
}

func (a *app) employeeBrowser(ctx context.Context) browser[models.Employee] {
	view := roster.NewEmployeeView(a.log, a.metrics, a.api)
	if _, err := view.LoadDivisions(ctx); err != nil {
		fmt.Fprintln(a.out, a.render.Error(err))
	}

	return browser[models.Employee]{
		ctrl: view.Controller,
		show: func(v collection.View[models.Employee]) string { return a.render.Employees(v, view.Divisions()) },
		help: "f <division id>  filter by division (empty clears)\nd <id>  delete employee",
		actions: map[string]action[models.Employee]{
			"f": view.SetFilter,
			"d": func(ctx context.Context, id string) (collection.View[models.Employee], error) {
				if _, err := view.Editor.RequestDelete(id); err != nil {
					return view.View(), err
				}
				confirmed, err := a.confirmDelete(employeeLabel(view.View().Rows, id))
				if err != nil || !confirmed {
					return view.View(), errors.Join(err, view.Editor.CancelDelete())
				}
				return view.Editor.ConfirmDelete(ctx)
			},
		},
	}
}

func (a *app) scoreBrowser() browser[models.ScoreRow] {
	ctrl := a.scoreView()

	return browser[models.ScoreRow]{
		ctrl: ctrl,
		show: a.render.Scores,
		help: "src <nilai|nilairt|nilaist>  change source\nsize <n>  change rows per page",
		actions: map[string]action[models.ScoreRow]{
			"src": ctrl.SetSource,
			"size": func(ctx context.Context, arg string) (collection.View[models.ScoreRow], error) {
				size, err := strconv.Atoi(arg)
				if err != nil {
					return ctrl.View(), fmt.Errorf("%w: %q", collection.ErrInvalidPageSize, arg)
				}
				return ctrl.SetPageSize(ctx, size)
			},
		},
	}
}

func runBrowser[T any](ctx context.Context, a *app, b browser[T]) error {
	view, err := b.ctrl.Refresh(ctx)
	printBrowse(a, b, view, err)

	for {
		line, err := a.prompt("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)

		switch verb {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		case "h", "help", "?":
			fmt.Fprintln(a.out, browseHelp)
			if b.help != "" {
				fmt.Fprintln(a.out, b.help)
			}
			continue
		case "n":
			view, err = b.ctrl.Next(ctx)
		case "p":
			view, err = b.ctrl.Previous(ctx)
		case "r":
			view, err = b.ctrl.Refresh(ctx)
		case "s":
			view, err = b.ctrl.SetName(ctx, arg)
		case "g":
			page, convErr := strconv.Atoi(arg)
			if convErr != nil {
				page = 0
			}
			view, err = b.ctrl.GoTo(ctx, page)
		default:
			act, ok := b.actions[verb]
			if !ok {
				fmt.Fprintf(a.out, "Unknown command %q, type h for help.\n", verb)
				continue
			}
			view, err = act(ctx, arg)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		printBrowse(a, b, view, err)
	}
}

// printBrowse shows the view. Fetch failures are part of the view; other errors are printed above it.
func printBrowse[T any](a *app, b browser[T], view collection.View[T], err error) {
	var fetchErr *collection.FetchError
	if err != nil && !errors.As(err, &fetchErr) {
		fmt.Fprintln(a.out, a.render.Error(err))
	}
	fmt.Fprint(a.out, b.show(view))
}
