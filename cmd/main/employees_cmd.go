package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/UnknownOlympus/roster-console/internal/collection"
	"github.com/UnknownOlympus/roster-console/internal/models"
	"github.com/UnknownOlympus/roster-console/internal/services/roster"
)

type employeeFlags struct {
	name     string
	phone    string
	position string
	division string
	image    string
}

func (f *employeeFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.name, "name", "", "employee name")
	flags.StringVar(&f.phone, "phone", "", "phone number")
	flags.StringVar(&f.position, "position", "", "position")
	flags.StringVar(&f.division, "division", "", "division id")
	flags.StringVar(&f.image, "image", "", "path of an image file to upload")
}

// apply overwrites the fields of input whose flags were set.
func (f *employeeFlags) apply(flags *pflag.FlagSet, input models.EmployeeInput) (models.EmployeeInput, error) {
	if flags.Changed("name") {
		input.Name = f.name
	}
	if flags.Changed("phone") {
		input.Phone = f.phone
	}
	if flags.Changed("position") {
		input.Position = f.position
	}
	if flags.Changed("division") {
		input.DivisionID = f.division
	}
	if f.image != "" {
		data, err := os.ReadFile(f.image)
		if err != nil {
			return input, fmt.Errorf("failed to read image: %w", err)
		}
		input.Image = &models.Upload{Filename: filepath.Base(f.image), Data: data}
	}

	return input, nil
}

// locateFlags finds the page an employee is displayed on.
type locateFlags struct {
	name string
	page int
}

func (f *locateFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.name, "search", "", "name filter of the page showing the employee")
	flags.IntVar(&f.page, "page", 1, "page showing the employee")
}

func newEmployeeCreateCmd(a *app) *cobra.Command {
	var fields employeeFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an employee",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := roster.NewEmployeeView(a.log, a.metrics, a.api)
			if _, err := view.LoadDivisions(cmd.Context()); err != nil {
				return err
			}

			modal, err := view.Editor.OpenCreate()
			if err != nil {
				return err
			}
			input, err := fields.apply(cmd.Flags(), modal.Form.Input)
			if err != nil {
				return err
			}

			return a.submitEmployee(cmd, view, input, "Employee created.")
		},
	}
	fields.register(cmd.Flags())

	return cmd
}

func newEmployeeUpdateCmd(a *app) *cobra.Command {
	var (
		fields employeeFlags
		locate locateFlags
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit an employee; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view := roster.NewEmployeeView(a.log, a.metrics, a.api)
			if _, err := view.LoadDivisions(cmd.Context()); err != nil {
				return err
			}
			if _, err := view.Load(cmd.Context(), locate.name, "", locate.page); err != nil {
				return err
			}

			modal, err := view.Editor.OpenEdit(args[0])
			if errors.Is(err, collection.ErrRowNotFound) {
				return fmt.Errorf("employee %s is not on page %d: %w", args[0], locate.page, err)
			}
			if err != nil {
				return err
			}
			input, err := fields.apply(cmd.Flags(), modal.Form.Input)
			if err != nil {
				return err
			}

			return a.submitEmployee(cmd, view, input, "Employee updated.")
		},
	}
	fields.register(cmd.Flags())
	locate.register(cmd.Flags())

	return cmd
}

func (a *app) submitEmployee(cmd *cobra.Command, view *roster.EmployeeView, input models.EmployeeInput, done string) error {
	rows, err := view.Editor.Submit(cmd.Context(), input)
	if modal := view.Editor.Modal(); modal.Form != nil {
		fmt.Fprint(a.out, a.render.FormErrors(modal.Form.Message, modal.Form.Errors))
		return err
	}

	fmt.Fprintln(a.out, done)
	if err != nil {
		// saved, but the refresh of the list failed
		return err
	}
	fmt.Fprint(a.out, a.render.Employees(rows, view.Divisions()))

	return nil
}

func newEmployeeDeleteCmd(a *app) *cobra.Command {
	var (
		locate locateFlags
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an employee after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			view := roster.NewEmployeeView(a.log, a.metrics, a.api)
			rows, err := view.Load(cmd.Context(), locate.name, "", locate.page)
			if err != nil {
				return err
			}

			if _, err = view.Editor.RequestDelete(id); err != nil {
				if errors.Is(err, collection.ErrRowNotFound) {
					return fmt.Errorf("employee %s is not on page %d: %w", id, locate.page, err)
				}
				return err
			}

			confirmed := yes
			if !confirmed {
				if confirmed, err = a.confirmDelete(employeeLabel(rows.Rows, id)); err != nil {
					_ = view.Editor.CancelDelete()
					return err
				}
			}
			if !confirmed {
				fmt.Fprintln(a.out, "Cancelled.")
				return view.Editor.CancelDelete()
			}

			rows, err = view.Editor.ConfirmDelete(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Employee deleted.")
			fmt.Fprint(a.out, a.render.Employees(rows, nil))

			return nil
		},
	}
	locate.register(cmd.Flags())
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")

	return cmd
}

func employeeLabel(rows []models.Employee, id string) string {
	for _, e := range rows {
		if e.ID == id {
			return fmt.Sprintf("employee %s (%s)", e.Name, e.ID)
		}
	}

	return "employee " + id
}
