package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UnknownOlympus/roster-console/internal/auth"
)

func newLoginCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if username == "" {
				if username, err = a.prompt("Username: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.prompt("Password: "); err != nil {
					return err
				}
			}

			if err = auth.LoginAndStore(cmd.Context(), a.log, a.api, a.tokens, username, password); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s.\n", username)

			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")

	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the token and forget it locally",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := auth.Logout(cmd.Context(), a.log, a.api, a.tokens); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")

			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind the current token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := auth.CurrentUser(cmd.Context(), a.api)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, a.render.User(user))

			return nil
		},
	}
}
