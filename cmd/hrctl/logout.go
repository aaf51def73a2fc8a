package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the current session and stored tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *debug)
			if err != nil {
				return err
			}
			defer closeApp(app)

			if err := app.Sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}
