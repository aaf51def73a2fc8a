package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newWhoamiCmd(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session, refreshed from the backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *debug)
			if err != nil {
				return err
			}
			defer closeApp(app)

			if !app.Sessions.Current().Authenticated() {
				fmt.Println("not logged in")
				return nil
			}

			if err := app.Sessions.RefreshPrincipal(cmd.Context()); err != nil {
				return err
			}

			sess := app.Sessions.Current()
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sess.Principal)
		},
	}
}
