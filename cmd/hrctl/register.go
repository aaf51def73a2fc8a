package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tanodigital/hr-client-go/internal/ports"
)

func newRegisterCmd(roleFlag *string, debug *bool) *cobra.Command {
	var (
		email    string
		password string
		name     string
		username string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			role, err := parseRole(*roleFlag)
			if err != nil {
				return err
			}

			if password == "" {
				password, err = promptLine("Password: ")
				if err != nil {
					return err
				}
			}

			app, err := loadApp(cmd.Context(), *debug)
			if err != nil {
				return err
			}
			defer closeApp(app)

			err = app.Resolver.Register(cmd.Context(), role, ports.RegisterInput{
				Username:    username,
				DisplayName: name,
				Email:       email,
				Password:    password,
			})
			if err != nil {
				return err
			}
			fmt.Printf("registered %s account for %s\n", role, email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&username, "username", "", "username (admin accounts)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
