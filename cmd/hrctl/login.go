package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(roleFlag *string, debug *bool) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <identifier>",
		Short: "Sign in with an email or username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			sess, err := app.Resolver.Resolve(cmd.Context(), args[0], password, role)
			if err != nil {
				return err
			}

			name := args[0]
			if sess.Principal != nil && sess.Principal.DisplayName != "" {
				name = sess.Principal.DisplayName
			}
			fmt.Printf("logged in as %s (%s)\n", name, role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
