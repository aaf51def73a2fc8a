package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/tanodigital/hr-client-go/internal/bootstrap"
	domainauth "github.com/tanodigital/hr-client-go/internal/domain/auth"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		roleFlag string
		debug    bool
	)

	root := &cobra.Command{
		Use:           "hrctl",
		Short:         "Recruitment portal client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&roleFlag, "role", "candidate", "login role (admin or candidate)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newLoginCmd(&roleFlag, &debug))
	root.AddCommand(newLogoutCmd(&debug))
	root.AddCommand(newWhoamiCmd(&debug))
	root.AddCommand(newRegisterCmd(&roleFlag, &debug))
	root.AddCommand(newResetPasswordCmd(&debug))
	return root
}

// loadApp builds the session layer from environment configuration.
func loadApp(ctx context.Context, debug bool) (*bootstrap.Client, error) {
	logger := bootstrap.InitLogger(debug)

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return nil, err
	}

	return bootstrap.NewClient(ctx, bootstrap.Options{
		Config: cfg,
		Logger: logger,
		OnUnauthorized: func(*http.Request) {
			_, _ = fmt.Fprintln(os.Stderr, "session expired, please log in again")
		},
	})
}

func parseRole(s string) (domainauth.Role, error) {
	return domainauth.ParseRole(s)
}

func closeApp(app *bootstrap.Client) {
	if err := app.Close(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "warning: cleanup failed: %v\n", err)
	}
}
