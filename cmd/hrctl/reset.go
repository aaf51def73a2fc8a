package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newResetPasswordCmd walks the three reset steps in order: request the
// code, verify it, then commit the new password. Each backend failure is
// retryable without restarting the whole sequence.
func newResetPasswordCmd(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <email>",
		Short: "Reset a forgotten password via emailed one-time code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]

			app, err := loadApp(cmd.Context(), *debug)
			if err != nil {
				return err
			}
			defer closeApp(app)

			if err := app.Reset.RequestOTP(cmd.Context(), email); err != nil {
				return err
			}
			fmt.Printf("a one-time code was sent to %s\n", email)

			otp, err := promptLine("Code: ")
			if err != nil {
				return err
			}
			if err := app.Reset.VerifyOTP(cmd.Context(), email, otp); err != nil {
				return err
			}

			newPass, err := promptLine("New password: ")
			if err != nil {
				return err
			}
			if err := app.Reset.ResetPassword(cmd.Context(), email, otp, newPass); err != nil {
				return err
			}

			fmt.Println("password reset, you can now log in")
			return nil
		},
	}
}
