package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func forgotPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forgot-password [email]",
		Short: "Request a password reset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.Sessions.ForgotPassword(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("If that address has an account, a reset prompt is on its way")
			return nil
		},
	}
	return cmd
}
