package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"caretalk/internal/domain"
)

func registerCmd() *cobra.Command {
	var reg domain.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := appCtx.Sessions.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			fmt.Printf("Registered %s <%s>\n", sess.User.FirstName, sess.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "account password")
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&reg.DateOfBirth, "dob", "", "date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reg.Phone, "phone", "", "phone number")
	for _, f := range []string{"email", "password", "first-name", "last-name", "dob", "phone"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
