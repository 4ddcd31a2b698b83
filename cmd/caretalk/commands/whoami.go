package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, ok := appCtx.Sessions.StoredUser(cmd.Context())
			if !ok {
				fmt.Println("Not signed in")
				return nil
			}
			fmt.Printf("%s %s <%s>\n", user.FirstName, user.LastName, user.Email)
			if user.LastLoginAt != nil {
				fmt.Printf("Last login: %s\n", user.LastLoginAt.Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		},
	}
}
