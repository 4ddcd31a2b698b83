package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"caretalk/internal/domain"
)

func startCmd() *cobra.Command {
	var therapist string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a conversation with a therapist",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, ok := appCtx.Sessions.StoredUser(cmd.Context())
			if !ok {
				return fmt.Errorf("not signed in")
			}
			conv, err := appCtx.Chat.StartConversation(cmd.Context(), user.ID, domain.UserID(therapist))
			if err != nil {
				return err
			}
			fmt.Printf("Conversation %s started\n", conv.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&therapist, "therapist", "", "therapist id")
	_ = cmd.MarkFlagRequired("therapist")
	return cmd
}
