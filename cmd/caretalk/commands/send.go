package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"caretalk/internal/domain"
	"caretalk/internal/services/chat"
)

func sendCmd() *cobra.Command {
	var conversation string

	cmd := &cobra.Command{
		Use:   "send [text]",
		Short: "Send a text message in a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, ok := appCtx.Sessions.StoredUser(cmd.Context())
			if !ok {
				return fmt.Errorf("not signed in")
			}
			msg, _, err := appCtx.Chat.Append(cmd.Context(), chat.Draft{
				ConversationID: domain.ConversationID(conversation),
				SenderID:       user.ID,
				SenderRole:     domain.SenderClient,
				Kind:           domain.KindText,
				Content:        args[0],
			})
			if err != nil {
				return err
			}
			fmt.Printf("Sent %s\n", msg.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&conversation, "conversation", "", "conversation id")
	_ = cmd.MarkFlagRequired("conversation")
	return cmd
}
