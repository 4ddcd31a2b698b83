package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"caretalk/internal/domain"
)

func openCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open [conversation-id]",
		Short: "Open a conversation: print its messages and mark it read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.ConversationID(args[0])

			msgs, err := appCtx.Chat.Messages(cmd.Context(), id)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				text, err := appCtx.Chat.Plaintext(m)
				if err != nil {
					return err
				}
				fmt.Printf("[%s] %s (%s): %s\n", m.SentAt.Format("15:04"), m.SenderRole, m.Status, text)
				for _, a := range m.Attachments {
					url, err := appCtx.Chat.AttachmentURL(m, a)
					if err != nil {
						return err
					}
					fmt.Printf("  attachment %s (%s): %s\n", a.FileName, a.FileType, url)
				}
			}

			if _, err := appCtx.Chat.MarkOpened(cmd.Context(), id); err != nil {
				return err
			}
			return nil
		},
	}
	return cmd
}
