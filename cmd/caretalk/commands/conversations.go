package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func conversationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conversations",
		Short: "List conversations with unread counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			convs, err := appCtx.Chat.Conversations(cmd.Context())
			if err != nil {
				return err
			}
			if len(convs) == 0 {
				fmt.Println("No conversations")
				return nil
			}
			for _, c := range convs {
				preview := ""
				if c.LastMessage != nil {
					text, err := appCtx.Chat.Plaintext(*c.LastMessage)
					if err != nil {
						return err
					}
					preview = text
				}
				fmt.Printf("%s  unread=%d  %s\n", c.ID, c.UnreadCount, preview)
			}
			total, err := appCtx.Chat.TotalUnread(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Total unread: %d\n", total)
			return nil
		},
	}
}
