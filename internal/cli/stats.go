package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soyeahso/takeout2sms/internal/backup"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <backup-file>",
		Short: "Summarize the messages in a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := backup.ReadDocument(args[0], log)
			if err != nil {
				return err
			}

			stats, err := backup.CollectStats(records)
			if err != nil {
				return err
			}

			fmt.Printf("Messages:  %d\n", stats.Messages)
			fmt.Printf("SMS:       %d\n", stats.Sms)
			fmt.Printf("MMS:       %d\n", stats.Mms)
			fmt.Printf("Sent:      %d\n", stats.Sent)
			fmt.Printf("Received:  %d\n", stats.Received)
			fmt.Printf("Contacts:  %d\n", stats.Contacts)
			for kind, count := range stats.Diagnostics {
				fmt.Printf("Diagnostic %q: %d\n", kind, count)
			}
			return nil
		},
	}
}
