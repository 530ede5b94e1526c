// Package cli implements the takeout2sms command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/soyeahso/takeout2sms/internal/config"
	"github.com/soyeahso/takeout2sms/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "takeout2sms",
		Short: "Convert a Google Takeout Hangouts export to SMS Backup & Restore XML",
		Long: "takeout2sms reads the Hangouts chat history out of a Google Takeout zip " +
			"and writes it as an SMS Backup & Restore backup file, ready to restore onto a phone.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.takeout2sms/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newStatsCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
