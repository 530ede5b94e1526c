package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soyeahso/takeout2sms/internal/backup"
	"github.com/soyeahso/takeout2sms/internal/config"
	"github.com/soyeahso/takeout2sms/internal/convert"
	"github.com/soyeahso/takeout2sms/internal/imageget"
	"github.com/soyeahso/takeout2sms/internal/logging"
	"github.com/soyeahso/takeout2sms/internal/store"
	"github.com/soyeahso/takeout2sms/internal/takeout"
)

func newConvertCmd() *cobra.Command {
	var (
		output       string
		existing     string
		messageCount int
		cachePath    string
	)

	cmd := &cobra.Command{
		Use:   "convert <takeout-zip>",
		Short: "Convert a Takeout zip into an SMS Backup & Restore file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if logLevel == "" && cfg.Logging.Level != "" {
				log = logging.New(nil, cfg.Logging.Level)
			}

			dbPath := cachePath
			if dbPath == "" {
				dbPath = cfg.Cache.Path
			}
			if dbPath == "" {
				dbPath = paths.Cache
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := store.Open(dbPath, log)
			if err != nil {
				return fmt.Errorf("opening image cache: %w", err)
			}
			defer db.Close()

			images := imageget.New(
				store.NewImageCache(db),
				time.Duration(cfg.Images.MaxBackoffSeconds)*time.Second,
				log,
			)

			archive, err := takeout.OpenArchive(args[0], log)
			if err != nil {
				return err
			}

			records, err := convert.New(images, log).Run(ctx, archive, messageCount)
			if err != nil {
				return err
			}

			if existing != "" {
				merged, err := backup.ReadDocument(existing, log)
				if err != nil {
					return err
				}
				records = append(records, merged...)
			}

			doc := backup.NewDocument(records)
			if err := doc.WriteFile(output); err != nil {
				return err
			}

			stats, err := backup.CollectStats(records)
			if err != nil {
				return err
			}
			log.Info().
				Str("path", output).
				Int("messages", stats.Messages).
				Int("sms", stats.Sms).
				Int("mms", stats.Mms).
				Int("sent", stats.Sent).
				Int("received", stats.Received).
				Int("contacts", stats.Contacts).
				Msg("backup written")
			for kind, count := range stats.Diagnostics {
				log.Warn().Str("kind", kind).Int("count", count).
					Msg("some messages carry an in-band diagnostic instead of their original content")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output backup file (required)")
	cmd.Flags().StringVarP(&existing, "existing", "x", "", "existing backup file to merge into the output")
	cmd.Flags().IntVar(&messageCount, "message-count", 0, "stop after roughly this many messages (0 = all)")
	cmd.Flags().StringVar(&cachePath, "cache", "", "image cache database (default ~/.takeout2sms/images.db)")
	cmd.MarkFlagRequired("output")

	return cmd
}
