// Package convert drives the full archive walk: conversations are resolved,
// their events parsed in export order, and the results mapped onto backup
// records.
package convert

import (
	"context"
	"fmt"

	"github.com/soyeahso/takeout2sms/internal/backup"
	"github.com/soyeahso/takeout2sms/internal/logging"
	"github.com/soyeahso/takeout2sms/internal/takeout"
)

// Converter walks a raw archive conversation by conversation.
type Converter struct {
	parser  *takeout.EventParser
	emitter *backup.Emitter
	log     *logging.Logger
}

// New wires an image fetcher into a converter.
func New(images takeout.ImageFetcher, log *logging.Logger) *Converter {
	return &Converter{
		parser:  takeout.NewEventParser(images, log),
		emitter: backup.NewEmitter(log),
		log:     log.Sub("convert"),
	}
}

// Run converts every conversation in the archive. A limit above zero caps
// the number of emitted records, but always at a conversation boundary so a
// partial run never splits a conversation across output files.
func (c *Converter) Run(ctx context.Context, archive *takeout.RawArchive, limit int) ([]backup.Record, error) {
	var records []backup.Record

	for _, conv := range archive.Conversations {
		meta, err := takeout.ResolveConversation(conv, c.log)
		if err != nil {
			return nil, fmt.Errorf("resolving conversation: %w", err)
		}

		c.log.Debug().
			Str("conversation_id", meta.ConversationID).
			Str("type", string(meta.Type)).
			Int("events", meta.EventCount).
			Msg("converting conversation")

		for _, raw := range conv.Events {
			ev, err := c.parser.Parse(ctx, raw)
			if err != nil {
				return nil, fmt.Errorf("conversation %s: %w", meta.ConversationID, err)
			}

			recs, err := c.emitter.Emit(ev, meta)
			if err != nil {
				return nil, fmt.Errorf("conversation %s: %w", meta.ConversationID, err)
			}
			records = append(records, recs...)
		}

		if limit > 0 && len(records) >= limit {
			c.log.Debug().
				Int("limit", limit).
				Int("messages", len(records)).
				Msg("message limit reached, stopping")
			break
		}
	}

	c.log.Info().Int("messages", len(records)).Msg("conversion complete")
	return records, nil
}
