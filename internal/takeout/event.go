package takeout

import (
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/soyeahso/takeout2sms/internal/domain"
	"github.com/soyeahso/takeout2sms/internal/logging"
)

// Segment type values observed in the export.
const (
	segmentText      = "TEXT"
	segmentLineBreak = "LINE_BREAK"
	segmentLink      = "LINK"
)

const eventTypeVoicemail = "VOICEMAIL"

// Embed item type signatures observed in the export.
var (
	embedPhoto = []string{"PLUS_PHOTO"}
	embedPlace = []string{"PLACE_V2", "THING_V2", "THING"}
	embedAudio = []string{"PLUS_AUDIO_V2"}
)

var eventRequiredKeys = []string{
	"conversation_id", "sender_id", "timestamp",
	"self_event_state", "chat_message", "event_id", "event_type",
}

// ImageFetcher retrieves a photo attachment by URL. Implementations return
// an ImagePart on success or a DiagnosticPart when the remote copy is gone.
type ImageFetcher interface {
	Fetch(ctx context.Context, url, cacheKey string) (domain.ContentPart, error)
}

// EventParser reconstructs one ParsedEvent per raw event record.
type EventParser struct {
	images ImageFetcher
	log    *logging.Logger
}

// NewEventParser wires an image fetcher and a log sink into a parser.
func NewEventParser(images ImageFetcher, log *logging.Logger) *EventParser {
	return &EventParser{images: images, log: log.Sub("events")}
}

// Parse rebuilds the ordered content parts of one event. Photo attachments
// block on the image fetcher; its failures propagate unchanged.
func (p *EventParser) Parse(ctx context.Context, raw json.RawMessage) (domain.ParsedEvent, error) {
	var ev rawEvent
	if err := strictDecode(raw, &ev, eventRequiredKeys, "event"); err != nil {
		return domain.ParsedEvent{}, err
	}

	// Timestamps are microseconds since epoch, serialized as a string.
	usec, err := strconv.ParseInt(ev.Timestamp, 10, 64)
	if err != nil {
		return domain.ParsedEvent{}, domain.Schemaf("event %s: bad timestamp %q", ev.EventID, ev.Timestamp)
	}

	var selfState selfEventState
	if err := json.Unmarshal(ev.SelfEventState, &selfState); err != nil {
		return domain.ParsedEvent{}, domain.Schemaf("event %s: decoding self state: %v", ev.EventID, err)
	}

	var msg chatMessage
	if err := json.Unmarshal(ev.ChatMessage, &msg); err != nil {
		return domain.ParsedEvent{}, domain.Schemaf("event %s: decoding chat message: %v", ev.EventID, err)
	}

	parsed := domain.ParsedEvent{
		ConversationID: ev.ConversationID.ID,
		SenderID:       ev.SenderID.GaiaID,
		UserID:         selfState.UserID.GaiaID,
		EventID:        ev.EventID,
		Timestamp:      time.UnixMicro(usec),
	}

	if msg.MessageContent.Segment != nil {
		text, err := joinSegments(msg.MessageContent.Segment)
		if err != nil {
			return domain.ParsedEvent{}, err
		}
		parsed.Parts = append(parsed.Parts, domain.TextPart{Body: text})
	}

	part, err := p.parseAttachments(ctx, ev, msg.MessageContent.Attachment)
	if err != nil {
		return domain.ParsedEvent{}, err
	}
	if part != nil {
		parsed.Parts = append(parsed.Parts, part)
	}

	// Every annotation in the sample corpus carried an empty value. A
	// non-empty one means an unhandled semantic, not something to guess at.
	for _, ann := range msg.Annotation {
		if ann.Value != "" {
			return domain.ParsedEvent{}, domain.Schemaf(
				"event %s: non-empty annotation value %q", ev.EventID, ann.Value)
		}
	}

	return parsed, nil
}

// joinSegments concatenates text segments into one body: line breaks become
// newlines, links contribute their display text padded with spaces (the
// separate link target metadata is dropped).
func joinSegments(segments []segment) (string, error) {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Type {
		case segmentLineBreak:
			b.WriteString("\n")
		case segmentText:
			b.WriteString(seg.Text)
		case segmentLink:
			b.WriteString(" " + seg.Text + " ")
		default:
			return "", domain.Schemaf("unknown segment type %q", seg.Type)
		}
	}
	return b.String(), nil
}

func (p *EventParser) parseAttachments(ctx context.Context, ev rawEvent, attachments []attachment) (domain.ContentPart, error) {
	if len(attachments) == 0 {
		return nil, nil
	}
	// Never seen in the source corpus; must not be silently dropped.
	if len(attachments) > 1 {
		return nil, domain.Schemaf("event %s has %d attachments, expected at most one", ev.EventID, len(attachments))
	}

	item := attachments[0].EmbedItem
	switch {
	case slices.Equal(item.Type, embedPhoto):
		if item.PlusPhoto == nil {
			return nil, domain.Schemaf("event %s: photo attachment without plus_photo payload", ev.EventID)
		}
		p.log.Info().Str("event_id", ev.EventID).Msg("retrieving photo attachment")
		return p.images.Fetch(ctx, item.PlusPhoto.URL, ev.EventID)

	case slices.Equal(item.Type, embedPlace):
		// Maps data; the rendered link already lives in the text segments.
		return nil, nil

	case slices.Equal(item.Type, embedAudio):
		if ev.EventType != eventTypeVoicemail {
			return nil, domain.Validationf(
				"audio attachment on %s event %s", ev.EventType, ev.EventID)
		}
		p.log.Warn().Str("event_id", ev.EventID).Msg("voicemail audio attachment not converted")
		return nil, nil

	default:
		return nil, domain.Schemaf("unknown embed item type %v", item.Type)
	}
}
