package backup

import (
	"encoding/base64"
	"strconv"

	"github.com/soyeahso/takeout2sms/internal/domain"
	"github.com/soyeahso/takeout2sms/internal/logging"
)

// Emitter maps parsed events onto backup records.
type Emitter struct {
	log *logging.Logger
}

// NewEmitter wires a log sink into an emitter.
func NewEmitter(log *logging.Logger) *Emitter {
	return &Emitter{log: log.Sub("emit")}
}

// Emit produces zero or more records for one event. A message is
// SMS-representable only when it has exactly one textual part and the
// conversation is one-to-one; everything else becomes one Mms record per
// content part, since the restore app's readers expect one free part per
// multi-part container.
func (e *Emitter) Emit(ev domain.ParsedEvent, meta domain.ConversationMeta) ([]Record, error) {
	if len(ev.Parts) == 0 {
		// Seen in exports whose only content was a discarded attachment.
		e.log.Warn().
			Str("event_id", ev.EventID).
			Str("conversation_id", ev.ConversationID).
			Msg("event has no content parts")
		return nil, nil
	}

	direction := DirectionReceived
	if ev.SenderID == ev.UserID {
		direction = DirectionSent
	}
	date := strconv.FormatInt(ev.Timestamp.UnixMilli(), 10)

	if sms, ok := e.asSms(ev, meta, direction, date); ok {
		return []Record{sms}, nil
	}
	return e.asMms(ev, meta, direction, date)
}

func (e *Emitter) asSms(ev domain.ParsedEvent, meta domain.ConversationMeta, direction, date string) (Sms, bool) {
	if meta.Type != domain.ConversationOneToOne || len(ev.Parts) != 1 {
		return Sms{}, false
	}

	var body string
	switch part := ev.Parts[0].(type) {
	case domain.TextPart:
		body = part.Body
	case domain.DiagnosticPart:
		body = part.Body()
	default:
		return Sms{}, false
	}

	return Sms{
		Protocol:      "0",
		Address:       meta.Participants[0].Address,
		Date:          date,
		Type:          direction,
		Body:          body,
		DateSent:      dateSentMilli,
		ServiceCenter: serviceCenter,
		Subject:       nullValue,
		Toa:           nullValue,
		ScToa:         nullValue,
		Read:          "1",
		Status:        "-1",
		Locked:        "0",
		SubID:         "-1",
	}, true
}

func (e *Emitter) asMms(ev domain.ParsedEvent, meta domain.ConversationMeta, direction, date string) ([]Record, error) {
	addrs := addressList(ev, meta)

	records := make([]Record, 0, len(ev.Parts))
	for _, part := range ev.Parts {
		mms := Mms{
			Date:        date,
			ContentType: contentTypeMultipart,
			MsgBox:      direction,
			ReadReport:  nullValue,
			Subject:     nullValue,
			ReadStatus:  nullValue,
			Address:     meta.User.Address,
			MessageID:   nullValue,
			Addresses:   addrs,
		}

		switch p := part.(type) {
		case domain.ImagePart:
			data := base64.StdEncoding.EncodeToString(p.Data)
			mms.Size = strconv.Itoa(len(data))
			mms.MsgType = msgTypeImage
			mms.Parts = Parts{Part: []Part{
				smilPart(smilImage),
				{
					Seq:             "0",
					Charset:         nullValue,
					ContentType:     p.Mime,
					ContentLocation: "image",
					Data:            data,
				},
			}}
		case domain.TextPart:
			fillTextParts(&mms, p.Body)
		case domain.DiagnosticPart:
			fillTextParts(&mms, p.Body())
		default:
			// Unreachable given the parser's exhaustiveness; kept so a new
			// part kind cannot slip through silently.
			return nil, domain.Schemaf("unknown content part kind %T", part)
		}

		records = append(records, mms)
	}
	return records, nil
}

func fillTextParts(mms *Mms, text string) {
	mms.Size = strconv.Itoa(len(text))
	mms.MsgType = msgTypeText
	mms.Parts = Parts{Part: []Part{
		smilPart(smilText),
		{
			Charset:         charsetUTF8,
			ContentType:     contentTypeText,
			ContentLocation: "text",
			Text:            text,
		},
	}}
}

func smilPart(template string) Part {
	return Part{
		Seq:                "-1",
		ContentType:        contentTypeSMIL,
		Name:               nullValue,
		Charset:            nullValue,
		ContentDisposition: nullValue,
		Filename:           nullValue,
		ContentID:          "<smil>",
		ContentLocation:    "smil.xml",
		CttS:               nullValue,
		CttT:               nullValue,
		Text:               template,
	}
}

// addressList builds the shared address set: every participant plus the
// owner, with the sender marked From and everyone else To.
func addressList(ev domain.ParsedEvent, meta domain.ConversationMeta) Addrs {
	members := make([]domain.Participant, 0, len(meta.Participants)+1)
	members = append(members, meta.Participants...)
	members = append(members, meta.User)

	var addrs Addrs
	for _, p := range members {
		addrType := addrTypeTo
		if p.ID == ev.SenderID {
			addrType = addrTypeFrom
		}
		addrs.Addr = append(addrs.Addr, Addr{Address: p.Address, Type: addrType, Charset: charsetASCII})
	}
	return addrs
}
