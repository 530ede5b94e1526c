package backup

import (
	"bytes"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/takeout2sms/internal/domain"
	"github.com/soyeahso/takeout2sms/internal/logging"
)

var testTime = time.Date(2019, 12, 16, 19, 44, 31, 0, time.UTC)

func oneToOneMeta() domain.ConversationMeta {
	return domain.ConversationMeta{
		ConversationID: "conv-1",
		Type:           domain.ConversationOneToOne,
		User:           domain.Participant{ID: "user-1", Address: "Archive Owner"},
		Participants:   []domain.Participant{{ID: "peer-1", Address: "+15550001111"}},
	}
}

func groupMeta() domain.ConversationMeta {
	return domain.ConversationMeta{
		ConversationID: "conv-2",
		Type:           domain.ConversationGroup,
		User:           domain.Participant{ID: "user-1", Address: "Archive Owner"},
		Participants: []domain.Participant{
			{ID: "peer-1", Address: "+15550001111"},
			{ID: "peer-2", Address: "+15550002222"},
		},
	}
}

func event(sender string, parts ...domain.ContentPart) domain.ParsedEvent {
	return domain.ParsedEvent{
		ConversationID: "conv-1",
		SenderID:       sender,
		UserID:         "user-1",
		EventID:        "evt-1",
		Timestamp:      testTime,
		Parts:          parts,
	}
}

func newTestEmitter() *Emitter {
	return NewEmitter(logging.New(&bytes.Buffer{}, "silent"))
}

func TestEmitSingleTextOneToOneIsSms(t *testing.T) {
	records, err := newTestEmitter().Emit(event("peer-1", domain.TextPart{Body: "hello"}), oneToOneMeta())
	require.NoError(t, err)
	require.Len(t, records, 1)

	sms, ok := records[0].(Sms)
	require.True(t, ok)
	assert.Equal(t, "hello", sms.Body)
	assert.Equal(t, "+15550001111", sms.Address)
	assert.Equal(t, DirectionReceived, sms.Type)
	assert.Equal(t, "1576525471000", sms.Date)
	assert.Equal(t, "0", sms.Protocol)
	assert.Equal(t, "1", sms.Read)
	assert.Equal(t, "-1", sms.Status)
	assert.Equal(t, "-1", sms.SubID)
	assert.Equal(t, nullValue, sms.Subject)
}

func TestEmitDirectionSent(t *testing.T) {
	records, err := newTestEmitter().Emit(event("user-1", domain.TextPart{Body: "hi"}), oneToOneMeta())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, DirectionSent, records[0].(Sms).Type)
}

func TestEmitDiagnosticOneToOneIsSms(t *testing.T) {
	diag, err := domain.NewDiagnosticPart(domain.DiagImageNotFound, "https://example.com/gone.jpg")
	require.NoError(t, err)

	records, err := newTestEmitter().Emit(event("peer-1", diag), oneToOneMeta())
	require.NoError(t, err)
	require.Len(t, records, 1)

	sms := records[0].(Sms)
	kind, locator, ok := domain.ParseDiagnostic(sms.Body)
	require.True(t, ok)
	assert.Equal(t, domain.DiagImageNotFound, kind)
	assert.Equal(t, "https://example.com/gone.jpg", locator)
}

func TestEmitEmptyPartsEmitsNothing(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewEmitter(logging.New(&buf, "warn"))

	records, err := emitter.Emit(event("peer-1"), oneToOneMeta())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Contains(t, buf.String(), "no content parts")
	assert.Contains(t, buf.String(), "evt-1")
	assert.Contains(t, buf.String(), "conv-1")
}

func TestEmitGroupTextIsMms(t *testing.T) {
	records, err := newTestEmitter().Emit(event("peer-2", domain.TextPart{Body: "hey all"}), groupMeta())
	require.NoError(t, err)
	require.Len(t, records, 1)

	mms, ok := records[0].(Mms)
	require.True(t, ok)
	assert.Equal(t, DirectionReceived, mms.MsgBox)
	assert.Equal(t, msgTypeText, mms.MsgType)
	assert.Equal(t, "Archive Owner", mms.Address)
	assert.Equal(t, contentTypeMultipart, mms.ContentType)

	// SMIL descriptor first, then the single real part.
	require.Len(t, mms.Parts.Part, 2)
	assert.Equal(t, contentTypeSMIL, mms.Parts.Part[0].ContentType)
	assert.Equal(t, "-1", mms.Parts.Part[0].Seq)
	assert.Equal(t, "hey all", mms.Parts.Part[1].Text)
	assert.Equal(t, charsetUTF8, mms.Parts.Part[1].Charset)
	assert.Equal(t, "7", mms.Size)
}

func TestEmitMmsAddressList(t *testing.T) {
	records, err := newTestEmitter().Emit(event("peer-2", domain.TextPart{Body: "x"}), groupMeta())
	require.NoError(t, err)
	require.Len(t, records, 1)

	addrs := records[0].(Mms).Addresses.Addr
	require.Len(t, addrs, groupMeta().ParticipantCount()+1, "every participant plus the owner")

	froms := 0
	for _, a := range addrs {
		switch a.Type {
		case addrTypeFrom:
			froms++
			assert.Equal(t, "+15550002222", a.Address)
		case addrTypeTo:
		default:
			t.Fatalf("unexpected addr type %q", a.Type)
		}
		assert.Equal(t, charsetASCII, a.Charset)
	}
	assert.Equal(t, 1, froms)
}

func TestEmitOwnerSenderMarkedFrom(t *testing.T) {
	records, err := newTestEmitter().Emit(event("user-1", domain.TextPart{Body: "x"}), groupMeta())
	require.NoError(t, err)

	addrs := records[0].(Mms).Addresses.Addr
	require.Len(t, addrs, 3)
	assert.Equal(t, addrTypeFrom, addrs[2].Type, "owner entry is last and marked From")
	assert.Equal(t, "Archive Owner", addrs[2].Address)
}

func TestEmitMultiPartOneRecordPerPart(t *testing.T) {
	image := domain.ImagePart{Mime: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff, 0xe0}}
	records, err := newTestEmitter().Emit(
		event("peer-1", domain.TextPart{Body: "caption"}, image), oneToOneMeta())
	require.NoError(t, err)
	require.Len(t, records, 2, "one Mms per content part")

	text := records[0].(Mms)
	assert.Equal(t, msgTypeText, text.MsgType)
	require.Len(t, text.Parts.Part, 2)
	assert.Equal(t, "caption", text.Parts.Part[1].Text)

	img := records[1].(Mms)
	assert.Equal(t, msgTypeImage, img.MsgType)
	require.Len(t, img.Parts.Part, 2)
	wantData := base64.StdEncoding.EncodeToString(image.Data)
	assert.Equal(t, wantData, img.Parts.Part[1].Data)
	assert.Equal(t, "image/jpeg", img.Parts.Part[1].ContentType)
	assert.Equal(t, "0", img.Parts.Part[1].Seq)
	assert.Equal(t, "image", img.Parts.Part[1].ContentLocation)
	assert.Equal(t, len(wantData), len(img.Parts.Part[1].Data))
	assert.Equal(t, img.Size, "8")

	// Both records share the same address list.
	assert.Equal(t, text.Addresses, img.Addresses)
}

func TestEmitSingleImageOneToOneIsMms(t *testing.T) {
	records, err := newTestEmitter().Emit(
		event("peer-1", domain.ImagePart{Mime: "image/png", Data: []byte{1}}), oneToOneMeta())
	require.NoError(t, err)
	require.Len(t, records, 1)
	_, ok := records[0].(Mms)
	assert.True(t, ok, "images are never SMS-representable")
}
