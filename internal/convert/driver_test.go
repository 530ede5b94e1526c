package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/takeout2sms/internal/backup"
	"github.com/soyeahso/takeout2sms/internal/domain"
	"github.com/soyeahso/takeout2sms/internal/logging"
	"github.com/soyeahso/takeout2sms/internal/takeout"
)

type fakeFetcher struct {
	part domain.ContentPart
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url, _ string) (domain.ContentPart, error) {
	f.urls = append(f.urls, url)
	return f.part, nil
}

// conversation builds one export conversation record with the given events.
func conversation(convID string, events ...map[string]any) map[string]any {
	return map[string]any{
		"conversation": map[string]any{
			"conversation": map[string]any{
				"id":   map[string]any{"id": convID},
				"type": "STICKY_ONE_TO_ONE",
				"self_conversation_state": map[string]any{
					"self_read_state": map[string]any{
						"participant_id": map[string]any{"gaia_id": "user-1"},
					},
				},
				"participant_data": []any{
					map[string]any{
						"id":               map[string]any{"gaia_id": "user-1"},
						"participant_type": "GAIA",
						"fallback_name":    "Archive Owner",
					},
					map[string]any{
						"id":               map[string]any{"gaia_id": "peer-1"},
						"participant_type": "OFF_NETWORK_PHONE",
						"phone_number":     map[string]any{"e164": "+15550001111"},
					},
				},
			},
		},
		"events": events,
	}
}

func textEvent(convID, eventID, sender, text string) map[string]any {
	return map[string]any{
		"conversation_id": map[string]any{"id": convID},
		"sender_id":       map[string]any{"gaia_id": sender},
		"timestamp":       "1576525471673269",
		"self_event_state": map[string]any{
			"user_id": map[string]any{"gaia_id": "user-1"},
		},
		"chat_message": map[string]any{
			"message_content": map[string]any{
				"segment": []any{map[string]any{"type": "TEXT", "text": text}},
			},
		},
		"event_id":   eventID,
		"event_type": "REGULAR_CHAT_MESSAGE",
	}
}

func buildArchive(t *testing.T, conversations ...map[string]any) *takeout.RawArchive {
	t.Helper()
	data, err := json.Marshal(map[string]any{"conversations": conversations})
	require.NoError(t, err)

	var archive takeout.RawArchive
	require.NoError(t, json.Unmarshal(data, &archive))
	return &archive
}

func newTestConverter(f takeout.ImageFetcher) *Converter {
	return New(f, logging.New(&bytes.Buffer{}, "silent"))
}

func TestRunPreservesOrder(t *testing.T) {
	archive := buildArchive(t,
		conversation("conv-1",
			textEvent("conv-1", "evt-1", "peer-1", "first"),
			textEvent("conv-1", "evt-2", "user-1", "second"),
		),
		conversation("conv-2",
			textEvent("conv-2", "evt-3", "peer-1", "third"),
		),
	)

	records, err := newTestConverter(&fakeFetcher{}).Run(context.Background(), archive, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)

	bodies := make([]string, len(records))
	for i, rec := range records {
		bodies[i] = rec.(backup.Sms).Body
	}
	assert.Equal(t, []string{"first", "second", "third"}, bodies)
	assert.Equal(t, backup.DirectionReceived, records[0].(backup.Sms).Type)
	assert.Equal(t, backup.DirectionSent, records[1].(backup.Sms).Type)
}

func TestRunLimitStopsAtConversationBoundary(t *testing.T) {
	archive := buildArchive(t,
		conversation("conv-1",
			textEvent("conv-1", "evt-1", "peer-1", "a"),
			textEvent("conv-1", "evt-2", "peer-1", "b"),
		),
		conversation("conv-2",
			textEvent("conv-2", "evt-3", "peer-1", "c"),
		),
	)

	records, err := newTestConverter(&fakeFetcher{}).Run(context.Background(), archive, 1)
	require.NoError(t, err)
	assert.Len(t, records, 2, "the in-progress conversation finishes before the limit applies")
}

func TestRunZeroLimitConvertsEverything(t *testing.T) {
	archive := buildArchive(t,
		conversation("conv-1", textEvent("conv-1", "evt-1", "peer-1", "a")),
		conversation("conv-2", textEvent("conv-2", "evt-2", "peer-1", "b")),
	)

	records, err := newTestConverter(&fakeFetcher{}).Run(context.Background(), archive, 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRunFetchesPhotoAttachments(t *testing.T) {
	fetcher := &fakeFetcher{part: domain.ImagePart{Mime: "image/png", Data: []byte{1, 2}}}

	event := textEvent("conv-1", "evt-1", "peer-1", "look")
	event["chat_message"].(map[string]any)["message_content"].(map[string]any)["attachment"] = []any{
		map[string]any{
			"embed_item": map[string]any{
				"type":       []any{"PLUS_PHOTO"},
				"plus_photo": map[string]any{"url": "https://example.com/p.png"},
			},
		},
	}
	archive := buildArchive(t, conversation("conv-1", event))

	records, err := newTestConverter(fetcher).Run(context.Background(), archive, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/p.png"}, fetcher.urls)

	// Text plus image forces the multi-part path: one record per part.
	require.Len(t, records, 2)
	assert.Equal(t, "look", records[0].(backup.Mms).Parts.Part[1].Text)
	assert.Equal(t, "image/png", records[1].(backup.Mms).Parts.Part[1].ContentType)
}

func TestRunBadConversationAborts(t *testing.T) {
	broken := conversation("conv-1")
	broken["conversation"].(map[string]any)["conversation"].(map[string]any)["type"] = "BROADCAST"
	archive := buildArchive(t, broken)

	_, err := newTestConverter(&fakeFetcher{}).Run(context.Background(), archive, 0)
	var se *domain.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "resolving conversation")
}

func TestRunBadEventNamesConversation(t *testing.T) {
	event := textEvent("conv-1", "evt-1", "peer-1", "x")
	event["timestamp"] = "soon"
	archive := buildArchive(t, conversation("conv-1", event))

	_, err := newTestConverter(&fakeFetcher{}).Run(context.Background(), archive, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conv-1")
}
