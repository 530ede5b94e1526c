// Package takeout reads the Google Takeout Hangouts export and turns its
// raw JSON into the internal domain representation.
package takeout

import (
	"bytes"
	"encoding/json"

	"github.com/soyeahso/takeout2sms/internal/domain"
)

// RawArchive mirrors the top level of Takeout/Hangouts/Hangouts.json.
type RawArchive struct {
	Conversations []RawConversation `json:"conversations"`
}

// RawConversation keeps the conversation metadata and events undecoded so
// the resolver and parser can apply strict per-record decoding.
type RawConversation struct {
	Conversation conversationWrapper `json:"conversation"`
	Events       []json.RawMessage   `json:"events"`
}

type conversationWrapper struct {
	Conversation json.RawMessage `json:"conversation"`
}

type idRef struct {
	ID string `json:"id"`
}

type participantID struct {
	GaiaID string `json:"gaia_id"`
	ChatID string `json:"chat_id"`
}

// conversationDetail lists every top-level key observed in the export's
// conversation.conversation object. Nested objects stay raw: only the
// top-level key set is held to the reverse-engineered schema.
type conversationDetail struct {
	ID                    idRef           `json:"id"`
	Type                  string          `json:"type"`
	SelfConversationState json.RawMessage `json:"self_conversation_state"`
	ParticipantData       json.RawMessage `json:"participant_data"`

	CurrentParticipant     json.RawMessage `json:"current_participant"`
	ForceHistoryState      json.RawMessage `json:"force_history_state"`
	ForkOnExternalInvite   json.RawMessage `json:"fork_on_external_invite"`
	GroupLinkSharingStatus json.RawMessage `json:"group_link_sharing_status"`
	HasActiveHangout       json.RawMessage `json:"has_active_hangout"`
	NetworkType            json.RawMessage `json:"network_type"`
	OtrStatus              json.RawMessage `json:"otr_status"`
	OtrToggle              json.RawMessage `json:"otr_toggle"`
	ReadState              json.RawMessage `json:"read_state"`
}

type selfConversationState struct {
	SelfReadState struct {
		ParticipantID participantID `json:"participant_id"`
	} `json:"self_read_state"`
}

type participantData struct {
	ID              participantID `json:"id"`
	ParticipantType string        `json:"participant_type"`
	FallbackName    string        `json:"fallback_name"`
	PhoneNumber     *phoneNumber  `json:"phone_number"`
}

type phoneNumber struct {
	E164 string `json:"e164"`
}

// rawEvent lists every top-level key observed on an event record.
type rawEvent struct {
	ConversationID idRef           `json:"conversation_id"`
	SenderID       participantID   `json:"sender_id"`
	Timestamp      string          `json:"timestamp"`
	SelfEventState json.RawMessage `json:"self_event_state"`
	ChatMessage    json.RawMessage `json:"chat_message"`
	EventID        string          `json:"event_id"`
	EventType      string          `json:"event_type"`

	AdvancesSortTimestamp json.RawMessage `json:"advances_sort_timestamp"`
	DeliveryMedium        json.RawMessage `json:"delivery_medium"`
	EventOtr              json.RawMessage `json:"event_otr"`
	EventVersion          json.RawMessage `json:"event_version"`
}

type selfEventState struct {
	UserID            participantID `json:"user_id"`
	NotificationLevel string        `json:"notification_level"`
}

type chatMessage struct {
	MessageContent messageContent `json:"message_content"`
	Annotation     []annotation   `json:"annotation"`
}

type messageContent struct {
	Segment    []segment    `json:"segment"`
	Attachment []attachment `json:"attachment"`
}

type segment struct {
	Type       string          `json:"type"`
	Text       string          `json:"text"`
	Formatting json.RawMessage `json:"formatting"`
	LinkData   json.RawMessage `json:"link_data"`
}

type attachment struct {
	ID        string    `json:"id"`
	EmbedItem embedItem `json:"embed_item"`
}

type embedItem struct {
	Type      []string        `json:"type"`
	PlusPhoto *plusPhoto      `json:"plus_photo"`
	PlusAudio json.RawMessage `json:"plus_audio_v2"`
	PlaceV2   json.RawMessage `json:"place_v2"`
	ThingV2   json.RawMessage `json:"thing_v2"`
	ID        string          `json:"id"`
}

type plusPhoto struct {
	URL string `json:"url"`
}

type annotation struct {
	Type  int    `json:"type"`
	Value string `json:"value"`
}

// strictDecode rejects unknown top-level keys and verifies the required
// ones are present. The export format has evolved before; silently
// defaulting around an unfamiliar key set is how history gets corrupted.
func strictDecode(data []byte, v any, required []string, what string) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.Schemaf("decoding %s: %v", what, err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return domain.Schemaf("decoding %s: %v", what, err)
	}
	for _, k := range required {
		if _, ok := keys[k]; !ok {
			return domain.Schemaf("%s missing required key %q", what, k)
		}
	}
	return nil
}
