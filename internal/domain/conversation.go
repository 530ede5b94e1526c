// Package domain holds the internal representation shared between the
// Takeout reader and the backup writer: conversation metadata, parsed
// events, content parts, and the error taxonomy.
package domain

// ConversationType classifies a conversation thread.
type ConversationType string

const (
	ConversationOneToOne ConversationType = "one_to_one"
	ConversationGroup    ConversationType = "group"
)

// Participant is one resolved member of a conversation.
type Participant struct {
	ID      string // stable gaia id
	Address string // phone number, or fallback display name for short codes
}

// ConversationMeta is the resolved metadata for one conversation. It is
// built once per conversation and never mutated afterwards.
type ConversationMeta struct {
	ConversationID string
	Type           ConversationType
	User           Participant   // archive owner
	Participants   []Participant // everyone except the owner
	EventCount     int
}

// ParticipantCount reports the number of participants other than the owner.
func (m ConversationMeta) ParticipantCount() int { return len(m.Participants) }
