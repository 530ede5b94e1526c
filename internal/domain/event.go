package domain

import "time"

// ContentPart is one piece of reconstructed message content. The concrete
// types are TextPart, ImagePart, and DiagnosticPart.
type ContentPart interface {
	MimeType() string
}

// TextPart is plain message text reassembled from the event's segments.
type TextPart struct {
	Body string
}

func (TextPart) MimeType() string { return "text/plain" }

// ImagePart is a retrieved photo attachment.
type ImagePart struct {
	Mime string // image/jpeg, image/png, or image/gif
	Data []byte
}

func (p ImagePart) MimeType() string { return p.Mime }

// ParsedEvent is one message-level record reconstructed from the export,
// independent of the output format.
type ParsedEvent struct {
	ConversationID string
	SenderID       string
	UserID         string // archive owner, duplicated for convenience
	EventID        string
	Timestamp      time.Time
	Parts          []ContentPart
}
