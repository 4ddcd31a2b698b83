package domain

import (
	"fmt"
	"time"
)

// SenderRole distinguishes the two participants of a conversation.
type SenderRole string

const (
	SenderClient    SenderRole = "client"
	SenderTherapist SenderRole = "therapist"
)

// Kind is the content type of a message.
type Kind string

const (
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindDocument Kind = "document"
	KindAudio    Kind = "audio"
)

// Status is the delivery state of a message. The lifecycle is strictly
// forward: sent -> delivered -> read.
type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// rank orders statuses for the monotonicity check. Unknown statuses rank
// below sent so they can never be assigned through Advance.
func (s Status) rank() int {
	switch s {
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusRead:
		return 3
	}
	return 0
}

// Attachment is a file reference exclusively owned by its message. The
// plain URL never leaves the client; ProtectedURL is what gets persisted
// or transmitted.
type Attachment struct {
	ID           AttachmentID `json:"id"`
	FileName     string       `json:"fileName"`
	FileSize     int64        `json:"fileSize"`
	FileType     string       `json:"fileType"`
	URL          string       `json:"url"`
	ProtectedURL string       `json:"protectedUrl,omitempty"`
}

// Message is a single entry in a conversation. Content is stored only in
// its protected form; plaintext is derived on demand and never persisted.
type Message struct {
	ID             MessageID      `json:"id"`
	ConversationID ConversationID `json:"conversationId"`
	SenderID       UserID         `json:"senderId"`
	SenderRole     SenderRole     `json:"senderRole"`
	Protected      string         `json:"protected"`
	Kind           Kind           `json:"kind"`
	Status         Status         `json:"status"`
	SentAt         time.Time      `json:"sentAt"`
	Attachments    []Attachment   `json:"attachments,omitempty"`
}

// Advance moves the message to next. Forward moves (including skips such
// as sent -> read) succeed; anything else fails with
// ErrInvalidStatusTransition and leaves the status unchanged.
func (m *Message) Advance(next Status) error {
	if next.rank() == 0 {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, next)
	}
	if next.rank() < m.Status.rank() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, m.Status, next)
	}
	m.Status = next
	return nil
}
