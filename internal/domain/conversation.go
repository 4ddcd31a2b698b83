package domain

import "time"

// Conversation is the thread between a client and a therapist. LastMessage
// is a copy of the most recently appended message for list rendering; the
// message sequence itself owns the messages.
type Conversation struct {
	ID          ConversationID `json:"id"`
	ClientID    UserID         `json:"clientId"`
	TherapistID UserID         `json:"therapistId"`
	LastMessage *Message       `json:"lastMessage,omitempty"`
	UnreadCount int            `json:"unreadCount"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Absorb records a freshly appended message: it becomes the last message,
// bumps the update timestamp, and counts toward unread when it is an
// incoming message that has not been read yet.
func (c *Conversation) Absorb(m Message) {
	msg := m
	c.LastMessage = &msg
	c.UpdatedAt = m.SentAt
	if m.SenderRole == SenderTherapist && m.Status != StatusRead {
		c.UnreadCount++
	}
}
