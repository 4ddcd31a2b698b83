package domain

// UserID identifies a registered user.
type UserID string

// String returns the string form of the user id.
func (id UserID) String() string { return string(id) }

// ConversationID identifies a conversation between a client and a therapist.
type ConversationID string

// String returns the string form of the conversation id.
func (id ConversationID) String() string { return string(id) }

// MessageID identifies a single message.
type MessageID string

// String returns the string form of the message id.
func (id MessageID) String() string { return string(id) }

// AttachmentID identifies a file attached to a message.
type AttachmentID string

// String returns the string form of the attachment id.
func (id AttachmentID) String() string { return string(id) }
