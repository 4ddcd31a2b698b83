package domain

import "context"

// Vault is the secure key-value store for small secrets. Keys are short
// ASCII identifiers, values UTF-8 strings. Backend failure semantics
// differ: portable backends fail open on reads and surface
// ErrStorageUnavailable on writes, durable backends propagate errors
// unchanged.
type Vault interface {
	// Get returns the value for key, or ok=false when absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}

// ChatStore persists conversations and their message sequences.
// MarkOpened must apply the unread reset and the read promotion in a
// single transaction.
type ChatStore interface {
	SaveConversation(ctx context.Context, c Conversation) error
	Conversation(ctx context.Context, id ConversationID) (Conversation, bool, error)
	Conversations(ctx context.Context) ([]Conversation, error)
	// AppendMessage stores m and folds it into its conversation
	// (last message, update time, unread count) atomically.
	AppendMessage(ctx context.Context, m Message) (Conversation, error)
	Messages(ctx context.Context, id ConversationID) ([]Message, error)
	// UpdateMessage applies fn to the stored message and persists the
	// result; fn returning an error aborts the update.
	UpdateMessage(ctx context.Context, id ConversationID, msgID MessageID, fn func(*Message) error) error
	// MarkOpened zeroes the unread count and promotes every non-read
	// incoming message to read, atomically.
	MarkOpened(ctx context.Context, id ConversationID) (Conversation, error)
}

// AccountDirectory is the credential authority the session manager talks
// to. In this client it is simulated locally; a real transport implements
// the same contract.
type AccountDirectory interface {
	// Authenticate verifies the pair and returns the matching identity
	// with its last-login time stamped. Failures are always
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (Identity, error)
	// CreateAccount validates the registration and creates a new
	// identity with a fresh unique id.
	CreateAccount(ctx context.Context, reg Registration) (Identity, error)
}

// Notifier is the outbound channel for password-reset requests.
type Notifier interface {
	SendPasswordReset(ctx context.Context, email string) error
}

// TokenIssuer mints opaque session tokens.
type TokenIssuer interface {
	Issue(userID UserID) (string, error)
}
