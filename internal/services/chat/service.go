package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"caretalk/internal/crypto"
	"caretalk/internal/domain"
)

// Service coordinates the chat store and the crypto engine. Every
// conversation seals under its own key, derived from the master key.
type Service struct {
	store  domain.ChatStore
	master crypto.Key
	log    *slog.Logger

	mu      sync.Mutex
	engines map[domain.ConversationID]*crypto.Engine
}

// New constructs a chat service over the given store and master key.
func New(store domain.ChatStore, master crypto.Key, log *slog.Logger) *Service {
	return &Service{
		store:   store,
		master:  master,
		log:     log,
		engines: map[domain.ConversationID]*crypto.Engine{},
	}
}

// Draft is the input for appending a message.
type Draft struct {
	ConversationID domain.ConversationID
	SenderID       domain.UserID
	SenderRole     domain.SenderRole
	Kind           domain.Kind
	Content        string
	Attachments    []AttachmentDraft
}

// AttachmentDraft describes a file to attach to a message.
type AttachmentDraft struct {
	FileName string
	FileSize int64
	FileType string
	URL      string
}

// StartConversation creates an empty conversation between the two
// participants.
func (s *Service) StartConversation(ctx context.Context, clientID, therapistID domain.UserID) (domain.Conversation, error) {
	now := time.Now().UTC()
	c := domain.Conversation{
		ID:          domain.ConversationID(uuid.NewString()),
		ClientID:    clientID,
		TherapistID: therapistID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.SaveConversation(ctx, c); err != nil {
		return domain.Conversation{}, err
	}
	return c, nil
}

// Append protects the draft's content, stores the resulting message with
// status sent, and folds it into the conversation (last message, update
// time, unread count). Plaintext never reaches the store.
func (s *Service) Append(ctx context.Context, d Draft) (domain.Message, domain.Conversation, error) {
	eng, err := s.engine(d.ConversationID)
	if err != nil {
		return domain.Message{}, domain.Conversation{}, err
	}
	protected, err := eng.Protect(d.Content)
	if err != nil {
		return domain.Message{}, domain.Conversation{}, err
	}

	atts := make([]domain.Attachment, 0, len(d.Attachments))
	for _, a := range d.Attachments {
		protURL, err := eng.ProtectFileRef(a.URL)
		if err != nil {
			return domain.Message{}, domain.Conversation{}, err
		}
		atts = append(atts, domain.Attachment{
			ID:           domain.AttachmentID(uuid.NewString()),
			FileName:     a.FileName,
			FileSize:     a.FileSize,
			FileType:     a.FileType,
			URL:          a.URL,
			ProtectedURL: protURL,
		})
	}

	m := domain.Message{
		ID:             domain.MessageID(uuid.NewString()),
		ConversationID: d.ConversationID,
		SenderID:       d.SenderID,
		SenderRole:     d.SenderRole,
		Protected:      protected,
		Kind:           d.Kind,
		Status:         domain.StatusSent,
		SentAt:         time.Now().UTC(),
	}
	if len(atts) > 0 {
		m.Attachments = atts
	}

	c, err := s.store.AppendMessage(ctx, m)
	if err != nil {
		return domain.Message{}, domain.Conversation{}, err
	}
	s.log.Debug("message appended", "conversation", c.ID, "message", m.ID)
	return m, c, nil
}

// Advance moves a message's delivery status forward. Backward moves fail
// with domain.ErrInvalidStatusTransition and change nothing. An incoming
// message reaching read releases its unread in the same transaction.
func (s *Service) Advance(ctx context.Context, id domain.ConversationID, msgID domain.MessageID, next domain.Status) error {
	return s.store.UpdateMessage(ctx, id, msgID, func(m *domain.Message) error {
		return m.Advance(next)
	})
}

// MarkOpened records that the conversation was viewed: the unread count
// drops to zero and every non-read incoming message is promoted to read,
// atomically.
func (s *Service) MarkOpened(ctx context.Context, id domain.ConversationID) (domain.Conversation, error) {
	return s.store.MarkOpened(ctx, id)
}

// Conversations lists all conversations, most recently updated first.
func (s *Service) Conversations(ctx context.Context) ([]domain.Conversation, error) {
	return s.store.Conversations(ctx)
}

// Messages returns the conversation's messages in send order, content
// still protected.
func (s *Service) Messages(ctx context.Context, id domain.ConversationID) ([]domain.Message, error) {
	return s.store.Messages(ctx, id)
}

// Plaintext reveals a message's content for display.
func (s *Service) Plaintext(m domain.Message) (string, error) {
	eng, err := s.engine(m.ConversationID)
	if err != nil {
		return "", err
	}
	return eng.Reveal(m.Protected)
}

// AttachmentURL reveals an attachment's file reference for display.
func (s *Service) AttachmentURL(m domain.Message, a domain.Attachment) (string, error) {
	eng, err := s.engine(m.ConversationID)
	if err != nil {
		return "", err
	}
	return eng.RevealFileRef(a.ProtectedURL)
}

// TotalUnread sums unread counts across all conversations.
func (s *Service) TotalUnread(ctx context.Context) (int, error) {
	convs, err := s.store.Conversations(ctx)
	if err != nil {
		return 0, err
	}
	return lo.SumBy(convs, func(c domain.Conversation) int { return c.UnreadCount }), nil
}

// engine returns the conversation's cached engine, deriving its key on
// first use.
func (s *Service) engine(id domain.ConversationID) (*crypto.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if eng, ok := s.engines[id]; ok {
		return eng, nil
	}
	key, err := crypto.DeriveConversationKey(s.master, id.String())
	if err != nil {
		return nil, err
	}
	eng, err := crypto.NewEngine(key)
	if err != nil {
		return nil, err
	}
	s.engines[id] = eng
	return eng, nil
}
