package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"caretalk/internal/domain"
)

// Key layout inside the shared Badger database:
//
//	conv:<conversationID>                      -> Conversation JSON
//	msg:<conversationID>:<sentAt ns>:<msgID>   -> Message JSON
//
// The zero-padded timestamp keeps prefix iteration in chronological order.
func convKey(id domain.ConversationID) []byte {
	return []byte("conv:" + id.String())
}

func msgKey(m domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%020d:%s", m.ConversationID, m.SentAt.UnixNano(), m.ID))
}

func msgPrefix(id domain.ConversationID) []byte {
	return []byte("msg:" + id.String() + ":")
}

// ChatStore persists conversations and messages in BadgerDB. Multi-step
// updates (append, mark-opened) run inside a single transaction so their
// effects land together or not at all.
type ChatStore struct {
	db  *badger.DB
	log *slog.Logger
}

// NewChatStore returns a ChatStore on top of an opened database.
func NewChatStore(db *badger.DB, log *slog.Logger) *ChatStore {
	return &ChatStore{db: db, log: log}
}

// SaveConversation stores or replaces the conversation record.
func (s *ChatStore) SaveConversation(ctx context.Context, c domain.Conversation) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, convKey(c.ID), c)
	})
}

// Conversation loads a single conversation by id.
func (s *ChatStore) Conversation(ctx context.Context, id domain.ConversationID) (domain.Conversation, bool, error) {
	var c domain.Conversation
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, convKey(id), &c)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Conversation{}, false, nil
	}
	if err != nil {
		return domain.Conversation{}, false, err
	}
	return c, true, nil
}

// Conversations lists all conversations, most recently updated first.
func (s *ChatStore) Conversations(ctx context.Context) ([]domain.Conversation, error) {
	var out []domain.Conversation
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte("conv:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var c domain.Conversation
			err := it.Item().Value(func(b []byte) error {
				return json.Unmarshal(b, &c)
			})
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// AppendMessage stores m and folds it into its conversation in one
// transaction, returning the updated conversation.
func (s *ChatStore) AppendMessage(ctx context.Context, m domain.Message) (domain.Conversation, error) {
	var c domain.Conversation
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, convKey(m.ConversationID), &c); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrUnknownConversation, m.ConversationID)
			}
			return err
		}
		if err := putJSON(txn, msgKey(m), m); err != nil {
			return err
		}
		c.Absorb(m)
		return putJSON(txn, convKey(c.ID), c)
	})
	if err != nil {
		return domain.Conversation{}, err
	}
	return c, nil
}

// Messages returns the conversation's messages in send order.
func (s *ChatStore) Messages(ctx context.Context, id domain.ConversationID) ([]domain.Message, error) {
	var out []domain.Message
	err := s.db.View(func(txn *badger.Txn) error {
		return forEachMessage(txn, id, func(_ []byte, m domain.Message) error {
			out = append(out, m)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMessage applies fn to the stored message and persists the result.
// The conversation record is reconciled in the same transaction: its
// last-message copy follows the update, and an incoming message crossing
// into read releases one unread.
func (s *ChatStore) UpdateMessage(ctx context.Context, id domain.ConversationID, msgID domain.MessageID, fn func(*domain.Message) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		found := false
		err := forEachMessage(txn, id, func(key []byte, m domain.Message) error {
			if m.ID != msgID {
				return nil
			}
			found = true
			before := m.Status
			if err := fn(&m); err != nil {
				return err
			}
			if err := putJSON(txn, key, m); err != nil {
				return err
			}
			return reconcileConversation(txn, id, m, before)
		})
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %s in %s", domain.ErrUnknownMessage, msgID, id)
		}
		return nil
	})
}

// MarkOpened resets the unread count and promotes every non-read incoming
// message to read. Both effects commit in the same transaction.
func (s *ChatStore) MarkOpened(ctx context.Context, id domain.ConversationID) (domain.Conversation, error) {
	var c domain.Conversation
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, convKey(id), &c); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrUnknownConversation, id)
			}
			return err
		}
		err := forEachMessage(txn, id, func(key []byte, m domain.Message) error {
			if m.SenderRole != domain.SenderTherapist || m.Status == domain.StatusRead {
				return nil
			}
			if err := m.Advance(domain.StatusRead); err != nil {
				return err
			}
			if err := putJSON(txn, key, m); err != nil {
				return err
			}
			if c.LastMessage != nil && c.LastMessage.ID == m.ID {
				msg := m
				c.LastMessage = &msg
			}
			return nil
		})
		if err != nil {
			return err
		}
		c.UnreadCount = 0
		return putJSON(txn, convKey(id), c)
	})
	if err != nil {
		return domain.Conversation{}, err
	}
	return c, nil
}

// reconcileConversation folds an updated message back into its
// conversation. The unread count only ever counts non-read incoming
// messages, so a therapist message moving from non-read to read releases
// one unread.
func reconcileConversation(txn *badger.Txn, id domain.ConversationID, m domain.Message, before domain.Status) error {
	var c domain.Conversation
	if err := getJSON(txn, convKey(id), &c); err != nil {
		return err
	}
	changed := false
	if c.LastMessage != nil && c.LastMessage.ID == m.ID {
		msg := m
		c.LastMessage = &msg
		changed = true
	}
	if m.SenderRole == domain.SenderTherapist &&
		before != domain.StatusRead && m.Status == domain.StatusRead &&
		c.UnreadCount > 0 {
		c.UnreadCount--
		changed = true
	}
	if !changed {
		return nil
	}
	return putJSON(txn, convKey(id), c)
}

func forEachMessage(txn *badger.Txn, id domain.ConversationID, fn func(key []byte, m domain.Message) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := msgPrefix(id)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		var m domain.Message
		err := item.Value(func(b []byte) error {
			return json.Unmarshal(b, &m)
		})
		if err != nil {
			return err
		}
		if err := fn(key, m); err != nil {
			return err
		}
	}
	return nil
}

func putJSON(txn *badger.Txn, key []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, b)
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(b []byte) error {
		return json.Unmarshal(b, v)
	})
}

// Compile-time assertion that ChatStore implements domain.ChatStore.
var _ domain.ChatStore = (*ChatStore)(nil)
