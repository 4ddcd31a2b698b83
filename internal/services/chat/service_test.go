package chat_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"caretalk/internal/crypto"
	"caretalk/internal/domain"
	"caretalk/internal/services/chat"
	"caretalk/internal/store"
)

func newService(t *testing.T) *chat.Service {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	master, err := crypto.GenerateKey()
	require.NoError(t, err)
	return chat.New(store.NewChatStore(db, slog.Default()), master, slog.Default())
}

func startConversation(t *testing.T, svc *chat.Service) domain.Conversation {
	t.Helper()
	c, err := svc.StartConversation(context.Background(), "client-1", "therapist-1")
	require.NoError(t, err)
	return c
}

func appendFrom(t *testing.T, svc *chat.Service, c domain.Conversation, role domain.SenderRole, content string) domain.Message {
	t.Helper()
	sender := c.ClientID
	if role == domain.SenderTherapist {
		sender = c.TherapistID
	}
	m, _, err := svc.Append(context.Background(), chat.Draft{
		ConversationID: c.ID,
		SenderID:       sender,
		SenderRole:     role,
		Kind:           domain.KindText,
		Content:        content,
	})
	require.NoError(t, err)
	return m
}

func TestAppendProtectsContentAtRest(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := newService(t)
	c := startConversation(t, svc)

	const secret = "I have been feeling anxious this week"
	appendFrom(t, svc, c, domain.SenderClient, secret)

	msgs, err := svc.Messages(ctx, c.ID)
	req.NoError(err)
	req.Len(msgs, 1)

	stored := msgs[0]
	req.True(strings.HasPrefix(stored.Protected, crypto.ContentMarker))
	req.NotContains(stored.Protected, secret)
	req.Equal(domain.StatusSent, stored.Status)

	plain, err := svc.Plaintext(stored)
	req.NoError(err)
	req.Equal(secret, plain)
}

func TestAppendProtectsAttachmentURL(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := newService(t)
	c := startConversation(t, svc)

	const url = "https://files.example.com/report.pdf"
	m, _, err := svc.Append(ctx, chat.Draft{
		ConversationID: c.ID,
		SenderID:       c.TherapistID,
		SenderRole:     domain.SenderTherapist,
		Kind:           domain.KindDocument,
		Content:        "session notes attached",
		Attachments: []chat.AttachmentDraft{{
			FileName: "report.pdf",
			FileSize: 2048,
			FileType: "application/pdf",
			URL:      url,
		}},
	})
	req.NoError(err)
	req.Len(m.Attachments, 1)

	att := m.Attachments[0]
	req.True(strings.HasPrefix(att.ProtectedURL, crypto.FileRefMarker))

	got, err := svc.AttachmentURL(m, att)
	req.NoError(err)
	req.Equal(url, got)
}

func TestUnreadLifecycle(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := newService(t)
	c := startConversation(t, svc)

	for _, text := range []string{"hello", "how are you", "see you Tuesday"} {
		appendFrom(t, svc, c, domain.SenderTherapist, text)
	}

	total, err := svc.TotalUnread(ctx)
	req.NoError(err)
	req.Equal(3, total)

	opened, err := svc.MarkOpened(ctx, c.ID)
	req.NoError(err)
	req.Zero(opened.UnreadCount)

	msgs, err := svc.Messages(ctx, c.ID)
	req.NoError(err)
	for _, m := range msgs {
		req.Equal(domain.StatusRead, m.Status)
	}

	total, err = svc.TotalUnread(ctx)
	req.NoError(err)
	req.Zero(total)
}

func TestOwnMessagesNeverCountAsUnread(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := newService(t)
	c := startConversation(t, svc)

	appendFrom(t, svc, c, domain.SenderClient, "hi")

	convs, err := svc.Conversations(ctx)
	req.NoError(err)
	req.Len(convs, 1)
	req.Zero(convs[0].UnreadCount)
}

func TestAdvanceIsMonotonic(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := newService(t)
	c := startConversation(t, svc)
	m := appendFrom(t, svc, c, domain.SenderClient, "hi")

	req.NoError(svc.Advance(ctx, c.ID, m.ID, domain.StatusDelivered))
	req.NoError(svc.Advance(ctx, c.ID, m.ID, domain.StatusRead))

	// Backward moves are rejected and change nothing.
	err := svc.Advance(ctx, c.ID, m.ID, domain.StatusDelivered)
	req.ErrorIs(err, domain.ErrInvalidStatusTransition)

	msgs, err := svc.Messages(ctx, c.ID)
	req.NoError(err)
	req.Equal(domain.StatusRead, msgs[0].Status)
}

func TestAdvanceToReadReleasesUnread(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := newService(t)
	c := startConversation(t, svc)
	m := appendFrom(t, svc, c, domain.SenderTherapist, "hi")

	req.NoError(svc.Advance(ctx, c.ID, m.ID, domain.StatusRead))

	convs, err := svc.Conversations(ctx)
	req.NoError(err)
	req.Zero(convs[0].UnreadCount)

	total, err := svc.TotalUnread(ctx)
	req.NoError(err)
	req.Zero(total)
}

func TestAdvanceMaySkipDelivered(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := newService(t)
	c := startConversation(t, svc)
	m := appendFrom(t, svc, c, domain.SenderClient, "hi")

	req.NoError(svc.Advance(ctx, c.ID, m.ID, domain.StatusRead))
}

func TestLastMessageTracksLatestAppend(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := newService(t)
	c := startConversation(t, svc)

	appendFrom(t, svc, c, domain.SenderClient, "first")
	last := appendFrom(t, svc, c, domain.SenderTherapist, "second")

	convs, err := svc.Conversations(ctx)
	req.NoError(err)
	req.NotNil(convs[0].LastMessage)
	req.Equal(last.ID, convs[0].LastMessage.ID)
}

func TestConversationsIsolateTheirKeys(t *testing.T) {
	req := require.New(t)
	svc := newService(t)
	a := startConversation(t, svc)
	b := startConversation(t, svc)

	m := appendFrom(t, svc, a, domain.SenderClient, "for a only")

	// Revealing under another conversation's key fails.
	moved := m
	moved.ConversationID = b.ID
	_, err := svc.Plaintext(moved)
	req.ErrorIs(err, domain.ErrDecodingFailed)
}

func TestPlaintextPassesLegacyContentThrough(t *testing.T) {
	req := require.New(t)
	svc := newService(t)
	c := startConversation(t, svc)

	plain, err := svc.Plaintext(domain.Message{
		ConversationID: c.ID,
		Protected:      "stored before sealing existed",
	})
	req.NoError(err)
	req.Equal("stored before sealing existed", plain)
}

func TestAppendToUnknownConversation(t *testing.T) {
	svc := newService(t)
	_, _, err := svc.Append(context.Background(), chat.Draft{
		ConversationID: "missing",
		SenderID:       "client-1",
		SenderRole:     domain.SenderClient,
		Kind:           domain.KindText,
		Content:        "hello?",
	})
	require.ErrorIs(t, err, domain.ErrUnknownConversation)
}
