package session_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"caretalk/internal/directory"
	"caretalk/internal/domain"
	"caretalk/internal/services/session"
	"caretalk/internal/store"
	"caretalk/internal/token"
)

type stubNotifier struct {
	sent []string
	err  error
}

func (n *stubNotifier) SendPasswordReset(_ context.Context, email string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, email)
	return nil
}

// failingVault rejects every write.
type failingVault struct {
	domain.Vault
}

func (failingVault) Set(context.Context, string, string) error {
	return domain.ErrStorageUnavailable
}

func newService(t *testing.T) (*session.Service, domain.Vault, *stubNotifier) {
	t.Helper()
	vault := store.NewFileVault(t.TempDir(), slog.Default())
	dir := directory.New()
	require.NoError(t, dir.Seed(domain.Identity{
		ID:        "u1",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Nguyen",
	}, "s3cretpass"))
	notifier := &stubNotifier{}
	svc := session.New(vault, dir, token.NewIssuer([]byte("test-secret"), time.Hour), notifier, slog.Default())
	return svc, vault, notifier
}

func TestLoginPersistsSession(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, vault, _ := newService(t)

	sess, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	req.NoError(err)
	req.Equal("Alice", sess.User.FirstName)
	req.NotEmpty(sess.Token)

	current, ok := svc.Current()
	req.True(ok)
	req.Equal(sess.Token, current.Token)

	// Both keys are on disk.
	tok, ok, err := vault.Get(ctx, store.KeyAuthToken)
	req.NoError(err)
	req.True(ok)
	req.Equal(sess.Token, tok)

	id, ok := svc.StoredUser(ctx)
	req.True(ok)
	req.Equal(domain.UserID("u1"), id.ID)
}

func TestLoginInvalidCredentialsLeavesStorageUntouched(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Login(ctx, "alice@example.com", "wrong")
	req.ErrorIs(err, domain.ErrInvalidCredentials)

	_, ok := svc.Current()
	req.False(ok)
	_, ok = svc.StoredUser(ctx)
	req.False(ok)
	_, ok = svc.StoredToken(ctx)
	req.False(ok)
}

func TestLoginVaultFailurePropagates(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	dir := directory.New()
	req.NoError(dir.Seed(domain.Identity{ID: "u1", Email: "alice@example.com"}, "s3cretpass"))
	svc := session.New(failingVault{}, dir, token.NewIssuer([]byte("s"), time.Hour), &stubNotifier{}, slog.Default())

	_, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	req.ErrorIs(err, domain.ErrStorageUnavailable)

	_, ok := svc.Current()
	req.False(ok)
}

func TestLogoutClearsEverything(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	req.NoError(err)

	req.NoError(svc.Logout(ctx))

	_, ok := svc.Current()
	req.False(ok)
	_, ok = svc.StoredUser(ctx)
	req.False(ok)
	_, ok = svc.StoredToken(ctx)
	req.False(ok)
}

func TestRegisterCreatesSession(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _, _ := newService(t)

	sess, err := svc.Register(ctx, domain.Registration{
		Email:       "bob@example.com",
		Password:    "tr0ub4dor-horse-staple",
		FirstName:   "Bob",
		LastName:    "Smith",
		DateOfBirth: "1988-07-21",
		Phone:       "+61400000001",
	})
	req.NoError(err)
	req.Equal("Bob", sess.User.FirstName)

	_, ok := svc.Current()
	req.True(ok)
}

func TestRegisterFailureWrapsError(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Register(context.Background(), domain.Registration{Email: "not-an-email"})
	require.ErrorIs(t, err, domain.ErrRegistrationFailed)
}

func TestRestore(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	dirPath := t.TempDir()
	vault := store.NewFileVault(dirPath, slog.Default())
	accounts := directory.New()
	req.NoError(accounts.Seed(domain.Identity{ID: "u1", Email: "alice@example.com", FirstName: "Alice"}, "s3cretpass"))
	issuer := token.NewIssuer([]byte("test-secret"), time.Hour)

	first := session.New(vault, accounts, issuer, &stubNotifier{}, slog.Default())
	_, err := first.Login(ctx, "alice@example.com", "s3cretpass")
	req.NoError(err)

	// A fresh service over the same vault picks the session back up.
	second := session.New(store.NewFileVault(dirPath, slog.Default()), accounts, issuer, &stubNotifier{}, slog.Default())
	id, ok := second.Restore(ctx)
	req.True(ok)
	req.Equal("Alice", id.FirstName)

	_, ok = second.Current()
	req.True(ok)
}

func TestRestoreWithEmptyVault(t *testing.T) {
	svc, _, _ := newService(t)
	_, ok := svc.Restore(context.Background())
	require.False(t, ok)
}

func TestStoredUserIgnoresUnknownSchema(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, vault, _ := newService(t)

	req.NoError(vault.Set(ctx, store.KeyUserData, `{"v":99,"user":{"id":"u1"}}`))

	_, ok := svc.StoredUser(ctx)
	req.False(ok)
}

func TestListenersFireInOrder(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _, _ := newService(t)

	var order []string
	svc.AddAuthListener(func(id *domain.Identity) {
		order = append(order, "first")
		req.NotNil(id)
	})
	svc.AddAuthListener(func(*domain.Identity) {
		order = append(order, "second")
	})

	_, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	req.NoError(err)
	req.Equal([]string{"first", "second"}, order)
}

func TestListenerSeesNilOnLogout(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _, _ := newService(t)

	var got []*domain.Identity
	svc.AddAuthListener(func(id *domain.Identity) { got = append(got, id) })

	_, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	req.NoError(err)
	req.NoError(svc.Logout(ctx))

	req.Len(got, 2)
	req.NotNil(got[0])
	req.Nil(got[1])
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _, _ := newService(t)

	calls := 0
	unsubscribe := svc.AddAuthListener(func(*domain.Identity) { calls++ })
	kept := 0
	svc.AddAuthListener(func(*domain.Identity) { kept++ })

	unsubscribe()
	unsubscribe()

	_, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	req.NoError(err)
	req.Zero(calls)
	req.Equal(1, kept)
}

func TestListenerMayUnsubscribeDuringDelivery(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _, _ := newService(t)

	calls := 0
	var unsubscribe func()
	unsubscribe = svc.AddAuthListener(func(*domain.Identity) {
		calls++
		unsubscribe()
	})

	_, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	req.NoError(err)
	req.NoError(svc.Logout(ctx))
	req.Equal(1, calls)
}

func TestForgotPassword(t *testing.T) {
	req := require.New(t)
	svc, _, notifier := newService(t)

	req.NoError(svc.ForgotPassword(context.Background(), "alice@example.com"))
	req.Equal([]string{"alice@example.com"}, notifier.sent)
}

func TestForgotPasswordFailure(t *testing.T) {
	svc, _, notifier := newService(t)
	notifier.err = errors.New("smtp down")

	err := svc.ForgotPassword(context.Background(), "alice@example.com")
	require.ErrorIs(t, err, domain.ErrResetRequestFailed)
}

func TestSecondLoginReplacesSession(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	req.NoError(err)

	second, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	req.NoError(err)

	current, ok := svc.Current()
	req.True(ok)
	req.Equal(second.Token, current.Token)

	id, ok := svc.StoredUser(ctx)
	req.True(ok)
	req.Equal(second.User.LastLoginAt, id.LastLoginAt)
}
