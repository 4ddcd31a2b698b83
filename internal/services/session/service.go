package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"caretalk/internal/domain"
	"caretalk/internal/store"
)

// schemaVersion tags the persisted user_data payload so the format can be
// migrated safely. Unknown versions read as absent.
const schemaVersion = 1

type storedUser struct {
	V    int             `json:"v"`
	User domain.Identity `json:"user"`
}

// Service is the session manager. It is constructed once by the
// composition root and owns the active session in memory; there is no
// global accessor.
//
// Operations are serialized: overlapping login/register calls execute in
// arrival order and the later call's session wins. Subscriber fan-out
// happens after the state lock is released, so a subscriber may call back
// into the service; such re-entrant calls serialize like any other call.
type Service struct {
	vault    domain.Vault
	accounts domain.AccountDirectory
	tokens   domain.TokenIssuer
	notifier domain.Notifier
	log      *slog.Logger

	mu      sync.Mutex
	current *domain.Session

	lmu       sync.Mutex
	nextID    uint64
	listeners []listenerEntry
}

// Listener observes auth-state transitions. It receives the new identity,
// or nil after logout.
type Listener func(*domain.Identity)

type listenerEntry struct {
	id uint64
	fn Listener
}

// New constructs a session manager with the given collaborators.
func New(
	vault domain.Vault,
	accounts domain.AccountDirectory,
	tokens domain.TokenIssuer,
	notifier domain.Notifier,
	log *slog.Logger,
) *Service {
	return &Service{
		vault:    vault,
		accounts: accounts,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
	}
}

// Restore loads the persisted session at process start and sets the
// initial in-memory state. It never fails: missing or malformed data
// means starting unauthenticated. No listener is notified; this is the
// initial state, not a transition.
func (s *Service) Restore(ctx context.Context) (domain.Identity, bool) {
	id, ok := s.StoredUser(ctx)
	if !ok {
		return domain.Identity{}, false
	}
	tok, ok := s.StoredToken(ctx)
	if !ok {
		return domain.Identity{}, false
	}
	s.mu.Lock()
	s.current = &domain.Session{User: id, Token: tok}
	s.mu.Unlock()
	return id, true
}

// Current returns the active session, if any.
func (s *Service) Current() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.Session{}, false
	}
	return *s.current, true
}

// Login verifies the credential pair, persists the resulting session and
// notifies subscribers. It may be called while a session is active; the
// new session replaces the old one. Credential failures are always
// domain.ErrInvalidCredentials; persistence failures propagate so the UI
// can offer a retry.
func (s *Service) Login(ctx context.Context, email, password string) (domain.Session, error) {
	s.mu.Lock()
	id, err := s.accounts.Authenticate(ctx, email, password)
	if err != nil {
		s.mu.Unlock()
		return domain.Session{}, err
	}
	sess, err := s.activate(ctx, id)
	s.mu.Unlock()
	if err != nil {
		return domain.Session{}, err
	}

	s.notify(&sess.User)
	return sess, nil
}

// Register creates a new account, persists the resulting session and
// notifies subscribers. Any failure surfaces as
// domain.ErrRegistrationFailed.
func (s *Service) Register(ctx context.Context, reg domain.Registration) (domain.Session, error) {
	s.mu.Lock()
	id, err := s.accounts.CreateAccount(ctx, reg)
	if err != nil {
		s.mu.Unlock()
		return domain.Session{}, fmt.Errorf("%w: %v", domain.ErrRegistrationFailed, err)
	}
	sess, err := s.activate(ctx, id)
	s.mu.Unlock()
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", domain.ErrRegistrationFailed, err)
	}

	s.notify(&sess.User)
	return sess, nil
}

// activate issues a token, persists both vault keys and swaps the
// in-memory session. Caller holds s.mu.
func (s *Service) activate(ctx context.Context, id domain.Identity) (domain.Session, error) {
	tok, err := s.tokens.Issue(id.ID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("issue token: %w", err)
	}
	raw, err := json.Marshal(storedUser{V: schemaVersion, User: id})
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.vault.Set(ctx, store.KeyAuthToken, tok); err != nil {
		return domain.Session{}, err
	}
	if err := s.vault.Set(ctx, store.KeyUserData, string(raw)); err != nil {
		return domain.Session{}, err
	}

	sess := domain.Session{User: id, Token: tok}
	s.current = &sess
	s.log.Info("session established", "user", id.ID)
	return sess, nil
}

// Logout deletes both persisted keys, clears the in-memory session and
// notifies subscribers with no identity. Deletion is best-effort: a
// failing step is logged and the remaining steps still run, so storage is
// never left with a partial session.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	var errs []error
	for _, key := range []string{store.KeyAuthToken, store.KeyUserData} {
		if err := s.vault.Delete(ctx, key); err != nil {
			s.log.Warn("logout: delete failed", "key", key, "error", err)
			errs = append(errs, err)
		}
	}
	s.current = nil
	s.mu.Unlock()

	s.notify(nil)
	return errors.Join(errs...)
}

// ForgotPassword hands a reset request to the notification channel. It
// does not touch session state and does not reveal whether the address
// has an account.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if err := s.notifier.SendPasswordReset(ctx, email); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrResetRequestFailed, err)
	}
	return nil
}

// StoredUser reads and deserializes the persisted identity. Missing,
// malformed or unrecognized data reads as absent, never as an error.
func (s *Service) StoredUser(ctx context.Context) (domain.Identity, bool) {
	raw, ok, err := s.vault.Get(ctx, store.KeyUserData)
	if err != nil || !ok {
		return domain.Identity{}, false
	}
	var su storedUser
	if err := json.Unmarshal([]byte(raw), &su); err != nil || su.V != schemaVersion {
		s.log.Warn("stored user unreadable, treating as absent", "error", err)
		return domain.Identity{}, false
	}
	return su.User, true
}

// StoredToken returns the persisted opaque token, if any.
func (s *Service) StoredToken(ctx context.Context) (string, bool) {
	tok, ok, err := s.vault.Get(ctx, store.KeyAuthToken)
	if err != nil || !ok || tok == "" {
		return "", false
	}
	return tok, true
}

// AddAuthListener subscribes fn to auth-state transitions. Subscribers
// are invoked synchronously in registration order. The returned handle
// removes exactly this subscription and is safe to call more than once.
func (s *Service) AddAuthListener(fn Listener) (unsubscribe func()) {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		for i, e := range s.listeners {
			if e.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// notify delivers the transition to a snapshot of the registry, so a
// listener may subscribe or unsubscribe mid-delivery without skewing the
// iteration.
func (s *Service) notify(id *domain.Identity) {
	s.lmu.Lock()
	snapshot := make([]listenerEntry, len(s.listeners))
	copy(snapshot, s.listeners)
	s.lmu.Unlock()

	for _, e := range snapshot {
		e.fn(id)
	}
}
