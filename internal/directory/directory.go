package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	passwordvalidator "github.com/wagslane/go-password-validator"

	"caretalk/internal/domain"
)

// passwordMinEntropyBits is the entropy floor applied to new passwords.
const passwordMinEntropyBits = 30

var validate = validator.New()

type account struct {
	identity     domain.Identity
	passwordHash string
}

// Directory is an in-memory account registry keyed by lowercased email.
type Directory struct {
	mu      sync.Mutex
	byEmail map[string]*account
	latency time.Duration
}

// Option customises a Directory.
type Option func(*Directory)

// WithLatency makes every call pause for d, mimicking the round trip a
// real transport would add.
func WithLatency(d time.Duration) Option {
	return func(dir *Directory) { dir.latency = d }
}

// New returns an empty directory.
func New(opts ...Option) *Directory {
	d := &Directory{byEmail: map[string]*account{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Seed installs an identity with a known password, bypassing validation.
// Used for the built-in demo account and for tests.
func (d *Directory) Seed(id domain.Identity, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byEmail[strings.ToLower(id.Email)] = &account{identity: id, passwordHash: hash}
	return nil
}

// Authenticate verifies the email/password pair. Every failure is the
// same generic domain.ErrInvalidCredentials so callers cannot probe which
// emails exist. On success the returned identity carries a fresh
// last-login time.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (domain.Identity, error) {
	if err := d.pause(ctx); err != nil {
		return domain.Identity{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	acc, ok := d.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	match, err := comparePassword(password, acc.passwordHash)
	if err != nil || !match {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	acc.identity.LastLoginAt = &now
	return acc.identity, nil
}

// CreateAccount validates the registration, hashes the password and
// stores a new identity under a freshly generated id.
func (d *Directory) CreateAccount(ctx context.Context, reg domain.Registration) (domain.Identity, error) {
	if err := d.pause(ctx); err != nil {
		return domain.Identity{}, err
	}

	if err := validate.Struct(reg); err != nil {
		return domain.Identity{}, fmt.Errorf("invalid registration: %w", err)
	}
	if err := passwordvalidator.Validate(reg.Password, passwordMinEntropyBits); err != nil {
		return domain.Identity{}, fmt.Errorf("weak password: %w", err)
	}

	hash, err := hashPassword(reg.Password)
	if err != nil {
		return domain.Identity{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := strings.ToLower(reg.Email)
	if _, exists := d.byEmail[key]; exists {
		return domain.Identity{}, domain.ErrEmailTaken
	}

	id := domain.Identity{
		ID:          domain.UserID(uuid.NewString()),
		Email:       reg.Email,
		FirstName:   reg.FirstName,
		LastName:    reg.LastName,
		DateOfBirth: reg.DateOfBirth,
		Phone:       reg.Phone,
		CreatedAt:   time.Now().UTC(),
	}
	d.byEmail[key] = &account{identity: id, passwordHash: hash}
	return id, nil
}

// pause sleeps for the configured latency, honoring ctx cancellation.
func (d *Directory) pause(ctx context.Context) error {
	if d.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(d.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Compile-time assertion that Directory implements domain.AccountDirectory.
var _ domain.AccountDirectory = (*Directory)(nil)
