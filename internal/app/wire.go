package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"

	"caretalk/internal/crypto"
	"caretalk/internal/directory"
	"caretalk/internal/domain"
	"caretalk/internal/notify"
	"caretalk/internal/services/chat"
	"caretalk/internal/services/session"
	"caretalk/internal/store"
	"caretalk/internal/token"
)

const masterKeyFilename = "master.key"

// Wire bundles the constructed dependency graph for the CLI.
type Wire struct {
	Config   Config
	Log      *slog.Logger
	DB       *badger.DB
	Vault    domain.Vault
	Accounts *directory.Directory
	Sessions *session.Service
	Chat     *chat.Service
}

// NewWire constructs the dependency graph from cfg. The vault backend is
// selected here, once; call sites never branch on platform.
func NewWire(ctx context.Context, cfg Config, log *slog.Logger) (*Wire, error) {
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}

	db, err := badger.Open(badger.DefaultOptions(filepath.Join(cfg.Home, "db")).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	var vault domain.Vault
	switch cfg.VaultBackend {
	case "badger":
		vault = store.NewBadgerVault(db)
	case "file":
		vault = store.NewFileVault(cfg.Home, log)
	default:
		_ = db.Close()
		return nil, fmt.Errorf("unknown vault backend %q", cfg.VaultBackend)
	}

	master, err := loadMasterKey(cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	accounts := directory.New(directory.WithLatency(cfg.DirectoryLatency))
	if err := seedDemoAccount(accounts); err != nil {
		_ = db.Close()
		return nil, err
	}

	var notifier domain.Notifier
	if cfg.SMTPHost != "" {
		notifier = notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		notifier = notify.LogNotifier{Log: log}
	}

	issuer := token.NewIssuer([]byte(cfg.TokenSecret), cfg.TokenTTL)
	sessions := session.New(vault, accounts, issuer, notifier, log)
	sessions.Restore(ctx)

	chatSvc := chat.New(store.NewChatStore(db, log), master, log)

	return &Wire{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Vault:    vault,
		Accounts: accounts,
		Sessions: sessions,
		Chat:     chatSvc,
	}, nil
}

// Close releases the underlying database.
func (w *Wire) Close() error {
	return w.DB.Close()
}

// loadMasterKey resolves the content master key: explicit config wins,
// otherwise a persisted key under Home is reused or generated on first
// run.
func loadMasterKey(cfg Config) (crypto.Key, error) {
	if cfg.MasterKey != "" {
		return crypto.ParseKey(cfg.MasterKey)
	}

	path := filepath.Join(cfg.Home, masterKeyFilename)
	b, err := os.ReadFile(path)
	if err == nil {
		return crypto.ParseKey(string(b))
	}
	if !errors.Is(err, os.ErrNotExist) {
		return crypto.Key{}, err
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return crypto.Key{}, err
	}
	if err := os.WriteFile(path, []byte(key.Hex()), 0o600); err != nil {
		return crypto.Key{}, err
	}
	return key, nil
}

// seedDemoAccount installs the built-in demo identity so a fresh install
// can log in immediately.
func seedDemoAccount(d *directory.Directory) error {
	return d.Seed(domain.Identity{
		ID:          "1",
		Email:       "demo@therapy.com",
		FirstName:   "John",
		LastName:    "Doe",
		DateOfBirth: "1990-01-15",
		Phone:       "+1234567890",
		EmergencyContact: &domain.EmergencyContact{
			Name:         "Jane Doe",
			Phone:        "+1234567891",
			Relationship: "Spouse",
		},
		CreatedAt: time.Now().UTC(),
	}, "password123")
}
