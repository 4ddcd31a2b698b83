package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"caretalk/internal/domain"
)

// vaultPrefix namespaces vault keys inside the shared Badger database.
const vaultPrefix = "vault:"

// BadgerVault is the durable native backend. Unlike FileVault it assumes
// storage works; every error propagates unchanged.
type BadgerVault struct {
	db *badger.DB
}

// NewBadgerVault returns a BadgerVault on top of an opened database.
func NewBadgerVault(db *badger.DB) *BadgerVault {
	return &BadgerVault{db: db}
}

// Get returns the stored value for key, or ok=false when absent.
func (v *BadgerVault) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := v.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(vaultPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(b []byte) error {
			value = string(b)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key.
func (v *BadgerVault) Set(ctx context.Context, key, value string) error {
	return v.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(vaultPrefix+key), []byte(value))
	})
}

// Delete removes key; deleting an absent key succeeds.
func (v *BadgerVault) Delete(ctx context.Context, key string) error {
	return v.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(vaultPrefix + key))
	})
}

// Compile-time assertion that BadgerVault implements domain.Vault.
var _ domain.Vault = (*BadgerVault)(nil)
