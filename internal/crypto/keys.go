package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the byte length of every Caretalk content key.
const KeySize = chacha20poly1305.KeySize

// Key is a symmetric content-protection key.
type Key [KeySize]byte

// Slice returns the key as a []byte.
func (k Key) Slice() []byte { return k[:] }

// GenerateKey returns a fresh random key for provisioning new
// per-entity keys.
func GenerateKey() (Key, error) {
	var k Key
	if _, err := rand.Read(k[:]); err != nil {
		return Key{}, err
	}
	return k, nil
}

// ParseKey decodes a hex-encoded key.
func ParseKey(s string) (Key, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("parse key: %w", err)
	}
	if len(b) != KeySize {
		return Key{}, fmt.Errorf("parse key: got %d bytes, want %d", len(b), KeySize)
	}
	var k Key
	copy(k[:], b)
	return k, nil
}

// Hex returns the hex encoding of the key.
func (k Key) Hex() string { return hex.EncodeToString(k[:]) }

// DeriveConversationKey derives the conversation's content key from the
// master key via HKDF-SHA256. The same (master, conversation) pair always
// yields the same key, so both sides of a conversation agree without an
// exchange.
func DeriveConversationKey(master Key, conversationID string) (Key, error) {
	r := hkdf.New(sha256.New, master[:], nil, []byte("caretalk/conversation/"+conversationID))
	var k Key
	if _, err := io.ReadFull(r, k[:]); err != nil {
		return Key{}, err
	}
	return k, nil
}
