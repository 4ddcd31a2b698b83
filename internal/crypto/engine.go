package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/chacha20poly1305"

	"caretalk/internal/domain"
)

const (
	// ContentMarker prefixes protected message content.
	ContentMarker = "sealed:v1:"
	// FileRefMarker prefixes protected file references.
	FileRefMarker = "sealedref:v1:"
)

// Engine seals and opens message content under a single symmetric key.
// Use DeriveConversationKey to give every conversation its own engine.
type Engine struct {
	aead cipher.AEAD
}

// NewEngine returns an engine sealing with the given key.
func NewEngine(key Key) (*Engine, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	return &Engine{aead: aead}, nil
}

// Protect seals plaintext and returns a marker-tagged payload suitable
// for storage or transit. Input must be well-formed UTF-8.
func (e *Engine) Protect(plaintext string) (string, error) {
	return e.seal(ContentMarker, plaintext)
}

// Reveal is the inverse of Protect. Input without the marker is returned
// unchanged: historical plaintext predating protection stays readable.
func (e *Engine) Reveal(protected string) (string, error) {
	return e.open(ContentMarker, protected)
}

// ProtectFileRef seals an opaque file locator. Only the reference string
// is transformed; file bytes are never touched.
func (e *Engine) ProtectFileRef(uri string) (string, error) {
	return e.seal(FileRefMarker, uri)
}

// RevealFileRef is the inverse of ProtectFileRef, with the same
// pass-through rule for unmarked input.
func (e *Engine) RevealFileRef(protectedURI string) (string, error) {
	return e.open(FileRefMarker, protectedURI)
}

// IsProtected reports whether s carries either protection marker.
func IsProtected(s string) bool {
	return strings.HasPrefix(s, ContentMarker) || strings.HasPrefix(s, FileRefMarker)
}

// seal encrypts plaintext with a fresh nonce. The marker doubles as
// associated data so content and file-reference payloads cannot be fed
// into each other's reverse transform.
func (e *Engine) seal(marker, plaintext string) (string, error) {
	if !utf8.ValidString(plaintext) {
		return "", fmt.Errorf("%w: input is not valid UTF-8", domain.ErrEncodingFailed)
	}
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEncodingFailed, err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), []byte(marker))
	return marker + base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (e *Engine) open(marker, payload string) (string, error) {
	if !strings.HasPrefix(payload, marker) {
		return payload, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(payload, marker))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecodingFailed, err)
	}
	if len(raw) < e.aead.NonceSize() {
		return "", fmt.Errorf("%w: payload too short", domain.ErrDecodingFailed)
	}
	nonce, ct := raw[:e.aead.NonceSize()], raw[e.aead.NonceSize():]
	plain, err := e.aead.Open(nil, nonce, ct, []byte(marker))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecodingFailed, err)
	}
	return string(plain), nil
}
