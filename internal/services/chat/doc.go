// Package chat is the conversation and message engine.
//
// It protects content before anything is persisted, enforces the
// forward-only delivery-status lifecycle, maintains unread accounting and
// the last-message reference, and derives plaintext on demand for display.
package chat
