// Package store provides persistence for Caretalk's core data.
//
// It contains the two secure key-value vault backends (FileVault for
// portable profiles, BadgerVault for durable native storage) plus the
// Badger-backed chat store holding conversations and message sequences.
// All implementations are concurrency-safe.
package store
