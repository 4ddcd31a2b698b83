// Package crypto implements Caretalk's message protection engine.
//
// Contents
//
//   - Marker-tagged protect/reveal for message content and for file
//     references (Engine)
//   - Random key generation for provisioning new per-entity keys
//     (GenerateKey)
//   - Per-conversation key derivation from a master key
//     (DeriveConversationKey)
//
// # Notes
//
// Protected payloads are chacha20poly1305 sealed and carry a fixed,
// versioned marker prefix so they are self-identifying. Reveal passes
// unmarked input through unchanged; historical plaintext stays readable.
package crypto
