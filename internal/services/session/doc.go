// Package session owns the client's authentication state.
//
// It verifies credentials against the account directory, persists the
// active session in the secure vault, and fans auth-state transitions out
// to subscribers in registration order.
package session
