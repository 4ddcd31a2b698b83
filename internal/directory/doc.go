// Package directory simulates the server-side account authority.
//
// It is the collaborator a real transport would replace: an in-memory
// registry of accounts with argon2id password hashes, registration
// validation and an optional fixed latency standing in for the network
// round trip. The session manager only sees the domain.AccountDirectory
// contract.
package directory
