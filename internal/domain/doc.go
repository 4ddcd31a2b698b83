// Package domain holds Caretalk's core data model: identities, sessions,
// conversations, messages and attachments, together with the storage and
// collaborator interfaces the services are wired against and the error
// taxonomy shared across the module.
package domain
