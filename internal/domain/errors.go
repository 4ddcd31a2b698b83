package domain

import "errors"

var (
	// ErrInvalidCredentials is returned on any failed login. It is
	// deliberately generic: callers must not learn whether the email or
	// the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRegistrationFailed is returned when an account cannot be created
	// or the resulting session cannot be persisted.
	ErrRegistrationFailed = errors.New("registration failed")

	// ErrResetRequestFailed is returned when the password-reset request
	// could not be handed to the notification channel.
	ErrResetRequestFailed = errors.New("password reset request failed")

	// ErrStorageUnavailable is returned by portable vault backends when a
	// write cannot be completed.
	ErrStorageUnavailable = errors.New("secure storage unavailable")

	// ErrEncodingFailed is returned when content cannot be protected.
	ErrEncodingFailed = errors.New("content encoding failed")

	// ErrDecodingFailed is returned when marker-tagged content cannot be
	// decoded or authenticated.
	ErrDecodingFailed = errors.New("content decoding failed")

	// ErrInvalidStatusTransition rejects any backwards move in the
	// sent -> delivered -> read sequence.
	ErrInvalidStatusTransition = errors.New("invalid message status transition")

	// ErrEmailTaken signals a registration conflict inside the account
	// directory. The session manager wraps it in ErrRegistrationFailed.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidToken and ErrTokenExpired report session token problems.
	ErrInvalidToken = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token expired")

	// ErrUnknownConversation is returned when a conversation id does not
	// resolve to a stored conversation.
	ErrUnknownConversation = errors.New("unknown conversation")

	// ErrUnknownMessage is returned when a message id does not resolve to
	// a stored message within its conversation.
	ErrUnknownMessage = errors.New("unknown message")
)
