package session

import "errors"

var (
	// ErrInvalidCredentials is returned when the server rejects the
	// username/password pair or the account is inactive.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMalformedResponse is returned when a 2xx login or profile
	// response cannot be turned into a session.
	ErrMalformedResponse = errors.New("malformed authentication response")

	// ErrSuperseded is returned when a newer login, logout or clear
	// started while the exchange was in flight. Its result is dropped.
	ErrSuperseded = errors.New("superseded by a newer session change")
)
