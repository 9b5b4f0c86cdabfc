package api

import "errors"

var (
	// ErrUnavailable means the server could not be reached or did not
	// answer in time.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized means the stored credential is missing, expired or
	// rejected. The UI reacts by sending the user back to the login flow.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the credential is valid but the account lacks
	// access to the requested document.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)
