package smartcast

import "errors"

// Sentinel errors for SmartCast API operations.
var (
	// ErrRequestFailed indicates the HTTP request could not be completed.
	ErrRequestFailed = errors.New("smartcast: request failed")

	// ErrAPIFailure indicates the TV returned a non-success status.
	ErrAPIFailure = errors.New("smartcast: api failure")

	// ErrNotAuthorised indicates the TV rejected the auth token.
	ErrNotAuthorised = errors.New("smartcast: not authorised")

	// ErrUnknownApp indicates the requested app is not in the catalogue.
	ErrUnknownApp = errors.New("smartcast: unknown app")

	// ErrUnknownKey indicates the key name has no SmartCast code.
	ErrUnknownKey = errors.New("smartcast: unknown key")

	// ErrChallengeIncorrect indicates the pairing PIN was wrong.
	ErrChallengeIncorrect = errors.New("smartcast: incorrect pairing pin")

	// ErrPairingDenied indicates the TV denied the pairing request.
	ErrPairingDenied = errors.New("smartcast: pairing denied")
)
