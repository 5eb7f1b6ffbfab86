package device

import "errors"

// Sentinel errors for device operations.
var (
	// ErrDeviceNotFound indicates the requested TV does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists indicates a TV with the same ID already exists.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrInvalidDevice indicates the TV record failed validation.
	ErrInvalidDevice = errors.New("device: invalid")
)
