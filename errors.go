package fog

import "errors"

// Pass errors.
var (
	// ErrNoHALDevice is returned when a device provider does not expose
	// HAL device and queue handles.
	ErrNoHALDevice = errors.New("fog: provider does not expose a HAL device")

	// ErrDestroyed is returned when a destroyed pass or feature is used.
	ErrDestroyed = errors.New("fog: destroyed")
)
