package input

import "errors"

var (
	// ErrUnsupportedPlatform is returned by injectors that cannot perform an action on this OS
	ErrUnsupportedPlatform = errors.New("input injection not supported on this platform")

	// ErrInjectionFailed is returned when the OS rejected an injected event
	ErrInjectionFailed = errors.New("input injection failed")

	// ErrInvalidDirection is returned for scroll directions other than +1 and -1
	ErrInvalidDirection = errors.New("scroll direction must be +1 or -1")
)
