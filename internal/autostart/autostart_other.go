//go:build !darwin && !windows

package autostart

// Enable is not supported here.
func Enable(args ...string) error {
	return ErrUnsupported
}

// Disable is not supported here.
func Disable() error {
	return ErrUnsupported
}

// IsEnabled is always false here.
func IsEnabled() bool {
	return false
}
