//go:build !darwin && !windows

package input

// Stub implementation for platforms without an injection backend.
// Every gesture maps to a no-op here, so these are only reached by direct calls.

// platformInjector represents a stub input injector
type platformInjector struct{}

// NewInjector creates a new stub injector
func NewInjector() Injector {
	return &platformInjector{}
}

// Platform reports PlatformOther
func (i *platformInjector) Platform() Platform {
	return PlatformOther
}

// InjectKeyCombo injects a key combination (stub)
func (i *platformInjector) InjectKeyCombo(mods Modifier, key Key) error {
	return ErrUnsupportedPlatform
}

// InjectScroll injects a wheel notch (stub)
func (i *platformInjector) InjectScroll(axis Axis, direction int) error {
	return ErrUnsupportedPlatform
}

// InvokePlatformScript runs an automation script (stub)
func (i *platformInjector) InvokePlatformScript(script string) error {
	return ErrUnsupportedPlatform
}
