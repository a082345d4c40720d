//go:build darwin

package input

import (
	"fmt"
	"log/slog"
	"os/exec"
)

// macOS implementation of input injection through System Events automation.
// osascript needs the Accessibility permission for the hosting terminal/app.

// platformInjector represents a macOS input injector
type platformInjector struct {
	logger *slog.Logger
}

// NewInjector creates a new input injector for macOS
func NewInjector() Injector {
	return &platformInjector{logger: slog.Default().With("component", "injector")}
}

// Platform reports PlatformMacOS
func (i *platformInjector) Platform() Platform {
	return PlatformMacOS
}

// InjectKeyCombo presses key with mods held via System Events
func (i *platformInjector) InjectKeyCombo(mods Modifier, key Key) error {
	script, err := keyComboScript(mods, key)
	if err != nil {
		return err
	}
	return i.InvokePlatformScript(script)
}

// InjectScroll emulates a scroll notch with an arrow key
func (i *platformInjector) InjectScroll(axis Axis, direction int) error {
	script, err := scrollScript(axis, direction)
	if err != nil {
		return err
	}
	return i.InvokePlatformScript(script)
}

// InvokePlatformScript starts osascript and returns once the process is running.
// The exit status is reaped in the background and only logged.
func (i *platformInjector) InvokePlatformScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: start osascript: %v", ErrInjectionFailed, err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			i.logger.Warn("osascript_failed",
				"script", script,
				"error", err,
			)
		}
	}()
	return nil
}
