//go:build darwin

package autostart

import (
	"os"
	"path/filepath"
)

// Enable writes the LaunchAgent so the service starts at login.
func Enable(args ...string) error {
	path, err := executable()
	if err != nil {
		return err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	data, err := renderPlist(path, args)
	if err != nil {
		return err
	}

	target := plistPath(home)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	return os.WriteFile(target, data, 0644)
}

// Disable removes the LaunchAgent.
func Disable() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	if err := os.Remove(plistPath(home)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsEnabled checks if the LaunchAgent exists.
func IsEnabled() bool {
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	_, err = os.Stat(plistPath(home))
	return err == nil
}
