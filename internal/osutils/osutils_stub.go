//go:build !windows

package osutils

import "log/slog"

// IsAdmin is a stub for non-Windows platforms
func IsAdmin() bool {
	return false
}

// EnsureFirewallRules is a stub for non-Windows platforms
func EnsureFirewallRules(rules []FirewallRule, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("firewall_unmanaged", "reason", "automatic rule management is only supported on Windows", "rules", len(rules))
	return nil
}
