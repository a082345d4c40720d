//go:build windows

package osutils

import (
	"fmt"
	"log/slog"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// IsAdmin checks if the current process has administrative privileges
func IsAdmin() bool {
	var token windows.Token
	h, _ := windows.GetCurrentProcess()
	err := windows.OpenProcessToken(h, windows.TOKEN_QUERY, &token)
	if err != nil {
		return false
	}
	defer token.Close()

	var sid *windows.SID
	err = windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	member, err := token.IsMember(sid)
	if err != nil {
		return false
	}
	return member
}

// EnsureFirewallRules creates the missing inbound rules. Without
// elevation a single UAC prompt covers all of them.
func EnsureFirewallRules(rules []FirewallRule, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "firewall")

	var missing []FirewallRule
	for _, r := range rules {
		out, err := exec.Command("netsh", "advfirewall", "firewall", "show", "rule", "name="+r.Name).CombinedOutput()
		if err == nil && r.matches(string(out)) {
			logger.Debug("firewall_rule_ok", "rule", r.String())
			continue
		}
		logger.Info("firewall_rule_missing", "rule", r.String())
		missing = append(missing, r)
	}
	if len(missing) == 0 {
		return nil
	}

	script := joinScripts(missing)

	if !IsAdmin() {
		logger.Info("firewall_elevation_requested", "rules", len(missing))

		verbPtr, _ := syscall.UTF16PtrFromString("runas")
		exePtr, _ := syscall.UTF16PtrFromString("powershell.exe")
		argPtr, _ := syscall.UTF16PtrFromString(fmt.Sprintf("-NoProfile -WindowStyle Hidden -Command \"%s\"", script))

		var showCmd int32 = 0 // SW_HIDE
		if err := windows.ShellExecute(0, verbPtr, exePtr, argPtr, nil, showCmd); err != nil {
			return fmt.Errorf("launch elevated powershell: %w", err)
		}
		return nil
	}

	cmd := exec.Command("powershell", "-NoProfile", "-Command", script)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("create firewall rules: %w (output: %s)", err, string(output))
	}
	logger.Info("firewall_rules_created", "rules", len(missing))
	return nil
}
