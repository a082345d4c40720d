// Package osutils wraps operating system administration needed by the
// service: inbound firewall rules and the elevation check.
package osutils

import (
	"fmt"
	"strconv"
	"strings"
)

// FirewallRule is one inbound allow rule.
type FirewallRule struct {
	Name     string
	Protocol string // TCP or UDP
	Port     int
}

// ServiceRules returns the rules the gesture service needs: the gesture
// stream and the discovery port.
func ServiceRules(gesturePort, discoveryPort int) []FirewallRule {
	return []FirewallRule{
		{Name: "Trackpad Gestures", Protocol: "TCP", Port: gesturePort},
		{Name: "Trackpad Discovery", Protocol: "UDP", Port: discoveryPort},
	}
}

func (r FirewallRule) String() string {
	return fmt.Sprintf("%s (%s %d)", r.Name, r.Protocol, r.Port)
}

// powerShell replaces any rule with the same display name by a fresh one
// without a -Program restriction, so the rule survives the binary moving.
func (r FirewallRule) powerShell() string {
	return fmt.Sprintf(
		"Remove-NetFirewallRule -DisplayName '%s' -ErrorAction SilentlyContinue; New-NetFirewallRule -DisplayName '%s' -Direction Inbound -LocalPort %d -Protocol %s -Action Allow -Profile Any",
		r.Name, r.Name, r.Port, r.Protocol,
	)
}

// matches reports whether netsh output describes r as an allow rule.
func (r FirewallRule) matches(netshOutput string) bool {
	return strings.Contains(netshOutput, r.Name) &&
		strings.Contains(netshOutput, strconv.Itoa(r.Port)) &&
		strings.Contains(netshOutput, r.Protocol) &&
		strings.Contains(netshOutput, "Allow")
}

func joinScripts(rules []FirewallRule) string {
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = r.powerShell()
	}
	return strings.Join(parts, "; ")
}
