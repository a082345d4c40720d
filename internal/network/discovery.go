// Package network provides LAN discovery: the announcement beacon run by the
// server and the watcher used by clients to find it.
package network

import "net"

// LoopbackIPv4 is announced when no usable interface exists. Clients on
// other hosts cannot reach it, so discovery is effectively off in that state.
const LoopbackIPv4 = "127.0.0.1"

// LocalIPv4 returns the first non-loopback IPv4 address of an up
// interface, falling back to LoopbackIPv4.
func LocalIPv4() string {
	return firstIPv4(LocalIPv4s)
}

func firstIPv4(list func() ([]string, error)) string {
	ips, err := list()
	if err != nil || len(ips) == 0 {
		return LoopbackIPv4
	}
	return ips[0]
}

// LocalIPv4s returns all available local IPv4 addresses
func LocalIPv4s() ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var ips []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue // interface down
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue // loopback interface
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		ips = append(ips, ipv4s(addrs)...)
	}
	return ips, nil
}

func ipv4s(addrs []net.Addr) []string {
	var out []string
	for _, addr := range addrs {
		var ip net.IP
		switch v := addr.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip == nil || ip.IsLoopback() {
			continue
		}
		ip = ip.To4()
		if ip == nil {
			continue // not an ipv4 address
		}
		out = append(out, ip.String())
	}
	return out
}
