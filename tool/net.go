package tool

import (
	"net"
	"sort"
)

// usableInterface skips interfaces a phone on the same network cannot reach.
func usableInterface(iface *net.Interface) bool {
	if iface.Flags&net.FlagUp == 0 {
		return false
	}
	if iface.Flags&net.FlagLoopback != 0 {
		return false
	}
	if iface.Flags&net.FlagPointToPoint != 0 {
		return false // utun / tun / vpn
	}
	return true
}

// LANIPv4s lists the non-loopback IPv4 addresses of usable interfaces,
// sorted so the choice is stable between calls.
func LANIPv4s() []string {
	var result []string
	ifaces, err := net.Interfaces()
	if err != nil {
		return result
	}
	for i := range ifaces {
		if !usableInterface(&ifaces[i]) {
			continue
		}
		addrs, err := ifaces[i].Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP == nil || ipnet.IP.IsLoopback() {
				continue
			}
			if v4 := ipnet.IP.To4(); v4 != nil {
				result = append(result, v4.String())
			}
		}
	}
	sort.Strings(result)
	return result
}

// IsLoopbackHost reports whether host (with or without port) names this machine's loopback.
func IsLoopbackHost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// ReachableHost swaps a loopback host for the first LAN address so links
// built from it work on other devices. The port is kept.
func ReachableHost(host string) string {
	if !IsLoopbackHost(host) {
		return host
	}
	ips := LANIPv4s()
	if len(ips) == 0 {
		return host
	}
	_, port, err := net.SplitHostPort(host)
	if err != nil {
		return ips[0]
	}
	return net.JoinHostPort(ips[0], port)
}
