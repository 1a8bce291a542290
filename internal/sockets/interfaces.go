// Package sockets implements the platform socket backend for the
// discovery engine: interface enumeration, one UDP multicast socket per
// interface per address family, multicast send, and budget-bounded
// receive. It is the only package that touches OS socket APIs; the wire
// codec and the discovery controller operate purely on bytes and
// timestamps.
package sockets

import (
	"net"
)

// EligibleInterfaces returns the network interfaces suitable for mDNS
// multicast: up, multicast-capable, and not loopback.
//
// Implements the interface-enumeration rule of the socket backend:
//   - Include only UP interfaces (net.FlagUp)
//   - Include only MULTICAST interfaces (net.FlagMulticast)
//   - Exclude loopback interfaces (net.FlagLoopback)
//
// Callers can override selection with WithInterfaces() or
// WithInterfaceFilter() functional options on the engine.
func EligibleInterfaces() ([]net.Interface, error) {
	allIfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	return FilterInterfaces(allIfaces, nil), nil
}

// FilterInterfaces applies the eligibility rules above to ifaces, plus an
// optional extra caller-supplied filter. A nil extra filter admits every
// eligible interface.
func FilterInterfaces(ifaces []net.Interface, extra func(net.Interface) bool) []net.Interface {
	filtered := make([]net.Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		if iface.Flags&net.FlagMulticast == 0 {
			continue
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if extra != nil && !extra(iface) {
			continue
		}
		filtered = append(filtered, iface)
	}
	return filtered
}

// interfaceFamilies reports which address families iface advertises, by
// inspecting its unicast addresses. An interface with no addresses at all
// gets neither socket.
func interfaceFamilies(iface net.Interface) (hasIPv4, hasIPv6 bool) {
	addrs, err := iface.Addrs()
	if err != nil {
		return false, false
	}
	for _, addr := range addrs {
		var ip net.IP
		switch a := addr.(type) {
		case *net.IPNet:
			ip = a.IP
		case *net.IPAddr:
			ip = a.IP
		default:
			continue
		}
		if ip.To4() != nil {
			hasIPv4 = true
		} else if ip.To16() != nil {
			hasIPv6 = true
		}
	}
	return hasIPv4, hasIPv6
}
