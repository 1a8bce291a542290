//go:build windows

package sockets

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// setReuseOptions sets SO_REUSEADDR. Windows has no SO_REUSEPORT; its
// SO_REUSEADDR already allows multiple processes to bind the same port
// (closer to BSD SO_REUSEPORT than to POSIX SO_REUSEADDR), which is what
// coexistence with other mDNS stacks needs.
func setReuseOptions(fd uintptr) error {
	if err := windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("failed to set SO_REUSEADDR: %w", err)
	}
	return nil
}

// setV6Only restricts an IPv6 socket to IPv6 traffic so the per-family
// socket pair on one interface never sees each other's datagrams.
func setV6Only(fd uintptr) error {
	if err := windows.SetsockoptInt(windows.Handle(fd), windows.IPPROTO_IPV6, windows.IPV6_V6ONLY, 1); err != nil {
		return fmt.Errorf("failed to set IPV6_V6ONLY: %w", err)
	}
	return nil
}

// platformControlIPv4 is the net.ListenConfig control function for IPv4
// sockets on Windows.
func platformControlIPv4(_, _ string, c syscall.RawConn) error {
	var sockoptErr error
	err := c.Control(func(fd uintptr) {
		sockoptErr = setReuseOptions(fd)
	})
	if err != nil {
		return fmt.Errorf("raw conn control failed: %w", err)
	}
	return sockoptErr
}

// platformControlIPv6 is the net.ListenConfig control function for IPv6
// sockets on Windows: SO_REUSEADDR plus IPV6_V6ONLY.
func platformControlIPv6(_, _ string, c syscall.RawConn) error {
	var sockoptErr error
	err := c.Control(func(fd uintptr) {
		if sockoptErr = setReuseOptions(fd); sockoptErr != nil {
			return
		}
		sockoptErr = setV6Only(fd)
	})
	if err != nil {
		return fmt.Errorf("raw conn control failed: %w", err)
	}
	return sockoptErr
}
