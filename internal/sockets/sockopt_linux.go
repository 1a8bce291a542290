//go:build linux

package sockets

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// setReuseOptions sets SO_REUSEADDR and, where the kernel supports it,
// SO_REUSEPORT, so this engine can share port 5353 with Avahi and
// systemd-resolved. SO_REUSEPORT needs Linux 3.9+; older kernels return
// ENOPROTOOPT and the socket falls back to SO_REUSEADDR alone.
func setReuseOptions(fd uintptr) error {
	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("failed to set SO_REUSEADDR: %w", err)
	}

	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		if err != unix.ENOPROTOOPT {
			return fmt.Errorf("failed to set SO_REUSEPORT: %w", err)
		}
	}

	return nil
}

// setV6Only restricts an IPv6 socket to IPv6 traffic so the per-family
// socket pair on one interface never sees each other's datagrams.
func setV6Only(fd uintptr) error {
	if err := unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 1); err != nil {
		return fmt.Errorf("failed to set IPV6_V6ONLY: %w", err)
	}
	return nil
}

// platformControlIPv4 is the net.ListenConfig control function for IPv4
// sockets on Linux.
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
// sockets on Linux: the reuse options plus IPV6_V6ONLY.
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
