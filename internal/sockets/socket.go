package sockets

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/hittsya/mdns-tool/internal/errors"
	"github.com/hittsya/mdns-tool/internal/protocol"
)

// Family is the address family a Socket is bound for.
type Family uint8

// Address families.
const (
	FamilyIPv4 Family = iota
	FamilyIPv6
)

// String returns "udp4" or "udp6", the net package's network name for the
// family.
func (f Family) String() string {
	if f == FamilyIPv6 {
		return "udp6"
	}
	return "udp4"
}

// Socket is one UDP multicast socket bound on a single interface for a
// single address family. It is created by OpenPerInterface, lives for the
// duration of one browse session, and is closed by the worker immediately
// before exit.
type Socket struct {
	conn   net.PacketConn
	family Family

	// InterfaceName is the name of the interface this socket joined the
	// multicast group on, for log context.
	InterfaceName string

	closed atomic.Bool
}

// Family returns the address family of the bound socket, derived from its
// local address the way getsockname would report it. The stored family is
// the fallback for conns whose local address doesn't expose an IP.
func (s *Socket) Family() Family {
	if addr, ok := s.conn.LocalAddr().(*net.UDPAddr); ok && addr.IP != nil {
		if addr.IP.To4() == nil && addr.IP.To16() != nil {
			return FamilyIPv6
		}
		if addr.IP.To4() != nil {
			return FamilyIPv4
		}
	}
	return s.family
}

// SendMulticast transmits payload to the mDNS multicast group matching the
// socket's bound family: 224.0.0.251:5353 or [ff02::fb]:5353. It never
// blocks beyond the kernel send path and never retries; the periodic query
// schedule is the retry mechanism.
func (s *Socket) SendMulticast(payload []byte) error {
	var dest *net.UDPAddr
	if s.Family() == FamilyIPv6 {
		dest = protocol.MulticastGroupIPv6()
	} else {
		dest = protocol.MulticastGroupIPv4()
	}

	n, err := s.conn.WriteTo(payload, dest)
	if err != nil {
		return &errors.NetworkError{
			Operation: "send query",
			Err:       err,
			Details:   fmt.Sprintf("failed to send %d bytes to %s on %s", len(payload), dest, s.InterfaceName),
		}
	}
	if n != len(payload) {
		return &errors.NetworkError{
			Operation: "send query",
			Err:       fmt.Errorf("partial write: %d/%d bytes", n, len(payload)),
			Details:   "incomplete transmission",
		}
	}
	return nil
}

// Close releases the socket's kernel resources. Idempotent: the second and
// later calls are no-ops.
func (s *Socket) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.conn.Close()
}

// openIPv4 opens, configures, binds, and joins the IPv4 multicast group on
// one interface:
//
//   - SO_REUSEADDR (and SO_REUSEPORT where supported) via the platform
//     control function, so this engine coexists with Avahi/Bonjour/
//     systemd-resolved on port 5353
//   - bind to 0.0.0.0:port (never the group address; see Go issues
//     #73484, #34728 for why ListenMulticastUDP is avoided)
//   - IP_ADD_MEMBERSHIP for 224.0.0.251 on this interface
//   - IP_MULTICAST_TTL = 1 (link-local scope)
//   - IP_MULTICAST_LOOP = 1
func openIPv4(iface net.Interface, port int) (*Socket, error) {
	lc := net.ListenConfig{Control: platformControlIPv4}

	conn, err := lc.ListenPacket(context.Background(), "udp4", net.JoinHostPort("0.0.0.0", strconv.Itoa(port)))
	if err != nil {
		return nil, &errors.NetworkError{
			Operation: "bind socket",
			Err:       err,
			Details:   fmt.Sprintf("failed to bind udp4 port %d on %s (is another mDNS daemon running without SO_REUSEPORT?)", port, iface.Name),
		}
	}

	p := ipv4.NewPacketConn(conn)

	ifaceCopy := iface
	if err := p.JoinGroup(&ifaceCopy, &net.UDPAddr{IP: net.ParseIP(protocol.MulticastAddrIPv4)}); err != nil {
		_ = conn.Close()
		return nil, &errors.NetworkError{
			Operation: "join multicast group",
			Err:       err,
			Details:   fmt.Sprintf("failed to join %s on %s", protocol.MulticastAddrIPv4, iface.Name),
		}
	}

	if err := p.SetMulticastInterface(&ifaceCopy); err != nil {
		_ = conn.Close()
		return nil, &errors.NetworkError{
			Operation: "set multicast interface",
			Err:       err,
			Details:   iface.Name,
		}
	}

	if err := p.SetMulticastTTL(1); err != nil {
		_ = conn.Close()
		return nil, &errors.NetworkError{
			Operation: "set multicast TTL",
			Err:       err,
			Details:   "failed to set TTL=1",
		}
	}

	if err := p.SetMulticastLoopback(true); err != nil {
		_ = conn.Close()
		return nil, &errors.NetworkError{
			Operation: "set multicast loopback",
			Err:       err,
			Details:   "failed to enable loopback",
		}
	}

	if udpConn, ok := conn.(*net.UDPConn); ok {
		if err := udpConn.SetReadBuffer(maxPacketSize * 8); err != nil {
			_ = conn.Close()
			return nil, &errors.NetworkError{
				Operation: "configure socket",
				Err:       err,
				Details:   "failed to set read buffer size",
			}
		}
	}

	return &Socket{conn: conn, family: FamilyIPv4, InterfaceName: iface.Name}, nil
}

// openIPv6 is the IPv6 counterpart of openIPv4:
//
//   - SO_REUSEADDR (and SO_REUSEPORT where supported) plus IPV6_V6ONLY
//     via the platform control function
//   - bind to [::]:port
//   - IPV6_JOIN_GROUP for ff02::fb with scope = this interface
//   - IPV6_MULTICAST_HOPS = 1
//   - IPV6_MULTICAST_LOOP = 1
func openIPv6(iface net.Interface, port int) (*Socket, error) {
	lc := net.ListenConfig{Control: platformControlIPv6}

	conn, err := lc.ListenPacket(context.Background(), "udp6", net.JoinHostPort("::", strconv.Itoa(port)))
	if err != nil {
		return nil, &errors.NetworkError{
			Operation: "bind socket",
			Err:       err,
			Details:   fmt.Sprintf("failed to bind udp6 port %d on %s", port, iface.Name),
		}
	}

	p := ipv6.NewPacketConn(conn)

	ifaceCopy := iface
	if err := p.JoinGroup(&ifaceCopy, &net.UDPAddr{IP: net.ParseIP(protocol.MulticastAddrIPv6)}); err != nil {
		_ = conn.Close()
		return nil, &errors.NetworkError{
			Operation: "join multicast group",
			Err:       err,
			Details:   fmt.Sprintf("failed to join %s on %s", protocol.MulticastAddrIPv6, iface.Name),
		}
	}

	if err := p.SetMulticastInterface(&ifaceCopy); err != nil {
		_ = conn.Close()
		return nil, &errors.NetworkError{
			Operation: "set multicast interface",
			Err:       err,
			Details:   iface.Name,
		}
	}

	if err := p.SetMulticastHopLimit(1); err != nil {
		_ = conn.Close()
		return nil, &errors.NetworkError{
			Operation: "set multicast hop limit",
			Err:       err,
			Details:   "failed to set hops=1",
		}
	}

	if err := p.SetMulticastLoopback(true); err != nil {
		_ = conn.Close()
		return nil, &errors.NetworkError{
			Operation: "set multicast loopback",
			Err:       err,
			Details:   "failed to enable loopback",
		}
	}

	if udpConn, ok := conn.(*net.UDPConn); ok {
		if err := udpConn.SetReadBuffer(maxPacketSize * 8); err != nil {
			_ = conn.Close()
			return nil, &errors.NetworkError{
				Operation: "configure socket",
				Err:       err,
				Details:   "failed to set read buffer size",
			}
		}
	}

	return &Socket{conn: conn, family: FamilyIPv6, InterfaceName: iface.Name}, nil
}
