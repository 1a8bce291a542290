package sockets

import (
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hittsya/mdns-tool/internal/errors"
)

// Datagram is one raw UDP datagram as received off the wire: the sender's
// printable IP and port, and the payload bytes. Payload is owned by the
// receiver; the backend's read buffers are recycled after the copy.
type Datagram struct {
	SourceIP   string
	SourcePort int
	Payload    []byte
}

// Set owns the sockets of one browse session and the reader goroutines
// draining them. A literal select(2) across an fd-set has no idiomatic Go
// equivalent, so readiness-with-timeout is expressed with channels
// instead: one reader goroutine per socket blocks on its own ReadFrom and
// fans datagrams into a single buffered channel, and ReceiveOnce drains
// that channel under a time budget. The semantics match
// select-then-recvfrom: wait up to the budget for anything to arrive,
// then take everything that is already queued.
type Set struct {
	logger    *zap.Logger
	sockets   []*Socket
	datagrams chan Datagram
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// OpenPerInterface enumerates eligible interfaces and opens one multicast
// socket per interface per address family it advertises, stopping once
// maxSockets are open. ifaces overrides enumeration when non-nil (the
// eligibility filter still applies).
//
// Failures on a single socket are logged and that interface/family is
// skipped; they never abort the scan. Only a failure of the enumeration
// itself returns an error (a SocketInitError). The returned Set may hold
// zero sockets; callers decide whether that is fatal.
func OpenPerInterface(logger *zap.Logger, maxSockets, port int, ifaces []net.Interface) (*Set, error) {
	if ifaces == nil {
		var err error
		ifaces, err = EligibleInterfaces()
		if err != nil {
			return nil, &errors.SocketInitError{
				Operation: "enumerate interfaces",
				Err:       err,
				Details:   "failed to list network interfaces",
			}
		}
	} else {
		ifaces = FilterInterfaces(ifaces, nil)
	}

	socks := make([]*Socket, 0, len(ifaces)*2)

	for _, iface := range ifaces {
		if len(socks) >= maxSockets {
			break
		}

		hasIPv4, hasIPv6 := interfaceFamilies(iface)

		if hasIPv4 {
			sock, err := openIPv4(iface, port)
			if err != nil {
				logger.Warn("skipping IPv4 socket",
					zap.String("iface", iface.Name),
					zap.Error(err))
			} else {
				socks = append(socks, sock)
			}
		}

		if hasIPv6 && len(socks) < maxSockets {
			sock, err := openIPv6(iface, port)
			if err != nil {
				logger.Warn("skipping IPv6 socket",
					zap.String("iface", iface.Name),
					zap.Error(err))
			} else {
				socks = append(socks, sock)
			}
		}
	}

	return newSet(logger, socks), nil
}

// newSet wraps already-open sockets in a Set and starts one reader
// goroutine per socket.
func newSet(logger *zap.Logger, socks []*Socket) *Set {
	s := &Set{
		logger:    logger,
		sockets:   socks,
		datagrams: make(chan Datagram, 128),
	}
	for _, sock := range socks {
		s.wg.Add(1)
		go s.readLoop(sock)
	}
	return s
}

// Count returns the number of open sockets in the set.
func (s *Set) Count() int {
	return len(s.sockets)
}

// Send transmits payload on every socket in the set. Per-socket failures
// are logged and the remaining sockets still get the datagram; nothing is
// retried.
func (s *Set) Send(payload []byte) {
	for _, sock := range s.sockets {
		if err := sock.SendMulticast(payload); err != nil {
			s.logger.Warn("multicast send failed",
				zap.String("iface", sock.InterfaceName),
				zap.Error(err))
		}
	}
}

// ReceiveOnce waits up to budget for at least one datagram to arrive on
// any socket, then drains everything already queued and returns the
// batch. Returns an empty slice if the budget expires with nothing ready.
// Datagrams arrive in whatever order the sockets produced them; there is
// no cross-socket ordering guarantee within one call.
func (s *Set) ReceiveOnce(budget time.Duration) []Datagram {
	timer := time.NewTimer(budget)
	defer timer.Stop()

	var batch []Datagram

	select {
	case d := <-s.datagrams:
		batch = append(batch, d)
	case <-timer.C:
		return nil
	}

	for {
		select {
		case d := <-s.datagrams:
			batch = append(batch, d)
		default:
			return batch
		}
	}
}

// Close closes every socket and waits for the reader goroutines to exit.
// Idempotent.
func (s *Set) Close() {
	s.closeOnce.Do(func() {
		for _, sock := range s.sockets {
			if err := sock.Close(); err != nil {
				s.logger.Warn("socket close failed",
					zap.String("iface", sock.InterfaceName),
					zap.Error(err))
			}
		}
		s.wg.Wait()
	})
}

// readLoop blocks on sock's ReadFrom, copying each datagram out of the
// pooled buffer and into the shared channel, until the socket is closed.
func (s *Set) readLoop(sock *Socket) {
	defer s.wg.Done()

	for {
		bufPtr := getBuffer()
		buf := *bufPtr

		n, addr, err := sock.conn.ReadFrom(buf)
		if err != nil {
			putBuffer(bufPtr)
			// Closed socket means orderly shutdown; anything else is a
			// transient read failure worth noting before retrying.
			if sock.closed.Load() {
				return
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			s.logger.Warn("socket read failed",
				zap.String("iface", sock.InterfaceName),
				zap.Error(err))
			continue
		}

		if n == 0 {
			putBuffer(bufPtr)
			s.logger.Warn("discarding zero-length datagram",
				zap.String("iface", sock.InterfaceName))
			continue
		}

		d := Datagram{Payload: append([]byte(nil), buf[:n]...)}
		putBuffer(bufPtr)

		if udpAddr, ok := addr.(*net.UDPAddr); ok {
			d.SourceIP = udpAddr.IP.String()
			d.SourcePort = udpAddr.Port
		}

		select {
		case s.datagrams <- d:
		default:
			s.logger.Warn("receive queue full, dropping datagram",
				zap.String("iface", sock.InterfaceName),
				zap.String("source", d.SourceIP))
		}
	}
}
