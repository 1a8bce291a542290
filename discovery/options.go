package discovery

import (
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/hittsya/mdns-tool/internal/controller"
	"github.com/hittsya/mdns-tool/internal/errors"
	"github.com/hittsya/mdns-tool/internal/protocol"
)

// Option is a functional option for configuring an Engine, validated
// eagerly when New applies it.
//
// Example:
//
//	engine, err := discovery.New(
//	    discovery.WithQueryInterval(5 * time.Second),
//	    discovery.WithLogger(logger),
//	)
type Option func(*config) error

// config collects the Engine's construction parameters before wiring.
type config struct {
	logger        *zap.Logger
	queryInterval time.Duration
	receiveBudget time.Duration
	maxSockets    int
	port          int

	explicitInterfaces []net.Interface
	interfaceFilter    func(net.Interface) bool

	// open overrides the socket backend; used by tests.
	open controller.OpenFunc
}

func defaultConfig() *config {
	return &config{
		logger:        zap.NewNop(),
		queryInterval: protocol.QueryInterval,
		receiveBudget: protocol.ReceiveBudget,
		maxSockets:    protocol.MaxSockets,
		port:          protocol.Port,
	}
}

// WithLogger installs a structured logger for the engine's soft failures
// (per-socket setup errors, malformed frames, send errors). The default
// is a no-op logger, so a library consumer gets no unsolicited output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return &errors.ValidationError{
				Field:   "logger",
				Value:   nil,
				Message: "logger cannot be nil",
			}
		}
		c.logger = logger
		return nil
	}
}

// WithQueryInterval sets the period between periodic multicast queries.
//
// Default: 2.5 seconds.
func WithQueryInterval(interval time.Duration) Option {
	return func(c *config) error {
		if interval <= 0 {
			return &errors.ValidationError{
				Field:   "queryInterval",
				Value:   interval,
				Message: "interval must be greater than 0",
			}
		}
		c.queryInterval = interval
		return nil
	}
}

// WithReceiveBudget sets how long each worker iteration waits for
// datagrams before moving on.
//
// Default: 100 milliseconds. This bounds worst-case shutdown latency.
func WithReceiveBudget(budget time.Duration) Option {
	return func(c *config) error {
		if budget <= 0 {
			return &errors.ValidationError{
				Field:   "receiveBudget",
				Value:   budget,
				Message: "budget must be greater than 0",
			}
		}
		c.receiveBudget = budget
		return nil
	}
}

// WithMaxSockets caps how many sockets a browse session opens across all
// interfaces and families.
//
// Default: 32.
func WithMaxSockets(max int) Option {
	return func(c *config) error {
		if max <= 0 {
			return &errors.ValidationError{
				Field:   "maxSockets",
				Value:   max,
				Message: "socket cap must be greater than 0",
			}
		}
		c.maxSockets = max
		return nil
	}
}

// WithInterfaces restricts the browse session to the given interfaces,
// overriding enumeration. The eligibility rules (up, multicast, not
// loopback) still apply to each.
func WithInterfaces(ifaces []net.Interface) Option {
	return func(c *config) error {
		if len(ifaces) == 0 {
			return &errors.ValidationError{
				Field:   "interfaces",
				Value:   ifaces,
				Message: "interface list cannot be empty",
			}
		}
		c.explicitInterfaces = ifaces
		return nil
	}
}

// WithInterfaceFilter installs a custom per-interface predicate applied
// on top of the eligibility rules. Ignored when WithInterfaces is also
// given (the explicit list takes priority).
//
// Example (only Ethernet interfaces):
//
//	discovery.WithInterfaceFilter(func(iface net.Interface) bool {
//	    return strings.HasPrefix(iface.Name, "eth")
//	})
func WithInterfaceFilter(filter func(net.Interface) bool) Option {
	return func(c *config) error {
		if filter == nil {
			return &errors.ValidationError{
				Field:   "interfaceFilter",
				Value:   nil,
				Message: "filter function cannot be nil",
			}
		}
		c.interfaceFilter = filter
		return nil
	}
}
