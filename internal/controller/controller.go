// Package controller implements the discovery control loop: a single
// background worker per browse session that periodically multicasts a
// query built from the follow-up query set, drains received datagrams,
// parses them into frames, and dispatches the batch to the subscribed
// callback. Start/stop are reentrancy-safe; the browsing flag is
// observable and true exactly while the worker is live.
package controller

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hittsya/mdns-tool/internal/errors"
	"github.com/hittsya/mdns-tool/internal/frame"
	"github.com/hittsya/mdns-tool/internal/message"
	"github.com/hittsya/mdns-tool/internal/protocol"
	"github.com/hittsya/mdns-tool/internal/sockets"
)

// Backend is the socket surface the worker drives. The production
// implementation is sockets.Set; tests substitute an in-memory fake.
type Backend interface {
	// Count reports how many sockets the backend holds.
	Count() int

	// Send transmits payload on every socket; per-socket failures are
	// soft.
	Send(payload []byte)

	// ReceiveOnce waits up to budget for datagrams and returns everything
	// already queued.
	ReceiveOnce(budget time.Duration) []sockets.Datagram

	// Close releases all sockets. Idempotent.
	Close()
}

// OpenFunc opens the backend for one browse session.
type OpenFunc func() (Backend, error)

// ServicesFunc receives the batch of frames parsed during one worker
// iteration. The batch may be empty. It runs on the worker goroutine;
// implementations must not call back into the Controller's Start or Stop.
type ServicesFunc func(frames []*frame.Frame)

// StateFunc receives browsing-state transitions (true when a browse
// session starts, false when it ends or fails to start).
type StateFunc func(browsing bool)

// Config carries the Controller's construction parameters. Zero-valued
// durations fall back to the protocol defaults.
type Config struct {
	Logger        *zap.Logger
	Open          OpenFunc
	QueryInterval time.Duration
	ReceiveBudget time.Duration
	WorkerSleep   time.Duration
}

// Controller owns the background worker of a browse session and the
// follow-up query set the worker solicits.
type Controller struct {
	logger        *zap.Logger
	open          OpenFunc
	queryInterval time.Duration
	receiveBudget time.Duration
	workerSleep   time.Duration

	// browsing doubles as the start/stop reentrancy guard via
	// compare-and-set on entry to both.
	browsing atomic.Bool

	followMu  sync.Mutex
	followUps []string

	queryMu   sync.Mutex
	lastQuery time.Time

	cbMu       sync.Mutex
	servicesCb ServicesFunc
	stateCb    StateFunc

	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a Controller. The follow-up query set starts with the
// DNS-SD services meta-query name.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		logger:        logger,
		open:          cfg.Open,
		queryInterval: cfg.QueryInterval,
		receiveBudget: cfg.ReceiveBudget,
		workerSleep:   cfg.WorkerSleep,
		followUps:     []string{protocol.ServicesMetaQueryName},
	}
	if c.queryInterval <= 0 {
		c.queryInterval = protocol.QueryInterval
	}
	if c.receiveBudget <= 0 {
		c.receiveBudget = protocol.ReceiveBudget
	}
	if c.workerSleep <= 0 {
		c.workerSleep = protocol.WorkerSleep
	}
	return c
}

// Browsing reports whether a browse session is currently live.
func (c *Controller) Browsing() bool {
	return c.browsing.Load()
}

// SubscribeServices installs the per-iteration frame batch callback. It
// runs on the worker goroutine; callers must not re-enter Start or Stop
// from it.
func (c *Controller) SubscribeServices(cb ServicesFunc) {
	c.cbMu.Lock()
	c.servicesCb = cb
	c.cbMu.Unlock()
}

// SubscribeState installs the browsing-state callback.
func (c *Controller) SubscribeState(cb StateFunc) {
	c.cbMu.Lock()
	c.stateCb = cb
	c.cbMu.Unlock()
}

// Start opens the per-interface sockets and launches the worker,
// transferring socket ownership to it. Calling Start while a session is
// already running logs and returns nil. If no socket opens, the browsing
// flag is cleared, the state callback fires with false, and the error is
// returned.
func (c *Controller) Start() error {
	if !c.browsing.CompareAndSwap(false, true) {
		c.logger.Info("browse already running, ignoring start")
		return nil
	}

	backend, err := c.open()
	if err != nil {
		c.logger.Error("socket init failed", zap.Error(err))
		c.browsing.Store(false)
		c.notifyState(false)
		return err
	}
	if backend.Count() == 0 {
		backend.Close()
		c.logger.Error("no usable sockets, not browsing")
		c.browsing.Store(false)
		c.notifyState(false)
		return &errors.SocketInitError{
			Operation: "open per-interface sockets",
			Details:   "no socket could be opened on any eligible interface",
		}
	}

	c.logger.Info("browse session starting", zap.Int("sockets", backend.Count()))

	// Backdate the schedule so the first worker iteration queries
	// immediately.
	c.queryMu.Lock()
	c.lastQuery = time.Now().Add(-c.queryInterval)
	c.queryMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})

	c.notifyState(true)

	go c.worker(ctx, backend)
	return nil
}

// Stop requests cancellation of the worker and joins it, then fires the
// state callback with false. Calling Stop with no session running logs
// and returns. In-flight callbacks complete before Stop returns; no
// services callback is delivered afterwards.
func (c *Controller) Stop() {
	if !c.browsing.CompareAndSwap(true, false) {
		c.logger.Info("browse not running, ignoring stop")
		return
	}

	c.cancel()
	<-c.done

	c.logger.Info("browse session stopped")
	c.notifyState(false)
}

// ScheduleQueryNow backdates the query schedule so the next worker
// iteration re-queries immediately. Used when the consumer holds only
// unresolved PTR targets and wants prompt resolution.
func (c *Controller) ScheduleQueryNow() {
	c.queryMu.Lock()
	c.lastQuery = time.Now().Add(-c.queryInterval)
	c.queryMu.Unlock()
}

// AddFollowUp adds name to the follow-up query set. Idempotent: a name
// already present (modulo the trailing dot) is a no-op. Safe to call
// concurrently with the worker.
func (c *Controller) AddFollowUp(name string) error {
	if err := protocol.ValidateName(name); err != nil {
		return err
	}

	c.followMu.Lock()
	defer c.followMu.Unlock()

	for _, existing := range c.followUps {
		if sameName(existing, name) {
			return nil
		}
	}
	c.followUps = append(c.followUps, name)
	return nil
}

// RemoveFollowUp removes name from the follow-up query set. A name not
// present is a no-op.
func (c *Controller) RemoveFollowUp(name string) {
	c.followMu.Lock()
	defer c.followMu.Unlock()

	for i, existing := range c.followUps {
		if sameName(existing, name) {
			c.followUps = append(c.followUps[:i], c.followUps[i+1:]...)
			return
		}
	}
}

// FollowUpSet returns a snapshot copy of the follow-up query set, in
// insertion order.
func (c *Controller) FollowUpSet() []string {
	c.followMu.Lock()
	defer c.followMu.Unlock()

	out := make([]string, len(c.followUps))
	copy(out, c.followUps)
	return out
}

// sameName compares two DNS names ignoring a single trailing dot, so
// "printer.local." and "printer.local" occupy one slot in the set.
func sameName(a, b string) bool {
	return strings.TrimSuffix(a, ".") == strings.TrimSuffix(b, ".")
}

// worker is the browse session's single background goroutine. Each
// iteration: query if due, receive under the budget, parse, dispatch the
// batch, sleep the pacing floor, check cancellation. On exit it closes
// every socket.
func (c *Controller) worker(ctx context.Context, backend Backend) {
	defer close(c.done)
	defer backend.Close()

	for {
		if c.queryDue() {
			pkt, err := message.BuildQuery(c.FollowUpSet())
			if err != nil {
				c.logger.Error("failed to build query", zap.Error(err))
			} else {
				backend.Send(pkt)
			}
			c.markQueried()
		}

		if ctx.Err() != nil {
			return
		}

		datagrams := backend.ReceiveOnce(c.receiveBudget)

		frames := make([]*frame.Frame, 0, len(datagrams))
		for _, d := range datagrams {
			f, err := frame.Decode(d.Payload, d.SourceIP, d.SourcePort, time.Now())
			if err != nil {
				c.logger.Warn("dropping malformed frame",
					zap.String("source", d.SourceIP),
					zap.Int("bytes", len(d.Payload)),
					zap.Error(err))
				continue
			}
			frames = append(frames, f)
		}

		if cb := c.servicesCallback(); cb != nil {
			cb(frames)
		}

		if ctx.Err() != nil {
			return
		}

		time.Sleep(c.workerSleep)

		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Controller) queryDue() bool {
	c.queryMu.Lock()
	defer c.queryMu.Unlock()
	return time.Since(c.lastQuery) >= c.queryInterval
}

func (c *Controller) markQueried() {
	c.queryMu.Lock()
	c.lastQuery = time.Now()
	c.queryMu.Unlock()
}

func (c *Controller) servicesCallback() ServicesFunc {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	return c.servicesCb
}

// notifyState reads the callback under the lock and invokes it outside,
// so a callback that re-reads controller state cannot deadlock.
func (c *Controller) notifyState(browsing bool) {
	c.cbMu.Lock()
	cb := c.stateCb
	c.cbMu.Unlock()

	if cb != nil {
		cb(browsing)
	}
}
