package discovery

import (
	"net"
	"sync"

	"github.com/hittsya/mdns-tool/internal/aggregator"
	"github.com/hittsya/mdns-tool/internal/controller"
	"github.com/hittsya/mdns-tool/internal/frame"
	"github.com/hittsya/mdns-tool/internal/sockets"
)

// Engine is the discovery engine's public surface: it composes the
// socket backend, the wire codec, the discovery controller, and the
// response aggregator behind the browse/subscribe API.
//
// An Engine is safe for concurrent use. Callbacks installed with
// SubscribeServices and SubscribeState run on the engine's worker
// goroutine and must not call StartBrowse or StopBrowse.
type Engine struct {
	ctrl *controller.Controller
	agg  *aggregator.Aggregator

	cbMu       sync.Mutex
	servicesCb func([]*Frame)
}

// New constructs an Engine from the given options. Option validation is
// eager: the first invalid option aborts construction.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	open := cfg.open
	if open == nil {
		open = makeOpenFunc(cfg)
	}

	e := &Engine{}

	e.ctrl = controller.New(controller.Config{
		Logger:        cfg.logger,
		Open:          open,
		QueryInterval: cfg.queryInterval,
		ReceiveBudget: cfg.receiveBudget,
	})

	e.agg = aggregator.New(cfg.logger, e.ctrl)

	// The aggregator consumes every batch first; the consumer's callback
	// sees the same frames afterwards, with the catalogue already
	// updated.
	e.ctrl.SubscribeServices(func(frames []*frame.Frame) {
		e.agg.OnFrames(frames)

		e.cbMu.Lock()
		cb := e.servicesCb
		e.cbMu.Unlock()

		if cb != nil {
			cb(frames)
		}
	})

	return e, nil
}

// makeOpenFunc binds the configured interface selection to the socket
// backend.
func makeOpenFunc(cfg *config) controller.OpenFunc {
	logger := cfg.logger
	maxSockets := cfg.maxSockets
	port := cfg.port
	explicit := cfg.explicitInterfaces
	filter := cfg.interfaceFilter

	return func() (controller.Backend, error) {
		ifaces := explicit
		if ifaces == nil && filter != nil {
			all, err := net.Interfaces()
			if err == nil {
				ifaces = sockets.FilterInterfaces(all, filter)
			}
		}
		return sockets.OpenPerInterface(logger, maxSockets, port, ifaces)
	}
}

// StartBrowse opens the per-interface sockets and starts the background
// browse session. Calling it while a session is running is a logged
// no-op. If no socket can be opened the engine stays stopped, the state
// callback fires with false, and the error is returned.
func (e *Engine) StartBrowse() error {
	return e.ctrl.Start()
}

// StopBrowse cancels the background worker, waits for it to exit, and
// closes every socket. Calling it with no session running is a logged
// no-op. After StopBrowse returns, no further services callback is
// delivered.
func (e *Engine) StopBrowse() {
	e.ctrl.Stop()
}

// Browsing reports whether a browse session is currently live.
func (e *Engine) Browsing() bool {
	return e.ctrl.Browsing()
}

// SubscribeServices installs the callback receiving each worker
// iteration's batch of parsed frames (possibly empty). It runs on the
// worker goroutine after the catalogue has been updated.
func (e *Engine) SubscribeServices(cb func(frames []*Frame)) {
	e.cbMu.Lock()
	e.servicesCb = cb
	e.cbMu.Unlock()
}

// SubscribeState installs the callback receiving browsing-state
// transitions.
func (e *Engine) SubscribeState(cb func(browsing bool)) {
	e.ctrl.SubscribeState(controller.StateFunc(cb))
}

// AddFollowUp adds a service name to the follow-up query set solicited by
// every periodic query. Adding a name already present is a no-op.
func (e *Engine) AddFollowUp(name string) error {
	return e.ctrl.AddFollowUp(name)
}

// RemoveFollowUp removes a service name from the follow-up query set.
// Removing an absent name is a no-op.
func (e *Engine) RemoveFollowUp(name string) {
	e.ctrl.RemoveFollowUp(name)
}

// FollowUpSet returns a snapshot of the follow-up query set in insertion
// order.
func (e *Engine) FollowUpSet() []string {
	return e.ctrl.FollowUpSet()
}

// ScheduleQueryNow makes the next worker iteration re-query immediately
// instead of waiting out the periodic interval.
func (e *Engine) ScheduleQueryNow() {
	e.ctrl.ScheduleQueryNow()
}

// Services returns a snapshot of the service catalogue, newest entry
// first.
func (e *Engine) Services() []ScanCard {
	return e.agg.Services()
}

// Questions returns a snapshot of the intercepted-questions list, newest
// first.
func (e *Engine) Questions() []QuestionCard {
	return e.agg.Questions()
}
