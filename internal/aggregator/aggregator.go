// Package aggregator maintains the live service catalogue built from
// parsed mDNS frames: one scan card per service name, with merged IP
// lists, resolved ports, and the contributing RDATA payloads, plus the
// list of questions intercepted off the wire. PTR targets discovered in
// answers are promoted into the controller's follow-up query set.
package aggregator

import (
	"net"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hittsya/mdns-tool/internal/frame"
	"github.com/hittsya/mdns-tool/internal/protocol"
)

// Scheduler is the controller surface the aggregator drives: promoting
// PTR targets into follow-up queries and requesting a prompt re-query
// when the catalogue holds only unresolved names.
type Scheduler interface {
	AddFollowUp(name string) error
	ScheduleQueryNow()
}

// ScanCard is the per-service record of the catalogue, keyed by name.
// Two cards are the same entry iff their names are equal.
type ScanCard struct {
	// Name is the service's owner name, dotted, without trailing dot.
	Name string

	// IPAddresses is sorted (IPv4 before IPv6, then lexicographic) and
	// holds no duplicates.
	IPAddresses []string

	// Port is the service's port: the SRV port once one arrives, the
	// datagram source port until then.
	Port int

	// Meta holds the RDATA payloads that contributed to this card, in
	// arrival order, with structural duplicates dropped.
	Meta []frame.RData

	// LastSeen is the timestamp of the most recent contributing frame.
	LastSeen time.Time
}

// QuestionCard is one intercepted question: who asked about what. Two
// cards match iff both name and IP are equal.
type QuestionCard struct {
	Name     string
	IP       string
	LastSeen time.Time
}

// Aggregator folds frame batches into the catalogue. The catalogue and
// the intercepted-questions list are guarded by separate mutexes, never
// held together; scheduler calls happen outside both.
type Aggregator struct {
	logger *zap.Logger
	sched  Scheduler

	catalogMu sync.Mutex
	cards     []*ScanCard

	questionMu sync.Mutex
	questions  []QuestionCard
}

// New constructs an Aggregator bound to sched.
func New(logger *zap.Logger, sched Scheduler) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger, sched: sched}
}

// OnFrames merges a batch of parsed frames into the catalogue. It is the
// consumer of the controller's services callback and runs on the worker
// goroutine.
func (a *Aggregator) OnFrames(frames []*frame.Frame) {
	if len(frames) == 0 {
		return
	}

	// Follow-up promotions are collected during the merge and applied
	// after the catalogue lock is released.
	var followUps []string

	for _, f := range frames {
		followUps = append(followUps, a.mergeFrame(f)...)
		a.interceptQuestions(f)
	}

	for _, target := range followUps {
		if err := a.sched.AddFollowUp(target); err != nil {
			a.logger.Warn("rejecting PTR target as follow-up",
				zap.String("target", target),
				zap.Error(err))
		}
	}

	if a.onlyUnresolvedEntries() {
		a.sched.ScheduleQueryNow()
	}
}

// Services returns a snapshot copy of the catalogue, newest entry first.
func (a *Aggregator) Services() []ScanCard {
	a.catalogMu.Lock()
	defer a.catalogMu.Unlock()

	out := make([]ScanCard, 0, len(a.cards))
	for _, card := range a.cards {
		out = append(out, ScanCard{
			Name:        card.Name,
			IPAddresses: append([]string(nil), card.IPAddresses...),
			Port:        card.Port,
			Meta:        append([]frame.RData(nil), card.Meta...),
			LastSeen:    card.LastSeen,
		})
	}
	return out
}

// Questions returns a snapshot copy of the intercepted-questions list,
// newest first.
func (a *Aggregator) Questions() []QuestionCard {
	a.questionMu.Lock()
	defer a.questionMu.Unlock()

	out := make([]QuestionCard, len(a.questions))
	copy(out, a.questions)
	return out
}

// mergeFrame folds one frame's RRs into the catalogue and returns the PTR
// targets to promote. The catalogue lock spans only the merge itself.
func (a *Aggregator) mergeFrame(f *frame.Frame) []string {
	effectiveIP := f.EffectiveSourceIP()
	advertised := f.AdvertisedIP != ""

	var followUps []string

	a.catalogMu.Lock()
	defer a.catalogMu.Unlock()

	for _, section := range [][]frame.RR{f.Answers, f.Additionals, f.Authorities} {
		for _, rr := range section {
			port := f.SourcePort
			fromSRV := false
			if srv, ok := rr.Data.(frame.SRVData); ok && srv.Port != 0 {
				port = int(srv.Port)
				fromSRV = true
			}

			a.tryAddService(rr.Name, effectiveIP, port, rr.Data, advertised, fromSRV, f.Timestamp)

			if ptr, ok := rr.Data.(frame.PTRData); ok {
				followUps = append(followUps, ptr.Target)
			}
		}
	}

	return followUps
}

// tryAddService merges one record's contribution into the catalogue.
//
// A name not yet present gets a fresh card at the front. An existing card
// accumulates: the RDATA payload is appended unless a structurally equal
// one is already there; the port is adopted when the card still carries
// the default mDNS port, or always when the incoming port came from an
// SRV record (last SRV wins); the arrival time advances; and the IP list
// is either replaced wholesale (advertised addresses take priority over
// the multicast sender address) or extended and re-sorted.
func (a *Aggregator) tryAddService(name, ip string, port int, meta frame.RData, advertised, fromSRV bool, arrival time.Time) {
	existing := a.findCard(name)
	if existing == nil {
		a.cards = append([]*ScanCard{{
			Name:        name,
			IPAddresses: []string{ip},
			Port:        port,
			Meta:        []frame.RData{meta},
			LastSeen:    arrival,
		}}, a.cards...)
		return
	}

	duplicate := false
	for _, m := range existing.Meta {
		if m.Equal(meta) {
			duplicate = true
			break
		}
	}
	if !duplicate {
		existing.Meta = append(existing.Meta, meta)
	}

	if port != existing.Port && (existing.Port == protocol.Port || fromSRV) {
		existing.Port = port
	}

	existing.LastSeen = arrival

	if advertised {
		existing.IPAddresses = []string{ip}
		return
	}

	for _, have := range existing.IPAddresses {
		if have == ip {
			return
		}
	}
	existing.IPAddresses = append(existing.IPAddresses, ip)
	sortIPs(existing.IPAddresses)
}

func (a *Aggregator) findCard(name string) *ScanCard {
	for _, card := range a.cards {
		if card.Name == name {
			return card
		}
	}
	return nil
}

// interceptQuestions records the frame's questions at the front of the
// intercepted list, keyed by (name, source IP), evicting from the back
// past the cap.
func (a *Aggregator) interceptQuestions(f *frame.Frame) {
	if len(f.Questions) == 0 {
		return
	}

	a.questionMu.Lock()
	defer a.questionMu.Unlock()

	for _, q := range f.Questions {
		present := false
		for _, have := range a.questions {
			if have.Name == q.Name && have.IP == f.SourceIP {
				present = true
				break
			}
		}
		if present {
			continue
		}

		a.questions = append([]QuestionCard{{
			Name:     q.Name,
			IP:       f.SourceIP,
			LastSeen: f.Timestamp,
		}}, a.questions...)

		if len(a.questions) > protocol.MaxQuestionCardEntries {
			a.questions = a.questions[:protocol.MaxQuestionCardEntries]
		}
	}
}

// onlyUnresolvedEntries reports whether the catalogue is non-empty but no
// card has resolved beyond PTR pointers yet — the cue to re-query
// promptly rather than wait out the periodic interval.
func (a *Aggregator) onlyUnresolvedEntries() bool {
	a.catalogMu.Lock()
	defer a.catalogMu.Unlock()

	if len(a.cards) == 0 {
		return false
	}
	for _, card := range a.cards {
		for _, m := range card.Meta {
			if _, isPTR := m.(frame.PTRData); !isPTR {
				return false
			}
		}
	}
	return true
}

// sortIPs orders addresses IPv4 before IPv6, then lexicographically
// within each family.
func sortIPs(ips []string) {
	sort.Slice(ips, func(i, j int) bool {
		fi, fj := isIPv4(ips[i]), isIPv4(ips[j])
		if fi != fj {
			return fi
		}
		return ips[i] < ips[j]
	})
}

func isIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}
