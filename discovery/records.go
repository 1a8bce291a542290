package discovery

import (
	"github.com/hittsya/mdns-tool/internal/aggregator"
	"github.com/hittsya/mdns-tool/internal/frame"
	"github.com/hittsya/mdns-tool/internal/message"
)

// The engine's data types are defined next to the parser and the
// aggregator; these aliases re-export them as the public vocabulary of
// the package, so consumers can receive frames and type-switch on RDATA
// variants without reaching into internal packages.

// Frame is a single decoded mDNS datagram: header fields, questions, the
// three resource-record sections, and the source/advertised addressing
// the engine attached at receive time.
type Frame = frame.Frame

// RR is one decoded resource record.
type RR = frame.RR

// Question is one entry of a frame's question section.
type Question = message.Question

// RData is the tagged sum of decoded RDATA payloads. Type-switch on the
// concrete variants below.
type RData = frame.RData

// RDATA variants.
type (
	// PTRData is a PTR record's payload: the target name.
	PTRData = frame.PTRData

	// TXTData is a TXT record's payload: ordered key=value strings.
	TXTData = frame.TXTData

	// SRVData is an SRV record's payload: priority, weight, port, target.
	SRVData = frame.SRVData

	// AData is an A record's payload: a dotted-quad IPv4 address.
	AData = frame.AData

	// AAAAData is an AAAA record's payload: a canonical IPv6 address.
	AAAAData = frame.AAAAData

	// NSECData is an NSEC record's payload: next domain and present types.
	NSECData = frame.NSECData

	// UnknownData preserves the raw RDATA of unhandled record types.
	UnknownData = frame.UnknownData
)

// ScanCard is one entry of the service catalogue, keyed by service name.
type ScanCard = aggregator.ScanCard

// QuestionCard is one intercepted question observed on the wire.
type QuestionCard = aggregator.QuestionCard
