// Package capture declares the contract for packet-capture ingestion,
// an external collaborator this engine consumes but never implements
// (spec.md §6: "packet-capture ingestion ... out of scope"). Nothing
// in this module produces a RawMessage; a caller wires in its own
// capture source (libpcap, a socket reader, a test fixture) and hands
// the result to flow.FlowParser.ParseFlow or a MessageParser directly.
package capture

import "time"

// RawMessage is an opaque carrier for one captured message, the unit
// parse_flow consumes. Source/Destination/Date are metadata the
// parser never inspects; they exist for a caller's own bookkeeping
// (correlating a parsed segmentation back to where it came from).
type RawMessage struct {
	Data        []byte
	Source      string
	Destination string
	Date        time.Time
}

// Source yields captured messages one at a time until exhausted. Real
// implementations (pcap file replay, a live interface, a queue
// consumer) live outside this module.
type Source interface {
	Next() (RawMessage, error)
}
