package model

import "time"

// Line is a single raw line of the flow log, paired with its 1-based
// position in the file.
type Line struct {
	Number int
	Raw    string
}

// Chunk is a bounded, ordered batch of consecutive log lines. Chunks do not
// overlap and together partition the file exactly once, in file order. A
// chunk is produced by the reader, consumed by exactly one processor
// invocation, then discarded.
type Chunk struct {
	Lines []Line
}

// PortProtocol identifies a (destination port, protocol name) combination.
// Both fields are trimmed, lowercase strings.
type PortProtocol struct {
	Port     string
	Protocol string
}

// PartialCounts holds the counts extracted from a single chunk.
type PartialCounts struct {
	Tags          map[string]uint64
	PortProtocols map[PortProtocol]uint64
}

// NewPartialCounts returns an empty PartialCounts with both maps allocated.
func NewPartialCounts() PartialCounts {
	return PartialCounts{
		Tags:          make(map[string]uint64),
		PortProtocols: make(map[PortProtocol]uint64),
	}
}

// Summary describes the outcome of a completed run. It is the payload handed
// to secondary writers and the publisher after the report has been written.
type Summary struct {
	GeneratedAt        time.Time           `json:"generated_at"`
	FlowLogPath        string              `json:"flow_log_path"`
	TotalRecords       uint64              `json:"total_records"`
	TagCounts          map[string]uint64   `json:"tag_counts"`
	PortProtocolCounts []PortProtocolCount `json:"port_protocol_counts"`
	Elapsed            time.Duration       `json:"elapsed_ns"`
}

// PortProtocolCount is one row of the port/protocol section in summary form.
type PortProtocolCount struct {
	Port     string `json:"port"`
	Protocol string `json:"protocol"`
	Count    uint64 `json:"count"`
}
