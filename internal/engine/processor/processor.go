package processor

import (
	"strings"

	"FlowSpectra/internal/lookup"
	"FlowSpectra/internal/model"
)

// minFields is the number of whitespace-separated fields a flow-log record
// needs to be well-formed. Lines with fewer fields are skipped; extra fields
// beyond this are ignored.
const minFields = 14

const (
	dstPortField  = 5
	protocolField = 6
)

// ProcessChunk counts one chunk of flow-log lines against the lookup table
// and returns the per-chunk tag and port/protocol counts. Malformed lines
// (fewer than 14 fields) are skipped silently; flow logs routinely contain
// noise and a bad line must not abort the batch. The function touches no
// shared state besides the read-only table, so disjoint chunks can be
// processed concurrently with no coordination.
func ProcessChunk(chunk model.Chunk, table *lookup.Table) model.PartialCounts {
	counts := model.NewPartialCounts()

	for _, line := range chunk.Lines {
		parts := strings.Fields(line.Raw)
		if len(parts) < minFields {
			continue
		}

		port := strings.ToLower(strings.TrimSpace(parts[dstPortField]))
		protocol := model.ProtocolName(strings.TrimSpace(parts[protocolField]))

		counts.PortProtocols[model.PortProtocol{Port: port, Protocol: protocol}]++

		// An empty tag is treated as no match.
		if tag, ok := table.Lookup(port, protocol); ok && tag != "" {
			counts.Tags[tag]++
		} else {
			counts.Tags[model.UntaggedKey]++
		}
	}

	return counts
}
