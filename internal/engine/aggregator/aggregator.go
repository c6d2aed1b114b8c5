package aggregator

import (
	"sort"

	"FlowSpectra/internal/model"
)

// GlobalCounts accumulates partial results from all chunks of a run. Merge
// is plain integer addition, commutative and associative, so partials may
// arrive in any order and the totals come out the same. The struct is not
// goroutine safe: the orchestrator confines all merges to a single goroutine
// draining the result channel, which gives the exactly-once guarantee
// without a lock.
type GlobalCounts struct {
	Tags          map[string]uint64
	PortProtocols map[model.PortProtocol]uint64
}

// New returns an empty GlobalCounts.
func New() *GlobalCounts {
	return &GlobalCounts{
		Tags:          make(map[string]uint64),
		PortProtocols: make(map[model.PortProtocol]uint64),
	}
}

// Merge adds one chunk's partial counts into the totals. Absent buckets are
// treated as zero.
func (g *GlobalCounts) Merge(partial model.PartialCounts) {
	for tag, count := range partial.Tags {
		g.Tags[tag] += count
	}
	for key, count := range partial.PortProtocols {
		g.PortProtocols[key] += count
	}
}

// TotalRecords returns the number of well-formed records merged so far.
// Every well-formed line lands in exactly one tag bucket, so the tag side is
// the authoritative sum.
func (g *GlobalCounts) TotalRecords() uint64 {
	var total uint64
	for _, count := range g.Tags {
		total += count
	}
	return total
}

// SortedTags returns the tag buckets sorted ascending lexicographically.
func (g *GlobalCounts) SortedTags() []string {
	tags := make([]string, 0, len(g.Tags))
	for tag := range g.Tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// SortedPortProtocols returns the port/protocol buckets sorted ascending
// lexicographically by (port, protocol).
func (g *GlobalCounts) SortedPortProtocols() []model.PortProtocol {
	keys := make([]model.PortProtocol, 0, len(g.PortProtocols))
	for key := range g.PortProtocols {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Port != keys[j].Port {
			return keys[i].Port < keys[j].Port
		}
		return keys[i].Protocol < keys[j].Protocol
	})
	return keys
}

// Summary freezes the totals into the payload handed to secondary writers
// and the publisher.
func (g *GlobalCounts) Summary() *model.Summary {
	rows := make([]model.PortProtocolCount, 0, len(g.PortProtocols))
	for _, key := range g.SortedPortProtocols() {
		rows = append(rows, model.PortProtocolCount{
			Port:     key.Port,
			Protocol: key.Protocol,
			Count:    g.PortProtocols[key],
		})
	}

	tags := make(map[string]uint64, len(g.Tags))
	for tag, count := range g.Tags {
		tags[tag] = count
	}

	return &model.Summary{
		TotalRecords:       g.TotalRecords(),
		TagCounts:          tags,
		PortProtocolCounts: rows,
	}
}
