package lookup

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"FlowSpectra/internal/model"
)

// Table maps a (destination port, protocol) combination to a classification
// tag. It is built once at startup and never mutated afterwards, so it is
// safe for concurrent readers without locking.
type Table struct {
	tags map[model.PortProtocol]string
}

// Load reads a lookup table from a CSV file with header columns
// dstport, protocol and tag. Port and protocol values are trimmed and
// lowercased, tags are trimmed only. If the same (port, protocol) key
// appears more than once, the later row wins.
func Load(filePath string) (*Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open lookup table file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup table header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"dstport", "protocol", "tag"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("lookup table is missing required column %q", required)
		}
	}

	tags := make(map[model.PortProtocol]string)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup table rows: %w", err)
	}
	for _, row := range rows {
		key := model.PortProtocol{
			Port:     strings.ToLower(strings.TrimSpace(row[cols["dstport"]])),
			Protocol: strings.ToLower(strings.TrimSpace(row[cols["protocol"]])),
		}
		tags[key] = strings.TrimSpace(row[cols["tag"]])
	}

	return &Table{tags: tags}, nil
}

// Lookup returns the tag for a (port, protocol) combination, or ok=false if
// no entry exists. Callers are expected to pass already-normalized values.
func (t *Table) Lookup(port, protocol string) (string, bool) {
	tag, ok := t.tags[model.PortProtocol{Port: port, Protocol: protocol}]
	return tag, ok
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	return len(t.tags)
}
