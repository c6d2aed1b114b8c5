package report

import (
	"bufio"
	"fmt"
	"os"

	"FlowSpectra/internal/engine/aggregator"
)

// WriteText renders the final counts to a text report at filePath. Rows in
// both sections are sorted ascending lexicographically by key, so the output
// is byte-identical across runs regardless of chunk completion order. The
// file is created only once all merging is done; nothing partial is ever
// left behind on the success path.
func WriteText(filePath string, counts *aggregator.GlobalCounts) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	fmt.Fprintf(w, "Tag Counts:\n")
	fmt.Fprintf(w, "Tag,Count\n")
	for _, tag := range counts.SortedTags() {
		fmt.Fprintf(w, "%s,%d\n", tag, counts.Tags[tag])
	}

	fmt.Fprintf(w, "\nPort/Protocol Combination Counts:\n")
	fmt.Fprintf(w, "Port,Protocol,Count\n")
	for _, key := range counts.SortedPortProtocols() {
		fmt.Fprintf(w, "%s,%s,%d\n", key.Port, key.Protocol, counts.PortProtocols[key])
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}
