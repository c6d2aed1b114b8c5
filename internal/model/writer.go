package model

// Writer defines a generic interface for persisting the final counts of a
// run to a secondary store (gob snapshot, ClickHouse, ...). The text report
// is not behind this interface: it is the primary output and has its own
// all-or-nothing contract.
type Writer interface {
	// Write persists the run summary.
	Write(summary *Summary) error

	// Name identifies the writer in log output.
	Name() string
}
