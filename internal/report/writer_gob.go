package report

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"FlowSpectra/internal/model"
)

// GobWriter persists the final counts to disk in gob format together with a
// JSON summary, under a timestamped directory. It implements model.Writer.
type GobWriter struct {
	rootPath string
}

// NewGobWriter creates a new gob snapshot writer rooted at rootPath.
func NewGobWriter(rootPath string) model.Writer {
	return &GobWriter{rootPath: rootPath}
}

// Name identifies the writer in log output.
func (w *GobWriter) Name() string {
	return "gob"
}

// Write serializes the run's tag and port/protocol counts to
// tag_counts.dat and port_protocol_counts.dat, plus a summary.json with the
// run metadata.
func (w *GobWriter) Write(summary *model.Summary) error {
	timestamp := summary.GeneratedAt.Format("2006-01-02_15-04-05")
	runDir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	if err := writeGobFile(filepath.Join(runDir, "tag_counts.dat"), summary.TagCounts); err != nil {
		return err
	}
	if err := writeGobFile(filepath.Join(runDir, "port_protocol_counts.dat"), summary.PortProtocolCounts); err != nil {
		return err
	}

	summaryFile, err := os.Create(filepath.Join(runDir, "summary.json"))
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer summaryFile.Close()

	encoder := json.NewEncoder(summaryFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}
	return nil
}

func writeGobFile(filePath string, payload interface{}) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file '%s': %w", filePath, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(payload); err != nil {
		return fmt.Errorf("failed to encode counts to gob for file '%s': %w", filePath, err)
	}
	return nil
}
