package reader

import (
	"bufio"
	"fmt"
	"os"

	"FlowSpectra/internal/model"
)

// maxLineSize bounds the scanner's token buffer. Flow-log lines are short,
// but a corrupt input must not abort the run with a token-too-long error.
const maxLineSize = 1024 * 1024

// Source reads a flow-log file line by line and groups consecutive lines
// into chunks of at most chunkSize lines, preserving file order. Lines are
// numbered starting at 1. The sequence is finite and consumed once; a fresh
// Source re-reads the file from the start.
type Source struct {
	file      *os.File
	chunkSize int
	err       error
}

// NewSource opens the flow-log file. A missing or unreadable path is fatal
// to the run; content validity is the processor's concern.
func NewSource(filePath string, chunkSize int) (*Source, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open flow log file: %w", err)
	}
	if chunkSize <= 0 {
		chunkSize = 1
	}
	return &Source{file: file, chunkSize: chunkSize}, nil
}

// ReadChunks scans the file and sends each chunk on out, then closes out and
// the underlying file. The send blocks when the channel is full, which is
// the pipeline's backpressure point. Call Err afterwards to observe a read
// failure that interrupted the scan.
func (s *Source) ReadChunks(out chan<- model.Chunk) {
	defer close(out)
	defer s.file.Close()

	scanner := bufio.NewScanner(s.file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lines := make([]model.Line, 0, s.chunkSize)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		lines = append(lines, model.Line{Number: lineNum, Raw: scanner.Text()})
		if len(lines) == s.chunkSize {
			out <- model.Chunk{Lines: lines}
			lines = make([]model.Line, 0, s.chunkSize)
		}
	}
	if err := scanner.Err(); err != nil {
		s.err = fmt.Errorf("failed while reading flow log: %w", err)
		return
	}
	if len(lines) > 0 {
		out <- model.Chunk{Lines: lines}
	}
}

// Err reports a read error encountered during ReadChunks, if any. Only valid
// after the chunk channel has been closed.
func (s *Source) Err() error {
	return s.err
}
