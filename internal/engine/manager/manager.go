package manager

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"FlowSpectra/internal/config"
	"FlowSpectra/internal/engine/aggregator"
	"FlowSpectra/internal/engine/processor"
	"FlowSpectra/internal/lookup"
	"FlowSpectra/internal/model"
	"FlowSpectra/internal/publish"
	"FlowSpectra/internal/reader"
	"FlowSpectra/internal/report"
)

// Manager wires the chunk source, the worker pool running the chunk
// processor, the aggregator and the report writer into one pipeline, and
// owns the worker-pool lifecycle for a single run.
type Manager struct {
	cfg       *config.Config
	writers   []model.Writer
	publisher *publish.Publisher
}

// NewManager creates a new Manager and constructs the enabled secondary
// writers and the publisher from the configuration.
func NewManager(cfg *config.Config) (*Manager, error) {
	writers := make([]model.Writer, 0, len(cfg.Writers))
	for _, writerDef := range cfg.Writers {
		if !writerDef.Enabled {
			continue
		}

		switch writerDef.Type {
		case "gob":
			writers = append(writers, report.NewGobWriter(writerDef.Gob.RootPath))
		case "clickhouse":
			writer, err := report.NewClickHouseWriter(writerDef.ClickHouse)
			if err != nil {
				log.Printf("Warning: failed to create writer type '%s': %v, skipping.", writerDef.Type, err)
				continue
			}
			writers = append(writers, writer)
		default:
			log.Printf("Warning: unknown writer type '%s' in config, skipping.", writerDef.Type)
		}
	}

	var publisher *publish.Publisher
	if cfg.Publisher.Enabled {
		var err error
		publisher, err = publish.NewPublisher(cfg.Publisher)
		if err != nil {
			log.Printf("Warning: failed to connect publisher: %v, summaries will not be published.", err)
		}
	}

	return &Manager{cfg: cfg, writers: writers, publisher: publisher}, nil
}

// Run executes one parse: validates the inputs, loads the lookup table,
// streams the flow log through the worker pool, merges every partial result,
// writes the report, then hands the summary to the secondary writers and the
// publisher. The report is written only after all merging has finished, so
// an interrupted run never leaves a partial report behind.
func (m *Manager) Run(flowLogPath, lookupPath, outputPath string) (*model.Summary, error) {
	start := time.Now()

	// 1. Validate that the input files exist.
	for _, path := range []string{flowLogPath, lookupPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("input file '%s' is not accessible: %w", path, err)
		}
	}

	// 2. Build the lookup table, shared read-only by all workers.
	table, err := lookup.Load(lookupPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded lookup table with %d entries from '%s'.", table.Len(), lookupPath)

	// 3. Stream chunks through the worker pool and merge the results.
	counts, err := m.aggregate(flowLogPath, table)
	if err != nil {
		return nil, err
	}

	// 4. Render the report. Sorting happens here, so the output is
	// independent of worker completion order.
	if err := report.WriteText(outputPath, counts); err != nil {
		return nil, err
	}

	summary := counts.Summary()
	summary.GeneratedAt = start
	summary.FlowLogPath = flowLogPath
	summary.Elapsed = time.Since(start)

	// 5. Secondary writers and the publisher are best-effort: the report is
	// already on disk and stays authoritative.
	for _, writer := range m.writers {
		if err := writer.Write(summary); err != nil {
			log.Printf("Error writing summary with '%s' writer: %v", writer.Name(), err)
		}
	}
	if m.publisher != nil {
		if err := m.publisher.Publish(summary); err != nil {
			log.Printf("Error publishing summary: %v", err)
		}
	}

	return summary, nil
}

// aggregate runs the producer, the worker pool and the single-drainer merge
// loop for one flow log.
func (m *Manager) aggregate(flowLogPath string, table *lookup.Table) (*aggregator.GlobalCounts, error) {
	source, err := reader.NewSource(flowLogPath, m.cfg.Parser.ChunkSize)
	if err != nil {
		return nil, err
	}

	numWorkers := m.cfg.Parser.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	chunkChannel := make(chan model.Chunk, m.cfg.Parser.SizeOfChunkChannel)
	resultChannel := make(chan model.PartialCounts, m.cfg.Parser.SizeOfResultChannel)

	go source.ReadChunks(chunkChannel)

	var workerWg sync.WaitGroup
	workerWg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer workerWg.Done()
			for chunk := range chunkChannel {
				resultChannel <- processor.ProcessChunk(chunk, table)
			}
		}()
	}

	// Close the result channel once every worker has drained its chunks, so
	// the merge loop below terminates exactly when all partials are in.
	go func() {
		workerWg.Wait()
		close(resultChannel)
	}()

	// Single-drainer merge: this goroutine is the only writer of the global
	// counts, giving exactly-once merges without a lock.
	counts := aggregator.New()
	for partial := range resultChannel {
		counts.Merge(partial)
	}

	if err := source.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Close releases the manager's long-lived resources.
func (m *Manager) Close() {
	if m.publisher != nil {
		m.publisher.Close()
	}
}
