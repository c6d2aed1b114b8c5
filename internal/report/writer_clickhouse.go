package report

import (
	"context"
	"fmt"
	"log"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"FlowSpectra/internal/config"
	"FlowSpectra/internal/model"
)

const createTagTableStatement = `
CREATE TABLE IF NOT EXISTS flow_tag_counts (
    Timestamp DateTime,
    FlowLog   String,
    Tag       String,
    Count     UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Tag, Timestamp);
`

const createPortProtocolTableStatement = `
CREATE TABLE IF NOT EXISTS flow_port_protocol_counts (
    Timestamp DateTime,
    FlowLog   String,
    Port      String,
    Protocol  String,
    Count     UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Port, Protocol, Timestamp);
`

// ClickHouseWriter inserts the final counts of a run into ClickHouse. It
// implements the model.Writer interface.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects to ClickHouse and ensures both count tables
// exist.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (model.Writer, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	for _, stmt := range []string{createTagTableStatement, createPortProtocolTableStatement} {
		if err := conn.Exec(context.Background(), stmt); err != nil {
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}
	log.Println("Successfully connected to ClickHouse and ensured tables exist.")

	return &ClickHouseWriter{conn: conn}, nil
}

// Name identifies the writer in log output.
func (w *ClickHouseWriter) Name() string {
	return "clickhouse"
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Write batch-inserts the run's tag counts and port/protocol counts.
func (w *ClickHouseWriter) Write(summary *model.Summary) error {
	ctx := context.Background()

	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO flow_tag_counts")
	if err != nil {
		return fmt.Errorf("failed to prepare tag batch: %w", err)
	}
	for tag, count := range summary.TagCounts {
		if err := batch.Append(summary.GeneratedAt, summary.FlowLogPath, tag, count); err != nil {
			return fmt.Errorf("failed to append tag count to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send tag batch: %w", err)
	}

	batch, err = w.conn.PrepareBatch(ctx, "INSERT INTO flow_port_protocol_counts")
	if err != nil {
		return fmt.Errorf("failed to prepare port/protocol batch: %w", err)
	}
	for _, row := range summary.PortProtocolCounts {
		if err := batch.Append(summary.GeneratedAt, summary.FlowLogPath, row.Port, row.Protocol, row.Count); err != nil {
			return fmt.Errorf("failed to append port/protocol count to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send port/protocol batch: %w", err)
	}

	log.Printf("Wrote %d tag rows and %d port/protocol rows to ClickHouse",
		len(summary.TagCounts), len(summary.PortProtocolCounts))
	return nil
}
