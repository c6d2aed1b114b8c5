package manager

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"FlowSpectra/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func record(dstPort, protocolCode string) string {
	fields := []string{
		"2024-01-01T00:00:00Z", "10.0.0.1", "49152", "10.0.0.2", "0",
		dstPort, protocolCode, "allow",
		"v1", "v2", "v3", "v4", "v5", "v6",
	}
	return strings.Join(fields, " ")
}

func runPipeline(t *testing.T, cfg *config.Config, flowLog, lookupCSV string) []byte {
	t.Helper()
	dir := t.TempDir()
	flowPath := writeFile(t, dir, "flow.log", flowLog)
	lookupPath := writeFile(t, dir, "lookup.csv", lookupCSV)
	outputPath := filepath.Join(dir, "report.txt")

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer m.Close()

	if _, err := m.Run(flowPath, lookupPath, outputPath); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	report, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	return report
}

func TestRun_EndToEnd(t *testing.T) {
	lookupCSV := "dstport,protocol,tag\n25,tcp,sv_p1\n68,udp,sv_p2\n"
	flowLog := record("25", "6") + "\n" +
		record("68", "17") + "\n" +
		"malformed line with six fields x\n"

	report := runPipeline(t, config.Default(), flowLog, lookupCSV)

	expected := "Tag Counts:\n" +
		"Tag,Count\n" +
		"sv_p1,1\n" +
		"sv_p2,1\n" +
		"\n" +
		"Port/Protocol Combination Counts:\n" +
		"Port,Protocol,Count\n" +
		"25,tcp,1\n" +
		"68,udp,1\n"
	if string(report) != expected {
		t.Errorf("Unexpected report.\nGot:\n%s\nExpected:\n%s", report, expected)
	}
}

func TestRun_EmptyFlowLog(t *testing.T) {
	report := runPipeline(t, config.Default(), "", "dstport,protocol,tag\n25,tcp,sv_p1\n")

	expected := "Tag Counts:\n" +
		"Tag,Count\n" +
		"\n" +
		"Port/Protocol Combination Counts:\n" +
		"Port,Protocol,Count\n"
	if string(report) != expected {
		t.Errorf("Empty-input report mismatch.\nGot:\n%q", report)
	}
}

// Processing the same input with different chunk sizes and worker counts
// must yield byte-identical reports.
func TestRun_MergeOrderInvariance(t *testing.T) {
	var flowLog strings.Builder
	for i := 0; i < 500; i++ {
		flowLog.WriteString(record(fmt.Sprintf("%d", 20+i%7), []string{"6", "17", "1", "999"}[i%4]))
		flowLog.WriteString("\n")
		if i%11 == 0 {
			flowLog.WriteString("short malformed line\n")
		}
	}
	lookupCSV := "dstport,protocol,tag\n22,tcp,ssh\n23,udp,sv_p3\n25,icmp,ping\n"

	var baseline []byte
	for _, tc := range []struct {
		chunkSize  int
		numWorkers int
	}{
		{chunkSize: 1, numWorkers: 1},
		{chunkSize: 7, numWorkers: 4},
		{chunkSize: 100, numWorkers: 2},
		{chunkSize: 100000, numWorkers: 8},
	} {
		cfg := config.Default()
		cfg.Parser.ChunkSize = tc.chunkSize
		cfg.Parser.NumWorkers = tc.numWorkers

		report := runPipeline(t, cfg, flowLog.String(), lookupCSV)
		if baseline == nil {
			baseline = report
			continue
		}
		if !bytes.Equal(report, baseline) {
			t.Errorf("Report differs for chunk_size=%d workers=%d.\nGot:\n%s\nBaseline:\n%s",
				tc.chunkSize, tc.numWorkers, report, baseline)
		}
	}
}

// sum(tag counts) == sum(port/protocol counts) == number of well-formed lines.
func TestRun_CountConservation(t *testing.T) {
	wellFormed := 200
	var flowLog strings.Builder
	for i := 0; i < wellFormed; i++ {
		flowLog.WriteString(record(fmt.Sprintf("%d", 1000+i%13), "6"))
		flowLog.WriteString("\n")
	}
	for i := 0; i < 37; i++ {
		flowLog.WriteString("bad line\n")
	}

	dir := t.TempDir()
	flowPath := writeFile(t, dir, "flow.log", flowLog.String())
	lookupPath := writeFile(t, dir, "lookup.csv", "dstport,protocol,tag\n1000,tcp,sv_p1\n")
	outputPath := filepath.Join(dir, "report.txt")

	cfg := config.Default()
	cfg.Parser.ChunkSize = 64

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer m.Close()

	summary, err := m.Run(flowPath, lookupPath, outputPath)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.TotalRecords != uint64(wellFormed) {
		t.Errorf("Expected %d total records, got %d", wellFormed, summary.TotalRecords)
	}
	var tagSum, ppSum uint64
	for _, c := range summary.TagCounts {
		tagSum += c
	}
	for _, row := range summary.PortProtocolCounts {
		ppSum += row.Count
	}
	if tagSum != uint64(wellFormed) || ppSum != uint64(wellFormed) {
		t.Errorf("Count conservation violated: tags=%d port/protocol=%d well-formed=%d",
			tagSum, ppSum, wellFormed)
	}
}

func TestRun_MissingFlowLog(t *testing.T) {
	dir := t.TempDir()
	lookupPath := writeFile(t, dir, "lookup.csv", "dstport,protocol,tag\n25,tcp,sv_p1\n")

	m, err := NewManager(config.Default())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer m.Close()

	if _, err := m.Run(filepath.Join(dir, "missing.log"), lookupPath, filepath.Join(dir, "out.txt")); err == nil {
		t.Fatal("Expected error for missing flow log, got nil")
	}
}

func TestRun_MalformedLookupTable(t *testing.T) {
	dir := t.TempDir()
	flowPath := writeFile(t, dir, "flow.log", record("25", "6")+"\n")
	lookupPath := writeFile(t, dir, "lookup.csv", "dstport,tag\n25,sv_p1\n")

	m, err := NewManager(config.Default())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer m.Close()

	if _, err := m.Run(flowPath, lookupPath, filepath.Join(dir, "out.txt")); err == nil {
		t.Fatal("Expected error for lookup table without protocol column, got nil")
	}
}

func TestRun_UnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	flowPath := writeFile(t, dir, "flow.log", record("25", "6")+"\n")
	lookupPath := writeFile(t, dir, "lookup.csv", "dstport,protocol,tag\n25,tcp,sv_p1\n")

	m, err := NewManager(config.Default())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer m.Close()

	if _, err := m.Run(flowPath, lookupPath, filepath.Join(dir, "no", "such", "dir", "out.txt")); err == nil {
		t.Fatal("Expected error for unwritable output path, got nil")
	}
}

// A run with the gob writer enabled persists a snapshot alongside the report.
func TestRun_GobWriterEnabled(t *testing.T) {
	dir := t.TempDir()
	flowPath := writeFile(t, dir, "flow.log", record("25", "6")+"\n")
	lookupPath := writeFile(t, dir, "lookup.csv", "dstport,protocol,tag\n25,tcp,sv_p1\n")
	snapshotRoot := filepath.Join(dir, "snapshots")

	cfg := config.Default()
	cfg.Writers = []config.WriterDef{
		{Type: "gob", Enabled: true, Gob: config.GobConfig{RootPath: snapshotRoot}},
	}

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer m.Close()

	if _, err := m.Run(flowPath, lookupPath, filepath.Join(dir, "out.txt")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	runs, err := os.ReadDir(snapshotRoot)
	if err != nil || len(runs) != 1 {
		t.Fatalf("Expected one snapshot directory, got %d (err=%v)", len(runs), err)
	}
	if _, err := os.Stat(filepath.Join(snapshotRoot, runs[0].Name(), "summary.json")); err != nil {
		t.Errorf("summary.json was not created: %v", err)
	}
}
