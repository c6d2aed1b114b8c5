package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"
)

// protocolCodes maps protocol names to the numeric codes written into the
// generated flow log.
var protocolCodes = map[string]string{
	"tcp":  "6",
	"udp":  "17",
	"icmp": "1",
}

func main() {
	lookupFile := flag.String("lookup", "lookup_table.csv", "Output lookup table CSV path")
	logFile := flag.String("log", "flow_log_file", "Output flow log path")
	numMappings := flag.Int("mappings", 10000, "Number of lookup mappings to generate")
	numEntries := flag.Int("entries", 1000000, "Number of flow log entries to generate")
	malformed := flag.Bool("malformed", true, "Salt the flow log with malformed lines")
	flag.Parse()

	rand.Seed(time.Now().UnixNano())

	mappings := generateLookupTable(*lookupFile, *numMappings)
	generateFlowLog(*logFile, mappings, *numEntries, *malformed)
}

type mapping struct {
	dstPort  string
	protocol string
}

// generateLookupTable writes a random lookup table and returns the generated
// (dstport, protocol) pairs so the flow log can reuse them.
func generateLookupTable(filePath string, numMappings int) []mapping {
	protocols := []string{"tcp", "udp", "icmp"}

	file, err := os.Create(filePath)
	if err != nil {
		log.Fatalf("Failed to create lookup table file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"dstport", "protocol", "tag"}); err != nil {
		log.Fatalf("Failed to write lookup table header: %v", err)
	}

	mappings := make([]mapping, 0, numMappings)
	for i := 0; i < numMappings; i++ {
		m := mapping{
			dstPort:  strconv.Itoa(rand.Intn(65535) + 1),
			protocol: protocols[rand.Intn(len(protocols))],
		}
		tag := fmt.Sprintf("sv_p%d", rand.Intn(100)+1)
		if err := writer.Write([]string{m.dstPort, m.protocol, tag}); err != nil {
			log.Fatalf("Failed to write lookup table row: %v", err)
		}
		mappings = append(mappings, m)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Fatalf("Failed to flush lookup table: %v", err)
	}

	log.Printf("Lookup table generated at '%s' with %d mappings.", filePath, numMappings)
	return mappings
}

// generateFlowLog writes numEntries whitespace-delimited records. Ports and
// protocols are drawn from the lookup mappings so most records classify to a
// tag; with malformed enabled, roughly 5% of lines are truncated below the
// 14-field minimum.
func generateFlowLog(filePath string, mappings []mapping, numEntries int, malformed bool) {
	if len(mappings) == 0 {
		log.Fatalf("Lookup table is empty. Cannot generate flow log.")
	}

	actions := []string{"allow", "deny", "drop"}

	file, err := os.Create(filePath)
	if err != nil {
		log.Fatalf("Failed to create flow log file: %v", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	startTime := time.Now()

	for i := 0; i < numEntries; i++ {
		if (i+1)%100000 == 0 {
			log.Printf("Generated %d entries...", i+1)
		}

		m := mappings[rand.Intn(len(mappings))]
		protocolNum, ok := protocolCodes[m.protocol]
		if !ok {
			protocolNum = "999"
		}

		fields := []string{
			startTime.Add(time.Duration(i) * time.Second).Format("2006-01-02T15:04:05Z"),
			randomIP(),
			strconv.Itoa(rand.Intn(65535-1024) + 1024),
			randomIP(),
			"0",
			m.dstPort,
			protocolNum,
			actions[rand.Intn(len(actions))],
			"value1", "value2", "value3", "value4", "value5", "value6",
		}

		if malformed && rand.Float64() < 0.05 {
			fields = fields[:rand.Intn(9)+5] // between 5 and 13 fields
		}

		for j, f := range fields {
			if j > 0 {
				w.WriteByte(' ')
			}
			w.WriteString(f)
		}
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		log.Fatalf("Failed to write flow log file: %v", err)
	}
	log.Printf("Flow log file generated at '%s' with %d entries.", filePath, numEntries)
}

func randomIP() string {
	return fmt.Sprintf("%d.%d.%d.%d", rand.Intn(256), rand.Intn(256), rand.Intn(256), rand.Intn(256))
}
