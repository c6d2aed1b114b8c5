package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"FlowSpectra/internal/config"
	"FlowSpectra/internal/engine/manager"
)

func main() {
	configPath := flag.String("config", "", "Optional path to a YAML config file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-config config.yaml] <flow_log_file> <lookup_csv_file> <output_file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// 1. Get the input, lookup and output paths from command-line arguments.
	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(1)
	}
	flowLogPath := flag.Arg(0)
	lookupPath := flag.Arg(1)
	outputPath := flag.Arg(2)

	// 2. Load configuration. Without -config the built-in defaults apply.
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
		log.Println("Configuration loaded successfully.")
	}

	// 3. Initialize the pipeline manager.
	managerImpl, err := manager.NewManager(cfg)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}
	defer managerImpl.Close()

	// 4. Run the parse.
	summary, err := managerImpl.Run(flowLogPath, lookupPath, outputPath)
	if err != nil {
		log.Fatalf("Failed to process flow log: %v", err)
	}

	fmt.Printf("Processing complete. Output written to '%s'. Time taken: %.2f seconds.\n",
		outputPath, summary.Elapsed.Seconds())
}
