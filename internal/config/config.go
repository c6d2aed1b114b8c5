package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultChunkSize is the number of log lines per chunk when the config does
// not override it.
const DefaultChunkSize = 100000

// ParserConfig holds the tunables of the chunked processing pipeline.
type ParserConfig struct {
	ChunkSize           int `yaml:"chunk_size"`
	NumWorkers          int `yaml:"num_workers"` // 0 = number of CPUs
	SizeOfChunkChannel  int `yaml:"size_of_chunk_channel"`
	SizeOfResultChannel int `yaml:"size_of_result_channel"`
}

// ClickHouseConfig holds the connection settings for the ClickHouse writer.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// GobConfig holds the settings for the gob snapshot writer.
type GobConfig struct {
	RootPath string `yaml:"root_path"`
}

// WriterDef defines a single secondary writer from the config file.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	Gob        GobConfig        `yaml:"gob"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// PublisherConfig holds the settings for the NATS summary publisher.
type PublisherConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Parser    ParserConfig    `yaml:"parser"`
	Writers   []WriterDef     `yaml:"writers"`
	Publisher PublisherConfig `yaml:"publisher"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Parser: ParserConfig{
			ChunkSize:           DefaultChunkSize,
			NumWorkers:          0,
			SizeOfChunkChannel:  4,
			SizeOfResultChannel: 16,
		},
	}
}

// LoadConfig reads the configuration from a YAML file and returns a Config
// struct. Fields left unset fall back to the defaults.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if cfg.Parser.ChunkSize <= 0 {
		cfg.Parser.ChunkSize = DefaultChunkSize
	}
	if cfg.Parser.SizeOfChunkChannel <= 0 {
		cfg.Parser.SizeOfChunkChannel = 4
	}
	if cfg.Parser.SizeOfResultChannel <= 0 {
		cfg.Parser.SizeOfResultChannel = 16
	}

	return cfg, nil
}
