package publish

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"FlowSpectra/internal/config"
	"FlowSpectra/internal/model"
)

// Publisher publishes the run summary to a NATS subject so downstream
// consumers can react to completed parses without polling the report file.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(cfg config.PublisherConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Publish serializes the summary to JSON and publishes it to the configured
// NATS subject.
func (p *Publisher) Publish(summary *model.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
