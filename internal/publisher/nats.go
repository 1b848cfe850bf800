// Package publisher emits report lifecycle events over NATS.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/crewsight/nonengage/internal/bot"
)

// SubjectReportCompleted is the subject completed-report events go to.
const SubjectReportCompleted = "reports.completed"

// NATSClient interface to allow mocking
type NATSClient interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher implements bot.EventPublisher
type NATSPublisher struct {
	nc NATSClient
}

// NewNATSPublisher creates a new publisher
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: conn}
}

// PublishReportCompleted publishes a completed-report event
func (p *NATSPublisher) PublishReportCompleted(_ context.Context, event bot.ReportCompletedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.nc.Publish(SubjectReportCompleted, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}
