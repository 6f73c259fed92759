package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store persists result records.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context, limit int) ([]Event, error)
}

// Publisher hands result records to a buffered inbox consumed by the Worker.
// Publishing never blocks an authorized operation: when the inbox is full the
// record is dropped and counted, which is preferable to stalling mints on a
// slow event sink.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

// NewPublisher creates a publisher writing into inbox.
func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

// Publish stamps and enqueues a record.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "event inbox full, dropping record",
			"event_type", event.Type,
			"event_id", event.ID,
		)
	}
}
