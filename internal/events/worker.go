package events

import (
	"context"
	"log/slog"
)

// Worker consumes result records from the inbox and persists them. A store
// failure is logged and the worker keeps draining; records are observability
// output, not engine state, so they must never wedge the pipeline.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

// NewWorker creates a worker draining inbox into store.
func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run consumes records until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "persist event failed",
					"event_type", event.Type,
					"event_id", event.ID,
					"error", err,
				)
			}
		}
	}
}
