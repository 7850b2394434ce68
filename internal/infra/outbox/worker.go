package outbox

import (
	"context"
	"log/slog"
	"time"
)

// Publisher sends one serialized event to the broker.
type Publisher interface {
	Publish(ctx context.Context, name string, key string, payload []byte, headers map[string]string) error
}

// Worker drains the persisted outbox and hands records to the broker,
// keeping failed deliveries around for retry with growing backoff.
type Worker struct {
	Store    *Store
	Producer Publisher
	Logger   *slog.Logger
	ID       string
	Poll     time.Duration
	Backoff  []time.Duration
}

func (w *Worker) Run(ctx context.Context) {
	poll := w.Poll
	if poll <= 0 {
		poll = 2 * time.Second
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		doc, err := w.Store.Claim(ctx, w.ID)
		if err != nil {
			w.Logger.Error("outbox claim failed", "error", err)
			return
		}
		if doc == nil {
			return
		}
		if err := w.Producer.Publish(ctx, doc.Name, doc.Aggregate, doc.Payload, doc.Headers); err != nil {
			next := time.Now().UTC().Add(w.backoffFor(doc.Attempts))
			w.Logger.Warn("outbox publish failed",
				"event_id", doc.ID,
				"event", doc.Name,
				"attempts", doc.Attempts+1,
				"error", err,
			)
			if markErr := w.Store.MarkFailed(ctx, doc.ID, next, err.Error()); markErr != nil {
				w.Logger.Error("outbox mark failed", "event_id", doc.ID, "error", markErr)
			}
			continue
		}
		if err := w.Store.MarkSent(ctx, doc.ID); err != nil {
			w.Logger.Error("outbox mark sent failed", "event_id", doc.ID, "error", err)
			continue
		}
		w.Logger.Debug("outbox event delivered", "event_id", doc.ID, "event", doc.Name)
	}
}

func (w *Worker) backoffFor(attempts int) time.Duration {
	if len(w.Backoff) == 0 {
		return 5 * time.Second
	}
	if attempts >= len(w.Backoff) {
		return w.Backoff[len(w.Backoff)-1]
	}
	return w.Backoff[attempts]
}
