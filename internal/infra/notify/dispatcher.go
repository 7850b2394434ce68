package notify

import (
	"context"
	"log/slog"

	"campusnest/internal/app/outbox"
	"campusnest/internal/app/policies"
)

// LogDispatcher announces reservation lifecycle events on the structured
// log. Delivery is best effort so a broken channel never disturbs a
// committed booking.
type LogDispatcher struct {
	Logger *slog.Logger
}

var _ policies.NotificationDispatcher = (*LogDispatcher)(nil)

func (d *LogDispatcher) Dispatch(ctx context.Context, record outbox.EventRecord) {
	switch record.Name {
	case "reservation.requested":
		d.Logger.InfoContext(ctx, "notify landlord: new booking request",
			"event_id", record.ID, "reservation_id", record.Aggregate)
	case "reservation.approved":
		d.Logger.InfoContext(ctx, "notify student: booking approved",
			"event_id", record.ID, "reservation_id", record.Aggregate)
	case "reservation.rejected":
		d.Logger.InfoContext(ctx, "notify student: booking rejected",
			"event_id", record.ID, "reservation_id", record.Aggregate)
	case "reservation.cancelled":
		d.Logger.InfoContext(ctx, "notify landlord: booking cancelled",
			"event_id", record.ID, "reservation_id", record.Aggregate)
	default:
		d.Logger.DebugContext(ctx, "unhandled notification event",
			"event", record.Name, "event_id", record.ID)
	}
}

// BrokerDispatcher forwards event records to a message broker. Publish
// failures are logged and absorbed; the durable outbox path retries them.
type BrokerDispatcher struct {
	Publisher interface {
		Publish(ctx context.Context, name string, key string, payload []byte, headers map[string]string) error
	}
	Logger *slog.Logger
}

var _ policies.NotificationDispatcher = (*BrokerDispatcher)(nil)

func (d *BrokerDispatcher) Dispatch(ctx context.Context, record outbox.EventRecord) {
	if err := d.Publisher.Publish(ctx, record.Name, record.Aggregate, record.Payload, record.Headers); err != nil {
		d.Logger.WarnContext(ctx, "notification publish failed",
			"event", record.Name, "event_id", record.ID, "error", err)
	}
}
