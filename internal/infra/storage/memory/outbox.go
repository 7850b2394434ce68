package memory

import (
	"context"
	"sync"

	appoutbox "campusnest/internal/app/outbox"
	"campusnest/internal/app/policies"
)

// Outbox buffers event records until Flush, which hands them to the
// configured dispatcher. Dispatch is best effort: the dispatcher swallows its
// own failures, so a notification problem never surfaces to the lifecycle
// operation that produced the event.
type Outbox struct {
	mu         sync.Mutex
	records    []appoutbox.EventRecord
	Dispatcher policies.NotificationDispatcher
}

func NewOutbox(dispatcher policies.NotificationDispatcher) *Outbox {
	return &Outbox{Dispatcher: dispatcher}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	drained := o.records
	o.records = nil
	o.mu.Unlock()

	if o.Dispatcher == nil {
		return nil
	}
	for _, record := range drained {
		o.Dispatcher.Dispatch(ctx, record)
	}
	return nil
}

var _ appoutbox.Outbox = (*Outbox)(nil)
