package policies

import (
	"context"

	"campusnest/internal/app/outbox"
)

// IdentityPort is the thin view onto the external identity service. The
// booking core never loads user records; it only asks whether an id exists.
type IdentityPort interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// NotificationDispatcher receives committed reservation events. Delivery is
// best effort: implementations log failures and never return them to the
// lifecycle operation that produced the event.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, record outbox.EventRecord)
}

// UnitLocker serializes the check-then-write sequence per unit id. The scope
// is one unit, never global, so unrelated units are not serialized against
// each other.
type UnitLocker interface {
	LockUnit(unitID string) (release func())
}
