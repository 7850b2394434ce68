package availability

import (
	"context"

	"campusnest/internal/domain/reservation"
	"campusnest/internal/domain/shared/timerange"
)

// Index answers whether a range collides with committed occupancy of a unit.
// Only APPROVED reservations count: a pending request holds no capacity, so
// two overlapping pending requests may coexist and the loser is turned away at
// approval time instead.
type Index struct {
	Store reservation.Repository
}

// HasApprovedConflict scans the unit's approved reservations for an overlap
// with r. exclude skips one reservation id, so an approval re-check does not
// collide with the reservation being approved. The caller must run this inside
// the same serialization boundary as the write that follows it.
func (ix Index) HasApprovedConflict(ctx context.Context, unitID string, r timerange.TimeRange, exclude reservation.ReservationID) (bool, error) {
	approved, err := ix.Store.ListApprovedForUnit(ctx, unitID)
	if err != nil {
		return false, err
	}
	for _, res := range approved {
		if exclude != "" && res.ID == exclude {
			continue
		}
		if res.Range.Overlaps(r) {
			return true, nil
		}
	}
	return false, nil
}
