package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusnest/internal/domain/reservation"
	"campusnest/internal/domain/shared/timerange"
)

type stubStore struct {
	approved map[string][]*reservation.Reservation
	err      error
}

func (s stubStore) ByID(context.Context, reservation.ReservationID) (*reservation.Reservation, error) {
	return nil, reservation.ErrNotFound
}

func (s stubStore) Save(context.Context, *reservation.Reservation) error { return nil }

func (s stubStore) ListByRequester(context.Context, string, reservation.Page) ([]*reservation.Reservation, error) {
	return nil, nil
}

func (s stubStore) ListByProperty(context.Context, string, reservation.Page) ([]*reservation.Reservation, error) {
	return nil, nil
}

func (s stubStore) ListApprovedForUnit(_ context.Context, unitID string) ([]*reservation.Reservation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.approved[unitID], nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func approvedReservation(id reservation.ReservationID, start, end time.Time) *reservation.Reservation {
	rng, _ := timerange.New(start, end)
	return &reservation.Reservation{ID: id, Status: reservation.StatusApproved, Range: rng}
}

func TestHasApprovedConflict(t *testing.T) {
	store := stubStore{approved: map[string][]*reservation.Reservation{
		"unit-1": {approvedReservation("res-1", date(2026, 9, 10), date(2026, 9, 20))},
	}}
	ix := Index{Store: store}

	overlap, _ := timerange.New(date(2026, 9, 15), date(2026, 9, 25))
	conflict, err := ix.HasApprovedConflict(context.Background(), "unit-1", overlap, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !conflict {
		t.Error("Expected overlapping range to conflict")
	}

	free, _ := timerange.New(date(2026, 10, 1), date(2026, 10, 5))
	conflict, err = ix.HasApprovedConflict(context.Background(), "unit-1", free, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if conflict {
		t.Error("Expected disjoint range to be free")
	}
}

func TestHasApprovedConflict_TouchingDayConflicts(t *testing.T) {
	store := stubStore{approved: map[string][]*reservation.Reservation{
		"unit-1": {approvedReservation("res-1", date(2026, 9, 10), date(2026, 9, 20))},
	}}
	ix := Index{Store: store}

	touching, _ := timerange.New(date(2026, 9, 20), date(2026, 9, 25))
	conflict, err := ix.HasApprovedConflict(context.Background(), "unit-1", touching, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !conflict {
		t.Error("Expected range starting on the occupied end day to conflict")
	}
}

func TestHasApprovedConflict_ExcludesGivenReservation(t *testing.T) {
	store := stubStore{approved: map[string][]*reservation.Reservation{
		"unit-1": {approvedReservation("res-1", date(2026, 9, 10), date(2026, 9, 20))},
	}}
	ix := Index{Store: store}

	same, _ := timerange.New(date(2026, 9, 10), date(2026, 9, 20))
	conflict, err := ix.HasApprovedConflict(context.Background(), "unit-1", same, "res-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if conflict {
		t.Error("Expected the excluded reservation not to conflict with itself")
	}
}

func TestHasApprovedConflict_OtherUnitDoesNotConflict(t *testing.T) {
	store := stubStore{approved: map[string][]*reservation.Reservation{
		"unit-1": {approvedReservation("res-1", date(2026, 9, 10), date(2026, 9, 20))},
	}}
	ix := Index{Store: store}

	overlap, _ := timerange.New(date(2026, 9, 15), date(2026, 9, 25))
	conflict, err := ix.HasApprovedConflict(context.Background(), "unit-2", overlap, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if conflict {
		t.Error("Expected a different unit to be unaffected")
	}
}

func TestHasApprovedConflict_PropagatesStoreError(t *testing.T) {
	wantErr := errors.New("store down")
	ix := Index{Store: stubStore{err: wantErr}}

	rng, _ := timerange.New(date(2026, 9, 1), date(2026, 9, 5))
	_, err := ix.HasApprovedConflict(context.Background(), "unit-1", rng, "")
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected store error to propagate, got %v", err)
	}
}
