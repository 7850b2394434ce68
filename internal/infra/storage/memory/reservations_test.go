package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domainavailability "campusnest/internal/domain/availability"
	domainreservation "campusnest/internal/domain/reservation"
	"campusnest/internal/domain/shared/timerange"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func newStoredReservation(t *testing.T, repo *ReservationRepository, id string, created time.Time) *domainreservation.Reservation {
	t.Helper()
	rng, err := timerange.New(testNow.AddDate(0, 0, 7), testNow.AddDate(0, 0, 14))
	if err != nil {
		t.Fatalf("building range: %v", err)
	}
	res, err := domainreservation.NewReservation(domainreservation.CreateParams{
		ID:          domainreservation.ReservationID(id),
		UnitID:      "unit-1",
		PropertyID:  "prop-1",
		RequesterID: "student-1",
		Range:       rng,
		CreatedAt:   created,
	})
	if err != nil {
		t.Fatalf("building reservation: %v", err)
	}
	if err := repo.Save(context.Background(), res); err != nil {
		t.Fatalf("saving reservation: %v", err)
	}
	return res
}

func TestSave_RoundTrip(t *testing.T) {
	repo := NewReservationRepository()
	res := newStoredReservation(t, repo, "res-1", testNow)

	loaded, err := repo.ByID(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if loaded.Status != domainreservation.StatusPending {
		t.Errorf("Expected PENDING, got %s", loaded.Status)
	}
	if loaded.Version != 1 {
		t.Errorf("Expected version 1 after first save, got %d", loaded.Version)
	}
	if len(loaded.PendingEvents()) != 0 {
		t.Error("Expected loaded reservation to carry no pending events")
	}
}

func TestByID_NotFound(t *testing.T) {
	repo := NewReservationRepository()
	if _, err := repo.ByID(context.Background(), "missing"); !errors.Is(err, domainreservation.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSave_VersionConflict(t *testing.T) {
	repo := NewReservationRepository()
	res := newStoredReservation(t, repo, "res-1", testNow)

	first, err := repo.ByID(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, err := repo.ByID(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := first.Approve("", testNow); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := repo.Save(context.Background(), first); err != nil {
		t.Fatalf("Expected first save to succeed, got: %v", err)
	}

	if err := second.Reject("", testNow); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := repo.Save(context.Background(), second); !errors.Is(err, domainreservation.ErrStateConflict) {
		t.Errorf("Expected ErrStateConflict for stale version, got %v", err)
	}

	loaded, _ := repo.ByID(context.Background(), res.ID)
	if loaded.Status != domainreservation.StatusApproved {
		t.Errorf("Expected the first transition to win, got %s", loaded.Status)
	}
}

func TestListByRequester_OrderAndPaging(t *testing.T) {
	repo := NewReservationRepository()
	for i := 0; i < 5; i++ {
		newStoredReservation(t, repo, fmt.Sprintf("res-%d", i), testNow.Add(time.Duration(i)*time.Hour))
	}

	page1, err := repo.ListByRequester(context.Background(), "student-1", domainreservation.Page{Limit: 2})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(page1))
	}
	if page1[0].ID != "res-4" || page1[1].ID != "res-3" {
		t.Errorf("Expected newest first, got %s, %s", page1[0].ID, page1[1].ID)
	}

	page3, err := repo.ListByRequester(context.Background(), "student-1", domainreservation.Page{Offset: 4, Limit: 2})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(page3) != 1 || page3[0].ID != "res-0" {
		t.Errorf("Expected the last page to hold res-0, got %v", page3)
	}

	empty, err := repo.ListByRequester(context.Background(), "student-2", domainreservation.Page{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected no results for another requester, got %d", len(empty))
	}
}

func TestListApprovedForUnit_FiltersStatusAndUnit(t *testing.T) {
	repo := NewReservationRepository()
	approved := newStoredReservation(t, repo, "res-approved", testNow)
	if err := approved.Approve("", testNow); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := repo.Save(context.Background(), approved); err != nil {
		t.Fatalf("save approved: %v", err)
	}
	newStoredReservation(t, repo, "res-pending", testNow)

	got, err := repo.ListApprovedForUnit(context.Background(), "unit-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(got) != 1 || got[0].ID != "res-approved" {
		t.Errorf("Expected only the approved reservation, got %v", got)
	}

	other, err := repo.ListApprovedForUnit(context.Background(), "unit-2")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Expected no approved reservations for unit-2, got %d", len(other))
	}
}

func TestListApprovedForUnit_ScansEveryReservation(t *testing.T) {
	repo := NewReservationRepository()
	const count = 101
	var oldest timerange.TimeRange
	for i := 1; i <= count; i++ {
		start := testNow.AddDate(0, 0, i*3)
		rng, err := timerange.New(start, start.AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("building range %d: %v", i, err)
		}
		if i == 1 {
			oldest = rng
		}
		res, err := domainreservation.NewReservation(domainreservation.CreateParams{
			ID:          domainreservation.ReservationID(fmt.Sprintf("res-%03d", i)),
			UnitID:      "unit-1",
			PropertyID:  "prop-1",
			RequesterID: "student-1",
			Range:       rng,
			CreatedAt:   testNow.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("building reservation %d: %v", i, err)
		}
		if err := res.Approve("", testNow); err != nil {
			t.Fatalf("approving reservation %d: %v", i, err)
		}
		if err := repo.Save(context.Background(), res); err != nil {
			t.Fatalf("saving reservation %d: %v", i, err)
		}
	}

	got, err := repo.ListApprovedForUnit(context.Background(), "unit-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(got) != count {
		t.Fatalf("Expected all %d approved reservations, got %d", count, len(got))
	}

	ix := domainavailability.Index{Store: repo}
	conflict, err := ix.HasApprovedConflict(context.Background(), "unit-1", oldest, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !conflict {
		t.Error("Expected a conflict with the oldest approved reservation")
	}
}
