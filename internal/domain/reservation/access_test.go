package reservation

import "testing"

func TestCanView(t *testing.T) {
	res := newTestReservation(t)

	if !CanView(res, "landlord-1", "student-1", false) {
		t.Error("Expected requester to view their own reservation")
	}
	if !CanView(res, "landlord-1", "landlord-1", false) {
		t.Error("Expected property owner to view the reservation")
	}
	if !CanView(res, "landlord-1", "admin-1", true) {
		t.Error("Expected admin to view any reservation")
	}
	if CanView(res, "landlord-1", "stranger", false) {
		t.Error("Expected unrelated caller to be denied")
	}
	if CanView(res, "", "", false) {
		t.Error("Expected empty caller id to be denied")
	}
	if CanView(nil, "landlord-1", "student-1", false) {
		t.Error("Expected nil reservation to be denied")
	}
}

func TestCanRespond(t *testing.T) {
	if !CanRespond("landlord-1", "landlord-1") {
		t.Error("Expected owner to respond")
	}
	if CanRespond("landlord-1", "landlord-2") {
		t.Error("Expected other landlord to be denied")
	}
	if CanRespond("", "") {
		t.Error("Expected empty ids to be denied")
	}
}

func TestCanCancel(t *testing.T) {
	res := newTestReservation(t)
	if !CanCancel(res, "student-1") {
		t.Error("Expected requester to cancel")
	}
	if CanCancel(res, "landlord-1") {
		t.Error("Expected non-requester to be denied")
	}
}
