package reservation

import (
	"time"

	"campusnest/internal/domain/shared/timerange"
)

type ReservationRequested struct {
	ReservationID ReservationID
	UnitID        string
	PropertyID    string
	RequesterID   string
	Range         timerange.TimeRange
	At            time.Time
}

func (e ReservationRequested) EventName() string     { return "reservation.requested" }
func (e ReservationRequested) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationRequested) OccurredAt() time.Time { return e.At }

type ReservationApproved struct {
	ReservationID ReservationID
	UnitID        string
	RequesterID   string
	Range         timerange.TimeRange
	At            time.Time
}

func (e ReservationApproved) EventName() string     { return "reservation.approved" }
func (e ReservationApproved) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationApproved) OccurredAt() time.Time { return e.At }

type ReservationRejected struct {
	ReservationID ReservationID
	UnitID        string
	RequesterID   string
	At            time.Time
}

func (e ReservationRejected) EventName() string     { return "reservation.rejected" }
func (e ReservationRejected) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationRejected) OccurredAt() time.Time { return e.At }

type ReservationCancelled struct {
	ReservationID ReservationID
	UnitID        string
	RequesterID   string
	HeldCapacity  bool
	At            time.Time
}

func (e ReservationCancelled) EventName() string     { return "reservation.cancelled" }
func (e ReservationCancelled) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationCancelled) OccurredAt() time.Time { return e.At }
