package reservation

import (
	"context"
	"errors"
	"strings"
	"time"

	"campusnest/internal/domain/shared/events"
	"campusnest/internal/domain/shared/timerange"
)

var (
	ErrNotFound      = errors.New("reservation: not found")
	ErrForbidden     = errors.New("reservation: caller may not perform this action")
	ErrStateConflict = errors.New("reservation: status no longer permits this transition")
	ErrConflict      = errors.New("reservation: dates overlap an approved reservation")
	ErrStartInPast   = errors.New("reservation: start date is in the past")
	ErrRequesterID   = errors.New("reservation: requester id required")
	ErrUnitID        = errors.New("reservation: unit id required")
	ErrPropertyID    = errors.New("reservation: property id required")
)

type ReservationID string

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// Reservation is a student's request to occupy a unit for a date range. It only
// carries identifiers of the unit, property and requester; the catalog and
// identity collaborators resolve them on demand. Records are never deleted:
// cancellation is a terminal status, so an id is never ambiguously reused.
type Reservation struct {
	ID            ReservationID
	UnitID        string
	PropertyID    string
	RequesterID   string
	Range         timerange.TimeRange
	Status        Status
	RequesterNote string
	ResponderNote string
	RespondedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

// Repository persists reservations. Save must fail with ErrStateConflict when
// the stored version differs from the one the caller loaded, so two racing
// transitions on the same reservation cannot both commit.
type Repository interface {
	ByID(ctx context.Context, id ReservationID) (*Reservation, error)
	Save(ctx context.Context, res *Reservation) error
	ListByRequester(ctx context.Context, requesterID string, page Page) ([]*Reservation, error)
	ListByProperty(ctx context.Context, propertyID string, page Page) ([]*Reservation, error)
	ListApprovedForUnit(ctx context.Context, unitID string) ([]*Reservation, error)
}

type CreateParams struct {
	ID            ReservationID
	UnitID        string
	PropertyID    string
	RequesterID   string
	Range         timerange.TimeRange
	RequesterNote string
	CreatedAt     time.Time
}

// NewReservation builds a PENDING reservation, validating every invariant up
// front instead of letting an invalid value exist until a later check.
func NewReservation(params CreateParams) (*Reservation, error) {
	if strings.TrimSpace(params.RequesterID) == "" {
		return nil, ErrRequesterID
	}
	if strings.TrimSpace(params.UnitID) == "" {
		return nil, ErrUnitID
	}
	if strings.TrimSpace(params.PropertyID) == "" {
		return nil, ErrPropertyID
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	if params.Range.Start.Before(timerange.Day(now)) {
		return nil, ErrStartInPast
	}
	r := &Reservation{
		ID:            params.ID,
		UnitID:        params.UnitID,
		PropertyID:    params.PropertyID,
		RequesterID:   params.RequesterID,
		Range:         params.Range,
		Status:        StatusPending,
		RequesterNote: params.RequesterNote,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.Record(ReservationRequested{ReservationID: r.ID, UnitID: r.UnitID, PropertyID: r.PropertyID, RequesterID: r.RequesterID, Range: r.Range, At: now})
	return r, nil
}

// Approve moves a PENDING reservation to APPROVED and stamps the responder
// fields exactly once. A second approval is an error, never absorbed.
func (r *Reservation) Approve(note string, now time.Time) error {
	if r.Status != StatusPending {
		return ErrStateConflict
	}
	at := now.UTC()
	r.Status = StatusApproved
	r.ResponderNote = note
	r.RespondedAt = &at
	r.UpdatedAt = at
	r.Record(ReservationApproved{ReservationID: r.ID, UnitID: r.UnitID, RequesterID: r.RequesterID, Range: r.Range, At: at})
	return nil
}

// Reject moves a PENDING reservation to REJECTED. A pending request never held
// capacity, so there is no availability side effect to undo.
func (r *Reservation) Reject(note string, now time.Time) error {
	if r.Status != StatusPending {
		return ErrStateConflict
	}
	at := now.UTC()
	r.Status = StatusRejected
	r.ResponderNote = note
	r.RespondedAt = &at
	r.UpdatedAt = at
	r.Record(ReservationRejected{ReservationID: r.ID, UnitID: r.UnitID, RequesterID: r.RequesterID, At: at})
	return nil
}

// Cancel ends a PENDING or APPROVED reservation. It reports whether the
// reservation held capacity (was APPROVED), so the caller knows to release the
// unit's availability flag in the same unit of work.
func (r *Reservation) Cancel(now time.Time) (heldCapacity bool, err error) {
	switch r.Status {
	case StatusPending, StatusApproved:
	default:
		return false, ErrStateConflict
	}
	heldCapacity = r.Status == StatusApproved
	at := now.UTC()
	r.Status = StatusCancelled
	r.UpdatedAt = at
	r.Record(ReservationCancelled{ReservationID: r.ID, UnitID: r.UnitID, RequesterID: r.RequesterID, HeldCapacity: heldCapacity, At: at})
	return heldCapacity, nil
}

// Page bounds list queries.
type Page struct {
	Offset int
	Limit  int
}

const defaultPageLimit = 20

func (p Page) Normalized() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = defaultPageLimit
	}
	return p
}
