package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"campusnest/internal/app/commands"
	"campusnest/internal/app/dto"
	"campusnest/internal/app/outbox"
	"campusnest/internal/app/policies"
	"campusnest/internal/app/uow"
	domainavailability "campusnest/internal/domain/availability"
	domainreservation "campusnest/internal/domain/reservation"
)

const (
	approveReservationKey = "booking.approve"
	rejectReservationKey  = "booking.reject"
)

type ApproveReservationCommand struct {
	ReservationID string
	OwnerID       string
	ResponderNote string
}

func (c ApproveReservationCommand) Key() string { return approveReservationKey }

type RejectReservationCommand struct {
	ReservationID string
	OwnerID       string
	ResponderNote string
}

func (c RejectReservationCommand) Key() string { return rejectReservationKey }

// ApproveReservationHandler commits capacity. Pending requests reserve
// nothing, so the conflict check runs again here: of two overlapping pending
// requests the first approval wins and the second gets ErrConflict to relay
// back to the owner.
type ApproveReservationHandler struct {
	Locks   policies.UnitLocker
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *ApproveReservationHandler) Handle(ctx context.Context, cmd ApproveReservationCommand) (*dto.Reservation, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	res, err := unit.Reservations().ByID(ctx, domainreservation.ReservationID(cmd.ReservationID))
	if err != nil {
		return nil, err
	}
	rentable, err := unit.Catalog().Unit(ctx, res.UnitID)
	if err != nil {
		return nil, err
	}
	if !domainreservation.CanRespond(rentable.OwnerID, cmd.OwnerID) {
		return nil, domainreservation.ErrForbidden
	}

	if h.Locks != nil {
		defer policies.HoldUnitLock(ctx, h.Locks, res.UnitID)()
	}

	index := domainavailability.Index{Store: unit.Reservations()}
	conflict, err := index.HasApprovedConflict(ctx, res.UnitID, res.Range, res.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, domainreservation.ErrConflict
	}

	now := time.Now().UTC()
	if err := res.Approve(strings.TrimSpace(cmd.ResponderNote), now); err != nil {
		return nil, err
	}
	if err := unit.Reservations().Save(ctx, res); err != nil {
		return nil, err
	}
	if err := unit.Catalog().SetUnitAvailable(ctx, res.UnitID, false); err != nil {
		return nil, err
	}

	pending := res.PendingEvents()
	res.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("reservation approved", "reservation_id", res.ID, "unit_id", res.UnitID, "owner_id", cmd.OwnerID)
	}

	rentable.Available = false
	mapped := dto.MapReservation(res, rentable)
	return &mapped, nil
}

// RejectReservationHandler declines a pending request. No availability side
// effect: PENDING never reserved capacity.
type RejectReservationHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *RejectReservationHandler) Handle(ctx context.Context, cmd RejectReservationCommand) (*dto.Reservation, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	res, err := unit.Reservations().ByID(ctx, domainreservation.ReservationID(cmd.ReservationID))
	if err != nil {
		return nil, err
	}
	rentable, err := unit.Catalog().Unit(ctx, res.UnitID)
	if err != nil {
		return nil, err
	}
	if !domainreservation.CanRespond(rentable.OwnerID, cmd.OwnerID) {
		return nil, domainreservation.ErrForbidden
	}

	now := time.Now().UTC()
	if err := res.Reject(strings.TrimSpace(cmd.ResponderNote), now); err != nil {
		return nil, err
	}
	if err := unit.Reservations().Save(ctx, res); err != nil {
		return nil, err
	}

	pending := res.PendingEvents()
	res.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("reservation rejected", "reservation_id", res.ID, "unit_id", res.UnitID, "owner_id", cmd.OwnerID)
	}

	mapped := dto.MapReservation(res, rentable)
	return &mapped, nil
}

func encoderOrDefault(enc outbox.EventEncoder) outbox.EventEncoder {
	if enc != nil {
		return enc
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[ApproveReservationCommand, *dto.Reservation] = (*ApproveReservationHandler)(nil)
var _ commands.Handler[RejectReservationCommand, *dto.Reservation] = (*RejectReservationHandler)(nil)
