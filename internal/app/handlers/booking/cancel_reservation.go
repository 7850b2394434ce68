package booking

import (
	"context"
	"log/slog"
	"time"

	"campusnest/internal/app/commands"
	"campusnest/internal/app/dto"
	"campusnest/internal/app/outbox"
	"campusnest/internal/app/policies"
	"campusnest/internal/app/uow"
	domainreservation "campusnest/internal/domain/reservation"
)

const cancelReservationKey = "booking.cancel"

type CancelReservationCommand struct {
	ReservationID string
	RequesterID   string
}

func (c CancelReservationCommand) Key() string { return cancelReservationKey }

// CancelReservationHandler lets the original requester end a reservation from
// PENDING or APPROVED. When the reservation held capacity the unit flag is
// released in the same unit of work as the status write.
type CancelReservationHandler struct {
	Locks   policies.UnitLocker
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CancelReservationHandler) Handle(ctx context.Context, cmd CancelReservationCommand) (*dto.Reservation, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	res, err := unit.Reservations().ByID(ctx, domainreservation.ReservationID(cmd.ReservationID))
	if err != nil {
		return nil, err
	}
	if !domainreservation.CanCancel(res, cmd.RequesterID) {
		return nil, domainreservation.ErrForbidden
	}

	if h.Locks != nil {
		defer policies.HoldUnitLock(ctx, h.Locks, res.UnitID)()
	}

	heldCapacity, err := res.Cancel(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := unit.Reservations().Save(ctx, res); err != nil {
		return nil, err
	}
	if heldCapacity {
		if err := unit.Catalog().SetUnitAvailable(ctx, res.UnitID, true); err != nil {
			return nil, err
		}
	}

	pending := res.PendingEvents()
	res.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("reservation cancelled", "reservation_id", res.ID, "unit_id", res.UnitID, "held_capacity", heldCapacity)
	}

	mapped := dto.MapReservation(res, nil)
	return &mapped, nil
}

var _ commands.Handler[CancelReservationCommand, *dto.Reservation] = (*CancelReservationHandler)(nil)
