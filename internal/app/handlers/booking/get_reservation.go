package booking

import (
	"context"
	"errors"
	"log/slog"

	"campusnest/internal/app/dto"
	handlersupport "campusnest/internal/app/handlers/support"
	"campusnest/internal/app/queries"
	"campusnest/internal/app/uow"
	domainreservation "campusnest/internal/domain/reservation"
)

const getReservationKey = "booking.get"

type GetReservationQuery struct {
	ReservationID string
	CallerID      string
	CallerIsAdmin bool
}

func (q GetReservationQuery) Key() string { return getReservationKey }

type GetReservationHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *GetReservationHandler) Handle(ctx context.Context, q GetReservationQuery) (dto.Reservation, error) {
	if q.ReservationID == "" {
		return dto.Reservation{}, errors.New("reservation id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Reservation{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	res, err := unit.Reservations().ByID(execCtx, domainreservation.ReservationID(q.ReservationID))
	if err != nil {
		return dto.Reservation{}, err
	}

	rentable, err := unit.Catalog().Unit(execCtx, res.UnitID)
	ownerID := ""
	if err == nil {
		ownerID = rentable.OwnerID
	} else if h.Logger != nil {
		h.Logger.Warn("unit snapshot missing for reservation", "reservation_id", res.ID, "unit_id", res.UnitID, "error", err)
	}

	if !domainreservation.CanView(res, ownerID, q.CallerID, q.CallerIsAdmin) {
		return dto.Reservation{}, domainreservation.ErrForbidden
	}

	return dto.MapReservation(res, rentable), nil
}

var _ queries.Handler[GetReservationQuery, dto.Reservation] = (*GetReservationHandler)(nil)
