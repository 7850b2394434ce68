package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"campusnest/internal/app/dto"
	handlersupport "campusnest/internal/app/handlers/support"
	"campusnest/internal/app/queries"
	"campusnest/internal/app/uow"
	domainreservation "campusnest/internal/domain/reservation"
)

const (
	listRequesterReservationsKey = "booking.list.requester"
	listPropertyReservationsKey  = "booking.list.property"
)

type ListRequesterReservationsQuery struct {
	RequesterID string
	Page        domainreservation.Page
}

func (q ListRequesterReservationsQuery) Key() string { return listRequesterReservationsKey }

type ListRequesterReservationsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListRequesterReservationsHandler) Handle(ctx context.Context, q ListRequesterReservationsQuery) (dto.ReservationCollection, error) {
	requesterID := strings.TrimSpace(q.RequesterID)
	if requesterID == "" {
		return dto.ReservationCollection{}, errors.New("requester id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	items, err := unit.Reservations().ListByRequester(execCtx, requesterID, q.Page.Normalized())
	if err != nil {
		return dto.ReservationCollection{}, err
	}

	if h.Logger != nil {
		h.Logger.Debug("requester reservations listed", "requester_id", requesterID, "count", len(items))
	}

	return dto.MapReservations(items), nil
}

type ListPropertyReservationsQuery struct {
	PropertyID string
	OwnerID    string
	Page       domainreservation.Page
}

func (q ListPropertyReservationsQuery) Key() string { return listPropertyReservationsKey }

// ListPropertyReservationsHandler serves the owner's inbox. Ownership is
// checked against the property record, so owners only ever see their own
// properties' requests, including properties with no units yet.
type ListPropertyReservationsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListPropertyReservationsHandler) Handle(ctx context.Context, q ListPropertyReservationsQuery) (dto.ReservationCollection, error) {
	propertyID := strings.TrimSpace(q.PropertyID)
	if propertyID == "" {
		return dto.ReservationCollection{}, errors.New("property id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	property, err := unit.Catalog().Property(execCtx, propertyID)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	if !domainreservation.CanRespond(property.OwnerID, q.OwnerID) {
		return dto.ReservationCollection{}, domainreservation.ErrForbidden
	}

	items, err := unit.Reservations().ListByProperty(execCtx, propertyID, q.Page.Normalized())
	if err != nil {
		return dto.ReservationCollection{}, err
	}

	if h.Logger != nil {
		h.Logger.Debug("property reservations listed", "property_id", propertyID, "owner_id", q.OwnerID, "count", len(items))
	}

	return dto.MapReservations(items), nil
}

var _ queries.Handler[ListRequesterReservationsQuery, dto.ReservationCollection] = (*ListRequesterReservationsHandler)(nil)
var _ queries.Handler[ListPropertyReservationsQuery, dto.ReservationCollection] = (*ListPropertyReservationsHandler)(nil)
