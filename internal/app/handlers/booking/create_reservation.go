package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"campusnest/internal/app/commands"
	"campusnest/internal/app/dto"
	"campusnest/internal/app/middleware"
	"campusnest/internal/app/outbox"
	"campusnest/internal/app/policies"
	"campusnest/internal/app/uow"
	domainavailability "campusnest/internal/domain/availability"
	domaincatalog "campusnest/internal/domain/catalog"
	domainreservation "campusnest/internal/domain/reservation"
	domainrange "campusnest/internal/domain/shared/timerange"
)

const createReservationKey = "booking.create"

type CreateReservationCommand struct {
	CommandID       string
	RequesterID     string
	UnitID          string
	PropertyID      string
	Start           time.Time
	End             time.Time
	RequesterNote   string
	IdempotencyKeyV string
}

func (c CreateReservationCommand) Key() string { return createReservationKey }

func (c CreateReservationCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateReservationCommand) ResultPrototype() any { return &dto.Reservation{} }

// CreateReservationHandler owns the creation leg of the lifecycle: resolve
// collaborators, validate guards, then run the conflict check and the insert
// under the unit's serialization boundary. A pending reservation holds no
// capacity; creation only refuses ranges already committed to an APPROVED
// reservation, so an abandoned request can never block a unit forever.
type CreateReservationHandler struct {
	Identity policies.IdentityPort
	Locks    policies.UnitLocker
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
}

func (h *CreateReservationHandler) Handle(ctx context.Context, cmd CreateReservationCommand) (*dto.Reservation, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	tr, err := domainrange.New(cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}

	if h.Identity != nil {
		exists, err := h.Identity.UserExists(ctx, cmd.RequesterID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, domainreservation.ErrNotFound
		}
	}

	rentable, err := unit.Catalog().Unit(ctx, cmd.UnitID)
	if err != nil {
		return nil, err
	}
	if !rentable.BelongsTo(cmd.PropertyID) {
		return nil, domaincatalog.ErrUnitNotInProperty
	}
	if !rentable.Available {
		return nil, domaincatalog.ErrUnitUnavailable
	}

	if h.Locks != nil {
		defer policies.HoldUnitLock(ctx, h.Locks, cmd.UnitID)()
	}

	index := domainavailability.Index{Store: unit.Reservations()}
	conflict, err := index.HasApprovedConflict(ctx, cmd.UnitID, tr, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, domainreservation.ErrConflict
	}

	res, err := domainreservation.NewReservation(domainreservation.CreateParams{
		ID:            domainreservation.ReservationID(cmd.CommandID),
		UnitID:        cmd.UnitID,
		PropertyID:    cmd.PropertyID,
		RequesterID:   cmd.RequesterID,
		Range:         tr,
		RequesterNote: strings.TrimSpace(cmd.RequesterNote),
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
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
		h.Logger.Info("reservation requested", "reservation_id", res.ID, "unit_id", res.UnitID, "requester_id", res.RequesterID)
	}

	mapped := dto.MapReservation(res, rentable)
	return &mapped, nil
}

var _ commands.Handler[CreateReservationCommand, *dto.Reservation] = (*CreateReservationHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateReservationCommand)(nil)
