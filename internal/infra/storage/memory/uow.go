package memory

import (
	"context"
	"errors"

	"campusnest/internal/app/uow"
	domaincatalog "campusnest/internal/domain/catalog"
	domainreservation "campusnest/internal/domain/reservation"
)

// Factory wires the in-memory repositories into a unit-of-work boundary.
// Commit and Rollback are no-ops; atomicity for the single-process store
// comes from the per-unit locks held across the check-then-write sequence.
type Factory struct {
	ReservationRepo domainreservation.Repository
	CatalogRepo     domaincatalog.Repository
}

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ReservationRepo == nil || f.CatalogRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		reservations: f.ReservationRepo,
		catalog:      f.CatalogRepo,
	}, nil
}

type Unit struct {
	reservations domainreservation.Repository
	catalog      domaincatalog.Repository
}

func (u *Unit) Reservations() domainreservation.Repository {
	return u.reservations
}

func (u *Unit) Catalog() domaincatalog.Repository {
	return u.catalog
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
