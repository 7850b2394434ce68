package uow

import (
	"context"
	"errors"

	domaincatalog "campusnest/internal/domain/catalog"
	domainreservation "campusnest/internal/domain/reservation"
)

// ErrUnitOfWorkMissing is returned by handlers dispatched outside the
// transaction middleware.
var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

// UnitOfWork scopes the guarded check-then-write sequence of a lifecycle
// transition. The reservation row and the unit availability flag are the only
// shared mutable state; both repositories hang off the same unit so a crash
// between "set status" and "flip unit flag" never leaves them inconsistent.
type UnitOfWork interface {
	Reservations() domainreservation.Repository
	Catalog() domaincatalog.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}

type unitKey struct{}

// ContextWithUnitOfWork hands the open unit to the handlers downstream.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, unitKey{}, unit)
}

// FromContext recovers the unit placed by the transaction middleware.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok
}
