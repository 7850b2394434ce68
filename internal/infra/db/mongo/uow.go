package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusnest/internal/app/uow"
	domaincatalog "campusnest/internal/domain/catalog"
	domainreservation "campusnest/internal/domain/reservation"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// The reservation status write, the day claims and the unit flag flip all run
// in one session, so they commit or abort together.
type Factory struct {
	DB *mongo.Database

	ReservationRepo domainreservation.Repository
	CatalogRepo     domaincatalog.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:      session,
		reservations: f.ReservationRepo,
		catalog:      f.CatalogRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		// A commit losing to a concurrent writer is a booking conflict,
		// not an infrastructure failure.
		return conflictError(err)
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the session visible to the repositories, so their reads
// and writes join the transaction.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
