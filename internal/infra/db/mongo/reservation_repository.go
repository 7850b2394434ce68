package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainreservation "campusnest/internal/domain/reservation"
	domainrange "campusnest/internal/domain/shared/timerange"
)

// ReservationRepository persists reservations with two concurrency guards:
// a version filter on the conditional update catches racing transitions on
// one reservation, and a unique (unit_id, day) index on the claims collection
// catches racing approvals for one unit. Both survive process restarts and
// hold across instances, unlike the in-process per-unit locks.
type ReservationRepository struct {
	col    *mongo.Collection
	claims *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	col := db.Collection("reservations")
	claims := db.Collection("unit_day_claims")
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "requester_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, _ = col.Indexes().CreateMany(context.Background(), indexes)
	claimIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "unit_id", Value: 1}, {Key: "day", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = claims.Indexes().CreateOne(context.Background(), claimIdx)
	return &ReservationRepository{col: col, claims: claims}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ReservationID) (*domainreservation.Reservation, error) {
	var doc reservationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreservation.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	doc := newReservationDocument(res)
	filter := bson.M{"_id": doc.ID, "version": res.Version}
	doc.Version = res.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	upd, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainreservation.ErrStateConflict
		}
		return conflictError(err)
	}
	if upd.MatchedCount == 0 && upd.UpsertedCount == 0 {
		return domainreservation.ErrStateConflict
	}
	res.Version = doc.Version

	switch res.Status {
	case domainreservation.StatusApproved:
		return r.claimDays(ctx, res)
	case domainreservation.StatusCancelled:
		_, err := r.claims.DeleteMany(ctx, bson.M{"reservation_id": string(res.ID)})
		return err
	}
	return nil
}

// claimDays inserts one document per occupied day. A duplicate key means a
// competing approval already holds one of those days.
func (r *ReservationRepository) claimDays(ctx context.Context, res *domainreservation.Reservation) error {
	docs := make([]any, 0, res.Range.Days())
	res.Range.EachDay(func(day time.Time) {
		docs = append(docs, bson.M{
			"unit_id":        res.UnitID,
			"day":            day,
			"reservation_id": string(res.ID),
		})
	})
	if _, err := r.claims.InsertMany(ctx, docs); err != nil {
		return conflictError(err)
	}
	return nil
}

// writeConflictCode is the server error for two transactions writing the same
// documents. The loser of a racing approval sees it instead of a duplicate
// key when the winner has not committed yet.
const writeConflictCode = 112

// conflictError maps write contention on the claims collection to the
// conflict error callers already handle. Anything else passes through.
func conflictError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return domainreservation.ErrConflict
	}
	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) {
		if srvErr.HasErrorCode(writeConflictCode) || srvErr.HasErrorLabel("TransientTransactionError") {
			return domainreservation.ErrConflict
		}
	}
	return err
}

func (r *ReservationRepository) ListByRequester(ctx context.Context, requesterID string, page domainreservation.Page) ([]*domainreservation.Reservation, error) {
	return r.find(ctx, bson.M{"requester_id": requesterID}, page)
}

func (r *ReservationRepository) ListByProperty(ctx context.Context, propertyID string, page domainreservation.Page) ([]*domainreservation.Reservation, error) {
	return r.find(ctx, bson.M{"property_id": propertyID}, page)
}

// ListApprovedForUnit feeds the conflict check, so the cursor walks every
// approved reservation for the unit. A limit here would hide old overlaps
// from the check.
func (r *ReservationRepository) ListApprovedForUnit(ctx context.Context, unitID string) ([]*domainreservation.Reservation, error) {
	filter := bson.M{"unit_id": unitID, "status": string(domainreservation.StatusApproved)}
	return r.decodeAll(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *ReservationRepository) find(ctx context.Context, filter bson.M, page domainreservation.Page) ([]*domainreservation.Reservation, error) {
	p := page.Normalized()
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(p.Offset)).
		SetLimit(int64(p.Limit))
	return r.decodeAll(ctx, filter, opts)
}

func (r *ReservationRepository) decodeAll(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domainreservation.Reservation, error) {
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := make([]*domainreservation.Reservation, 0)
	for cursor.Next(ctx) {
		var doc reservationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type reservationDocument struct {
	ID            string `bson:"_id"`
	UnitID        string `bson:"unit_id"`
	PropertyID    string `bson:"property_id"`
	RequesterID   string `bson:"requester_id"`
	Start         int64  `bson:"start_date"`
	End           int64  `bson:"end_date"`
	Status        string `bson:"status"`
	RequesterNote string `bson:"requester_note"`
	ResponderNote string `bson:"responder_note"`
	RespondedAt   *int64 `bson:"responded_at,omitempty"`
	CreatedAt     int64  `bson:"created_at"`
	UpdatedAt     int64  `bson:"updated_at"`
	Version       int64  `bson:"version"`
}

func newReservationDocument(res *domainreservation.Reservation) reservationDocument {
	doc := reservationDocument{
		ID:            string(res.ID),
		UnitID:        res.UnitID,
		PropertyID:    res.PropertyID,
		RequesterID:   res.RequesterID,
		Start:         res.Range.Start.UnixMilli(),
		End:           res.Range.End.UnixMilli(),
		Status:        string(res.Status),
		RequesterNote: res.RequesterNote,
		ResponderNote: res.ResponderNote,
		CreatedAt:     res.CreatedAt.UnixMilli(),
		UpdatedAt:     res.UpdatedAt.UnixMilli(),
		Version:       res.Version,
	}
	if res.RespondedAt != nil {
		ms := res.RespondedAt.UnixMilli()
		doc.RespondedAt = &ms
	}
	return doc
}

func (d reservationDocument) toAggregate() *domainreservation.Reservation {
	res := &domainreservation.Reservation{
		ID:            domainreservation.ReservationID(d.ID),
		UnitID:        d.UnitID,
		PropertyID:    d.PropertyID,
		RequesterID:   d.RequesterID,
		Range:         domainrange.TimeRange{Start: timestampToTime(d.Start), End: timestampToTime(d.End)},
		Status:        domainreservation.Status(d.Status),
		RequesterNote: d.RequesterNote,
		ResponderNote: d.ResponderNote,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
		Version:       d.Version,
	}
	if d.RespondedAt != nil {
		at := timestampToTime(*d.RespondedAt)
		res.RespondedAt = &at
	}
	return res
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
