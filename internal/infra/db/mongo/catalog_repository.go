package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincatalog "campusnest/internal/domain/catalog"
)

// CatalogRepository reads unit/property snapshots and writes the availability
// flag. The catalog service owns these collections; the booking core touches
// exactly one field.
type CatalogRepository struct {
	units      *mongo.Collection
	properties *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{
		units:      db.Collection("units"),
		properties: db.Collection("properties"),
	}
}

func (r *CatalogRepository) Unit(ctx context.Context, id string) (*domaincatalog.Unit, error) {
	var doc unitDocument
	if err := r.units.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincatalog.ErrUnitNotFound
		}
		return nil, err
	}
	return doc.toSnapshot(), nil
}

func (r *CatalogRepository) Property(ctx context.Context, id string) (*domaincatalog.Property, error) {
	var doc propertyDocument
	if err := r.properties.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincatalog.ErrPropertyNotFound
		}
		return nil, err
	}
	return &domaincatalog.Property{ID: doc.ID, OwnerID: doc.OwnerID, Title: doc.Title, Address: doc.Address}, nil
}

func (r *CatalogRepository) SetUnitAvailable(ctx context.Context, id string, available bool) error {
	res, err := r.units.UpdateByID(ctx, id, bson.M{"$set": bson.M{"available": available}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domaincatalog.ErrUnitNotFound
	}
	return nil
}

func (r *CatalogRepository) Save(ctx context.Context, unit *domaincatalog.Unit) error {
	doc := unitDocument{
		ID:         unit.ID,
		PropertyID: unit.PropertyID,
		OwnerID:    unit.OwnerID,
		Name:       unit.Name,
		Available:  unit.Available,
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.units.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *CatalogRepository) SaveProperty(ctx context.Context, property *domaincatalog.Property) error {
	doc := propertyDocument{
		ID:      property.ID,
		OwnerID: property.OwnerID,
		Title:   property.Title,
		Address: property.Address,
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.properties.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

type unitDocument struct {
	ID         string `bson:"_id"`
	PropertyID string `bson:"property_id"`
	OwnerID    string `bson:"owner_id"`
	Name       string `bson:"name"`
	Available  bool   `bson:"available"`
}

func (d unitDocument) toSnapshot() *domaincatalog.Unit {
	return &domaincatalog.Unit{
		ID:         d.ID,
		PropertyID: d.PropertyID,
		OwnerID:    d.OwnerID,
		Name:       d.Name,
		Available:  d.Available,
	}
}

type propertyDocument struct {
	ID      string `bson:"_id"`
	OwnerID string `bson:"owner_id"`
	Title   string `bson:"title"`
	Address string `bson:"address"`
}
