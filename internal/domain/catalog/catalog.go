package catalog

import (
	"context"
	"errors"
)

var (
	ErrUnitNotFound      = errors.New("catalog: unit not found")
	ErrPropertyNotFound  = errors.New("catalog: property not found")
	ErrUnitNotInProperty = errors.New("catalog: unit does not belong to this property")
	ErrUnitUnavailable   = errors.New("catalog: unit is not available")
)

// Property is the minimal ownership record the booking core needs for the
// owner-only guards.
type Property struct {
	ID      string
	OwnerID string
	Title   string
	Address string
}

// Unit is the booking core's view of a rentable unit. The catalog service owns
// the full entity; the core only needs the ownership chain and the
// availability flag it toggles on approval and cancellation.
type Unit struct {
	ID         string
	PropertyID string
	OwnerID    string
	Name       string
	Available  bool
}

// Repository is the narrow catalog capability consumed by the booking
// lifecycle. It is enrolled in the unit of work so the availability flip
// commits atomically with the reservation transition that caused it.
type Repository interface {
	Unit(ctx context.Context, id string) (*Unit, error)
	Property(ctx context.Context, id string) (*Property, error)
	SetUnitAvailable(ctx context.Context, id string, available bool) error
	Save(ctx context.Context, unit *Unit) error
	SaveProperty(ctx context.Context, property *Property) error
}

// BelongsTo verifies the unit/property pairing named in a create request.
func (u *Unit) BelongsTo(propertyID string) bool {
	return u != nil && u.PropertyID == propertyID
}
