package memory

import (
	"context"
	"sync"

	domaincatalog "campusnest/internal/domain/catalog"
)

// CatalogRepository keeps unit and property snapshots in memory. In a full
// deployment this would proxy the catalog service; the booking core only
// reads the ownership chain and toggles one flag.
type CatalogRepository struct {
	mu         sync.RWMutex
	units      map[string]domaincatalog.Unit
	properties map[string]domaincatalog.Property
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		units:      make(map[string]domaincatalog.Unit),
		properties: make(map[string]domaincatalog.Property),
	}
}

func (r *CatalogRepository) Unit(ctx context.Context, id string) (*domaincatalog.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	unit, ok := r.units[id]
	if !ok {
		return nil, domaincatalog.ErrUnitNotFound
	}
	return &unit, nil
}

func (r *CatalogRepository) Property(ctx context.Context, id string) (*domaincatalog.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	property, ok := r.properties[id]
	if !ok {
		return nil, domaincatalog.ErrPropertyNotFound
	}
	return &property, nil
}

func (r *CatalogRepository) SetUnitAvailable(ctx context.Context, id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	unit, ok := r.units[id]
	if !ok {
		return domaincatalog.ErrUnitNotFound
	}
	unit.Available = available
	r.units[id] = unit
	return nil
}

func (r *CatalogRepository) Save(ctx context.Context, unit *domaincatalog.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[unit.ID] = *unit
	return nil
}

// SaveProperty seeds ownership records; used by fixtures and tests.
func (r *CatalogRepository) SaveProperty(ctx context.Context, property *domaincatalog.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.properties[property.ID] = *property
	return nil
}
