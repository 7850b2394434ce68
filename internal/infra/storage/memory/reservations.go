package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainreservation "campusnest/internal/domain/reservation"
)

// ReservationRepository stores reservations in memory. Save applies the
// optimistic version check, so two racing transitions on one reservation
// cannot both commit even without the per-unit lock.
type ReservationRepository struct {
	mu    sync.RWMutex
	items map[domainreservation.ReservationID]domainreservation.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{items: make(map[domainreservation.ReservationID]domainreservation.Reservation)}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ReservationID) (*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.items[id]
	if !ok {
		return nil, domainreservation.ErrNotFound
	}
	res.ClearEvents()
	return &res, nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[res.ID]; ok && stored.Version != res.Version {
		return domainreservation.ErrStateConflict
	}
	res.Version++
	snapshot := *res
	snapshot.ClearEvents()
	r.items[res.ID] = snapshot
	return nil
}

func (r *ReservationRepository) ListByRequester(ctx context.Context, requesterID string, page domainreservation.Page) ([]*domainreservation.Reservation, error) {
	return r.list(func(res domainreservation.Reservation) bool {
		return res.RequesterID == strings.TrimSpace(requesterID)
	}, page)
}

func (r *ReservationRepository) ListByProperty(ctx context.Context, propertyID string, page domainreservation.Page) ([]*domainreservation.Reservation, error) {
	return r.list(func(res domainreservation.Reservation) bool {
		return res.PropertyID == strings.TrimSpace(propertyID)
	}, page)
}

// ListApprovedForUnit feeds the conflict check. It scans every approved
// reservation for the unit: a page cap here would hide old overlaps from the
// check, so no paging applies.
func (r *ReservationRepository) ListApprovedForUnit(ctx context.Context, unitID string) ([]*domainreservation.Reservation, error) {
	return r.collect(func(res domainreservation.Reservation) bool {
		return res.UnitID == unitID && res.Status == domainreservation.StatusApproved
	}), nil
}

func (r *ReservationRepository) list(match func(domainreservation.Reservation) bool, page domainreservation.Page) ([]*domainreservation.Reservation, error) {
	matches := r.collect(match)
	p := page.Normalized()
	start := p.Offset
	if start > len(matches) {
		start = len(matches)
	}
	end := start + p.Limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end], nil
}

func (r *ReservationRepository) collect(match func(domainreservation.Reservation) bool) []*domainreservation.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreservation.Reservation, 0)
	for _, res := range r.items {
		if match(res) {
			copied := res
			matches = append(matches, &copied)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches
}
