package dto

import (
	"time"

	domaincatalog "campusnest/internal/domain/catalog"
	domainreservation "campusnest/internal/domain/reservation"
)

type UnitSnapshot struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	Name       string `json:"name,omitempty"`
	Available  bool   `json:"available"`
}

type Reservation struct {
	ID            string       `json:"id"`
	Unit          UnitSnapshot `json:"unit"`
	PropertyID    string       `json:"property_id"`
	RequesterID   string       `json:"requester_id"`
	Status        string       `json:"status"`
	Start         time.Time    `json:"start_date"`
	End           time.Time    `json:"end_date"`
	RequesterNote string       `json:"requester_note,omitempty"`
	ResponderNote string       `json:"responder_note,omitempty"`
	RespondedAt   *time.Time   `json:"responded_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

type ReservationCollection struct {
	Items []Reservation `json:"items"`
}

// MapReservation flattens the aggregate plus an optional catalog snapshot into
// the outward response shape. The unit may be nil when the catalog lookup
// failed; the identifiers still round-trip.
func MapReservation(res *domainreservation.Reservation, unit *domaincatalog.Unit) Reservation {
	snapshot := UnitSnapshot{ID: res.UnitID, PropertyID: res.PropertyID}
	if unit != nil {
		snapshot.Name = unit.Name
		snapshot.PropertyID = unit.PropertyID
		snapshot.Available = unit.Available
	}
	return Reservation{
		ID:            string(res.ID),
		Unit:          snapshot,
		PropertyID:    res.PropertyID,
		RequesterID:   res.RequesterID,
		Status:        string(res.Status),
		Start:         res.Range.Start,
		End:           res.Range.End,
		RequesterNote: res.RequesterNote,
		ResponderNote: res.ResponderNote,
		RespondedAt:   res.RespondedAt,
		CreatedAt:     res.CreatedAt,
	}
}

func MapReservations(items []*domainreservation.Reservation) ReservationCollection {
	out := make([]Reservation, 0, len(items))
	for _, res := range items {
		out = append(out, MapReservation(res, nil))
	}
	return ReservationCollection{Items: out}
}
