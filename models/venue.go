package models

import "time"

// Venue is a read-only reference entity owned by the persistence layer.
type Venue struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// VenueWindow is an availability window during which a venue can host
// fixtures. Windows never overlap for the same venue.
type VenueWindow struct {
	VenueID int       `json:"venue_id" db:"venue_id"`
	Start   time.Time `json:"start" db:"start_time"`
	End     time.Time `json:"end" db:"end_time"`
}

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBlocked   SlotStatus = "blocked"
	SlotStatusBooked    SlotStatus = "booked"
)

// VenueSlot is a reserved [Start, End) interval on a venue. A booked slot
// references exactly one fixture; booked and blocked slots on the same venue
// never overlap.
type VenueSlot struct {
	ID        int        `json:"id" db:"id"`
	VenueID   int        `json:"venue_id" db:"venue_id"`
	FixtureID *int       `json:"fixture_id,omitempty" db:"fixture_id"`
	Start     time.Time  `json:"start" db:"start_time"`
	End       time.Time  `json:"end" db:"end_time"`
	Status    SlotStatus `json:"status" db:"status"`
}

// Overlaps reports whether the slot's interval intersects [start, end).
func (s VenueSlot) Overlaps(start, end time.Time) bool {
	return s.Start.Before(end) && start.Before(s.End)
}
