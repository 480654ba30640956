package models

import "time"

type FixtureStatus string

const (
	FixtureStatusDraft     FixtureStatus = "draft"
	FixtureStatusScheduled FixtureStatus = "scheduled"
	FixtureStatusPublished FixtureStatus = "published"
	FixtureStatusCompleted FixtureStatus = "completed"
	FixtureStatusCancelled FixtureStatus = "cancelled"
)

// Fixture представляет один матч турнира. Slot fields (venue/start/end) are
// owned by the allocator; status transitions are driven by publish/cancel and
// by result finalization.
type Fixture struct {
	ID           int           `json:"id" db:"id"`
	TournamentID int           `json:"tournament_id" db:"tournament_id"`
	Round        int           `json:"round" db:"round"`
	HomeTeamID   int           `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   int           `json:"away_team_id" db:"away_team_id"`
	VenueID      *int          `json:"venue_id,omitempty" db:"venue_id"`
	StartTime    *time.Time    `json:"start_time,omitempty" db:"start_time"`
	EndTime      *time.Time    `json:"end_time,omitempty" db:"end_time"`
	Status       FixtureStatus `json:"status" db:"status"`
}
