package models

import "time"

// Announcement is a free-form organizer message pushed to subscribers of the
// announcements topic. Not persisted by the core.
type Announcement struct {
	TournamentID int       `json:"tournament_id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	PostedBy     int       `json:"posted_by"`
	PostedAt     time.Time `json:"posted_at"`
}
