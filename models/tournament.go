package models

import "time"

// TournamentFormat соответствует ENUM в БД.
type TournamentFormat string

const (
	FormatSingleRoundRobin TournamentFormat = "single_round_robin"
	FormatDoubleRoundRobin TournamentFormat = "double_round_robin"
)

func (f TournamentFormat) Valid() bool {
	return f == FormatSingleRoundRobin || f == FormatDoubleRoundRobin
}

type TournamentStatus string

const (
	TournamentStatusDraft     TournamentStatus = "draft"
	TournamentStatusPublished TournamentStatus = "published"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusCancelled TournamentStatus = "cancelled"
)

// ScoringRule defines how finalized results translate into table points.
// A loss is always worth zero.
type ScoringRule struct {
	PointsWin  int `json:"points_win" db:"points_win"`
	PointsDraw int `json:"points_draw" db:"points_draw"`
}

// Tournament представляет турнир. The team list is append-only until the
// first fixture schedule is generated, after which it is frozen.
type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Format      TournamentFormat `json:"format" db:"format"`
	Scoring     ScoringRule      `json:"scoring"`
	OrganizerID int              `json:"organizer_id" db:"organizer_id"`
	Status      TournamentStatus `json:"status" db:"status"`
	TeamIDs     []int            `json:"team_ids" db:"-"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	// Set once a fixture schedule has been generated; freezes TeamIDs.
	FixturesGenerated bool `json:"fixtures_generated" db:"fixtures_generated"`
}
