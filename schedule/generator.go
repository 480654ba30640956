package schedule

import (
	"context"
	"errors"

	"github.com/sportsync/matchday/models"
)

var ErrNotEnoughTeams = errors.New("not enough teams to generate fixtures (min 2 required)")

// Pairing is one generated match: home and away team ids within a round.
// Rounds are 1-based and contiguous.
type Pairing struct {
	Round  int `json:"round"`
	HomeID int `json:"home_id"`
	AwayID int `json:"away_id"`
}

type GenerateParams struct {
	TeamIDs []int
	Format  models.TournamentFormat
}

// FixtureGenerator produces the ordered pairing schedule for a tournament.
// Generation is deterministic: identical params yield an identical list.
type FixtureGenerator interface {
	Generate(ctx context.Context, params GenerateParams) ([]Pairing, error)

	GetName() string
}
