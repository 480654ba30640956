package schedule

import (
	"context"
	"fmt"

	"github.com/sportsync/matchday/models"
)

// byeTeamID is the synthetic opponent inserted when the team count is odd.
// Pairings against it are never emitted; the real team simply rests that
// round.
const byeTeamID = 0

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() FixtureGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// Generate creates pairings with the circle method: the first team stays
// fixed while the rest rotate one position per round. Even N yields N-1
// rounds; odd N yields N rounds with exactly one bye per round. Home and
// away alternate by round parity so no team stacks home advantage. A double
// round-robin appends a mirrored pass with home/away swapped.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateParams) ([]Pairing, error) {
	teams := params.TeamIDs
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughTeams, len(teams))
	}

	circle := make([]int, len(teams))
	copy(circle, teams)
	if len(circle)%2 != 0 {
		circle = append(circle, byeTeamID)
	}

	n := len(circle)
	rounds := n - 1
	pivot := circle[0]
	rest := make([]int, n-1)
	copy(rest, circle[1:])

	firstLeg := make([]Pairing, 0, rounds*n/2)
	for round := 1; round <= rounds; round++ {
		pairs := make([][2]int, 0, n/2)
		pairs = append(pairs, [2]int{pivot, rest[len(rest)-1]})
		for i := 0; i < n/2-1; i++ {
			pairs = append(pairs, [2]int{rest[i], rest[len(rest)-2-i]})
		}

		for _, p := range pairs {
			home, away := p[0], p[1]
			if round%2 == 0 {
				home, away = away, home
			}
			if home == byeTeamID || away == byeTeamID {
				continue
			}
			firstLeg = append(firstLeg, Pairing{Round: round, HomeID: home, AwayID: away})
		}

		// Rotate clockwise: last element moves to the front.
		last := rest[len(rest)-1]
		copy(rest[1:], rest[:len(rest)-1])
		rest[0] = last
	}

	if params.Format != models.FormatDoubleRoundRobin {
		return firstLeg, nil
	}

	pairings := make([]Pairing, 0, 2*len(firstLeg))
	pairings = append(pairings, firstLeg...)
	for _, p := range firstLeg {
		pairings = append(pairings, Pairing{
			Round:  p.Round + rounds,
			HomeID: p.AwayID,
			AwayID: p.HomeID,
		})
	}
	return pairings, nil
}
