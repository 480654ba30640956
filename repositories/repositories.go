package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sportsync/matchday/models"
)

// SQLExecutor abstracts *sql.DB and *sql.Tx so a repository method can run
// inside or outside an enclosing transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrFixtureNotFound    = errors.New("fixture not found")
	ErrResultNotFound     = errors.New("result not found")
	ErrSlotNotFound       = errors.New("venue slot not found")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error
	MarkFixturesGenerated(ctx context.Context, id int) error
}

// TeamRepository exposes read-only team reference data owned outside the
// core.
type TeamRepository interface {
	ListByIDs(ctx context.Context, ids []int) ([]models.Team, error)
}

// VenueRepository exposes read-only venue availability owned outside the
// core.
type VenueRepository interface {
	ListWindows(ctx context.Context, venueIDs []int) ([]models.VenueWindow, error)
}

type FixtureRepository interface {
	CreateBatch(ctx context.Context, fixtures []*models.Fixture) error
	GetByID(ctx context.Context, id int) (*models.Fixture, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Fixture, error)
	UpdateSlot(ctx context.Context, id int, venueID int, start, end time.Time) error
	UpdateStatus(ctx context.Context, id int, status models.FixtureStatus) error
}

type SlotRepository interface {
	CreateBatch(ctx context.Context, slots []*models.VenueSlot) error
	ListByVenue(ctx context.Context, venueID int) ([]models.VenueSlot, error)
	ListByVenues(ctx context.Context, venueIDs []int) ([]models.VenueSlot, error)
	GetByFixture(ctx context.Context, fixtureID int) (*models.VenueSlot, error)
	// Rebook atomically moves a fixture's booking to the given slot; the
	// old booking is released only if the new one is written.
	Rebook(ctx context.Context, fixtureID int, slot models.VenueSlot) error
}

type ResultRepository interface {
	Upsert(ctx context.Context, result *models.Result) error
	Delete(ctx context.Context, fixtureID int) error
	GetByFixture(ctx context.Context, fixtureID int) (*models.Result, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Result, error)
}

type StandingRepository interface {
	// ReplaceForTournament swaps the whole table in one shot; standings are
	// always a full recompute, never an incremental patch.
	ReplaceForTournament(ctx context.Context, tournamentID int, entries []models.StandingsEntry) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.StandingsEntry, error)
}
