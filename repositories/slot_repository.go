package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/sportsync/matchday/models"
)

type postgresSlotRepository struct {
	db *sql.DB
}

func NewPostgresSlotRepository(db *sql.DB) SlotRepository {
	return &postgresSlotRepository{db: db}
}

func (r *postgresSlotRepository) CreateBatch(ctx context.Context, slots []*models.VenueSlot) error {
	if len(slots) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("slots create batch: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO venue_slots (venue_id, fixture_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	for _, s := range slots {
		err = tx.QueryRowContext(ctx, query,
			s.VenueID, s.FixtureID, s.Start, s.End, s.Status).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("slots create batch: %w", err)
		}
	}
	return tx.Commit()
}

func (r *postgresSlotRepository) ListByVenue(ctx context.Context, venueID int) ([]models.VenueSlot, error) {
	return r.list(ctx, `
		SELECT id, venue_id, fixture_id, start_time, end_time, status
		FROM venue_slots WHERE venue_id = $1
		ORDER BY start_time`, venueID)
}

func (r *postgresSlotRepository) ListByVenues(ctx context.Context, venueIDs []int) ([]models.VenueSlot, error) {
	if len(venueIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, `
		SELECT id, venue_id, fixture_id, start_time, end_time, status
		FROM venue_slots WHERE venue_id = ANY($1)
		ORDER BY venue_id, start_time`, pq.Array(venueIDs))
}

func (r *postgresSlotRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.VenueSlot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("slots list: %w", err)
	}
	defer rows.Close()

	var slots []models.VenueSlot
	for rows.Next() {
		var s models.VenueSlot
		if err := rows.Scan(&s.ID, &s.VenueID, &s.FixtureID, &s.Start, &s.End, &s.Status); err != nil {
			return nil, fmt.Errorf("slots list: scan: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *postgresSlotRepository) GetByFixture(ctx context.Context, fixtureID int) (*models.VenueSlot, error) {
	var s models.VenueSlot
	err := r.db.QueryRowContext(ctx, `
		SELECT id, venue_id, fixture_id, start_time, end_time, status
		FROM venue_slots WHERE fixture_id = $1 AND status = $2`,
		fixtureID, models.SlotStatusBooked,
	).Scan(&s.ID, &s.VenueID, &s.FixtureID, &s.Start, &s.End, &s.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("slot get for fixture %d: %w", fixtureID, err)
	}
	return &s, nil
}

// Rebook releases the fixture's current booking and writes the new one in a
// single transaction, so a failure leaves the original booking untouched.
func (r *postgresSlotRepository) Rebook(ctx context.Context, fixtureID int, slot models.VenueSlot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("slot rebook: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM venue_slots WHERE fixture_id = $1 AND status = $2`,
		fixtureID, models.SlotStatusBooked)
	if err != nil {
		return fmt.Errorf("slot rebook: release: %w", err)
	}
	if err := checkAffectedRows(result, ErrSlotNotFound); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO venue_slots (venue_id, fixture_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		slot.VenueID, fixtureID, slot.Start, slot.End, models.SlotStatusBooked,
	).Scan(&slot.ID)
	if err != nil {
		return fmt.Errorf("slot rebook: book: %w", err)
	}
	return tx.Commit()
}
