package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/sportsync/matchday/models"
	"github.com/sportsync/matchday/repositories"
)

const (
	bucketTournaments = "tournaments"
	bucketFixtures    = "fixtures"
	bucketSlots       = "venue_slots"
	bucketResults     = "results"
	bucketStandings   = "standings"
	bucketTeams       = "teams"
	bucketWindows     = "venue_windows"
)

// BoltStore implements the repository interfaces on an embedded bbolt file
// for single-node deployments that run without Postgres. One bucket per
// entity, JSON values, big-endian uint64 keys.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{
			bucketTournaments, bucketFixtures, bucketSlots,
			bucketResults, bucketStandings, bucketTeams, bucketWindows,
		} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("creating %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Tournaments() repositories.TournamentRepository { return &boltTournaments{s} }
func (s *BoltStore) Teams() repositories.TeamRepository             { return &boltTeams{s} }
func (s *BoltStore) Venues() repositories.VenueRepository           { return &boltVenues{s} }
func (s *BoltStore) Fixtures() repositories.FixtureRepository       { return &boltFixtures{s} }
func (s *BoltStore) Slots() repositories.SlotRepository             { return &boltSlots{s} }
func (s *BoltStore) Results() repositories.ResultRepository         { return &boltResults{s} }
func (s *BoltStore) Standings() repositories.StandingRepository     { return &boltStandings{s} }

// SeedTeams loads read-only team reference data.
func (s *BoltStore) SeedTeams(teams ...models.Team) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketTeams))
		for _, t := range teams {
			data, err := json.Marshal(t)
			if err != nil {
				return err
			}
			if err := b.Put(itob(uint64(t.ID)), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedWindows loads read-only venue availability windows.
func (s *BoltStore) SeedWindows(windows ...models.VenueWindow) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketWindows))
		for _, w := range windows {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			data, err := json.Marshal(w)
			if err != nil {
				return err
			}
			if err := b.Put(itob(seq), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

type boltTournaments struct{ s *BoltStore }

func (r *boltTournaments) Create(ctx context.Context, tournament *models.Tournament) error {
	return r.s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketTournaments))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		tournament.ID = int(seq)
		if tournament.CreatedAt.IsZero() {
			tournament.CreatedAt = time.Now().UTC()
		}
		data, err := json.Marshal(tournament)
		if err != nil {
			return err
		}
		return b.Put(itob(seq), data)
	})
}

func (r *boltTournaments) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	var t models.Tournament
	err := r.s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketTournaments)).Get(itob(uint64(id)))
		if data == nil {
			return repositories.ErrTournamentNotFound
		}
		return json.Unmarshal(data, &t)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *boltTournaments) update(id int, fn func(*models.Tournament)) error {
	return r.s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketTournaments))
		data := b.Get(itob(uint64(id)))
		if data == nil {
			return repositories.ErrTournamentNotFound
		}
		var t models.Tournament
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		fn(&t)
		updated, err := json.Marshal(&t)
		if err != nil {
			return err
		}
		return b.Put(itob(uint64(id)), updated)
	})
}

func (r *boltTournaments) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	return r.update(id, func(t *models.Tournament) { t.Status = status })
}

func (r *boltTournaments) MarkFixturesGenerated(ctx context.Context, id int) error {
	return r.update(id, func(t *models.Tournament) { t.FixturesGenerated = true })
}

type boltTeams struct{ s *BoltStore }

func (r *boltTeams) ListByIDs(ctx context.Context, ids []int) ([]models.Team, error) {
	var teams []models.Team
	err := r.s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketTeams))
		for _, id := range ids {
			data := b.Get(itob(uint64(id)))
			if data == nil {
				continue
			}
			var t models.Team
			if err := json.Unmarshal(data, &t); err != nil {
				return err
			}
			teams = append(teams, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

type boltVenues struct{ s *BoltStore }

func (r *boltVenues) ListWindows(ctx context.Context, venueIDs []int) ([]models.VenueWindow, error) {
	wanted := make(map[int]bool, len(venueIDs))
	for _, id := range venueIDs {
		wanted[id] = true
	}
	var windows []models.VenueWindow
	err := r.s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketWindows)).ForEach(func(_, data []byte) error {
			var w models.VenueWindow
			if err := json.Unmarshal(data, &w); err != nil {
				return err
			}
			if wanted[w.VenueID] {
				windows = append(windows, w)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return windows, nil
}

type boltFixtures struct{ s *BoltStore }

func (r *boltFixtures) CreateBatch(ctx context.Context, fixtures []*models.Fixture) error {
	return r.s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketFixtures))
		for _, f := range fixtures {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			f.ID = int(seq)
			data, err := json.Marshal(f)
			if err != nil {
				return err
			}
			if err := b.Put(itob(seq), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *boltFixtures) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	var f models.Fixture
	err := r.s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketFixtures)).Get(itob(uint64(id)))
		if data == nil {
			return repositories.ErrFixtureNotFound
		}
		return json.Unmarshal(data, &f)
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *boltFixtures) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Fixture, error) {
	var fixtures []*models.Fixture
	err := r.s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketFixtures)).ForEach(func(_, data []byte) error {
			var f models.Fixture
			if err := json.Unmarshal(data, &f); err != nil {
				return err
			}
			if f.TournamentID == tournamentID {
				fixtures = append(fixtures, &f)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(fixtures, func(i, j int) bool {
		if fixtures[i].Round != fixtures[j].Round {
			return fixtures[i].Round < fixtures[j].Round
		}
		return fixtures[i].ID < fixtures[j].ID
	})
	return fixtures, nil
}

func (r *boltFixtures) update(id int, fn func(*models.Fixture)) error {
	return r.s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketFixtures))
		data := b.Get(itob(uint64(id)))
		if data == nil {
			return repositories.ErrFixtureNotFound
		}
		var f models.Fixture
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		fn(&f)
		updated, err := json.Marshal(&f)
		if err != nil {
			return err
		}
		return b.Put(itob(uint64(id)), updated)
	})
}

func (r *boltFixtures) UpdateSlot(ctx context.Context, id int, venueID int, start, end time.Time) error {
	return r.update(id, func(f *models.Fixture) {
		f.VenueID = &venueID
		f.StartTime = &start
		f.EndTime = &end
	})
}

func (r *boltFixtures) UpdateStatus(ctx context.Context, id int, status models.FixtureStatus) error {
	return r.update(id, func(f *models.Fixture) { f.Status = status })
}

type boltSlots struct{ s *BoltStore }

func (r *boltSlots) CreateBatch(ctx context.Context, slots []*models.VenueSlot) error {
	return r.s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSlots))
		for _, slot := range slots {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			slot.ID = int(seq)
			data, err := json.Marshal(slot)
			if err != nil {
				return err
			}
			if err := b.Put(itob(seq), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *boltSlots) ListByVenue(ctx context.Context, venueID int) ([]models.VenueSlot, error) {
	return r.ListByVenues(ctx, []int{venueID})
}

func (r *boltSlots) ListByVenues(ctx context.Context, venueIDs []int) ([]models.VenueSlot, error) {
	wanted := make(map[int]bool, len(venueIDs))
	for _, id := range venueIDs {
		wanted[id] = true
	}
	var slots []models.VenueSlot
	err := r.s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSlots)).ForEach(func(_, data []byte) error {
			var s models.VenueSlot
			if err := json.Unmarshal(data, &s); err != nil {
				return err
			}
			if wanted[s.VenueID] {
				slots = append(slots, s)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Start.Equal(slots[j].Start) {
			return slots[i].Start.Before(slots[j].Start)
		}
		return slots[i].ID < slots[j].ID
	})
	return slots, nil
}

func (r *boltSlots) GetByFixture(ctx context.Context, fixtureID int) (*models.VenueSlot, error) {
	var found *models.VenueSlot
	err := r.s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSlots)).ForEach(func(_, data []byte) error {
			var s models.VenueSlot
			if err := json.Unmarshal(data, &s); err != nil {
				return err
			}
			if s.FixtureID != nil && *s.FixtureID == fixtureID && s.Status == models.SlotStatusBooked {
				found = &s
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, repositories.ErrSlotNotFound
	}
	return found, nil
}

func (r *boltSlots) Rebook(ctx context.Context, fixtureID int, slot models.VenueSlot) error {
	return r.s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSlots))
		var oldKey []byte
		err := b.ForEach(func(k, data []byte) error {
			var s models.VenueSlot
			if err := json.Unmarshal(data, &s); err != nil {
				return err
			}
			if s.FixtureID != nil && *s.FixtureID == fixtureID && s.Status == models.SlotStatusBooked {
				oldKey = append([]byte(nil), k...)
			}
			return nil
		})
		if err != nil {
			return err
		}
		if oldKey == nil {
			return repositories.ErrSlotNotFound
		}
		if err := b.Delete(oldKey); err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		slot.ID = int(seq)
		fid := fixtureID
		slot.FixtureID = &fid
		slot.Status = models.SlotStatusBooked
		data, err := json.Marshal(&slot)
		if err != nil {
			return err
		}
		return b.Put(itob(seq), data)
	})
}

type boltResults struct{ s *BoltStore }

func (r *boltResults) Upsert(ctx context.Context, result *models.Result) error {
	return r.s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(result)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketResults)).Put(itob(uint64(result.FixtureID)), data)
	})
}

func (r *boltResults) Delete(ctx context.Context, fixtureID int) error {
	return r.s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketResults))
		if b.Get(itob(uint64(fixtureID))) == nil {
			return repositories.ErrResultNotFound
		}
		return b.Delete(itob(uint64(fixtureID)))
	})
}

func (r *boltResults) GetByFixture(ctx context.Context, fixtureID int) (*models.Result, error) {
	var res models.Result
	err := r.s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketResults)).Get(itob(uint64(fixtureID)))
		if data == nil {
			return repositories.ErrResultNotFound
		}
		return json.Unmarshal(data, &res)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *boltResults) ListByTournament(ctx context.Context, tournamentID int) ([]models.Result, error) {
	var results []models.Result
	err := r.s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketResults)).ForEach(func(_, data []byte) error {
			var res models.Result
			if err := json.Unmarshal(data, &res); err != nil {
				return err
			}
			if res.TournamentID == tournamentID {
				results = append(results, res)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].FinalizedAt.Equal(results[j].FinalizedAt) {
			return results[i].FinalizedAt.Before(results[j].FinalizedAt)
		}
		return results[i].FixtureID < results[j].FixtureID
	})
	return results, nil
}

type boltStandings struct{ s *BoltStore }

func (r *boltStandings) ReplaceForTournament(ctx context.Context, tournamentID int, entries []models.StandingsEntry) error {
	return r.s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(entries)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketStandings)).Put(itob(uint64(tournamentID)), data)
	})
}

func (r *boltStandings) ListByTournament(ctx context.Context, tournamentID int) ([]models.StandingsEntry, error) {
	var entries []models.StandingsEntry
	err := r.s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketStandings)).Get(itob(uint64(tournamentID)))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &entries)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
