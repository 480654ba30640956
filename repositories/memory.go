package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sportsync/matchday/models"
)

// MemoryStore is an in-process implementation of every repository
// interface, exposed as per-entity facets over one shared state. It backs
// tests and single-process runs that need no external database.
type MemoryStore struct {
	mu sync.RWMutex

	nextTournamentID int
	nextFixtureID    int
	nextSlotID       int

	tournaments map[int]*models.Tournament
	teams       map[int]models.Team
	windows     []models.VenueWindow
	fixtures    map[int]*models.Fixture
	slots       map[int]*models.VenueSlot
	results     map[int]models.Result // keyed by fixture id
	standings   map[int][]models.StandingsEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextTournamentID: 1,
		nextFixtureID:    1,
		nextSlotID:       1,
		tournaments:      make(map[int]*models.Tournament),
		teams:            make(map[int]models.Team),
		fixtures:         make(map[int]*models.Fixture),
		slots:            make(map[int]*models.VenueSlot),
		results:          make(map[int]models.Result),
		standings:        make(map[int][]models.StandingsEntry),
	}
}

func (s *MemoryStore) Tournaments() TournamentRepository { return &memTournaments{s} }
func (s *MemoryStore) Teams() TeamRepository             { return &memTeams{s} }
func (s *MemoryStore) Venues() VenueRepository           { return &memVenues{s} }
func (s *MemoryStore) Fixtures() FixtureRepository       { return &memFixtures{s} }
func (s *MemoryStore) Slots() SlotRepository             { return &memSlots{s} }
func (s *MemoryStore) Results() ResultRepository         { return &memResults{s} }
func (s *MemoryStore) Standings() StandingRepository     { return &memStandings{s} }

// SeedTeams loads read-only team reference data.
func (s *MemoryStore) SeedTeams(teams ...models.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range teams {
		s.teams[t.ID] = t
	}
}

// SeedWindows loads read-only venue availability windows.
func (s *MemoryStore) SeedWindows(windows ...models.VenueWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = append(s.windows, windows...)
}

type memTournaments struct{ s *MemoryStore }

func (r *memTournaments) Create(ctx context.Context, tournament *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tournament.ID = r.s.nextTournamentID
	r.s.nextTournamentID++
	if tournament.CreatedAt.IsZero() {
		tournament.CreatedAt = time.Now().UTC()
	}
	clone := *tournament
	clone.TeamIDs = append([]int(nil), tournament.TeamIDs...)
	r.s.tournaments[tournament.ID] = &clone
	return nil
}

func (r *memTournaments) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	clone := *t
	clone.TeamIDs = append([]int(nil), t.TeamIDs...)
	return &clone, nil
}

func (r *memTournaments) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *memTournaments) MarkFixturesGenerated(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return ErrTournamentNotFound
	}
	t.FixturesGenerated = true
	return nil
}

type memTeams struct{ s *MemoryStore }

func (r *memTeams) ListByIDs(ctx context.Context, ids []int) ([]models.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var teams []models.Team
	for _, id := range ids {
		if t, ok := r.s.teams[id]; ok {
			teams = append(teams, t)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

type memVenues struct{ s *MemoryStore }

func (r *memVenues) ListWindows(ctx context.Context, venueIDs []int) ([]models.VenueWindow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[int]bool, len(venueIDs))
	for _, id := range venueIDs {
		wanted[id] = true
	}
	var windows []models.VenueWindow
	for _, w := range r.s.windows {
		if wanted[w.VenueID] {
			windows = append(windows, w)
		}
	}
	return windows, nil
}

type memFixtures struct{ s *MemoryStore }

func (r *memFixtures) CreateBatch(ctx context.Context, fixtures []*models.Fixture) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range fixtures {
		f.ID = r.s.nextFixtureID
		r.s.nextFixtureID++
		clone := *f
		r.s.fixtures[f.ID] = &clone
	}
	return nil
}

func (r *memFixtures) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.fixtures[id]
	if !ok {
		return nil, ErrFixtureNotFound
	}
	clone := *f
	return &clone, nil
}

func (r *memFixtures) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Fixture, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var fixtures []*models.Fixture
	for _, f := range r.s.fixtures {
		if f.TournamentID == tournamentID {
			clone := *f
			fixtures = append(fixtures, &clone)
		}
	}
	sort.Slice(fixtures, func(i, j int) bool {
		if fixtures[i].Round != fixtures[j].Round {
			return fixtures[i].Round < fixtures[j].Round
		}
		return fixtures[i].ID < fixtures[j].ID
	})
	return fixtures, nil
}

func (r *memFixtures) UpdateSlot(ctx context.Context, id int, venueID int, start, end time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.fixtures[id]
	if !ok {
		return ErrFixtureNotFound
	}
	f.VenueID = &venueID
	f.StartTime = &start
	f.EndTime = &end
	return nil
}

func (r *memFixtures) UpdateStatus(ctx context.Context, id int, status models.FixtureStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.fixtures[id]
	if !ok {
		return ErrFixtureNotFound
	}
	f.Status = status
	return nil
}

type memSlots struct{ s *MemoryStore }

func (r *memSlots) CreateBatch(ctx context.Context, slots []*models.VenueSlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, slot := range slots {
		slot.ID = r.s.nextSlotID
		r.s.nextSlotID++
		clone := *slot
		r.s.slots[slot.ID] = &clone
	}
	return nil
}

func (r *memSlots) ListByVenue(ctx context.Context, venueID int) ([]models.VenueSlot, error) {
	return r.ListByVenues(ctx, []int{venueID})
}

func (r *memSlots) ListByVenues(ctx context.Context, venueIDs []int) ([]models.VenueSlot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[int]bool, len(venueIDs))
	for _, id := range venueIDs {
		wanted[id] = true
	}
	var slots []models.VenueSlot
	for _, slot := range r.s.slots {
		if wanted[slot.VenueID] {
			slots = append(slots, *slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Start.Equal(slots[j].Start) {
			return slots[i].Start.Before(slots[j].Start)
		}
		return slots[i].ID < slots[j].ID
	})
	return slots, nil
}

func (r *memSlots) GetByFixture(ctx context.Context, fixtureID int) (*models.VenueSlot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, slot := range r.s.slots {
		if slot.FixtureID != nil && *slot.FixtureID == fixtureID && slot.Status == models.SlotStatusBooked {
			clone := *slot
			return &clone, nil
		}
	}
	return nil, ErrSlotNotFound
}

func (r *memSlots) Rebook(ctx context.Context, fixtureID int, slot models.VenueSlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var oldID int
	found := false
	for id, existing := range r.s.slots {
		if existing.FixtureID != nil && *existing.FixtureID == fixtureID && existing.Status == models.SlotStatusBooked {
			oldID = id
			found = true
			break
		}
	}
	if !found {
		return ErrSlotNotFound
	}
	delete(r.s.slots, oldID)
	slot.ID = r.s.nextSlotID
	r.s.nextSlotID++
	fid := fixtureID
	slot.FixtureID = &fid
	slot.Status = models.SlotStatusBooked
	r.s.slots[slot.ID] = &slot
	return nil
}

type memResults struct{ s *MemoryStore }

func (r *memResults) Upsert(ctx context.Context, result *models.Result) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.results[result.FixtureID] = *result
	return nil
}

func (r *memResults) Delete(ctx context.Context, fixtureID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.results[fixtureID]; !ok {
		return ErrResultNotFound
	}
	delete(r.s.results, fixtureID)
	return nil
}

func (r *memResults) GetByFixture(ctx context.Context, fixtureID int) (*models.Result, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	res, ok := r.s.results[fixtureID]
	if !ok {
		return nil, ErrResultNotFound
	}
	return &res, nil
}

func (r *memResults) ListByTournament(ctx context.Context, tournamentID int) ([]models.Result, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var results []models.Result
	for _, res := range r.s.results {
		if res.TournamentID == tournamentID {
			results = append(results, res)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].FinalizedAt.Equal(results[j].FinalizedAt) {
			return results[i].FinalizedAt.Before(results[j].FinalizedAt)
		}
		return results[i].FixtureID < results[j].FixtureID
	})
	return results, nil
}

type memStandings struct{ s *MemoryStore }

func (r *memStandings) ReplaceForTournament(ctx context.Context, tournamentID int, entries []models.StandingsEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.standings[tournamentID] = append([]models.StandingsEntry(nil), entries...)
	return nil
}

func (r *memStandings) ListByTournament(ctx context.Context, tournamentID int) ([]models.StandingsEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]models.StandingsEntry(nil), r.s.standings[tournamentID]...), nil
}
