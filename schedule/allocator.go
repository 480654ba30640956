package schedule

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sportsync/matchday/models"
)

var ErrNoVenueWindows = errors.New("no venue availability windows provided")

type AllocateParams struct {
	Pairings      []Pairing
	Windows       []models.VenueWindow
	Existing      []models.VenueSlot // booked/blocked slots already on the venues
	NotBefore     time.Time
	MatchDuration time.Duration
	BreakDuration time.Duration
}

// Allocation is the outcome of one allocation batch. Pairings that could not
// be placed inside the availability windows are returned in Unscheduled
// rather than failing the batch; callers may re-run them with relaxed
// constraints.
type Allocation struct {
	Fixtures    []models.Fixture
	Unscheduled []Pairing
}

type interval struct {
	start time.Time
	end   time.Time
}

// VenueSlotAllocator assigns generated pairings to venue/time slots. Within
// a round fixtures spread across venues in parallel; a new round never
// starts before every fixture of the previous round has finished, so a team
// is never booked twice at overlapping times.
type VenueSlotAllocator struct{}

func NewVenueSlotAllocator() *VenueSlotAllocator {
	return &VenueSlotAllocator{}
}

// Allocate books the earliest non-conflicting slot for each pairing,
// cycling across venues to balance load. A candidate slot is rejected if its
// interval overlaps any existing booked or blocked slot on that venue. The
// reserved interval covers match plus break; the fixture itself ends when
// the match does.
func (a *VenueSlotAllocator) Allocate(ctx context.Context, params AllocateParams) (*Allocation, error) {
	if len(params.Windows) == 0 {
		return nil, ErrNoVenueWindows
	}

	slotDur := params.MatchDuration + params.BreakDuration

	venueOrder := make([]int, 0)
	windows := make(map[int][]models.VenueWindow)
	for _, w := range params.Windows {
		if _, seen := windows[w.VenueID]; !seen {
			venueOrder = append(venueOrder, w.VenueID)
		}
		windows[w.VenueID] = append(windows[w.VenueID], w)
	}
	for id := range windows {
		ws := windows[id]
		sort.Slice(ws, func(i, j int) bool { return ws[i].Start.Before(ws[j].Start) })
	}

	busy := make(map[int][]interval)
	for _, s := range params.Existing {
		if s.Status == models.SlotStatusBooked || s.Status == models.SlotStatusBlocked {
			busy[s.VenueID] = append(busy[s.VenueID], interval{start: s.Start, end: s.End})
		}
	}
	for id := range busy {
		iv := busy[id]
		sort.Slice(iv, func(i, j int) bool { return iv[i].start.Before(iv[j].start) })
	}

	result := &Allocation{}
	roundFloor := params.NotBefore
	roundEnd := roundFloor

	currentRound := 0
	placedInRound := 0
	for _, p := range params.Pairings {
		if p.Round != currentRound {
			// Round boundary: the next round may not start before the last
			// fixture of the previous one has released its slot.
			if roundEnd.After(roundFloor) {
				roundFloor = roundEnd
			}
			currentRound = p.Round
			placedInRound = 0
		}

		venueID, start, ok := earliestFit(venueOrder, placedInRound, windows, busy, roundFloor, slotDur)
		if !ok {
			result.Unscheduled = append(result.Unscheduled, p)
			continue
		}

		slotEnd := start.Add(slotDur)
		busy[venueID] = insertInterval(busy[venueID], interval{start: start, end: slotEnd})
		if slotEnd.After(roundEnd) {
			roundEnd = slotEnd
		}
		placedInRound++

		vID := venueID
		startTime := start
		matchEnd := start.Add(params.MatchDuration)
		result.Fixtures = append(result.Fixtures, models.Fixture{
			Round:      p.Round,
			HomeTeamID: p.HomeID,
			AwayTeamID: p.AwayID,
			VenueID:    &vID,
			StartTime:  &startTime,
			EndTime:    &matchEnd,
			Status:     models.FixtureStatusScheduled,
		})
	}

	return result, nil
}

// earliestFit returns the venue and start of the earliest slot fitting
// slotDur at or after floor. Ties between venues are broken by cycle order
// starting at offset, which rotates per placed fixture.
func earliestFit(
	venueOrder []int,
	offset int,
	windows map[int][]models.VenueWindow,
	busy map[int][]interval,
	floor time.Time,
	slotDur time.Duration,
) (int, time.Time, bool) {
	bestVenue := 0
	var bestStart time.Time
	found := false

	for i := 0; i < len(venueOrder); i++ {
		venueID := venueOrder[(offset+i)%len(venueOrder)]
		start, ok := earliestOnVenue(windows[venueID], busy[venueID], floor, slotDur)
		if !ok {
			continue
		}
		if !found || start.Before(bestStart) {
			bestVenue, bestStart, found = venueID, start, true
		}
	}
	return bestVenue, bestStart, found
}

func earliestOnVenue(windows []models.VenueWindow, taken []interval, floor time.Time, slotDur time.Duration) (time.Time, bool) {
	for _, w := range windows {
		candidate := w.Start
		if floor.After(candidate) {
			candidate = floor
		}
		for !candidate.Add(slotDur).After(w.End) {
			conflict, ok := firstOverlap(taken, candidate, candidate.Add(slotDur))
			if !ok {
				return candidate, true
			}
			candidate = conflict.end
		}
	}
	return time.Time{}, false
}

func firstOverlap(taken []interval, start, end time.Time) (interval, bool) {
	for _, iv := range taken {
		if iv.start.Before(end) && start.Before(iv.end) {
			return iv, true
		}
	}
	return interval{}, false
}

func insertInterval(taken []interval, iv interval) []interval {
	idx := sort.Search(len(taken), func(i int) bool { return taken[i].start.After(iv.start) })
	taken = append(taken, interval{})
	copy(taken[idx+1:], taken[idx:])
	taken[idx] = iv
	return taken
}

// OverlappingFixtures reports which bookings on a venue collide with the
// interval [start, end). The fixture being moved is excluded. Blocked slots
// collide too but carry no fixture id; the second return value reports them.
func OverlappingFixtures(slots []models.VenueSlot, excludeFixtureID int, start, end time.Time) (fixtureIDs []int, blocked bool) {
	for _, s := range slots {
		if s.Status != models.SlotStatusBooked && s.Status != models.SlotStatusBlocked {
			continue
		}
		if !s.Overlaps(start, end) {
			continue
		}
		if s.FixtureID != nil {
			if *s.FixtureID == excludeFixtureID {
				continue
			}
			fixtureIDs = append(fixtureIDs, *s.FixtureID)
		} else {
			blocked = true
		}
	}
	sort.Ints(fixtureIDs)
	return fixtureIDs, blocked
}
