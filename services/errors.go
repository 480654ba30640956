package services

import (
	"errors"
	"fmt"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации и бизнес-правил
	ErrValidationFailed        = errors.New("validation failed")
	ErrNotEnoughTeams          = errors.New("tournament needs at least two teams")
	ErrDuplicateTeam           = errors.New("duplicate team in tournament team list")
	ErrTeamListLocked          = errors.New("team list is frozen after fixtures are generated")
	ErrFixturesAlreadyExist    = errors.New("fixtures have already been generated for this tournament")
	ErrFixtureNotReschedulable = errors.New("completed or cancelled fixtures cannot be rescheduled")
	ErrFixtureNotCompleted     = errors.New("fixture has no finalized result")
	ErrResultAlreadyExists     = errors.New("fixture already has a finalized result")
	ErrInvalidScore            = errors.New("scores must be non-negative")
	ErrInvalidFormat           = errors.New("unknown tournament format")
	ErrInvalidStatusChange     = errors.New("tournament status transition not allowed")

	// Ошибки аутентификации и авторизации
	ErrPermissionDenied = errors.New("operation not allowed for the current user")
)

// ConflictError reports a rejected slot booking together with every booking
// it would have collided with, so the caller can pick a free slot without a
// second round trip. Blocked maintenance intervals surface with no fixture
// ids.
type ConflictError struct {
	VenueID               int
	OverlappingFixtureIDs []int
	Blocked               bool
}

func (e *ConflictError) Error() string {
	if e.Blocked && len(e.OverlappingFixtureIDs) == 0 {
		return fmt.Sprintf("venue %d is blocked for the requested interval", e.VenueID)
	}
	return fmt.Sprintf("venue %d already booked for the requested interval (fixtures %v)", e.VenueID, e.OverlappingFixtureIDs)
}
