package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sportsync/matchday/events"
	"github.com/sportsync/matchday/models"
	"github.com/sportsync/matchday/repositories"
)

// AnnouncementService pushes organizer messages to announcement
// subscribers. Announcements are fire-and-forget: delivery goes through the
// hub's retention window, nothing is persisted.
type AnnouncementService struct {
	tournaments repositories.TournamentRepository
	bus         *events.Bus
	logger      *slog.Logger
}

func NewAnnouncementService(tournaments repositories.TournamentRepository, bus *events.Bus, logger *slog.Logger) *AnnouncementService {
	return &AnnouncementService{tournaments: tournaments, bus: bus, logger: logger}
}

type PostAnnouncementParams struct {
	Title string
	Body  string
}

func (s *AnnouncementService) PostAnnouncement(ctx context.Context, caller models.Caller, tournamentID int, params PostAnnouncementParams) (*models.Announcement, error) {
	if strings.TrimSpace(params.Title) == "" && strings.TrimSpace(params.Body) == "" {
		return nil, ErrValidationFailed
	}
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := canManage(caller, t); err != nil {
		return nil, err
	}

	announcement := &models.Announcement{
		TournamentID: tournamentID,
		Title:        strings.TrimSpace(params.Title),
		Body:         strings.TrimSpace(params.Body),
		PostedBy:     caller.UserID,
		PostedAt:     time.Now().UTC(),
	}
	s.bus.Emit(ctx, events.Event{
		Type:         events.TypeAnnouncementPosted,
		TournamentID: tournamentID,
		Payload:      announcement,
	})

	s.logger.Info("announcement posted",
		slog.Int("tournament_id", tournamentID),
		slog.Int("posted_by", caller.UserID))
	return announcement, nil
}
