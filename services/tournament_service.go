package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sportsync/matchday/models"
	"github.com/sportsync/matchday/repositories"
)

type TournamentService struct {
	tournaments repositories.TournamentRepository
	logger      *slog.Logger
}

func NewTournamentService(tournaments repositories.TournamentRepository, logger *slog.Logger) *TournamentService {
	return &TournamentService{tournaments: tournaments, logger: logger}
}

type CreateTournamentParams struct {
	Name        string
	Format      models.TournamentFormat
	Scoring     models.ScoringRule
	TeamIDs     []int
	OrganizerID int
}

func (s *TournamentService) CreateTournament(ctx context.Context, caller models.Caller, params CreateTournamentParams) (*models.Tournament, error) {
	if caller.Anonymous() || caller.Role == models.RoleViewer {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrValidationFailed
	}
	if !params.Format.Valid() {
		return nil, ErrInvalidFormat
	}
	if params.Scoring.PointsWin <= 0 || params.Scoring.PointsDraw < 0 {
		return nil, ErrValidationFailed
	}
	if len(params.TeamIDs) < 2 {
		return nil, ErrNotEnoughTeams
	}
	seen := make(map[int]bool, len(params.TeamIDs))
	for _, id := range params.TeamIDs {
		if seen[id] {
			return nil, ErrDuplicateTeam
		}
		seen[id] = true
	}

	tournament := &models.Tournament{
		Name:        strings.TrimSpace(params.Name),
		Format:      params.Format,
		Scoring:     params.Scoring,
		TeamIDs:     append([]int(nil), params.TeamIDs...),
		OrganizerID: caller.UserID,
		Status:      models.TournamentStatusDraft,
	}
	if err := s.tournaments.Create(ctx, tournament); err != nil {
		return nil, err
	}

	s.logger.Info("tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.String("format", string(tournament.Format)),
		slog.Int("teams", len(tournament.TeamIDs)))
	return tournament, nil
}

func (s *TournamentService) GetTournament(ctx context.Context, caller models.Caller, id int) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canView(caller, t); err != nil {
		return nil, err
	}
	return t, nil
}

// PublishTournament moves a draft to published, opening it to anonymous
// viewers and subscribers. The transition is one-way.
func (s *TournamentService) PublishTournament(ctx context.Context, caller models.Caller, id int) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canManage(caller, t); err != nil {
		return nil, err
	}
	if t.Status != models.TournamentStatusDraft {
		return nil, ErrInvalidStatusChange
	}
	if err := s.tournaments.UpdateStatus(ctx, id, models.TournamentStatusPublished); err != nil {
		return nil, err
	}
	t.Status = models.TournamentStatusPublished

	s.logger.Info("tournament published", slog.Int("tournament_id", id))
	return t, nil
}

// CanView is the visibility gate shared with the broadcast hub: published
// tournaments admit anyone, unpublished ones only their organizer or an
// admin.
func (s *TournamentService) CanView(ctx context.Context, caller models.Caller, tournamentID int) error {
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return err
	}
	return canView(caller, t)
}

func canView(caller models.Caller, t *models.Tournament) error {
	if t.Status == models.TournamentStatusPublished || t.Status == models.TournamentStatusCompleted {
		return nil
	}
	return canManage(caller, t)
}

func canManage(caller models.Caller, t *models.Tournament) error {
	if caller.IsAdmin() {
		return nil
	}
	if !caller.Anonymous() && caller.UserID == t.OrganizerID {
		return nil
	}
	return ErrPermissionDenied
}
