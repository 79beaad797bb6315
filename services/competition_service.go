package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Dosada05/competition-system/models"
	"github.com/Dosada05/competition-system/repositories"
	"github.com/Dosada05/competition-system/storage"
)

type CompetitionInput struct {
	Title             string                   `json:"title"`
	Description       string                   `json:"description"`
	StartDate         time.Time                `json:"start_date"`
	EndDate           time.Time                `json:"end_date"`
	RegistrationClose time.Time                `json:"registration_close"`
	MaxParticipants   int                      `json:"max_participants"`
	Type              models.CompetitionType   `json:"type"`
	Status            models.CompetitionStatus `json:"status"`
}

type CompetitionService interface {
	Create(ctx context.Context, callerRole models.UserRole, input CompetitionInput) (*models.Competition, error)
	GetByID(ctx context.Context, id int) (*models.Competition, error)
	Update(ctx context.Context, callerRole models.UserRole, id int, input CompetitionInput) (*models.Competition, error)
	Delete(ctx context.Context, callerRole models.UserRole, id int) error
	List(ctx context.Context, filter models.CompetitionFilter) ([]models.Competition, error)
	UploadPoster(ctx context.Context, callerRole models.UserRole, id int, contentType string, file io.Reader) (*models.Competition, error)
}

type competitionService struct {
	competitionRepo repositories.CompetitionRepository
	uploader        storage.FileUploader
}

func NewCompetitionService(
	competitionRepo repositories.CompetitionRepository,
	uploader storage.FileUploader,
) CompetitionService {
	return &competitionService{
		competitionRepo: competitionRepo,
		uploader:        uploader,
	}
}

func (s *competitionService) Create(ctx context.Context, callerRole models.UserRole, input CompetitionInput) (*models.Competition, error) {
	if !Authorize(OpCompetitionManage, callerRole) {
		return nil, ErrForbiddenOperation
	}
	if err := validateCompetitionInput(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.CompetitionOpen
	}

	competition := &models.Competition{
		Title:             strings.TrimSpace(input.Title),
		Description:       input.Description,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		RegistrationClose: input.RegistrationClose,
		MaxParticipants:   input.MaxParticipants,
		IsTeamBased:       input.Type == models.CompetitionTeam,
		Type:              input.Type,
		Status:            status,
	}

	if err := s.competitionRepo.Create(ctx, competition); err != nil {
		return nil, err
	}
	return competition, nil
}

func (s *competitionService) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	competition, err := s.competitionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	s.populatePosterURL(competition)
	return competition, nil
}

func (s *competitionService) Update(ctx context.Context, callerRole models.UserRole, id int, input CompetitionInput) (*models.Competition, error) {
	if !Authorize(OpCompetitionManage, callerRole) {
		return nil, ErrForbiddenOperation
	}

	competition, err := s.competitionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrCompetitionTitleRequired
	}
	if input.MaxParticipants <= 0 {
		return nil, ErrCompetitionInvalidCapacity
	}
	if !input.StartDate.Before(input.EndDate) || !input.RegistrationClose.Before(input.EndDate) {
		return nil, ErrCompetitionInvalidDates
	}

	competition.Title = strings.TrimSpace(input.Title)
	competition.Description = input.Description
	competition.StartDate = input.StartDate
	competition.EndDate = input.EndDate
	competition.RegistrationClose = input.RegistrationClose
	competition.MaxParticipants = input.MaxParticipants
	competition.Type = input.Type
	competition.IsTeamBased = input.Type == models.CompetitionTeam
	if input.Status != "" {
		competition.Status = input.Status
	}

	if err := s.competitionRepo.Update(ctx, competition); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	s.populatePosterURL(competition)
	return competition, nil
}

func (s *competitionService) Delete(ctx context.Context, callerRole models.UserRole, id int) error {
	if !Authorize(OpCompetitionManage, callerRole) {
		return ErrForbiddenOperation
	}
	if err := s.competitionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return ErrCompetitionNotFound
		}
		return err
	}
	return nil
}

func (s *competitionService) List(ctx context.Context, filter models.CompetitionFilter) ([]models.Competition, error) {
	competitions, err := s.competitionRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range competitions {
		s.populatePosterURL(&competitions[i])
	}
	return competitions, nil
}

func (s *competitionService) UploadPoster(ctx context.Context, callerRole models.UserRole, id int, contentType string, file io.Reader) (*models.Competition, error) {
	if !Authorize(OpCompetitionManage, callerRole) {
		return nil, ErrForbiddenOperation
	}
	if s.uploader == nil {
		return nil, errors.New("file storage is not configured")
	}

	competition, err := s.competitionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("competitions/%d/poster%s", id, ext)

	oldKey := competition.PosterKey
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload poster: %w", err)
	}
	if err := s.competitionRepo.UpdatePosterKey(ctx, id, &key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != key {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	competition.PosterKey = &key
	s.populatePosterURL(competition)
	return competition, nil
}

func (s *competitionService) populatePosterURL(c *models.Competition) {
	if s.uploader == nil || c == nil || c.PosterKey == nil {
		return
	}
	if u := s.uploader.GetPublicURL(*c.PosterKey); u != "" {
		c.PosterURL = &u
	}
}

func validateCompetitionInput(input CompetitionInput) error {
	now := time.Now()
	switch {
	case strings.TrimSpace(input.Title) == "":
		return ErrCompetitionTitleRequired
	case input.MaxParticipants <= 0:
		return ErrCompetitionInvalidCapacity
	case !input.EndDate.After(now), !input.RegistrationClose.After(now):
		return ErrCompetitionInvalidDates
	case !input.StartDate.Before(input.EndDate):
		return ErrCompetitionInvalidDates
	case input.RegistrationClose.After(input.EndDate):
		return ErrCompetitionInvalidDates
	}
	if input.Type != models.CompetitionIndividual && input.Type != models.CompetitionTeam {
		return fmt.Errorf("unknown competition type: %q", input.Type)
	}
	return nil
}

// registrationOpen проверяет, принимает ли соревнование новые регистрации
// в момент вызова. Используется и регистрациями, и командными операциями.
func registrationOpen(c *models.Competition, now time.Time) bool {
	return c.Status == models.CompetitionOpen && now.Before(c.RegistrationClose)
}
