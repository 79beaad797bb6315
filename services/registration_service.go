package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Dosada05/competition-system/db"
	"github.com/Dosada05/competition-system/models"
	"github.com/Dosada05/competition-system/repositories"
)

type RegistrationService interface {
	RegisterForCompetition(ctx context.Context, userID, competitionID int, teamID *int) (*models.Registration, error)
	ListMyCompetitions(ctx context.Context, userID int) ([]models.Competition, error)
	ListMyTeams(ctx context.Context, userID int) ([]models.Team, error)
}

type registrationService struct {
	regRepo         repositories.RegistrationRepository
	competitionRepo repositories.CompetitionRepository
	teamRepo        repositories.TeamRepository
	userRepo        repositories.UserRepository
	profileRepo     repositories.ProfileRepository
	txManager       db.TxManager
}

func NewRegistrationService(
	regRepo repositories.RegistrationRepository,
	competitionRepo repositories.CompetitionRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	txManager db.TxManager,
) RegistrationService {
	return &registrationService{
		regRepo:         regRepo,
		competitionRepo: competitionRepo,
		teamRepo:        teamRepo,
		userRepo:        userRepo,
		profileRepo:     profileRepo,
		txManager:       txManager,
	}
}

func (s *registrationService) RegisterForCompetition(ctx context.Context, userID, competitionID int, teamID *int) (*models.Registration, error) {
	reg := &models.Registration{
		UserID:        userID,
		CompetitionID: competitionID,
		TeamID:        teamID,
	}

	err := withTxRetry(ctx, s.txManager, func(ctx context.Context) error {
		competition, err := s.competitionRepo.GetByID(ctx, competitionID)
		if err != nil {
			if errors.Is(err, repositories.ErrCompetitionNotFound) {
				return ErrCompetitionNotFound
			}
			return err
		}

		// Повторная регистрация определяется раньше всех проверок команды:
		// пользователь без team_id должен получить "уже зарегистрирован",
		// а не ошибку про обязательную команду.
		if _, err := s.regRepo.FindByUserAndCompetition(ctx, userID, competitionID); err == nil {
			return ErrAlreadyRegistered
		} else if !errors.Is(err, repositories.ErrRegistrationNotFound) {
			return err
		}

		if !registrationOpen(competition, time.Now()) {
			return ErrRegistrationClosed
		}

		if competition.Type == models.CompetitionTeam {
			if teamID == nil {
				return ErrTeamRequired
			}
			team, err := s.teamRepo.GetByID(ctx, *teamID)
			if err != nil {
				if errors.Is(err, repositories.ErrTeamNotFound) {
					return ErrTeamNotFound
				}
				return err
			}
			// Команда из другого соревнования для этой регистрации не существует.
			if team.CompetitionID != competitionID {
				return ErrTeamNotFound
			}
			isMember, err := s.teamRepo.IsMember(ctx, *teamID, userID)
			if err != nil {
				return err
			}
			if !isMember {
				return ErrNotTeamMember
			}
		} else if teamID != nil {
			return ErrTeamNotAllowed
		}

		if err := s.ensureProfile(ctx, userID); err != nil {
			return err
		}

		if err := s.regRepo.Create(ctx, reg); err != nil {
			switch {
			case errors.Is(err, repositories.ErrRegistrationConflict):
				return ErrAlreadyRegistered
			case errors.Is(err, repositories.ErrRegistrationUserInvalid):
				return ErrUserNotFound
			case errors.Is(err, repositories.ErrRegistrationCompetitionInvalid):
				return ErrCompetitionNotFound
			case errors.Is(err, repositories.ErrRegistrationTeamInvalid):
				return ErrTeamNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// ensureProfile лениво создаёт пустой профиль при первой регистрации:
// имя берётся из локальной части email, пока пользователь не заполнит
// профиль сам.
func (s *registrationService) ensureProfile(ctx context.Context, userID int) error {
	_, err := s.profileRepo.GetByUserID(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrProfileNotFound) {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	profile := &models.Profile{
		UserID:   userID,
		FullName: strings.SplitN(user.Email, "@", 2)[0],
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		// Параллельная регистрация могла создать профиль первой.
		if errors.Is(err, repositories.ErrProfileUserConflict) {
			return nil
		}
		return err
	}
	return nil
}

func (s *registrationService) ListMyCompetitions(ctx context.Context, userID int) ([]models.Competition, error) {
	return s.regRepo.ListCompetitionsByUser(ctx, userID)
}

func (s *registrationService) ListMyTeams(ctx context.Context, userID int) ([]models.Team, error) {
	return s.teamRepo.ListByMember(ctx, userID)
}
