package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Dosada05/competition-system/db"
	"github.com/Dosada05/competition-system/models"
	"github.com/Dosada05/competition-system/realtime"
	"github.com/Dosada05/competition-system/repositories"
)

type CreateTeamInput struct {
	Name          string `json:"name"`
	CompetitionID int    `json:"competition_id"`
}

type UpdateTeamInput struct {
	Name             *string `json:"name"`
	AcceptingMembers *bool   `json:"accepting_members"`
}

type TeamService interface {
	CreateTeam(ctx context.Context, creatorID int, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, id int) (*models.Team, error)
	UpdateTeamDetails(ctx context.Context, callerID, teamID int, input UpdateTeamInput) (*models.Team, error)
	JoinTeam(ctx context.Context, userID, teamID int) error
	AddMemberByEmail(ctx context.Context, callerID, teamID int, email string) (*models.TeamMember, error)
	RemoveMember(ctx context.Context, callerID, teamID, memberID int) error
	ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error)
}

type teamService struct {
	teamRepo        repositories.TeamRepository
	userRepo        repositories.UserRepository
	competitionRepo repositories.CompetitionRepository
	regRepo         repositories.RegistrationRepository
	txManager       db.TxManager
	hub             *realtime.Hub
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	competitionRepo repositories.CompetitionRepository,
	regRepo repositories.RegistrationRepository,
	txManager db.TxManager,
	hub *realtime.Hub,
) TeamService {
	return &teamService{
		teamRepo:        teamRepo,
		userRepo:        userRepo,
		competitionRepo: competitionRepo,
		regRepo:         regRepo,
		txManager:       txManager,
		hub:             hub,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, creatorID int, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{
		Name:             name,
		CompetitionID:    input.CompetitionID,
		LeaderID:         creatorID,
		AcceptingMembers: true,
	}

	err := withTxRetry(ctx, s.txManager, func(ctx context.Context) error {
		competition, err := s.competitionRepo.GetByID(ctx, input.CompetitionID)
		if err != nil {
			if errors.Is(err, repositories.ErrCompetitionNotFound) {
				return ErrCompetitionNotFound
			}
			return err
		}
		if competition.Type != models.CompetitionTeam {
			return ErrCompetitionNotTeamBased
		}
		if !registrationOpen(competition, time.Now()) {
			return ErrRegistrationClosed
		}

		// Создатель не может состоять в другой команде этого соревнования.
		if _, err := s.teamRepo.FindTeamIDByUserAndCompetition(ctx, creatorID, input.CompetitionID); err == nil {
			return ErrAlreadyInOtherTeam
		} else if !errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return err
		}

		if err := s.teamRepo.Create(ctx, team); err != nil {
			switch {
			case errors.Is(err, repositories.ErrTeamNameConflict):
				return ErrTeamNameConflict
			case errors.Is(err, repositories.ErrTeamCompetitionInvalid):
				return ErrCompetitionNotFound
			}
			return err
		}

		member := &models.TeamMember{
			TeamID:        team.ID,
			UserID:        creatorID,
			CompetitionID: input.CompetitionID,
		}
		if err := s.teamRepo.AddMember(ctx, member); err != nil {
			return mapAddMemberError(err)
		}

		// Лидер регистрируется на соревнование вместе с командой.
		reg := &models.Registration{
			UserID:        creatorID,
			CompetitionID: input.CompetitionID,
			TeamID:        &team.ID,
		}
		if err := s.regRepo.Create(ctx, reg); err != nil && !errors.Is(err, repositories.ErrRegistrationConflict) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToRoom(realtime.TeamRoom(team.ID), realtime.EventTeamRegistered, team)
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	members, err := s.teamRepo.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Members = members

	if leader, err := s.userRepo.GetByID(ctx, team.LeaderID); err == nil {
		team.Leader = leader
	}
	if competition, err := s.competitionRepo.GetByID(ctx, team.CompetitionID); err == nil {
		team.Competition = competition
	}
	return team, nil
}

func (s *teamService) UpdateTeamDetails(ctx context.Context, callerID, teamID int, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.LeaderID != callerID {
		return nil, ErrLeaderActionForbidden
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}
	if input.AcceptingMembers != nil {
		team.AcceptingMembers = *input.AcceptingMembers
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) JoinTeam(ctx context.Context, userID, teamID int) error {
	var joined *models.TeamMember

	err := withTxRetry(ctx, s.txManager, func(ctx context.Context) error {
		team, err := s.teamRepo.GetByIDForUpdate(ctx, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return err
		}
		if !team.AcceptingMembers {
			return ErrTeamNotAccepting
		}

		member, err := s.joinLockedTeam(ctx, team, userID, true)
		if err != nil {
			return err
		}
		joined = member
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.BroadcastToRoom(realtime.TeamRoom(teamID), realtime.EventMemberJoined, joined)
	return nil
}

// AddMemberByEmail добавляет пользователя в команду напрямую, минуя флаг
// accepting_members. Регистрация на соревнование при этом не создаётся.
// TODO(#87): решить, должна ли ручная посадка в команду создавать регистрацию,
// как это делают JoinTeam и AcceptInvite.
func (s *teamService) AddMemberByEmail(ctx context.Context, callerID, teamID int, email string) (*models.TeamMember, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var member *models.TeamMember
	err = withTxRetry(ctx, s.txManager, func(ctx context.Context) error {
		team, err := s.teamRepo.GetByIDForUpdate(ctx, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return err
		}
		if team.LeaderID != callerID {
			return ErrLeaderActionForbidden
		}

		m, err := s.joinLockedTeam(ctx, team, user.ID, false)
		if err != nil {
			return err
		}
		member = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	member.User = user
	s.hub.BroadcastToRoom(realtime.TeamRoom(teamID), realtime.EventMemberJoined, member)
	return member, nil
}

func (s *teamService) RemoveMember(ctx context.Context, callerID, teamID, memberID int) error {
	err := withTxRetry(ctx, s.txManager, func(ctx context.Context) error {
		team, err := s.teamRepo.GetByIDForUpdate(ctx, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return err
		}
		// Выйти из команды может сам участник, исключить — только лидер.
		if callerID != team.LeaderID && callerID != memberID {
			return ErrLeaderActionForbidden
		}
		if memberID == team.LeaderID {
			return ErrCannotRemoveLeader
		}

		if err := s.teamRepo.RemoveMember(ctx, teamID, memberID); err != nil {
			if errors.Is(err, repositories.ErrTeamMemberNotFound) {
				return ErrTeamMemberNotFound
			}
			return err
		}

		// Командная регистрация участника снимается вместе с членством.
		if err := s.regRepo.DeleteByUserAndTeam(ctx, memberID, teamID); err != nil &&
			!errors.Is(err, repositories.ErrRegistrationNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.BroadcastToRoom(realtime.TeamRoom(teamID), realtime.EventMemberLeft, map[string]int{
		"team_id": teamID,
		"user_id": memberID,
	})
	return nil
}

func (s *teamService) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return s.teamRepo.ListMembers(ctx, teamID)
}

func (s *teamService) joinLockedTeam(ctx context.Context, team *models.Team, userID int, withRegistration bool) (*models.TeamMember, error) {
	return joinLockedTeam(ctx, s.teamRepo, s.competitionRepo, s.regRepo, team, userID, withRegistration)
}

// joinLockedTeam выполняет общую для JoinTeam, AddMemberByEmail и
// AcceptInvite последовательность: проверка членства, окна регистрации
// и вместимости, затем вставка участника. Строка команды должна быть
// заблокирована вызывающей транзакцией (GetByIDForUpdate), иначе две
// конкурентные вставки могут обе пройти проверку вместимости.
func joinLockedTeam(
	ctx context.Context,
	teamRepo repositories.TeamRepository,
	competitionRepo repositories.CompetitionRepository,
	regRepo repositories.RegistrationRepository,
	team *models.Team,
	userID int,
	withRegistration bool,
) (*models.TeamMember, error) {
	existingTeamID, err := teamRepo.FindTeamIDByUserAndCompetition(ctx, userID, team.CompetitionID)
	switch {
	case err == nil && existingTeamID == team.ID:
		return nil, ErrAlreadyMember
	case err == nil:
		return nil, ErrAlreadyInOtherTeam
	case !errors.Is(err, repositories.ErrTeamMemberNotFound):
		return nil, err
	}

	competition, err := competitionRepo.GetByID(ctx, team.CompetitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	if !registrationOpen(competition, time.Now()) {
		return nil, ErrRegistrationClosed
	}

	count, err := teamRepo.CountMembers(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	if count >= competition.MaxParticipants {
		return nil, ErrTeamFull
	}

	member := &models.TeamMember{
		TeamID:        team.ID,
		UserID:        userID,
		CompetitionID: team.CompetitionID,
	}
	if err := teamRepo.AddMember(ctx, member); err != nil {
		return nil, mapAddMemberError(err)
	}

	if withRegistration {
		reg := &models.Registration{
			UserID:        userID,
			CompetitionID: team.CompetitionID,
			TeamID:        &team.ID,
		}
		if err := regRepo.Create(ctx, reg); err != nil && !errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, err
		}
	}
	return member, nil
}

// mapAddMemberError переводит нарушения ограничений БД в бизнес-ошибки.
// Уникальные индексы здесь — страховка на случай гонки, не пойманной
// предварительными проверками.
func mapAddMemberError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTeamMemberConflict):
		return ErrAlreadyMember
	case errors.Is(err, repositories.ErrMembershipCompetitionConflict):
		return ErrAlreadyInOtherTeam
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	}
	return err
}
