package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/Dosada05/competition-system/db"
	"github.com/Dosada05/competition-system/models"
	"github.com/Dosada05/competition-system/realtime"
	"github.com/Dosada05/competition-system/repositories"
)

// InviteMailer отправляет письмо-приглашение. Реализуется EmailService;
// nil означает, что почта не настроена.
type InviteMailer interface {
	SendTeamInviteEmail(toEmail, teamName string, inviteID int) error
}

type InviteService interface {
	InviteByEmail(ctx context.Context, inviterID, teamID int, email string) (*models.TeamInvite, error)
	AcceptInvite(ctx context.Context, userID, inviteID int) (*models.TeamMember, error)
	ListTeamInvites(ctx context.Context, callerID, teamID int) ([]*models.TeamInvite, error)
}

type inviteService struct {
	inviteRepo      repositories.InviteRepository
	teamRepo        repositories.TeamRepository
	userRepo        repositories.UserRepository
	competitionRepo repositories.CompetitionRepository
	regRepo         repositories.RegistrationRepository
	txManager       db.TxManager
	hub             *realtime.Hub
	mailer          InviteMailer
	logger          *slog.Logger
}

func NewInviteService(
	inviteRepo repositories.InviteRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	competitionRepo repositories.CompetitionRepository,
	regRepo repositories.RegistrationRepository,
	txManager db.TxManager,
	hub *realtime.Hub,
	mailer InviteMailer,
	logger *slog.Logger,
) InviteService {
	return &inviteService{
		inviteRepo:      inviteRepo,
		teamRepo:        teamRepo,
		userRepo:        userRepo,
		competitionRepo: competitionRepo,
		regRepo:         regRepo,
		txManager:       txManager,
		hub:             hub,
		mailer:          mailer,
		logger:          logger,
	}
}

func (s *inviteService) InviteByEmail(ctx context.Context, inviterID, teamID int, email string) (*models.TeamInvite, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	// Приглашать может любой участник команды, не только лидер.
	isMember, err := s.teamRepo.IsMember(ctx, teamID, inviterID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotTeamMember
	}

	invite := &models.TeamInvite{
		TeamID:    teamID,
		Email:     email,
		InviterID: inviterID,
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		if errors.Is(err, repositories.ErrInviteTeamInvalid) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	if s.mailer != nil {
		// Сбой почты не откатывает приглашение.
		if err := s.mailer.SendTeamInviteEmail(email, team.Name, invite.ID); err != nil {
			s.logger.Warn("failed to send invite email",
				slog.Int("invite_id", invite.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return invite, nil
}

func (s *inviteService) AcceptInvite(ctx context.Context, userID, inviteID int) (*models.TeamMember, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var member *models.TeamMember
	var teamID int

	err = withTxRetry(ctx, s.txManager, func(ctx context.Context) error {
		invite, err := s.inviteRepo.GetByID(ctx, inviteID)
		if err != nil {
			if errors.Is(err, repositories.ErrInviteNotFound) {
				return ErrInviteNotFound
			}
			return err
		}
		if invite.Accepted {
			return ErrInviteAlreadyAccepted
		}
		if !strings.EqualFold(invite.Email, user.Email) {
			return ErrInviteEmailMismatch
		}

		team, err := s.teamRepo.GetByIDForUpdate(ctx, invite.TeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return err
		}
		teamID = team.ID

		// Приглашение обходит флаг accepting_members, но не вместимость.
		m, err := joinLockedTeam(ctx, s.teamRepo, s.competitionRepo, s.regRepo, team, userID, true)
		if err != nil {
			return err
		}

		if err := s.inviteRepo.MarkAccepted(ctx, inviteID); err != nil {
			if errors.Is(err, repositories.ErrInviteAlreadyAccepted) {
				return ErrInviteAlreadyAccepted
			}
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

func (s *inviteService) ListTeamInvites(ctx context.Context, callerID, teamID int) ([]*models.TeamInvite, error) {
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
	return s.inviteRepo.ListByTeamID(ctx, teamID)
}
