package services

import (
	"context"

	"github.com/Dosada05/competition-system/models"
	"github.com/Dosada05/competition-system/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context, callerRole models.UserRole) (*models.DashboardStats, error)
}

type dashboardService struct {
	userRepo        repositories.UserRepository
	competitionRepo repositories.CompetitionRepository
	teamRepo        repositories.TeamRepository
	regRepo         repositories.RegistrationRepository
}

func NewDashboardService(
	userRepo repositories.UserRepository,
	competitionRepo repositories.CompetitionRepository,
	teamRepo repositories.TeamRepository,
	regRepo repositories.RegistrationRepository,
) DashboardService {
	return &dashboardService{
		userRepo:        userRepo,
		competitionRepo: competitionRepo,
		teamRepo:        teamRepo,
		regRepo:         regRepo,
	}
}

func (s *dashboardService) GetStats(ctx context.Context, callerRole models.UserRole) (*models.DashboardStats, error) {
	if !Authorize(OpDashboardView, callerRole) {
		return nil, ErrForbiddenOperation
	}

	var stats models.DashboardStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.userRepo.Count(ctx)
		stats.UsersTotal = n
		return err
	})
	g.Go(func() error {
		n, err := s.competitionRepo.Count(ctx, nil)
		stats.CompetitionsTotal = n
		return err
	})
	g.Go(func() error {
		open := models.CompetitionOpen
		n, err := s.competitionRepo.Count(ctx, &open)
		stats.OpenCompetitions = n
		return err
	})
	g.Go(func() error {
		n, err := s.teamRepo.Count(ctx)
		stats.TeamsTotal = n
		return err
	})
	g.Go(func() error {
		n, err := s.regRepo.Count(ctx)
		stats.RegistrationsTotal = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
