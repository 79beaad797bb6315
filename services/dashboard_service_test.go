package services

import (
	"context"
	"testing"

	"github.com/Dosada05/competition-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStats_AdminOnly(t *testing.T) {
	users := newFakeUserRepo()
	competitions := newFakeCompetitionRepo()
	teams := newFakeTeamRepo()
	regs := newFakeRegistrationRepo(competitions, teams)
	svc := NewDashboardService(users, competitions, teams, regs)

	_, err := svc.GetStats(context.Background(), models.RoleUser)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestGetStats_Counts(t *testing.T) {
	users := newFakeUserRepo()
	competitions := newFakeCompetitionRepo()
	teams := newFakeTeamRepo()
	regs := newFakeRegistrationRepo(competitions, teams)
	svc := NewDashboardService(users, competitions, teams, regs)

	user := users.addUser("one@example.com")
	users.addUser("two@example.com")
	open := competitions.addCompetition(models.CompetitionIndividual, 10)
	closed := competitions.addCompetition(models.CompetitionIndividual, 10)
	competitions.competitions[closed.ID].Status = models.CompetitionClosed

	require.NoError(t, regs.Create(context.Background(), &models.Registration{
		UserID:        user.ID,
		CompetitionID: open.ID,
	}))

	stats, err := svc.GetStats(context.Background(), models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.UsersTotal)
	assert.Equal(t, 2, stats.CompetitionsTotal)
	assert.Equal(t, 1, stats.OpenCompetitions)
	assert.Equal(t, 0, stats.TeamsTotal)
	assert.Equal(t, 1, stats.RegistrationsTotal)
}
