package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/competition-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registrationFixture struct {
	users        *fakeUserRepo
	profiles     *fakeProfileRepo
	competitions *fakeCompetitionRepo
	teams        *fakeTeamRepo
	regs         *fakeRegistrationRepo
	service      RegistrationService
	teamService  TeamService
}

func newRegistrationFixture() *registrationFixture {
	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	competitions := newFakeCompetitionRepo()
	teams := newFakeTeamRepo()
	regs := newFakeRegistrationRepo(competitions, teams)

	return &registrationFixture{
		users:        users,
		profiles:     profiles,
		competitions: competitions,
		teams:        teams,
		regs:         regs,
		service:      NewRegistrationService(regs, competitions, teams, users, profiles, fakeTxManager{}),
		teamService:  NewTeamService(teams, users, competitions, regs, fakeTxManager{}, nil),
	}
}

func TestRegisterForCompetition_Individual(t *testing.T) {
	f := newRegistrationFixture()
	user := f.users.addUser("runner@example.com")
	competition := f.competitions.addCompetition(models.CompetitionIndividual, 100)

	reg, err := f.service.RegisterForCompetition(context.Background(), user.ID, competition.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, user.ID, reg.UserID)
	assert.Equal(t, competition.ID, reg.CompetitionID)
	assert.Nil(t, reg.TeamID)
}

func TestRegisterForCompetition_CreatesProfileLazily(t *testing.T) {
	f := newRegistrationFixture()
	user := f.users.addUser("runner@example.com")
	competition := f.competitions.addCompetition(models.CompetitionIndividual, 100)

	_, err := f.service.RegisterForCompetition(context.Background(), user.ID, competition.ID, nil)
	require.NoError(t, err)

	profile, err := f.profiles.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err, "first registration must create a profile")
	assert.Equal(t, "runner", profile.FullName)
}

func TestRegisterForCompetition_AlreadyRegistered(t *testing.T) {
	f := newRegistrationFixture()
	user := f.users.addUser("runner@example.com")
	competition := f.competitions.addCompetition(models.CompetitionIndividual, 100)

	_, err := f.service.RegisterForCompetition(context.Background(), user.ID, competition.ID, nil)
	require.NoError(t, err)

	_, err = f.service.RegisterForCompetition(context.Background(), user.ID, competition.ID, nil)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterForCompetition_CompetitionNotFound(t *testing.T) {
	f := newRegistrationFixture()
	user := f.users.addUser("runner@example.com")

	_, err := f.service.RegisterForCompetition(context.Background(), user.ID, 999, nil)
	assert.ErrorIs(t, err, ErrCompetitionNotFound)
}

func TestRegisterForCompetition_Closed(t *testing.T) {
	f := newRegistrationFixture()
	user := f.users.addUser("runner@example.com")
	competition := f.competitions.addCompetition(models.CompetitionIndividual, 100)
	f.competitions.competitions[competition.ID].Status = models.CompetitionClosed

	_, err := f.service.RegisterForCompetition(context.Background(), user.ID, competition.ID, nil)
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestRegisterForCompetition_WindowExpired(t *testing.T) {
	f := newRegistrationFixture()
	user := f.users.addUser("runner@example.com")
	competition := f.competitions.addCompetition(models.CompetitionIndividual, 100)
	f.competitions.competitions[competition.ID].RegistrationClose = time.Now().Add(-time.Minute)

	_, err := f.service.RegisterForCompetition(context.Background(), user.ID, competition.ID, nil)
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestRegisterForCompetition_TeamRequired(t *testing.T) {
	f := newRegistrationFixture()
	user := f.users.addUser("runner@example.com")
	competition := f.competitions.addCompetition(models.CompetitionTeam, 5)

	_, err := f.service.RegisterForCompetition(context.Background(), user.ID, competition.ID, nil)
	assert.ErrorIs(t, err, ErrTeamRequired)
}

func TestRegisterForCompetition_TeamNotAllowedForIndividual(t *testing.T) {
	f := newRegistrationFixture()
	user := f.users.addUser("runner@example.com")
	competition := f.competitions.addCompetition(models.CompetitionIndividual, 100)
	teamID := 1

	_, err := f.service.RegisterForCompetition(context.Background(), user.ID, competition.ID, &teamID)
	assert.ErrorIs(t, err, ErrTeamNotAllowed)
}

func TestRegisterForCompetition_NotTeamMember(t *testing.T) {
	f := newRegistrationFixture()
	leader := f.users.addUser("leader@example.com")
	outsider := f.users.addUser("outsider@example.com")
	competition := f.competitions.addCompetition(models.CompetitionTeam, 5)

	team, err := f.teamService.CreateTeam(context.Background(), leader.ID, CreateTeamInput{
		Name:          "Alpha",
		CompetitionID: competition.ID,
	})
	require.NoError(t, err)

	_, err = f.service.RegisterForCompetition(context.Background(), outsider.ID, competition.ID, &team.ID)
	assert.ErrorIs(t, err, ErrNotTeamMember)
}

func TestRegisterForCompetition_TeamFromOtherCompetition(t *testing.T) {
	f := newRegistrationFixture()
	leader := f.users.addUser("leader@example.com")
	compA := f.competitions.addCompetition(models.CompetitionTeam, 5)
	compB := f.competitions.addCompetition(models.CompetitionTeam, 5)

	team, err := f.teamService.CreateTeam(context.Background(), leader.ID, CreateTeamInput{
		Name:          "Alpha",
		CompetitionID: compA.ID,
	})
	require.NoError(t, err)

	_, err = f.service.RegisterForCompetition(context.Background(), leader.ID, compB.ID, &team.ID)
	assert.ErrorIs(t, err, ErrTeamNotFound, "a team from another competition does not exist for this registration")
}

func TestRegisterForCompetition_RetryWithoutTeamReportsAlreadyRegistered(t *testing.T) {
	f := newRegistrationFixture()
	leader := f.users.addUser("leader@example.com")
	competition := f.competitions.addCompetition(models.CompetitionTeam, 5)

	// Создание команды регистрирует лидера автоматически.
	_, err := f.teamService.CreateTeam(context.Background(), leader.ID, CreateTeamInput{
		Name:          "Alpha",
		CompetitionID: competition.ID,
	})
	require.NoError(t, err)

	_, err = f.service.RegisterForCompetition(context.Background(), leader.ID, competition.ID, nil)
	assert.ErrorIs(t, err, ErrAlreadyRegistered, "duplicate wins over the team requirement")
}

func TestListMyCompetitions_DirectAndViaTeam(t *testing.T) {
	f := newRegistrationFixture()
	leader := f.users.addUser("leader@example.com")
	member := f.users.addUser("member@example.com")
	individual := f.competitions.addCompetition(models.CompetitionIndividual, 100)
	teamComp := f.competitions.addCompetition(models.CompetitionTeam, 5)

	_, err := f.service.RegisterForCompetition(context.Background(), member.ID, individual.ID, nil)
	require.NoError(t, err)

	team, err := f.teamService.CreateTeam(context.Background(), leader.ID, CreateTeamInput{
		Name:          "Alpha",
		CompetitionID: teamComp.ID,
	})
	require.NoError(t, err)
	require.NoError(t, f.teamService.JoinTeam(context.Background(), member.ID, team.ID))

	competitions, err := f.service.ListMyCompetitions(context.Background(), member.ID)
	require.NoError(t, err)
	require.Len(t, competitions, 2, "expected both direct and team registrations, without duplicates")

	ids := []int{competitions[0].ID, competitions[1].ID}
	assert.Contains(t, ids, individual.ID)
	assert.Contains(t, ids, teamComp.ID)
}

func TestListMyTeams(t *testing.T) {
	f := newRegistrationFixture()
	leader := f.users.addUser("leader@example.com")
	member := f.users.addUser("member@example.com")
	compA := f.competitions.addCompetition(models.CompetitionTeam, 5)
	compB := f.competitions.addCompetition(models.CompetitionTeam, 5)

	teamA, err := f.teamService.CreateTeam(context.Background(), leader.ID, CreateTeamInput{
		Name:          "Alpha",
		CompetitionID: compA.ID,
	})
	require.NoError(t, err)
	teamB, err := f.teamService.CreateTeam(context.Background(), member.ID, CreateTeamInput{
		Name:          "Beta",
		CompetitionID: compB.ID,
	})
	require.NoError(t, err)
	require.NoError(t, f.teamService.JoinTeam(context.Background(), member.ID, teamA.ID))

	teams, err := f.service.ListMyTeams(context.Background(), member.ID)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, teamA.ID, teams[0].ID)
	assert.Equal(t, teamB.ID, teams[1].ID)
}
