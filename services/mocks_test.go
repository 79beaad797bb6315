package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Dosada05/competition-system/models"
	"github.com/Dosada05/competition-system/repositories"
)

// Ин-мемори фейки репозиториев. Фейки, а не мок-фреймворк: по коду
// сразу видно, как они себя ведут.

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- users ---

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (f *fakeUserRepo) addUser(email string) *models.User {
	u := &models.User{
		ID:        f.nextID,
		Email:     strings.ToLower(email),
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
	}
	f.users[u.ID] = u
	f.nextID++
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) Count(ctx context.Context) (int, error) {
	return len(f.users), nil
}

// --- profiles ---

type fakeProfileRepo struct {
	profiles map[int]*models.Profile // keyed by user ID
	nextID   int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[int]*models.Profile), nextID: 1}
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	if _, ok := f.profiles[profile.UserID]; ok {
		return repositories.ErrProfileUserConflict
	}
	profile.ID = f.nextID
	profile.CreatedAt = time.Now()
	f.nextID++
	copied := *profile
	f.profiles[profile.UserID] = &copied
	return nil
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID int) (*models.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, profile *models.Profile) error {
	if _, ok := f.profiles[profile.UserID]; !ok {
		return repositories.ErrProfileNotFound
	}
	copied := *profile
	f.profiles[profile.UserID] = &copied
	return nil
}

func (f *fakeProfileRepo) UpdateAvatarKey(ctx context.Context, userID int, key *string) error {
	p, ok := f.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.AvatarKey = key
	return nil
}

// --- competitions ---

type fakeCompetitionRepo struct {
	competitions map[int]*models.Competition
	nextID       int
}

func newFakeCompetitionRepo() *fakeCompetitionRepo {
	return &fakeCompetitionRepo{competitions: make(map[int]*models.Competition), nextID: 1}
}

func (f *fakeCompetitionRepo) addCompetition(compType models.CompetitionType, maxParticipants int) *models.Competition {
	c := &models.Competition{
		ID:                f.nextID,
		Title:             "Competition",
		StartDate:         time.Now().Add(48 * time.Hour),
		EndDate:           time.Now().Add(72 * time.Hour),
		RegistrationClose: time.Now().Add(24 * time.Hour),
		MaxParticipants:   maxParticipants,
		IsTeamBased:       compType == models.CompetitionTeam,
		Type:              compType,
		Status:            models.CompetitionOpen,
		CreatedAt:         time.Now(),
	}
	f.competitions[c.ID] = c
	f.nextID++
	return c
}

func (f *fakeCompetitionRepo) Create(ctx context.Context, c *models.Competition) error {
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	f.nextID++
	copied := *c
	f.competitions[c.ID] = &copied
	return nil
}

func (f *fakeCompetitionRepo) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	c, ok := f.competitions[id]
	if !ok {
		return nil, repositories.ErrCompetitionNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCompetitionRepo) Update(ctx context.Context, c *models.Competition) error {
	if _, ok := f.competitions[c.ID]; !ok {
		return repositories.ErrCompetitionNotFound
	}
	copied := *c
	f.competitions[c.ID] = &copied
	return nil
}

func (f *fakeCompetitionRepo) UpdatePosterKey(ctx context.Context, id int, key *string) error {
	c, ok := f.competitions[id]
	if !ok {
		return repositories.ErrCompetitionNotFound
	}
	c.PosterKey = key
	return nil
}

func (f *fakeCompetitionRepo) Delete(ctx context.Context, id int) error {
	if _, ok := f.competitions[id]; !ok {
		return repositories.ErrCompetitionNotFound
	}
	delete(f.competitions, id)
	return nil
}

func (f *fakeCompetitionRepo) List(ctx context.Context, filter models.CompetitionFilter) ([]models.Competition, error) {
	result := make([]models.Competition, 0)
	for _, c := range f.competitions {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && c.Type != *filter.Type {
			continue
		}
		if filter.Search != nil && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(*filter.Search)) {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeCompetitionRepo) Count(ctx context.Context, status *models.CompetitionStatus) (int, error) {
	if status == nil {
		return len(f.competitions), nil
	}
	count := 0
	for _, c := range f.competitions {
		if c.Status == *status {
			count++
		}
	}
	return count, nil
}

// --- teams ---

type fakeTeamRepo struct {
	teams   map[int]*models.Team
	members []models.TeamMember
	nextID  int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
}

func (f *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	for _, t := range f.teams {
		if t.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	team.ID = f.nextID
	team.CreatedAt = time.Now()
	f.nextID++
	copied := *team
	f.teams[team.ID] = &copied
	return nil
}

func (f *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTeamRepo) GetByIDForUpdate(ctx context.Context, id int) (*models.Team, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeTeamRepo) Update(ctx context.Context, team *models.Team) error {
	if _, ok := f.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	for _, t := range f.teams {
		if t.ID != team.ID && t.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	copied := *team
	f.teams[team.ID] = &copied
	return nil
}

func (f *fakeTeamRepo) Delete(ctx context.Context, id int) error {
	if _, ok := f.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(f.teams, id)
	return nil
}

func (f *fakeTeamRepo) AddMember(ctx context.Context, member *models.TeamMember) error {
	if _, ok := f.teams[member.TeamID]; !ok {
		return repositories.ErrTeamNotFound
	}
	for _, m := range f.members {
		if m.TeamID == member.TeamID && m.UserID == member.UserID {
			return repositories.ErrTeamMemberConflict
		}
		if m.UserID == member.UserID && m.CompetitionID == member.CompetitionID {
			return repositories.ErrMembershipCompetitionConflict
		}
	}
	member.JoinedAt = time.Now()
	f.members = append(f.members, *member)
	return nil
}

func (f *fakeTeamRepo) RemoveMember(ctx context.Context, teamID, userID int) error {
	for i, m := range f.members {
		if m.TeamID == teamID && m.UserID == userID {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return repositories.ErrTeamMemberNotFound
}

func (f *fakeTeamRepo) CountMembers(ctx context.Context, teamID int) (int, error) {
	count := 0
	for _, m := range f.members {
		if m.TeamID == teamID {
			count++
		}
	}
	return count, nil
}

func (f *fakeTeamRepo) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	result := make([]models.TeamMember, 0)
	for _, m := range f.members {
		if m.TeamID == teamID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeTeamRepo) IsMember(ctx context.Context, teamID, userID int) (bool, error) {
	for _, m := range f.members {
		if m.TeamID == teamID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTeamRepo) FindTeamIDByUserAndCompetition(ctx context.Context, userID, competitionID int) (int, error) {
	for _, m := range f.members {
		if m.UserID == userID && m.CompetitionID == competitionID {
			return m.TeamID, nil
		}
	}
	return 0, repositories.ErrTeamMemberNotFound
}

func (f *fakeTeamRepo) ListByMember(ctx context.Context, userID int) ([]models.Team, error) {
	seen := make(map[int]bool)
	result := make([]models.Team, 0)
	for _, m := range f.members {
		if m.UserID == userID && !seen[m.TeamID] {
			seen[m.TeamID] = true
			result = append(result, *f.teams[m.TeamID])
		}
	}
	for _, t := range f.teams {
		if t.LeaderID == userID && !seen[t.ID] {
			seen[t.ID] = true
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeTeamRepo) Count(ctx context.Context) (int, error) {
	return len(f.teams), nil
}

// --- registrations ---

type fakeRegistrationRepo struct {
	registrations []models.Registration
	competitions  *fakeCompetitionRepo
	teamRepo      *fakeTeamRepo
	nextID        int
}

func newFakeRegistrationRepo(competitions *fakeCompetitionRepo, teamRepo *fakeTeamRepo) *fakeRegistrationRepo {
	return &fakeRegistrationRepo{competitions: competitions, teamRepo: teamRepo, nextID: 1}
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, reg *models.Registration) error {
	for _, r := range f.registrations {
		if r.UserID == reg.UserID && r.CompetitionID == reg.CompetitionID {
			return repositories.ErrRegistrationConflict
		}
	}
	reg.ID = f.nextID
	reg.CreatedAt = time.Now()
	f.nextID++
	f.registrations = append(f.registrations, *reg)
	return nil
}

func (f *fakeRegistrationRepo) FindByUserAndCompetition(ctx context.Context, userID, competitionID int) (*models.Registration, error) {
	for _, r := range f.registrations {
		if r.UserID == userID && r.CompetitionID == competitionID {
			copied := r
			return &copied, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (f *fakeRegistrationRepo) DeleteByUserAndTeam(ctx context.Context, userID, teamID int) error {
	for i, r := range f.registrations {
		if r.UserID == userID && r.TeamID != nil && *r.TeamID == teamID {
			f.registrations = append(f.registrations[:i], f.registrations[i+1:]...)
			return nil
		}
	}
	return repositories.ErrRegistrationNotFound
}

func (f *fakeRegistrationRepo) ListCompetitionsByUser(ctx context.Context, userID int) ([]models.Competition, error) {
	seen := make(map[int]bool)
	result := make([]models.Competition, 0)

	add := func(competitionID int) {
		if seen[competitionID] {
			return
		}
		if c, ok := f.competitions.competitions[competitionID]; ok {
			seen[competitionID] = true
			result = append(result, *c)
		}
	}

	for _, r := range f.registrations {
		if r.UserID == userID {
			add(r.CompetitionID)
		}
		// Достижимость через команду: участник видит соревнование,
		// если на него зарегистрирован кто-то из его команды.
		if r.TeamID != nil && f.teamRepo != nil {
			for _, m := range f.teamRepo.members {
				if m.TeamID == *r.TeamID && m.UserID == userID {
					add(r.CompetitionID)
				}
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeRegistrationRepo) Count(ctx context.Context) (int, error) {
	return len(f.registrations), nil
}

// --- invites ---

type fakeInviteRepo struct {
	invites map[int]*models.TeamInvite
	nextID  int
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{invites: make(map[int]*models.TeamInvite), nextID: 1}
}

func (f *fakeInviteRepo) Create(ctx context.Context, invite *models.TeamInvite) error {
	invite.ID = f.nextID
	invite.Accepted = false
	invite.CreatedAt = time.Now()
	f.nextID++
	copied := *invite
	f.invites[invite.ID] = &copied
	return nil
}

func (f *fakeInviteRepo) GetByID(ctx context.Context, id int) (*models.TeamInvite, error) {
	inv, ok := f.invites[id]
	if !ok {
		return nil, repositories.ErrInviteNotFound
	}
	copied := *inv
	return &copied, nil
}

func (f *fakeInviteRepo) ListByTeamID(ctx context.Context, teamID int) ([]*models.TeamInvite, error) {
	result := make([]*models.TeamInvite, 0)
	for _, inv := range f.invites {
		if inv.TeamID == teamID {
			copied := *inv
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeInviteRepo) MarkAccepted(ctx context.Context, id int) error {
	inv, ok := f.invites[id]
	if !ok {
		return repositories.ErrInviteNotFound
	}
	if inv.Accepted {
		return repositories.ErrInviteAlreadyAccepted
	}
	inv.Accepted = true
	return nil
}

func (f *fakeInviteRepo) Delete(ctx context.Context, id int) error {
	if _, ok := f.invites[id]; !ok {
		return repositories.ErrInviteNotFound
	}
	delete(f.invites, id)
	return nil
}
