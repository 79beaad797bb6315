package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/competition-system/db"
	"github.com/Dosada05/competition-system/models"
)

var (
	ErrTeamNotFound           = errors.New("team not found")
	ErrTeamNameConflict       = errors.New("team name conflict")
	ErrTeamCompetitionInvalid = errors.New("team competition conflict or invalid")
	ErrTeamMemberNotFound     = errors.New("team member not found")
	ErrTeamMemberConflict     = errors.New("user is already a member of this team")
	// ErrMembershipCompetitionConflict — нарушен уникальный индекс
	// team_members(user_id, competition_id): пользователь уже состоит
	// в другой команде этого соревнования.
	ErrMembershipCompetitionConflict = errors.New("user already belongs to a team in this competition")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	// GetByIDForUpdate блокирует строку команды (SELECT ... FOR UPDATE),
	// сериализуя проверки вместимости между конкурентными транзакциями.
	GetByIDForUpdate(ctx context.Context, id int) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id int) error

	AddMember(ctx context.Context, member *models.TeamMember) error
	RemoveMember(ctx context.Context, teamID, userID int) error
	CountMembers(ctx context.Context, teamID int) (int, error)
	ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error)
	IsMember(ctx context.Context, teamID, userID int) (bool, error)
	// FindTeamIDByUserAndCompetition возвращает команду, в которой
	// пользователь состоит в рамках соревнования, либо ErrTeamMemberNotFound.
	FindTeamIDByUserAndCompetition(ctx context.Context, userID, competitionID int) (int, error)
	ListByMember(ctx context.Context, userID int) ([]models.Team, error)
	Count(ctx context.Context) (int, error)
}

type postgresTeamRepository struct {
	db *db.DB
}

func NewPostgresTeamRepository(conn *db.DB) TeamRepository {
	return &postgresTeamRepository{db: conn}
}

const teamColumns = `id, name, competition_id, leader_id, accepting_members, created_at`

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (name, competition_id, leader_id, accepting_members)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.Conn(ctx).QueryRowContext(ctx, query,
		team.Name,
		team.CompetitionID,
		team.LeaderID,
		team.AcceptingMembers,
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		switch pqConstraint(err) {
		case "teams_name_key":
			return ErrTeamNameConflict
		case "teams_competition_id_fkey":
			return ErrTeamCompetitionInvalid
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

func (r *postgresTeamRepository) GetByIDForUpdate(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `UPDATE teams SET name = $1, accepting_members = $2 WHERE id = $3`
	result, err := r.db.Conn(ctx).ExecContext(ctx, query, team.Name, team.AcceptingMembers, team.ID)
	if err != nil {
		if pqConstraint(err) == "teams_name_key" {
			return ErrTeamNameConflict
		}
		return fmt.Errorf("failed to update team %d: %w", team.ID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	query := `
		INSERT INTO team_members (team_id, user_id, competition_id)
		VALUES ($1, $2, $3)
		RETURNING joined_at`

	err := r.db.Conn(ctx).QueryRowContext(ctx, query,
		member.TeamID,
		member.UserID,
		member.CompetitionID,
	).Scan(&member.JoinedAt)

	if err != nil {
		switch pqConstraint(err) {
		case "team_members_pkey":
			return ErrTeamMemberConflict
		case "team_members_user_id_competition_id_key":
			return ErrMembershipCompetitionConflict
		case "team_members_team_id_fkey":
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to add team member: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) RemoveMember(ctx context.Context, teamID, userID int) error {
	query := `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`
	result, err := r.db.Conn(ctx).ExecContext(ctx, query, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	return checkAffectedRows(result, ErrTeamMemberNotFound)
}

func (r *postgresTeamRepository) CountMembers(ctx context.Context, teamID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM team_members WHERE team_id = $1`
	if err := r.db.Conn(ctx).QueryRowContext(ctx, query, teamID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count team members: %w", err)
	}
	return count, nil
}

func (r *postgresTeamRepository) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	query := `
		SELECT tm.team_id, tm.user_id, tm.competition_id, tm.joined_at,
			u.id, u.email, u.role, u.created_at
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = $1
		ORDER BY tm.joined_at ASC`

	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		var m models.TeamMember
		var u models.User
		if err := rows.Scan(
			&m.TeamID, &m.UserID, &m.CompetitionID, &m.JoinedAt,
			&u.ID, &u.Email, &u.Role, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team member row: %w", err)
		}
		m.User = &u
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team member rows: %w", err)
	}
	return members, nil
}

func (r *postgresTeamRepository) IsMember(ctx context.Context, teamID, userID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)`
	if err := r.db.Conn(ctx).QueryRowContext(ctx, query, teamID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check team membership: %w", err)
	}
	return exists, nil
}

func (r *postgresTeamRepository) FindTeamIDByUserAndCompetition(ctx context.Context, userID, competitionID int) (int, error) {
	var teamID int
	query := `SELECT team_id FROM team_members WHERE user_id = $1 AND competition_id = $2`
	err := r.db.Conn(ctx).QueryRowContext(ctx, query, userID, competitionID).Scan(&teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTeamMemberNotFound
		}
		return 0, fmt.Errorf("failed to find membership: %w", err)
	}
	return teamID, nil
}

func (r *postgresTeamRepository) ListByMember(ctx context.Context, userID int) ([]models.Team, error) {
	// Лидер всегда присутствует в team_members, UNION — подстраховка
	// на случай исторических строк без членства лидера.
	query := `
		SELECT ` + teamColumns + ` FROM teams
		WHERE id IN (SELECT team_id FROM team_members WHERE user_id = $1)
		UNION
		SELECT ` + teamColumns + ` FROM teams WHERE leader_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams by member: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(
			&t.ID, &t.Name, &t.CompetitionID, &t.LeaderID, &t.AcceptingMembers, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}

func (r *postgresTeamRepository) scanOne(ctx context.Context, query string, args ...interface{}) (*models.Team, error) {
	var t models.Team
	err := r.db.Conn(ctx).QueryRowContext(ctx, query, args...).Scan(
		&t.ID,
		&t.Name,
		&t.CompetitionID,
		&t.LeaderID,
		&t.AcceptingMembers,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team: %w", err)
	}
	return &t, nil
}
