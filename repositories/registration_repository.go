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
	ErrRegistrationNotFound           = errors.New("registration not found")
	ErrRegistrationConflict           = errors.New("user is already registered for this competition")
	ErrRegistrationUserInvalid        = errors.New("registration user conflict or invalid")
	ErrRegistrationTeamInvalid        = errors.New("registration team conflict or invalid")
	ErrRegistrationCompetitionInvalid = errors.New("registration competition conflict or invalid")
)

type RegistrationRepository interface {
	Create(ctx context.Context, registration *models.Registration) error
	FindByUserAndCompetition(ctx context.Context, userID, competitionID int) (*models.Registration, error)
	DeleteByUserAndTeam(ctx context.Context, userID, teamID int) error
	// ListCompetitionsByUser — соревнования, достижимые через прямую
	// регистрацию ИЛИ через членство в зарегистрированной команде;
	// UNION устраняет дубликаты.
	ListCompetitionsByUser(ctx context.Context, userID int) ([]models.Competition, error)
	Count(ctx context.Context) (int, error)
}

type postgresRegistrationRepository struct {
	db *db.DB
}

func NewPostgresRegistrationRepository(conn *db.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: conn}
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (user_id, competition_id, team_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.Conn(ctx).QueryRowContext(ctx, query,
		reg.UserID,
		reg.CompetitionID,
		reg.TeamID,
	).Scan(&reg.ID, &reg.CreatedAt)

	if err != nil {
		switch pqConstraint(err) {
		case "registrations_user_id_competition_id_key":
			return ErrRegistrationConflict
		case "registrations_user_id_fkey":
			return ErrRegistrationUserInvalid
		case "registrations_team_id_fkey":
			return ErrRegistrationTeamInvalid
		case "registrations_competition_id_fkey":
			return ErrRegistrationCompetitionInvalid
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) FindByUserAndCompetition(ctx context.Context, userID, competitionID int) (*models.Registration, error) {
	query := `
		SELECT id, user_id, competition_id, team_id, created_at
		FROM registrations
		WHERE user_id = $1 AND competition_id = $2`

	var reg models.Registration
	err := r.db.Conn(ctx).QueryRowContext(ctx, query, userID, competitionID).Scan(
		&reg.ID,
		&reg.UserID,
		&reg.CompetitionID,
		&reg.TeamID,
		&reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return &reg, nil
}

func (r *postgresRegistrationRepository) DeleteByUserAndTeam(ctx context.Context, userID, teamID int) error {
	query := `DELETE FROM registrations WHERE user_id = $1 AND team_id = $2`
	result, err := r.db.Conn(ctx).ExecContext(ctx, query, userID, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) ListCompetitionsByUser(ctx context.Context, userID int) ([]models.Competition, error) {
	query := `
		SELECT c.id, c.title, c.description, c.start_date, c.end_date, c.registration_close,
			c.max_participants, c.is_team_based, c.type, c.status, c.poster_key, c.created_at
		FROM competitions c
		JOIN registrations r ON r.competition_id = c.id
		WHERE r.user_id = $1
		UNION
		SELECT c.id, c.title, c.description, c.start_date, c.end_date, c.registration_close,
			c.max_participants, c.is_team_based, c.type, c.status, c.poster_key, c.created_at
		FROM competitions c
		JOIN registrations r ON r.competition_id = c.id
		JOIN team_members tm ON tm.team_id = r.team_id
		WHERE tm.user_id = $1
		ORDER BY start_date ASC, id ASC`

	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions by user: %w", err)
	}
	defer rows.Close()

	competitions := make([]models.Competition, 0)
	for rows.Next() {
		var c models.Competition
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.StartDate, &c.EndDate, &c.RegistrationClose,
			&c.MaxParticipants, &c.IsTeamBased, &c.Type, &c.Status, &c.PosterKey, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan competition row: %w", err)
		}
		competitions = append(competitions, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating competition rows: %w", err)
	}
	return competitions, nil
}

func (r *postgresRegistrationRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}
