package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/competition-system/db"
	"github.com/Dosada05/competition-system/models"
)

var ErrCompetitionNotFound = errors.New("competition not found")

type CompetitionRepository interface {
	Create(ctx context.Context, competition *models.Competition) error
	GetByID(ctx context.Context, id int) (*models.Competition, error)
	Update(ctx context.Context, competition *models.Competition) error
	UpdatePosterKey(ctx context.Context, id int, key *string) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter models.CompetitionFilter) ([]models.Competition, error)
	Count(ctx context.Context, status *models.CompetitionStatus) (int, error)
}

type postgresCompetitionRepository struct {
	db *db.DB
}

func NewPostgresCompetitionRepository(conn *db.DB) CompetitionRepository {
	return &postgresCompetitionRepository{db: conn}
}

const competitionColumns = `id, title, description, start_date, end_date, registration_close,
	max_participants, is_team_based, type, status, poster_key, created_at`

func (r *postgresCompetitionRepository) Create(ctx context.Context, c *models.Competition) error {
	query := `
		INSERT INTO competitions
			(title, description, start_date, end_date, registration_close,
			 max_participants, is_team_based, type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.Conn(ctx).QueryRowContext(ctx, query,
		c.Title,
		c.Description,
		c.StartDate,
		c.EndDate,
		c.RegistrationClose,
		c.MaxParticipants,
		c.IsTeamBased,
		c.Type,
		c.Status,
	).Scan(&c.ID, &c.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create competition: %w", err)
	}
	return nil
}

func (r *postgresCompetitionRepository) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	query := `SELECT ` + competitionColumns + ` FROM competitions WHERE id = $1`

	var c models.Competition
	err := r.scanCompetition(r.db.Conn(ctx).QueryRowContext(ctx, query, id), &c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to get competition %d: %w", id, err)
	}
	return &c, nil
}

func (r *postgresCompetitionRepository) Update(ctx context.Context, c *models.Competition) error {
	query := `
		UPDATE competitions
		SET title = $1, description = $2, start_date = $3, end_date = $4,
			registration_close = $5, max_participants = $6, is_team_based = $7,
			type = $8, status = $9
		WHERE id = $10`

	result, err := r.db.Conn(ctx).ExecContext(ctx, query,
		c.Title,
		c.Description,
		c.StartDate,
		c.EndDate,
		c.RegistrationClose,
		c.MaxParticipants,
		c.IsTeamBased,
		c.Type,
		c.Status,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update competition %d: %w", c.ID, err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) UpdatePosterKey(ctx context.Context, id int, key *string) error {
	query := `UPDATE competitions SET poster_key = $1 WHERE id = $2`
	result, err := r.db.Conn(ctx).ExecContext(ctx, query, key, id)
	if err != nil {
		return fmt.Errorf("failed to update competition poster key: %w", err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM competitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete competition %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) List(ctx context.Context, filter models.CompetitionFilter) ([]models.Competition, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + competitionColumns + ` FROM competitions WHERE 1=1`)

	args := make([]interface{}, 0, 3)
	argCounter := 1

	if filter.Status != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", argCounter))
		args = append(args, *filter.Status)
		argCounter++
	}
	if filter.Type != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND type = $%d", argCounter))
		args = append(args, *filter.Type)
		argCounter++
	}
	if filter.Search != nil && *filter.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argCounter, argCounter))
		args = append(args, "%"+*filter.Search+"%")
		argCounter++
	}

	queryBuilder.WriteString(" ORDER BY start_date ASC, id ASC")

	if filter.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filter.Limit)
		argCounter++
	}
	if filter.Offset > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Conn(ctx).QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	defer rows.Close()

	competitions := make([]models.Competition, 0)
	for rows.Next() {
		var c models.Competition
		if err := r.scanCompetition(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan competition row: %w", err)
		}
		competitions = append(competitions, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating competition rows: %w", err)
	}
	return competitions, nil
}

func (r *postgresCompetitionRepository) Count(ctx context.Context, status *models.CompetitionStatus) (int, error) {
	query := `SELECT COUNT(*) FROM competitions`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}

	var count int
	if err := r.db.Conn(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count competitions: %w", err)
	}
	return count, nil
}

func (r *postgresCompetitionRepository) scanCompetition(rowScanner interface {
	Scan(dest ...interface{}) error
}, c *models.Competition) error {
	return rowScanner.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.StartDate,
		&c.EndDate,
		&c.RegistrationClose,
		&c.MaxParticipants,
		&c.IsTeamBased,
		&c.Type,
		&c.Status,
		&c.PosterKey,
		&c.CreatedAt,
	)
}
