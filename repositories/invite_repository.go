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
	ErrInviteNotFound        = errors.New("invite not found")
	ErrInviteTeamInvalid     = errors.New("invite team conflict or invalid")
	ErrInviteAlreadyAccepted = errors.New("invite already accepted")
)

type InviteRepository interface {
	Create(ctx context.Context, invite *models.TeamInvite) error
	GetByID(ctx context.Context, id int) (*models.TeamInvite, error)
	ListByTeamID(ctx context.Context, teamID int) ([]*models.TeamInvite, error)
	// MarkAccepted переводит accepted в true ровно один раз; повторный
	// вызов для уже принятого приглашения возвращает ErrInviteAlreadyAccepted.
	MarkAccepted(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

type postgresInviteRepository struct {
	db *db.DB
}

func NewPostgresInviteRepository(conn *db.DB) InviteRepository {
	return &postgresInviteRepository{db: conn}
}

func (r *postgresInviteRepository) Create(ctx context.Context, invite *models.TeamInvite) error {
	query := `
		INSERT INTO invites (team_id, email, inviter_id, accepted)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, accepted, created_at`

	err := r.db.Conn(ctx).QueryRowContext(ctx, query,
		invite.TeamID,
		invite.Email,
		invite.InviterID,
	).Scan(&invite.ID, &invite.Accepted, &invite.CreatedAt)

	if err != nil {
		switch pqConstraint(err) {
		case "invites_team_id_fkey":
			return ErrInviteTeamInvalid
		}
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

func (r *postgresInviteRepository) GetByID(ctx context.Context, id int) (*models.TeamInvite, error) {
	query := `
		SELECT id, team_id, email, inviter_id, accepted, created_at
		FROM invites
		WHERE id = $1`

	invite := &models.TeamInvite{}
	err := r.db.Conn(ctx).QueryRowContext(ctx, query, id).Scan(
		&invite.ID,
		&invite.TeamID,
		&invite.Email,
		&invite.InviterID,
		&invite.Accepted,
		&invite.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite %d: %w", id, err)
	}
	return invite, nil
}

func (r *postgresInviteRepository) ListByTeamID(ctx context.Context, teamID int) ([]*models.TeamInvite, error) {
	query := `
		SELECT id, team_id, email, inviter_id, accepted, created_at
		FROM invites
		WHERE team_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	invites := make([]*models.TeamInvite, 0)
	for rows.Next() {
		var invite models.TeamInvite
		if scanErr := rows.Scan(
			&invite.ID,
			&invite.TeamID,
			&invite.Email,
			&invite.InviterID,
			&invite.Accepted,
			&invite.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		invites = append(invites, &invite)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *postgresInviteRepository) MarkAccepted(ctx context.Context, id int) error {
	query := `UPDATE invites SET accepted = TRUE WHERE id = $1 AND accepted = FALSE`
	result, err := r.db.Conn(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark invite accepted: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		// Либо приглашения нет, либо его уже приняли.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrInviteAlreadyAccepted
	}
	return nil
}

func (r *postgresInviteRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM invites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInviteNotFound)
}
