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
	ErrProfileNotFound     = errors.New("profile not found")
	ErrProfileUserConflict = errors.New("profile already exists for this user")
	ErrProfileUserInvalid  = errors.New("profile user conflict or invalid")
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByUserID(ctx context.Context, userID int) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateAvatarKey(ctx context.Context, userID int, key *string) error
}

type postgresProfileRepository struct {
	db *db.DB
}

func NewPostgresProfileRepository(conn *db.DB) ProfileRepository {
	return &postgresProfileRepository{db: conn}
}

func (r *postgresProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (user_id, full_name, bio, birth_date, institution)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.Conn(ctx).QueryRowContext(ctx, query,
		profile.UserID,
		profile.FullName,
		profile.Bio,
		profile.BirthDate,
		profile.Institution,
	).Scan(&profile.ID, &profile.CreatedAt)

	if err != nil {
		switch pqConstraint(err) {
		case "profiles_user_id_key":
			return ErrProfileUserConflict
		case "profiles_user_id_fkey":
			return ErrProfileUserInvalid
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *postgresProfileRepository) GetByUserID(ctx context.Context, userID int) (*models.Profile, error) {
	query := `
		SELECT id, user_id, full_name, bio, birth_date, institution, avatar_key, created_at
		FROM profiles
		WHERE user_id = $1`

	var p models.Profile
	err := r.db.Conn(ctx).QueryRowContext(ctx, query, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.FullName,
		&p.Bio,
		&p.BirthDate,
		&p.Institution,
		&p.AvatarKey,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	return &p, nil
}

func (r *postgresProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET full_name = $1, bio = $2, birth_date = $3, institution = $4
		WHERE user_id = $5`

	result, err := r.db.Conn(ctx).ExecContext(ctx, query,
		profile.FullName,
		profile.Bio,
		profile.BirthDate,
		profile.Institution,
		profile.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}

func (r *postgresProfileRepository) UpdateAvatarKey(ctx context.Context, userID int, key *string) error {
	query := `UPDATE profiles SET avatar_key = $1 WHERE user_id = $2`
	result, err := r.db.Conn(ctx).ExecContext(ctx, query, key, userID)
	if err != nil {
		return fmt.Errorf("failed to update profile avatar key: %w", err)
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}
