package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Dosada05/competition-system/models"
	"github.com/Dosada05/competition-system/repositories"
	"github.com/Dosada05/competition-system/storage"
)

type ProfileUpdateInput struct {
	FullName    string     `json:"full_name"`
	Bio         *string    `json:"bio"`
	BirthDate   *time.Time `json:"birth_date"`
	Institution *string    `json:"institution"`
}

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, input ProfileUpdateInput) (*models.Profile, error)
	UploadAvatar(ctx context.Context, userID int, contentType string, file io.Reader) (*models.Profile, error)
}

type userService struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	uploader    storage.FileUploader
}

func NewUserService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	uploader storage.FileUploader,
) UserService {
	return &userService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		uploader:    uploader,
	}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, id)
	if err != nil {
		// Профиль создаётся лениво, его отсутствие — не ошибка.
		if !errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, err
		}
	} else {
		s.populateAvatarURL(profile)
		user.Profile = profile
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, input ProfileUpdateInput) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, err
		}
		profile = &models.Profile{
			UserID:      userID,
			FullName:    input.FullName,
			Bio:         input.Bio,
			BirthDate:   input.BirthDate,
			Institution: input.Institution,
		}
		if err := s.profileRepo.Create(ctx, profile); err != nil {
			if errors.Is(err, repositories.ErrProfileUserInvalid) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		return profile, nil
	}

	profile.FullName = input.FullName
	profile.Bio = input.Bio
	profile.BirthDate = input.BirthDate
	profile.Institution = input.Institution

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	s.populateAvatarURL(profile)
	return profile, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int, contentType string, file io.Reader) (*models.Profile, error) {
	if s.uploader == nil {
		return nil, errors.New("file storage is not configured")
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("avatars/%d/avatar%s", userID, ext)

	oldKey := profile.AvatarKey
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.profileRepo.UpdateAvatarKey(ctx, userID, &key); err != nil {
		return nil, err
	}

	if oldKey != nil && *oldKey != key {
		// Старый файл больше не нужен, но его удаление не должно
		// ронять запрос.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	profile.AvatarKey = &key
	s.populateAvatarURL(profile)
	return profile, nil
}

func (s *userService) populateAvatarURL(profile *models.Profile) {
	if s.uploader == nil || profile == nil || profile.AvatarKey == nil {
		return
	}
	if u := s.uploader.GetPublicURL(*profile.AvatarKey); u != "" {
		profile.AvatarURL = &u
	}
}
