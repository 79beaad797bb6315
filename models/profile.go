package models

import "time"

// Profile создаётся лениво при первой регистрации пользователя на соревнование.
type Profile struct {
	ID          int        `json:"id" db:"id"`
	UserID      int        `json:"user_id" db:"user_id"`
	FullName    string     `json:"full_name" db:"full_name"`
	Bio         *string    `json:"bio,omitempty" db:"bio"`
	BirthDate   *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	Institution *string    `json:"institution,omitempty" db:"institution"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`
}
