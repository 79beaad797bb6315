package models

import "time"

type Registration struct {
	ID            int       `json:"id" db:"id"`
	UserID        int       `json:"user_id" db:"user_id"`
	CompetitionID int       `json:"competition_id" db:"competition_id"`
	TeamID        *int      `json:"team_id,omitempty" db:"team_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	Competition *Competition `json:"competition,omitempty" db:"-"`
	Team        *Team        `json:"team,omitempty" db:"-"`
}
