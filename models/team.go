package models

import "time"

type Team struct {
	ID               int       `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	CompetitionID    int       `json:"competition_id" db:"competition_id"`
	LeaderID         int       `json:"leader_id" db:"leader_id"`
	AcceptingMembers bool      `json:"accepting_members" db:"accepting_members"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`

	Competition *Competition `json:"competition,omitempty" db:"-"`
	Leader      *User        `json:"leader,omitempty" db:"-"`
	Members     []TeamMember `json:"members,omitempty" db:"-"`
}

// TeamMember — строка таблицы team_members. Хранит competition_id
// ради уникального индекса (user_id, competition_id): один пользователь —
// одна команда в рамках соревнования.
type TeamMember struct {
	TeamID        int       `json:"team_id" db:"team_id"`
	UserID        int       `json:"user_id" db:"user_id"`
	CompetitionID int       `json:"competition_id" db:"competition_id"`
	JoinedAt      time.Time `json:"joined_at" db:"joined_at"`

	User *User `json:"user,omitempty" db:"-"`
}
