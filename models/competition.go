package models

import "time"

// CompetitionType и CompetitionStatus соответствуют ENUM в БД.
type CompetitionType string

const (
	CompetitionIndividual CompetitionType = "individual"
	CompetitionTeam       CompetitionType = "team"
)

type CompetitionStatus string

const (
	CompetitionOpen   CompetitionStatus = "open"
	CompetitionClosed CompetitionStatus = "closed"
)

// Competition представляет соревнование.
type Competition struct {
	ID                int               `json:"id" db:"id"`
	Title             string            `json:"title" db:"title"`
	Description       string            `json:"description" db:"description"`
	StartDate         time.Time         `json:"start_date" db:"start_date"`
	EndDate           time.Time         `json:"end_date" db:"end_date"`
	RegistrationClose time.Time         `json:"registration_close" db:"registration_close"`
	MaxParticipants   int               `json:"max_participants" db:"max_participants"`
	IsTeamBased       bool              `json:"is_team_based" db:"is_team_based"`
	Type              CompetitionType   `json:"type" db:"type"`
	Status            CompetitionStatus `json:"status" db:"status"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`

	PosterKey *string `json:"-" db:"poster_key"`
	PosterURL *string `json:"poster_url,omitempty" db:"-"`
}

// CompetitionFilter описывает параметры выборки каталога.
type CompetitionFilter struct {
	Status *CompetitionStatus
	Type   *CompetitionType
	Search *string // по title и description
	Limit  int
	Offset int
}
