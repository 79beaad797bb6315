package models

type DashboardStats struct {
	UsersTotal         int `json:"users_total"`
	CompetitionsTotal  int `json:"competitions_total"`
	OpenCompetitions   int `json:"open_competitions"`
	TeamsTotal         int `json:"teams_total"`
	RegistrationsTotal int `json:"registrations_total"`
}
