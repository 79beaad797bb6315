package models

import "time"

// TeamInvite — приглашение по email. Принимается ровно один раз.
type TeamInvite struct {
	ID        int       `json:"id" db:"id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	Email     string    `json:"email" db:"email"`
	InviterID int       `json:"inviter_id" db:"inviter_id"`
	Accepted  bool      `json:"accepted" db:"accepted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
