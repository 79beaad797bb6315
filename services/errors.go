package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrNotFound            = errors.New("requested resource not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrTeamMemberNotFound  = errors.New("user is not a member of this team")
	ErrInviteNotFound      = errors.New("invite not found")

	// Конфликты
	ErrEmailConflict         = errors.New("email address is already in use")
	ErrTeamNameConflict      = errors.New("team name is already in use")
	ErrAlreadyRegistered     = errors.New("user is already registered for this competition")
	ErrAlreadyMember         = errors.New("user is already a member of this team")
	ErrAlreadyInOtherTeam    = errors.New("user already belongs to another team in this competition")
	ErrInviteAlreadyAccepted = errors.New("invite has already been accepted")

	// Защита инвариантов
	ErrTeamFull         = errors.New("team has reached the competition participant limit")
	ErrTeamNotAccepting = errors.New("team is not accepting new members")

	// Ошибки валидации и бизнес-правил
	ErrTeamNameRequired           = errors.New("team name is required")
	ErrTeamRequired               = errors.New("a team is required to register for a team competition")
	ErrNotTeamMember              = errors.New("user is not a member of the supplied team")
	ErrTeamNotAllowed             = errors.New("individual competitions do not accept team registrations")
	ErrCompetitionNotTeamBased    = errors.New("competition does not support teams")
	ErrRegistrationClosed         = errors.New("competition registration is closed")
	ErrPasswordTooShort           = errors.New("password is too short")
	ErrInvalidEmail               = errors.New("invalid email address")
	ErrInvalidCredentials         = errors.New("invalid email or password")
	ErrCompetitionTitleRequired   = errors.New("competition title is required")
	ErrCompetitionInvalidDates    = errors.New("competition dates must be in the future and ordered")
	ErrCompetitionInvalidCapacity = errors.New("competition max participants must be positive")

	// Ошибки авторизации
	ErrForbiddenOperation    = errors.New("operation not allowed for the current user")
	ErrLeaderActionForbidden = errors.New("only the team leader can perform this action")
	ErrCannotRemoveLeader    = errors.New("the team leader cannot be removed from the team")
	ErrInviteEmailMismatch   = errors.New("invite was issued for a different email address")

	// Транзиентные сбои хранилища после исчерпания повторов
	ErrServiceUnavailable = errors.New("service temporarily unavailable, try again")
)
