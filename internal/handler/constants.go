package handler

const (
	APIPrefix = "/coachbase/v1"

	MsgNotAuthenticated   = "not authenticated"
	MsgInvalidRequestBody = "invalid request body"
	MsgUsernameRequired   = "username is required"
	MsgUsernameTaken      = "username is already taken"
	MsgAthleteNotFound    = "athlete not found"
	MsgWorkoutNotFound    = "workout not found"
	MsgLoggedOut          = "logged out"
)
