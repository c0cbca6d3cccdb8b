package models

import "errors"

// Application-wide standard errors
var (
	// Game & Session Errors
	ErrSessionNotFound  = errors.New("game session not found")
	ErrGenerationFailed = errors.New("host reply generation failed")

	// User & Authentication Errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")

	// Invite Code Errors
	ErrInviteCodeInvalid = errors.New("invite code is invalid")
	ErrInviteCodeUsed    = errors.New("invite code has already been used")

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
)
