package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionNotActive = errors.New("session is not active")
	ErrInvalidStrategy  = errors.New("invalid win strategy")

	// Pool errors
	ErrPoolExhausted = errors.New("ball pool is exhausted")
	ErrInvalidPool   = errors.New("ball pool is inconsistent")

	// Player errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrDuplicatePlayer = errors.New("player already belongs to session")
	ErrCardLocked      = errors.New("card cannot change once balls are drawn")
	ErrSessionFull     = errors.New("no access codes left in session")

	// Admin errors
	ErrAdminNotFound = errors.New("admin not found")
	ErrUsernameTaken = errors.New("username is taken by another admin")

	// Access errors, raised by the auth layer and passed through
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
