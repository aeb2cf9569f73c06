package auth

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNoLabScope      = errors.New("user has no lab association")
	ErrLabNotAllowed   = errors.New("user is not a member of the requested lab")
	ErrLabNotFound     = errors.New("lab not found")
	ErrUpstream        = errors.New("identity service unavailable")
)
