package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrIssueNotFound      = errors.New("issue not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrRateLimited        = errors.New("rate limit exceeded")
)
