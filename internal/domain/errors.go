package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrJobNotReady        = errors.New("job not completed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProviderFailure    = errors.New("provider failure")
	ErrDuplicateEmail     = errors.New("email already registered")
)
