package errors

import "fmt"

var (
	ErrMissingCredential     = fmt.Errorf("missing credential")
	ErrInvalidCredential     = fmt.Errorf("invalid credential")
	ErrUnresolvedParticipant = fmt.Errorf("sender or recipient is not a registered user")
	ErrUserAlreadyExists     = fmt.Errorf("email is already registered")
	ErrUserNotFound          = fmt.Errorf("user not found")
	ErrInvalidPassword       = fmt.Errorf("password does not meet complexity requirements")
	ErrInvalidCredentials    = fmt.Errorf("invalid email or password")
	ErrTokenGeneration       = fmt.Errorf("token generation failed")
	ErrEmptyContent          = fmt.Errorf("message content is empty")
	ErrEmptyWords            = fmt.Errorf("no censored words have been found")
	ErrWorkerPanic           = fmt.Errorf("worker panic")
)
