package apperrors

import "errors"

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrCapacityExceeded     = errors.New("capacity exceeded")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInternalServerError  = errors.New("internal server error")
)
