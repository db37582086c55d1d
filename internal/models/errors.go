package models

import "errors"

// Failure kinds surfaced to API callers. Lower layers wrap them with %w.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidSignature   = errors.New("invalid token signature")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrQuotaExceeded      = errors.New("application limit reached")
	ErrCapacityExceeded   = errors.New("user limit reached")
	ErrDuplicateUser      = errors.New("username already registered")
	ErrUpstream           = errors.New("assistant upstream error")
)
