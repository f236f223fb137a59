package service

import "errors"

// Login/logout failure taxonomy. The HTTP layer maps these to status codes;
// nothing in this package escapes as an unclassified fault except wrapped
// ErrServer values.
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrNotFound           = errors.New("principal not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInactive    = errors.New("session inactive")
	ErrServer             = errors.New("server error")
)
