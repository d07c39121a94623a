package identity

import "errors"

var (
	ErrInvalidEmail       = errors.New("identity: invalid email")
	ErrInvalidName        = errors.New("identity: invalid name")
	ErrInvalidPassword    = errors.New("identity: password must be at least 8 characters")
	ErrInvalidRole        = errors.New("identity: invalid role")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrEmailAlreadyExists = errors.New("identity: email already exists")
	ErrUserNotFound       = errors.New("identity: user not found")
	ErrAccountNotFound    = errors.New("identity: account not found")
)
