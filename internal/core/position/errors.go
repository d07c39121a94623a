package position

import "errors"

var (
	ErrInvalidID            = errors.New("position: invalid id")
	ErrInvalidTitle         = errors.New("position: invalid title")
	ErrInvalidDescription   = errors.New("position: invalid description")
	ErrInvalidLanguage      = errors.New("position: invalid language requirement")
	ErrPositionNotFound     = errors.New("position: not found")
	ErrEmployeeNotFound     = errors.New("position: employee profile not found")
	ErrCompanyNotFound      = errors.New("position: company profile not found")
	ErrInvalidEmployee      = errors.New("position: invalid employee")
	ErrNotVerified          = errors.New("position: employee is not verified")
	ErrNotEmployed          = errors.New("position: employee is not associated with a company")
	ErrNotMember            = errors.New("position: employee does not belong to this company")
	ErrNotOwner             = errors.New("position: not owned by this company")
	ErrActivePositionExists = errors.New("position: an active position already exists")
)
