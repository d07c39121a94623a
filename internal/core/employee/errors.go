package employee

import "errors"

var (
	ErrInvalidID            = errors.New("employee: invalid id")
	ErrInvalidFirstName     = errors.New("employee: invalid first name")
	ErrInvalidLastName      = errors.New("employee: invalid last name")
	ErrInvalidJobTitle      = errors.New("employee: invalid job title")
	ErrInvalidBio           = errors.New("employee: invalid bio")
	ErrInvalidLanguage      = errors.New("employee: invalid language proficiency")
	ErrEmployeeNotFound     = errors.New("employee: not found")
	ErrCompanyNotFound      = errors.New("employee: company not found")
	ErrProfileAlreadyExists = errors.New("employee: profile already exists for this user")
	ErrNotEmployed          = errors.New("employee: not associated with a company")
)
