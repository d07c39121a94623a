package company

import "errors"

var (
	ErrInvalidID            = errors.New("company: invalid id")
	ErrInvalidName          = errors.New("company: invalid name")
	ErrInvalidIndustry      = errors.New("company: invalid industry")
	ErrInvalidDescription   = errors.New("company: invalid description")
	ErrInvalidHeadquarters  = errors.New("company: invalid headquarters")
	ErrInvalidCountry       = errors.New("company: invalid country")
	ErrCompanyNotFound      = errors.New("company: not found")
	ErrEmployeeNotFound     = errors.New("company: employee not found")
	ErrProfileAlreadyExists = errors.New("company: profile already exists for this user")
	ErrEmployeeNotMember    = errors.New("company: employee is not associated with this company")
)
