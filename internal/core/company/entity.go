package company

import "time"

// Company は企業プロフィールです。1 ユーザーにつき高々 1 件です。
type Company struct {
	ID           string
	UserID       string
	Name         string
	Industry     string
	Size         string
	Description  string
	Website      *string
	Headquarters string
	Country      string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EmployeeRef は企業側の操作で参照する社員のスナップショットです。
type EmployeeRef struct {
	ID        string
	UserID    string
	FirstName string
	LastName  string
	JobTitle  string
	CompanyID string
	Verified  bool
}
