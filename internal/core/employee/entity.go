package employee

import (
	"time"

	"github.com/ogurasousui/jobswap-backend/internal/core/language"
)

// Employee は社員プロフィールです。1 ユーザーにつき高々 1 件です。
// CompanyID が nil の間は無所属であり、Verified は所属企業による
// 在籍確認が済んでいるかを表します。
type Employee struct {
	ID           string
	UserID       string
	FirstName    string
	LastName     string
	JobTitle     string
	Bio          string
	YearsAtJob   int
	Skills       []string
	Languages    []language.Skill
	Country      string
	City         string
	CompanyID    *string
	Verified     bool
	OpenToOffers bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CompanyRef は社員側の操作で参照する企業のスナップショットです。
type CompanyRef struct {
	ID     string
	UserID string
	Name   string
}
