package position

import (
	"time"

	"github.com/ogurasousui/jobswap-backend/internal/core/language"
)

// Position は社員が交換に出している求人ポジションです。1 社員につき
// 有効なポジションは高々 1 件です。
type Position struct {
	ID                string
	EmployeeID        string
	CompanyID         string
	Title             string
	Description       string
	Requirements      []string
	Benefits          []string
	RequiredLanguages []language.Skill
	Country           string
	City              string
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EmployeeRef はポジション操作で参照する社員のスナップショットです。
type EmployeeRef struct {
	ID        string
	UserID    string
	FirstName string
	LastName  string
	JobTitle  string
	CompanyID *string
	Verified  bool
	Languages []language.Skill
}

// CompanyRef は企業オーナー視点の一覧で参照する企業のスナップショットです。
type CompanyRef struct {
	ID     string
	UserID string
	Name   string
}

// Opportunity は閲覧中の社員から見た他社員のポジションです。Compatible は
// 閲覧者の言語スキルがポジションの言語要件を満たすかどうかを示します。
type Opportunity struct {
	Position   *Position
	Compatible bool
}
