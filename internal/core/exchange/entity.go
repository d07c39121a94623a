package exchange

import "time"

// Exchange は 2 つのポジション間の交換申請です。当事者の ID は申請時点の
// スナップショットとして固定されます。Status と承認時刻はこのパッケージ
// だけが書き換えます。
type Exchange struct {
	ID                    string
	FromPositionID        string
	ToPositionID          string
	FromEmployeeID        string
	ToEmployeeID          string
	FromCompanyID         string
	ToCompanyID           string
	Status                Status
	Message               string
	FromCompanyApprovedAt *time.Time
	ToCompanyApprovedAt   *time.Time
	CreatedAt             time.Time
}

// EmployeeRef は交換操作で参照する社員のスナップショットです。
type EmployeeRef struct {
	ID        string
	UserID    string
	FirstName string
	LastName  string
	CompanyID *string
	Verified  bool
}

// CompanyRef は交換操作で参照する企業のスナップショットです。
type CompanyRef struct {
	ID     string
	UserID string
	Name   string
}

// PositionRef は交換操作で参照するポジションのスナップショットです。
type PositionRef struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Title      string
	Active     bool
}

// View は社員視点の交換一覧 1 行分です。Counterpart* は閲覧者から見た
// 相手側のスナップショットです。
type View struct {
	Exchange            *Exchange
	Outgoing            bool
	CounterpartEmployee *EmployeeRef
	CounterpartCompany  *CompanyRef
	CounterpartPosition *PositionRef
}

// CompanyView は企業視点の交換一覧 1 行分です。
type CompanyView struct {
	Exchange     *Exchange
	FromEmployee *EmployeeRef
	ToEmployee   *EmployeeRef
	FromPosition *PositionRef
	ToPosition   *PositionRef
	FromCompany  *CompanyRef
	ToCompany    *CompanyRef
}
