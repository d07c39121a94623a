package exchange

import (
	"context"
	"time"
)

// Side は交換申請のどちら側の企業かを表します。
type Side string

const (
	SideFrom Side = "from"
	SideTo   Side = "to"
)

// Repository は交換申請の永続化の抽象です。当事者スナップショットの
// 読み出しと、完了時のポジション無効化もここを通して同一トランザク
// ションで行います。
type Repository interface {
	Create(ctx context.Context, e *Exchange) error
	FindByID(ctx context.Context, id string) (*Exchange, error)
	// FindByIDForUpdate は行ロックを取って読み出します。状態遷移の判断は
	// 必ずこちらの結果に基づきます。
	FindByIDForUpdate(ctx context.Context, id string) (*Exchange, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	// SetCompanyApproval は指定側の承認時刻を、未設定の場合に限り書き
	// 込みます。
	SetCompanyApproval(ctx context.Context, id string, side Side, at time.Time) error
	// CompleteFromMutualInterest は status が mutual_interest のままの
	// 場合に限り completed へ遷移させ、遷移したかどうかを返します。
	CompleteFromMutualInterest(ctx context.Context, id string) (bool, error)
	// HasOpenProposal は同じ申請者と対象ポジションの組で非終端の交換が
	// 存在するかを返します。
	HasOpenProposal(ctx context.Context, fromEmployeeID, toPositionID string) (bool, error)

	EmployeeByID(ctx context.Context, id string) (*EmployeeRef, error)
	EmployeeByUser(ctx context.Context, userID string) (*EmployeeRef, error)
	CompanyByID(ctx context.Context, id string) (*CompanyRef, error)
	CompanyByUser(ctx context.Context, userID string) (*CompanyRef, error)
	PositionByID(ctx context.Context, id string) (*PositionRef, error)
	ActivePositionByEmployee(ctx context.Context, employeeID string) (*PositionRef, error)
	DeactivatePosition(ctx context.Context, id string) error

	ListByEmployee(ctx context.Context, employeeID string) ([]*View, error)
	ListIncoming(ctx context.Context, employeeID string) ([]*View, error)
	ListByCompany(ctx context.Context, companyID string) ([]*CompanyView, error)
}
