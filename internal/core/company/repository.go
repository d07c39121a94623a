package company

import "context"

// Repository は企業永続化の抽象です。社員の関連付けや削除カスケードの
// 対象テーブルへの書き込みも、ここを通して同一トランザクションで行います。
type Repository interface {
	Create(ctx context.Context, c *Company) error
	Update(ctx context.Context, c *Company) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Company, error)
	FindByUser(ctx context.Context, userID string) (*Company, error)
	ListAll(ctx context.Context) ([]*Company, error)

	ListEmployees(ctx context.Context, companyID string, verified bool) ([]*EmployeeRef, error)
	EmployeeByID(ctx context.Context, id string) (*EmployeeRef, error)
	SetEmployeeVerified(ctx context.Context, employeeID string, verified bool) error
	UnlinkEmployee(ctx context.Context, employeeID string) error
	DeactivateEmployeePositions(ctx context.Context, employeeID string) error

	UnlinkEmployeesByCompany(ctx context.Context, companyID string) error
	DeletePositionsByCompany(ctx context.Context, companyID string) error
	DeleteExchangesByCompany(ctx context.Context, companyID string) error
	DeleteNotificationsByUser(ctx context.Context, userID string) error
}
