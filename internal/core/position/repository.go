package position

import "context"

// Repository はポジション永続化の抽象です。社員・企業のスナップショット
// 読み出しもここを通します。
type Repository interface {
	Create(ctx context.Context, p *Position) error
	Update(ctx context.Context, p *Position) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Position, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*Position, error)
	ListByCompany(ctx context.Context, companyID string) ([]*Position, error)
	ListActiveExcluding(ctx context.Context, employeeID, companyID string) ([]*Position, error)
	ActiveByEmployee(ctx context.Context, employeeID string) (*Position, error)

	EmployeeByID(ctx context.Context, employeeID string) (*EmployeeRef, error)
	EmployeeByUser(ctx context.Context, userID string) (*EmployeeRef, error)
	CompanyByUser(ctx context.Context, userID string) (*CompanyRef, error)
}
