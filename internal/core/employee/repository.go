package employee

import "context"

// Repository は社員永続化の抽象です。削除カスケードの対象テーブルへの
// 書き込みも、ここを通して同一トランザクションで行います。
type Repository interface {
	Create(ctx context.Context, e *Employee) error
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByUser(ctx context.Context, userID string) (*Employee, error)
	ListAll(ctx context.Context) ([]*Employee, error)

	CompanyByID(ctx context.Context, id string) (*CompanyRef, error)

	DeleteExchangesByEmployee(ctx context.Context, employeeID string) error
	DeletePositionsByEmployee(ctx context.Context, employeeID string) error
	DeactivatePositionsByEmployee(ctx context.Context, employeeID string) error
	DeleteNotificationsByUser(ctx context.Context, userID string) error
}
