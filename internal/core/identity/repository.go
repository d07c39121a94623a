package identity

import "context"

// Repository はユーザーおよび種別設定の永続化の抽象です。
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	FindUserByID(ctx context.Context, id string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	UpsertAccount(ctx context.Context, a *Account) error
	FindAccountByUser(ctx context.Context, userID string) (*Account, error)
	DeleteAccount(ctx context.Context, userID string) error
}
