package identity

import "time"

// Role はユーザーが選択した利用者種別です。
type Role string

const (
	RoleCompany  Role = "company"
	RoleEmployee Role = "employee"
)

// User は認証の主体となるアカウントです。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Account はユーザーごとに高々 1 件の種別設定です。user_id をユニーク
// キーとし、再設定は last-write-wins の upsert で上書きされます。
type Account struct {
	UserID    string
	Role      Role
	CreatedAt time.Time
}
