package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/jobswap-backend/internal/core/identity"
	pgdb "github.com/ogurasousui/jobswap-backend/internal/platform/db/postgres"
)

// IdentityRepository は PostgreSQL を利用したユーザーとアカウント種別の
// 永続化の実装です。
type IdentityRepository struct {
	pool pgdb.Queryer
}

// NewIdentityRepository は IdentityRepository を生成します。
func NewIdentityRepository(pool pgdb.Queryer) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// CreateUser はユーザーを新規作成します。
func (r *IdentityRepository) CreateUser(ctx context.Context, u *identity.User) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO users (id, email, name, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt)
	return translateIdentityPgError(err)
}

// FindUserByID は ID でユーザーを取得します。
func (r *IdentityRepository) FindUserByID(ctx context.Context, id string) (*identity.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, email, name, password_hash, created_at
          FROM users
         WHERE id = $1
         LIMIT 1
    `, id)
	return scanUser(row)
}

// FindUserByEmail はメールアドレスでユーザーを取得します。
func (r *IdentityRepository) FindUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, email, name, password_hash, created_at
          FROM users
         WHERE email = $1
         LIMIT 1
    `, email)
	return scanUser(row)
}

// UpsertAccount は利用者種別を upsert します。後勝ちです。
func (r *IdentityRepository) UpsertAccount(ctx context.Context, a *identity.Account) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO accounts (user_id, role, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role
    `, a.UserID, string(a.Role), a.CreatedAt)
	return translateIdentityPgError(err)
}

// FindAccountByUser は利用者種別を取得します。
func (r *IdentityRepository) FindAccountByUser(ctx context.Context, userID string) (*identity.Account, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT user_id, role, created_at
          FROM accounts
         WHERE user_id = $1
         LIMIT 1
    `, userID)

	var (
		id        string
		role      string
		createdAt time.Time
	)
	if err := row.Scan(&id, &role, &createdAt); err != nil {
		if isNoRows(err) {
			return nil, identity.ErrAccountNotFound
		}
		return nil, err
	}
	return &identity.Account{UserID: id, Role: identity.Role(role), CreatedAt: createdAt}, nil
}

// DeleteAccount は利用者種別の設定を削除します。
func (r *IdentityRepository) DeleteAccount(ctx context.Context, userID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM accounts WHERE user_id = $1`, userID)
	if err != nil {
		return translateIdentityPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAccountNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*identity.User, error) {
	var (
		id           string
		email        string
		name         string
		passwordHash string
		createdAt    time.Time
	)
	if err := row.Scan(&id, &email, &name, &passwordHash, &createdAt); err != nil {
		if isNoRows(err) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return &identity.User{
		ID:           id,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}, nil
}

func translateIdentityPgError(err error) error {
	if err == nil {
		return nil
	}
	if isNoRows(err) {
		return identity.ErrUserNotFound
	}
	if pgErr, ok := pgError(err); ok {
		switch pgErr.Code {
		case uniqueViolationCode:
			return identity.ErrEmailAlreadyExists
		case foreignKeyViolationCode:
			return identity.ErrUserNotFound
		case checkViolationCode:
			return identity.ErrInvalidRole
		}
	}
	return err
}
