package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/jobswap-backend/internal/core/exchange"
	"github.com/ogurasousui/jobswap-backend/internal/core/language"
	"github.com/ogurasousui/jobswap-backend/internal/core/position"
	pgdb "github.com/ogurasousui/jobswap-backend/internal/platform/db/postgres"
)

// PositionRepository は PostgreSQL を利用したポジション永続化の実装です。
// 「有効なポジションは 1 社員に 1 件」は部分ユニークインデックスで担保
// されます。
type PositionRepository struct {
	pool pgdb.Queryer
}

// NewPositionRepository は PositionRepository を生成します。
func NewPositionRepository(pool pgdb.Queryer) *PositionRepository {
	return &PositionRepository{pool: pool}
}

const positionColumns = `id, employee_id, company_id, title, description, requirements, benefits, required_languages, country, city, active, created_at, updated_at`

// Create はポジションを新規作成します。
func (r *PositionRepository) Create(ctx context.Context, p *position.Position) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO positions (`+positionColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `,
		p.ID, p.EmployeeID, p.CompanyID, p.Title, p.Description,
		p.Requirements, p.Benefits, p.RequiredLanguages, p.Country, p.City,
		p.Active, p.CreatedAt, p.UpdatedAt,
	)
	return translatePositionPgError(err)
}

// Update はポジションを更新します。
func (r *PositionRepository) Update(ctx context.Context, p *position.Position) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE positions
           SET employee_id = $1,
               title = $2,
               description = $3,
               requirements = $4,
               benefits = $5,
               required_languages = $6,
               country = $7,
               city = $8,
               active = $9,
               updated_at = $10
         WHERE id = $11
    `,
		p.EmployeeID, p.Title, p.Description, p.Requirements, p.Benefits,
		p.RequiredLanguages, p.Country, p.City, p.Active, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return translatePositionPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return position.ErrPositionNotFound
	}
	return nil
}

// Delete はポジションを削除します。
func (r *PositionRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return translatePositionPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return position.ErrPositionNotFound
	}
	return nil
}

// FindByID は ID でポジションを取得します。
func (r *PositionRepository) FindByID(ctx context.Context, id string) (*position.Position, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+positionColumns+`
          FROM positions
         WHERE id = $1
         LIMIT 1
    `, id)
	return scanPosition(row)
}

// ListByEmployee は社員のポジションを新しい順に取得します。
func (r *PositionRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*position.Position, error) {
	return r.list(ctx, `
        SELECT `+positionColumns+`
          FROM positions
         WHERE employee_id = $1
         ORDER BY created_at DESC, id DESC
    `, employeeID)
}

// ListByCompany は企業のポジションを新しい順に取得します。
func (r *PositionRepository) ListByCompany(ctx context.Context, companyID string) ([]*position.Position, error) {
	return r.list(ctx, `
        SELECT `+positionColumns+`
          FROM positions
         WHERE company_id = $1
         ORDER BY created_at DESC, id DESC
    `, companyID)
}

// ListActiveExcluding は有効なポジションのうち、指定社員と指定企業のもの、
// および指定社員が未解決の交換で既に関与しているものを除いた一覧を取得
// します。空文字の条件は何も除外しません。
func (r *PositionRepository) ListActiveExcluding(ctx context.Context, employeeID, companyID string) ([]*position.Position, error) {
	return r.list(ctx, `
        SELECT `+positionColumns+`
          FROM positions
         WHERE active
           AND ($1 = '' OR employee_id <> $1)
           AND ($2 = '' OR company_id <> $2)
           AND NOT EXISTS (
               SELECT 1
                 FROM exchanges e
                WHERE e.status IN ($3, $4)
                  AND ((e.from_employee_id = $1 AND e.to_position_id = positions.id)
                    OR (e.to_employee_id = $1 AND e.from_position_id = positions.id))
           )
         ORDER BY created_at DESC, id DESC
    `, employeeID, companyID,
		string(exchange.StatusPendingTargetResponse), string(exchange.StatusMutualInterest))
}

// ActiveByEmployee は社員の有効なポジションを取得します。
func (r *PositionRepository) ActiveByEmployee(ctx context.Context, employeeID string) (*position.Position, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+positionColumns+`
          FROM positions
         WHERE employee_id = $1 AND active
         LIMIT 1
    `, employeeID)
	return scanPosition(row)
}

const positionEmployeeColumns = `id, user_id, first_name, last_name, job_title, company_id, verified, languages`

// EmployeeByID は配属対象の社員スナップショットを取得します。
func (r *PositionRepository) EmployeeByID(ctx context.Context, employeeID string) (*position.EmployeeRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+positionEmployeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, employeeID)
	return scanPositionEmployee(row)
}

// EmployeeByUser は操作主体の社員スナップショットを取得します。
func (r *PositionRepository) EmployeeByUser(ctx context.Context, userID string) (*position.EmployeeRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+positionEmployeeColumns+`
          FROM employees
         WHERE user_id = $1
         LIMIT 1
    `, userID)
	return scanPositionEmployee(row)
}

func scanPositionEmployee(row pgx.Row) (*position.EmployeeRef, error) {
	var (
		ref       position.EmployeeRef
		companyID sql.NullString
		languages []language.Skill
	)
	if err := row.Scan(&ref.ID, &ref.UserID, &ref.FirstName, &ref.LastName, &ref.JobTitle, &companyID, &ref.Verified, &languages); err != nil {
		if isNoRows(err) {
			return nil, position.ErrEmployeeNotFound
		}
		return nil, err
	}
	if companyID.Valid {
		c := companyID.String
		ref.CompanyID = &c
	}
	ref.Languages = languages
	return &ref, nil
}

// CompanyByUser はオーナーのユーザー ID で企業スナップショットを取得
// します。
func (r *PositionRepository) CompanyByUser(ctx context.Context, userID string) (*position.CompanyRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, user_id, name FROM companies WHERE user_id = $1 LIMIT 1
    `, userID)

	var ref position.CompanyRef
	if err := row.Scan(&ref.ID, &ref.UserID, &ref.Name); err != nil {
		if isNoRows(err) {
			return nil, position.ErrCompanyNotFound
		}
		return nil, err
	}
	return &ref, nil
}

func (r *PositionRepository) list(ctx context.Context, query string, args ...any) ([]*position.Position, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePositionPgError(err)
	}
	defer rows.Close()

	positions := make([]*position.Position, 0)
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func scanPosition(row pgx.Row) (*position.Position, error) {
	var (
		id           string
		employeeID   string
		companyID    string
		title        string
		description  string
		requirements []string
		benefits     []string
		required     []language.Skill
		country      string
		city         string
		active       bool
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(
		&id, &employeeID, &companyID, &title, &description,
		&requirements, &benefits, &required, &country, &city,
		&active, &createdAt, &updatedAt,
	); err != nil {
		if isNoRows(err) {
			return nil, position.ErrPositionNotFound
		}
		return nil, err
	}

	return &position.Position{
		ID:                id,
		EmployeeID:        employeeID,
		CompanyID:         companyID,
		Title:             title,
		Description:       description,
		Requirements:      requirements,
		Benefits:          benefits,
		RequiredLanguages: required,
		Country:           country,
		City:              city,
		Active:            active,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}, nil
}

func translatePositionPgError(err error) error {
	if err == nil {
		return nil
	}
	if isNoRows(err) {
		return position.ErrPositionNotFound
	}
	if pgErr, ok := pgError(err); ok {
		switch pgErr.Code {
		case uniqueViolationCode:
			return position.ErrActivePositionExists
		case foreignKeyViolationCode:
			return position.ErrEmployeeNotFound
		}
	}
	return err
}
