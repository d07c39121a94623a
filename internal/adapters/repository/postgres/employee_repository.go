package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/jobswap-backend/internal/core/employee"
	"github.com/ogurasousui/jobswap-backend/internal/core/language"
	pgdb "github.com/ogurasousui/jobswap-backend/internal/platform/db/postgres"
)

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。言語
// スキルは JSONB 列にそのまま格納されます。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

const employeeColumns = `id, user_id, first_name, last_name, job_title, bio, years_at_job, skills, languages, country, city, company_id, verified, open_to_offers, created_at, updated_at`

// Create は社員プロフィールを新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO employees (`+employeeColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
    `,
		e.ID, e.UserID, e.FirstName, e.LastName, e.JobTitle, e.Bio,
		e.YearsAtJob, e.Skills, e.Languages, e.Country, e.City,
		e.CompanyID, e.Verified, e.OpenToOffers, e.CreatedAt, e.UpdatedAt,
	)
	return translateEmployeePgError(err)
}

// Update は社員プロフィールを更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE employees
           SET first_name = $1,
               last_name = $2,
               job_title = $3,
               bio = $4,
               years_at_job = $5,
               skills = $6,
               languages = $7,
               country = $8,
               city = $9,
               company_id = $10,
               verified = $11,
               open_to_offers = $12,
               updated_at = $13
         WHERE id = $14
    `,
		e.FirstName, e.LastName, e.JobTitle, e.Bio, e.YearsAtJob,
		e.Skills, e.Languages, e.Country, e.City, e.CompanyID,
		e.Verified, e.OpenToOffers, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// Delete は社員プロフィールを削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)
	return scanEmployee(row)
}

// FindByUser はユーザー ID で社員を取得します。
func (r *EmployeeRepository) FindByUser(ctx context.Context, userID string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE user_id = $1
         LIMIT 1
    `, userID)
	return scanEmployee(row)
}

// ListAll は全社員を新しい順に取得します。
func (r *EmployeeRepository) ListAll(ctx context.Context) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         ORDER BY created_at DESC, id DESC
    `)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// CompanyByID は企業スナップショットを取得します。
func (r *EmployeeRepository) CompanyByID(ctx context.Context, id string) (*employee.CompanyRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, user_id, name FROM companies WHERE id = $1 LIMIT 1
    `, id)

	var ref employee.CompanyRef
	if err := row.Scan(&ref.ID, &ref.UserID, &ref.Name); err != nil {
		if isNoRows(err) {
			return nil, employee.ErrCompanyNotFound
		}
		return nil, err
	}
	return &ref, nil
}

// DeleteExchangesByEmployee は社員削除時に当事者となっている交換を削除
// します。
func (r *EmployeeRepository) DeleteExchangesByEmployee(ctx context.Context, employeeID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        DELETE FROM exchanges WHERE from_employee_id = $1 OR to_employee_id = $1
    `, employeeID)
	return translateEmployeePgError(err)
}

// DeletePositionsByEmployee は社員削除時にポジションを削除します。
func (r *EmployeeRepository) DeletePositionsByEmployee(ctx context.Context, employeeID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `DELETE FROM positions WHERE employee_id = $1`, employeeID)
	return translateEmployeePgError(err)
}

// DeactivatePositionsByEmployee は社員の有効なポジションを無効化します。
func (r *EmployeeRepository) DeactivatePositionsByEmployee(ctx context.Context, employeeID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        UPDATE positions SET active = FALSE, updated_at = now() WHERE employee_id = $1 AND active
    `, employeeID)
	return translateEmployeePgError(err)
}

// DeleteNotificationsByUser は社員削除時に本人宛の通知を削除します。
func (r *EmployeeRepository) DeleteNotificationsByUser(ctx context.Context, userID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
	return translateEmployeePgError(err)
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id           string
		userID       string
		firstName    string
		lastName     string
		jobTitle     string
		bio          string
		yearsAtJob   int
		skills       []string
		languages    []language.Skill
		country      string
		city         string
		companyID    sql.NullString
		verified     bool
		openToOffers bool
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(
		&id, &userID, &firstName, &lastName, &jobTitle, &bio,
		&yearsAtJob, &skills, &languages, &country, &city,
		&companyID, &verified, &openToOffers, &createdAt, &updatedAt,
	); err != nil {
		if isNoRows(err) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	var companyPtr *string
	if companyID.Valid {
		c := companyID.String
		companyPtr = &c
	}

	return &employee.Employee{
		ID:           id,
		UserID:       userID,
		FirstName:    firstName,
		LastName:     lastName,
		JobTitle:     jobTitle,
		Bio:          bio,
		YearsAtJob:   yearsAtJob,
		Skills:       skills,
		Languages:    languages,
		Country:      country,
		City:         city,
		CompanyID:    companyPtr,
		Verified:     verified,
		OpenToOffers: openToOffers,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if isNoRows(err) {
		return employee.ErrEmployeeNotFound
	}
	if pgErr, ok := pgError(err); ok {
		switch pgErr.Code {
		case uniqueViolationCode:
			return employee.ErrProfileAlreadyExists
		case foreignKeyViolationCode:
			return employee.ErrCompanyNotFound
		}
	}
	return err
}
