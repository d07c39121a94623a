package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/jobswap-backend/internal/core/company"
	pgdb "github.com/ogurasousui/jobswap-backend/internal/platform/db/postgres"
)

// CompanyRepository は PostgreSQL を利用した企業永続化の実装です。社員の
// 関連付けと削除カスケードの書き込みも担います。
type CompanyRepository struct {
	pool pgdb.Queryer
}

// NewCompanyRepository は CompanyRepository を生成します。
func NewCompanyRepository(pool pgdb.Queryer) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

const companyColumns = `id, user_id, name, industry, size, description, website, headquarters, country, verified, created_at, updated_at`

// Create は企業プロフィールを新規作成します。
func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO companies (`+companyColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `,
		c.ID, c.UserID, c.Name, c.Industry, c.Size, c.Description,
		c.Website, c.Headquarters, c.Country, c.Verified, c.CreatedAt, c.UpdatedAt,
	)
	return translateCompanyPgError(err)
}

// Update は企業プロフィールを更新します。
func (r *CompanyRepository) Update(ctx context.Context, c *company.Company) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE companies
           SET name = $1,
               industry = $2,
               size = $3,
               description = $4,
               website = $5,
               headquarters = $6,
               country = $7,
               updated_at = $8
         WHERE id = $9
    `,
		c.Name, c.Industry, c.Size, c.Description, c.Website,
		c.Headquarters, c.Country, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return translateCompanyPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}
	return nil
}

// Delete は企業プロフィールを削除します。
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return translateCompanyPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}
	return nil
}

// FindByID は ID で企業を取得します。
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+companyColumns+`
          FROM companies
         WHERE id = $1
         LIMIT 1
    `, id)
	return scanCompany(row)
}

// FindByUser はオーナーのユーザー ID で企業を取得します。
func (r *CompanyRepository) FindByUser(ctx context.Context, userID string) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+companyColumns+`
          FROM companies
         WHERE user_id = $1
         LIMIT 1
    `, userID)
	return scanCompany(row)
}

// ListAll は全企業を新しい順に取得します。
func (r *CompanyRepository) ListAll(ctx context.Context) ([]*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+companyColumns+`
          FROM companies
         ORDER BY created_at DESC, id DESC
    `)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	defer rows.Close()

	companies := make([]*company.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// ListEmployees は指定企業の社員を在籍確認状態で絞り込んで取得します。
func (r *CompanyRepository) ListEmployees(ctx context.Context, companyID string, verified bool) ([]*company.EmployeeRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, user_id, first_name, last_name, job_title, company_id, verified
          FROM employees
         WHERE company_id = $1 AND verified = $2
         ORDER BY created_at DESC, id DESC
    `, companyID, verified)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	defer rows.Close()

	refs := make([]*company.EmployeeRef, 0)
	for rows.Next() {
		ref, err := scanCompanyEmployeeRef(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// EmployeeByID は社員スナップショットを取得します。
func (r *CompanyRepository) EmployeeByID(ctx context.Context, id string) (*company.EmployeeRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, user_id, first_name, last_name, job_title, company_id, verified
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)
	return scanCompanyEmployeeRef(row)
}

// SetEmployeeVerified は社員の在籍確認状態を更新します。
func (r *CompanyRepository) SetEmployeeVerified(ctx context.Context, employeeID string, verified bool) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE employees SET verified = $1, updated_at = now() WHERE id = $2
    `, verified, employeeID)
	if err != nil {
		return translateCompanyPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrEmployeeNotFound
	}
	return nil
}

// UnlinkEmployee は社員と企業の関連付けを解除します。
func (r *CompanyRepository) UnlinkEmployee(ctx context.Context, employeeID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE employees SET company_id = NULL, verified = FALSE, updated_at = now() WHERE id = $1
    `, employeeID)
	if err != nil {
		return translateCompanyPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrEmployeeNotFound
	}
	return nil
}

// DeactivateEmployeePositions は社員の有効なポジションを無効化します。
func (r *CompanyRepository) DeactivateEmployeePositions(ctx context.Context, employeeID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        UPDATE positions SET active = FALSE, updated_at = now() WHERE employee_id = $1 AND active
    `, employeeID)
	return translateCompanyPgError(err)
}

// UnlinkEmployeesByCompany は企業削除時に全社員の関連付けを解除します。
func (r *CompanyRepository) UnlinkEmployeesByCompany(ctx context.Context, companyID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        UPDATE employees SET company_id = NULL, verified = FALSE, updated_at = now() WHERE company_id = $1
    `, companyID)
	return translateCompanyPgError(err)
}

// DeletePositionsByCompany は企業削除時にポジションを削除します。
func (r *CompanyRepository) DeletePositionsByCompany(ctx context.Context, companyID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `DELETE FROM positions WHERE company_id = $1`, companyID)
	return translateCompanyPgError(err)
}

// DeleteExchangesByCompany は企業削除時に当事者となっている交換を削除
// します。ポジションより先に呼び出します。
func (r *CompanyRepository) DeleteExchangesByCompany(ctx context.Context, companyID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        DELETE FROM exchanges WHERE from_company_id = $1 OR to_company_id = $1
    `, companyID)
	return translateCompanyPgError(err)
}

// DeleteNotificationsByUser は企業削除時にオーナー宛の通知を削除します。
func (r *CompanyRepository) DeleteNotificationsByUser(ctx context.Context, userID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
	return translateCompanyPgError(err)
}

func scanCompany(row pgx.Row) (*company.Company, error) {
	var (
		id           string
		userID       string
		name         string
		industry     string
		size         string
		description  string
		website      sql.NullString
		headquarters string
		country      string
		verified     bool
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(
		&id, &userID, &name, &industry, &size, &description,
		&website, &headquarters, &country, &verified, &createdAt, &updatedAt,
	); err != nil {
		if isNoRows(err) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, err
	}

	var websitePtr *string
	if website.Valid {
		w := website.String
		websitePtr = &w
	}

	return &company.Company{
		ID:           id,
		UserID:       userID,
		Name:         name,
		Industry:     industry,
		Size:         size,
		Description:  description,
		Website:      websitePtr,
		Headquarters: headquarters,
		Country:      country,
		Verified:     verified,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func scanCompanyEmployeeRef(row pgx.Row) (*company.EmployeeRef, error) {
	var (
		id        string
		userID    string
		firstName string
		lastName  string
		jobTitle  string
		companyID sql.NullString
		verified  bool
	)
	if err := row.Scan(&id, &userID, &firstName, &lastName, &jobTitle, &companyID, &verified); err != nil {
		if isNoRows(err) {
			return nil, company.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &company.EmployeeRef{
		ID:        id,
		UserID:    userID,
		FirstName: firstName,
		LastName:  lastName,
		JobTitle:  jobTitle,
		CompanyID: companyID.String,
		Verified:  verified,
	}, nil
}

func translateCompanyPgError(err error) error {
	if err == nil {
		return nil
	}
	if isNoRows(err) {
		return company.ErrCompanyNotFound
	}
	if pgErr, ok := pgError(err); ok {
		switch pgErr.Code {
		case uniqueViolationCode:
			return company.ErrProfileAlreadyExists
		case foreignKeyViolationCode:
			return company.ErrCompanyNotFound
		}
	}
	return err
}
