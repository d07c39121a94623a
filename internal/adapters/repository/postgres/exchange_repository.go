package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/jobswap-backend/internal/core/exchange"
	pgdb "github.com/ogurasousui/jobswap-backend/internal/platform/db/postgres"
)

// ExchangeRepository は PostgreSQL を利用した交換申請永続化の実装です。
// 完了遷移は status を条件にした UPDATE で行い、競合する承認の二重完了を
// 防ぎます。
type ExchangeRepository struct {
	pool pgdb.Queryer
}

// NewExchangeRepository は ExchangeRepository を生成します。
func NewExchangeRepository(pool pgdb.Queryer) *ExchangeRepository {
	return &ExchangeRepository{pool: pool}
}

const exchangeColumns = `id, from_position_id, to_position_id, from_employee_id, to_employee_id, from_company_id, to_company_id, status, message, from_company_approved_at, to_company_approved_at, created_at`

// Create は交換申請を新規作成します。
func (r *ExchangeRepository) Create(ctx context.Context, e *exchange.Exchange) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO exchanges (`+exchangeColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `,
		e.ID, e.FromPositionID, e.ToPositionID, e.FromEmployeeID, e.ToEmployeeID,
		e.FromCompanyID, e.ToCompanyID, string(e.Status), e.Message,
		e.FromCompanyApprovedAt, e.ToCompanyApprovedAt, e.CreatedAt,
	)
	return translateExchangePgError(err)
}

// FindByID は ID で交換申請を取得します。
func (r *ExchangeRepository) FindByID(ctx context.Context, id string) (*exchange.Exchange, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+exchangeColumns+`
          FROM exchanges
         WHERE id = $1
         LIMIT 1
    `, id)
	return scanExchange(row)
}

// FindByIDForUpdate は行ロックを取って交換申請を取得します。
func (r *ExchangeRepository) FindByIDForUpdate(ctx context.Context, id string) (*exchange.Exchange, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+exchangeColumns+`
          FROM exchanges
         WHERE id = $1
         FOR UPDATE
    `, id)
	return scanExchange(row)
}

// UpdateStatus は状態を更新します。
func (r *ExchangeRepository) UpdateStatus(ctx context.Context, id string, status exchange.Status) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE exchanges SET status = $1 WHERE id = $2
    `, string(status), id)
	if err != nil {
		return translateExchangePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return exchange.ErrExchangeNotFound
	}
	return nil
}

// SetCompanyApproval は指定側の承認時刻を、未設定の場合に限り書き込み
// ます。設定済みの場合は何も変わりません。
func (r *ExchangeRepository) SetCompanyApproval(ctx context.Context, id string, side exchange.Side, at time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	column := "from_company_approved_at"
	if side == exchange.SideTo {
		column = "to_company_approved_at"
	}
	_, err := exec.Exec(ctx, `
        UPDATE exchanges SET `+column+` = $1 WHERE id = $2 AND `+column+` IS NULL
    `, at, id)
	return translateExchangePgError(err)
}

// CompleteFromMutualInterest は mutual_interest のままの場合に限り
// completed へ遷移させます。
func (r *ExchangeRepository) CompleteFromMutualInterest(ctx context.Context, id string) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE exchanges
           SET status = $1
         WHERE id = $2 AND status = $3
    `, string(exchange.StatusCompleted), id, string(exchange.StatusMutualInterest))
	if err != nil {
		return false, translateExchangePgError(err)
	}
	return tag.RowsAffected() == 1, nil
}

// HasOpenProposal は同じ申請者と対象ポジションの組で非終端の交換が存在
// するかを返します。
func (r *ExchangeRepository) HasOpenProposal(ctx context.Context, fromEmployeeID, toPositionID string) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1
              FROM exchanges
             WHERE from_employee_id = $1
               AND to_position_id = $2
               AND status IN ($3, $4)
        )
    `, fromEmployeeID, toPositionID,
		string(exchange.StatusPendingTargetResponse), string(exchange.StatusMutualInterest))

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// EmployeeByID は社員スナップショットを取得します。
func (r *ExchangeRepository) EmployeeByID(ctx context.Context, id string) (*exchange.EmployeeRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, user_id, first_name, last_name, company_id, verified
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)
	return scanExchangeEmployeeRef(row)
}

// EmployeeByUser はユーザー ID で社員スナップショットを取得します。
func (r *ExchangeRepository) EmployeeByUser(ctx context.Context, userID string) (*exchange.EmployeeRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, user_id, first_name, last_name, company_id, verified
          FROM employees
         WHERE user_id = $1
         LIMIT 1
    `, userID)
	return scanExchangeEmployeeRef(row)
}

// CompanyByID は企業スナップショットを取得します。
func (r *ExchangeRepository) CompanyByID(ctx context.Context, id string) (*exchange.CompanyRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, user_id, name FROM companies WHERE id = $1 LIMIT 1
    `, id)
	return scanExchangeCompanyRef(row)
}

// CompanyByUser はオーナーのユーザー ID で企業スナップショットを取得
// します。
func (r *ExchangeRepository) CompanyByUser(ctx context.Context, userID string) (*exchange.CompanyRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, user_id, name FROM companies WHERE user_id = $1 LIMIT 1
    `, userID)
	return scanExchangeCompanyRef(row)
}

// PositionByID はポジションスナップショットを取得します。
func (r *ExchangeRepository) PositionByID(ctx context.Context, id string) (*exchange.PositionRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, employee_id, company_id, title, active
          FROM positions
         WHERE id = $1
         LIMIT 1
    `, id)
	return scanExchangePositionRef(row)
}

// ActivePositionByEmployee は社員の有効なポジションを取得します。
func (r *ExchangeRepository) ActivePositionByEmployee(ctx context.Context, employeeID string) (*exchange.PositionRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, employee_id, company_id, title, active
          FROM positions
         WHERE employee_id = $1 AND active
         LIMIT 1
    `, employeeID)
	return scanExchangePositionRef(row)
}

// DeactivatePosition はポジションを無効化します。
func (r *ExchangeRepository) DeactivatePosition(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE positions SET active = FALSE, updated_at = now() WHERE id = $1
    `, id)
	if err != nil {
		return translateExchangePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return exchange.ErrPositionNotFound
	}
	return nil
}

const exchangeViewColumns = `
        e.id, e.from_position_id, e.to_position_id, e.from_employee_id, e.to_employee_id,
        e.from_company_id, e.to_company_id, e.status, e.message,
        e.from_company_approved_at, e.to_company_approved_at, e.created_at,
        fe.id, fe.user_id, fe.first_name, fe.last_name,
        te.id, te.user_id, te.first_name, te.last_name,
        fc.id, fc.user_id, fc.name,
        tc.id, tc.user_id, tc.name,
        fp.id, fp.employee_id, fp.company_id, fp.title, fp.active,
        tp.id, tp.employee_id, tp.company_id, tp.title, tp.active`

const exchangeViewJoins = `
          FROM exchanges e
          JOIN employees fe ON fe.id = e.from_employee_id
          JOIN employees te ON te.id = e.to_employee_id
          JOIN companies fc ON fc.id = e.from_company_id
          JOIN companies tc ON tc.id = e.to_company_id
          JOIN positions fp ON fp.id = e.from_position_id
          JOIN positions tp ON tp.id = e.to_position_id`

// ListByEmployee は社員が当事者である交換の一覧を返します。自分宛で
// 返答待ちのものは含みません。
func (r *ExchangeRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*exchange.View, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+exchangeViewColumns+exchangeViewJoins+`
         WHERE e.from_employee_id = $1
            OR (e.to_employee_id = $1 AND e.status <> $2)
         ORDER BY e.created_at DESC, e.id DESC
    `, employeeID, string(exchange.StatusPendingTargetResponse))
	if err != nil {
		return nil, translateExchangePgError(err)
	}
	defer rows.Close()

	return collectEmployeeViews(rows, employeeID)
}

// ListIncoming は自分宛で返答待ちの申請を返します。
func (r *ExchangeRepository) ListIncoming(ctx context.Context, employeeID string) ([]*exchange.View, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+exchangeViewColumns+exchangeViewJoins+`
         WHERE e.to_employee_id = $1 AND e.status = $2
         ORDER BY e.created_at DESC, e.id DESC
    `, employeeID, string(exchange.StatusPendingTargetResponse))
	if err != nil {
		return nil, translateExchangePgError(err)
	}
	defer rows.Close()

	return collectEmployeeViews(rows, employeeID)
}

// ListByCompany は企業が当事者である交換の一覧を返します。
func (r *ExchangeRepository) ListByCompany(ctx context.Context, companyID string) ([]*exchange.CompanyView, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+exchangeViewColumns+exchangeViewJoins+`
         WHERE e.from_company_id = $1 OR e.to_company_id = $1
         ORDER BY e.created_at DESC, e.id DESC
    `, companyID)
	if err != nil {
		return nil, translateExchangePgError(err)
	}
	defer rows.Close()

	views := make([]*exchange.CompanyView, 0)
	for rows.Next() {
		view, err := scanExchangeView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

func collectEmployeeViews(rows pgx.Rows, employeeID string) ([]*exchange.View, error) {
	views := make([]*exchange.View, 0)
	for rows.Next() {
		full, err := scanExchangeView(rows)
		if err != nil {
			return nil, err
		}

		view := &exchange.View{Exchange: full.Exchange}
		if full.Exchange.FromEmployeeID == employeeID {
			view.Outgoing = true
			view.CounterpartEmployee = full.ToEmployee
			view.CounterpartCompany = full.ToCompany
			view.CounterpartPosition = full.ToPosition
		} else {
			view.CounterpartEmployee = full.FromEmployee
			view.CounterpartCompany = full.FromCompany
			view.CounterpartPosition = full.FromPosition
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

func scanExchangeView(row pgx.Row) (*exchange.CompanyView, error) {
	var (
		e  exchange.Exchange
		fe exchange.EmployeeRef
		te exchange.EmployeeRef
		fc exchange.CompanyRef
		tc exchange.CompanyRef
		fp exchange.PositionRef
		tp exchange.PositionRef

		status       string
		fromApproved sql.NullTime
		toApproved   sql.NullTime
	)
	if err := row.Scan(
		&e.ID, &e.FromPositionID, &e.ToPositionID, &e.FromEmployeeID, &e.ToEmployeeID,
		&e.FromCompanyID, &e.ToCompanyID, &status, &e.Message,
		&fromApproved, &toApproved, &e.CreatedAt,
		&fe.ID, &fe.UserID, &fe.FirstName, &fe.LastName,
		&te.ID, &te.UserID, &te.FirstName, &te.LastName,
		&fc.ID, &fc.UserID, &fc.Name,
		&tc.ID, &tc.UserID, &tc.Name,
		&fp.ID, &fp.EmployeeID, &fp.CompanyID, &fp.Title, &fp.Active,
		&tp.ID, &tp.EmployeeID, &tp.CompanyID, &tp.Title, &tp.Active,
	); err != nil {
		if isNoRows(err) {
			return nil, exchange.ErrExchangeNotFound
		}
		return nil, err
	}

	e.Status = exchange.Status(status)
	if fromApproved.Valid {
		at := fromApproved.Time
		e.FromCompanyApprovedAt = &at
	}
	if toApproved.Valid {
		at := toApproved.Time
		e.ToCompanyApprovedAt = &at
	}

	return &exchange.CompanyView{
		Exchange:     &e,
		FromEmployee: &fe,
		ToEmployee:   &te,
		FromCompany:  &fc,
		ToCompany:    &tc,
		FromPosition: &fp,
		ToPosition:   &tp,
	}, nil
}

func scanExchange(row pgx.Row) (*exchange.Exchange, error) {
	var (
		e            exchange.Exchange
		status       string
		fromApproved sql.NullTime
		toApproved   sql.NullTime
	)
	if err := row.Scan(
		&e.ID, &e.FromPositionID, &e.ToPositionID, &e.FromEmployeeID, &e.ToEmployeeID,
		&e.FromCompanyID, &e.ToCompanyID, &status, &e.Message,
		&fromApproved, &toApproved, &e.CreatedAt,
	); err != nil {
		if isNoRows(err) {
			return nil, exchange.ErrExchangeNotFound
		}
		return nil, err
	}

	e.Status = exchange.Status(status)
	if fromApproved.Valid {
		at := fromApproved.Time
		e.FromCompanyApprovedAt = &at
	}
	if toApproved.Valid {
		at := toApproved.Time
		e.ToCompanyApprovedAt = &at
	}
	return &e, nil
}

func scanExchangeEmployeeRef(row pgx.Row) (*exchange.EmployeeRef, error) {
	var (
		ref       exchange.EmployeeRef
		companyID sql.NullString
	)
	if err := row.Scan(&ref.ID, &ref.UserID, &ref.FirstName, &ref.LastName, &companyID, &ref.Verified); err != nil {
		if isNoRows(err) {
			return nil, exchange.ErrEmployeeNotFound
		}
		return nil, err
	}
	if companyID.Valid {
		c := companyID.String
		ref.CompanyID = &c
	}
	return &ref, nil
}

func scanExchangeCompanyRef(row pgx.Row) (*exchange.CompanyRef, error) {
	var ref exchange.CompanyRef
	if err := row.Scan(&ref.ID, &ref.UserID, &ref.Name); err != nil {
		if isNoRows(err) {
			return nil, exchange.ErrCompanyNotFound
		}
		return nil, err
	}
	return &ref, nil
}

func scanExchangePositionRef(row pgx.Row) (*exchange.PositionRef, error) {
	var ref exchange.PositionRef
	if err := row.Scan(&ref.ID, &ref.EmployeeID, &ref.CompanyID, &ref.Title, &ref.Active); err != nil {
		if isNoRows(err) {
			return nil, exchange.ErrPositionNotFound
		}
		return nil, err
	}
	return &ref, nil
}

func translateExchangePgError(err error) error {
	if err == nil {
		return nil
	}
	if isNoRows(err) {
		return exchange.ErrExchangeNotFound
	}
	if pgErr, ok := pgError(err); ok {
		switch pgErr.Code {
		case uniqueViolationCode:
			return exchange.ErrDuplicateProposal
		case foreignKeyViolationCode:
			return exchange.ErrPositionNotFound
		case checkViolationCode:
			return exchange.ErrInvalidTransition
		}
	}
	return err
}
