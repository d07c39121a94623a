package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/jobswap-backend/internal/core/exchange"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

type stubExchangeRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubExchangeRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

func TestScanExchange_Success(t *testing.T) {
	t.Parallel()

	approvedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	row := stubExchangeRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 12 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "exchange-1"
		*(dest[1].(*string)) = "pos-1"
		*(dest[2].(*string)) = "pos-2"
		*(dest[3].(*string)) = "emp-1"
		*(dest[4].(*string)) = "emp-2"
		*(dest[5].(*string)) = "company-1"
		*(dest[6].(*string)) = "company-2"
		*(dest[7].(*string)) = string(exchange.StatusMutualInterest)
		*(dest[8].(*string)) = "let's swap"

		fromDest := dest[9].(*sql.NullTime)
		fromDest.Time = approvedAt
		fromDest.Valid = true

		*(dest[11].(*time.Time)) = createdAt
		return nil
	}}

	e, err := scanExchange(row)
	if err != nil {
		t.Fatalf("scanExchange returned error: %v", err)
	}

	if e.Status != exchange.StatusMutualInterest {
		t.Fatalf("expected mutual_interest status, got %s", e.Status)
	}
	if e.FromCompanyApprovedAt == nil || !e.FromCompanyApprovedAt.Equal(approvedAt) {
		t.Fatalf("expected from-company approval time, got %+v", e.FromCompanyApprovedAt)
	}
	if e.ToCompanyApprovedAt != nil {
		t.Fatalf("expected nil to-company approval time, got %+v", e.ToCompanyApprovedAt)
	}
}

func TestScanExchange_NoRows(t *testing.T) {
	t.Parallel()

	row := stubExchangeRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanExchange(row)
	if !errors.Is(err, exchange.ErrExchangeNotFound) {
		t.Fatalf("expected ErrExchangeNotFound, got %v", err)
	}
}

func TestTranslateExchangePgError(t *testing.T) {
	t.Parallel()

	uniqueErr := &pgconn.PgError{Code: uniqueViolationCode}
	if !errors.Is(translateExchangePgError(uniqueErr), exchange.ErrDuplicateProposal) {
		t.Fatalf("expected unique violation to map to ErrDuplicateProposal")
	}

	fkErr := &pgconn.PgError{Code: foreignKeyViolationCode}
	if !errors.Is(translateExchangePgError(fkErr), exchange.ErrPositionNotFound) {
		t.Fatalf("expected fk violation to map to ErrPositionNotFound")
	}

	checkErr := &pgconn.PgError{Code: checkViolationCode}
	if !errors.Is(translateExchangePgError(checkErr), exchange.ErrInvalidTransition) {
		t.Fatalf("expected check violation to map to ErrInvalidTransition")
	}

	other := errors.New("other")
	if translateExchangePgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestExchangeRepository_CompleteFromMutualInterest(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewExchangeRepository(mock)

	query := regexp.QuoteMeta(`
        UPDATE exchanges
           SET status = $1
         WHERE id = $2 AND status = $3
    `)

	mock.ExpectExec(query).
		WithArgs(string(exchange.StatusCompleted), "exchange-1", string(exchange.StatusMutualInterest)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(query).
		WithArgs(string(exchange.StatusCompleted), "exchange-1", string(exchange.StatusMutualInterest)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	completed, err := repo.CompleteFromMutualInterest(context.Background(), "exchange-1")
	if err != nil {
		t.Fatalf("CompleteFromMutualInterest returned error: %v", err)
	}
	if !completed {
		t.Fatalf("expected first transition to report completion")
	}

	completed, err = repo.CompleteFromMutualInterest(context.Background(), "exchange-1")
	if err != nil {
		t.Fatalf("CompleteFromMutualInterest returned error: %v", err)
	}
	if completed {
		t.Fatalf("expected repeated transition to report no completion")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExchangeRepository_SetCompanyApproval_SideColumns(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewExchangeRepository(mock)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	fromQuery := regexp.QuoteMeta(`
        UPDATE exchanges SET from_company_approved_at = $1 WHERE id = $2 AND from_company_approved_at IS NULL
    `)
	toQuery := regexp.QuoteMeta(`
        UPDATE exchanges SET to_company_approved_at = $1 WHERE id = $2 AND to_company_approved_at IS NULL
    `)

	mock.ExpectExec(fromQuery).
		WithArgs(at, "exchange-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(toQuery).
		WithArgs(at, "exchange-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.SetCompanyApproval(context.Background(), "exchange-1", exchange.SideFrom, at); err != nil {
		t.Fatalf("SetCompanyApproval(from) returned error: %v", err)
	}
	if err := repo.SetCompanyApproval(context.Background(), "exchange-1", exchange.SideTo, at); err != nil {
		t.Fatalf("SetCompanyApproval(to) returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExchangeRepository_HasOpenProposal(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewExchangeRepository(mock)

	query := regexp.QuoteMeta(`
        SELECT EXISTS (
            SELECT 1
              FROM exchanges
             WHERE from_employee_id = $1
               AND to_position_id = $2
               AND status IN ($3, $4)
        )
    `)

	rows := pgxmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery(query).
		WithArgs("emp-1", "pos-2",
			string(exchange.StatusPendingTargetResponse), string(exchange.StatusMutualInterest)).
		WillReturnRows(rows)

	exists, err := repo.HasOpenProposal(context.Background(), "emp-1", "pos-2")
	if err != nil {
		t.Fatalf("HasOpenProposal returned error: %v", err)
	}
	if !exists {
		t.Fatalf("expected open proposal to be reported")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
