package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/jobswap-backend/internal/core/language"
	"github.com/ogurasousui/jobswap-backend/internal/core/position"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

type stubPositionRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubPositionRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

func TestScanPosition_Success(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	row := stubPositionRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 13 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "pos-1"
		*(dest[1].(*string)) = "emp-1"
		*(dest[2].(*string)) = "company-1"
		*(dest[3].(*string)) = "Backend Engineer"
		*(dest[4].(*string)) = "Build services"
		*(dest[5].(*[]string)) = []string{"go"}
		*(dest[6].(*[]string)) = []string{"remote"}
		*(dest[7].(*[]language.Skill)) = []language.Skill{{Language: "english", Proficiency: language.ProficiencyConversational}}
		*(dest[8].(*string)) = "JP"
		*(dest[9].(*string)) = "Tokyo"
		*(dest[10].(*bool)) = true
		*(dest[11].(*time.Time)) = createdAt
		*(dest[12].(*time.Time)) = createdAt
		return nil
	}}

	p, err := scanPosition(row)
	if err != nil {
		t.Fatalf("scanPosition returned error: %v", err)
	}

	if !p.Active {
		t.Fatalf("expected active position")
	}
	if len(p.RequiredLanguages) != 1 || p.RequiredLanguages[0].Language != "english" {
		t.Fatalf("unexpected required languages: %+v", p.RequiredLanguages)
	}
}

func TestScanPosition_NoRows(t *testing.T) {
	t.Parallel()

	row := stubPositionRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanPosition(row)
	if !errors.Is(err, position.ErrPositionNotFound) {
		t.Fatalf("expected ErrPositionNotFound, got %v", err)
	}
}

func TestTranslatePositionPgError(t *testing.T) {
	t.Parallel()

	uniqueErr := &pgconn.PgError{Code: uniqueViolationCode}
	if !errors.Is(translatePositionPgError(uniqueErr), position.ErrActivePositionExists) {
		t.Fatalf("expected unique violation to map to ErrActivePositionExists")
	}

	fkErr := &pgconn.PgError{Code: foreignKeyViolationCode}
	if !errors.Is(translatePositionPgError(fkErr), position.ErrEmployeeNotFound) {
		t.Fatalf("expected fk violation to map to ErrEmployeeNotFound")
	}

	other := errors.New("other")
	if translatePositionPgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestPositionRepository_ListActiveExcluding(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewPositionRepository(mock)

	query := regexp.QuoteMeta(`
        SELECT id, employee_id, company_id, title, description, requirements, benefits, required_languages, country, city, active, created_at, updated_at
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
    `)

	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "employee_id", "company_id", "title", "description",
		"requirements", "benefits", "required_languages", "country", "city",
		"active", "created_at", "updated_at",
	}).AddRow(
		"pos-2", "emp-2", "company-2", "Frontend Engineer", "Build UIs",
		[]string{"typescript"}, []string{}, []language.Skill{},
		"JP", "Osaka", true, now, now,
	)

	mock.ExpectQuery(query).
		WithArgs("emp-1", "company-1", "pending_target_response", "mutual_interest").
		WillReturnRows(rows)

	positions, err := repo.ListActiveExcluding(context.Background(), "emp-1", "company-1")
	if err != nil {
		t.Fatalf("ListActiveExcluding returned error: %v", err)
	}
	if len(positions) != 1 || positions[0].ID != "pos-2" {
		t.Fatalf("unexpected positions: %+v", positions)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
