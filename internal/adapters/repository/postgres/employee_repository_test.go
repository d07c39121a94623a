package postgres

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/jobswap-backend/internal/core/employee"
	"github.com/ogurasousui/jobswap-backend/internal/core/language"
)

type stubEmployeeRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubEmployeeRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

func TestScanEmployee_Success(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	updatedAt := createdAt.Add(time.Hour)

	row := stubEmployeeRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 16 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "emp-1"
		*(dest[1].(*string)) = "user-1"
		*(dest[2].(*string)) = "Taro"
		*(dest[3].(*string)) = "Yamada"
		*(dest[4].(*string)) = "Backend Engineer"
		*(dest[5].(*string)) = "10 years of Go"
		*(dest[6].(*int)) = 4
		*(dest[7].(*[]string)) = []string{"go", "postgres"}
		*(dest[8].(*[]language.Skill)) = []language.Skill{{Language: "japanese", Proficiency: language.ProficiencyNative}}
		*(dest[9].(*string)) = "JP"
		*(dest[10].(*string)) = "Tokyo"

		companyDest := dest[11].(*sql.NullString)
		companyDest.String = "company-1"
		companyDest.Valid = true

		*(dest[12].(*bool)) = true
		*(dest[13].(*bool)) = true
		*(dest[14].(*time.Time)) = createdAt
		*(dest[15].(*time.Time)) = updatedAt
		return nil
	}}

	emp, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}

	if emp.CompanyID == nil || *emp.CompanyID != "company-1" {
		t.Fatalf("expected company-1, got %+v", emp.CompanyID)
	}
	if len(emp.Languages) != 1 || emp.Languages[0].Proficiency != language.ProficiencyNative {
		t.Fatalf("unexpected languages: %+v", emp.Languages)
	}
	if !emp.Verified {
		t.Fatalf("expected verified employee")
	}
}

func TestScanEmployee_NoRows(t *testing.T) {
	t.Parallel()

	row := stubEmployeeRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanEmployee(row)
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	uniqueErr := &pgconn.PgError{Code: uniqueViolationCode}
	if !errors.Is(translateEmployeePgError(uniqueErr), employee.ErrProfileAlreadyExists) {
		t.Fatalf("expected unique violation to map to ErrProfileAlreadyExists")
	}

	fkErr := &pgconn.PgError{Code: foreignKeyViolationCode}
	if !errors.Is(translateEmployeePgError(fkErr), employee.ErrCompanyNotFound) {
		t.Fatalf("expected fk violation to map to ErrCompanyNotFound")
	}

	other := errors.New("other")
	if translateEmployeePgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}
