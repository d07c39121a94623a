package position

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/jobswap-backend/internal/core/language"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakePositionRepo struct {
	positions map[string]*Position
	employees map[string]*EmployeeRef
	companies map[string]*CompanyRef
	order     []string
}

func newFakePositionRepo() *fakePositionRepo {
	return &fakePositionRepo{
		positions: make(map[string]*Position),
		employees: make(map[string]*EmployeeRef),
		companies: make(map[string]*CompanyRef),
	}
}

func clonePosition(p *Position) *Position {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Requirements = append([]string(nil), p.Requirements...)
	clone.Benefits = append([]string(nil), p.Benefits...)
	clone.RequiredLanguages = append([]language.Skill(nil), p.RequiredLanguages...)
	return &clone
}

func (r *fakePositionRepo) Create(_ context.Context, p *Position) error {
	r.positions[p.ID] = clonePosition(p)
	r.order = append(r.order, p.ID)
	return nil
}

func (r *fakePositionRepo) Update(_ context.Context, p *Position) error {
	if _, ok := r.positions[p.ID]; !ok {
		return ErrPositionNotFound
	}
	r.positions[p.ID] = clonePosition(p)
	return nil
}

func (r *fakePositionRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.positions[id]; !ok {
		return ErrPositionNotFound
	}
	delete(r.positions, id)
	return nil
}

func (r *fakePositionRepo) FindByID(_ context.Context, id string) (*Position, error) {
	p, ok := r.positions[id]
	if !ok {
		return nil, ErrPositionNotFound
	}
	return clonePosition(p), nil
}

func (r *fakePositionRepo) ListByEmployee(_ context.Context, employeeID string) ([]*Position, error) {
	var list []*Position
	for _, id := range r.order {
		p, ok := r.positions[id]
		if ok && p.EmployeeID == employeeID {
			list = append(list, clonePosition(p))
		}
	}
	return list, nil
}

func (r *fakePositionRepo) ListByCompany(_ context.Context, companyID string) ([]*Position, error) {
	var list []*Position
	for _, id := range r.order {
		p, ok := r.positions[id]
		if ok && p.CompanyID == companyID {
			list = append(list, clonePosition(p))
		}
	}
	return list, nil
}

func (r *fakePositionRepo) ListActiveExcluding(_ context.Context, employeeID, companyID string) ([]*Position, error) {
	var list []*Position
	for _, id := range r.order {
		p, ok := r.positions[id]
		if !ok || !p.Active {
			continue
		}
		if p.EmployeeID == employeeID {
			continue
		}
		if companyID != "" && p.CompanyID == companyID {
			continue
		}
		list = append(list, clonePosition(p))
	}
	return list, nil
}

func (r *fakePositionRepo) ActiveByEmployee(_ context.Context, employeeID string) (*Position, error) {
	for _, p := range r.positions {
		if p.EmployeeID == employeeID && p.Active {
			return clonePosition(p), nil
		}
	}
	return nil, ErrPositionNotFound
}

func (r *fakePositionRepo) EmployeeByID(_ context.Context, employeeID string) (*EmployeeRef, error) {
	emp, ok := r.employees[employeeID]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	clone := *emp
	return &clone, nil
}

func (r *fakePositionRepo) EmployeeByUser(_ context.Context, userID string) (*EmployeeRef, error) {
	for _, emp := range r.employees {
		if emp.UserID == userID {
			clone := *emp
			return &clone, nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (r *fakePositionRepo) CompanyByUser(_ context.Context, userID string) (*CompanyRef, error) {
	for _, c := range r.companies {
		if c.UserID == userID {
			clone := *c
			return &clone, nil
		}
	}
	return nil, ErrCompanyNotFound
}

func seedVerifiedEmployee(repo *fakePositionRepo, id, userID, companyID string) {
	seedEmployee(repo, id, userID, companyID, true)
}

func seedCompany(repo *fakePositionRepo, id, userID string) {
	repo.companies[id] = &CompanyRef{ID: id, UserID: userID, Name: "Acme " + id}
}

func seedEmployee(repo *fakePositionRepo, id, userID, companyID string, verified bool) {
	ref := &EmployeeRef{ID: id, UserID: userID, FirstName: "Taro", LastName: "Yamada", Verified: verified}
	if companyID != "" {
		ref.CompanyID = &companyID
	}
	repo.employees[id] = ref
}

func seedPosition(repo *fakePositionRepo, id, employeeID, companyID string, active bool, required []language.Skill) {
	repo.positions[id] = &Position{
		ID:                id,
		EmployeeID:        employeeID,
		CompanyID:         companyID,
		Title:             "Engineer",
		Description:       "desc",
		RequiredLanguages: required,
		Active:            active,
	}
	repo.order = append(repo.order, id)
}

func validInput() Input {
	return Input{
		EmployeeID:   "emp-1",
		Title:        "Backend Engineer",
		Description:  "Build services.",
		Requirements: []string{"Go"},
		Benefits:     []string{"Remote"},
		RequiredLanguages: []language.Skill{
			{Language: "English", Proficiency: language.ProficiencyConversational},
		},
		Country: "Japan",
		City:    "Tokyo",
	}
}

func TestService_Create_Success(t *testing.T) {
	t.Parallel()

	repo := newFakePositionRepo()
	seedCompany(repo, "company-1", "owner-1")
	seedVerifiedEmployee(repo, "emp-1", "user-1", "company-1")
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(repo, &stubClock{now: now}, nil)

	created, err := svc.Create(context.Background(), "owner-1", validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.EmployeeID != "emp-1" || created.CompanyID != "company-1" {
		t.Fatalf("unexpected ownership: %+v", created)
	}
	if !created.Active {
		t.Fatal("expected new position to be active")
	}
	if !created.CreatedAt.Equal(now) {
		t.Fatal("expected timestamps to use clock now")
	}
}

func TestService_Create_RequiresVerification(t *testing.T) {
	t.Parallel()

	repo := newFakePositionRepo()
	seedCompany(repo, "company-1", "owner-1")
	seedEmployee(repo, "emp-1", "user-1", "company-1", false)
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "owner-1", validInput())
	if !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}
}

func TestService_Create_RequiresEmployment(t *testing.T) {
	t.Parallel()

	repo := newFakePositionRepo()
	seedCompany(repo, "company-1", "owner-1")
	seedEmployee(repo, "emp-1", "user-1", "", false)
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "owner-1", validInput())
	if !errors.Is(err, ErrNotEmployed) {
		t.Fatalf("expected ErrNotEmployed, got %v", err)
	}
}

func TestService_Create_RejectsOtherCompanyEmployee(t *testing.T) {
	t.Parallel()

	repo := newFakePositionRepo()
	seedCompany(repo, "company-1", "owner-1")
	seedVerifiedEmployee(repo, "emp-1", "user-1", "company-2")
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "owner-1", validInput())
	if !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestService_Create_SecondActiveRejected(t *testing.T) {
	t.Parallel()

	repo := newFakePositionRepo()
	seedCompany(repo, "company-1", "owner-1")
	seedVerifiedEmployee(repo, "emp-1", "user-1", "company-1")
	seedPosition(repo, "pos-1", "emp-1", "company-1", true, nil)
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "owner-1", validInput())
	if !errors.Is(err, ErrActivePositionExists) {
		t.Fatalf("expected ErrActivePositionExists, got %v", err)
	}
}

func TestService_Update_NotOwner(t *testing.T) {
	t.Parallel()

	repo := newFakePositionRepo()
	seedCompany(repo, "company-1", "owner-1")
	seedPosition(repo, "pos-1", "emp-other", "company-2", true, nil)
	svc := NewService(repo, nil, nil)

	_, err := svc.Update(context.Background(), "owner-1", "pos-1", validInput())
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestService_Update_ReassignChecksActiveInvariant(t *testing.T) {
	t.Parallel()

	repo := newFakePositionRepo()
	seedCompany(repo, "company-1", "owner-1")
	seedVerifiedEmployee(repo, "emp-1", "user-1", "company-1")
	seedVerifiedEmployee(repo, "emp-2", "user-2", "company-1")
	seedPosition(repo, "pos-1", "emp-1", "company-1", true, nil)
	seedPosition(repo, "pos-2", "emp-2", "company-1", true, nil)
	svc := NewService(repo, nil, nil)

	in := validInput()
	in.EmployeeID = "emp-2"
	_, err := svc.Update(context.Background(), "owner-1", "pos-1", in)
	if !errors.Is(err, ErrActivePositionExists) {
		t.Fatalf("expected ErrActivePositionExists, got %v", err)
	}
}

func TestService_Update_Reassign(t *testing.T) {
	t.Parallel()

	repo := newFakePositionRepo()
	seedCompany(repo, "company-1", "owner-1")
	seedVerifiedEmployee(repo, "emp-1", "user-1", "company-1")
	seedVerifiedEmployee(repo, "emp-2", "user-2", "company-1")
	seedPosition(repo, "pos-1", "emp-1", "company-1", true, nil)
	svc := NewService(repo, nil, nil)

	in := validInput()
	in.EmployeeID = "emp-2"
	updated, err := svc.Update(context.Background(), "owner-1", "pos-1", in)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.EmployeeID != "emp-2" {
		t.Fatalf("expected reassignment to emp-2, got %s", updated.EmployeeID)
	}
}

func TestService_SetActive_Reactivate(t *testing.T) {
	t.Parallel()

	repo := newFakePositionRepo()
	seedCompany(repo, "company-1", "owner-1")
	seedPosition(repo, "pos-1", "emp-1", "company-1", false, nil)
	svc := NewService(repo, nil, nil)

	updated, err := svc.SetActive(context.Background(), "owner-1", "pos-1", true)
	if err != nil {
		t.Fatalf("SetActive returned error: %v", err)
	}
	if !updated.Active {
		t.Fatal("expected position to be active")
	}
}

func TestService_SetActive_SecondActiveRejected(t *testing.T) {
	t.Parallel()

	repo := newFakePositionRepo()
	seedCompany(repo, "company-1", "owner-1")
	seedPosition(repo, "pos-1", "emp-1", "company-1", true, nil)
	seedPosition(repo, "pos-2", "emp-1", "company-1", false, nil)
	svc := NewService(repo, nil, nil)

	_, err := svc.SetActive(context.Background(), "owner-1", "pos-2", true)
	if !errors.Is(err, ErrActivePositionExists) {
		t.Fatalf("expected ErrActivePositionExists, got %v", err)
	}
}

func TestService_ListOpportunities_ExcludesOwnAndSameCompany(t *testing.T) {
	t.Parallel()

	repo := newFakePositionRepo()
	seedVerifiedEmployee(repo, "emp-1", "user-1", "company-1")
	repo.employees["emp-1"].Languages = []language.Skill{
		{Language: "English", Proficiency: language.ProficiencyFluent},
	}
	seedPosition(repo, "pos-own", "emp-1", "company-1", true, nil)
	seedPosition(repo, "pos-colleague", "emp-2", "company-1", true, nil)
	seedPosition(repo, "pos-match", "emp-3", "company-2", true, []language.Skill{
		{Language: "English", Proficiency: language.ProficiencyConversational},
	})
	seedPosition(repo, "pos-mismatch", "emp-4", "company-3", true, []language.Skill{
		{Language: "German", Proficiency: language.ProficiencyBasic},
	})
	seedPosition(repo, "pos-inactive", "emp-5", "company-4", false, nil)
	svc := NewService(repo, nil, nil)

	list, err := svc.ListOpportunities(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListOpportunities returned error: %v", err)
	}

	if len(list) != 2 {
		t.Fatalf("expected 2 opportunities, got %d", len(list))
	}
	byID := make(map[string]*Opportunity, len(list))
	for _, o := range list {
		byID[o.Position.ID] = o
	}
	if o, ok := byID["pos-match"]; !ok || !o.Compatible {
		t.Fatalf("expected pos-match to be compatible, got %+v", byID)
	}
	if o, ok := byID["pos-mismatch"]; !ok || o.Compatible {
		t.Fatalf("expected pos-mismatch to be incompatible, got %+v", byID)
	}
}

func TestService_ListMyCompany(t *testing.T) {
	t.Parallel()

	repo := newFakePositionRepo()
	repo.companies["company-1"] = &CompanyRef{ID: "company-1", UserID: "owner-1", Name: "Acme"}
	seedPosition(repo, "pos-1", "emp-1", "company-1", true, nil)
	seedPosition(repo, "pos-2", "emp-2", "company-2", true, nil)
	svc := NewService(repo, nil, nil)

	list, err := svc.ListMyCompany(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("ListMyCompany returned error: %v", err)
	}
	if len(list) != 1 || list[0].ID != "pos-1" {
		t.Fatalf("expected only company positions, got %+v", list)
	}
}
