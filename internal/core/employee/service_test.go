package employee

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/jobswap-backend/internal/core/language"
	"github.com/ogurasousui/jobswap-backend/internal/core/notification"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeEmployeeRepo struct {
	employees map[string]*Employee
	companies map[string]*CompanyRef
	cascade   []string
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{
		employees: make(map[string]*Employee),
		companies: make(map[string]*CompanyRef),
	}
}

func cloneEmployee(e *Employee) *Employee {
	if e == nil {
		return nil
	}
	clone := *e
	if e.CompanyID != nil {
		companyID := *e.CompanyID
		clone.CompanyID = &companyID
	}
	clone.Skills = append([]string(nil), e.Skills...)
	clone.Languages = append([]language.Skill(nil), e.Languages...)
	return &clone
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *Employee) error {
	for _, existing := range r.employees {
		if existing.UserID == e.UserID {
			return ErrProfileAlreadyExists
		}
	}
	r.employees[e.ID] = cloneEmployee(e)
	return nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, e *Employee) error {
	if _, ok := r.employees[e.ID]; !ok {
		return ErrEmployeeNotFound
	}
	r.employees[e.ID] = cloneEmployee(e)
	return nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	r.cascade = append(r.cascade, "delete-employee")
	return nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id string) (*Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return cloneEmployee(e), nil
}

func (r *fakeEmployeeRepo) FindByUser(_ context.Context, userID string) (*Employee, error) {
	for _, e := range r.employees {
		if e.UserID == userID {
			return cloneEmployee(e), nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) ListAll(_ context.Context) ([]*Employee, error) {
	list := make([]*Employee, 0, len(r.employees))
	for _, e := range r.employees {
		list = append(list, cloneEmployee(e))
	}
	return list, nil
}

func (r *fakeEmployeeRepo) CompanyByID(_ context.Context, id string) (*CompanyRef, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, ErrCompanyNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeEmployeeRepo) DeleteExchangesByEmployee(_ context.Context, employeeID string) error {
	r.cascade = append(r.cascade, "delete-exchanges:"+employeeID)
	return nil
}

func (r *fakeEmployeeRepo) DeletePositionsByEmployee(_ context.Context, employeeID string) error {
	r.cascade = append(r.cascade, "delete-positions:"+employeeID)
	return nil
}

func (r *fakeEmployeeRepo) DeactivatePositionsByEmployee(_ context.Context, employeeID string) error {
	r.cascade = append(r.cascade, "deactivate-positions:"+employeeID)
	return nil
}

func (r *fakeEmployeeRepo) DeleteNotificationsByUser(_ context.Context, userID string) error {
	r.cascade = append(r.cascade, "delete-notifications:"+userID)
	return nil
}

type notifyCall struct {
	userID    string
	kind      notification.Kind
	title     string
	body      string
	relatedID string
}

type fakeNotifier struct {
	calls []notifyCall
}

func (n *fakeNotifier) Notify(_ context.Context, userID string, kind notification.Kind, title, body, relatedID string) error {
	n.calls = append(n.calls, notifyCall{userID: userID, kind: kind, title: title, body: body, relatedID: relatedID})
	return nil
}

func seedEmployee(repo *fakeEmployeeRepo, id, userID string, companyID *string, verified bool) {
	repo.employees[id] = &Employee{
		ID:        id,
		UserID:    userID,
		FirstName: "Taro",
		LastName:  "Yamada",
		JobTitle:  "Engineer",
		CompanyID: companyID,
		Verified:  verified,
	}
}

func validInput() ProfileInput {
	return ProfileInput{
		FirstName: "Taro",
		LastName:  "Yamada",
		JobTitle:  "Backend Engineer",
		Bio:       "bio",
		Skills:    []string{"Go", "PostgreSQL"},
		Languages: []language.Skill{
			{Language: "Japanese", Proficiency: language.ProficiencyNative},
			{Language: "English", Proficiency: language.ProficiencyConversational},
		},
		Country: "Japan",
		City:    "Tokyo",
	}
}

func TestService_CreateProfile_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(repo, nil, &stubClock{now: now}, nil)

	in := validInput()
	in.FirstName = "  Taro  "
	in.Skills = []string{" Go ", "", "PostgreSQL"}

	created, err := svc.CreateProfile(context.Background(), "user-1", in)
	if err != nil {
		t.Fatalf("CreateProfile returned error: %v", err)
	}

	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.FirstName != "Taro" {
		t.Fatalf("expected trimmed first name, got %q", created.FirstName)
	}
	if len(created.Skills) != 2 || created.Skills[0] != "Go" {
		t.Fatalf("expected empty skills removed, got %v", created.Skills)
	}
	if created.Verified {
		t.Fatal("expected new profile to be unverified")
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatal("expected timestamps to use clock now")
	}
}

func TestService_CreateProfile_WithCompanyNotifiesOwner(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	repo.companies["company-1"] = &CompanyRef{ID: "company-1", UserID: "owner-1", Name: "Acme"}
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil, nil)

	in := validInput()
	companyID := "company-1"
	in.CompanyID = &companyID

	created, err := svc.CreateProfile(context.Background(), "user-1", in)
	if err != nil {
		t.Fatalf("CreateProfile returned error: %v", err)
	}

	if created.CompanyID == nil || *created.CompanyID != "company-1" {
		t.Fatalf("expected company to be set, got %+v", created.CompanyID)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.userID != "owner-1" || call.kind != notification.KindVerificationRequest {
		t.Fatalf("unexpected notification: %+v", call)
	}
}

func TestService_CreateProfile_UnknownCompany(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil, nil)

	in := validInput()
	companyID := "company-404"
	in.CompanyID = &companyID

	_, err := svc.CreateProfile(context.Background(), "user-1", in)
	if !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
}

func TestService_CreateProfile_InvalidLanguage(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil, nil)

	in := validInput()
	in.Languages = []language.Skill{{Language: "Spanish", Proficiency: "excellent"}}

	_, err := svc.CreateProfile(context.Background(), "user-1", in)
	if !errors.Is(err, ErrInvalidLanguage) {
		t.Fatalf("expected ErrInvalidLanguage, got %v", err)
	}
}

func TestService_UpdateProfile_CompanyChangeResetsVerification(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	oldCompany := "company-1"
	seedEmployee(repo, "emp-1", "user-1", &oldCompany, true)
	repo.companies["company-2"] = &CompanyRef{ID: "company-2", UserID: "owner-2", Name: "Globex"}
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil, nil)

	in := validInput()
	newCompany := "company-2"
	in.CompanyID = &newCompany

	updated, err := svc.UpdateProfile(context.Background(), "user-1", in)
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}

	if updated.CompanyID == nil || *updated.CompanyID != "company-2" {
		t.Fatalf("expected new company, got %+v", updated.CompanyID)
	}
	if updated.Verified {
		t.Fatal("expected verification to reset on company change")
	}
	if len(notifier.calls) != 1 || notifier.calls[0].userID != "owner-2" {
		t.Fatalf("expected verification request to new owner, got %+v", notifier.calls)
	}
}

func TestService_UpdateProfile_SameCompanyKeepsVerification(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	companyID := "company-1"
	seedEmployee(repo, "emp-1", "user-1", &companyID, true)
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil, nil)

	in := validInput()
	same := "company-1"
	in.CompanyID = &same

	updated, err := svc.UpdateProfile(context.Background(), "user-1", in)
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}

	if !updated.Verified {
		t.Fatal("expected verification to survive when company is unchanged")
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("expected no notifications, got %+v", notifier.calls)
	}
}

func TestService_DeleteProfile_CascadeOrder(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	seedEmployee(repo, "emp-1", "user-1", nil, false)
	svc := NewService(repo, nil, nil, nil)

	if err := svc.DeleteProfile(context.Background(), "user-1"); err != nil {
		t.Fatalf("DeleteProfile returned error: %v", err)
	}

	want := []string{"delete-exchanges:emp-1", "delete-positions:emp-1", "delete-notifications:user-1", "delete-employee"}
	if len(repo.cascade) != len(want) {
		t.Fatalf("expected %d cascade steps, got %v", len(want), repo.cascade)
	}
	for i, step := range want {
		if repo.cascade[i] != step {
			t.Fatalf("expected step %d to be %s, got %v", i, step, repo.cascade)
		}
	}
}

func TestService_RequestVerification(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	seedEmployee(repo, "emp-1", "user-1", nil, false)
	repo.companies["company-1"] = &CompanyRef{ID: "company-1", UserID: "owner-1", Name: "Acme"}
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil, nil)

	if err := svc.RequestVerification(context.Background(), "user-1", "company-1"); err != nil {
		t.Fatalf("RequestVerification returned error: %v", err)
	}

	stored := repo.employees["emp-1"]
	if stored.CompanyID == nil || *stored.CompanyID != "company-1" || stored.Verified {
		t.Fatalf("expected pending association, got %+v", stored)
	}
	if len(notifier.calls) != 1 || notifier.calls[0].kind != notification.KindVerificationRequest {
		t.Fatalf("unexpected notifications: %+v", notifier.calls)
	}
}

func TestService_LeaveCompany(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	companyID := "company-1"
	seedEmployee(repo, "emp-1", "user-1", &companyID, true)
	svc := NewService(repo, nil, nil, nil)

	if err := svc.LeaveCompany(context.Background(), "user-1"); err != nil {
		t.Fatalf("LeaveCompany returned error: %v", err)
	}

	stored := repo.employees["emp-1"]
	if stored.CompanyID != nil || stored.Verified {
		t.Fatalf("expected association cleared, got %+v", stored)
	}
	found := false
	for _, step := range repo.cascade {
		if step == "deactivate-positions:emp-1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected positions to be deactivated, cascade: %v", repo.cascade)
	}
}

func TestService_LeaveCompany_NotEmployed(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	seedEmployee(repo, "emp-1", "user-1", nil, false)
	svc := NewService(repo, nil, nil, nil)

	err := svc.LeaveCompany(context.Background(), "user-1")
	if !errors.Is(err, ErrNotEmployed) {
		t.Fatalf("expected ErrNotEmployed, got %v", err)
	}
}
