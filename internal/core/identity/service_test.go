package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeIdentityRepo struct {
	users    map[string]*User
	accounts map[string]*Account
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{
		users:    make(map[string]*User),
		accounts: make(map[string]*Account),
	}
}

func (r *fakeIdentityRepo) CreateUser(_ context.Context, u *User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrEmailAlreadyExists
		}
	}
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeIdentityRepo) FindUserByID(_ context.Context, id string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeIdentityRepo) FindUserByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeIdentityRepo) UpsertAccount(_ context.Context, a *Account) error {
	clone := *a
	r.accounts[a.UserID] = &clone
	return nil
}

func (r *fakeIdentityRepo) FindAccountByUser(_ context.Context, userID string) (*Account, error) {
	a, ok := r.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *fakeIdentityRepo) DeleteAccount(_ context.Context, userID string) error {
	if _, ok := r.accounts[userID]; !ok {
		return ErrAccountNotFound
	}
	delete(r.accounts, userID)
	return nil
}

type fakeTokenIssuer struct {
	calls int
}

func (f *fakeTokenIssuer) Issue(userID, _ string) (string, error) {
	f.calls++
	return "token-for-" + userID, nil
}

func TestService_Register_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeIdentityRepo()
	issuer := &fakeTokenIssuer{}
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(repo, issuer, &stubClock{now: now}, nil)

	session, err := svc.Register(context.Background(), RegisterInput{
		Email:    " Taro@Example.COM ",
		Name:     "  Taro Yamada  ",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if session.Email != "taro@example.com" {
		t.Fatalf("expected normalized email, got %q", session.Email)
	}
	if session.Name != "Taro Yamada" {
		t.Fatalf("expected trimmed name, got %q", session.Name)
	}
	if session.Token != "token-for-"+session.UserID {
		t.Fatalf("expected issued token, got %q", session.Token)
	}

	stored := repo.users[session.UserID]
	if stored == nil {
		t.Fatal("expected user persisted")
	}
	if stored.PasswordHash == "correct horse" {
		t.Fatal("password must be stored hashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")) != nil {
		t.Fatal("stored hash must verify against the original password")
	}
	if !stored.CreatedAt.Equal(now) {
		t.Fatal("expected created_at to use clock now")
	}
}

func TestService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeIdentityRepo(), &fakeTokenIssuer{}, nil, nil)

	cases := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"bad email", RegisterInput{Email: "not-an-email", Name: "A", Password: "longenough"}, ErrInvalidEmail},
		{"empty name", RegisterInput{Email: "a@example.com", Name: "  ", Password: "longenough"}, ErrInvalidName},
		{"short password", RegisterInput{Email: "a@example.com", Name: "A", Password: "short"}, ErrInvalidPassword},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(context.Background(), tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeIdentityRepo()
	svc := NewService(repo, &fakeTokenIssuer{}, nil, nil)

	if _, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Name: "A", Password: "longenough"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Register(context.Background(), RegisterInput{Email: "A@Example.com", Name: "B", Password: "longenough"})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	repo := newFakeIdentityRepo()
	svc := NewService(repo, &fakeTokenIssuer{}, nil, nil)

	if _, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Name: "A", Password: "longenough"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session, err := svc.Login(context.Background(), LoginInput{Email: "A@EXAMPLE.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.Email != "a@example.com" {
		t.Fatalf("unexpected session: %+v", session)
	}

	if _, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "longenough"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestService_SetRole_Upsert(t *testing.T) {
	t.Parallel()

	repo := newFakeIdentityRepo()
	svc := NewService(repo, &fakeTokenIssuer{}, nil, nil)

	if err := svc.SetRole(context.Background(), "user-1", RoleEmployee); err != nil {
		t.Fatalf("SetRole returned error: %v", err)
	}
	if err := svc.SetRole(context.Background(), "user-1", RoleCompany); err != nil {
		t.Fatalf("SetRole returned error: %v", err)
	}

	account, err := svc.GetRole(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetRole returned error: %v", err)
	}
	if account.Role != RoleCompany {
		t.Fatalf("expected last write to win, got %s", account.Role)
	}

	if err := svc.SetRole(context.Background(), "user-1", Role("admin")); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestService_DeleteRole(t *testing.T) {
	t.Parallel()

	repo := newFakeIdentityRepo()
	svc := NewService(repo, &fakeTokenIssuer{}, nil, nil)

	if err := svc.SetRole(context.Background(), "user-1", RoleEmployee); err != nil {
		t.Fatalf("SetRole returned error: %v", err)
	}
	if err := svc.DeleteRole(context.Background(), "user-1"); err != nil {
		t.Fatalf("DeleteRole returned error: %v", err)
	}

	if _, err := svc.GetRole(context.Background(), "user-1"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
