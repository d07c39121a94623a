package identity

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// TokenIssuer はアクセストークンの発行の抽象です。
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

const minPasswordLength = 8

// Service は認証とアカウント種別に関するユースケースをまとめます。
type Service struct {
	repo   Repository
	tokens TokenIssuer
	clock  Clock
	tx     TransactionManager
}

// UseCase は認証ユースケースの公開インターフェースです。
type UseCase interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, in LoginInput) (*Session, error)
	SetRole(ctx context.Context, userID string, role Role) error
	GetRole(ctx context.Context, userID string) (*Account, error)
	DeleteRole(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*User, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, tokens TokenIssuer, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, tokens: tokens, clock: clock, tx: tx}
}

// RegisterInput は登録時の入力です。
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// LoginInput はログイン時の入力です。
type LoginInput struct {
	Email    string
	Password string
}

// Session は発行済みトークンとユーザー情報の組です。
type Session struct {
	Token  string
	UserID string
	Email  string
	Name   string
}

// Register は新しいユーザーを作成しトークンを発行します。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	if len(strings.TrimSpace(in.Password)) < minPasswordLength {
		return nil, ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.CreateUser(txCtx, u)
	}); err != nil {
		return nil, err
	}

	return s.issueSession(u)
}

// Login は資格情報を検証しトークンを発行します。
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if strings.TrimSpace(in.Password) == "" {
		return nil, ErrInvalidCredentials
	}

	var u *User
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindUserByEmail(txCtx, email)
		if err != nil {
			return err
		}
		u = found
		return nil
	}); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(u)
}

// SetRole は利用者種別を upsert します。既存設定は上書きされます。
func (s *Service) SetRole(ctx context.Context, userID string, role Role) error {
	if !isValidRole(role) {
		return ErrInvalidRole
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.UpsertAccount(txCtx, &Account{
			UserID:    userID,
			Role:      role,
			CreatedAt: s.clock.Now(),
		})
	})
}

// GetRole は利用者種別を返します。
func (s *Service) GetRole(ctx context.Context, userID string) (*Account, error) {
	var account *Account
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindAccountByUser(txCtx, userID)
		if err != nil {
			return err
		}
		account = found
		return nil
	}); err != nil {
		return nil, err
	}

	return account, nil
}

// DeleteRole は利用者種別の設定を削除します。
func (s *Service) DeleteRole(ctx context.Context, userID string) error {
	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.DeleteAccount(txCtx, userID)
	})
}

// GetUser はユーザーを取得します。
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	var u *User
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindUserByID(txCtx, userID)
		if err != nil {
			return err
		}
		u = found
		return nil
	}); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) issueSession(u *User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, UserID: u.ID, Email: u.Email, Name: u.Name}, nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(strings.ToLower(raw))
	if trimmed == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", ErrInvalidEmail
	}
	return trimmed, nil
}

func isValidRole(role Role) bool {
	switch role {
	case RoleCompany, RoleEmployee:
		return true
	default:
		return false
	}
}
