package employee

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/jobswap-backend/internal/core/language"
	"github.com/ogurasousui/jobswap-backend/internal/core/notification"
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

// Notifier は通知レコードの記録の抽象です。
type Notifier interface {
	Notify(ctx context.Context, userID string, kind notification.Kind, title, body, relatedID string) error
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, notification.Kind, string, string, string) error {
	return nil
}

const maxBioLength = 2000

// Service は社員プロフィールのユースケースをまとめます。
type Service struct {
	repo     Repository
	notifier Notifier
	clock    Clock
	tx       TransactionManager
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateProfile(ctx context.Context, userID string, in ProfileInput) (*Employee, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*Employee, error)
	DeleteProfile(ctx context.Context, userID string) error
	GetMine(ctx context.Context, userID string) (*Employee, error)
	GetByID(ctx context.Context, id string) (*Employee, error)
	ListAll(ctx context.Context) ([]*Employee, error)
	RequestVerification(ctx context.Context, userID, companyID string) error
	LeaveCompany(ctx context.Context, userID string) error
}

// NewService は Service を生成します。
func NewService(repo Repository, notifier Notifier, clock Clock, tx TransactionManager) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, notifier: notifier, clock: clock, tx: tx}
}

// ProfileInput は社員プロフィールの作成・更新時の入力です。
type ProfileInput struct {
	FirstName    string
	LastName     string
	JobTitle     string
	Bio          string
	YearsAtJob   int
	Skills       []string
	Languages    []language.Skill
	Country      string
	City         string
	CompanyID    *string
	OpenToOffers bool
}

// CreateProfile は社員プロフィールを作成します。1 ユーザー 1 件までです。
// 企業を指定した場合は在籍確認待ちの状態になり、企業オーナーに通知が
// 届きます。
func (s *Service) CreateProfile(ctx context.Context, userID string, in ProfileInput) (*Employee, error) {
	normalized, err := normalizeProfileInput(in)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	e := &Employee{
		ID:           uuid.NewString(),
		UserID:       userID,
		FirstName:    normalized.FirstName,
		LastName:     normalized.LastName,
		JobTitle:     normalized.JobTitle,
		Bio:          normalized.Bio,
		YearsAtJob:   normalized.YearsAtJob,
		Skills:       normalized.Skills,
		Languages:    normalized.Languages,
		Country:      normalized.Country,
		City:         normalized.City,
		CompanyID:    normalized.CompanyID,
		Verified:     false,
		OpenToOffers: normalized.OpenToOffers,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if e.CompanyID != nil {
			if err := s.notifyVerificationRequest(txCtx, e); err != nil {
				return err
			}
		}
		return s.repo.Create(txCtx, e)
	}); err != nil {
		return nil, err
	}

	return e, nil
}

// UpdateProfile は自分の社員プロフィールを更新します。所属企業が変わった
// 場合は在籍確認が取り消され、新しい企業に改めて確認を求めます。
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*Employee, error) {
	normalized, err := normalizeProfileInput(in)
	if err != nil {
		return nil, err
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByUser(txCtx, userID)
		if err != nil {
			return err
		}

		companyChanged := !sameCompany(existing.CompanyID, normalized.CompanyID)

		existing.FirstName = normalized.FirstName
		existing.LastName = normalized.LastName
		existing.JobTitle = normalized.JobTitle
		existing.Bio = normalized.Bio
		existing.YearsAtJob = normalized.YearsAtJob
		existing.Skills = normalized.Skills
		existing.Languages = normalized.Languages
		existing.Country = normalized.Country
		existing.City = normalized.City
		existing.OpenToOffers = normalized.OpenToOffers
		existing.UpdatedAt = s.clock.Now()

		if companyChanged {
			existing.CompanyID = normalized.CompanyID
			existing.Verified = false
			if existing.CompanyID != nil {
				if err := s.notifyVerificationRequest(txCtx, existing); err != nil {
					return err
				}
			}
		}

		if err := s.repo.Update(txCtx, existing); err != nil {
			return err
		}

		updated = existing
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteProfile は社員プロフィールを削除します。本人が当事者の交換申請、
// 本人の求人ポジション、本人宛の通知も同一トランザクションで削除されます。
func (s *Service) DeleteProfile(ctx context.Context, userID string) error {
	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		e, err := s.repo.FindByUser(txCtx, userID)
		if err != nil {
			return err
		}

		if err := s.repo.DeleteExchangesByEmployee(txCtx, e.ID); err != nil {
			return fmt.Errorf("cascade exchanges: %w", err)
		}
		if err := s.repo.DeletePositionsByEmployee(txCtx, e.ID); err != nil {
			return fmt.Errorf("cascade positions: %w", err)
		}
		if err := s.repo.DeleteNotificationsByUser(txCtx, e.UserID); err != nil {
			return fmt.Errorf("cascade notifications: %w", err)
		}
		return s.repo.Delete(txCtx, e.ID)
	})
}

// GetMine は自分の社員プロフィールを取得します。
func (s *Service) GetMine(ctx context.Context, userID string) (*Employee, error) {
	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByUser(txCtx, userID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// GetByID は社員プロフィールを ID で取得します。
func (s *Service) GetByID(ctx context.Context, id string) (*Employee, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListAll は全社員を返します。
func (s *Service) ListAll(ctx context.Context) ([]*Employee, error) {
	var result []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		list, err := s.repo.ListAll(txCtx)
		if err != nil {
			return err
		}
		result = list
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// RequestVerification は指定企業への在籍確認を申請します。既存の確認状態は
// 取り消されます。
func (s *Service) RequestVerification(ctx context.Context, userID, companyID string) error {
	if strings.TrimSpace(companyID) == "" {
		return ErrCompanyNotFound
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		e, err := s.repo.FindByUser(txCtx, userID)
		if err != nil {
			return err
		}

		e.CompanyID = &companyID
		e.Verified = false
		e.UpdatedAt = s.clock.Now()

		if err := s.notifyVerificationRequest(txCtx, e); err != nil {
			return err
		}
		return s.repo.Update(txCtx, e)
	})
}

// LeaveCompany は所属企業との関連付けを解除します。本人の有効な求人
// ポジションも無効化されます。
func (s *Service) LeaveCompany(ctx context.Context, userID string) error {
	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		e, err := s.repo.FindByUser(txCtx, userID)
		if err != nil {
			return err
		}
		if e.CompanyID == nil {
			return ErrNotEmployed
		}

		e.CompanyID = nil
		e.Verified = false
		e.UpdatedAt = s.clock.Now()

		if err := s.repo.DeactivatePositionsByEmployee(txCtx, e.ID); err != nil {
			return err
		}
		return s.repo.Update(txCtx, e)
	})
}

func (s *Service) notifyVerificationRequest(ctx context.Context, e *Employee) error {
	c, err := s.repo.CompanyByID(ctx, *e.CompanyID)
	if err != nil {
		return err
	}

	return s.notifier.Notify(ctx, c.UserID, notification.KindVerificationRequest,
		"Verification Request",
		fmt.Sprintf("%s %s has requested employment verification at %s", e.FirstName, e.LastName, c.Name),
		e.ID)
}

func sameCompany(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func normalizeProfileInput(in ProfileInput) (ProfileInput, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	if in.FirstName == "" {
		return ProfileInput{}, ErrInvalidFirstName
	}

	in.LastName = strings.TrimSpace(in.LastName)
	if in.LastName == "" {
		return ProfileInput{}, ErrInvalidLastName
	}

	in.JobTitle = strings.TrimSpace(in.JobTitle)
	if in.JobTitle == "" {
		return ProfileInput{}, ErrInvalidJobTitle
	}

	in.Bio = strings.TrimSpace(in.Bio)
	if len(in.Bio) > maxBioLength {
		return ProfileInput{}, ErrInvalidBio
	}

	skills := make([]string, 0, len(in.Skills))
	for _, skill := range in.Skills {
		skill = strings.TrimSpace(skill)
		if skill != "" {
			skills = append(skills, skill)
		}
	}
	in.Skills = skills

	for i, skill := range in.Languages {
		in.Languages[i].Language = strings.TrimSpace(skill.Language)
		if in.Languages[i].Language == "" || !skill.Proficiency.Valid() {
			return ProfileInput{}, ErrInvalidLanguage
		}
	}

	in.Country = strings.TrimSpace(in.Country)
	in.City = strings.TrimSpace(in.City)

	if in.CompanyID != nil {
		companyID := strings.TrimSpace(*in.CompanyID)
		if companyID == "" {
			in.CompanyID = nil
		} else {
			in.CompanyID = &companyID
		}
	}

	return in, nil
}
