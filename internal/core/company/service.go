package company

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
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

// Notifier は通知レコードの記録の抽象です。状態遷移と同一トランザクション
// 内で呼び出されます。
type Notifier interface {
	Notify(ctx context.Context, userID string, kind notification.Kind, title, body, relatedID string) error
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, notification.Kind, string, string, string) error {
	return nil
}

const (
	maxNameLength        = 200
	maxDescriptionLength = 3000
)

// Service は企業プロフィールと社員在籍確認のユースケースをまとめます。
type Service struct {
	repo     Repository
	notifier Notifier
	clock    Clock
	tx       TransactionManager
}

// UseCase は企業ユースケースの公開インターフェースです。
type UseCase interface {
	CreateProfile(ctx context.Context, userID string, in ProfileInput) (*Company, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*Company, error)
	DeleteProfile(ctx context.Context, userID string) error
	GetMine(ctx context.Context, userID string) (*Company, error)
	GetByID(ctx context.Context, id string) (*Company, error)
	ListAll(ctx context.Context) ([]*Company, error)
	ListEmployees(ctx context.Context, userID string) ([]*EmployeeRef, error)
	ListVerificationRequests(ctx context.Context, userID string) ([]*EmployeeRef, error)
	VerifyEmployee(ctx context.Context, userID, employeeID string) error
	RejectEmployee(ctx context.Context, userID, employeeID string) error
	RemoveEmployee(ctx context.Context, userID, employeeID string) error
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

// ProfileInput は企業プロフィールの作成・更新時の入力です。
type ProfileInput struct {
	Name         string
	Industry     string
	Size         string
	Description  string
	Website      *string
	Headquarters string
	Country      string
}

// CreateProfile は企業プロフィールを作成します。1 ユーザー 1 件までです。
func (s *Service) CreateProfile(ctx context.Context, userID string, in ProfileInput) (*Company, error) {
	normalized, err := normalizeProfileInput(in)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	c := &Company{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         normalized.Name,
		Industry:     normalized.Industry,
		Size:         normalized.Size,
		Description:  normalized.Description,
		Website:      normalized.Website,
		Headquarters: normalized.Headquarters,
		Country:      normalized.Country,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, c)
	}); err != nil {
		return nil, err
	}

	return c, nil
}

// UpdateProfile は自分の企業プロフィールを更新します。
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*Company, error) {
	normalized, err := normalizeProfileInput(in)
	if err != nil {
		return nil, err
	}

	var updated *Company
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByUser(txCtx, userID)
		if err != nil {
			return err
		}

		existing.Name = normalized.Name
		existing.Industry = normalized.Industry
		existing.Size = normalized.Size
		existing.Description = normalized.Description
		existing.Website = normalized.Website
		existing.Headquarters = normalized.Headquarters
		existing.Country = normalized.Country
		existing.UpdatedAt = s.clock.Now()

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

// DeleteProfile は企業プロフィールを削除します。関連データは cascadeDelete
// の方針に従い、同一トランザクション内で整理されます。
func (s *Service) DeleteProfile(ctx context.Context, userID string) error {
	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		c, err := s.repo.FindByUser(txCtx, userID)
		if err != nil {
			return err
		}
		return s.cascadeDelete(txCtx, c)
	})
}

// cascadeDelete は企業削除時のカスケード方針を列挙します。
// 社員: 関連解除と在籍確認の取り消し(削除はしない)。
// 求人ポジション: 削除。
// 交換申請: 当事者いずれかが当企業のものを削除。
// 通知: 企業オーナーのユーザー宛を削除。
func (s *Service) cascadeDelete(ctx context.Context, c *Company) error {
	if err := s.repo.DeleteExchangesByCompany(ctx, c.ID); err != nil {
		return fmt.Errorf("cascade exchanges: %w", err)
	}
	if err := s.repo.DeletePositionsByCompany(ctx, c.ID); err != nil {
		return fmt.Errorf("cascade positions: %w", err)
	}
	if err := s.repo.UnlinkEmployeesByCompany(ctx, c.ID); err != nil {
		return fmt.Errorf("cascade employees: %w", err)
	}
	if err := s.repo.DeleteNotificationsByUser(ctx, c.UserID); err != nil {
		return fmt.Errorf("cascade notifications: %w", err)
	}
	return s.repo.Delete(ctx, c.ID)
}

// GetMine は自分の企業プロフィールを取得します。
func (s *Service) GetMine(ctx context.Context, userID string) (*Company, error) {
	var result *Company
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

// GetByID は企業プロフィールを ID で取得します。
func (s *Service) GetByID(ctx context.Context, id string) (*Company, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	var result *Company
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

// ListAll は全企業を返します。
func (s *Service) ListAll(ctx context.Context) ([]*Company, error) {
	var result []*Company
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

// ListEmployees は在籍確認済みの社員を返します。
func (s *Service) ListEmployees(ctx context.Context, userID string) ([]*EmployeeRef, error) {
	return s.listEmployeesByVerified(ctx, userID, true)
}

// ListVerificationRequests は在籍確認待ちの社員を返します。
func (s *Service) ListVerificationRequests(ctx context.Context, userID string) ([]*EmployeeRef, error) {
	return s.listEmployeesByVerified(ctx, userID, false)
}

func (s *Service) listEmployeesByVerified(ctx context.Context, userID string, verified bool) ([]*EmployeeRef, error) {
	var result []*EmployeeRef
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		c, err := s.repo.FindByUser(txCtx, userID)
		if err != nil {
			return err
		}
		list, err := s.repo.ListEmployees(txCtx, c.ID, verified)
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

// VerifyEmployee は在籍確認を承認し、社員に通知します。
func (s *Service) VerifyEmployee(ctx context.Context, userID, employeeID string) error {
	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		c, emp, err := s.resolveMember(txCtx, userID, employeeID)
		if err != nil {
			return err
		}

		if err := s.repo.SetEmployeeVerified(txCtx, emp.ID, true); err != nil {
			return err
		}

		return s.notifier.Notify(txCtx, emp.UserID, notification.KindVerificationApproved,
			"Verification Approved",
			fmt.Sprintf("Your employment with %s has been verified", c.Name),
			c.ID)
	})
}

// RejectEmployee は在籍確認の申請を却下し、関連付けを解除します。
func (s *Service) RejectEmployee(ctx context.Context, userID, employeeID string) error {
	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		c, emp, err := s.resolveMember(txCtx, userID, employeeID)
		if err != nil {
			return err
		}

		if err := s.repo.UnlinkEmployee(txCtx, emp.ID); err != nil {
			return err
		}

		return s.notifier.Notify(txCtx, emp.UserID, notification.KindVerificationRejected,
			"Verification Rejected",
			fmt.Sprintf("Your verification request to %s has been rejected", c.Name),
			c.ID)
	})
}

// RemoveEmployee は社員を企業から外します。社員の有効な求人ポジションも
// 同時に無効化されます。
func (s *Service) RemoveEmployee(ctx context.Context, userID, employeeID string) error {
	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		c, emp, err := s.resolveMember(txCtx, userID, employeeID)
		if err != nil {
			return err
		}

		if err := s.repo.UnlinkEmployee(txCtx, emp.ID); err != nil {
			return err
		}
		if err := s.repo.DeactivateEmployeePositions(txCtx, emp.ID); err != nil {
			return err
		}

		return s.notifier.Notify(txCtx, emp.UserID, notification.KindEmployeeRemoved,
			"Removed from Company",
			fmt.Sprintf("You have been removed from %s", c.Name),
			c.ID)
	})
}

func (s *Service) resolveMember(ctx context.Context, userID, employeeID string) (*Company, *EmployeeRef, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, nil, ErrEmployeeNotFound
	}

	c, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	emp, err := s.repo.EmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, nil, err
	}
	if emp.CompanyID != c.ID {
		return nil, nil, ErrEmployeeNotMember
	}

	return c, emp, nil
}

func normalizeProfileInput(in ProfileInput) (ProfileInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || len(in.Name) > maxNameLength {
		return ProfileInput{}, ErrInvalidName
	}

	in.Industry = strings.TrimSpace(in.Industry)
	if in.Industry == "" {
		return ProfileInput{}, ErrInvalidIndustry
	}

	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" || len(in.Description) > maxDescriptionLength {
		return ProfileInput{}, ErrInvalidDescription
	}

	in.Headquarters = strings.TrimSpace(in.Headquarters)
	if in.Headquarters == "" {
		return ProfileInput{}, ErrInvalidHeadquarters
	}

	in.Country = strings.TrimSpace(in.Country)
	if in.Country == "" {
		return ProfileInput{}, ErrInvalidCountry
	}

	in.Size = strings.TrimSpace(in.Size)
	if in.Website != nil {
		website := strings.TrimSpace(*in.Website)
		if website == "" {
			in.Website = nil
		} else {
			in.Website = &website
		}
	}

	return in, nil
}
