package position

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/jobswap-backend/internal/core/language"
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

const (
	maxTitleLength       = 200
	maxDescriptionLength = 3000
)

// Service は求人ポジションのユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase はポジションユースケースの公開インターフェースです。
type UseCase interface {
	Create(ctx context.Context, userID string, in Input) (*Position, error)
	Update(ctx context.Context, userID, positionID string, in Input) (*Position, error)
	Delete(ctx context.Context, userID, positionID string) error
	SetActive(ctx context.Context, userID, positionID string, active bool) (*Position, error)
	GetByID(ctx context.Context, id string) (*Position, error)
	ListMine(ctx context.Context, userID string) ([]*Position, error)
	ListMyCompany(ctx context.Context, userID string) ([]*Position, error)
	ListOpportunities(ctx context.Context, userID string) ([]*Opportunity, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// Input はポジションの作成・更新時の入力です。EmployeeID は配属する
// 自社の社員です。
type Input struct {
	EmployeeID        string
	Title             string
	Description       string
	Requirements      []string
	Benefits          []string
	RequiredLanguages []language.Skill
	Country           string
	City              string
}

// Create はポジションを公開します。企業オーナーが在籍確認済みの自社社員に
// 紐付けて作成し、有効なポジションは 1 社員につき 1 件までです。
func (s *Service) Create(ctx context.Context, userID string, in Input) (*Position, error) {
	normalized, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	var created *Position
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		c, err := s.repo.CompanyByUser(txCtx, userID)
		if err != nil {
			return err
		}

		emp, err := s.requireCompanyEmployee(txCtx, c.ID, normalized.EmployeeID)
		if err != nil {
			return err
		}

		if _, err := s.repo.ActiveByEmployee(txCtx, emp.ID); err == nil {
			return ErrActivePositionExists
		} else if !errors.Is(err, ErrPositionNotFound) {
			return err
		}

		now := s.clock.Now()
		p := &Position{
			ID:                uuid.NewString(),
			EmployeeID:        emp.ID,
			CompanyID:         c.ID,
			Title:             normalized.Title,
			Description:       normalized.Description,
			Requirements:      normalized.Requirements,
			Benefits:          normalized.Benefits,
			RequiredLanguages: normalized.RequiredLanguages,
			Country:           normalized.Country,
			City:              normalized.City,
			Active:            true,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		if err := s.repo.Create(txCtx, p); err != nil {
			return err
		}

		created = p
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// Update は自社のポジションを更新します。配属社員を変更する場合は新しい
// 社員についても在籍確認と有効ポジション 1 件の制約を検査します。
func (s *Service) Update(ctx context.Context, userID, positionID string, in Input) (*Position, error) {
	normalized, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	var updated *Position
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		c, p, err := s.requireCompanyPosition(txCtx, userID, positionID)
		if err != nil {
			return err
		}

		if normalized.EmployeeID != p.EmployeeID {
			emp, err := s.requireCompanyEmployee(txCtx, c.ID, normalized.EmployeeID)
			if err != nil {
				return err
			}
			if p.Active {
				if existing, err := s.repo.ActiveByEmployee(txCtx, emp.ID); err == nil && existing.ID != p.ID {
					return ErrActivePositionExists
				} else if err != nil && !errors.Is(err, ErrPositionNotFound) {
					return err
				}
			}
			p.EmployeeID = emp.ID
		}

		p.Title = normalized.Title
		p.Description = normalized.Description
		p.Requirements = normalized.Requirements
		p.Benefits = normalized.Benefits
		p.RequiredLanguages = normalized.RequiredLanguages
		p.Country = normalized.Country
		p.City = normalized.City
		p.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(txCtx, p); err != nil {
			return err
		}

		updated = p
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete は自社のポジションを削除します。
func (s *Service) Delete(ctx context.Context, userID, positionID string) error {
	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		_, p, err := s.requireCompanyPosition(txCtx, userID, positionID)
		if err != nil {
			return err
		}
		return s.repo.Delete(txCtx, p.ID)
	})
}

// SetActive はポジションの公開状態を切り替えます。有効化する場合、既に
// 別の有効なポジションがあるとエラーになります。
func (s *Service) SetActive(ctx context.Context, userID, positionID string, active bool) (*Position, error) {
	var updated *Position
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		_, p, err := s.requireCompanyPosition(txCtx, userID, positionID)
		if err != nil {
			return err
		}
		if p.Active == active {
			updated = p
			return nil
		}

		if active {
			existing, err := s.repo.ActiveByEmployee(txCtx, p.EmployeeID)
			if err == nil && existing.ID != p.ID {
				return ErrActivePositionExists
			}
			if err != nil && !errors.Is(err, ErrPositionNotFound) {
				return err
			}
		}

		p.Active = active
		p.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(txCtx, p); err != nil {
			return err
		}

		updated = p
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// GetByID はポジションを ID で取得します。
func (s *Service) GetByID(ctx context.Context, id string) (*Position, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	var result *Position
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

// ListMine は自分のポジションを返します。
func (s *Service) ListMine(ctx context.Context, userID string) ([]*Position, error) {
	var result []*Position
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, err := s.repo.EmployeeByUser(txCtx, userID)
		if err != nil {
			return err
		}
		list, err := s.repo.ListByEmployee(txCtx, emp.ID)
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

// ListMyCompany は自社の社員が公開しているポジションを返します。企業
// オーナーとして呼び出します。
func (s *Service) ListMyCompany(ctx context.Context, userID string) ([]*Position, error) {
	var result []*Position
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		c, err := s.repo.CompanyByUser(txCtx, userID)
		if err != nil {
			return err
		}
		list, err := s.repo.ListByCompany(txCtx, c.ID)
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

// ListOpportunities は閲覧中の社員から見た交換候補を返します。自分と自社の
// ポジション、および未解決の交換で既に関与しているポジションは除外され、
// 各候補には言語要件との適合が付きます。
func (s *Service) ListOpportunities(ctx context.Context, userID string) ([]*Opportunity, error) {
	var result []*Opportunity
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, err := s.repo.EmployeeByUser(txCtx, userID)
		if err != nil {
			return err
		}

		companyID := ""
		if emp.CompanyID != nil {
			companyID = *emp.CompanyID
		}

		list, err := s.repo.ListActiveExcluding(txCtx, emp.ID, companyID)
		if err != nil {
			return err
		}

		opportunities := make([]*Opportunity, 0, len(list))
		for _, p := range list {
			opportunities = append(opportunities, &Opportunity{
				Position:   p,
				Compatible: language.Compatible(emp.Languages, p.RequiredLanguages),
			})
		}
		result = opportunities
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) requireCompanyEmployee(ctx context.Context, companyID, employeeID string) (*EmployeeRef, error) {
	emp, err := s.repo.EmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp.CompanyID == nil {
		return nil, ErrNotEmployed
	}
	if *emp.CompanyID != companyID {
		return nil, ErrNotMember
	}
	if !emp.Verified {
		return nil, ErrNotVerified
	}
	return emp, nil
}

func (s *Service) requireCompanyPosition(ctx context.Context, userID, positionID string) (*CompanyRef, *Position, error) {
	if strings.TrimSpace(positionID) == "" {
		return nil, nil, ErrInvalidID
	}

	c, err := s.repo.CompanyByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.repo.FindByID(ctx, positionID)
	if err != nil {
		return nil, nil, err
	}
	if p.CompanyID != c.ID {
		return nil, nil, ErrNotOwner
	}

	return c, p, nil
}

func normalizeInput(in Input) (Input, error) {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	if in.EmployeeID == "" {
		return Input{}, ErrInvalidEmployee
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || len(in.Title) > maxTitleLength {
		return Input{}, ErrInvalidTitle
	}

	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" || len(in.Description) > maxDescriptionLength {
		return Input{}, ErrInvalidDescription
	}

	in.Requirements = trimmed(in.Requirements)
	in.Benefits = trimmed(in.Benefits)

	for i, req := range in.RequiredLanguages {
		in.RequiredLanguages[i].Language = strings.TrimSpace(req.Language)
		if in.RequiredLanguages[i].Language == "" || !req.Proficiency.Valid() {
			return Input{}, ErrInvalidLanguage
		}
	}

	in.Country = strings.TrimSpace(in.Country)
	in.City = strings.TrimSpace(in.City)

	return in, nil
}

func trimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
