package notification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
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

// Service は通知に関するユースケースをまとめます。Notify は他ドメインの
// エンジンから同一トランザクション内で呼ばれる記録用の入口です。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は通知ユースケースの公開インターフェースです。
type UseCase interface {
	Notify(ctx context.Context, userID string, kind Kind, title, body, relatedID string) error
	ListMine(ctx context.Context, userID string) ([]*Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
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

// Notify は通知レコードを 1 件挿入します。呼び出し元のトランザクションが
// コンテキストに存在する場合はそれに参加します。
func (s *Service) Notify(ctx context.Context, userID string, kind Kind, title, body, relatedID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUserID
	}

	return s.repo.Create(ctx, &Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		RelatedID: relatedID,
		Read:      false,
		CreatedAt: s.clock.Now(),
	})
}

// ListMine は呼び出し元宛の通知を新しい順に返します。
func (s *Service) ListMine(ctx context.Context, userID string) ([]*Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}

	var result []*Notification
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		list, err := s.repo.ListByUser(txCtx, userID)
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

// CountUnread は未読件数を返します。
func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrInvalidUserID
	}

	var count int
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		c, err := s.repo.CountUnread(txCtx, userID)
		if err != nil {
			return err
		}
		count = c
		return nil
	}); err != nil {
		return 0, err
	}

	return count, nil
}

// MarkRead は自分宛の通知を既読にします。
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUserID
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		n, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if n.UserID != userID {
			return ErrNotRecipient
		}
		if n.Read {
			return nil
		}
		return s.repo.MarkRead(txCtx, id)
	})
}

// MarkAllRead は自分宛の全通知を既読にします。
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUserID
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.MarkAllRead(txCtx, userID)
	})
}
