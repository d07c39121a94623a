package chat

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

// Notifier は通知レコードの記録の抽象です。
type Notifier interface {
	Notify(ctx context.Context, userID string, kind notification.Kind, title, body, relatedID string) error
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, notification.Kind, string, string, string) error {
	return nil
}

const maxContentLength = 4000

// Service はチャンネルとメッセージのユースケースをまとめます。
type Service struct {
	repo     Repository
	notifier Notifier
	clock    Clock
	tx       TransactionManager
}

// UseCase はチャットユースケースの公開インターフェースです。
type UseCase interface {
	CreateChannel(ctx context.Context, exchangeID string, participantUserIDs []string) error
	ListMine(ctx context.Context, userID string) ([]*Channel, error)
	Messages(ctx context.Context, userID, channelID string) ([]*MessageView, error)
	Send(ctx context.Context, userID, channelID, content string) (*Message, error)
	MarkRead(ctx context.Context, userID, channelID string) error
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

// CreateChannel は交換完了時にチャンネルを作成します。交換 1 件につき
// 1 回だけ呼び出される前提で、呼び出し元のトランザクションに参加します。
func (s *Service) CreateChannel(ctx context.Context, exchangeID string, participantUserIDs []string) error {
	if strings.TrimSpace(exchangeID) == "" {
		return ErrInvalidID
	}

	c := &Channel{
		ID:             uuid.NewString(),
		ExchangeID:     exchangeID,
		ParticipantIDs: participantUserIDs,
		Active:         true,
		CreatedAt:      s.clock.Now(),
	}
	return s.repo.CreateChannel(ctx, c)
}

// ListMine は自分が参加しているチャンネルを返します。
func (s *Service) ListMine(ctx context.Context, userID string) ([]*Channel, error) {
	var result []*Channel
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		list, err := s.repo.ListChannelsByUser(txCtx, userID)
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

// Messages はチャンネル内の発言を返します。参加者だけが読めます。
func (s *Service) Messages(ctx context.Context, userID, channelID string) ([]*MessageView, error) {
	var result []*MessageView
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.requireParticipant(txCtx, userID, channelID); err != nil {
			return err
		}
		list, err := s.repo.ListMessages(txCtx, channelID)
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

// Send はメッセージを投稿し、他の参加者に通知します。
func (s *Service) Send(ctx context.Context, userID, channelID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxContentLength {
		return nil, ErrInvalidContent
	}

	var created *Message
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		c, err := s.requireParticipant(txCtx, userID, channelID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		m := &Message{
			ID:        uuid.NewString(),
			ChannelID: c.ID,
			SenderID:  userID,
			Content:   content,
			Read:      false,
			CreatedAt: now,
		}
		if err := s.repo.CreateMessage(txCtx, m); err != nil {
			return err
		}
		if err := s.repo.SetLastMessageAt(txCtx, c.ID, now); err != nil {
			return err
		}

		senderName := "Someone"
		if sender, err := s.repo.SenderByID(txCtx, userID); err == nil && sender.Name != "" {
			senderName = sender.Name
		}

		for _, participantID := range c.ParticipantIDs {
			if participantID == userID {
				continue
			}
			if err := s.notifier.Notify(txCtx, participantID, notification.KindNewMessage,
				"New Message",
				fmt.Sprintf("%s sent you a message", senderName),
				c.ID); err != nil {
				return err
			}
		}

		created = m
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// MarkRead はチャンネル内の自分以外の発言をまとめて既読にします。
func (s *Service) MarkRead(ctx context.Context, userID, channelID string) error {
	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := s.requireParticipant(txCtx, userID, channelID); err != nil {
			return err
		}
		return s.repo.MarkMessagesRead(txCtx, channelID, userID)
	})
}

func (s *Service) requireParticipant(ctx context.Context, userID, channelID string) (*Channel, error) {
	if strings.TrimSpace(channelID) == "" {
		return nil, ErrInvalidID
	}

	c, err := s.repo.FindChannelByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	for _, participantID := range c.ParticipantIDs {
		if participantID == userID {
			return c, nil
		}
	}
	return nil, ErrNotParticipant
}
