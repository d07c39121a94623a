package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

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

// ChannelCreator は交換完了時のチャットチャンネル作成の抽象です。完了と
// 同一トランザクション内で、1 交換につき 1 回だけ呼び出されます。
type ChannelCreator interface {
	CreateChannel(ctx context.Context, exchangeID string, participantUserIDs []string) error
}

type noopChannelCreator struct{}

func (noopChannelCreator) CreateChannel(context.Context, string, []string) error {
	return nil
}

// Event は交換の状態遷移を表すドメインイベントです。
type Event struct {
	ExchangeID string    `json:"exchange_id"`
	Status     Status    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher は状態遷移イベントの発行の抽象です。コミット後に呼び
// 出され、失敗しても遷移自体は成立します。
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type noopEventPublisher struct{}

func (noopEventPublisher) Publish(context.Context, Event) error {
	return nil
}

// Decision は当事者の返答です。
type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

const maxMessageLength = 1000

// truncateMessage は申請メッセージを最大長に切り詰めます。マルチバイト
// 文字の途中で切らないよう、ルーン境界まで戻します。
func truncateMessage(s string) string {
	if len(s) <= maxMessageLength {
		return s
	}
	cut := maxMessageLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Service は交換申請のライフサイクルを管理します。状態遷移と付随する
// 副作用(ポジション無効化、チャンネル作成、通知)は 1 回の呼び出しに
// つき 1 トランザクションで行われます。
type Service struct {
	repo      Repository
	notifier  Notifier
	channels  ChannelCreator
	publisher EventPublisher
	clock     Clock
	tx        TransactionManager
	logger    *zap.Logger
}

// UseCase は交換ユースケースの公開インターフェースです。
type UseCase interface {
	Propose(ctx context.Context, userID, toPositionID, message string) (*Exchange, error)
	RespondToProposal(ctx context.Context, userID, exchangeID string, decision Decision) error
	Cancel(ctx context.Context, userID, exchangeID string) error
	RespondAsCompany(ctx context.Context, userID, exchangeID string, decision Decision) error
	ListMine(ctx context.Context, userID string) ([]*View, error)
	ListIncoming(ctx context.Context, userID string) ([]*View, error)
	ListForCompany(ctx context.Context, userID string) ([]*CompanyView, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, notifier Notifier, channels ChannelCreator, publisher EventPublisher, clock Clock, tx TransactionManager, logger *zap.Logger) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if channels == nil {
		channels = noopChannelCreator{}
	}
	if publisher == nil {
		publisher = noopEventPublisher{}
	}
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		notifier:  notifier,
		channels:  channels,
		publisher: publisher,
		clock:     clock,
		tx:        tx,
		logger:    logger.Named("exchange"),
	}
}

// Propose は新しい交換申請を作成します。在籍確認済みで有効なポジションを
// 持つ社員だけが申請でき、同じ対象への未解決の申請があると失敗します。
func (s *Service) Propose(ctx context.Context, userID, toPositionID, message string) (*Exchange, error) {
	if strings.TrimSpace(toPositionID) == "" {
		return nil, ErrPositionNotFound
	}
	message = truncateMessage(strings.TrimSpace(message))

	var created *Exchange
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		proposer, err := s.repo.EmployeeByUser(txCtx, userID)
		if err != nil {
			return err
		}
		if !proposer.Verified || proposer.CompanyID == nil {
			return ErrNotVerifiedEmployee
		}

		toPosition, err := s.repo.PositionByID(txCtx, toPositionID)
		if err != nil {
			return err
		}
		if !toPosition.Active {
			return ErrPositionNotActive
		}
		if toPosition.EmployeeID == proposer.ID {
			return ErrSelfExchange
		}

		fromPosition, err := s.repo.ActivePositionByEmployee(txCtx, proposer.ID)
		if err != nil {
			if errors.Is(err, ErrPositionNotFound) {
				return ErrNoActivePosition
			}
			return err
		}

		open, err := s.repo.HasOpenProposal(txCtx, proposer.ID, toPositionID)
		if err != nil {
			return err
		}
		if open {
			return ErrDuplicateProposal
		}

		target, err := s.repo.EmployeeByID(txCtx, toPosition.EmployeeID)
		if err != nil {
			return err
		}
		proposerCompany, err := s.repo.CompanyByID(txCtx, *proposer.CompanyID)
		if err != nil {
			return err
		}

		e := &Exchange{
			ID:             uuid.NewString(),
			FromPositionID: fromPosition.ID,
			ToPositionID:   toPosition.ID,
			FromEmployeeID: proposer.ID,
			ToEmployeeID:   toPosition.EmployeeID,
			FromCompanyID:  *proposer.CompanyID,
			ToCompanyID:    toPosition.CompanyID,
			Status:         StatusPendingTargetResponse,
			Message:        message,
			CreatedAt:      s.clock.Now(),
		}

		if err := s.repo.Create(txCtx, e); err != nil {
			return err
		}

		if err := s.notifier.Notify(txCtx, target.UserID, notification.KindSwapInterest,
			"Someone Wants to Swap with You",
			fmt.Sprintf("%s %s from %s wants to swap positions with you. Check your incoming applications!",
				proposer.FirstName, proposer.LastName, proposerCompany.Name),
			e.ID); err != nil {
			return err
		}

		created = e
		return nil
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, created.ID, StatusPendingTargetResponse)
	return created, nil
}

// RespondToProposal は対象社員による受諾・辞退です。受諾すると両企業の
// 承認待ちになり、辞退すると終端の辞退状態になります。
func (s *Service) RespondToProposal(ctx context.Context, userID, exchangeID string, decision Decision) error {
	if decision != DecisionAccept && decision != DecisionDecline {
		return ErrInvalidDecision
	}

	var next Status
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		responder, err := s.repo.EmployeeByUser(txCtx, userID)
		if err != nil {
			return err
		}

		e, err := s.repo.FindByIDForUpdate(txCtx, exchangeID)
		if err != nil {
			return err
		}
		if e.ToEmployeeID != responder.ID {
			return ErrNotParticipant
		}
		if e.Status != StatusPendingTargetResponse {
			return ErrInvalidTransition
		}

		if decision == DecisionAccept {
			next = StatusMutualInterest
			if err := s.repo.UpdateStatus(txCtx, e.ID, next); err != nil {
				return err
			}
			return s.notifyMutualInterest(txCtx, e)
		}

		next = StatusRejectedByToEmployee
		if err := s.repo.UpdateStatus(txCtx, e.ID, next); err != nil {
			return err
		}

		proposer, err := s.repo.EmployeeByID(txCtx, e.FromEmployeeID)
		if err != nil {
			return err
		}
		return s.notifier.Notify(txCtx, proposer.UserID, notification.KindExchangeRejected,
			"Swap Request Declined",
			fmt.Sprintf("%s %s has declined your swap request.", responder.FirstName, responder.LastName),
			e.ID)
	}); err != nil {
		return err
	}

	s.publish(ctx, exchangeID, next)
	return nil
}

// Cancel は申請者による取り下げです。相手の返答待ちの間だけ可能です。
func (s *Service) Cancel(ctx context.Context, userID, exchangeID string) error {
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		caller, err := s.repo.EmployeeByUser(txCtx, userID)
		if err != nil {
			return err
		}

		e, err := s.repo.FindByIDForUpdate(txCtx, exchangeID)
		if err != nil {
			return err
		}
		if e.FromEmployeeID != caller.ID {
			return ErrNotParticipant
		}
		if e.Status != StatusPendingTargetResponse {
			return ErrInvalidTransition
		}

		return s.repo.UpdateStatus(txCtx, e.ID, StatusCancelled)
	}); err != nil {
		return err
	}

	s.publish(ctx, exchangeID, StatusCancelled)
	return nil
}

// RespondAsCompany は当事者企業による承認・拒否です。承認は片側ずつ
// 冪等に記録され、2 社目の承認で交換が完了します。完了時はポジションの
// 無効化、チャンネル作成、参加者全員への通知が同一トランザクションで
// 行われます。
func (s *Service) RespondAsCompany(ctx context.Context, userID, exchangeID string, decision Decision) error {
	if decision != DecisionApprove && decision != DecisionReject {
		return ErrInvalidDecision
	}

	var published *Status
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		company, err := s.repo.CompanyByUser(txCtx, userID)
		if err != nil {
			return err
		}

		e, err := s.repo.FindByIDForUpdate(txCtx, exchangeID)
		if err != nil {
			return err
		}

		var side Side
		switch company.ID {
		case e.FromCompanyID:
			side = SideFrom
		case e.ToCompanyID:
			side = SideTo
		default:
			return ErrNotParticipant
		}

		if e.Status != StatusMutualInterest {
			return ErrInvalidTransition
		}

		if decision == DecisionReject {
			status := StatusRejectedByFromCompany
			if side == SideTo {
				status = StatusRejectedByToCompany
			}
			if err := s.repo.UpdateStatus(txCtx, e.ID, status); err != nil {
				return err
			}
			published = &status
			return s.notifyCompanyRejection(txCtx, e, company)
		}

		status, err := s.approve(txCtx, e, side)
		if err != nil {
			return err
		}
		published = status
		return nil
	}); err != nil {
		return err
	}

	if published != nil {
		s.publish(ctx, exchangeID, *published)
	}
	return nil
}

// approve は片側企業の承認を記録し、両側が揃った場合に限り完了遷移を
// 実行します。自側が承認済みの場合は何もしません。完了した場合はその
// 状態を返します。
func (s *Service) approve(ctx context.Context, e *Exchange, side Side) (*Status, error) {
	mine, other := e.FromCompanyApprovedAt, e.ToCompanyApprovedAt
	if side == SideTo {
		mine, other = other, mine
	}
	if mine != nil {
		return nil, nil
	}

	if err := s.repo.SetCompanyApproval(ctx, e.ID, side, s.clock.Now()); err != nil {
		return nil, err
	}

	if other == nil {
		return nil, nil
	}

	// 2 社目の承認。mutual_interest のままであることを条件に完了させ、
	// 競合する承認と完了側作用が二重に走らないようにします。
	completed, err := s.repo.CompleteFromMutualInterest(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, nil
	}

	if err := s.complete(ctx, e); err != nil {
		return nil, err
	}
	status := StatusCompleted
	return &status, nil
}

// complete は完了の副作用をまとめて実行します。ポジション 2 件の無効化、
// チャンネルの作成、参加者全員への通知です。
func (s *Service) complete(ctx context.Context, e *Exchange) error {
	if err := s.repo.DeactivatePosition(ctx, e.FromPositionID); err != nil {
		return err
	}
	if err := s.repo.DeactivatePosition(ctx, e.ToPositionID); err != nil {
		return err
	}

	fromEmployee, err := s.repo.EmployeeByID(ctx, e.FromEmployeeID)
	if err != nil {
		return err
	}
	toEmployee, err := s.repo.EmployeeByID(ctx, e.ToEmployeeID)
	if err != nil {
		return err
	}
	toCompany, err := s.repo.CompanyByID(ctx, e.ToCompanyID)
	if err != nil {
		return err
	}

	participants := []string{fromEmployee.UserID, toEmployee.UserID, toCompany.UserID}
	if err := s.channels.CreateChannel(ctx, e.ID, participants); err != nil {
		return err
	}

	for _, userID := range participants {
		if err := s.notifier.Notify(ctx, userID, notification.KindExchangeCompleted,
			"Exchange Approved & Chat Created!",
			"Both companies have approved the exchange. Your job postings have been archived and you can now chat with all parties to coordinate the swap.",
			e.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) notifyMutualInterest(ctx context.Context, e *Exchange) error {
	for _, companyID := range []string{e.FromCompanyID, e.ToCompanyID} {
		c, err := s.repo.CompanyByID(ctx, companyID)
		if err != nil {
			return err
		}
		if err := s.notifier.Notify(ctx, c.UserID, notification.KindExchangeRequest,
			"Mutual Swap Interest - Approval Needed",
			"Both employees want to swap positions. Please review and approve the exchange in your Exchanges tab.",
			e.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) notifyCompanyRejection(ctx context.Context, e *Exchange, rejecting *CompanyRef) error {
	fromEmployee, err := s.repo.EmployeeByID(ctx, e.FromEmployeeID)
	if err != nil {
		return err
	}
	toEmployee, err := s.repo.EmployeeByID(ctx, e.ToEmployeeID)
	if err != nil {
		return err
	}

	if err := s.notifier.Notify(ctx, fromEmployee.UserID, notification.KindExchangeRejected,
		"Exchange Rejected",
		fmt.Sprintf("Your exchange request has been rejected by %s", rejecting.Name),
		e.ID); err != nil {
		return err
	}
	return s.notifier.Notify(ctx, toEmployee.UserID, notification.KindExchangeRejected,
		"Exchange Rejected",
		fmt.Sprintf("The exchange request has been rejected by %s", rejecting.Name),
		e.ID)
}

// ListMine は社員が当事者である交換の一覧を返します。自分宛の未返答の
// 申請は ListIncoming 側に出ます。
func (s *Service) ListMine(ctx context.Context, userID string) ([]*View, error) {
	var result []*View
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

// ListIncoming は自分宛で返答待ちの申請を返します。在籍確認済みの社員
// だけが対象です。
func (s *Service) ListIncoming(ctx context.Context, userID string) ([]*View, error) {
	var result []*View
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, err := s.repo.EmployeeByUser(txCtx, userID)
		if err != nil {
			return err
		}
		if !emp.Verified {
			result = []*View{}
			return nil
		}
		list, err := s.repo.ListIncoming(txCtx, emp.ID)
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

// ListForCompany は企業が当事者である交換の一覧を返します。
func (s *Service) ListForCompany(ctx context.Context, userID string) ([]*CompanyView, error) {
	var result []*CompanyView
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

// publish はコミット済みの状態遷移をイベントとして発行します。失敗は
// ログに残すだけで呼び出し元へは返しません。
func (s *Service) publish(ctx context.Context, exchangeID string, status Status) {
	event := Event{ExchangeID: exchangeID, Status: status, OccurredAt: s.clock.Now()}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish exchange event",
			zap.String("exchange_id", exchangeID),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}
