package notification

import "time"

// Kind は通知の種別を表します。
type Kind string

const (
	KindSwapInterest         Kind = "swap_interest"
	KindExchangeRequest      Kind = "exchange_request"
	KindExchangeRejected     Kind = "exchange_rejected"
	KindExchangeCompleted    Kind = "exchange_completed"
	KindVerificationRequest  Kind = "verification_request"
	KindVerificationApproved Kind = "verification_approved"
	KindVerificationRejected Kind = "verification_rejected"
	KindEmployeeRemoved      Kind = "employee_removed"
	KindNewMessage           Kind = "new_message"
)

// Notification はユーザー宛の追記専用の受信箱レコードです。
type Notification struct {
	ID        string
	UserID    string
	Kind      Kind
	Title     string
	Body      string
	RelatedID string
	Read      bool
	CreatedAt time.Time
}
