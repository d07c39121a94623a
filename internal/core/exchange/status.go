package exchange

// Status は交換申請のライフサイクル上の状態です。遷移は Service を通して
// のみ行われます。
type Status string

const (
	// StatusPendingTargetResponse は初期状態で、相手社員の返答待ちです。
	StatusPendingTargetResponse Status = "pending_target_response"
	// StatusMutualInterest は両社員が合意し、両企業の承認待ちです。
	StatusMutualInterest Status = "mutual_interest"
	// StatusCompleted は両企業が承認した終端状態です。
	StatusCompleted Status = "completed"
	// StatusRejectedByFromCompany は申請側企業が拒否した終端状態です。
	StatusRejectedByFromCompany Status = "rejected_by_from_company"
	// StatusRejectedByToCompany は受け入れ側企業が拒否した終端状態です。
	StatusRejectedByToCompany Status = "rejected_by_to_company"
	// StatusRejectedByToEmployee は相手社員が辞退した終端状態です。
	StatusRejectedByToEmployee Status = "rejected_by_to_employee"
	// StatusCancelled は申請者が取り下げた終端状態です。
	StatusCancelled Status = "cancelled"
)

// Terminal はこの状態がそれ以上遷移しない終端かどうかを返します。
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusRejectedByFromCompany, StatusRejectedByToCompany,
		StatusRejectedByToEmployee, StatusCancelled:
		return true
	default:
		return false
	}
}
