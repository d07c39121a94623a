package exchange

import "errors"

var (
	ErrInvalidID           = errors.New("exchange: invalid id")
	ErrInvalidDecision     = errors.New("exchange: invalid decision")
	ErrExchangeNotFound    = errors.New("exchange: not found")
	ErrEmployeeNotFound    = errors.New("exchange: employee profile not found")
	ErrCompanyNotFound     = errors.New("exchange: company profile not found")
	ErrPositionNotFound    = errors.New("exchange: position not found")
	ErrNotVerifiedEmployee = errors.New("exchange: employee is not verified or has no company")
	ErrNoActivePosition    = errors.New("exchange: an active position of your own is required")
	ErrPositionNotActive   = errors.New("exchange: target position is not active")
	ErrSelfExchange        = errors.New("exchange: cannot propose a swap with your own position")
	ErrDuplicateProposal   = errors.New("exchange: an open proposal for this position already exists")
	ErrNotParticipant      = errors.New("exchange: caller is not a participant of this exchange")
	ErrInvalidTransition   = errors.New("exchange: operation not allowed in the current status")
)
