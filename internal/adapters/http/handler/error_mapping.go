package handler

import (
	"errors"
	"net/http"

	"github.com/ogurasousui/jobswap-backend/internal/core/chat"
	"github.com/ogurasousui/jobswap-backend/internal/core/company"
	"github.com/ogurasousui/jobswap-backend/internal/core/employee"
	"github.com/ogurasousui/jobswap-backend/internal/core/exchange"
	"github.com/ogurasousui/jobswap-backend/internal/core/identity"
	"github.com/ogurasousui/jobswap-backend/internal/core/notification"
	"github.com/ogurasousui/jobswap-backend/internal/core/position"
)

func statusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrInvalidName),
		errors.Is(err, identity.ErrInvalidPassword),
		errors.Is(err, identity.ErrInvalidRole),
		errors.Is(err, company.ErrInvalidID),
		errors.Is(err, company.ErrInvalidName),
		errors.Is(err, company.ErrInvalidIndustry),
		errors.Is(err, company.ErrInvalidDescription),
		errors.Is(err, company.ErrInvalidHeadquarters),
		errors.Is(err, company.ErrInvalidCountry),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidFirstName),
		errors.Is(err, employee.ErrInvalidLastName),
		errors.Is(err, employee.ErrInvalidJobTitle),
		errors.Is(err, employee.ErrInvalidBio),
		errors.Is(err, employee.ErrInvalidLanguage),
		errors.Is(err, position.ErrInvalidID),
		errors.Is(err, position.ErrInvalidEmployee),
		errors.Is(err, position.ErrInvalidTitle),
		errors.Is(err, position.ErrInvalidDescription),
		errors.Is(err, position.ErrInvalidLanguage),
		errors.Is(err, exchange.ErrInvalidID),
		errors.Is(err, exchange.ErrInvalidDecision),
		errors.Is(err, exchange.ErrSelfExchange),
		errors.Is(err, chat.ErrInvalidID),
		errors.Is(err, chat.ErrInvalidContent),
		errors.Is(err, notification.ErrInvalidID),
		errors.Is(err, notification.ErrInvalidUserID):
		return http.StatusBadRequest
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, company.ErrEmployeeNotMember),
		errors.Is(err, employee.ErrNotEmployed),
		errors.Is(err, position.ErrNotVerified),
		errors.Is(err, position.ErrNotEmployed),
		errors.Is(err, position.ErrNotMember),
		errors.Is(err, position.ErrNotOwner),
		errors.Is(err, exchange.ErrNotVerifiedEmployee),
		errors.Is(err, exchange.ErrNoActivePosition),
		errors.Is(err, exchange.ErrNotParticipant),
		errors.Is(err, chat.ErrNotParticipant),
		errors.Is(err, notification.ErrNotRecipient):
		return http.StatusForbidden
	case errors.Is(err, identity.ErrUserNotFound),
		errors.Is(err, identity.ErrAccountNotFound),
		errors.Is(err, company.ErrCompanyNotFound),
		errors.Is(err, company.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrCompanyNotFound),
		errors.Is(err, position.ErrPositionNotFound),
		errors.Is(err, position.ErrEmployeeNotFound),
		errors.Is(err, position.ErrCompanyNotFound),
		errors.Is(err, exchange.ErrExchangeNotFound),
		errors.Is(err, exchange.ErrEmployeeNotFound),
		errors.Is(err, exchange.ErrCompanyNotFound),
		errors.Is(err, exchange.ErrPositionNotFound),
		errors.Is(err, chat.ErrChannelNotFound),
		errors.Is(err, notification.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, identity.ErrEmailAlreadyExists),
		errors.Is(err, company.ErrProfileAlreadyExists),
		errors.Is(err, employee.ErrProfileAlreadyExists),
		errors.Is(err, position.ErrActivePositionExists),
		errors.Is(err, exchange.ErrPositionNotActive),
		errors.Is(err, exchange.ErrDuplicateProposal),
		errors.Is(err, exchange.ErrInvalidTransition),
		errors.Is(err, chat.ErrChannelExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
