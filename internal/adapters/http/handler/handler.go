package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ogurasousui/jobswap-backend/internal/core/chat"
	"github.com/ogurasousui/jobswap-backend/internal/core/company"
	"github.com/ogurasousui/jobswap-backend/internal/core/employee"
	"github.com/ogurasousui/jobswap-backend/internal/core/exchange"
	"github.com/ogurasousui/jobswap-backend/internal/core/identity"
	"github.com/ogurasousui/jobswap-backend/internal/core/notification"
	"github.com/ogurasousui/jobswap-backend/internal/core/position"
	"github.com/ogurasousui/jobswap-backend/internal/platform/auth"
)

// TokenParser は Bearer トークンの検証の抽象です。
type TokenParser interface {
	Parse(raw string) (auth.Claims, error)
}

// Handler は REST API のルーティングと入出力変換をまとめます。
// ドメインのルールはすべて各サービスに委ね、ここでは HTTP 表現への
// 変換だけを行います。
type Handler struct {
	identity      identity.UseCase
	companies     company.UseCase
	employees     employee.UseCase
	positions     position.UseCase
	exchanges     exchange.UseCase
	chats         chat.UseCase
	notifications notification.UseCase
	tokens        TokenParser
	allowedOrigin string
	logger        *zap.Logger
}

// Services は Handler が依存するユースケースの束です。
type Services struct {
	Identity      identity.UseCase
	Companies     company.UseCase
	Employees     employee.UseCase
	Positions     position.UseCase
	Exchanges     exchange.UseCase
	Chats         chat.UseCase
	Notifications notification.UseCase
}

// New は Handler を生成します。allowedOrigin が空の場合、すべての
// オリジンを許可します。
func New(services Services, tokens TokenParser, allowedOrigin string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		identity:      services.Identity,
		companies:     services.Companies,
		employees:     services.Employees,
		positions:     services.Positions,
		exchanges:     services.Exchanges,
		chats:         services.Chats,
		notifications: services.Notifications,
		tokens:        tokens,
		allowedOrigin: allowedOrigin,
		logger:        logger.Named("http"),
	}
}

// Router は全エンドポイントを束ねたルーターを返します。
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(h.corsMiddleware)
	r.Options("/*", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/api/v1/auth/register", h.handleRegister)
	r.Post("/api/v1/auth/login", h.handleLogin)

	r.Group(func(authed chi.Router) {
		authed.Use(h.authMiddleware)

		authed.Get("/api/v1/account", h.handleGetAccount)
		authed.Put("/api/v1/account/role", h.handleSetRole)
		authed.Get("/api/v1/account/role", h.handleGetRole)
		authed.Delete("/api/v1/account/role", h.handleDeleteRole)

		authed.Post("/api/v1/companies", h.handleCreateCompany)
		authed.Get("/api/v1/companies", h.handleListCompanies)
		authed.Get("/api/v1/companies/me", h.handleGetMyCompany)
		authed.Put("/api/v1/companies/me", h.handleUpdateCompany)
		authed.Delete("/api/v1/companies/me", h.handleDeleteCompany)
		authed.Get("/api/v1/companies/me/employees", h.handleListCompanyEmployees)
		authed.Get("/api/v1/companies/me/verification-requests", h.handleListVerificationRequests)
		authed.Post("/api/v1/companies/me/employees/{employeeID}/verify", h.handleVerifyEmployee)
		authed.Post("/api/v1/companies/me/employees/{employeeID}/reject", h.handleRejectEmployee)
		authed.Delete("/api/v1/companies/me/employees/{employeeID}", h.handleRemoveEmployee)
		authed.Get("/api/v1/companies/{companyID}", h.handleGetCompany)

		authed.Post("/api/v1/employees", h.handleCreateEmployee)
		authed.Get("/api/v1/employees", h.handleListEmployees)
		authed.Get("/api/v1/employees/me", h.handleGetMyEmployee)
		authed.Put("/api/v1/employees/me", h.handleUpdateEmployee)
		authed.Delete("/api/v1/employees/me", h.handleDeleteEmployee)
		authed.Post("/api/v1/employees/me/verification-requests", h.handleRequestVerification)
		authed.Post("/api/v1/employees/me/leave-company", h.handleLeaveCompany)
		authed.Get("/api/v1/employees/{employeeID}", h.handleGetEmployee)

		authed.Post("/api/v1/positions", h.handleCreatePosition)
		authed.Get("/api/v1/positions/mine", h.handleListMyPositions)
		authed.Get("/api/v1/positions/company", h.handleListCompanyPositions)
		authed.Get("/api/v1/positions/opportunities", h.handleListOpportunities)
		authed.Get("/api/v1/positions/{positionID}", h.handleGetPosition)
		authed.Put("/api/v1/positions/{positionID}", h.handleUpdatePosition)
		authed.Delete("/api/v1/positions/{positionID}", h.handleDeletePosition)
		authed.Patch("/api/v1/positions/{positionID}/active", h.handleSetPositionActive)

		authed.Post("/api/v1/exchanges", h.handleProposeExchange)
		authed.Get("/api/v1/exchanges/mine", h.handleListMyExchanges)
		authed.Get("/api/v1/exchanges/incoming", h.handleListIncomingExchanges)
		authed.Get("/api/v1/exchanges/company", h.handleListCompanyExchanges)
		authed.Post("/api/v1/exchanges/{exchangeID}/response", h.handleRespondToProposal)
		authed.Post("/api/v1/exchanges/{exchangeID}/cancel", h.handleCancelExchange)
		authed.Post("/api/v1/exchanges/{exchangeID}/company-response", h.handleRespondAsCompany)

		authed.Get("/api/v1/channels", h.handleListChannels)
		authed.Get("/api/v1/channels/{channelID}/messages", h.handleListMessages)
		authed.Post("/api/v1/channels/{channelID}/messages", h.handleSendMessage)
		authed.Post("/api/v1/channels/{channelID}/read", h.handleMarkChannelRead)

		authed.Get("/api/v1/notifications", h.handleListNotifications)
		authed.Get("/api/v1/notifications/unread-count", h.handleCountUnread)
		authed.Post("/api/v1/notifications/{notificationID}/read", h.handleMarkNotificationRead)
		authed.Post("/api/v1/notifications/read-all", h.handleMarkAllNotificationsRead)
	})

	return r
}

type claimsContextKey struct{}

func (h *Handler) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin, Access-Control-Request-Headers")
		w.Header().Set("Access-Control-Allow-Origin", h.corsOrigin())
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		requestHeaders := strings.TrimSpace(r.Header.Get("Access-Control-Request-Headers"))
		if requestHeaders != "" {
			w.Header().Set("Access-Control-Allow-Headers", requestHeaders)
		} else {
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) corsOrigin() string {
	origin := strings.TrimSpace(h.allowedOrigin)
	if origin == "" {
		return "*"
	}
	return origin
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			h.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := h.tokens.Parse(token)
		if err != nil {
			h.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := contextWithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func contextWithClaims(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

func claimsFromContext(ctx context.Context) auth.Claims {
	claims, _ := ctx.Value(claimsContextKey{}).(auth.Claims)
	return claims
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		h.writeError(w, status, "internal error")
		return
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}
