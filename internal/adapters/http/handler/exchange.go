package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ogurasousui/jobswap-backend/internal/core/exchange"
)

type proposeExchangeRequest struct {
	ToPositionID string `json:"to_position_id"`
	Message      string `json:"message"`
}

type exchangeDecisionRequest struct {
	Decision string `json:"decision"`
}

type exchangeResponse struct {
	ID                    string     `json:"id"`
	FromPositionID        string     `json:"from_position_id"`
	ToPositionID          string     `json:"to_position_id"`
	FromEmployeeID        string     `json:"from_employee_id"`
	ToEmployeeID          string     `json:"to_employee_id"`
	FromCompanyID         string     `json:"from_company_id"`
	ToCompanyID           string     `json:"to_company_id"`
	Status                string     `json:"status"`
	Message               string     `json:"message,omitempty"`
	FromCompanyApprovedAt *time.Time `json:"from_company_approved_at,omitempty"`
	ToCompanyApprovedAt   *time.Time `json:"to_company_approved_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

type exchangeEmployeeResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type exchangeCompanyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type exchangePositionResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

type exchangeViewResponse struct {
	Exchange            exchangeResponse          `json:"exchange"`
	Outgoing            bool                      `json:"outgoing"`
	CounterpartEmployee *exchangeEmployeeResponse `json:"counterpart_employee,omitempty"`
	CounterpartCompany  *exchangeCompanyResponse  `json:"counterpart_company,omitempty"`
	CounterpartPosition *exchangePositionResponse `json:"counterpart_position,omitempty"`
}

type companyExchangeViewResponse struct {
	Exchange     exchangeResponse          `json:"exchange"`
	FromEmployee *exchangeEmployeeResponse `json:"from_employee,omitempty"`
	ToEmployee   *exchangeEmployeeResponse `json:"to_employee,omitempty"`
	FromCompany  *exchangeCompanyResponse  `json:"from_company,omitempty"`
	ToCompany    *exchangeCompanyResponse  `json:"to_company,omitempty"`
	FromPosition *exchangePositionResponse `json:"from_position,omitempty"`
	ToPosition   *exchangePositionResponse `json:"to_position,omitempty"`
}

func toExchangeResponse(e *exchange.Exchange) exchangeResponse {
	return exchangeResponse{
		ID:                    e.ID,
		FromPositionID:        e.FromPositionID,
		ToPositionID:          e.ToPositionID,
		FromEmployeeID:        e.FromEmployeeID,
		ToEmployeeID:          e.ToEmployeeID,
		FromCompanyID:         e.FromCompanyID,
		ToCompanyID:           e.ToCompanyID,
		Status:                string(e.Status),
		Message:               e.Message,
		FromCompanyApprovedAt: e.FromCompanyApprovedAt,
		ToCompanyApprovedAt:   e.ToCompanyApprovedAt,
		CreatedAt:             e.CreatedAt,
	}
}

func toExchangeEmployeeResponse(ref *exchange.EmployeeRef) *exchangeEmployeeResponse {
	if ref == nil {
		return nil
	}
	return &exchangeEmployeeResponse{ID: ref.ID, FirstName: ref.FirstName, LastName: ref.LastName}
}

func toExchangeCompanyResponse(ref *exchange.CompanyRef) *exchangeCompanyResponse {
	if ref == nil {
		return nil
	}
	return &exchangeCompanyResponse{ID: ref.ID, Name: ref.Name}
}

func toExchangePositionResponse(ref *exchange.PositionRef) *exchangePositionResponse {
	if ref == nil {
		return nil
	}
	return &exchangePositionResponse{ID: ref.ID, Title: ref.Title, Active: ref.Active}
}

func toExchangeViewResponses(views []*exchange.View) []exchangeViewResponse {
	out := make([]exchangeViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, exchangeViewResponse{
			Exchange:            toExchangeResponse(v.Exchange),
			Outgoing:            v.Outgoing,
			CounterpartEmployee: toExchangeEmployeeResponse(v.CounterpartEmployee),
			CounterpartCompany:  toExchangeCompanyResponse(v.CounterpartCompany),
			CounterpartPosition: toExchangePositionResponse(v.CounterpartPosition),
		})
	}
	return out
}

func (h *Handler) handleProposeExchange(w http.ResponseWriter, r *http.Request) {
	var req proposeExchangeRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims := claimsFromContext(r.Context())
	created, err := h.exchanges.Propose(r.Context(), claims.UserID, req.ToPositionID, req.Message)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toExchangeResponse(created))
}

func (h *Handler) handleRespondToProposal(w http.ResponseWriter, r *http.Request) {
	var req exchangeDecisionRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims := claimsFromContext(r.Context())
	err := h.exchanges.RespondToProposal(r.Context(), claims.UserID, chi.URLParam(r, "exchangeID"), exchange.Decision(req.Decision))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCancelExchange(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := h.exchanges.Cancel(r.Context(), claims.UserID, chi.URLParam(r, "exchangeID")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRespondAsCompany(w http.ResponseWriter, r *http.Request) {
	var req exchangeDecisionRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims := claimsFromContext(r.Context())
	err := h.exchanges.RespondAsCompany(r.Context(), claims.UserID, chi.URLParam(r, "exchangeID"), exchange.Decision(req.Decision))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListMyExchanges(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	views, err := h.exchanges.ListMine(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toExchangeViewResponses(views))
}

func (h *Handler) handleListIncomingExchanges(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	views, err := h.exchanges.ListIncoming(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toExchangeViewResponses(views))
}

func (h *Handler) handleListCompanyExchanges(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	views, err := h.exchanges.ListForCompany(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	out := make([]companyExchangeViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, companyExchangeViewResponse{
			Exchange:     toExchangeResponse(v.Exchange),
			FromEmployee: toExchangeEmployeeResponse(v.FromEmployee),
			ToEmployee:   toExchangeEmployeeResponse(v.ToEmployee),
			FromCompany:  toExchangeCompanyResponse(v.FromCompany),
			ToCompany:    toExchangeCompanyResponse(v.ToCompany),
			FromPosition: toExchangePositionResponse(v.FromPosition),
			ToPosition:   toExchangePositionResponse(v.ToPosition),
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}
