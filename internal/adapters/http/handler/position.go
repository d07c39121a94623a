package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ogurasousui/jobswap-backend/internal/core/language"
	"github.com/ogurasousui/jobswap-backend/internal/core/position"
)

type positionRequest struct {
	EmployeeID        string           `json:"employee_id"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Requirements      []string         `json:"requirements"`
	Benefits          []string         `json:"benefits"`
	RequiredLanguages []language.Skill `json:"required_languages"`
	Country           string           `json:"country"`
	City              string           `json:"city"`
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

type positionResponse struct {
	ID                string           `json:"id"`
	EmployeeID        string           `json:"employee_id"`
	CompanyID         string           `json:"company_id"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Requirements      []string         `json:"requirements"`
	Benefits          []string         `json:"benefits"`
	RequiredLanguages []language.Skill `json:"required_languages"`
	Country           string           `json:"country"`
	City              string           `json:"city"`
	Active            bool             `json:"active"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

type opportunityResponse struct {
	Position   positionResponse `json:"position"`
	Compatible bool             `json:"compatible"`
}

func (r positionRequest) toInput() position.Input {
	return position.Input{
		EmployeeID:        r.EmployeeID,
		Title:             r.Title,
		Description:       r.Description,
		Requirements:      r.Requirements,
		Benefits:          r.Benefits,
		RequiredLanguages: r.RequiredLanguages,
		Country:           r.Country,
		City:              r.City,
	}
}

func toPositionResponse(p *position.Position) positionResponse {
	return positionResponse{
		ID:                p.ID,
		EmployeeID:        p.EmployeeID,
		CompanyID:         p.CompanyID,
		Title:             p.Title,
		Description:       p.Description,
		Requirements:      p.Requirements,
		Benefits:          p.Benefits,
		RequiredLanguages: p.RequiredLanguages,
		Country:           p.Country,
		City:              p.City,
		Active:            p.Active,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toPositionResponses(positions []*position.Position) []positionResponse {
	out := make([]positionResponse, 0, len(positions))
	for _, p := range positions {
		out = append(out, toPositionResponse(p))
	}
	return out
}

func (h *Handler) handleCreatePosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims := claimsFromContext(r.Context())
	created, err := h.positions.Create(r.Context(), claims.UserID, req.toInput())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toPositionResponse(created))
}

func (h *Handler) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims := claimsFromContext(r.Context())
	updated, err := h.positions.Update(r.Context(), claims.UserID, chi.URLParam(r, "positionID"), req.toInput())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toPositionResponse(updated))
}

func (h *Handler) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := h.positions.Delete(r.Context(), claims.UserID, chi.URLParam(r, "positionID")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetPositionActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims := claimsFromContext(r.Context())
	updated, err := h.positions.SetActive(r.Context(), claims.UserID, chi.URLParam(r, "positionID"), req.Active)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toPositionResponse(updated))
}

func (h *Handler) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	p, err := h.positions.GetByID(r.Context(), chi.URLParam(r, "positionID"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toPositionResponse(p))
}

func (h *Handler) handleListMyPositions(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	positions, err := h.positions.ListMine(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toPositionResponses(positions))
}

func (h *Handler) handleListCompanyPositions(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	positions, err := h.positions.ListMyCompany(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toPositionResponses(positions))
}

func (h *Handler) handleListOpportunities(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	opportunities, err := h.positions.ListOpportunities(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	out := make([]opportunityResponse, 0, len(opportunities))
	for _, o := range opportunities {
		out = append(out, opportunityResponse{
			Position:   toPositionResponse(o.Position),
			Compatible: o.Compatible,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}
