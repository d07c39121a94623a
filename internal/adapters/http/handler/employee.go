package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ogurasousui/jobswap-backend/internal/core/employee"
	"github.com/ogurasousui/jobswap-backend/internal/core/language"
)

type employeeProfileRequest struct {
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	JobTitle     string           `json:"job_title"`
	Bio          string           `json:"bio"`
	YearsAtJob   int              `json:"years_at_job"`
	Skills       []string         `json:"skills"`
	Languages    []language.Skill `json:"languages"`
	Country      string           `json:"country"`
	City         string           `json:"city"`
	CompanyID    *string          `json:"company_id,omitempty"`
	OpenToOffers bool             `json:"open_to_offers"`
}

type employeeResponse struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	JobTitle     string           `json:"job_title"`
	Bio          string           `json:"bio"`
	YearsAtJob   int              `json:"years_at_job"`
	Skills       []string         `json:"skills"`
	Languages    []language.Skill `json:"languages"`
	Country      string           `json:"country"`
	City         string           `json:"city"`
	CompanyID    *string          `json:"company_id,omitempty"`
	Verified     bool             `json:"verified"`
	OpenToOffers bool             `json:"open_to_offers"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type verificationRequest struct {
	CompanyID string `json:"company_id"`
}

func (r employeeProfileRequest) toInput() employee.ProfileInput {
	return employee.ProfileInput{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		JobTitle:     r.JobTitle,
		Bio:          r.Bio,
		YearsAtJob:   r.YearsAtJob,
		Skills:       r.Skills,
		Languages:    r.Languages,
		Country:      r.Country,
		City:         r.City,
		CompanyID:    r.CompanyID,
		OpenToOffers: r.OpenToOffers,
	}
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	return employeeResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		JobTitle:     e.JobTitle,
		Bio:          e.Bio,
		YearsAtJob:   e.YearsAtJob,
		Skills:       e.Skills,
		Languages:    e.Languages,
		Country:      e.Country,
		City:         e.City,
		CompanyID:    e.CompanyID,
		Verified:     e.Verified,
		OpenToOffers: e.OpenToOffers,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims := claimsFromContext(r.Context())
	created, err := h.employees.CreateProfile(r.Context(), claims.UserID, req.toInput())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toEmployeeResponse(created))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims := claimsFromContext(r.Context())
	updated, err := h.employees.UpdateProfile(r.Context(), claims.UserID, req.toInput())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toEmployeeResponse(updated))
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := h.employees.DeleteProfile(r.Context(), claims.UserID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetMyEmployee(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	e, err := h.employees.GetMine(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toEmployeeResponse(e))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := h.employees.GetByID(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toEmployeeResponse(e))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employees.ListAll(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	out := make([]employeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeResponse(e))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleRequestVerification(w http.ResponseWriter, r *http.Request) {
	var req verificationRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims := claimsFromContext(r.Context())
	if err := h.employees.RequestVerification(r.Context(), claims.UserID, req.CompanyID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLeaveCompany(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := h.employees.LeaveCompany(r.Context(), claims.UserID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
