package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ogurasousui/jobswap-backend/internal/core/company"
)

type companyProfileRequest struct {
	Name         string  `json:"name"`
	Industry     string  `json:"industry"`
	Size         string  `json:"size"`
	Description  string  `json:"description"`
	Website      *string `json:"website,omitempty"`
	Headquarters string  `json:"headquarters"`
	Country      string  `json:"country"`
}

type companyResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Industry     string    `json:"industry"`
	Size         string    `json:"size"`
	Description  string    `json:"description"`
	Website      *string   `json:"website,omitempty"`
	Headquarters string    `json:"headquarters"`
	Country      string    `json:"country"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type companyEmployeeResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	JobTitle  string `json:"job_title"`
	Verified  bool   `json:"verified"`
}

func (r companyProfileRequest) toInput() company.ProfileInput {
	return company.ProfileInput{
		Name:         r.Name,
		Industry:     r.Industry,
		Size:         r.Size,
		Description:  r.Description,
		Website:      r.Website,
		Headquarters: r.Headquarters,
		Country:      r.Country,
	}
}

func toCompanyResponse(c *company.Company) companyResponse {
	return companyResponse{
		ID:           c.ID,
		UserID:       c.UserID,
		Name:         c.Name,
		Industry:     c.Industry,
		Size:         c.Size,
		Description:  c.Description,
		Website:      c.Website,
		Headquarters: c.Headquarters,
		Country:      c.Country,
		Verified:     c.Verified,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func toCompanyEmployeeResponses(refs []*company.EmployeeRef) []companyEmployeeResponse {
	out := make([]companyEmployeeResponse, 0, len(refs))
	for _, ref := range refs {
		out = append(out, companyEmployeeResponse{
			ID:        ref.ID,
			UserID:    ref.UserID,
			FirstName: ref.FirstName,
			LastName:  ref.LastName,
			JobTitle:  ref.JobTitle,
			Verified:  ref.Verified,
		})
	}
	return out
}

func (h *Handler) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req companyProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims := claimsFromContext(r.Context())
	created, err := h.companies.CreateProfile(r.Context(), claims.UserID, req.toInput())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toCompanyResponse(created))
}

func (h *Handler) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	var req companyProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims := claimsFromContext(r.Context())
	updated, err := h.companies.UpdateProfile(r.Context(), claims.UserID, req.toInput())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCompanyResponse(updated))
}

func (h *Handler) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := h.companies.DeleteProfile(r.Context(), claims.UserID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetMyCompany(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	c, err := h.companies.GetMine(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCompanyResponse(c))
}

func (h *Handler) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	c, err := h.companies.GetByID(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCompanyResponse(c))
}

func (h *Handler) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companies.ListAll(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	out := make([]companyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, toCompanyResponse(c))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListCompanyEmployees(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	refs, err := h.companies.ListEmployees(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCompanyEmployeeResponses(refs))
}

func (h *Handler) handleListVerificationRequests(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	refs, err := h.companies.ListVerificationRequests(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCompanyEmployeeResponses(refs))
}

func (h *Handler) handleVerifyEmployee(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := h.companies.VerifyEmployee(r.Context(), claims.UserID, chi.URLParam(r, "employeeID")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRejectEmployee(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := h.companies.RejectEmployee(r.Context(), claims.UserID, chi.URLParam(r, "employeeID")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveEmployee(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := h.companies.RemoveEmployee(r.Context(), claims.UserID, chi.URLParam(r, "employeeID")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
