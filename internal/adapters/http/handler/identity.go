package handler

import (
	"net/http"

	"github.com/ogurasousui/jobswap-backend/internal/core/identity"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type setRoleRequest struct {
	Role string `json:"role"`
}

type roleResponse struct {
	Role string `json:"role"`
}

type accountResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func toSessionResponse(s *identity.Session) sessionResponse {
	return sessionResponse{Token: s.Token, UserID: s.UserID, Email: s.Email, Name: s.Name}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.identity.Register(r.Context(), identity.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.identity.Login(r.Context(), identity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	u, err := h.identity.GetUser(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, accountResponse{ID: u.ID, Email: u.Email, Name: u.Name})
}

func (h *Handler) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims := claimsFromContext(r.Context())
	if err := h.identity.SetRole(r.Context(), claims.UserID, identity.Role(req.Role)); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetRole(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	account, err := h.identity.GetRole(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, roleResponse{Role: string(account.Role)})
}

func (h *Handler) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := h.identity.DeleteRole(r.Context(), claims.UserID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
