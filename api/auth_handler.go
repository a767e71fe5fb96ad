package api

import (
	"encoding/json"
	"firechat/auth"
	"net/http"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.Register(payload.Email, payload.Password, payload.DisplayName, payload.PhotoURL)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tokenResponse{Token: token.String()})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.Login(payload.Email, payload.Password)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tokenResponse{Token: token.String()})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFrom(r.Context())
	if err := h.auth.Logout(token); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFrom(r.Context())
	respondJSON(w, http.StatusOK, principalResponse{
		ID:          principal.ID,
		Email:       principal.Email,
		DisplayName: principal.DisplayName,
		PhotoURL:    principal.PhotoURL,
	})
}
