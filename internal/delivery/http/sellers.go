package http

import (
	"net/http"

	"github.com/egannguyen/petsupplies/internal/entity"
)

type authResponse struct {
	Token  string         `json:"token"`
	Seller *entity.Seller `json:"seller"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg entity.SellerRegistration
	if err := decodeJSON(w, r, &reg); err != nil {
		writeError(w, r, err)
		return
	}
	token, seller, err := h.auth.Register(r.Context(), reg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, Seller: seller})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	token, seller, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, Seller: seller})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	seller, err := h.auth.Profile(r.Context(), sellerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seller)
}
