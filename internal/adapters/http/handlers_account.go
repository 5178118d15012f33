package http

import (
	"net/http"

	"github.com/wdvjq5v655-netizen/gym/internal/application"
)

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req application.SignupRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "signup", err)
		return
	}
	res, err := h.service.Signup(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "signup", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}
	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token, _ := tokenFromContext(r)
	if err := h.service.Logout(r.Context(), token); err != nil {
		writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "logged out")
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session")
		return
	}
	writeSuccess(w, http.StatusOK, user.Public())
}

func (h *Handler) creditBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session")
		return
	}
	profile, err := h.service.CreditBalance(r.Context(), user.ID)
	if err != nil {
		writeMappedError(r.Context(), w, "credit_balance", err)
		return
	}
	writeSuccess(w, http.StatusOK, profile)
}

func (h *Handler) redeemCredits(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session")
		return
	}
	var req struct {
		Credits int `json:"credits"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "redeem_credits", err)
		return
	}
	res, err := h.service.RedeemCredits(r.Context(), user.ID, req.Credits)
	if err != nil {
		writeMappedError(r.Context(), w, "redeem_credits", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
