package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/zonetune/zonetune/internal/api/dto"
	"github.com/zonetune/zonetune/internal/pkg/validator"
	"github.com/zonetune/zonetune/internal/soundtrack"
)

// AuthHandler exposes login and logout for user mode. When the process
// runs in token mode the tokens field is nil and both endpoints refuse.
type AuthHandler struct {
	tokens *soundtrack.TokenManager
}

func NewAuthHandler(tokens *soundtrack.TokenManager) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.tokens == nil {
		dto.ErrorResponse(w, http.StatusConflict, "not in user mode")
		return
	}

	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validator.Validate(req); err != nil {
		dto.ValidationErrorResponse(w, err)
		return
	}

	login, err := h.tokens.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var authErr *soundtrack.AuthError
		if errors.As(err, &authErr) {
			dto.ErrorResponse(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Error().Err(err).Msg("Login failed")
		dto.ErrorResponse(w, http.StatusBadGateway, "login failed")
		return
	}

	dto.JSON(w, http.StatusOK, map[string]any{
		"expiresAt": login.ExpiresAt,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.tokens == nil {
		dto.ErrorResponse(w, http.StatusConflict, "not in user mode")
		return
	}

	if err := h.tokens.Logout(r.Context()); err != nil {
		log.Error().Err(err).Msg("Logout failed")
		dto.ErrorResponse(w, http.StatusInternalServerError, "logout failed")
		return
	}
	dto.JSON(w, http.StatusOK, nil)
}
