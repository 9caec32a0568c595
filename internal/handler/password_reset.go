package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sujal-pawar/legacy-note-api/internal/usecase"
)

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, usecase.ErrEmailSendFailed) {
			writeError(w, http.StatusInternalServerError, "failed to send password reset email")
			return
		}

		h.logger.Error().Err(err).Msg("failed to request password reset")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	// Unknown addresses get the same answer as known ones.
	writeSuccess(w, http.StatusOK, map[string]any{
		"data": "if that email is registered, a reset link is on its way",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	resetToken := chi.URLParam(r, "resettoken")
	if resetToken == "" {
		writeError(w, http.StatusBadRequest, "missing reset token")
		return
	}

	var req ResetPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.passwordResetUsecase.ResetPassword(r.Context(), resetToken, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrResetTokenInvalid) {
			writeError(w, http.StatusBadRequest, "invalid or expired reset token")
			return
		}

		h.logger.Error().Err(err).Msg("failed to reset password")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"token": token,
	})
}
