package handler

import (
	"errors"
	"net/http"

	"github.com/sujal-pawar/legacy-note-api/internal/usecase"
)

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	token, user, err := h.verificationUsecase.VerifyEmail(r.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, usecase.ErrAlreadyVerified):
			writeError(w, http.StatusBadRequest, "email is already verified")
		case errors.Is(err, usecase.ErrOTPExpired):
			writeError(w, http.StatusBadRequest, "verification code has expired, request a new one")
		case errors.Is(err, usecase.ErrOTPInvalid):
			writeError(w, http.StatusBadRequest, "invalid verification code")
		default:
			h.logger.Error().Err(err).Msg("failed to verify email")
			writeError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  newUserResponse(user),
	})
}

func (h *AuthHandler) SendVerificationOTP(w http.ResponseWriter, r *http.Request) {
	var req SendVerificationOTPRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	err := h.verificationUsecase.SendVerificationOTP(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, usecase.ErrAlreadyVerified):
			writeError(w, http.StatusBadRequest, "email is already verified")
		case errors.Is(err, usecase.ErrEmailSendFailed):
			writeError(w, http.StatusInternalServerError, "failed to send verification email")
		default:
			h.logger.Error().Err(err).Msg("failed to send verification code")
			writeError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"data": "verification code sent",
	})
}
