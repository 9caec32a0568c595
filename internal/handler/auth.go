package handler

import (
	"errors"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/sujal-pawar/legacy-note-api/internal/middleware"
	"github.com/sujal-pawar/legacy-note-api/internal/usecase"
)

// AuthHandler serves the /api/auth HTTP surface.
type AuthHandler struct {
	authUsecase          usecase.AuthUsecase
	verificationUsecase  usecase.VerificationUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	googleAuthUsecase    usecase.GoogleAuthUsecase
	validate             *validator.Validate
	trans                ut.Translator
	logger               *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	verificationUsecase usecase.VerificationUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	googleAuthUsecase usecase.GoogleAuthUsecase,
	logger *zerolog.Logger,
) *AuthHandler {
	validate, trans := newValidator()

	return &AuthHandler{
		authUsecase:          authUsecase,
		verificationUsecase:  verificationUsecase,
		passwordResetUsecase: passwordResetUsecase,
		googleAuthUsecase:    googleAuthUsecase,
		validate:             validate,
		trans:                trans,
		logger:               logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserAlreadyExists):
			writeError(w, http.StatusBadRequest, "an account with this email already exists")
		case errors.Is(err, usecase.ErrEmailSendFailed):
			writeError(w, http.StatusInternalServerError, "failed to send verification email")
		default:
			h.logger.Error().Err(err).Msg("failed to register user")
			writeError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{
		"user":              newUserResponse(user),
		"needsVerification": true,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	token, user, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, usecase.ErrEmailNotVerified):
			writeJSON(w, http.StatusForbidden, map[string]any{
				"success":           false,
				"error":             "email address is not verified, a new verification code was sent",
				"needsVerification": true,
			})
		default:
			h.logger.Error().Err(err).Msg("failed to log in user")
			writeError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  newUserResponse(user),
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized to access this route")
		return
	}

	user, err := h.authUsecase.GetUser(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}

		h.logger.Error().Err(err).Msg("failed to load current user")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"user": newUserResponse(user),
	})
}

func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req GoogleSignInRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	token, user, err := h.googleAuthUsecase.SignIn(r.Context(), req.Credential)
	if err != nil {
		if errors.Is(err, usecase.ErrGoogleTokenInvalid) {
			writeError(w, http.StatusUnauthorized, "invalid google credential")
			return
		}

		h.logger.Error().Err(err).Msg("failed to sign in with google")
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  newUserResponse(user),
	})
}
