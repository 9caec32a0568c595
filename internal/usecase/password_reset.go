package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sujal-pawar/legacy-note-api/internal/auth"
	"github.com/sujal-pawar/legacy-note-api/internal/mailer"
	"github.com/sujal-pawar/legacy-note-api/internal/repository"
	"github.com/sujal-pawar/legacy-note-api/internal/security"
)

// PasswordResetUsecase defines the business logic for password reset operations.
type PasswordResetUsecase interface {
	// RequestPasswordReset initiates the password reset process for a given email.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a raw reset token, sets the new password, and
	// issues a fresh access token.
	ResetPassword(ctx context.Context, rawToken, newPassword string) (string, error)
}

var ErrResetTokenInvalid = errors.New("invalid or expired password reset token")

const passwordResetExpiresIn = 30 * time.Minute

type passwordResetUsecase struct {
	userRepo    repository.UserRepository
	mailer      mailer.Sender
	jwtAuth     *auth.JWTAuthenticator
	frontendURL string
	logger      *zerolog.Logger
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	mailer mailer.Sender,
	jwtAuth *auth.JWTAuthenticator,
	frontendURL string,
	logger *zerolog.Logger,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:    userRepo,
		mailer:      mailer,
		jwtAuth:     jwtAuth,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// To prevent email enumeration, do not reveal that the email does not exist.
			return nil
		}

		return err
	}

	rawToken, err := generateResetToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(passwordResetExpiresIn)
	if err := u.userRepo.SetResetToken(ctx, user.ID.Hex(), hashToken(rawToken), expiresAt); err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s/resetpassword/%s", strings.TrimRight(u.frontendURL, "/"), rawToken)

	if err := u.mailer.SendPasswordReset(user.Email, user.Name, resetLink); err != nil {
		u.logger.Error().Err(err).Msg("failed to send password reset email")

		if clearErr := u.userRepo.ClearResetToken(ctx, user.ID.Hex()); clearErr != nil {
			u.logger.Error().Err(clearErr).Msg("failed to roll back pending reset token")
		}

		return fmt.Errorf("%w: %v", ErrEmailSendFailed, err)
	}

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, rawToken, newPassword string) (string, error) {
	user, err := u.userRepo.GetUserByResetTokenHash(ctx, hashToken(rawToken))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrResetTokenInvalid
		}

		return "", err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return "", err
	}

	if err := u.userRepo.UpdatePassword(ctx, user.ID.Hex(), passwordHash); err != nil {
		return "", err
	}

	if err := u.userRepo.ClearResetToken(ctx, user.ID.Hex()); err != nil {
		return "", err
	}

	// Best effort: the reset already succeeded.
	if err := u.mailer.SendPasswordChanged(user.Email, user.Name); err != nil {
		u.logger.Error().Err(err).Msg("failed to send password changed email")
	}

	token, err := u.jwtAuth.GenerateAccessToken(user.ID.Hex(), user.Email)
	if err != nil {
		return "", err
	}

	return token, nil
}
