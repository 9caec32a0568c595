package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sujal-pawar/legacy-note-api/internal/auth"
	"github.com/sujal-pawar/legacy-note-api/internal/mailer"
	"github.com/sujal-pawar/legacy-note-api/internal/model"
	"github.com/sujal-pawar/legacy-note-api/internal/repository"
)

// VerificationUsecase defines the business logic for email-ownership verification.
type VerificationUsecase interface {
	// SendVerificationOTP issues a new verification code for an
	// unverified account and emails it.
	SendVerificationOTP(ctx context.Context, email string) error

	// VerifyEmail verifies the code, marks the account verified, and
	// issues an access token.
	VerifyEmail(ctx context.Context, email, code string) (string, *model.User, error)
}

var (
	ErrAlreadyVerified = errors.New("email already verified")
	ErrOTPInvalid      = errors.New("invalid verification code")
	ErrOTPExpired      = errors.New("verification code has expired")
)

const verificationOTPExpiresIn = 10 * time.Minute

type verificationUsecase struct {
	userRepo repository.UserRepository
	mailer   mailer.Sender
	jwtAuth  *auth.JWTAuthenticator
	logger   *zerolog.Logger
}

// NewVerificationUsecase creates a new instance of VerificationUsecase.
func NewVerificationUsecase(
	userRepo repository.UserRepository,
	mailer mailer.Sender,
	jwtAuth *auth.JWTAuthenticator,
	logger *zerolog.Logger,
) VerificationUsecase {
	return &verificationUsecase{
		userRepo: userRepo,
		mailer:   mailer,
		jwtAuth:  jwtAuth,
		logger:   logger,
	}
}

func (u *verificationUsecase) SendVerificationOTP(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(verificationOTPExpiresIn)
	if err := u.userRepo.SetVerificationOTP(ctx, user.ID.Hex(), hashToken(code), expiresAt); err != nil {
		return err
	}

	if err := u.mailer.SendVerificationCode(user.Email, user.Name, code); err != nil {
		u.logger.Error().Err(err).Msg("failed to send verification code email")

		// Roll back the pending code so a stale hash never lingers.
		if clearErr := u.userRepo.ClearVerificationOTP(ctx, user.ID.Hex()); clearErr != nil {
			u.logger.Error().Err(clearErr).Msg("failed to roll back pending verification code")
		}

		return fmt.Errorf("%w: %v", ErrEmailSendFailed, err)
	}

	return nil
}

func (u *verificationUsecase) VerifyEmail(ctx context.Context, email, code string) (string, *model.User, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil, ErrUserNotFound
		}

		return "", nil, err
	}

	if user.EmailVerified {
		return "", nil, ErrAlreadyVerified
	}

	if user.VerificationOTPHash == "" {
		return "", nil, ErrOTPInvalid
	}

	if time.Now().After(user.VerificationExpiresAt) {
		return "", nil, ErrOTPExpired
	}

	if subtle.ConstantTimeCompare([]byte(hashToken(code)), []byte(user.VerificationOTPHash)) != 1 {
		return "", nil, ErrOTPInvalid
	}

	if err := u.userRepo.MarkEmailVerified(ctx, user.ID.Hex()); err != nil {
		return "", nil, err
	}
	user.EmailVerified = true
	user.VerificationOTPHash = ""

	// Best effort: a failed welcome email must not fail the verification.
	if err := u.mailer.SendWelcome(user.Email, user.Name); err != nil {
		u.logger.Error().Err(err).Msg("failed to send welcome email")
	}

	token, err := u.jwtAuth.GenerateAccessToken(user.ID.Hex(), user.Email)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}
