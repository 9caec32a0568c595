package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sujal-pawar/legacy-note-api/internal/auth"
	"github.com/sujal-pawar/legacy-note-api/internal/model"
	"github.com/sujal-pawar/legacy-note-api/internal/repository"
	"github.com/sujal-pawar/legacy-note-api/internal/security"
)

// AuthUsecase defines the business logic for account registration and login.
type AuthUsecase interface {
	// Register creates an unverified account and emails it a verification code.
	Register(ctx context.Context, params RegisterParams) (*model.User, error)

	// Login verifies credentials and issues an access token. An unverified
	// account gets a fresh verification code instead of a token.
	Login(ctx context.Context, params LoginParams) (string, *model.User, error)

	// GetUser returns the account identified by id.
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailSendFailed    = errors.New("failed to send email")
)

type authUsecase struct {
	userRepo     repository.UserRepository
	verification VerificationUsecase
	jwtAuth      *auth.JWTAuthenticator
	logger       *zerolog.Logger
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	verification VerificationUsecase,
	jwtAuth *auth.JWTAuthenticator,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		userRepo:     userRepo,
		verification: verification,
		jwtAuth:      jwtAuth,
		logger:       logger,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Name:         params.Name,
		Email:        strings.ToLower(params.Email),
		PasswordHash: passwordHash,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}

	if err := u.verification.SendVerificationOTP(ctx, user.Email); err != nil {
		return nil, err
	}

	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (string, *model.User, error) {
	user, err := u.userRepo.GetUserByEmailWithPassword(ctx, strings.ToLower(params.Email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil, ErrInvalidCredentials
		}

		return "", nil, err
	}

	// Google-only accounts have no local password.
	if user.PasswordHash == "" {
		return "", nil, ErrInvalidCredentials
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return "", nil, err
	} else if !ok {
		return "", nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		if err := u.verification.SendVerificationOTP(ctx, user.Email); err != nil {
			u.logger.Error().Err(err).Msg("failed to resend verification code on login")
		}

		return "", nil, ErrEmailNotVerified
	}

	token, err := u.jwtAuth.GenerateAccessToken(user.ID.Hex(), user.Email)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (u *authUsecase) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}
