package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sujal-pawar/legacy-note-api/internal/auth"
	"github.com/sujal-pawar/legacy-note-api/internal/model"
	"github.com/sujal-pawar/legacy-note-api/internal/provider"
	"github.com/sujal-pawar/legacy-note-api/internal/repository"
)

// GoogleAuthUsecase defines the business logic for Google sign-in.
type GoogleAuthUsecase interface {
	// SignIn verifies a Google ID token and signs the user in, creating or
	// linking the account as needed. Google accounts are email-verified by
	// definition.
	SignIn(ctx context.Context, idToken string) (string, *model.User, error)
}

var ErrGoogleTokenInvalid = errors.New("invalid google token")

type googleAuthUsecase struct {
	userRepo repository.UserRepository
	verifier provider.GoogleVerifier
	jwtAuth  *auth.JWTAuthenticator
	logger   *zerolog.Logger
}

// NewGoogleAuthUsecase creates a new instance of GoogleAuthUsecase.
func NewGoogleAuthUsecase(
	userRepo repository.UserRepository,
	verifier provider.GoogleVerifier,
	jwtAuth *auth.JWTAuthenticator,
	logger *zerolog.Logger,
) GoogleAuthUsecase {
	return &googleAuthUsecase{
		userRepo: userRepo,
		verifier: verifier,
		jwtAuth:  jwtAuth,
		logger:   logger,
	}
}

func (u *googleAuthUsecase) SignIn(ctx context.Context, idToken string) (string, *model.User, error) {
	googleUser, err := u.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", nil, ErrGoogleTokenInvalid
	}

	if googleUser.Email == "" {
		return "", nil, ErrGoogleTokenInvalid
	}

	user, err := u.findOrCreateUser(ctx, googleUser)
	if err != nil {
		return "", nil, err
	}

	token, err := u.jwtAuth.GenerateAccessToken(user.ID.Hex(), user.Email)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (u *googleAuthUsecase) findOrCreateUser(
	ctx context.Context,
	googleUser *provider.GoogleUser,
) (*model.User, error) {
	user, err := u.userRepo.GetUserByGoogleID(ctx, googleUser.Sub)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	email := strings.ToLower(googleUser.Email)

	// A local account with the same address gets the Google identity
	// attached; its email is proven by the sign-in itself.
	user, err = u.userRepo.GetUserByEmail(ctx, email)
	if err == nil {
		if err := u.userRepo.LinkGoogleID(ctx, user.ID.Hex(), googleUser.Sub); err != nil {
			return nil, err
		}
		user.GoogleID = googleUser.Sub
		user.EmailVerified = true

		return user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	name := googleUser.Name
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	return u.userRepo.CreateUser(ctx, &model.User{
		Name:          name,
		Email:         email,
		GoogleID:      googleUser.Sub,
		EmailVerified: true,
	})
}
