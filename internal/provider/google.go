package provider

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

var (
	ErrInvalidGoogleToken    = errors.New("invalid google id token")
	ErrInvalidGoogleAudience = errors.New("invalid google audience")
)

// GoogleUser is the identity asserted by a verified Google ID token.
type GoogleUser struct {
	Sub           string
	Email         string
	Name          string
	EmailVerified bool
}

// GoogleVerifier verifies Google ID tokens.
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleUser, error)
}

type googleOAuthProvider struct {
	clientID string
}

// NewGoogleOAuthProvider creates a GoogleVerifier bound to the given OAuth client ID.
func NewGoogleOAuthProvider(clientID string) GoogleVerifier {
	return &googleOAuthProvider{clientID: clientID}
}

func (p *googleOAuthProvider) VerifyIDToken(ctx context.Context, rawToken string) (*GoogleUser, error) {
	payload, err := idtoken.Validate(ctx, rawToken, p.clientID)
	if err != nil {
		return nil, ErrInvalidGoogleToken
	}

	if payload.Audience != p.clientID {
		return nil, ErrInvalidGoogleAudience
	}

	user := &GoogleUser{Sub: payload.Subject}

	if email, ok := payload.Claims["email"].(string); ok {
		user.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		user.Name = name
	}

	// The email_verified claim arrives as a bool or the string "true"
	// depending on the token variant.
	switch v := payload.Claims["email_verified"].(type) {
	case bool:
		user.EmailVerified = v
	case string:
		user.EmailVerified = v == "true"
	}

	return user, nil
}
