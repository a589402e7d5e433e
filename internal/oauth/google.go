// Package oauth verifies third-party identity tokens.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/idtoken"
)

var ErrInvalidIDToken = errors.New("invalid identity token")

// Identity is the subset of ID-token claims the auth flow relies on.
type Identity struct {
	Email         string
	Name          string
	EmailVerified bool
}

// Verifier validates an ID token and returns the identity it asserts.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier validates Google ID tokens against the configured client ID.
type GoogleVerifier struct {
	clientID string
	timeout  time.Duration
	validate validateFunc
}

func NewGoogleVerifier(clientID string, timeout time.Duration) *GoogleVerifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleVerifier{
		clientID: clientID,
		timeout:  timeout,
		validate: idtoken.Validate,
	}
}

func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	if v.clientID == "" {
		return Identity{}, errors.New("google sign-in is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	payload, err := v.validate(ctx, idToken, v.clientID)
	if err != nil {
		if ctx.Err() != nil {
			return Identity{}, fmt.Errorf("google token validation timed out: %w", ctx.Err())
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	return identityFromClaims(payload.Claims), nil
}

func identityFromClaims(claims map[string]interface{}) Identity {
	var id Identity
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		id.Name = name
	}
	switch v := claims["email_verified"].(type) {
	case bool:
		id.EmailVerified = v
	case string:
		id.EmailVerified = v == "true"
	}
	return id
}
