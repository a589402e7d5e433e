package oauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/api/idtoken"
)

func TestGoogleVerifier_Verify(t *testing.T) {
	t.Run("maps claims", func(t *testing.T) {
		v := NewGoogleVerifier("client-id", time.Second)
		v.validate = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
			if audience != "client-id" {
				t.Errorf("audience = %q, want client-id", audience)
			}
			return &idtoken.Payload{Claims: map[string]interface{}{
				"email":          "g@x.com",
				"name":           "Gee",
				"email_verified": true,
			}}, nil
		}

		id, err := v.Verify(context.Background(), "tok")
		if err != nil {
			t.Fatalf("Verify() error: %v", err)
		}
		want := Identity{Email: "g@x.com", Name: "Gee", EmailVerified: true}
		if id != want {
			t.Errorf("Verify() = %+v, want %+v", id, want)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		v := NewGoogleVerifier("client-id", time.Second)
		v.validate = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
			return nil, errors.New("idtoken: audience provided does not match")
		}

		if _, err := v.Verify(context.Background(), "tok"); !errors.Is(err, ErrInvalidIDToken) {
			t.Errorf("Verify() error = %v, want ErrInvalidIDToken", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		v := NewGoogleVerifier("client-id", 10*time.Millisecond)
		v.validate = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}

		_, err := v.Verify(context.Background(), "tok")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Verify() error = %v, want DeadlineExceeded", err)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		v := NewGoogleVerifier("", 0)
		if _, err := v.Verify(context.Background(), "tok"); err == nil {
			t.Error("expected error without client id")
		}
	})
}

func TestIdentityFromClaims(t *testing.T) {
	id := identityFromClaims(map[string]interface{}{"email": "a@x.com", "email_verified": "true"})
	if id.Email != "a@x.com" || !id.EmailVerified || id.Name != "" {
		t.Errorf("identityFromClaims() = %+v", id)
	}

	if id := identityFromClaims(map[string]interface{}{}); id != (Identity{}) {
		t.Errorf("empty claims = %+v, want zero identity", id)
	}
}
