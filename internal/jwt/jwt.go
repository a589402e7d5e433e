// Package jwt issues and validates the three token types used by the auth
// flow. Each type has its own secret and claim shape.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	errMissingClaim = errors.New("token is missing its subject claim")
)

// AccessClaims is carried by access and refresh tokens.
type AccessClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// EmailClaims is carried by email verification tokens only.
type EmailClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Config holds secrets and lifetimes for each token type.
type Config struct {
	AccessSecret      string
	RefreshSecret     string
	VerifyEmailSecret string
	AccessTTL         time.Duration
	RefreshTTL        time.Duration
	VerifyEmailTTL    time.Duration
}

type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	verifyEmailSecret []byte
	accessTTL         time.Duration
	refreshTTL        time.Duration
	verifyEmailTTL    time.Duration
	now               func() time.Time
}

// NewJWTService creates a token service. Zero TTLs fall back to 24h, 7d and 24h.
func NewJWTService(cfg Config) *JWTService {
	s := &JWTService{
		accessSecret:      []byte(cfg.AccessSecret),
		refreshSecret:     []byte(cfg.RefreshSecret),
		verifyEmailSecret: []byte(cfg.VerifyEmailSecret),
		accessTTL:         cfg.AccessTTL,
		refreshTTL:        cfg.RefreshTTL,
		verifyEmailTTL:    cfg.VerifyEmailTTL,
		now:               time.Now,
	}
	if s.accessTTL <= 0 {
		s.accessTTL = 24 * time.Hour
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = 7 * 24 * time.Hour
	}
	if s.verifyEmailTTL <= 0 {
		s.verifyEmailTTL = 24 * time.Hour
	}
	return s
}

// WithClock replaces the clock used for issuing and validating tokens.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// RefreshTTL is the refresh token lifetime, used for the cookie max-age.
func (s *JWTService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *JWTService) IssueAccessToken(userID string) (string, error) {
	return s.sign(&AccessClaims{ID: userID, RegisteredClaims: s.registered(s.accessTTL)}, s.accessSecret)
}

func (s *JWTService) IssueRefreshToken(userID string) (string, error) {
	return s.sign(&AccessClaims{ID: userID, RegisteredClaims: s.registered(s.refreshTTL)}, s.refreshSecret)
}

func (s *JWTService) IssueEmailVerificationToken(email string) (string, error) {
	return s.sign(&EmailClaims{Email: email, RegisteredClaims: s.registered(s.verifyEmailTTL)}, s.verifyEmailSecret)
}

// VerifyAccessToken returns the claims of a valid access token, or false.
func (s *JWTService) VerifyAccessToken(token string) (*AccessClaims, bool) {
	claims := &AccessClaims{}
	if err := s.parse(token, claims, s.accessSecret); err != nil || claims.ID == "" {
		return nil, false
	}
	return claims, true
}

func (s *JWTService) VerifyRefreshToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(token, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, errMissingClaim)
	}
	return claims, nil
}

// VerifyEmailVerificationToken returns the email the token was issued for.
func (s *JWTService) VerifyEmailVerificationToken(token string) (string, error) {
	claims := &EmailClaims{}
	if err := s.parse(token, claims, s.verifyEmailSecret); err != nil {
		return "", err
	}
	if claims.Email == "" {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, errMissingClaim)
	}
	return claims.Email, nil
}

func (s *JWTService) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *JWTService) sign(claims jwt.Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) parse(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
