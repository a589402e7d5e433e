package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shortify-be/internal/apperr"
	"shortify-be/internal/entities"
	"shortify-be/internal/jwt"
	"shortify-be/internal/oauth"
	"shortify-be/internal/repository"
)

const bcryptCost = 10

// Client-facing messages.
const (
	MsgSignUp           = "User created successfully. Please verify your email."
	MsgSignIn           = "Sign in successfully completed"
	MsgEmailVerified    = "Email verified successfully"
	MsgVerificationSent = "A verification link has been sent to your email."
	msgUserExists       = "User already exists. Please use a different email."
	msgPendingExists    = "User already registered but not verified. Please verify your email."
	msgInvalidCreds     = "Invalid email or password"
	msgNotVerified      = "Email not verified. Please verify your email."
	msgUserNotFound     = "User not found. Please register again."
	msgAlreadyVerified  = "Already verified email, please login"
	msgInvalidLink      = "Verification link is invalid or expired. Please request a new one."
	msgInvalidGoogle    = "Invalid token"
	msgGoogleNoEmail    = "Google account does not have an email"
	msgGoogleUnverified = "User account is not verified"
	msgGoogleUnattested = "Google has not verified this email address"
	msgInvalidRefresh   = "Token not valid, Access declined"
	msgPasswordTooLong  = "Password is too long"
)

// MailDispatcher queues verification emails without blocking.
type MailDispatcher interface {
	Dispatch(email, token string) bool
}

// Session is what a successful sign-in produces.
type Session struct {
	User         *entities.User
	AccessToken  string
	RefreshToken string
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	SignUp(ctx context.Context, fullName, email, password string) (*entities.User, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	VerifyEmail(ctx context.Context, email, token string) (*Session, error)
	ResendVerificationEmail(ctx context.Context, email string) error
	GoogleSign(ctx context.Context, idToken string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *jwt.JWTService
	mail       MailDispatcher
	verifier   oauth.Verifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *jwt.JWTService,
	mail MailDispatcher,
	verifier oauth.Verifier,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		mail:       mail,
		verifier:   verifier,
		logger:     logger,
		now:        time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers a pending user and sends the verification email.
func (s *authService) SignUp(ctx context.Context, fullName, email, password string) (*entities.User, error) {
	const op = "auth.SignUp"
	email = normalizeEmail(email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		return nil, apperr.E(op, apperr.Conflict, msgUserExists, nil)
	case err == nil && !existing.PendingExpired(s.now()):
		return nil, apperr.E(op, apperr.InvalidState, msgPendingExists, nil)
	case err == nil:
		// the pending window lapsed; the address is free again
		if err := s.userRepo.DeletePending(ctx, existing.ID); err != nil {
			return nil, apperr.E(op, apperr.Internal, "", err)
		}
		s.logger.InfoContext(ctx, "removed expired pending user", slog.String("email", email))
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperr.E(op, apperr.Internal, "", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperr.E(op, apperr.Validation, msgPasswordTooLong, err)
	}
	if err != nil {
		return nil, apperr.E(op, apperr.Internal, "", err)
	}
	hashStr := string(hash)

	user, err := s.userRepo.Create(ctx, &entities.User{
		FullName:     strings.TrimSpace(fullName),
		Email:        email,
		PasswordHash: &hashStr,
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, apperr.E(op, apperr.Conflict, msgUserExists, err)
	}
	if err != nil {
		return nil, apperr.E(op, apperr.Internal, "", err)
	}

	if err := s.sendVerification(ctx, email); err != nil {
		// the account exists; the user can ask for another link
		s.logger.ErrorContext(ctx, "failed to issue verification token",
			slog.String("email", email), slog.Any("error", err))
	}

	s.logger.InfoContext(ctx, "user signed up", slog.String("user_id", user.ID))
	return user, nil
}

// SignIn checks credentials of a verified user and opens a session.
func (s *authService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	const op = "auth.SignIn"
	email = normalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.E(op, apperr.Unauthorized, msgInvalidCreds, nil)
	}
	if err != nil {
		return nil, apperr.E(op, apperr.Internal, "", err)
	}

	if !user.IsVerified {
		return nil, apperr.E(op, apperr.Forbidden, msgNotVerified, nil)
	}
	if !user.HasLocalPassword() {
		return nil, apperr.E(op, apperr.Unauthorized, msgInvalidCreds, nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.E(op, apperr.Unauthorized, msgInvalidCreds, nil)
	}

	return s.openSession(op, user)
}

// VerifyEmail marks the account verified and signs the user in.
func (s *authService) VerifyEmail(ctx context.Context, email, token string) (*Session, error) {
	const op = "auth.VerifyEmail"
	email = normalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.E(op, apperr.NotFound, msgUserNotFound, nil)
	}
	if err != nil {
		return nil, apperr.E(op, apperr.Internal, "", err)
	}
	if user.IsVerified {
		return nil, apperr.E(op, apperr.InvalidState, msgAlreadyVerified, nil)
	}

	decoded, err := s.jwtService.VerifyEmailVerificationToken(token)
	if err != nil {
		return nil, apperr.E(op, apperr.Unauthorized, msgInvalidLink, err)
	}
	if decoded != email {
		return nil, apperr.E(op, apperr.Unauthorized, msgInvalidLink, nil)
	}

	if err := s.userRepo.MarkVerified(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.E(op, apperr.NotFound, msgUserNotFound, err)
		}
		return nil, apperr.E(op, apperr.Internal, "", err)
	}
	user.IsVerified = true

	s.logger.InfoContext(ctx, "email verified", slog.String("user_id", user.ID))
	return s.openSession(op, user)
}

// ResendVerificationEmail issues a fresh link. The outcome is the same
// whether or not the address belongs to a pending account.
func (s *authService) ResendVerificationEmail(ctx context.Context, email string) error {
	const op = "auth.ResendVerificationEmail"
	if err := s.sendVerification(ctx, normalizeEmail(email)); err != nil {
		return apperr.E(op, apperr.Internal, "", err)
	}
	return nil
}

// GoogleSign signs in with a Google ID token, creating a verified account
// without a local password on first use.
func (s *authService) GoogleSign(ctx context.Context, idToken string) (*Session, error) {
	const op = "auth.GoogleSign"

	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidIDToken) {
			return nil, apperr.E(op, apperr.Unauthorized, msgInvalidGoogle, err)
		}
		return nil, apperr.E(op, apperr.Internal, "", err)
	}
	if identity.Email == "" {
		return nil, apperr.E(op, apperr.Validation, msgGoogleNoEmail, nil)
	}
	if !identity.EmailVerified {
		return nil, apperr.E(op, apperr.Forbidden, msgGoogleUnattested, nil)
	}
	email := normalizeEmail(identity.Email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		user, err = s.createGoogleUser(ctx, identity.Name, email)
		if err != nil {
			return nil, apperr.E(op, apperr.Internal, "", err)
		}
	case err != nil:
		return nil, apperr.E(op, apperr.Internal, "", err)
	}

	if !user.IsVerified {
		return nil, apperr.E(op, apperr.Forbidden, msgGoogleUnverified, nil)
	}

	return s.openSession(op, user)
}

func (s *authService) createGoogleUser(ctx context.Context, name, email string) (*entities.User, error) {
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	user, err := s.userRepo.Create(ctx, &entities.User{
		FullName:   name,
		Email:      email,
		IsVerified: true,
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// lost a race with a concurrent sign-in for the same address
		return s.userRepo.FindByEmail(ctx, email)
	}
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user created from google sign-in", slog.String("user_id", user.ID))
	return user, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	const op = "auth.Refresh"

	claims, err := s.jwtService.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", apperr.E(op, apperr.InvalidToken, msgInvalidRefresh, err)
	}

	if _, err := s.userRepo.FindByID(ctx, claims.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.E(op, apperr.InvalidToken, msgInvalidRefresh, err)
		}
		return "", apperr.E(op, apperr.Internal, "", err)
	}

	token, err := s.jwtService.IssueAccessToken(claims.ID)
	if err != nil {
		return "", apperr.E(op, apperr.Internal, "", err)
	}
	return token, nil
}

func (s *authService) sendVerification(ctx context.Context, email string) error {
	token, err := s.jwtService.IssueEmailVerificationToken(email)
	if err != nil {
		return err
	}
	if !s.mail.Dispatch(email, token) {
		s.logger.WarnContext(ctx, "verification email not queued", slog.String("email", email))
	}
	return nil
}

func (s *authService) openSession(op string, user *entities.User) (*Session, error) {
	access, err := s.jwtService.IssueAccessToken(user.ID)
	if err != nil {
		return nil, apperr.E(op, apperr.Internal, "", err)
	}
	refresh, err := s.jwtService.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, apperr.E(op, apperr.Internal, "", err)
	}
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
