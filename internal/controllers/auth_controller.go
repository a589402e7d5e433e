package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shortify-be/internal/apperr"
	"shortify-be/internal/models"
	"shortify-be/internal/service"
)

const refreshCookieName = "refreshToken"

// CookieConfig controls the refresh token cookie.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type AuthController struct {
	authService service.AuthService
	cookie      CookieConfig
	logger      *slog.Logger
}

func NewAuthController(authService service.AuthService, cookie CookieConfig, logger *slog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

func (ac *AuthController) setRefreshCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/auth",
		MaxAge:   int(ac.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   ac.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (ac *AuthController) clearRefreshCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ac.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SignUp handles POST /auth/signUp
func (ac *AuthController) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ac.authService.SignUp(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusCreated, models.SignUpResponse{
		Status:  true,
		Message: service.MsgSignUp,
		Email:   user.Email,
	})
}

// SignIn handles POST /auth/signIn
func (ac *AuthController) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sess, err := ac.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}

	ac.setRefreshCookie(c, sess.RefreshToken)
	c.JSON(http.StatusOK, models.SignInResponse{
		Status:      true,
		Message:     service.MsgSignIn,
		AccessToken: sess.AccessToken,
		Email:       sess.User.Email,
	})
}

// VerifyEmail handles GET /auth/verify-email?email=&token=
func (ac *AuthController) VerifyEmail(c *gin.Context) {
	var q models.VerifyEmailQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, models.StatusResponse{
			Status:  false,
			Message: "Email and token are required for verification.",
		})
		return
	}

	sess, err := ac.authService.VerifyEmail(c.Request.Context(), q.Email, q.Token)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}

	ac.setRefreshCookie(c, sess.RefreshToken)
	c.JSON(http.StatusOK, models.VerifyEmailResponse{
		Status:       true,
		Message:      service.MsgEmailVerified,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		Email:        sess.User.Email,
	})
}

// GoogleSignIn handles POST /auth/google-signIn
func (ac *AuthController) GoogleSignIn(c *gin.Context) {
	var req models.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sess, err := ac.authService.GoogleSign(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}

	ac.setRefreshCookie(c, sess.RefreshToken)
	c.JSON(http.StatusOK, models.SignInResponse{
		Status:      true,
		Message:     service.MsgSignIn,
		AccessToken: sess.AccessToken,
		Email:       sess.User.Email,
	})
}

// ResendVerification handles POST /auth/resend-verification
func (ac *AuthController) ResendVerification(c *gin.Context) {
	var req models.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := ac.authService.ResendVerificationEmail(c.Request.Context(), req.Email); err != nil {
		respondError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{Status: true, Message: service.MsgVerificationSent})
}

// Refresh handles POST /auth/refresh using the refresh cookie
func (ac *AuthController) Refresh(c *gin.Context) {
	token, err := c.Cookie(refreshCookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, models.StatusResponse{
			Status:  false,
			Message: "Refresh token missing",
		})
		return
	}

	access, err := ac.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		// a rejected cookie is useless to the browser
		if apperr.Is(err, apperr.InvalidToken) {
			ac.clearRefreshCookie(c)
		}
		respondError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.RefreshResponse{Status: true, AccessToken: access})
}

// Logout handles POST /auth/logout. Tokens are stateless; only the cookie is cleared.
func (ac *AuthController) Logout(c *gin.Context) {
	if _, err := c.Cookie(refreshCookieName); err != nil {
		c.JSON(http.StatusBadRequest, models.StatusResponse{
			Status:  false,
			Message: "No active session",
		})
		return
	}

	ac.clearRefreshCookie(c)
	c.JSON(http.StatusOK, models.StatusResponse{Status: true, Message: "Logged out successfully"})
}
