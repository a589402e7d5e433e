package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shortify-be/internal/entities"
	"shortify-be/internal/jwt"
	"shortify-be/internal/repository"
)

const userIDKey = "user_id"

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*jwt.AccessClaims, bool)
}

// UserFinder loads the authenticated user.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*entities.User, error)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": false, "message": message})
}

// AuthMiddleware requires a valid "Bearer <access token>" header and stores
// the user id in the context.
func AuthMiddleware(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusUnauthorized, "You must be logged in to access this feature.")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			abort(c, http.StatusUnauthorized, "Authorization header must be in format: Bearer {token}")
			return
		}

		claims, valid := tokens.VerifyAccessToken(strings.TrimSpace(token))
		if !valid {
			abort(c, http.StatusUnauthorized, "Token not valid, Access declined")
			return
		}

		c.Set(userIDKey, claims.ID)
		c.Next()
	}
}

// RequireVerified must run after AuthMiddleware. It rejects deleted and
// unverified accounts.
func RequireVerified(users UserFinder, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "You must be logged in to access this feature.")
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if errors.Is(err, repository.ErrNotFound) {
			abort(c, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			logger.ErrorContext(c.Request.Context(), "failed to load user",
				slog.String("user_id", userID), slog.Any("error", err))
			abort(c, http.StatusInternalServerError, "An error has occurred. Please try again later.")
			return
		}
		if !user.IsVerified {
			abort(c, http.StatusForbidden, "Please verify your email before using this feature.")
			return
		}

		c.Next()
	}
}

// UserID returns the id stored by AuthMiddleware.
func UserID(c *gin.Context) (string, bool) {
	id, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	s, ok := id.(string)
	return s, ok && s != ""
}
