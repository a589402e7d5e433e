package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shortify-be/internal/controllers"
	"shortify-be/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth      *controllers.AuthController
	Shortener *controllers.ShortenerController
	QRCode    *controllers.QRCodeController
	Tokens    middleware.TokenVerifier
	Users     middleware.UserFinder
}

// RouterConfig holds router-level settings.
type RouterConfig struct {
	AllowedOrigins []string
	Production     bool
}

// NewRouter wires middleware and routes onto a fresh gin engine.
func NewRouter(h Handlers, cfg RouterConfig, logger *slog.Logger) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.AllowedOrigins),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/signUp", h.Auth.SignUp)
		auth.POST("/signIn", h.Auth.SignIn)
		auth.GET("/verify-email", h.Auth.VerifyEmail)
		auth.POST("/google-signIn", h.Auth.GoogleSignIn)
		auth.POST("/resend-verification", h.Auth.ResendVerification)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
	}

	// Protected routes require a verified account
	url := router.Group("/url")
	url.Use(middleware.AuthMiddleware(h.Tokens), middleware.RequireVerified(h.Users, logger))
	{
		url.POST("/shortUrl", h.Shortener.Shorten)
		url.GET("/getAll", h.Shortener.GetAll)
		url.GET("/qrcode/:shortCode", h.QRCode.GenerateQRCode)
	}

	router.GET("/:shortCode", h.Shortener.Redirect)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"status": false, "message": "The requested resource was not found."})
	})

	return router
}
