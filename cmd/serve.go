package cmd

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"shortify-be/internal/cache"
	"shortify-be/internal/controllers"
	"shortify-be/internal/jwt"
	"shortify-be/internal/mailer"
	"shortify-be/internal/models"
	"shortify-be/internal/oauth"
	"shortify-be/internal/repository"
	"shortify-be/internal/server"
	"shortify-be/internal/service"
	"shortify-be/internal/shortcode"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the background purger",
	RunE:  runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
	// the bare binary starts the API, as deployments expect
	RootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := openDatabase(ctx, true)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("database ready")

	// Redis is optional; redirects fall back to Postgres
	var urlCache cache.Cache
	if cfg.Redis.URL != "" {
		urlCache, err = cache.NewRedisCache(ctx, cfg.Redis.URL, cfg.Redis.CacheTTL)
		if err != nil {
			log.Warn("redis unavailable, continuing without cache", slog.Any("error", err))
			urlCache = nil
		} else {
			defer urlCache.Close()
			log.Info("connected to redis cache")
		}
	}

	sender, err := newMailSender()
	if err != nil {
		return err
	}
	dispatcher := mailer.NewDispatcher(sender, log, mailer.DispatcherConfig{
		RatePerSec: cfg.Mail.RatePerSec,
		Burst:      cfg.Mail.Burst,
		QueueSize:  cfg.Mail.QueueSize,
		Timeout:    cfg.Mail.Timeout,
	})

	if err := models.RegisterValidators(); err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	urlRepo := repository.NewURLRepository(db)

	tokens := jwt.NewJWTService(jwt.Config{
		AccessSecret:      cfg.JWT.AccessSecret,
		RefreshSecret:     cfg.JWT.RefreshSecret,
		VerifyEmailSecret: cfg.JWT.VerifyEmailSecret,
		AccessTTL:         cfg.JWT.AccessTTL,
		RefreshTTL:        cfg.JWT.RefreshTTL,
		VerifyEmailTTL:    cfg.JWT.VerifyEmailTTL,
	})
	if cfg.Google.ClientID == "" {
		log.Warn("GOOGLE_CLIENT_ID not set, google sign-in will fail")
	}
	verifier := oauth.NewGoogleVerifier(cfg.Google.ClientID, cfg.Google.Timeout)

	authService := service.NewAuthService(userRepo, tokens, dispatcher, verifier, log)
	urlService := service.NewURLService(urlRepo, urlCache, shortcode.NewBase62(), service.LinkConfig{
		CodeLength:  cfg.Links.CodeLength,
		MaxAttempts: cfg.Links.MaxAttempts,
		VisitCap:    cfg.Links.VisitCap,
	}, log)

	router := server.NewRouter(server.Handlers{
		Auth: controllers.NewAuthController(authService, controllers.CookieConfig{
			Secure: cfg.Server.IsProduction(),
			MaxAge: tokens.RefreshTTL(),
		}, log),
		Shortener: controllers.NewShortenerController(urlService, log),
		QRCode:    controllers.NewQRCodeController(urlService, cfg.Server.BaseURL, log),
		Tokens:    tokens,
		Users:     userRepo,
	}, server.RouterConfig{
		AllowedOrigins: allowedOrigins(),
		Production:     cfg.Server.IsProduction(),
	}, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		service.NewPurger(userRepo, cfg.Links.PurgeInterval, log).Run(ctx)
	}()

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, log)

	runErr := srv.Run(ctx)

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := dispatcher.Close(drainCtx); err != nil {
		log.Warn("mail queue not fully drained", slog.Any("error", err))
	}
	wg.Wait()

	return runErr
}

// newMailSender picks SMTP when a host is configured, otherwise links are logged.
func newMailSender() (mailer.Sender, error) {
	if cfg.Mail.Host == "" {
		log.Warn("SMTP_HOST not set, verification links will be logged")
		return mailer.NewLogSender(log, cfg.Server.BaseURL), nil
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.Sender(),
		BaseURL:  cfg.Server.BaseURL,
		Timeout:  cfg.Mail.Timeout,
	})
}

func allowedOrigins() []string {
	if cfg.Server.FrontendURL == "" {
		return nil
	}
	return []string{cfg.Server.FrontendURL}
}
