package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"shortify-be/internal/apperr"
	"shortify-be/internal/cache"
	"shortify-be/internal/entities"
	"shortify-be/internal/repository"
	"shortify-be/internal/shortcode"
)

const (
	maxURLLength    = 2048
	linkLifetime    = 24 * time.Hour
	DefaultPage     = 1
	DefaultPageSize = 5
	MaxPageSize     = 100
)

const (
	MsgShortened        = "Operation completed successfully."
	MsgAlreadyShortened = "URL already shortened! Here's your existing short URL."
	msgInvalidURL       = "Please provide a valid http or https URL"
	msgURLTooLong       = "URL must be at most 2048 characters"
	msgLinkNotFound     = "The requested resource was not found."
	msgLimitReached     = "You’ve reached the limit for free URL shortens. Please register to continue."
	msgNoFreeCode       = "Could not allocate a short code. Please try again."
)

// LinkConfig tunes code generation and the redirect policy.
type LinkConfig struct {
	CodeLength  int
	MaxAttempts int
	// VisitCap blocks redirects once a link has this many visits. 0 disables it.
	VisitCap int64
}

// ShortenResult reports the link and whether it already existed.
type ShortenResult struct {
	Link     *entities.URL
	Existing bool
}

// LinkPage is one page of a user's links.
type LinkPage struct {
	URLs        []*entities.URL
	Total       int64
	TotalPages  int
	CurrentPage int
}

// URLService defines the interface for URL business logic
type URLService interface {
	Shorten(ctx context.Context, originalURL, userID string) (*ShortenResult, error)
	Resolve(ctx context.Context, shortCode string) (string, error)
	RecordVisit(ctx context.Context, shortCode string)
	ListForUser(ctx context.Context, userID string, page, pageSize int, search string) (*LinkPage, error)
	GetOwned(ctx context.Context, shortCode, userID string) (*entities.URL, error)
}

type urlService struct {
	repo   repository.URLRepository
	cache  cache.Cache
	codes  shortcode.Generator
	cfg    LinkConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewURLService creates a new URL service. cacheClient may be nil.
func NewURLService(
	repo repository.URLRepository,
	cacheClient cache.Cache,
	codes shortcode.Generator,
	cfg LinkConfig,
	logger *slog.Logger,
) URLService {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 7
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &urlService{
		repo:   repo,
		cache:  cacheClient,
		codes:  codes,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// ValidateURL checks that raw is an absolute http(s) URL with a host.
func ValidateURL(raw string) error {
	const op = "url.ValidateURL"
	if len(raw) > maxURLLength {
		return apperr.E(op, apperr.Validation, msgURLTooLong, nil)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return apperr.E(op, apperr.Validation, msgInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperr.E(op, apperr.Validation, msgInvalidURL, nil)
	}
	return nil
}

// Shorten returns the user's existing code for originalURL or creates a new one.
func (s *urlService) Shorten(ctx context.Context, originalURL, userID string) (*ShortenResult, error) {
	const op = "url.Shorten"
	originalURL = strings.TrimSpace(originalURL)

	if err := ValidateURL(originalURL); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByOwnerAndURL(ctx, userID, originalURL)
	if err == nil {
		return &ShortenResult{Link: existing, Existing: true}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.E(op, apperr.Internal, "", err)
	}

	expiresAt := s.now().Add(linkLifetime)
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		code, err := s.codes.Generate(s.cfg.CodeLength)
		if err != nil {
			return nil, apperr.E(op, apperr.Internal, "", err)
		}

		link, err := s.repo.Create(ctx, code, originalURL, userID, &expiresAt)
		switch {
		case err == nil:
			s.logger.InfoContext(ctx, "short link created",
				slog.String("short_code", link.ShortCode),
				slog.String("user_id", userID))
			return &ShortenResult{Link: link}, nil
		case errors.Is(err, repository.ErrDuplicateShortCode):
			s.logger.WarnContext(ctx, "short code collision, retrying",
				slog.String("short_code", code), slog.Int("attempt", attempt))
			continue
		case errors.Is(err, repository.ErrDuplicateURL):
			// a concurrent request shortened the same URL first
			link, err := s.repo.FindByOwnerAndURL(ctx, userID, originalURL)
			if err != nil {
				return nil, apperr.E(op, apperr.Internal, "", err)
			}
			return &ShortenResult{Link: link, Existing: true}, nil
		default:
			return nil, apperr.E(op, apperr.Internal, "", err)
		}
	}

	return nil, apperr.E(op, apperr.ExhaustedRetries, msgNoFreeCode, nil)
}

// Resolve returns the redirect target for shortCode.
func (s *urlService) Resolve(ctx context.Context, shortCode string) (string, error) {
	const op = "url.Resolve"

	if !shortcode.Valid(shortCode) {
		return "", apperr.E(op, apperr.NotFound, msgLinkNotFound, nil)
	}

	// the cap needs a fresh visit count, so the cache only serves uncapped redirects
	useCache := s.cache != nil && s.cfg.VisitCap == 0
	if useCache {
		target, err := s.cache.GetURL(ctx, shortCode)
		if err == nil {
			return target, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "cache read failed", slog.String("short_code", shortCode), slog.Any("error", err))
		}
	}

	link, err := s.repo.FindByShortCode(ctx, shortCode)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperr.E(op, apperr.NotFound, msgLinkNotFound, nil)
	}
	if err != nil {
		return "", apperr.E(op, apperr.Internal, "", err)
	}

	if s.cfg.VisitCap > 0 && link.VisitCount >= s.cfg.VisitCap {
		return "", apperr.E(op, apperr.LimitReached, msgLimitReached, nil)
	}

	if useCache {
		if err := s.cache.SetURL(ctx, shortCode, link.OriginalURL); err != nil {
			s.logger.WarnContext(ctx, "cache write failed", slog.String("short_code", shortCode), slog.Any("error", err))
		}
	}

	return link.OriginalURL, nil
}

// RecordVisit increments the visit count. Failures are logged, never returned.
func (s *urlService) RecordVisit(ctx context.Context, shortCode string) {
	if err := s.repo.IncrementVisitCount(ctx, shortCode); err != nil {
		s.logger.WarnContext(ctx, "failed to record visit",
			slog.String("short_code", shortCode), slog.Any("error", err))
	}
}

// ListForUser returns a page of the user's links, newest first.
func (s *urlService) ListForUser(ctx context.Context, userID string, page, pageSize int, search string) (*LinkPage, error) {
	const op = "url.ListForUser"

	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	urls, total, err := s.repo.ListByUser(ctx, userID, pageSize, (page-1)*pageSize, strings.TrimSpace(search))
	if err != nil {
		return nil, apperr.E(op, apperr.Internal, "", err)
	}

	return &LinkPage{
		URLs:        urls,
		Total:       total,
		TotalPages:  int((total + int64(pageSize) - 1) / int64(pageSize)),
		CurrentPage: page,
	}, nil
}

// GetOwned returns the link only if userID owns it.
func (s *urlService) GetOwned(ctx context.Context, shortCode, userID string) (*entities.URL, error) {
	const op = "url.GetOwned"

	if !shortcode.Valid(shortCode) {
		return nil, apperr.E(op, apperr.NotFound, msgLinkNotFound, nil)
	}

	link, err := s.repo.FindByShortCode(ctx, shortCode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.E(op, apperr.NotFound, msgLinkNotFound, nil)
	}
	if err != nil {
		return nil, apperr.E(op, apperr.Internal, "", err)
	}
	if link.UserID != userID {
		return nil, apperr.E(op, apperr.Forbidden, "You do not have permission to access this resource.", nil)
	}
	return link, nil
}
