package service

import (
	"context"
	"log/slog"
	"time"

	"shortify-be/internal/entities"
	"shortify-be/internal/repository"
)

// Purger deletes unverified accounts older than entities.PendingTTL.
type Purger struct {
	users    repository.UserRepository
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewPurger(users repository.UserRepository, interval time.Duration, logger *slog.Logger) *Purger {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Purger{
		users:    users,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// PurgeOnce runs a single sweep and returns how many accounts were removed.
func (p *Purger) PurgeOnce(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-entities.PendingTTL)
	n, err := p.users.DeleteExpiredUnverified(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		p.logger.InfoContext(ctx, "purged unverified users", slog.Int64("count", n))
	}
	return n, nil
}

// Run sweeps immediately and then every interval until ctx is cancelled.
func (p *Purger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if _, err := p.PurgeOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.ErrorContext(ctx, "purge failed", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
