package mailer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type job struct {
	email string
	token string
}

// DispatcherConfig controls pacing and buffering of outgoing mail.
type DispatcherConfig struct {
	RatePerSec float64
	Burst      int
	QueueSize  int
	Timeout    time.Duration
}

// Dispatcher sends mail in the background so request handlers never wait
// on SMTP. Sends are paced by a token bucket; a full queue drops the message.
type Dispatcher struct {
	sender  Sender
	logger  *slog.Logger
	limiter *rate.Limiter
	timeout time.Duration

	queue     chan job
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewDispatcher starts the worker goroutine. Call Close to drain and stop it.
func NewDispatcher(sender Sender, logger *slog.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	d := &Dispatcher{
		sender:  sender,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		timeout: cfg.Timeout,
		queue:   make(chan job, cfg.QueueSize),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Dispatch enqueues a verification email. It never blocks and reports
// whether the message was accepted.
func (d *Dispatcher) Dispatch(email, token string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("mail dispatcher closed, dropping email", slog.String("email", email))
		return false
	}

	select {
	case d.queue <- job{email: email, token: token}:
		return true
	default:
		d.logger.Warn("mail queue full, dropping email", slog.String("email", email))
		return false
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for j := range d.queue {
		if err := d.limiter.Wait(context.Background()); err != nil {
			d.logger.Error("mail limiter failed", slog.Any("error", err))
			continue
		}
		d.send(j)
	}
}

func (d *Dispatcher) send(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sender.SendVerification(ctx, j.email, j.token); err != nil {
		d.logger.Error("failed to send verification email",
			slog.String("email", j.email),
			slog.Any("error", err),
		)
		return
	}
	d.logger.Info("verification email sent", slog.String("email", j.email))
}

// Close stops accepting mail and waits until queued messages are sent or ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
