package store

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// RetryPolicy bounds how long NewPostgres waits for the database to accept
// connections.
type RetryPolicy struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
}

// DefaultRetry tolerates a database that is still starting up.
var DefaultRetry = RetryPolicy{Attempts: 5, Initial: 250 * time.Millisecond, Max: 5 * time.Second}

// retryConnect calls fn until it succeeds, fails with a non-transient
// error, runs out of attempts or ctx ends. The last error is returned.
func retryConnect[T any](ctx context.Context, p RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if ctx.Err() != nil || !transient(err) || attempt == p.Attempts {
			break
		}

		delay := backoff(attempt, p)
		zap.L().Warn("postgres: connect failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

// backoff doubles from p.Initial up to p.Max with ±25% jitter.
func backoff(attempt int, p RetryPolicy) time.Duration {
	d := p.Initial << (attempt - 1)
	if d <= 0 || (p.Max > 0 && d > p.Max) {
		d = p.Max
	}
	jitter := (rand.Float64()*0.5 - 0.25) * float64(d)
	return d + time.Duration(jitter)
}

// transient reports errors worth another connection attempt.
func transient(err error) bool {
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}
