// Package retry re-runs operations that failed for transient reasons.
package retry

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jpillora/backoff"
	"github.com/mattn/go-sqlite3"
)

// ErrThrottled can be wrapped by callers to mark a remote throttling response
// as transient.
var ErrThrottled = errors.New("throttled")

type Policy struct {
	Attempts int
	Min      time.Duration
	Max      time.Duration
}

var DefaultPolicy = Policy{
	Attempts: 3,
	Min:      50 * time.Millisecond,
	Max:      time.Second,
}

// IsTransient reports whether err is worth retrying: SQLite busy or locked,
// network timeouts and anything wrapping ErrThrottled.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrThrottled) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// Do runs fn until it succeeds, returns a non-transient error, the attempts
// are exhausted or ctx is done.
func Do(ctx context.Context, p Policy, fn func(context.Context) error) error {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	b := &backoff.Backoff{
		Min:    p.Min,
		Max:    p.Max,
		Factor: 2,
		Jitter: true,
	}

	var err error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		if err = fn(ctx); err == nil || !IsTransient(err) {
			return err
		}
		if attempt == p.Attempts-1 {
			break
		}
		timer := time.NewTimer(b.Duration())
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}
