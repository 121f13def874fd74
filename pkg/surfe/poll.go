package surfe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultMaxAttempts  = 60
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ProgressFunc is called after every non-terminal poll.
type ProgressFunc func(jobID string, status JobStatus, attempt int)

// PollOption configures polling behavior.
type PollOption func(*pollConfig)

type pollConfig struct {
	interval    time.Duration
	maxAttempts int
	sleep       Sleeper
	progress    ProgressFunc
}

func defaultPollConfig() pollConfig {
	return pollConfig{
		interval:    defaultPollInterval,
		maxAttempts: defaultMaxAttempts,
		sleep:       sleepContext,
	}
}

// WithPollInterval overrides the fixed delay between status checks.
func WithPollInterval(d time.Duration) PollOption {
	return func(c *pollConfig) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithMaxAttempts overrides how many status checks are made before giving up.
func WithMaxAttempts(n int) PollOption {
	return func(c *pollConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithSleeper replaces the wait between polls.
func WithSleeper(s Sleeper) PollOption {
	return func(c *pollConfig) {
		if s != nil {
			c.sleep = s
		}
	}
}

// WithProgress registers a callback invoked after every non-terminal poll.
func WithProgress(fn ProgressFunc) PollOption {
	return func(c *pollConfig) {
		c.progress = fn
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// snapshot is one observation of a job.
type snapshot[T any] struct {
	value   T
	status  JobStatus
	failure json.RawMessage
}

// pollJob checks a job until it reaches a terminal state or the attempt
// budget runs out. No wait follows the final attempt.
func pollJob[T any](ctx context.Context, jobID string, fetch func(context.Context) (snapshot[T], error), opts []PollOption) (T, error) {
	cfg := defaultPollConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		snap, err := fetch(ctx)
		if err != nil {
			return zero, eris.Wrap(err, fmt.Sprintf("surfe: poll enrichment %s", jobID))
		}

		if snap.status.Terminal() {
			if snap.status == StatusFailed {
				return zero, &EnrichmentFailedError{JobID: jobID, Payload: snap.failure}
			}
			return snap.value, nil
		}

		if cfg.progress != nil {
			cfg.progress(jobID, snap.status, attempt)
		}
		if attempt == cfg.maxAttempts {
			break
		}
		if err := cfg.sleep(ctx, cfg.interval); err != nil {
			return zero, eris.Wrap(err, fmt.Sprintf("surfe: poll enrichment %s cancelled", jobID))
		}
	}

	return zero, &EnrichmentTimeoutError{JobID: jobID, Attempts: cfg.maxAttempts, Interval: cfg.interval}
}
