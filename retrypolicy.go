package tsched

import (
	"time"
)

// RetryPolicy describes how many times and how often a task is retried.
// Zero values are treated as "use scheduler defaults".
type RetryPolicy struct {
	// Attempts is the maximum number of tries for a task, including the
	// initial one.
	Attempts int

	// Initial is the first backoff duration.
	Initial time.Duration

	// Max is the cap for backoff duration.
	Max time.Duration
}

// ShouldRetry reports whether an attempt with the given outcome may be
// retried. Failures and timeouts are transient and eligible; a success
// needs no retry, and a cancelled task must never be retried because the
// caller asked for it to stop.
func (RetryPolicy) ShouldRetry(o Outcome) bool {
	switch o.Kind {
	case OutcomeFailure, OutcomeTimeout:
		return true
	default:
		return false
	}
}

// GetDefaultRP returns a pointer to a default retry policy used by the
// scheduler. Useful in tests or when constructing options with the same
// defaults.
func GetDefaultRP() *RetryPolicy {
	rp := RetryPolicy{
		Attempts: defaultAttempts,
		Initial:  defaultInitialRetry,
		Max:      defaultMaxRetry,
	}
	return &rp
}

// retryPolicy resolves the effective policy for one task: the scheduler
// default overridden by any non-zero per-task config values.
func (p *pool) retryPolicy(cfg TaskConfig) RetryPolicy {
	pol := p.opts.DefaultRetry
	if cfg.MaxRetries > 0 {
		pol.Attempts = cfg.MaxRetries + 1
	} else if cfg.MaxRetries < 0 {
		// negative means "no retries", since zero is taken by the default
		pol.Attempts = 1
	}
	if cfg.RetryBaseDelay > 0 {
		pol.Initial = cfg.RetryBaseDelay
	}
	if cfg.RetryMaxDelay > 0 {
		pol.Max = cfg.RetryMaxDelay
	}
	return pol
}
