package services

import (
	"context"
	"time"
)

// RetryPolicy bounds retries of transient collaborator failures.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

// DefaultRetryPolicy matches the catalogue retry budget: up to 5 attempts
// with exponential backoff starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 5, Base: time.Second, Max: 30 * time.Second}
}

// Retry invokes fn until it succeeds, returns a non-retryable error, or the
// attempt budget is exhausted. The final error is returned unchanged so the
// sentinel marker survives for classification.
func Retry(ctx context.Context, policy RetryPolicy, fn func(context.Context) error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := policy.Base
	if delay <= 0 {
		delay = time.Second
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !Retryable(err) || attempt == attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if policy.Max > 0 && delay > policy.Max {
			delay = policy.Max
		}
	}
	return err
}
