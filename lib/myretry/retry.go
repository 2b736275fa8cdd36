package myretry

import (
	"context"
	"errors"
	"time"

	"github.com/Haazy99/AgencyTest2/lib/mymetrics"
)

type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	// Retryable decides whether another attempt can fix err. Nil retries everything but context errors.
	Retryable func(err error) bool
	// Sleep waits between attempts and returns early when c is done. Defaults to a timer.
	Sleep func(c context.Context, d time.Duration) error
}

// Retry calls op at most 1+MaxRetries times, waiting BaseDelay*2^n after the n-th failure.
func Retry[T any](c context.Context, operation string, policy Policy, op func(c context.Context) (T, error)) (T, error) {
	sleep := policy.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	retryable := policy.Retryable
	if retryable == nil {
		retryable = func(err error) bool { return !IsContextError(err) }
	}

	var result T
	var err error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		result, err = op(c)
		if err == nil {
			return result, nil
		}
		if attempt == policy.MaxRetries || !retryable(err) || c.Err() != nil {
			break
		}

		mymetrics.RecordRetry(operation)
		sleepErr := sleep(c, policy.BaseDelay*time.Duration(1<<attempt))
		if sleepErr != nil {
			break
		}
	}
	return result, err
}

func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func SleepContext(c context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-c.Done():
		return c.Err()
	case <-timer.C:
		return nil
	}
}
