package myretry

import (
	"context"
	"errors"
	"fmt"

	"github.com/Haazy99/AgencyTest2/lib/mymetrics"
)

// Attempt is one way of reaching the same resource; Name is usually the endpoint.
type Attempt[T any] struct {
	Name string
	Do   func(c context.Context) (T, error)
}

type abortError struct {
	err error
}

func (e abortError) Error() string {
	return e.err.Error()
}

func (e abortError) Unwrap() error {
	return e.err
}

// Abort makes FirstSuccess stop the chain and return err as is.
func Abort(err error) error {
	return abortError{err: err}
}

// FirstSuccess runs the attempts in order and returns the first result without error.
// When all of them fail the error of the last attempt is returned.
func FirstSuccess[T any](c context.Context, chain string, attempts []Attempt[T]) (T, error) {
	var zero T
	if len(attempts) == 0 {
		return zero, fmt.Errorf("no attempts configured for %s", chain)
	}

	var lastErr error
	for i, attempt := range attempts {
		if i > 0 {
			mymetrics.RecordFallback(chain)
		}
		result, err := attempt.Do(c)
		if err == nil {
			return result, nil
		}

		var abort abortError
		if errors.As(err, &abort) {
			return zero, abort.err
		}
		if c.Err() != nil {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}
