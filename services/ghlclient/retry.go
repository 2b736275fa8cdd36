package ghlclient

import (
	"errors"
	"net/http"
	"time"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/myretry"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

func DefaultRetryPolicy() myretry.Policy {
	return myretry.Policy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		Retryable:  retryable,
	}
}

// retryable refuses auth and permission failures, and any other answer another attempt cannot change.
func retryable(err error) bool {
	if myretry.IsContextError(err) {
		return false
	}
	if myerrors.IsKind(err, myerrors.KindAuth, myerrors.KindScope, myerrors.KindProtocol, myerrors.KindConfig, myerrors.KindInvalidInput) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests, apiErr.StatusCode == http.StatusRequestTimeout:
			return true
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			return false
		}
	}
	return true
}
