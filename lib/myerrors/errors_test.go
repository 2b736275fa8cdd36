package myerrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	myErr := fmt.Errorf("my error")

	testCases := []struct {
		name       string
		in         error
		httpStatus int
		kind       Kind
		errorText  string
	}{
		{
			name:       "No http error",
			in:         myErr,
			httpStatus: 500,
			kind:       KindInternal,
			errorText:  "my error",
		},
		{
			name:       "Invalid input error",
			in:         NewInvalidInputError(myErr),
			httpStatus: 400,
			kind:       KindInvalidInput,
			errorText:  "status: 400, err: my error",
		},
		{
			name:       "Invalid input errorf",
			in:         NewInvalidInputErrorf("%s: %d", myErr.Error(), 123),
			httpStatus: 400,
			kind:       KindInvalidInput,
			errorText:  "status: 400, err: my error: 123",
		},
		{
			name:       "Auth error",
			in:         NewAuthError(myErr),
			httpStatus: 401,
			kind:       KindAuth,
			errorText:  "status: 401, err: my error",
		},
		{
			name:       "Scope error",
			in:         NewScopeError(myErr),
			httpStatus: 403,
			kind:       KindScope,
			errorText:  "status: 403, err: my error",
		},
		{
			name:       "Not found error",
			in:         NewNotFoundError(myErr),
			httpStatus: 404,
			kind:       KindNotFound,
			errorText:  "status: 404, err: my error",
		},
		{
			name:       "Config error",
			in:         NewConfigError(myErr),
			httpStatus: 500,
			kind:       KindConfig,
			errorText:  "status: 500, err: my error",
		},
		{
			name:       "Protocol error",
			in:         NewProtocolError(myErr),
			httpStatus: 500,
			kind:       KindProtocol,
			errorText:  "status: 500, err: my error",
		},
		{
			name:       "Internal error",
			in:         NewInternalError(myErr),
			httpStatus: 500,
			kind:       KindInternal,
			errorText:  "status: 500, err: my error",
		},
		{
			name:       "Not implemented error",
			in:         NewNotImplementedError(myErr),
			httpStatus: 501,
			kind:       KindNotImplemented,
			errorText:  "status: 501, err: my error",
		},
		{
			name:       "Not available error",
			in:         NewUnavailableError(myErr),
			httpStatus: 503,
			kind:       KindUnavailable,
			errorText:  "status: 503, err: my error",
		},
		{
			name:       "Wrapped scope error",
			in:         fmt.Errorf("creating contact: %w", NewScopeError(myErr)),
			httpStatus: 403,
			kind:       KindScope,
			errorText:  "creating contact: status: 403, err: my error",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.httpStatus, GetHTTPStatus(tc.in))
			assert.Equal(t, tc.kind, GetKind(tc.in))
			assert.Equal(t, tc.errorText, tc.in.Error())
		})
	}

	t.Run("IsKind", func(t *testing.T) {
		assert.True(t, IsKind(NewAuthError(myErr), KindScope, KindAuth))
		assert.False(t, IsKind(NewInternalError(myErr), KindScope, KindAuth))
		assert.False(t, IsKind(myErr, KindInternal))
		assert.False(t, IsKind(nil, KindInternal))
	})

	t.Run("Message strips status prefix", func(t *testing.T) {
		assert.Equal(t, "my error", Message(NewScopeError(myErr)))
		assert.Equal(t, "my error", Message(myErr))
		assert.Equal(t, "", Message(nil))
	})
}
