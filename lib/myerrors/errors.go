package myerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindInternal       Kind = "internal"
	KindInvalidInput   Kind = "invalid-input"
	KindNotFound       Kind = "not-found"
	KindAuth           Kind = "auth"
	KindScope          Kind = "scope"
	KindConfig         Kind = "config"
	KindSession        Kind = "session"
	KindProtocol       Kind = "protocol"
	KindCodec          Kind = "codec"
	KindNotImplemented Kind = "not-implemented"
	KindUnavailable    Kind = "unavailable"
)

type httpErrorCoder interface {
	error
	GetHTTPErrorCode() int
}

type httpError struct {
	httpCode int
	kind     Kind
	err      error
}

func (e httpError) Error() string {
	return fmt.Sprintf("status: %d, err: %s", e.httpCode, e.err.Error())
}

func (e httpError) GetHTTPErrorCode() int {
	return e.httpCode
}

func (e httpError) Unwrap() error {
	return e.err
}

// Message returns the wrapped error text without the status prefix.
func (e httpError) Message() string {
	return e.err.Error()
}

func newError(httpCode int, kind Kind, err error) *httpError {
	return &httpError{
		httpCode: httpCode,
		kind:     kind,
		err:      err,
	}
}

func NewInvalidInputError(err error) *httpError {
	return newError(http.StatusBadRequest, KindInvalidInput, err)
}

func NewInvalidInputErrorf(format string, args ...interface{}) *httpError {
	return NewInvalidInputError(fmt.Errorf(format, args...))
}

func NewNotFoundError(err error) *httpError {
	return newError(http.StatusNotFound, KindNotFound, err)
}

// NewAuthError signals a missing or expired token: the user must reconnect.
func NewAuthError(err error) *httpError {
	return newError(http.StatusUnauthorized, KindAuth, err)
}

// NewScopeError signals an upstream permission misconfiguration the user can fix.
func NewScopeError(err error) *httpError {
	return newError(http.StatusForbidden, KindScope, err)
}

func NewConfigError(err error) *httpError {
	return newError(http.StatusInternalServerError, KindConfig, err)
}

func NewSessionError(err error) *httpError {
	return newError(http.StatusInternalServerError, KindSession, err)
}

// NewProtocolError signals an upstream response that lacks required fields.
func NewProtocolError(err error) *httpError {
	return newError(http.StatusInternalServerError, KindProtocol, err)
}

func NewCodecError(err error) *httpError {
	return newError(http.StatusInternalServerError, KindCodec, err)
}

func NewInternalError(err error) *httpError {
	return newError(http.StatusInternalServerError, KindInternal, err)
}

func NewNotImplementedError(err error) *httpError {
	return newError(http.StatusNotImplemented, KindNotImplemented, err)
}

func NewUnavailableError(err error) *httpError {
	return newError(http.StatusServiceUnavailable, KindUnavailable, err)
}

func GetHTTPStatus(err error) int {
	var myError httpErrorCoder
	if err != nil && errors.As(err, &myError) {
		return myError.GetHTTPErrorCode()
	}
	return http.StatusInternalServerError
}

// GetKind returns the kind of the outermost classified error in the chain.
func GetKind(err error) Kind {
	var myError *httpError
	if err != nil && errors.As(err, &myError) {
		return myError.kind
	}
	return KindInternal
}

func IsKind(err error, kinds ...Kind) bool {
	var myError *httpError
	if err == nil || !errors.As(err, &myError) {
		return false
	}
	for _, k := range kinds {
		if myError.kind == k {
			return true
		}
	}
	return false
}

// Message strips the "status: N, err:" prefix so end users see the cause only.
func Message(err error) string {
	var myError *httpError
	if err != nil && errors.As(err, &myError) {
		return myError.Message()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
