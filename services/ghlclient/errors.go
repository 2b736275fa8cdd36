package ghlclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/myhttpclient"
)

// APIError is a non-2xx answer from the CRM. Message is the text shown to the user.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func responseError(endpoint string, resp myhttpclient.Response) *APIError {
	msg := upstreamMessage(resp)
	var text string
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		text = "Authentication failed: " + orDefault(msg, "Invalid or expired access token")
	case http.StatusForbidden:
		text = "Permission denied: " + orDefault(msg, "Insufficient permissions")
	case http.StatusUnprocessableEntity:
		text = "Validation error: " + orDefault(msg, "Invalid data provided")
	case http.StatusTooManyRequests:
		text = "Rate limit exceeded: " + orDefault(msg, "Too many requests, please try again later")
	default:
		text = fmt.Sprintf("API error (%d): %s", resp.StatusCode, orDefault(msg, http.StatusText(resp.StatusCode)))
	}
	return &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Message: text}
}

// endpointError names the endpoint so the last error of a fallback chain says where it failed.
func endpointError(endpoint string, resp myhttpclient.Response) *APIError {
	return &APIError{
		StatusCode: resp.StatusCode,
		Endpoint:   endpoint,
		Message:    fmt.Sprintf("%s: %d %s", endpoint, resp.StatusCode, orDefault(upstreamMessage(resp), http.StatusText(resp.StatusCode))),
	}
}

func upstreamMessage(resp myhttpclient.Response) string {
	parsed := struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}{}
	err := json.Unmarshal(resp.Body, &parsed)
	if err != nil {
		return ""
	}
	switch m := parsed.Message.(type) {
	case string:
		if m != "" {
			return m
		}
	case []any:
		parts := []string{}
		for _, p := range m {
			parts = append(parts, fmt.Sprint(p))
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	return parsed.Error
}

func orDefault(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// classify maps an upstream failure onto the error kinds the HTTP layer understands.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if myerrors.GetKind(err) != myerrors.KindInternal {
		return err
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		if myerrors.IsKind(err, myerrors.KindInternal) {
			return err
		}
		return myerrors.NewInternalError(err)
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		return myerrors.NewAuthError(err)
	case http.StatusForbidden:
		return myerrors.NewScopeError(err)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return myerrors.NewInvalidInputError(err)
	default:
		return myerrors.NewInternalError(err)
	}
}
