package myhttpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Haazy99/AgencyTest2/lib/mylog"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodySize    = 10 << 20
)

var ErrBodyTooLarge = errors.New("response body too large")

type Option func(*httpClient)

func WithTimeout(timeout time.Duration) Option {
	return func(c *httpClient) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithRateLimit allows requestsPerSecond with the given burst; zero disables limiting.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *httpClient) {
		if requestsPerSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *httpClient) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithMaxBodySize caps the response body; larger bodies fail with ErrBodyTooLarge.
func WithMaxBodySize(n int64) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

type httpClient struct {
	name           string
	client         *http.Client
	maxBodySize    int64
	limiter        *rate.Limiter
	defaultHeaders map[string]string
	logger         mylog.Logger
}

func New(name string, opts ...Option) HTTPSender {
	c := &httpClient{
		name:           name,
		client:         &http.Client{Timeout: defaultTimeout},
		maxBodySize:    maxBodySize,
		defaultHeaders: map[string]string{},
		logger:         mylog.New(name + "-http"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Send(ctx context.Context, req Request) (Response, error) {
	if c.limiter != nil {
		err := c.limiter.Wait(ctx)
		if err != nil {
			return Response{}, fmt.Errorf("rate limit wait for %s %s: %w", req.Method, redact(req.URL), err)
		}
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return Response{}, fmt.Errorf("error creating http request for %s %s: %w", req.Method, redact(req.URL), redactError(err))
	}
	for k, v := range c.defaultHeaders {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	started := time.Now()
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("error sending %s %s: %w", req.Method, redact(req.URL), redactError(err))
	}
	defer httpResp.Body.Close()

	c.logger.Log(ctx, "", mylog.SeverityDebug, "HTTP call: %s %s -> %d (%s)", req.Method, redact(req.URL), httpResp.StatusCode, time.Since(started))

	respPayload, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxBodySize+1))
	if err != nil {
		return Response{}, fmt.Errorf("error reading response %s %s: %w", req.Method, redact(req.URL), redactError(err))
	}
	if int64(len(respPayload)) > c.maxBodySize {
		return Response{}, fmt.Errorf("response of %s %s exceeds %d bytes: %w", req.Method, redact(req.URL), c.maxBodySize, ErrBodyTooLarge)
	}

	return Response{
		StatusCode: httpResp.StatusCode,
		Body:       respPayload,
	}, nil
}

// redactError rewrites the URL that net/http embeds in its errors.
func redactError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = redact(ue.URL)
	}
	return err
}

var secretParams = []string{"key", "token", "client_secret"}

// redact blanks credentials passed as query parameters so they never reach the logs.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if i := strings.IndexByte(rawURL, '?'); i >= 0 {
			return rawURL[:i] + "?REDACTED"
		}
		return rawURL
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = q.Encode()
	return u.String()
}
