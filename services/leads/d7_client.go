package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	formcodec "github.com/go-playground/form/v4"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/myhttpclient"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/mymetrics"
	"github.com/Haazy99/AgencyTest2/lib/myretry"
)

const DefaultD7BaseURL = "https://dash.d7leadfinder.com/app/api"

// RawLead is a lead as the directory returns it; field names vary between accounts.
type RawLead map[string]any

type SearchResponse struct {
	SearchID    string
	Message     string
	WaitSeconds int
	// Leads is only filled when the directory answers the search directly.
	Leads []RawLead
}

type ResultsResponse struct {
	Status  string
	Message string
	Leads   []RawLead
}

//go:generate mockgen -source=d7_client.go -package leads -destination d7_client_mock.go D7API
type D7API interface {
	Search(c context.Context, keyword string, countryCode string, location string) (SearchResponse, error)
	Results(c context.Context, searchID string) (ResultsResponse, error)
}

type D7Options struct {
	BaseURL string
	APIKey  string
	Retry   *myretry.Policy
}

type d7Client struct {
	baseURL string
	apiKey  string
	sender  myhttpclient.HTTPSender
	retry   myretry.Policy
	logger  mylog.Logger
}

func NewD7Client(sender myhttpclient.HTTPSender, opts D7Options) *d7Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultD7BaseURL
	}
	policy := myretry.Policy{
		MaxRetries: 2,
		BaseDelay:  time.Second,
	}
	if opts.Retry != nil {
		policy = *opts.Retry
	}
	policy.Retryable = d7Retryable
	return &d7Client{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		sender:  sender,
		retry:   policy,
		logger:  mylog.New("leads"),
	}
}

type searchParams struct {
	Keyword  string `form:"keyword"`
	Country  string `form:"country"`
	Location string `form:"location"`
}

type resultsParams struct {
	ID string `form:"id"`
}

// flexString accepts strings, numbers and null.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if json.Unmarshal(data, &s) == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	err := json.Unmarshal(data, &n)
	if err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type searchPayload struct {
	SearchID    flexString `json:"searchid"`
	Message     flexString `json:"message"`
	WaitSeconds flexString `json:"wait_seconds"`
	Results     []RawLead  `json:"results"`
	Data        []RawLead  `json:"data"`
}

type resultsPayload struct {
	Status  flexString      `json:"status"`
	Message flexString      `json:"message"`
	Data    json.RawMessage `json:"data"`
	Results json.RawMessage `json:"results"`
}

func (dc *d7Client) Search(c context.Context, keyword string, countryCode string, location string) (SearchResponse, error) {
	endpoint := dc.baseURL + "/search/"
	body, err := dc.fetch(c, endpoint, searchParams{
		Keyword:  keyword,
		Country:  strings.ToUpper(countryCode),
		Location: location,
	})
	if err != nil {
		return SearchResponse{}, describeStatus(err, "Failed to initiate search with D7 Lead Finder")
	}

	payload := searchPayload{}
	err = json.Unmarshal(body, &payload)
	if err != nil {
		return SearchResponse{}, myerrors.NewProtocolError(fmt.Errorf("D7 Search API returned non-JSON response: %s", truncate(string(body), 200)))
	}

	resp := SearchResponse{
		SearchID: string(payload.SearchID),
		Message:  string(payload.Message),
		Leads:    payload.Results,
	}
	if len(resp.Leads) == 0 {
		resp.Leads = payload.Data
	}
	if payload.WaitSeconds != "" {
		resp.WaitSeconds, _ = strconv.Atoi(string(payload.WaitSeconds))
	}
	return resp, nil
}

func (dc *d7Client) Results(c context.Context, searchID string) (ResultsResponse, error) {
	endpoint := dc.baseURL + "/results/"
	body, err := dc.fetch(c, endpoint, resultsParams{ID: searchID})
	if err != nil {
		return ResultsResponse{}, describeStatus(err, "Failed to fetch results from D7 Lead Finder")
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		leads := []RawLead{}
		err = json.Unmarshal(trimmed, &leads)
		if err != nil {
			return ResultsResponse{}, myerrors.NewProtocolError(fmt.Errorf("D7 Results API returned an unreadable lead list: %s", err))
		}
		return ResultsResponse{Leads: leads}, nil
	}

	payload := resultsPayload{}
	err = json.Unmarshal(trimmed, &payload)
	if err != nil {
		return ResultsResponse{}, myerrors.NewProtocolError(fmt.Errorf("D7 Results API returned non-JSON response: %s", truncate(string(body), 200)))
	}

	resp := ResultsResponse{
		Status:  string(payload.Status),
		Message: string(payload.Message),
	}
	// An unexpected shape yields no leads rather than an error.
	for _, candidate := range []json.RawMessage{payload.Data, payload.Results} {
		leads := []RawLead{}
		if len(candidate) > 0 && json.Unmarshal(candidate, &leads) == nil && len(leads) > 0 {
			resp.Leads = leads
			break
		}
	}
	return resp, nil
}

type statusError struct {
	StatusCode int
	Message    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func (dc *d7Client) fetch(c context.Context, endpoint string, params any) ([]byte, error) {
	if dc.apiKey == "" {
		return nil, myerrors.NewConfigError(fmt.Errorf("D7 Lead Finder API key is not configured."))
	}

	values, err := formcodec.NewEncoder().Encode(params)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error encoding D7 query: %s", err))
	}
	values.Set("key", dc.apiKey)
	target := endpoint + "?" + values.Encode()

	body, err := myretry.Retry(c, "d7", dc.retry, func(c context.Context) ([]byte, error) {
		resp, err := dc.sender.Send(c, myhttpclient.Request{
			Method:  http.MethodGet,
			URL:     target,
			Headers: map[string]string{"Accept": "application/json"},
		})
		if err != nil {
			return nil, err
		}
		if !resp.IsSuccess() {
			return nil, &statusError{StatusCode: resp.StatusCode, Message: d7Message(resp.Body)}
		}
		err = checkBody(endpoint, resp.Body)
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	})
	if err != nil {
		mymetrics.RecordExternalError("d7")
		dc.logger.Log(c, "", mylog.SeverityError, "D7 call to %s failed: %s", endpoint, err)
		return nil, err
	}
	return body, nil
}

// checkBody rejects 200 answers that carry an error instead of data.
func checkBody(endpoint string, body []byte) error {
	var parsed any
	err := json.Unmarshal(body, &parsed)
	if err != nil {
		return myerrors.NewProtocolError(fmt.Errorf("D7 API returned non-JSON response for %s: %s", endpoint, truncate(string(body), 200)))
	}
	fields, ok := parsed.(map[string]any)
	if !ok {
		return nil
	}
	status := scalarString(fields["status"])
	message := scalarString(fields["message"])
	searchID := scalarString(fields["searchid"])
	if status == "error" || (strings.Contains(strings.ToLower(message), "error") && searchID == "") {
		if message == "" {
			message = truncate(string(body), 200)
		}
		return myerrors.NewProtocolError(fmt.Errorf("D7 API call to %s reported an error in its JSON body: %s", endpoint, message))
	}
	return nil
}

func d7Retryable(err error) bool {
	if myretry.IsContextError(err) || myerrors.IsKind(err, myerrors.KindProtocol, myerrors.KindConfig) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return true
}

func describeStatus(err error, prefix string) error {
	var se *statusError
	if errors.As(err, &se) {
		return myerrors.NewInternalError(fmt.Errorf("%s (HTTP %d): %s", prefix, se.StatusCode, se.Message))
	}
	if myerrors.GetKind(err) != myerrors.KindInternal || myerrors.IsKind(err, myerrors.KindInternal) {
		return err
	}
	return myerrors.NewInternalError(err)
}

func d7Message(body []byte) string {
	parsed := struct {
		Message flexString `json:"message"`
	}{}
	if json.Unmarshal(body, &parsed) == nil && parsed.Message != "" {
		return string(parsed.Message)
	}
	return strings.TrimSpace(string(body))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
