package adscan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/myhttpclient"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/mymetrics"
)

const (
	DefaultApifyBaseURL = "https://api.apify.com/v2"
	FacebookPagesActor  = "apify~facebook-pages-scraper"
)

type StartURL struct {
	URL string `json:"url"`
}

type ProxyConfiguration struct {
	UseApifyProxy bool `json:"useApifyProxy"`
}

// ScraperInput is the run input of the Facebook pages actor.
type ScraperInput struct {
	StartURLs             []StartURL         `json:"startUrls"`
	SearchLimit           int                `json:"searchLimit"`
	SearchType            string             `json:"searchType"`
	MaxRequestRetries     int                `json:"maxRequestRetries"`
	MaxConcurrency        int                `json:"maxConcurrency"`
	ProxyConfiguration    ProxyConfiguration `json:"proxyConfiguration"`
	ScrapeAbout           bool               `json:"scrapeAbout"`
	ScrapeAds             bool               `json:"scrapeAds"`
	ScrapeReviews         bool               `json:"scrapeReviews"`
	ScrapePosts           bool               `json:"scrapePosts"`
	ScrapeServices        bool               `json:"scrapeServices"`
	UseAdvancedScraping   bool               `json:"useAdvancedScraping"`
	HandlePageTimeoutSecs int                `json:"handlePageTimeoutSecs"`
}

func NewScraperInput(pageURLs []string) ScraperInput {
	startURLs := make([]StartURL, 0, len(pageURLs))
	for _, u := range pageURLs {
		startURLs = append(startURLs, StartURL{URL: u})
	}
	return ScraperInput{
		StartURLs:             startURLs,
		SearchLimit:           1,
		SearchType:            "pages",
		MaxRequestRetries:     2,
		MaxConcurrency:        10,
		ProxyConfiguration:    ProxyConfiguration{UseApifyProxy: true},
		ScrapeAds:             true,
		HandlePageTimeoutSecs: 30,
	}
}

// PageItem is one dataset item produced by the actor. Items that carry
// Error describe a page that could not be scraped.
type PageItem struct {
	URL              string
	PageURL          string
	PageID           string
	Name             string
	Username         string
	AdLibraryURL     string
	HasActiveAds     bool
	Error            string
	ErrorDescription string
}

func (p *PageItem) UnmarshalJSON(data []byte) error {
	raw := map[string]any{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	err := decoder.Decode(&raw)
	if err != nil {
		return err
	}
	*p = PageItem{
		URL:              text(raw["url"]),
		PageURL:          text(raw["pageUrl"]),
		PageID:           text(raw["pageId"]),
		Name:             text(raw["name"]),
		Username:         text(raw["username"]),
		AdLibraryURL:     text(raw["adLibraryUrl"]),
		Error:            text(raw["error"]),
		ErrorDescription: text(raw["errorDescription"]),
	}
	p.HasActiveAds, _ = raw["hasActiveAds"].(bool)
	return nil
}

func (p PageItem) failed() bool {
	return p.Error != ""
}

// searchTerm is what the ad library is searched for when the page id is unknown.
func (p PageItem) searchTerm() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Username != "" {
		return p.Username
	}
	if p.PageURL != "" {
		return PageSlug(p.PageURL)
	}
	return PageSlug(p.URL)
}

func (p PageItem) constructedAdLibraryURL() string {
	return AdLibraryURL(p.PageID, p.searchTerm())
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

//go:generate mockgen -source=apify_client.go -package adscan -destination apify_client_mock.go PageScraper
type PageScraper interface {
	ScrapePages(c context.Context, input ScraperInput) ([]PageItem, error)
}

type ApifyOptions struct {
	BaseURL string
	Token   string
}

type apifyClient struct {
	baseURL string
	token   string
	sender  myhttpclient.HTTPSender
	logger  mylog.Logger
}

func NewApifyClient(sender myhttpclient.HTTPSender, opts ApifyOptions) *apifyClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultApifyBaseURL
	}
	return &apifyClient{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		token:   opts.Token,
		sender:  sender,
		logger:  mylog.New("adscan"),
	}
}

// ScrapePages runs the actor synchronously and returns its dataset.
func (ac *apifyClient) ScrapePages(c context.Context, input ScraperInput) ([]PageItem, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error encoding actor input: %s", err))
	}

	target := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?token=%s", ac.baseURL, FacebookPagesActor, url.QueryEscape(ac.token))
	resp, err := ac.sender.Send(c, myhttpclient.Request{
		Method: http.MethodPost,
		URL:    target,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		Body: payload,
	})
	if err != nil {
		return nil, ac.fail(c, myerrors.NewInternalError(fmt.Errorf("Apify actor call failed: %w", err)))
	}
	if !resp.IsSuccess() {
		return nil, ac.fail(c, myerrors.NewInternalError(fmt.Errorf("Apify actor run failed (HTTP %d): %s", resp.StatusCode, apifyMessage(resp.Body))))
	}

	items := []PageItem{}
	err = json.Unmarshal(resp.Body, &items)
	if err != nil {
		return nil, ac.fail(c, myerrors.NewProtocolError(fmt.Errorf("Apify returned an unreadable dataset: %s", err)))
	}
	return items, nil
}

func (ac *apifyClient) fail(c context.Context, err error) error {
	mymetrics.RecordExternalError("apify")
	ac.logger.Log(c, "", mylog.SeverityError, "Apify scan failed: %s", err)
	return err
}

func apifyMessage(body []byte) string {
	parsed := struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}{}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(body))
}
