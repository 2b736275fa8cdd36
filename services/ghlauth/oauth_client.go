package ghlauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
)

const (
	DefaultAuthURL  = "https://marketplace.leadconnectorhq.com/oauth/chooselocation"
	DefaultTokenURL = "https://services.leadconnectorhq.com/oauth/token"
)

var Scopes = []string{
	"contacts.readonly",
	"contacts.write",
	"locations.readonly",
	"locations.write",
	"opportunities.readonly",
	"opportunities.write",
	"oauth.readonly",
	"oauth.write",
}

type GetTokenResponse struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
	Scope        string
	UserType     string
	CompanyID    string
	UserID       string
	LocationID   string
}

//go:generate mockgen -source=oauth_client.go -package ghlauth -destination oauth_client_mock.go OauthClient
type OauthClient interface {
	ComposeAuthURL(c context.Context, state string) (string, error)
	GetAccessToken(c context.Context, code string) (GetTokenResponse, error)
	RefreshAccessToken(c context.Context, refreshToken string) (GetTokenResponse, error)
}

type ClientOptions struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	Timeout      time.Duration
}

type oauthClient struct {
	config     *oauth2.Config
	httpClient *http.Client
	logger     mylog.Logger
}

func NewOAuthClient(opts ClientOptions) *oauthClient {
	if opts.AuthURL == "" {
		opts.AuthURL = DefaultAuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = DefaultTokenURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &oauthClient{
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   opts.AuthURL,
				TokenURL:  opts.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     mylog.New("ghlauth"),
	}
}

func (oc *oauthClient) ComposeAuthURL(c context.Context, state string) (string, error) {
	if oc.config.ClientID == "" || oc.config.RedirectURL == "" {
		return "", myerrors.NewConfigError(fmt.Errorf("Missing GHL_CLIENT_ID or GHL_REDIRECT_URI environment variable."))
	}
	return oc.config.AuthCodeURL(state), nil
}

func (oc *oauthClient) GetAccessToken(c context.Context, code string) (GetTokenResponse, error) {
	if oc.config.ClientID == "" || oc.config.ClientSecret == "" || oc.config.RedirectURL == "" {
		return GetTokenResponse{}, myerrors.NewConfigError(fmt.Errorf("Missing GHL_CLIENT_ID, GHL_CLIENT_SECRET, or GHL_REDIRECT_URI environment variable for token exchange."))
	}

	token, err := oc.config.Exchange(context.WithValue(c, oauth2.HTTPClient, oc.httpClient), code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return GetTokenResponse{}, myerrors.NewInternalError(fmt.Errorf("GHL token exchange failed (HTTP %d): %s",
				retrieveErr.Response.StatusCode, errorMessage(retrieveErr.Body)))
		}
		if c.Err() != nil {
			return GetTokenResponse{}, c.Err()
		}
		if strings.Contains(err.Error(), "missing access_token") {
			oc.logger.Log(c, "", mylog.SeverityError, "Token exchange response without access_token")
			return GetTokenResponse{}, myerrors.NewProtocolError(fmt.Errorf("GHL token exchange response missing required fields."))
		}
		return GetTokenResponse{}, myerrors.NewInternalError(fmt.Errorf("Failed to exchange GHL authorization code for tokens: %s", err))
	}

	resp := GetTokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresIn:    extraInt(token, "expires_in"),
		Scope:        extraString(token, "scope"),
		UserType:     extraString(token, "userType"),
		CompanyID:    extraString(token, "companyId"),
		UserID:       extraString(token, "userId"),
		LocationID:   extraString(token, "locationId"),
	}

	missing := []string{}
	for field, value := range map[string]bool{
		"access_token":  resp.AccessToken != "",
		"refresh_token": resp.RefreshToken != "",
		"expires_in":    resp.ExpiresIn > 0,
		"userType":      resp.UserType != "",
		"companyId":     resp.CompanyID != "",
		"userId":        resp.UserID != "",
	} {
		if !value {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		oc.logger.Log(c, resp.CompanyID, mylog.SeverityError, "Token exchange response missing fields %v: %v",
			missing, payloadView(token))
		return GetTokenResponse{}, myerrors.NewProtocolError(fmt.Errorf("GHL token exchange response missing required fields."))
	}

	oc.logger.Log(c, resp.CompanyID, mylog.SeverityInfo, "Token exchange successful for %s user %s", resp.UserType, resp.UserID)

	return resp, nil
}

func (oc *oauthClient) RefreshAccessToken(c context.Context, refreshToken string) (GetTokenResponse, error) {
	return GetTokenResponse{}, myerrors.NewNotImplementedError(fmt.Errorf("refreshing GHL tokens is not implemented"))
}

func errorMessage(body []byte) string {
	parsed := struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}{}
	err := json.Unmarshal(body, &parsed)
	if err == nil {
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
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return strings.TrimSpace(string(body))
}

var payloadKeys = []string{"token_type", "expires_in", "scope", "userType", "companyId", "userId", "locationId"}

// payloadView is the token response as logged: secrets reduced to their length.
func payloadView(token *oauth2.Token) map[string]any {
	view := map[string]any{
		"access_token":  fmt.Sprintf("<%d chars>", len(token.AccessToken)),
		"refresh_token": fmt.Sprintf("<%d chars>", len(token.RefreshToken)),
	}
	for _, key := range payloadKeys {
		if v := token.Extra(key); v != nil {
			view[key] = v
		}
	}
	return view
}

func extraString(token *oauth2.Token, key string) string {
	switch v := token.Extra(key).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func extraInt(token *oauth2.Token, key string) int64 {
	switch v := token.Extra(key).(type) {
	case float64:
		return int64(v)
	case string:
		i, _ := strconv.ParseInt(v, 10, 64)
		return i
	default:
		return 0
	}
}
