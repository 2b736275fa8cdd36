package ghlauth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
)

func newTokenServer(t *testing.T, status int, payload map[string]any) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "my-client", r.PostForm.Get("client_id"))
		assert.Equal(t, "my-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "abc", r.PostForm.Get("code"))
		assert.Equal(t, "http://localhost:8080/api/auth/callback", r.PostForm.Get("redirect_uri"))
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(payload)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(tokenURL string) *oauthClient {
	return NewOAuthClient(ClientOptions{
		ClientID:     "my-client",
		ClientSecret: "my-secret",
		RedirectURI:  "http://localhost:8080/api/auth/callback",
		TokenURL:     tokenURL,
	})
}

func TestOauthClient(t *testing.T) {
	t.Run("Compose auth url", func(t *testing.T) {
		authURL, err := newTestClient("").ComposeAuthURL(t.Context(), "state-123")
		require.NoError(t, err)

		u, err := url.Parse(authURL)
		require.NoError(t, err)
		assert.Equal(t, "marketplace.leadconnectorhq.com", u.Host)
		assert.Equal(t, "/oauth/chooselocation", u.Path)
		assert.Equal(t, "my-client", u.Query().Get("client_id"))
		assert.Equal(t, "http://localhost:8080/api/auth/callback", u.Query().Get("redirect_uri"))
		assert.Equal(t, "code", u.Query().Get("response_type"))
		assert.Equal(t, "state-123", u.Query().Get("state"))
		assert.Equal(t, strings.Join(Scopes, " "), u.Query().Get("scope"))
	})

	t.Run("Compose auth url without client id", func(t *testing.T) {
		_, err := NewOAuthClient(ClientOptions{RedirectURI: "http://localhost"}).ComposeAuthURL(t.Context(), "state-123")
		assert.True(t, myerrors.IsKind(err, myerrors.KindConfig))
	})

	t.Run("Get access token", func(t *testing.T) {
		server := newTokenServer(t, 200, map[string]any{
			"access_token":  "access-123",
			"refresh_token": "refresh-456",
			"token_type":    "Bearer",
			"expires_in":    86399,
			"scope":         "contacts.write",
			"userType":      "Company",
			"companyId":     "comp1",
			"userId":        "user1",
		})

		resp, err := newTestClient(server.URL+"/oauth/token").GetAccessToken(t.Context(), "abc")
		require.NoError(t, err)
		assert.Equal(t, GetTokenResponse{
			AccessToken:  "access-123",
			RefreshToken: "refresh-456",
			TokenType:    "Bearer",
			ExpiresIn:    86399,
			Scope:        "contacts.write",
			UserType:     "Company",
			CompanyID:    "comp1",
			UserID:       "user1",
		}, resp)
	})

	t.Run("Missing company id is a protocol error", func(t *testing.T) {
		server := newTokenServer(t, 200, map[string]any{
			"access_token":  "access-123",
			"refresh_token": "refresh-456",
			"token_type":    "Bearer",
			"expires_in":    86399,
			"userType":      "Company",
			"userId":        "user1",
		})

		_, err := newTestClient(server.URL+"/oauth/token").GetAccessToken(t.Context(), "abc")
		assert.True(t, myerrors.IsKind(err, myerrors.KindProtocol))
		assert.Equal(t, "GHL token exchange response missing required fields.", myerrors.Message(err))
	})

	t.Run("Logged payload hides tokens", func(t *testing.T) {
		token := (&oauth2.Token{AccessToken: "access-123", RefreshToken: "refresh-456"}).WithExtra(map[string]any{
			"access_token":  "access-123",
			"refresh_token": "refresh-456",
			"userType":      "Company",
			"userId":        "user1",
			"unexpected":    "ignored",
		})

		assert.Equal(t, map[string]any{
			"access_token":  "<10 chars>",
			"refresh_token": "<11 chars>",
			"userType":      "Company",
			"userId":        "user1",
		}, payloadView(token))
	})

	t.Run("Rejected exchange", func(t *testing.T) {
		server := newTokenServer(t, 400, map[string]any{
			"error":             "invalid_grant",
			"error_description": "Invalid code",
			"message":           "Invalid code",
		})

		_, err := newTestClient(server.URL+"/oauth/token").GetAccessToken(t.Context(), "abc")
		assert.Error(t, err)
		assert.Equal(t, "GHL token exchange failed (HTTP 400): Invalid code", myerrors.Message(err))
	})

	t.Run("Refresh is not implemented", func(t *testing.T) {
		_, err := newTestClient("").RefreshAccessToken(t.Context(), "refresh-456")
		assert.Equal(t, 501, myerrors.GetHTTPStatus(err))
	})
}
