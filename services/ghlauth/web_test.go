package ghlauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/mypublisher"
	"github.com/Haazy99/AgencyTest2/lib/mystore"
	"github.com/Haazy99/AgencyTest2/lib/mytime"
	"github.com/Haazy99/AgencyTest2/lib/myuuid"
	"github.com/Haazy99/AgencyTest2/services/ghlauth/ghlevents"
	"github.com/Haazy99/AgencyTest2/services/ghlsession"
)

const exampleSecret = "0123456789abcdef0123456789abcdef"

type browser struct {
	router  *mux.Router
	cookies []*http.Cookie
}

func (b *browser) do(t *testing.T, method string, url string) *httptest.ResponseRecorder {
	request, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	for _, cookie := range b.cookies {
		request.AddCookie(cookie)
	}
	response := httptest.NewRecorder()
	b.router.ServeHTTP(response, request)
	if cookies := response.Result().Cookies(); len(cookies) > 0 {
		b.cookies = cookies
	}
	return response
}

func (b *browser) status(t *testing.T) ghlsession.Status {
	response := b.do(t, http.MethodGet, "/api/auth/ghl/status")
	require.Equal(t, 200, response.Code)
	status := ghlsession.Status{}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &status))
	return status
}

func setup(t *testing.T, ctrl *gomock.Controller, production bool) (*browser, *MockOauthClient, *mypublisher.MockPublisher) {
	nowerMock := mytime.NewMockNower(ctrl)
	nowerMock.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
	uuiderMock := myuuid.NewMockUUIDer(ctrl)
	uuiderMock.EXPECT().Create().Return("state-123").AnyTimes()
	oauthClient := NewMockOauthClient(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)
	publisher.EXPECT().CreateTopic(gomock.Any(), ghlevents.TopicName).Return(nil)

	store, _, err := mystore.NewInMemoryStore[ghlsession.CachedBundle](context.Background())
	require.NoError(t, err)
	sessions := ghlsession.NewManager(exampleSecret, false, ghlsession.NewTokenCache(store, nowerMock), nowerMock, uuiderMock)

	router := mux.NewRouter()
	sut := NewService(sessions, oauthClient, publisher, nowerMock, production)
	require.NoError(t, sut.RegisterEndpoints(context.Background(), router))

	return &browser{router: router}, oauthClient, publisher
}

var exampleTokenResponse = GetTokenResponse{
	AccessToken:  "access-123",
	RefreshToken: "refresh-456",
	TokenType:    "Bearer",
	ExpiresIn:    86399,
	UserType:     "Company",
	CompanyID:    "comp1",
	UserID:       "user1",
}

func TestConnect(t *testing.T) {
	t.Run("Connect returns authorization url", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		b, oauthClient, _ := setup(t, ctrl, false)

		oauthClient.EXPECT().ComposeAuthURL(gomock.Any(), "state-123").Return("https://marketplace.leadconnectorhq.com/oauth/chooselocation?state=state-123", nil)

		response := b.do(t, http.MethodGet, "/api/auth/ghl/connect")
		assert.Equal(t, 200, response.Code)
		assert.JSONEq(t, `{"authorizationUrl":"https://marketplace.leadconnectorhq.com/oauth/chooselocation?state=state-123"}`, response.Body.String())
		require.Len(t, b.cookies, 1)
		assert.Equal(t, ghlsession.CookieName, b.cookies[0].Name)
	})

	t.Run("Connect with missing config", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		b, oauthClient, _ := setup(t, ctrl, false)

		oauthClient.EXPECT().ComposeAuthURL(gomock.Any(), "state-123").Return("", myerrors.NewConfigError(fmt.Errorf("Missing GHL_CLIENT_ID or GHL_REDIRECT_URI environment variable.")))

		response := b.do(t, http.MethodGet, "/api/auth/ghl/connect")
		assert.Equal(t, 500, response.Code)
		assert.JSONEq(t, `{"success":false,"errorCode":2,"error":"Missing GHL_CLIENT_ID or GHL_REDIRECT_URI environment variable."}`, response.Body.String())
	})
}

func TestCallback(t *testing.T) {
	t.Run("Successful connection", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		b, oauthClient, publisher := setup(t, ctrl, false)

		oauthClient.EXPECT().ComposeAuthURL(gomock.Any(), "state-123").Return("https://auth", nil)
		oauthClient.EXPECT().GetAccessToken(gomock.Any(), "abc").Return(exampleTokenResponse, nil)
		publisher.EXPECT().Publish(gomock.Any(), ghlevents.TopicName, ghlevents.ConnectionEstablished{
			CompanyID:     "comp1",
			UserID:        "user1",
			StorageMethod: ghlsession.StorageCompressedSession,
		}).Return(nil)

		b.do(t, http.MethodGet, "/api/auth/ghl/connect")
		response := b.do(t, http.MethodGet, "/api/auth/callback?code=abc&state=state-123")

		assert.Equal(t, 200, response.Code)
		assert.Equal(t, "text/html; charset=utf-8", response.Header().Get("Content-Type"))
		assert.Contains(t, response.Body.String(), `type: "OAUTH_SUCCESS"`)
		assert.Contains(t, response.Body.String(), `GoHighLevel account connected successfully!`)
		assert.Contains(t, response.Body.String(), `window.location.origin`)

		status := b.status(t)
		assert.True(t, status.IsConnected)
		assert.Equal(t, "comp1", status.CompanyID)
		assert.Equal(t, ghlsession.StorageCompressedSession, status.Debug.StorageMethod)
	})

	t.Run("Invalid state stores nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		b, _, _ := setup(t, ctrl, false)

		response := b.do(t, http.MethodGet, "/api/auth/callback?code=abc&state=forged")

		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `type: "OAUTH_ERROR"`)
		assert.Contains(t, response.Body.String(), `Invalid or expired OAuth state. Please try connecting again.`)
		assert.False(t, b.status(t).IsConnected)
	})

	t.Run("State is single use", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		b, oauthClient, publisher := setup(t, ctrl, false)

		oauthClient.EXPECT().ComposeAuthURL(gomock.Any(), "state-123").Return("https://auth", nil)
		oauthClient.EXPECT().GetAccessToken(gomock.Any(), "abc").Return(exampleTokenResponse, nil).Times(1)
		publisher.EXPECT().Publish(gomock.Any(), ghlevents.TopicName, gomock.Any()).Return(nil)

		b.do(t, http.MethodGet, "/api/auth/ghl/connect")
		b.do(t, http.MethodGet, "/api/auth/callback?code=abc&state=state-123")
		response := b.do(t, http.MethodGet, "/api/auth/callback?code=abc&state=state-123")

		assert.Contains(t, response.Body.String(), `type: "OAUTH_ERROR"`)
	})

	t.Run("Denied by user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		b, oauthClient, _ := setup(t, ctrl, false)

		oauthClient.EXPECT().ComposeAuthURL(gomock.Any(), "state-123").Return("https://auth", nil)

		b.do(t, http.MethodGet, "/api/auth/ghl/connect")
		response := b.do(t, http.MethodGet, "/api/auth/callback?state=state-123&error=access_denied")

		assert.Contains(t, response.Body.String(), `type: "OAUTH_ERROR"`)
		assert.Contains(t, response.Body.String(), `Authorization was denied or failed: access_denied`)
		assert.False(t, b.status(t).IsConnected)
	})

	t.Run("Denied without reason", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		b, oauthClient, _ := setup(t, ctrl, false)

		oauthClient.EXPECT().ComposeAuthURL(gomock.Any(), "state-123").Return("https://auth", nil)

		b.do(t, http.MethodGet, "/api/auth/ghl/connect")
		response := b.do(t, http.MethodGet, "/api/auth/callback?state=state-123")

		assert.Contains(t, response.Body.String(), `Authorization was denied or failed: User cancelled`)
	})

	t.Run("Exchange failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		b, oauthClient, _ := setup(t, ctrl, false)

		oauthClient.EXPECT().ComposeAuthURL(gomock.Any(), "state-123").Return("https://auth", nil)
		oauthClient.EXPECT().GetAccessToken(gomock.Any(), "abc").Return(GetTokenResponse{},
			myerrors.NewInternalError(fmt.Errorf("GHL token exchange failed (HTTP 400): Invalid code")))

		b.do(t, http.MethodGet, "/api/auth/ghl/connect")
		response := b.do(t, http.MethodGet, "/api/auth/callback?code=abc&state=state-123")

		assert.Contains(t, response.Body.String(), `type: "OAUTH_ERROR"`)
		assert.Contains(t, response.Body.String(), `Failed to connect GHL account: GHL token exchange failed (HTTP 400): Invalid code`)
		assert.False(t, b.status(t).IsConnected)
	})

	t.Run("Publish failure does not fail connection", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		b, oauthClient, publisher := setup(t, ctrl, false)

		oauthClient.EXPECT().ComposeAuthURL(gomock.Any(), "state-123").Return("https://auth", nil)
		oauthClient.EXPECT().GetAccessToken(gomock.Any(), "abc").Return(exampleTokenResponse, nil)
		publisher.EXPECT().Publish(gomock.Any(), ghlevents.TopicName, gomock.Any()).Return(fmt.Errorf("broker down"))

		b.do(t, http.MethodGet, "/api/auth/ghl/connect")
		response := b.do(t, http.MethodGet, "/api/auth/callback?code=abc&state=state-123")

		assert.Contains(t, response.Body.String(), `type: "OAUTH_SUCCESS"`)
		assert.True(t, b.status(t).IsConnected)
	})
}

func TestDisconnect(t *testing.T) {
	t.Run("Already disconnected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		b, _, _ := setup(t, ctrl, false)

		response := b.do(t, http.MethodPost, "/api/auth/ghl/disconnect")
		assert.Equal(t, 200, response.Code)
		assert.JSONEq(t, `{"success":true,"message":"Already disconnected from GoHighLevel"}`, response.Body.String())
	})

	t.Run("Disconnect simulated connection", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		b, _, publisher := setup(t, ctrl, false)

		companyID := fmt.Sprintf("simulated-company-%d", mytime.ExampleTime.UnixMilli())
		publisher.EXPECT().Publish(gomock.Any(), ghlevents.TopicName, ghlevents.ConnectionClosed{CompanyID: companyID}).Return(nil)

		response := b.do(t, http.MethodPost, "/api/test-oauth-simulation")
		require.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), companyID)
		assert.True(t, b.status(t).IsConnected)

		response = b.do(t, http.MethodPost, "/api/auth/ghl/disconnect")
		assert.Equal(t, 200, response.Code)
		assert.JSONEq(t, `{"success":true,"message":"Successfully disconnected from GoHighLevel"}`, response.Body.String())

		status := b.status(t)
		assert.False(t, status.IsConnected)
		assert.False(t, status.Debug.SessionConnected)
		assert.Equal(t, ghlsession.StorageNone, status.Debug.StorageMethod)
	})
}

func TestProductionRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	b, _, _ := setup(t, ctrl, true)

	response := b.do(t, http.MethodPost, "/api/test-oauth-simulation")
	assert.Equal(t, 404, response.Code)
}
