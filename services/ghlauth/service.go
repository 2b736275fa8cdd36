package ghlauth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/mypublisher"
	"github.com/Haazy99/AgencyTest2/lib/mytime"
	"github.com/Haazy99/AgencyTest2/services/ghlauth/ghlevents"
	"github.com/Haazy99/AgencyTest2/services/ghlsession"
)

const (
	MessageTypeSuccess = "OAUTH_SUCCESS"
	MessageTypeError   = "OAUTH_ERROR"
)

type service struct {
	oauthClient OauthClient
	publisher   mypublisher.Publisher
	nower       mytime.Nower
	logger      mylog.Logger
}

func newService(oauthClient OauthClient, pub mypublisher.Publisher, nower mytime.Nower) *service {
	return &service{
		oauthClient: oauthClient,
		publisher:   pub,
		nower:       nower,
		logger:      mylog.New("ghlauth"),
	}
}

func (s *service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, ghlevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", ghlevents.TopicName, err)
	}
	return nil
}

func (s *service) connect(c context.Context, session *ghlsession.Session) (string, error) {
	state, err := session.GenerateAndStoreOAuthState(c)
	if err != nil {
		return "", err
	}

	authURL, err := s.oauthClient.ComposeAuthURL(c, state)
	if err != nil {
		return "", err
	}

	s.logger.Log(c, "", mylog.SeverityInfo, "Generated GHL authorization url")

	return authURL, nil
}

type callbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

type callbackPage struct {
	Title       string
	Type        string
	Message     string
	FallbackURL string
	Text        string
}

func errorPage(title string, message string) callbackPage {
	return callbackPage{
		Title:       title,
		Type:        MessageTypeError,
		Message:     message,
		FallbackURL: "/error?message=" + url.QueryEscape(message),
		Text:        "Connection failed. This window will close automatically.",
	}
}

// callback validates the state before it looks at the code.
func (s *service) callback(c context.Context, session *ghlsession.Session, params callbackParams) callbackPage {
	valid, err := session.ValidateAndClearOAuthState(c, params.State)
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityError, "Error clearing oauth state: %s", err)
		return errorPage("OAuth Error", "Failed to connect GHL account: "+myerrors.Message(err))
	}
	if !valid {
		s.logger.Log(c, "", mylog.SeverityWarn, "Invalid or missing oauth state")
		return errorPage("OAuth Error", "Invalid or expired OAuth state. Please try connecting again.")
	}

	if params.Code == "" {
		reason := params.ErrorDescription
		if reason == "" {
			reason = params.Error
		}
		if reason == "" {
			reason = "User cancelled"
		}
		s.logger.Log(c, "", mylog.SeverityWarn, "GHL authorization denied: %s (%s)", params.Error, params.ErrorDescription)
		page := errorPage("OAuth Denied", "Authorization was denied or failed: "+reason)
		page.FallbackURL = "/error?message=" + url.QueryEscape("GHL authorization denied or failed.")
		page.Text = "Authorization denied. This window will close automatically."
		return page
	}

	tokens, err := s.oauthClient.GetAccessToken(c, params.Code)
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityError, "Error exchanging code for tokens: %s", err)
		return errorPage("OAuth Error", "Failed to connect GHL account: "+myerrors.Message(err))
	}

	method, err := session.StoreTokens(c, tokens.CompanyID, tokens.UserID, ghlsession.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    tokens.ExpiresIn,
	})
	if err != nil {
		s.logger.Log(c, tokens.CompanyID, mylog.SeverityError, "Error storing tokens: %s", err)
		return errorPage("OAuth Error", "Failed to connect GHL account: "+myerrors.Message(err))
	}

	s.publish(c, ghlevents.ConnectionEstablished{
		CompanyID:     tokens.CompanyID,
		UserID:        tokens.UserID,
		StorageMethod: method,
	})

	s.logger.Log(c, tokens.CompanyID, mylog.SeverityInfo, "Stored GHL tokens for company %s", tokens.CompanyID)

	const message = "GoHighLevel account connected successfully!"
	return callbackPage{
		Title:       "OAuth Success",
		Type:        MessageTypeSuccess,
		Message:     message,
		FallbackURL: "/?message=" + url.QueryEscape("GHL account connected successfully!"),
		Text:        "Connection successful! This window will close automatically.",
	}
}

func (s *service) disconnect(c context.Context, session *ghlsession.Session) (string, error) {
	if !session.GHLConnected {
		return "Already disconnected from GoHighLevel", nil
	}

	companyID := session.GHLCompanyID
	err := session.ClearTokens(c)
	if err != nil {
		return "", err
	}

	s.publish(c, ghlevents.ConnectionClosed{
		CompanyID: companyID,
	})

	s.logger.Log(c, companyID, mylog.SeverityInfo, "Disconnected from GoHighLevel")

	return "Successfully disconnected from GoHighLevel", nil
}

type simulationResult struct {
	Success       bool   `json:"success"`
	CompanyID     string `json:"companyId"`
	UserID        string `json:"userId"`
	StorageMethod string `json:"storageMethod"`
}

func (s *service) simulate(c context.Context, session *ghlsession.Session) (simulationResult, error) {
	now := s.nower.Now()
	millis := now.UnixMilli()
	companyID := fmt.Sprintf("simulated-company-%d", millis)
	userID := fmt.Sprintf("simulated-user-%d", millis)

	method, err := session.StoreTokens(c, companyID, userID, ghlsession.TokenResponse{
		AccessToken:  fmt.Sprintf("simulated_access_token_%d", millis),
		RefreshToken: fmt.Sprintf("simulated_refresh_token_%d", millis),
		TokenType:    "Bearer",
		ExpiresIn:    3600,
	})
	if err != nil {
		return simulationResult{}, err
	}

	s.logger.Log(c, companyID, mylog.SeverityInfo, "Stored simulated tokens")

	return simulationResult{
		Success:       true,
		CompanyID:     companyID,
		UserID:        userID,
		StorageMethod: method,
	}, nil
}

// publish failures never fail the user flow: the cookie state is already persisted.
func (s *service) publish(c context.Context, event mypublisher.Event) {
	err := s.publisher.Publish(c, ghlevents.TopicName, event)
	if err != nil {
		s.logger.Log(c, event.GetAggregateName(), mylog.SeverityError, "Error publishing %s: %s", event.GetEventTypeName(), err)
	}
}
