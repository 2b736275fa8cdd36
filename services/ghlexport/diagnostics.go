package ghlexport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Haazy99/AgencyTest2/lib/mycontext"
	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/myhttp"
	"github.com/Haazy99/AgencyTest2/services/ghlsession"
)

const tokenPreviewLength = 10

var errNoAccessToken = fmt.Errorf("No access token available. Please reconnect to GoHighLevel.")

type tokenView struct {
	HasAccessToken bool    `json:"hasAccessToken"`
	TokenLength    int     `json:"tokenLength"`
	TokenPreview   *string `json:"tokenPreview"`
}

func newTokenView(token string) tokenView {
	view := tokenView{
		HasAccessToken: token != "",
		TokenLength:    len(token),
	}
	if token != "" {
		p := ghlsession.Preview(token, tokenPreviewLength)
		view.TokenPreview = &p
	}
	return view
}

type debugSessionResponse struct {
	Success   bool                 `json:"success"`
	Session   ghlsession.DebugView `json:"session"`
	Token     tokenView            `json:"token"`
	Timestamp string               `json:"timestamp"`
}

func (s *webService) timestamp() string {
	return s.nower.Now().UTC().Format(time.RFC3339)
}

func (s *webService) debugSessionPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		session, err := s.sessions.GetSession(w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		view := session.DebugView()
		token, err := session.GetAccessToken(c)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, debugSessionResponse{
			Success:   true,
			Session:   view,
			Token:     newTokenView(token),
			Timestamp: s.timestamp(),
		})
	}
}

type locationTokenInfoResponse struct {
	Success            bool         `json:"success"`
	Message            string       `json:"message"`
	HasAccessToken     bool         `json:"hasAccessToken"`
	TokenLength        int          `json:"tokenLength"`
	LocationsCount     int          `json:"locationsCount"`
	AvailableLocations []SubAccount `json:"availableLocations"`
	Instructions       string       `json:"instructions"`
}

func (s *webService) locationTokenInfoPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		session, err := s.sessions.GetSession(w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		token, err := session.GetAccessToken(c)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}
		if token == "" {
			errorWriter.WriteError(c, w, 3, myerrors.NewAuthError(errNoAccessToken))
			return
		}

		subAccounts, err := s.service.subAccounts(c, session)
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, locationTokenInfoResponse{
			Success:            true,
			Message:            "Location token test endpoint ready",
			HasAccessToken:     true,
			TokenLength:        len(token),
			LocationsCount:     len(subAccounts),
			AvailableLocations: subAccounts,
			Instructions:       `POST to this endpoint with { "locationId": "your-location-id" } to test location token generation`,
		})
	}
}

type locationTokenRequest struct {
	LocationID string `json:"locationId"`
}

type locationTokenTestResponse struct {
	Success              bool   `json:"success"`
	Message              string `json:"message"`
	LocationID           string `json:"locationId"`
	HasLocationToken     bool   `json:"hasLocationToken"`
	LocationTokenLength  int    `json:"locationTokenLength"`
	LocationTokenPreview string `json:"locationTokenPreview"`
	Timestamp            string `json:"timestamp"`
}

func (s *webService) locationTokenTestPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		req := locationTokenRequest{LocationID: r.URL.Query().Get("locationId")}
		if req.LocationID == "" && r.ContentLength != 0 {
			err := json.NewDecoder(r.Body).Decode(&req)
			if err != nil {
				errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("Invalid request: %s", err))
				return
			}
		}
		if req.LocationID == "" {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("Location ID is required"))
			return
		}

		session, err := s.sessions.GetSession(w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		token, err := session.GetAccessToken(c)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}
		if token == "" {
			errorWriter.WriteError(c, w, 4, myerrors.NewAuthError(errNoAccessToken))
			return
		}

		locationToken, err := s.service.ghl.GetLocationToken(c, token, session.GHLCompanyID, req.LocationID)
		if err != nil {
			errorWriter.WriteError(c, w, 5, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, locationTokenTestResponse{
			Success:              true,
			Message:              "Location token generated successfully",
			LocationID:           req.LocationID,
			HasLocationToken:     locationToken != "",
			LocationTokenLength:  len(locationToken),
			LocationTokenPreview: ghlsession.Preview(locationToken, tokenPreviewLength),
			Timestamp:            s.timestamp(),
		})
	}
}
