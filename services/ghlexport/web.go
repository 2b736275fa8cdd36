package ghlexport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Haazy99/AgencyTest2/lib/mycontext"
	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/myhttp"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/mypublisher"
	"github.com/Haazy99/AgencyTest2/lib/mytime"
	"github.com/Haazy99/AgencyTest2/services/ghlclient"
	"github.com/Haazy99/AgencyTest2/services/ghlsession"
)

type webService struct {
	service    *service
	sessions   *ghlsession.Manager
	nower      mytime.Nower
	production bool
	logger     mylog.Logger
}

func NewService(sessions *ghlsession.Manager, ghl ghlclient.API, pub mypublisher.Publisher, nower mytime.Nower, production bool) *webService {
	return &webService{
		service:    newService(ghl, pub),
		sessions:   sessions,
		nower:      nower,
		production: production,
		logger:     mylog.New("ghlexport"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/ghl/locations", s.locationsPage()).Methods("GET")
	router.HandleFunc("/api/ghl/export-lead", s.exportPage()).Methods("POST")

	if !s.production {
		router.HandleFunc("/api/ghl/debug-session", s.debugSessionPage()).Methods("GET")
		router.HandleFunc("/api/ghl/test-location-token", s.locationTokenInfoPage()).Methods("GET")
		router.HandleFunc("/api/ghl/test-location-token", s.locationTokenTestPage()).Methods("POST")
	}

	err := s.service.CreateTopics(c)
	if err != nil {
		return err
	}

	return nil
}

type locationsResponse struct {
	SubAccounts []SubAccount `json:"subAccounts"`
}

func (s *webService) locationsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		session, err := s.sessions.GetSession(w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		subAccounts, err := s.service.subAccounts(c, session)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, locationsResponse{
			SubAccounts: subAccounts,
		})
	}
}

type exportResponse struct {
	Success   bool                    `json:"success"`
	ContactID string                  `json:"contactId"`
	Contact   ghlclient.ContactRecord `json:"contact"`
	Message   string                  `json:"message"`
}

func (s *webService) exportPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		req := ExportRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("Invalid export request: %s", err))
			return
		}

		session, err := s.sessions.GetSession(w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		result, err := s.service.export(c, session, req)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, exportResponse{
			Success:   true,
			ContactID: result.ContactID,
			Contact:   result.Contact,
			Message:   result.Message,
		})
	}
}
