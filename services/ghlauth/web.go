package ghlauth

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Haazy99/AgencyTest2/lib/mycontext"
	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/myhttp"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/mypublisher"
	"github.com/Haazy99/AgencyTest2/lib/mytime"
	"github.com/Haazy99/AgencyTest2/services/ghlsession"
)

type webService struct {
	service    *service
	sessions   *ghlsession.Manager
	production bool
	logger     mylog.Logger
}

func NewService(sessions *ghlsession.Manager, oauthClient OauthClient, pub mypublisher.Publisher, nower mytime.Nower, production bool) *webService {
	return &webService{
		service:    newService(oauthClient, pub, nower),
		sessions:   sessions,
		production: production,
		logger:     mylog.New("ghlauth"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/auth/ghl/connect", s.connectPage()).Methods("GET")
	router.HandleFunc("/api/auth/callback", s.callbackPage()).Methods("GET")
	router.HandleFunc("/api/auth/ghl/disconnect", s.disconnectPage()).Methods("POST")
	router.HandleFunc("/api/auth/ghl/status", s.statusPage()).Methods("GET")

	if !s.production {
		router.HandleFunc("/api/test-oauth-simulation", s.simulationPage()).Methods("GET", "POST")
	}

	err := s.service.CreateTopics(c)
	if err != nil {
		return err
	}

	return nil
}

//go:embed templates
var templateFolder embed.FS
var (
	callbackPageTemplate *template.Template
)

func init() {
	callbackPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/callback.html"))
}

type connectResponse struct {
	AuthorizationURL string `json:"authorizationUrl"`
}

func (s *webService) connectPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		session, err := s.sessions.GetSession(w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		authURL, err := s.service.connect(c, session)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, connectResponse{
			AuthorizationURL: authURL,
		})
	}
}

func (s *webService) callbackPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		var page callbackPage
		session, err := s.sessions.GetSession(w, r)
		if err != nil {
			s.logger.Log(c, "", mylog.SeverityError, "Error reading session: %s", err)
			page = errorPage("OAuth Error", "Failed to connect GHL account: "+myerrors.Message(err))
		} else {
			query := r.URL.Query()
			page = s.service.callback(c, session, callbackParams{
				Code:             query.Get("code"),
				State:            query.Get("state"),
				Error:            query.Get("error"),
				ErrorDescription: query.Get("error_description"),
			})
		}

		buf := bytes.Buffer{}
		err = callbackPageTemplate.Execute(&buf, page)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}

		errorWriter.WriteHTML(c, w, http.StatusOK, buf.Bytes())
	}
}

func (s *webService) disconnectPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		session, err := s.sessions.GetSession(w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		message, err := s.service.disconnect(c, session)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Success: true,
			Message: message,
		})
	}
}

func (s *webService) statusPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		session, err := s.sessions.GetSession(w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		status, err := session.Status(c)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, status)
	}
}

func (s *webService) simulationPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		session, err := s.sessions.GetSession(w, r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		result, err := s.service.simulate(c, session)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, result)
	}
}
