package adscan

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Haazy99/AgencyTest2/lib/mycontext"
	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/myhttp"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/mytime"
	"github.com/Haazy99/AgencyTest2/services/leads"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(scraper PageScraper, apifyToken string, nower mytime.Nower, batchConcurrency int) *webService {
	return &webService{
		service: newService(scraper, apifyToken, nower, batchConcurrency),
		logger:  mylog.New("adscan"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/scan-facebook-ads", s.scanPage()).Methods("POST")

	return nil
}

type scanRequest struct {
	Leads json.RawMessage `json:"leads"`
}

type scanResponse struct {
	Success bool         `json:"success"`
	Results []leads.Lead `json:"results"`
}

func leadsFromRequest(r *http.Request) ([]leads.Lead, error) {
	req := scanRequest{}
	err := json.NewDecoder(r.Body).Decode(&req)
	trimmed := bytes.TrimSpace(req.Leads)
	if err != nil || len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, myerrors.NewInvalidInputErrorf("Invalid request: leads array is required")
	}

	in := []leads.Lead{}
	err = json.Unmarshal(trimmed, &in)
	if err != nil {
		return nil, myerrors.NewInvalidInputErrorf("Invalid request: %s", err)
	}
	return in, nil
}

func (s *webService) scanPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := s.service.checkToken()
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		in, err := leadsFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		results, err := s.service.scan(c, in)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, scanResponse{
			Success: true,
			Results: results,
		})
	}
}
