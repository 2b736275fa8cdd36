package leads

import (
	"context"
	"encoding/json"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/Haazy99/AgencyTest2/lib/mycontext"
	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/myhttp"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/myuuid"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(d7 D7API, uuider myuuid.UUIDer, maxPolls int) *webService {
	return &webService{
		service: newService(d7, uuider, maxPolls),
		logger:  mylog.New("leads"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/leads/search", s.searchPage()).Methods("GET", "POST")

	return nil
}

type searchResponse struct {
	Success bool   `json:"success"`
	Leads   []Lead `json:"leads"`
}

func queryFromRequest(r *http.Request) (Query, error) {
	q := Query{}
	if r.Method == http.MethodPost {
		err := json.NewDecoder(r.Body).Decode(&q)
		if err != nil {
			return q, myerrors.NewInvalidInputErrorf("Invalid search request: %s", err)
		}
		return q, nil
	}

	err := r.ParseForm()
	if err != nil {
		return q, myerrors.NewInvalidInputError(err)
	}
	err = formcodec.NewDecoder().Decode(&q, r.Form)
	if err != nil {
		return q, myerrors.NewInvalidInputErrorf("Invalid search request: %s", err)
	}
	return q, nil
}

func (s *webService) searchPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		q, err := queryFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		leads, err := s.service.search(c, q)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, searchResponse{
			Success: true,
			Leads:   leads,
		})
	}
}
