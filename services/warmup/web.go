package warmup

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Haazy99/AgencyTest2/lib/mycontext"
	"github.com/Haazy99/AgencyTest2/lib/myhttp"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
)

type webService struct {
	logger mylog.Logger
}

func NewService() *webService {
	return &webService{
		logger: mylog.New("warmup"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/healthz", s.healthPage()).Methods("GET")
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")

	return nil
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *webService) healthPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		myhttp.NewWriter(s.logger).Write(c, w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		myhttp.NewWriter(s.logger).Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Success: true,
			Message: "Successfully processed warmup request",
		})
	}
}
