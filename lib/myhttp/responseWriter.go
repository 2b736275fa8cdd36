package myhttp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
)

type ResponseWriter interface {
	WriteError(c context.Context, w http.ResponseWriter, errorCode int, err error)
	Write(c context.Context, w http.ResponseWriter, httpStatus int, resp interface{})
	WriteHTML(c context.Context, w http.ResponseWriter, httpStatus int, body []byte)
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	ErrorCode int    `json:"errorCode"`
	Error     string `json:"error"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewWriter(logger mylog.Logger) ResponseWriter {
	return &responseWriter{
		logger: logger,
	}
}

type responseWriter struct {
	logger mylog.Logger
}

func (rw responseWriter) WriteError(c context.Context, w http.ResponseWriter, errorCode int, err error) {
	httpStatus := myerrors.GetHTTPStatus(err)
	rw.logger.Log(c, "", mylog.SeverityWarn, "Error response: http-status:%d, error-code:%d, error-msg:%s", httpStatus, errorCode, err)
	rw.write(c, w, httpStatus, ErrorResponse{
		Success:   false,
		ErrorCode: errorCode,
		Error:     myerrors.Message(err),
	})
}

func (rw responseWriter) Write(c context.Context, w http.ResponseWriter, httpStatus int, resp interface{}) {
	rw.logger.Log(c, "", mylog.SeverityDebug, "Success response: http-status:%d", httpStatus)
	rw.write(c, w, httpStatus, resp)
}

func (rw responseWriter) WriteHTML(c context.Context, w http.ResponseWriter, httpStatus int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(httpStatus)
	_, err := w.Write(body)
	if err != nil {
		rw.logger.Log(c, "", mylog.SeverityError, "Error writing html response: %s", err)
	}
}

func (rw responseWriter) write(c context.Context, w http.ResponseWriter, httpStatus int, resp interface{}) {
	payload, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		rw.logger.Log(c, "", mylog.SeverityError, "Error encoding response: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(httpStatus)
	_, err = w.Write(payload)
	if err != nil {
		rw.logger.Log(c, "", mylog.SeverityError, "Error writing response: %s", err)
	}
}
