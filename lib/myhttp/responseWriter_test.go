package myhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
)

func TestResponseWriter(t *testing.T) {
	writer := NewWriter(mylog.New("test"))

	t.Run("Error response carries class status and plain message", func(t *testing.T) {
		response := httptest.NewRecorder()
		writer.WriteError(context.TODO(), response, 3, myerrors.NewScopeError(fmt.Errorf("missing oauth.write scope")))

		assert.Equal(t, 403, response.Code)
		assert.Equal(t, "application/json", response.Header().Get("Content-Type"))
		resp := ErrorResponse{}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, 3, resp.ErrorCode)
		assert.Equal(t, "missing oauth.write scope", resp.Error)
	})

	t.Run("Success response", func(t *testing.T) {
		response := httptest.NewRecorder()
		writer.Write(context.TODO(), response, 200, SuccessResponse{Success: true, Message: "ok"})

		assert.Equal(t, 200, response.Code)
		assert.JSONEq(t, `{"success":true,"message":"ok"}`, response.Body.String())
	})

	t.Run("Html response", func(t *testing.T) {
		response := httptest.NewRecorder()
		writer.WriteHTML(context.TODO(), response, 200, []byte("<p>done</p>"))

		assert.Equal(t, "text/html; charset=utf-8", response.Header().Get("Content-Type"))
		assert.Equal(t, "<p>done</p>", response.Body.String())
	})
}
