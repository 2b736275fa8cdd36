package ghlsession

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Haazy99/AgencyTest2/lib/mystore"
	"github.com/Haazy99/AgencyTest2/lib/mytime"
	"github.com/Haazy99/AgencyTest2/lib/myuuid"
)

const exampleSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	manager *Manager
	store   *mystore.InMemoryStore[CachedBundle]
	now     time.Time
	cookies []*http.Cookie
}

func setup(t *testing.T, ctrl *gomock.Controller) *fixture {
	f := &fixture{now: mytime.ExampleTime}

	nowerMock := mytime.NewMockNower(ctrl)
	nowerMock.EXPECT().Now().DoAndReturn(func() time.Time { return f.now }).AnyTimes()
	uuiderMock := myuuid.NewMockUUIDer(ctrl)
	uuiderMock.EXPECT().Create().Return("ref-1").AnyTimes()

	store, _, err := mystore.NewInMemoryStore[CachedBundle](t.Context())
	require.NoError(t, err)
	f.store = store
	f.manager = NewManager(exampleSecret, false, NewTokenCache(store, nowerMock), nowerMock, uuiderMock)
	return f
}

// step runs one request against the session and carries the resulting cookie to the next step.
func (f *fixture) step(t *testing.T, do func(s *Session)) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range f.cookies {
		request.AddCookie(cookie)
	}
	response := httptest.NewRecorder()

	session, err := f.manager.GetSession(response, request)
	require.NoError(t, err)
	do(session)

	if cookies := response.Result().Cookies(); len(cookies) > 0 {
		f.cookies = cookies
	}
}

func incompressibleToken(n int) string {
	sb := strings.Builder{}
	h := sha256.Sum256([]byte("seed"))
	for sb.Len() < n {
		sb.WriteString(hex.EncodeToString(h[:]))
		h = sha256.Sum256(h[:])
	}
	return sb.String()[:n]
}
