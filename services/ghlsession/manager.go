// Package ghlsession keeps the GoHighLevel connection of a browser in its sealed session cookie.
//
// Token bundles small enough are stored compressed inside the cookie. Larger ones go to a
// TokenCache and the cookie only carries the reference.
package ghlsession

import (
	"errors"
	"net/http"

	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/mysession"
	"github.com/Haazy99/AgencyTest2/lib/mytime"
	"github.com/Haazy99/AgencyTest2/lib/myuuid"
)

type Manager struct {
	codec    *mysession.CookieCodec
	codecErr error
	cache    TokenCache
	nower    mytime.Nower
	uuider   myuuid.UUIDer
	logger   mylog.Logger
}

// NewManager does not fail on a bad secret; GetSession reports it on use.
func NewManager(secret string, secure bool, cache TokenCache, nower mytime.Nower, uuider myuuid.UUIDer) *Manager {
	codec, err := mysession.NewCookieCodec(mysession.Options{
		Name:   CookieName,
		Secret: secret,
		MaxAge: CookieMaxAge,
		Secure: secure,
	})
	return &Manager{
		codec:    codec,
		codecErr: err,
		cache:    cache,
		nower:    nower,
		uuider:   uuider,
		logger:   mylog.New("ghlsession"),
	}
}

// GetSession reads the session of the request. Changes are written to w, so call it before writing a body.
func (m *Manager) GetSession(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if m.codecErr != nil {
		return nil, m.codecErr
	}

	s := &Session{
		manager: m,
		w:       w,
	}
	_, err := m.codec.Read(r, &s.Data)
	if err != nil {
		if !errors.Is(err, mysession.ErrInvalidCookie) {
			return nil, err
		}
		m.logger.Log(r.Context(), "", mylog.SeverityWarn, "Discarding unreadable session cookie")
		s.Data = Data{}
	}
	return s, nil
}
