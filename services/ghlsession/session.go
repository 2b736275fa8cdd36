package ghlsession

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/mymetrics"
	"github.com/Haazy99/AgencyTest2/lib/tokencodec"
)

type Session struct {
	Data
	manager *Manager
	w       http.ResponseWriter
}

func (s *Session) save() error {
	return s.manager.codec.Write(s.w, s.Data)
}

func (s *Session) now() int64 {
	return s.manager.nower.Now().Unix()
}

func (s *Session) GenerateAndStoreOAuthState(c context.Context) (string, error) {
	state := s.manager.uuider.Create()
	s.OAuthState = state
	err := s.save()
	if err != nil {
		return "", err
	}
	return state, nil
}

// ValidateAndClearOAuthState always clears and persists the stored state before comparing,
// so a state can be used once only.
func (s *Session) ValidateAndClearOAuthState(c context.Context, candidate string) (bool, error) {
	stored := s.OAuthState
	s.OAuthState = ""
	err := s.save()
	if err != nil {
		return false, err
	}
	return stored != "" && stored == candidate, nil
}

// StoreTokens returns the storage method used.
func (s *Session) StoreTokens(c context.Context, companyID string, userID string, tokens TokenResponse) (string, error) {
	expiry := s.now() + tokens.ExpiresIn
	bundle := tokencodec.Bundle{
		AccessToken:     tokens.AccessToken,
		RefreshToken:    tokens.RefreshToken,
		TokenType:       tokens.TokenType,
		ExpiresIn:       tokens.ExpiresIn,
		ExpiryTimestamp: expiry,
	}
	compressed, err := tokencodec.Compress(bundle)
	if err != nil {
		return "", err
	}

	candidate := s.Data
	candidate.GHLConnected = true
	candidate.GHLCompanyID = companyID
	candidate.GHLUserID = userID
	candidate.GHLTokenExpiryTimestamp = expiry
	candidate.GHLTokenData = compressed
	candidate.SessionID = ""

	size, err := s.projectedCookieSize(candidate)
	if err != nil {
		return "", err
	}

	previousRef := s.SessionID
	method := StorageCompressedSession
	if size >= MaxInlineCookieSize {
		method = StorageMemoryReference
		ref := s.manager.uuider.Create()
		err = s.manager.cache.Set(c, ref, bundle)
		if err != nil {
			return "", myerrors.NewSessionError(err)
		}
		candidate.GHLTokenData = ""
		candidate.SessionID = ref
	}

	if previousRef != "" && previousRef != candidate.SessionID {
		s.deleteCached(c, previousRef)
	}

	s.Data = candidate
	err = s.save()
	if err != nil {
		return "", err
	}

	s.manager.logger.Log(c, companyID, mylog.SeverityInfo, "Stored tokens using %s (projected cookie size %d)", method, size)
	mymetrics.RecordTokenStorage(method)

	return method, nil
}

func (s *Session) projectedCookieSize(d Data) (int, error) {
	jsonBytes, err := json.Marshal(d)
	if err != nil {
		return 0, myerrors.NewSessionError(fmt.Errorf("error marshalling session: %w", err))
	}
	return s.manager.codec.SealedLen(len(jsonBytes)), nil
}

func (s *Session) deleteCached(c context.Context, ref string) {
	err := s.manager.cache.Delete(c, ref)
	if err != nil {
		s.manager.logger.Log(c, ref, mylog.SeverityWarn, "Error deleting cached tokens: %s", err)
	}
}

// GetTokens returns nil when the session holds no usable tokens for this tenant.
func (s *Session) GetTokens(c context.Context, companyID string, userID string) (*tokencodec.Bundle, error) {
	if !s.GHLConnected || s.GHLCompanyID != companyID || s.GHLUserID != userID || s.GHLTokenExpiryTimestamp == 0 {
		return nil, nil
	}

	if s.now() >= s.GHLTokenExpiryTimestamp {
		s.manager.logger.Log(c, companyID, mylog.SeverityInfo, "Tokens expired, clearing session")
		return nil, s.ClearTokens(c)
	}

	if s.GHLTokenData != "" {
		bundle, err := tokencodec.Decompress(s.GHLTokenData)
		if err == nil {
			return &bundle, nil
		}
		s.manager.logger.Log(c, companyID, mylog.SeverityWarn, "Error decompressing session tokens, trying cache: %s", err)
	}

	if s.SessionID != "" {
		bundle, found, err := s.manager.cache.Get(c, s.SessionID)
		if err != nil {
			return nil, myerrors.NewSessionError(err)
		}
		if found {
			return &bundle, nil
		}
		s.manager.logger.Log(c, companyID, mylog.SeverityWarn, "No cached tokens for reference %s", s.SessionID)
	}

	return nil, nil
}

// GetAccessToken returns "" when not connected. A connected session without usable tokens is cleared.
func (s *Session) GetAccessToken(c context.Context) (string, error) {
	if !s.GHLConnected {
		return "", nil
	}

	if s.GHLCompanyID == "" || s.GHLUserID == "" || s.now() >= s.GHLTokenExpiryTimestamp {
		return "", s.ClearTokens(c)
	}

	bundle, err := s.GetTokens(c, s.GHLCompanyID, s.GHLUserID)
	if err != nil {
		return "", err
	}
	if bundle == nil {
		return "", s.ClearTokens(c)
	}
	return bundle.AccessToken, nil
}

// ClearTokens is idempotent and leaves the oauth state untouched.
func (s *Session) ClearTokens(c context.Context) error {
	if s.SessionID != "" {
		s.deleteCached(c, s.SessionID)
	}
	s.GHLConnected = false
	s.GHLCompanyID = ""
	s.GHLUserID = ""
	s.GHLTokenExpiryTimestamp = 0
	s.GHLTokenData = ""
	s.SessionID = ""
	return s.save()
}

func (s *Session) expiryView() (*int64, *bool) {
	if s.GHLTokenExpiryTimestamp == 0 {
		return nil, nil
	}
	expiry := s.GHLTokenExpiryTimestamp
	expired := s.now() >= expiry
	return &expiry, &expired
}

// Status may clear the session when its tokens turn out to be unusable.
func (s *Session) Status(c context.Context) (Status, error) {
	expiry, expired := s.expiryView()
	debug := StatusDebug{
		SessionConnected: s.GHLConnected,
		HasCompanyID:     s.GHLCompanyID != "",
		HasUserID:        s.GHLUserID != "",
		HasTokenData:     s.GHLTokenData != "",
		HasSessionID:     s.SessionID != "",
		TokenDataSize:    len(s.GHLTokenData),
		StorageMethod:    s.storageMethod(),
		TokenExpiry:      expiry,
		TokenExpired:     expired,
	}

	if debug.SessionConnected && debug.HasCompanyID && debug.HasUserID && (debug.HasTokenData || debug.HasSessionID) {
		debug.HasValidTokens = expired != nil && !*expired
		if !debug.HasValidTokens {
			accessToken, err := s.GetAccessToken(c)
			if err != nil {
				return Status{}, err
			}
			debug.HasValidTokens = accessToken != ""
		}
	}

	return Status{
		IsConnected: debug.SessionConnected && debug.HasValidTokens,
		CompanyID:   s.GHLCompanyID,
		Debug:       debug,
	}, nil
}

func (s *Session) DebugView() DebugView {
	expiry, expired := s.expiryView()
	return DebugView{
		GHLConnected:  s.GHLConnected,
		HasCompanyID:  s.GHLCompanyID != "",
		CompanyID:     preview(s.GHLCompanyID, 8),
		HasUserID:     s.GHLUserID != "",
		UserID:        preview(s.GHLUserID, 8),
		HasTokenData:  s.GHLTokenData != "",
		TokenDataSize: len(s.GHLTokenData),
		StorageMethod: s.storageMethod(),
		TokenExpiry:   expiry,
		TokenExpired:  expired,
	}
}

// Preview shortens an identifier or token for display.
func Preview(value string, n int) string {
	if len(value) <= n {
		return value + "..."
	}
	return value[:n] + "..."
}

func preview(value string, n int) *string {
	if value == "" {
		return nil
	}
	p := Preview(value, n)
	return &p
}
