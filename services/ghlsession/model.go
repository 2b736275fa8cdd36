package ghlsession

import "time"

const (
	CookieName   = "ghl_oauth_session"
	CookieMaxAge = 30 * 24 * time.Hour

	// sealed cookie values at or above this size go to the token cache
	MaxInlineCookieSize = 3500

	StorageCompressedSession = "compressed_session"
	StorageMemoryReference   = "memory_reference"
	StorageNone              = "none"
)

// Data is the cookie payload. When GHLConnected is set exactly one of GHLTokenData and SessionID is set.
type Data struct {
	OAuthState              string `json:"oauthState,omitempty"`
	GHLConnected            bool   `json:"ghlConnected,omitempty"`
	GHLCompanyID            string `json:"ghlCompanyId,omitempty"`
	GHLUserID               string `json:"ghlUserId,omitempty"`
	GHLTokenExpiryTimestamp int64  `json:"ghlTokenExpiryTimestamp,omitempty"`
	GHLTokenData            string `json:"ghlTokenData,omitempty"`
	SessionID               string `json:"sessionId,omitempty"`
}

func (d Data) storageMethod() string {
	switch {
	case d.GHLTokenData != "":
		return StorageCompressedSession
	case d.SessionID != "":
		return StorageMemoryReference
	default:
		return StorageNone
	}
}

type TokenResponse struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
}

type Status struct {
	IsConnected bool        `json:"isConnected"`
	CompanyID   string      `json:"companyId,omitempty"`
	Debug       StatusDebug `json:"debug"`
}

type StatusDebug struct {
	SessionConnected bool   `json:"sessionConnected"`
	HasValidTokens   bool   `json:"hasValidTokens"`
	HasCompanyID     bool   `json:"hasCompanyId"`
	HasUserID        bool   `json:"hasUserId"`
	HasTokenData     bool   `json:"hasTokenData"`
	HasSessionID     bool   `json:"hasSessionId"`
	TokenDataSize    int    `json:"tokenDataSize"`
	StorageMethod    string `json:"storageMethod"`
	TokenExpiry      *int64 `json:"tokenExpiry"`
	TokenExpired     *bool  `json:"tokenExpired"`
}

// DebugView never carries full identifiers or tokens.
type DebugView struct {
	GHLConnected  bool    `json:"ghlConnected"`
	HasCompanyID  bool    `json:"hasCompanyId"`
	CompanyID     *string `json:"companyId"`
	HasUserID     bool    `json:"hasUserId"`
	UserID        *string `json:"userId"`
	HasTokenData  bool    `json:"hasTokenData"`
	TokenDataSize int     `json:"tokenDataSize"`
	StorageMethod string  `json:"storageMethod"`
	TokenExpiry   *int64  `json:"tokenExpiry"`
	TokenExpired  *bool   `json:"tokenExpired"`
}
