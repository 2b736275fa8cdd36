package myconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
)

func validConfig() *Config {
	config := NewDefaultConfig()
	config.GHL.ClientID = "client-id"
	config.GHL.ClientSecret = "client-secret"
	config.GHL.RedirectURI = "http://localhost:8080/api/auth/callback"
	config.Session.SecretCookiePassword = "0123456789abcdef0123456789abcdef"
	return config
}

func TestLoad(t *testing.T) {
	t.Run("Toml file with env override", func(t *testing.T) {
		dir := t.TempDir()
		tomlFile := filepath.Join(dir, "config.toml")
		require.NoError(t, os.WriteFile(tomlFile, []byte(`
port = 9090
cors_allowed_origins = ["https://app.example.com"]

[ghl]
client_id = "from-file"
redirect_uri = "https://app.example.com/api/auth/callback"

[d7]
max_polls = 3
`), 0o600))

		t.Setenv("GHL_CLIENT_ID", "from-env")
		t.Setenv("APIFY_BATCH_CONCURRENCY", "4")
		t.Setenv("GHL_RATE_LIMIT", "2.5")
		t.Setenv("APP_ENV", "production")

		config, err := LoadFrom("", tomlFile)
		require.NoError(t, err)
		assert.Equal(t, 9090, config.Port)
		assert.Equal(t, []string{"https://app.example.com"}, config.CORSAllowedOrigins)
		assert.Equal(t, "from-env", config.GHL.ClientID)
		assert.Equal(t, "https://app.example.com/api/auth/callback", config.GHL.RedirectURI)
		assert.Equal(t, 3, config.D7.MaxPolls)
		assert.Equal(t, 4, config.Apify.BatchConcurrency)
		assert.Equal(t, 2.5, config.GHL.RateLimit)
		assert.True(t, config.IsProduction())
	})

	t.Run("Missing files use defaults", func(t *testing.T) {
		config, err := LoadFrom(filepath.Join(t.TempDir(), ".env"), filepath.Join(t.TempDir(), "none.toml"))
		require.NoError(t, err)
		assert.Equal(t, 1, config.D7.MaxPolls)
		assert.Equal(t, "memory", config.TokenCacheBackend)
	})

	t.Run("Malformed integer", func(t *testing.T) {
		t.Setenv("D7_MAX_POLLS", "many")
		_, err := LoadFrom("", "")
		assert.True(t, myerrors.IsKind(err, myerrors.KindConfig))
		assert.ErrorContains(t, err, "D7_MAX_POLLS must be an integer")
	})

	t.Run("Comma separated origins", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
		config, err := LoadFrom("", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, config.CORSAllowedOrigins)
	})
}

func TestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("Lists all missing keys", func(t *testing.T) {
		err := NewDefaultConfig().Validate()
		assert.True(t, myerrors.IsKind(err, myerrors.KindConfig))
		assert.ErrorContains(t, err, "GHL_CLIENT_ID is missing")
		assert.ErrorContains(t, err, "GHL_CLIENT_SECRET is missing")
		assert.ErrorContains(t, err, "GHL_REDIRECT_URI is missing")
		assert.ErrorContains(t, err, "SECRET_COOKIE_PASSWORD is missing")
	})

	t.Run("Short secret", func(t *testing.T) {
		config := validConfig()
		config.Session.SecretCookiePassword = "short"
		assert.ErrorContains(t, config.Validate(), "SECRET_COOKIE_PASSWORD must be at least 32 characters")
	})

	t.Run("Datastore needs project", func(t *testing.T) {
		config := validConfig()
		config.TokenCacheBackend = "datastore"
		assert.ErrorContains(t, config.Validate(), "GOOGLE_CLOUD_PROJECT is required")
	})
}

func TestCORSAllowCredentials(t *testing.T) {
	testCases := []struct {
		name    string
		origins []string
		allowed bool
	}{
		{name: "Default has no origins", origins: NewDefaultConfig().CORSAllowedOrigins, allowed: false},
		{name: "Wildcard", origins: []string{"*"}, allowed: false},
		{name: "Wildcard among others", origins: []string{"https://app.example.com", "*"}, allowed: false},
		{name: "Explicit origins", origins: []string{"https://app.example.com"}, allowed: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := validConfig()
			config.CORSAllowedOrigins = tc.origins
			assert.Equal(t, tc.allowed, config.CORSAllowCredentials())
		})
	}
}

func TestValidateApifyToken(t *testing.T) {
	assert.EqualError(t, ValidateApifyToken(""), "status: 500, err: Apify API token is not configured")
	assert.EqualError(t, ValidateApifyToken("abc"), "status: 500, err: Invalid Apify API token format")
	assert.NoError(t, ValidateApifyToken("apify_api_123"))
}
