// Package myconfig loads service configuration from .env, an optional TOML file and the environment.
//
// Later sources override earlier ones: defaults, TOML file, environment.
package myconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
)

const (
	DefaultConfigFile = "config.toml"
	MinSecretLength   = 32
	ApifyTokenPrefix  = "apify_api_"
)

type Config struct {
	Environment        string   `toml:"environment"`
	Port               int      `toml:"port"`
	LogLevel           string   `toml:"log_level"`
	GoogleCloudProject string   `toml:"google_cloud_project"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	TokenCacheBackend  string   `toml:"token_cache_backend"`
	EventsBackend      string   `toml:"events_backend"`

	GHL     GHLConfig     `toml:"ghl"`
	Session SessionConfig `toml:"session"`
	D7      D7Config      `toml:"d7"`
	Apify   ApifyConfig   `toml:"apify"`
}

type GHLConfig struct {
	ClientID     string  `toml:"client_id"`
	ClientSecret string  `toml:"client_secret"`
	RedirectURI  string  `toml:"redirect_uri"`
	RateLimit    float64 `toml:"rate_limit"`
}

type SessionConfig struct {
	SecretCookiePassword string `toml:"secret_cookie_password"`
}

type D7Config struct {
	APIKey    string  `toml:"api_key"`
	MaxPolls  int     `toml:"max_polls"`
	RateLimit float64 `toml:"rate_limit"`
}

type ApifyConfig struct {
	APIToken         string `toml:"api_token"`
	BatchConcurrency int    `toml:"batch_concurrency"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Environment:        "development",
		Port:               8080,
		LogLevel:           "info",
		CORSAllowedOrigins: []string{},
		TokenCacheBackend:  "memory",
		EventsBackend:      "log",
		GHL: GHLConfig{
			RateLimit: 10,
		},
		D7: D7Config{
			MaxPolls:  1,
			RateLimit: 5,
		},
		Apify: ApifyConfig{
			BatchConcurrency: 1,
		},
	}
}

// Load reads .env and the TOML file named by CONFIG_FILE (default config.toml).
func Load() (*Config, error) {
	tomlFile := os.Getenv("CONFIG_FILE")
	if tomlFile == "" {
		tomlFile = DefaultConfigFile
	}
	return LoadFrom(".env", tomlFile)
}

// LoadFrom skips files that do not exist.
func LoadFrom(envFile string, tomlFile string) (*Config, error) {
	if envFile != "" && fileExists(envFile) {
		err := godotenv.Load(envFile)
		if err != nil {
			return nil, myerrors.NewConfigError(fmt.Errorf("failed to load env file %s: %w", envFile, err))
		}
	}

	config := NewDefaultConfig()

	if tomlFile != "" && fileExists(tomlFile) {
		data, err := os.ReadFile(tomlFile)
		if err != nil {
			return nil, myerrors.NewConfigError(fmt.Errorf("failed to read config file %s: %w", tomlFile, err))
		}
		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, myerrors.NewConfigError(fmt.Errorf("failed to parse config file %s: %w", tomlFile, err))
		}
	}

	err := applyEnvOverrides(config)
	if err != nil {
		return nil, err
	}

	return config, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func applyEnvOverrides(config *Config) error {
	strs := map[string]*string{
		"LOG_LEVEL":              &config.LogLevel,
		"GOOGLE_CLOUD_PROJECT":   &config.GoogleCloudProject,
		"TOKEN_CACHE_BACKEND":    &config.TokenCacheBackend,
		"EVENTS_BACKEND":         &config.EventsBackend,
		"GHL_CLIENT_ID":          &config.GHL.ClientID,
		"GHL_CLIENT_SECRET":      &config.GHL.ClientSecret,
		"GHL_REDIRECT_URI":       &config.GHL.RedirectURI,
		"SECRET_COOKIE_PASSWORD": &config.Session.SecretCookiePassword,
		"D7_LEAD_FINDER_API_KEY": &config.D7.APIKey,
		"APIFY_API_TOKEN":        &config.Apify.APIToken,
	}
	for name, field := range strs {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}

	// NODE_ENV is accepted for deployments that still set it
	if v := os.Getenv("NODE_ENV"); v != "" {
		config.Environment = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		config.Environment = v
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := []string{}
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		config.CORSAllowedOrigins = origins
	}

	ints := map[string]*int{
		"PORT":                    &config.Port,
		"D7_MAX_POLLS":            &config.D7.MaxPolls,
		"APIFY_BATCH_CONCURRENCY": &config.Apify.BatchConcurrency,
	}
	for name, field := range ints {
		if v := os.Getenv(name); v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				return myerrors.NewConfigError(fmt.Errorf("%s must be an integer, got %q", name, v))
			}
			*field = i
		}
	}

	floats := map[string]*float64{
		"GHL_RATE_LIMIT": &config.GHL.RateLimit,
		"D7_RATE_LIMIT":  &config.D7.RateLimit,
	}
	for name, field := range floats {
		if v := os.Getenv(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return myerrors.NewConfigError(fmt.Errorf("%s must be a number, got %q", name, v))
			}
			*field = f
		}
	}

	return nil
}

// CORSAllowCredentials reports whether cross-origin requests may carry the session cookie.
// A wildcard origin never does.
func (c *Config) CORSAllowCredentials() bool {
	if len(c.CORSAllowedOrigins) == 0 {
		return false
	}
	for _, origin := range c.CORSAllowedOrigins {
		if origin == "*" {
			return false
		}
	}
	return true
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// Validate reports every missing or malformed startup key at once.
// The D7 and Apify credentials are checked when a request needs them.
func (c *Config) Validate() error {
	problems := []string{}

	if c.GHL.ClientID == "" {
		problems = append(problems, "GHL_CLIENT_ID is missing")
	}
	if c.GHL.ClientSecret == "" {
		problems = append(problems, "GHL_CLIENT_SECRET is missing")
	}
	if c.GHL.RedirectURI == "" {
		problems = append(problems, "GHL_REDIRECT_URI is missing")
	}
	if c.Session.SecretCookiePassword == "" {
		problems = append(problems, "SECRET_COOKIE_PASSWORD is missing")
	} else if len(c.Session.SecretCookiePassword) < MinSecretLength {
		problems = append(problems, fmt.Sprintf("SECRET_COOKIE_PASSWORD must be at least %d characters", MinSecretLength))
	}
	if c.TokenCacheBackend != "memory" && c.TokenCacheBackend != "datastore" {
		problems = append(problems, fmt.Sprintf("TOKEN_CACHE_BACKEND must be memory or datastore, got %q", c.TokenCacheBackend))
	}
	if c.EventsBackend != "log" && c.EventsBackend != "pubsub" {
		problems = append(problems, fmt.Sprintf("EVENTS_BACKEND must be log or pubsub, got %q", c.EventsBackend))
	}
	if (c.TokenCacheBackend == "datastore" || c.EventsBackend == "pubsub") && c.GoogleCloudProject == "" {
		problems = append(problems, "GOOGLE_CLOUD_PROJECT is required for the datastore and pubsub backends")
	}
	if c.Port <= 0 {
		problems = append(problems, "PORT must be positive")
	}
	if c.D7.MaxPolls < 1 {
		problems = append(problems, "D7_MAX_POLLS must be at least 1")
	}
	if c.Apify.BatchConcurrency < 1 {
		problems = append(problems, "APIFY_BATCH_CONCURRENCY must be at least 1")
	}

	if len(problems) > 0 {
		return myerrors.NewConfigError(fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; ")))
	}
	return nil
}

// ValidateApifyToken is used by the ad scanner before each scan.
func ValidateApifyToken(token string) error {
	if token == "" {
		return myerrors.NewConfigError(fmt.Errorf("Apify API token is not configured"))
	}
	if !strings.HasPrefix(token, ApifyTokenPrefix) {
		return myerrors.NewConfigError(fmt.Errorf("Invalid Apify API token format"))
	}
	return nil
}
