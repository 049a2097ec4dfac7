package graw

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
)

const (
	// DefaultBaseURL is the default Reddit API base URL
	DefaultBaseURL = "https://oauth.reddit.com/"
	// DefaultAuthURL is the default Reddit OAuth base URL
	DefaultAuthURL = "https://www.reddit.com/"
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "go-reddit-dispatch/0.1"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second

	// ConfigPathEnv names the environment variable LoadConfig falls back to.
	ConfigPathEnv = "GRAW_CONFIG"
)

// Config holds the configuration of a Dispatch.
//
// The grant is chosen from the credentials present, in this order:
//   - AccessToken: used verbatim and never refreshed
//   - RefreshToken: refresh_token grant
//   - Username and Password: password grant
//   - InstalledClient: installed_client grant with DeviceID (generated when empty)
//   - otherwise: client_credentials grant
//
// Example for a script app acting as a user:
//
//	config := &graw.Config{
//		Username:     "your-username",
//		Password:     "your-password",
//		ClientID:     "your-client-id",
//		ClientSecret: "your-client-secret",
//		UserAgent:    "myapp/1.0 by /u/yourusername",
//	}
type Config struct {
	// ClientID and ClientSecret identify the Reddit app.
	// ClientSecret is empty for installed apps.
	ClientID     string
	ClientSecret string

	// Username and Password for password grant flow.
	Username string
	Password string

	RefreshToken string
	AccessToken  string

	// InstalledClient selects the installed_client grant when no user credentials are set.
	InstalledClient bool
	DeviceID        string

	// UserAgent string to identify your application to Reddit.
	// Should follow format: "platform:app-name:version by /u/username"
	UserAgent string

	// BaseURL and AuthURL default to DefaultBaseURL and DefaultAuthURL.
	BaseURL string
	AuthURL string

	// HTTPClient to use for requests.
	// Defaults to a client with DefaultTimeout if not specified.
	HTTPClient *http.Client

	// RequestsPerMinute and Burst shape the client-side token bucket. Zero uses the defaults.
	RequestsPerMinute float64
	Burst             int

	// Logger for structured diagnostics. Optional; nil discards output.
	Logger *slog.Logger
}

// withDefaults returns a copy of c with every unset optional field filled in.
func (c Config) withDefaults() *Config {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.AuthURL == "" {
		c.AuthURL = DefaultAuthURL
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &c
}

// Settings is the file and environment representation of Config.
type Settings struct {
	ClientID          string        `yaml:"client_id"           env:"REDDIT_CLIENT_ID"`
	ClientSecret      string        `yaml:"client_secret"       env:"REDDIT_CLIENT_SECRET"`
	Username          string        `yaml:"username"            env:"REDDIT_USERNAME"`
	Password          string        `yaml:"password"            env:"REDDIT_PASSWORD"`
	RefreshToken      string        `yaml:"refresh_token"       env:"REDDIT_REFRESH_TOKEN"`
	AccessToken       string        `yaml:"access_token"        env:"REDDIT_ACCESS_TOKEN"`
	InstalledClient   bool          `yaml:"installed_client"    env:"REDDIT_INSTALLED_CLIENT"`
	DeviceID          string        `yaml:"device_id"           env:"REDDIT_DEVICE_ID"`
	UserAgent         string        `yaml:"user_agent"          env:"REDDIT_USER_AGENT"          env-default:"go-reddit-dispatch/0.1"`
	BaseURL           string        `yaml:"base_url"            env:"REDDIT_BASE_URL"            env-default:"https://oauth.reddit.com/"`
	AuthURL           string        `yaml:"auth_url"            env:"REDDIT_AUTH_URL"            env-default:"https://www.reddit.com/"`
	Timeout           time.Duration `yaml:"timeout"             env:"REDDIT_TIMEOUT"             env-default:"30s"`
	RequestsPerMinute float64       `yaml:"requests_per_minute" env:"REDDIT_REQUESTS_PER_MINUTE" env-default:"60"`
	Burst             int           `yaml:"burst"               env:"REDDIT_BURST"               env-default:"10"`
	LogLevel          string        `yaml:"log_level"           env:"REDDIT_LOG_LEVEL"           env-default:"info"`
}

// LoadConfig reads Settings in this priority order:
//  1. the file at path, when path is non-empty;
//  2. the file named by GRAW_CONFIG;
//  3. REDDIT_* environment variables only.
//
// Environment variables override file values in the first two cases.
func LoadConfig(path string) (*Settings, error) {
	var s Settings

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, &pkgerrs.ConfigError{Field: "path", Message: fmt.Sprintf("config file does not exist: %s", path)}
		}
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return nil, &pkgerrs.ConfigError{Field: "path", Message: fmt.Sprintf("failed to read config: %v", err)}
		}
		return &s, nil
	}

	if err := cleanenv.ReadEnv(&s); err != nil {
		return nil, &pkgerrs.ConfigError{Message: fmt.Sprintf("failed to read environment: %v", err)}
	}
	return &s, nil
}

// Config converts the settings into a Config. Logs go to stderr at LogLevel.
func (s *Settings) Config() (*Config, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s.LogLevel))); err != nil {
		return nil, &pkgerrs.ConfigError{Field: "LogLevel", Message: err.Error()}
	}

	return &Config{
		ClientID:          s.ClientID,
		ClientSecret:      s.ClientSecret,
		Username:          s.Username,
		Password:          s.Password,
		RefreshToken:      s.RefreshToken,
		AccessToken:       s.AccessToken,
		InstalledClient:   s.InstalledClient,
		DeviceID:          s.DeviceID,
		UserAgent:         s.UserAgent,
		BaseURL:           s.BaseURL,
		AuthURL:           s.AuthURL,
		HTTPClient:        &http.Client{Timeout: s.Timeout},
		RequestsPerMinute: s.RequestsPerMinute,
		Burst:             s.Burst,
		Logger:            slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}, nil
}

// Help renders the environment variables understood by LoadConfig.
func Help() (string, error) {
	var s Settings
	return cleanenv.GetDescription(&s, nil)
}
