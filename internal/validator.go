package internal

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
)

const (
	// User agent constraints
	maxUserAgentLength = 256

	// Timeout bounds for the underlying HTTP client
	minTimeout = time.Second
	maxTimeout = 5 * time.Minute
)

// Validator checks client configuration before any network call is made.
// API parameters are never validated locally; Reddit rejects bad values itself.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateUserAgent validates the User-Agent string to prevent header injection attacks.
func (v *Validator) ValidateUserAgent(ua string) error {
	if len(ua) == 0 {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot be empty"}
	}

	// Check for newline characters that could be used for header injection
	if strings.ContainsAny(ua, "\r\n") {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot contain newline characters"}
	}

	if len(ua) > maxUserAgentLength {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: fmt.Sprintf("user agent too long (max %d characters)", maxUserAgentLength)}
	}

	return nil
}

// ValidateCredentials checks that creds carries everything its grant type needs.
func (v *Validator) ValidateCredentials(creds Credentials) error {
	if creds.ClientID == "" {
		return &pkgerrs.AuthError{Message: "client ID is required"}
	}

	switch creds.GrantType {
	case GrantClientCredentials:
		if creds.ClientSecret == "" {
			return &pkgerrs.AuthError{Message: "client secret is required for client_credentials grant"}
		}
	case GrantPassword:
		if creds.ClientSecret == "" {
			return &pkgerrs.AuthError{Message: "client secret is required for password grant"}
		}
		if creds.Username == "" || creds.Password == "" {
			return &pkgerrs.AuthError{Message: "username and password are required for password grant"}
		}
	case GrantRefreshToken:
		if creds.RefreshToken == "" {
			return &pkgerrs.AuthError{Message: "refresh token is required for refresh_token grant"}
		}
	case GrantInstalledClient:
		// device id is generated when missing
	default:
		return &pkgerrs.ConfigError{Field: "GrantType", Message: fmt.Sprintf("unsupported grant type %q", creds.GrantType)}
	}

	return nil
}

// ValidateTimeout rejects timeouts outside [1s, 5m]. Zero means "use the default" and passes.
func (v *Validator) ValidateTimeout(timeout time.Duration) error {
	if timeout == 0 {
		return nil
	}
	if timeout < minTimeout || timeout > maxTimeout {
		return &pkgerrs.ConfigError{
			Field:   "Timeout",
			Message: fmt.Sprintf("timeout must be between %s and %s, got %s", minTimeout, maxTimeout, timeout),
		}
	}
	return nil
}

// ValidateBaseURL requires an absolute http(s) URL.
func (v *Validator) ValidateBaseURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &pkgerrs.ConfigError{Field: field, Message: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &pkgerrs.ConfigError{Field: field, Message: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return &pkgerrs.ConfigError{Field: field, Message: "host is required"}
	}
	return nil
}
