package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
)

const defaultTokenEndpointPath = "api/v1/access_token"

// OAuth grant types understood by the authenticator.
const (
	GrantClientCredentials = "client_credentials"
	GrantPassword          = "password"
	GrantRefreshToken      = "refresh_token"
	GrantInstalledClient   = "https://oauth.reddit.com/grants/installed_client"
)

// tokenExpiryMargin renews tokens slightly before Reddit expires them.
const tokenExpiryMargin = 30 * time.Second

// Credentials describes one OAuth grant.
type Credentials struct {
	GrantType    string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	DeviceID     string
}

// Authenticator retrieves access tokens from Reddit and caches them until shortly before expiry.
// It is safe for concurrent use; concurrent callers share a single token request.
type Authenticator struct {
	client    *http.Client
	creds     Credentials
	userAgent string
	tokenURL  *url.URL
	logger    *slog.Logger

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

// NewAuthenticator creates an authenticator for creds. tokenPath may be empty to use the default
// Reddit token endpoint. An installed-client grant without a device id gets a random one.
func NewAuthenticator(httpClient *http.Client, creds Credentials, userAgent, baseURL, tokenPath string, logger *slog.Logger) (*Authenticator, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.AuthError{Message: "failed to parse auth URL", Err: err}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	if tokenPath == "" {
		tokenPath = defaultTokenEndpointPath
	}

	resolvedTokenURL, err := parsedURL.Parse(tokenPath)
	if err != nil {
		return nil, &pkgerrs.AuthError{Message: "failed to parse token endpoint path", Err: err}
	}

	if creds.GrantType == GrantInstalledClient && creds.DeviceID == "" {
		creds.DeviceID = uuid.NewString()
	}

	return &Authenticator{
		client:    httpClient,
		creds:     creds,
		userAgent: userAgent,
		tokenURL:  resolvedTokenURL,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// DeviceID returns the device id sent with installed-client grants.
func (a *Authenticator) DeviceID() string {
	return a.creds.DeviceID
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	RefreshToken string `json:"refresh_token"`
	Error        string `json:"error"`
}

// GetToken returns a cached token or requests a new one.
func (a *Authenticator) GetToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.now().Before(a.expires) {
		return a.token, nil
	}

	resp, err := a.requestToken(ctx)
	if err != nil {
		return "", err
	}

	a.token = resp.AccessToken
	a.expires = a.now().Add(time.Duration(resp.ExpiresIn)*time.Second - tokenExpiryMargin)
	if resp.RefreshToken != "" {
		a.creds.RefreshToken = resp.RefreshToken
	}

	a.logger.Debug("oauth token acquired",
		"grant_type", a.creds.GrantType,
		"expires_in", resp.ExpiresIn,
		"scope", resp.Scope,
		"token", redactToken(resp.AccessToken),
	)

	return a.token, nil
}

// Invalidate drops the cached token so the next GetToken call requests a fresh one.
func (a *Authenticator) Invalidate() {
	a.mu.Lock()
	a.token = ""
	a.expires = time.Time{}
	a.mu.Unlock()
}

func (a *Authenticator) form() url.Values {
	form := url.Values{}
	form.Set("grant_type", a.creds.GrantType)

	switch a.creds.GrantType {
	case GrantPassword:
		form.Set("username", a.creds.Username)
		form.Set("password", a.creds.Password)
	case GrantRefreshToken:
		form.Set("refresh_token", a.creds.RefreshToken)
	case GrantInstalledClient:
		form.Set("device_id", a.creds.DeviceID)
	}
	return form
}

func (a *Authenticator) requestToken(ctx context.Context) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL.String(), strings.NewReader(a.form().Encode()))
	if err != nil {
		return nil, &pkgerrs.AuthError{Message: "failed to create token request", Err: err}
	}

	req.SetBasicAuth(a.creds.ClientID, a.creds.ClientSecret)
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &pkgerrs.AuthError{Message: "failed to execute token request", Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Message:    "failed to read response body",
			Err:        err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Message:    "token request rejected",
			Body:       string(bodyBytes),
		}
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(bodyBytes, &tokenResp); err != nil {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Message:    "failed to unmarshal token response",
			Body:       string(bodyBytes),
			Err:        err,
		}
	}

	// Reddit reports bad credentials as 200 {"error": "invalid_grant"}.
	if tokenResp.Error != "" {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("token request failed: %s", tokenResp.Error),
		}
	}

	if tokenResp.AccessToken == "" {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Message:    "access token was empty in response",
			Body:       string(bodyBytes),
		}
	}

	return &tokenResp, nil
}

// StaticToken is a TokenSource for a caller-supplied access token that is never refreshed.
type StaticToken string

// GetToken returns the token, failing when it is empty.
func (s StaticToken) GetToken(context.Context) (string, error) {
	if s == "" {
		return "", &pkgerrs.AuthError{Message: "access token is empty"}
	}
	return string(s), nil
}

// redactToken keeps a short prefix of a token so log lines can be correlated without leaking it.
func redactToken(token string) string {
	if len(token) <= 4 {
		return "[REDACTED]"
	}
	return token[:4] + "…[REDACTED]"
}
