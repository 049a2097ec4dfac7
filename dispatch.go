package graw

import (
	"context"
	"io"
	"log/slog"

	"github.com/jamesprial/go-reddit-dispatch/internal"
	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
	"github.com/jamesprial/go-reddit-dispatch/pkg/models"
)

var parser = internal.NewParser()

// Dispatch owns the authenticated transport and one model per endpoint family. It is safe for
// concurrent use and is shared by reference among every controller built from it.
type Dispatch struct {
	transport *internal.Client
	logger    *slog.Logger

	linksAndComments *models.LinksAndComments
	modmail          *models.Modmail
	users            *models.Users
	moderation       *models.Moderation
}

// NewDispatch validates config, authenticates and returns a ready Dispatch.
//
// Construction fails fast: a nil config, missing credentials or a rejected token request are
// returned here rather than on the first API call. When config.AccessToken is set no token
// request is made.
func NewDispatch(ctx context.Context, config *Config) (*Dispatch, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}
	cfg := config.withDefaults()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	v := internal.NewValidator()
	if err := v.ValidateUserAgent(cfg.UserAgent); err != nil {
		return nil, err
	}
	if err := v.ValidateTimeout(cfg.HTTPClient.Timeout); err != nil {
		return nil, err
	}
	if err := v.ValidateBaseURL("BaseURL", cfg.BaseURL); err != nil {
		return nil, err
	}

	tokens, err := newTokenSource(ctx, cfg, v, logger)
	if err != nil {
		return nil, err
	}

	transport, err := internal.NewClient(
		cfg.HTTPClient,
		tokens,
		cfg.BaseURL,
		cfg.UserAgent,
		&internal.RateLimitConfig{RequestsPerMinute: cfg.RequestsPerMinute, Burst: cfg.Burst},
		logger,
	)
	if err != nil {
		return nil, err
	}

	return &Dispatch{
		transport:        transport,
		logger:           logger,
		linksAndComments: models.NewLinksAndComments(transport, logger),
		modmail:          models.NewModmail(transport, logger),
		users:            models.NewUsers(transport, logger),
		moderation:       models.NewModeration(transport, logger),
	}, nil
}

// newTokenSource picks the grant from the credentials in cfg and acquires the first token.
func newTokenSource(ctx context.Context, cfg *Config, v *internal.Validator, logger *slog.Logger) (internal.TokenSource, error) {
	if cfg.AccessToken != "" {
		logger.Debug("using static access token")
		return internal.StaticToken(cfg.AccessToken), nil
	}

	if err := v.ValidateBaseURL("AuthURL", cfg.AuthURL); err != nil {
		return nil, err
	}

	creds := internal.Credentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Username:     cfg.Username,
		Password:     cfg.Password,
		RefreshToken: cfg.RefreshToken,
		DeviceID:     cfg.DeviceID,
	}
	switch {
	case cfg.RefreshToken != "":
		creds.GrantType = internal.GrantRefreshToken
	case cfg.Username != "" || cfg.Password != "":
		creds.GrantType = internal.GrantPassword
	case cfg.InstalledClient:
		creds.GrantType = internal.GrantInstalledClient
	default:
		creds.GrantType = internal.GrantClientCredentials
	}

	if err := v.ValidateCredentials(creds); err != nil {
		return nil, err
	}

	auth, err := internal.NewAuthenticator(cfg.HTTPClient, creds, cfg.UserAgent, cfg.AuthURL, "", logger)
	if err != nil {
		return nil, err
	}

	if _, err := auth.GetToken(ctx); err != nil {
		return nil, err
	}
	return auth, nil
}

// LinksAndComments returns the links & comments model.
func (d *Dispatch) LinksAndComments() *models.LinksAndComments { return d.linksAndComments }

// Modmail returns the new modmail model.
func (d *Dispatch) Modmail() *models.Modmail { return d.modmail }

// Users returns the accounts model.
func (d *Dispatch) Users() *models.Users { return d.users }

// Moderation returns the moderation model.
func (d *Dispatch) Moderation() *models.Moderation { return d.moderation }

// Logger returns the logger shared by the transport and every model.
func (d *Dispatch) Logger() *slog.Logger { return d.logger }
