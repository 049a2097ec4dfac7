package models

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
)

// Users covers the account endpoints.
type Users struct {
	base
}

// NewUsers returns the model bound to t.
func NewUsers(t Transport, logger *slog.Logger) *Users {
	return &Users{base: newBase(t, logger)}
}

// About returns the account Thing (kind t2) of username.
func (m *Users) About(ctx context.Context, username string) (*types.AccountContainer, error) {
	return call[types.AccountContainer](ctx, m.base, http.MethodGet, "user/"+url.PathEscape(username)+"/about", nil)
}
