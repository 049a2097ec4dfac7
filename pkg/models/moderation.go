package models

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
)

// Moderation covers the moderator actions on posts and comments.
type Moderation struct {
	base
}

// NewModeration returns the model bound to t.
func NewModeration(t Transport, logger *slog.Logger) *Moderation {
	return &Moderation{base: newBase(t, logger)}
}

// Approve approves a post or comment, clearing any removal.
func (m *Moderation) Approve(ctx context.Context, id string) (*types.GenericContainer, error) {
	return call[types.GenericContainer](ctx, m.base, http.MethodPost, "api/approve", idParam(id))
}

// Remove removes a post or comment. spam also trains the spam filter.
func (m *Moderation) Remove(ctx context.Context, id string, spam bool) (*types.GenericContainer, error) {
	v := idParam(id)
	setBool(v, "spam", spam)
	return call[types.GenericContainer](ctx, m.base, http.MethodPost, "api/remove", v)
}
