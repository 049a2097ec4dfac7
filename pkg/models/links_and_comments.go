package models

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jamesprial/go-reddit-dispatch/internal"
	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
)

// Submission kinds accepted by api/submit.
const (
	SubmitKindSelf = "self"
	SubmitKindLink = "link"
)

// Vote directions accepted by api/vote.
const (
	VoteDown  = -1
	VoteClear = 0
	VoteUp    = 1
)

// SubmitRequest holds the parameters of api/submit.
type SubmitRequest struct {
	Kind        string
	Subreddit   string
	Title       string
	Text        string
	URL         string
	NSFW        bool
	Spoiler     bool
	SendReplies bool
	Resubmit    bool
	FlairID     string
	FlairText   string
}

// InfoRequest holds the parameters of api/info. Fullnames and URL are alternatives.
type InfoRequest struct {
	Fullnames []string
	Subreddit string
	URL       string
}

// LinksAndComments covers the links & comments endpoint family.
type LinksAndComments struct {
	base
	parser *internal.Parser
}

// NewLinksAndComments returns the model bound to t.
func NewLinksAndComments(t Transport, logger *slog.Logger) *LinksAndComments {
	return &LinksAndComments{base: newBase(t, logger), parser: internal.NewParser()}
}

// Submit creates a self or link post.
func (m *LinksAndComments) Submit(ctx context.Context, r SubmitRequest) (*types.PostResultShortContainer, error) {
	v := apiJSON()
	v.Set("kind", r.Kind)
	v.Set("sr", r.Subreddit)
	v.Set("title", r.Title)
	if r.Text != "" {
		v.Set("text", r.Text)
	}
	if r.URL != "" {
		v.Set("url", r.URL)
	}
	setBool(v, "nsfw", r.NSFW)
	setBool(v, "spoiler", r.Spoiler)
	setBool(v, "sendreplies", r.SendReplies)
	setBool(v, "resubmit", r.Resubmit)
	if r.FlairID != "" {
		v.Set("flair_id", r.FlairID)
	}
	if r.FlairText != "" {
		v.Set("flair_text", r.FlairText)
	}
	return call[types.PostResultShortContainer](ctx, m.base, http.MethodPost, "api/submit", v)
}

// EditUserText replaces the body of a self post or comment.
func (m *LinksAndComments) EditUserText(ctx context.Context, thingID, text string) (*types.ThingsResultContainer, error) {
	v := apiJSON()
	v.Set("thing_id", thingID)
	v.Set("text", text)
	return call[types.ThingsResultContainer](ctx, m.base, http.MethodPost, "api/editusertext", v)
}

// Comment replies to the post, comment or message named by parent.
func (m *LinksAndComments) Comment(ctx context.Context, parent, text string) (*types.ThingsResultContainer, error) {
	v := apiJSON()
	v.Set("parent", parent)
	v.Set("text", text)
	return call[types.ThingsResultContainer](ctx, m.base, http.MethodPost, "api/comment", v)
}

// thingEnvelope decodes a single Thing that may instead be an error envelope.
type thingEnvelope struct {
	types.ErrorEnvelope
	types.Thing
}

// Info looks up posts and comments by fullname or by URL.
func (m *LinksAndComments) Info(ctx context.Context, r InfoRequest) (*types.Info, error) {
	path := "api/info"
	if r.Subreddit != "" {
		path = "r/" + url.PathEscape(r.Subreddit) + "/api/info"
	}

	v := url.Values{}
	if len(r.Fullnames) > 0 {
		v.Set("id", strings.Join(r.Fullnames, ","))
	}
	if r.URL != "" {
		v.Set("url", r.URL)
	}

	env, err := call[thingEnvelope](ctx, m.base, http.MethodGet, path, v)
	if err != nil {
		return nil, err
	}

	// An error envelope carries no listing; leave it for Validate.
	if env.Kind == "" {
		return &types.Info{ErrorEnvelope: env.ErrorEnvelope}, nil
	}

	info, err := m.parser.ExtractInfo(&env.Thing)
	if err != nil {
		return nil, err
	}
	info.ErrorEnvelope = env.ErrorEnvelope
	return info, nil
}

// Vote casts dir (VoteUp, VoteDown or VoteClear) on id.
func (m *LinksAndComments) Vote(ctx context.Context, id string, dir int) (*types.GenericContainer, error) {
	v := url.Values{}
	v.Set("id", id)
	v.Set("dir", strconv.Itoa(dir))
	return m.action(ctx, "api/vote", v)
}

// Delete deletes a post or comment.
func (m *LinksAndComments) Delete(ctx context.Context, id string) (*types.GenericContainer, error) {
	return m.action(ctx, "api/del", idParam(id))
}

// Save saves id, optionally into category.
func (m *LinksAndComments) Save(ctx context.Context, id, category string) (*types.GenericContainer, error) {
	v := idParam(id)
	if category != "" {
		v.Set("category", category)
	}
	return m.action(ctx, "api/save", v)
}

// Unsave reverses Save.
func (m *LinksAndComments) Unsave(ctx context.Context, id string) (*types.GenericContainer, error) {
	return m.action(ctx, "api/unsave", idParam(id))
}

// Hide hides a post from the user's listings.
func (m *LinksAndComments) Hide(ctx context.Context, id string) (*types.GenericContainer, error) {
	return m.action(ctx, "api/hide", idParam(id))
}

// Unhide reverses Hide.
func (m *LinksAndComments) Unhide(ctx context.Context, id string) (*types.GenericContainer, error) {
	return m.action(ctx, "api/unhide", idParam(id))
}

// Lock prevents new comments on a post.
func (m *LinksAndComments) Lock(ctx context.Context, id string) (*types.GenericContainer, error) {
	return m.action(ctx, "api/lock", idParam(id))
}

// Unlock reverses Lock.
func (m *LinksAndComments) Unlock(ctx context.Context, id string) (*types.GenericContainer, error) {
	return m.action(ctx, "api/unlock", idParam(id))
}

// MarkNSFW flags a post as not safe for work.
func (m *LinksAndComments) MarkNSFW(ctx context.Context, id string) (*types.GenericContainer, error) {
	return m.action(ctx, "api/marknsfw", idParam(id))
}

// UnmarkNSFW reverses MarkNSFW.
func (m *LinksAndComments) UnmarkNSFW(ctx context.Context, id string) (*types.GenericContainer, error) {
	return m.action(ctx, "api/unmarknsfw", idParam(id))
}

// Spoiler flags a post as a spoiler.
func (m *LinksAndComments) Spoiler(ctx context.Context, id string) (*types.GenericContainer, error) {
	return m.action(ctx, "api/spoiler", idParam(id))
}

// Unspoiler reverses Spoiler.
func (m *LinksAndComments) Unspoiler(ctx context.Context, id string) (*types.GenericContainer, error) {
	return m.action(ctx, "api/unspoiler", idParam(id))
}

func (m *LinksAndComments) action(ctx context.Context, path string, v url.Values) (*types.GenericContainer, error) {
	return call[types.GenericContainer](ctx, m.base, http.MethodPost, path, v)
}

func idParam(id string) url.Values {
	v := url.Values{}
	v.Set("id", id)
	return v
}
