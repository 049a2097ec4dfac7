package models

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
)

// DefaultConversationLimit is the page size of GetConversations when Limit is zero.
const DefaultConversationLimit = 25

// ConversationsRequest holds the parameters of GET api/mod/conversations. Sort and State are
// passed through verbatim; see the Sort* and State* constants in pkg/types.
type ConversationsRequest struct {
	After  string
	Entity string
	Sort   string
	State  string
	Limit  int
}

// Modmail covers the new modmail endpoints. Conversations are addressed by their bare base36 id.
type Modmail struct {
	base
}

// NewModmail returns the model bound to t.
func NewModmail(t Transport, logger *slog.Logger) *Modmail {
	return &Modmail{base: newBase(t, logger)}
}

// BulkRead marks every conversation of entity (comma-separated subreddit names) in state as read.
// The response schema is unstable and returned raw.
func (m *Modmail) BulkRead(ctx context.Context, entity, state string) (*types.UnstableResult, error) {
	v := url.Values{}
	v.Set("entity", entity)
	v.Set("state", state)
	return m.unstable(ctx, "api/mod/conversations/bulk/read", v)
}

// GetConversations lists conversations.
func (m *Modmail) GetConversations(ctx context.Context, r ConversationsRequest) (*types.ConversationContainer, error) {
	limit := r.Limit
	if limit == 0 {
		limit = DefaultConversationLimit
	}

	v := url.Values{}
	if r.After != "" {
		v.Set("after", r.After)
	}
	if r.Entity != "" {
		v.Set("entity", r.Entity)
	}
	if r.Sort != "" {
		v.Set("sort", r.Sort)
	}
	if r.State != "" {
		v.Set("state", r.State)
	}
	v.Set("limit", strconv.Itoa(limit))
	return call[types.ConversationContainer](ctx, m.base, http.MethodGet, "api/mod/conversations", v)
}

// NewConversation starts a conversation from srName to the user or subreddit named by to.
func (m *Modmail) NewConversation(ctx context.Context, body string, isAuthorHidden bool, srName, subject, to string) (*types.ModmailConversationContainer, error) {
	v := url.Values{}
	v.Set("body", body)
	setBool(v, "isAuthorHidden", isAuthorHidden)
	v.Set("srName", srName)
	v.Set("subject", subject)
	v.Set("to", to)
	return call[types.ModmailConversationContainer](ctx, m.base, http.MethodPost, "api/mod/conversations", v)
}

// GetConversation returns one conversation with its messages.
func (m *Modmail) GetConversation(ctx context.Context, id string, markRead bool) (*types.ModmailConversationContainer, error) {
	v := url.Values{}
	setBool(v, "markRead", markRead)
	return call[types.ModmailConversationContainer](ctx, m.base, http.MethodGet, conversationPath(id), v)
}

// NewMessage replies to a conversation.
func (m *Modmail) NewMessage(ctx context.Context, id, body string, isAuthorHidden, isInternal bool) (*types.ModmailConversationContainer, error) {
	v := url.Values{}
	v.Set("body", body)
	setBool(v, "isAuthorHidden", isAuthorHidden)
	setBool(v, "isInternal", isInternal)
	return call[types.ModmailConversationContainer](ctx, m.base, http.MethodPost, conversationPath(id), v)
}

// ArchiveConversation archives a conversation. The response schema is unstable and returned raw.
func (m *Modmail) ArchiveConversation(ctx context.Context, id string) (*types.UnstableResult, error) {
	return m.unstable(ctx, conversationPath(id)+"/archive", nil)
}

// UnarchiveConversation reverses ArchiveConversation. The response schema is unstable and returned raw.
func (m *Modmail) UnarchiveConversation(ctx context.Context, id string) (*types.UnstableResult, error) {
	return m.unstable(ctx, conversationPath(id)+"/unarchive", nil)
}

// RemoveHighlight removes the highlight from a conversation.
func (m *Modmail) RemoveHighlight(ctx context.Context, id string) (*types.ModmailConversationContainer, error) {
	return call[types.ModmailConversationContainer](ctx, m.base, http.MethodDelete, conversationPath(id)+"/highlight", nil)
}

// MarkHighlighted highlights a conversation.
func (m *Modmail) MarkHighlighted(ctx context.Context, id string) (*types.ModmailConversationContainer, error) {
	return call[types.ModmailConversationContainer](ctx, m.base, http.MethodPost, conversationPath(id)+"/highlight", nil)
}

// Mute mutes the non-moderator participant of a conversation.
func (m *Modmail) Mute(ctx context.Context, id string) (*types.ModmailConversationContainer, error) {
	return call[types.ModmailConversationContainer](ctx, m.base, http.MethodPost, conversationPath(id)+"/mute", nil)
}

// UnMute reverses Mute.
func (m *Modmail) UnMute(ctx context.Context, id string) (*types.ModmailConversationContainer, error) {
	return call[types.ModmailConversationContainer](ctx, m.base, http.MethodPost, conversationPath(id)+"/unmute", nil)
}

// User returns recent activity of the user who started the conversation.
func (m *Modmail) User(ctx context.Context, id string) (*types.ModmailUser, error) {
	return call[types.ModmailUser](ctx, m.base, http.MethodGet, conversationPath(id)+"/user", nil)
}

// MarkRead marks the given conversations as read.
func (m *Modmail) MarkRead(ctx context.Context, ids ...string) (*types.GenericContainer, error) {
	return call[types.GenericContainer](ctx, m.base, http.MethodPost, "api/mod/conversations/read", conversationIDs(ids))
}

// MarkUnread marks the given conversations as unread.
func (m *Modmail) MarkUnread(ctx context.Context, ids ...string) (*types.GenericContainer, error) {
	return call[types.GenericContainer](ctx, m.base, http.MethodPost, "api/mod/conversations/unread", conversationIDs(ids))
}

// Subreddits lists the moderated subreddits enrolled in new modmail.
func (m *Modmail) Subreddits(ctx context.Context) (*types.ModmailSubredditContainer, error) {
	return call[types.ModmailSubredditContainer](ctx, m.base, http.MethodGet, "api/mod/conversations/subreddits", nil)
}

// UnreadCount returns the unread conversation count per state.
func (m *Modmail) UnreadCount(ctx context.Context) (*types.ModmailUnreadCount, error) {
	return call[types.ModmailUnreadCount](ctx, m.base, http.MethodGet, "api/mod/conversations/unread/count", nil)
}

func (m *Modmail) unstable(ctx context.Context, path string, v url.Values) (*types.UnstableResult, error) {
	body, err := m.execute(ctx, http.MethodPost, path, v)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("unstable modmail endpoint", "path", path, "bytes", len(body))
	return &types.UnstableResult{Raw: body}, nil
}

func conversationPath(id string) string {
	return "api/mod/conversations/" + url.PathEscape(id)
}

func conversationIDs(ids []string) url.Values {
	v := url.Values{}
	v.Set("conversationIds", strings.Join(ids, ","))
	return v
}
