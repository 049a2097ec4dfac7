package graw

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/go-reddit-dispatch/internal/redditest"
	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
)

func conversationBody(id, subject string, highlighted bool) string {
	hl := "false"
	if highlighted {
		hl = "true"
	}
	return `{"conversation":{"id":"` + id + `","subject":"` + subject + `","isHighlighted":` + hl + `,
		"isRepliable":true,"numMessages":2,"state":1,"lastUpdated":"2024-01-02T00:00:00Z",
		"owner":{"displayName":"test","type":"subreddit"},"participant":{"name":"alice"},
		"authors":[{"name":"alice"},{"name":"mod1","isMod":true}],
		"objIds":[{"id":"m2","key":"messages"},{"id":"m1","key":"messages"}]},
	"messages":{
		"m1":{"id":"m1","body":"second","author":{"name":"mod1"},"date":"2024-01-02T00:00:00Z"},
		"m2":{"id":"m2","body":"first","author":{"name":"alice"},"date":"2024-01-01T00:00:00Z"}},
	"modActions":{}}`
}

func TestConversation_Submit(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("POST /api/mod/conversations", &redditest.Response{Body: conversationBody("2abc", "Hi", false)})

	draft := NewConversation(d, "test", "alice", "Hi", "hello there", true)
	conv, err := draft.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2abc", conv.ID)
	assert.Empty(t, conv.Fullname)
	assert.Equal(t, "Hi", conv.Subject)
	assert.Equal(t, "test", conv.Subreddit)
	assert.Equal(t, "alice", conv.Participant)
	assert.Equal(t, []string{"alice", "mod1"}, conv.Authors)
	assert.Equal(t, 2, conv.NumMessages)
	assert.Equal(t, 1, conv.State)
	assert.True(t, conv.IsRepliable)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "first", conv.Messages[0].Body)
	assert.Equal(t, "second", conv.Messages[1].Body)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), conv.Created)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), conv.LastUpdated)

	assert.True(t, draft.IsDraft())
	assert.Empty(t, draft.ID)

	req := srv.LastRequest()
	assert.Equal(t, "test", req.Form.Get("srName"))
	assert.Equal(t, "alice", req.Form.Get("to"))
	assert.Equal(t, "Hi", req.Form.Get("subject"))
	assert.Equal(t, "hello there", req.Form.Get("body"))
	assert.Equal(t, "true", req.Form.Get("isAuthorHidden"))
}

func TestConversation_SubmitTwice(t *testing.T) {
	d, srv := newTestDispatch(t)
	_, err := NewConversationStub(d, "2abc").Submit(context.Background())

	var stateErr *pkgerrs.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Empty(t, srv.Requests())
}

func TestConversation_About(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("GET /api/mod/conversations/2abc", &redditest.Response{Body: conversationBody("2abc", "Hi", true)})

	conv := NewConversationStub(d, "2abc")
	got, err := conv.About(context.Background())
	require.NoError(t, err)
	assert.Same(t, conv, got)
	assert.Equal(t, "Hi", conv.Subject)
	assert.True(t, conv.IsHighlighted)
	assert.Equal(t, "false", srv.LastRequest().Query.Get("markRead"))
}

func TestConversation_AboutWrongConversation(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("GET /api/mod/conversations/2abc", &redditest.Response{Body: conversationBody("9zzz", "Other", false)})

	conv := NewConversationStub(d, "2abc")
	_, err := conv.About(context.Background())

	var retErr *pkgerrs.RetrievalError
	require.ErrorAs(t, err, &retErr)
	assert.Empty(t, conv.Subject)
}

func TestConversation_UpdatesImportInPlace(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		method string
		path   string
		run    func(c *Conversation) (*Conversation, error)
	}{
		{"reply", http.MethodPost, "/api/mod/conversations/2abc", func(c *Conversation) (*Conversation, error) { return c.Reply(ctx, "thanks", false, true) }},
		{"highlight", http.MethodPost, "/api/mod/conversations/2abc/highlight", func(c *Conversation) (*Conversation, error) { return c.Highlight(ctx) }},
		{"unhighlight", http.MethodDelete, "/api/mod/conversations/2abc/highlight", func(c *Conversation) (*Conversation, error) { return c.Unhighlight(ctx) }},
		{"mute", http.MethodPost, "/api/mod/conversations/2abc/mute", func(c *Conversation) (*Conversation, error) { return c.Mute(ctx) }},
		{"unmute", http.MethodPost, "/api/mod/conversations/2abc/unmute", func(c *Conversation) (*Conversation, error) { return c.Unmute(ctx) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, srv := newTestDispatch(t)
			srv.Handle(tt.method+" "+tt.path, &redditest.Response{Body: conversationBody("2abc", "Updated", true)})

			conv := NewConversationStub(d, "2abc")
			got, err := tt.run(conv)
			require.NoError(t, err)
			assert.Same(t, conv, got)
			assert.Equal(t, "Updated", conv.Subject)
			assert.Equal(t, "2abc", conv.ID)

			req := srv.LastRequest()
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
		})
	}
}

func TestConversation_ReplyForm(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("POST /api/mod/conversations/2abc", &redditest.Response{Body: conversationBody("2abc", "Hi", false)})

	_, err := NewConversationStub(d, "2abc").Reply(context.Background(), "internal note", true, true)
	require.NoError(t, err)

	req := srv.LastRequest()
	assert.Equal(t, "internal note", req.Form.Get("body"))
	assert.Equal(t, "true", req.Form.Get("isAuthorHidden"))
	assert.Equal(t, "true", req.Form.Get("isInternal"))
}

func TestConversation_Archive(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/mod/conversations/2abc/archive", &redditest.Response{Body: conversationBody("2abc", "Hi", false)})

	conv := NewConversationStub(d, "2abc")
	res, err := conv.Archive(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)

	var decoded types.ModmailConversationContainer
	require.NoError(t, res.Decode(&decoded))
	assert.Equal(t, "2abc", decoded.Conversation.ID)
	assert.Empty(t, conv.Subject, "unstable results are not imported")
}

func TestConversation_ArchiveRejected(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/mod/conversations/2abc/unarchive", &redditest.Response{
		Status: http.StatusUnprocessableEntity,
		Body:   `{"message":"Unprocessable Entity","reason":"CONVERSATION_NOT_ARCHIVABLE","explanation":"This conversation cannot be archived."}`,
	})

	_, err := NewConversationStub(d, "2abc").Unarchive(context.Background())
	var apiErr *pkgerrs.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "CONVERSATION_NOT_ARCHIVABLE", apiErr.ErrorCode)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
}

func TestConversation_ReadState(t *testing.T) {
	d, srv := newTestDispatch(t)
	conv := NewConversationStub(d, "2abc")
	ctx := context.Background()

	require.NoError(t, conv.MarkRead(ctx))
	assert.Equal(t, "/api/mod/conversations/read", srv.LastRequest().Path)
	assert.Equal(t, "2abc", srv.LastRequest().Form.Get("conversationIds"))

	require.NoError(t, conv.MarkUnread(ctx))
	assert.Equal(t, "/api/mod/conversations/unread", srv.LastRequest().Path)
}

func TestConversation_User(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/mod/conversations/2abc/user", &redditest.Response{
		Body: `{"id":"t2_u1","name":"alice","created":"2020-01-01T00:00:00Z","isSuspended":false,
			"muteStatus":{"isMuted":true,"reason":"spam"},"recentPosts":{},"recentComments":{},"recentConvos":{}}`,
	})

	u, err := NewConversationStub(d, "2abc").User(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Name)
	assert.True(t, u.MuteStatus.IsMuted)
	assert.Equal(t, "spam", u.MuteStatus.Reason)
}

func TestConversation_RequiresID(t *testing.T) {
	d, srv := newTestDispatch(t)
	draft := NewConversation(d, "test", "alice", "Hi", "body", false)
	ctx := context.Background()

	var stateErr *pkgerrs.StateError
	_, err := draft.About(ctx)
	require.ErrorAs(t, err, &stateErr)
	_, err = draft.Mute(ctx)
	require.ErrorAs(t, err, &stateErr)
	_, err = draft.Archive(ctx)
	require.ErrorAs(t, err, &stateErr)
	require.ErrorAs(t, draft.MarkRead(ctx), &stateErr)

	assert.Empty(t, srv.Requests())
}

func TestConversation_ImportMismatch(t *testing.T) {
	d, _ := newTestDispatch(t)
	conv := NewConversationStub(d, "2abc")

	err := conv.Import(&types.ModmailConversationContainer{Conversation: types.ModmailConversation{ID: "9zzz", Subject: "Other"}})
	var stateErr *pkgerrs.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "2abc", conv.ID)
	assert.Empty(t, conv.Subject)
}
