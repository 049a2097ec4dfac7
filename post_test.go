package graw

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/go-reddit-dispatch/internal/redditest"
	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
	"github.com/jamesprial/go-reddit-dispatch/pkg/models"
	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
)

const postData = `{"id":"abc123","name":"t3_abc123","title":"Hello","selftext":"World","selftext_html":"<p>World</p>",
	"is_self":true,"subreddit":"test","subreddit_id":"t5_test","author":"alice","score":42,"ups":45,"downs":3,
	"num_comments":7,"permalink":"/r/test/comments/abc123/hello/","created":1700000000,"created_utc":1700000000,
	"edited":false,"likes":null,"locked":false,"over_18":false,"spoiler":false,"hidden":false,"saved":false}`

func postListing(data string) string {
	return `{"kind":"Listing","data":{"after":null,"children":[{"kind":"t3","data":` + data + `}]}}`
}

func TestSelfPost_Submit(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/submit", &redditest.Response{
		Body: `{"json":{"errors":[],"data":{"url":"https://www.reddit.com/r/test/comments/abc123/hello/","drafts_count":0,"id":"abc123","name":"t3_abc123"}}}`,
	})

	draft := NewSelfPost(d, "test", "Hello", "World")
	post, err := draft.Submit(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "World", post.SelfText)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "test", post.Subreddit)
	assert.True(t, strings.HasPrefix(post.Fullname, "t3_"))
	assert.Equal(t, "abc123", post.ID)
	assert.Equal(t, "https://www.reddit.com/r/test/comments/abc123/hello/", post.URL)
	assert.False(t, post.IsDraft())

	assert.Empty(t, draft.Fullname, "the draft is never mutated")
	assert.True(t, draft.IsDraft())
	assert.NotSame(t, draft, post)

	req := srv.LastRequest()
	assert.Equal(t, "self", req.Form.Get("kind"))
	assert.Equal(t, "World", req.Form.Get("text"))
	assert.Equal(t, "true", req.Form.Get("sendreplies"))
}

func TestSelfPost_SubmitOptions(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/submit", &redditest.Response{Body: `{"json":{"errors":[],"data":{"id":"x","name":"t3_x"}}}`})

	_, err := NewSelfPost(d, "test", "Hello", "World").Submit(context.Background(), &SubmitOptions{
		Resubmit:  true,
		FlairID:   "flair-1",
		FlairText: "News",
	})
	require.NoError(t, err)

	req := srv.LastRequest()
	assert.Equal(t, "false", req.Form.Get("sendreplies"))
	assert.Equal(t, "true", req.Form.Get("resubmit"))
	assert.Equal(t, "flair-1", req.Form.Get("flair_id"))
	assert.Equal(t, "News", req.Form.Get("flair_text"))
}

func TestSelfPost_SubmitRejected(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/submit", &redditest.Response{
		Body: `{"json":{"errors":[["SUBREDDIT_NOEXIST","that subreddit doesn't exist","sr"]]}}`,
	})

	draft := NewSelfPost(d, "nope", "Hello", "World")
	post, err := draft.Submit(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, post)

	var apiErr *pkgerrs.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "SUBREDDIT_NOEXIST", apiErr.ErrorCode)
	assert.Equal(t, "sr", apiErr.Field)
	assert.True(t, draft.IsDraft())
}

func TestSelfPost_SubmitWithoutFullname(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/submit", &redditest.Response{Body: `{"json":{"errors":[],"data":{}}}`})

	_, err := NewSelfPost(d, "test", "Hello", "World").Submit(context.Background(), nil)
	var retErr *pkgerrs.RetrievalError
	require.ErrorAs(t, err, &retErr)
}

func TestSelfPost_SubmitTwice(t *testing.T) {
	d, srv := newTestDispatch(t)

	post := NewSelfPostStub(d, "t3_abc123", "")
	_, err := post.Submit(context.Background(), nil)

	var stateErr *pkgerrs.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Empty(t, srv.Requests())
}

func TestSelfPost_Edit(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/editusertext", &redditest.Response{
		Body: `{"json":{"errors":[],"data":{"things":[{"kind":"t3","data":{"id":"abc123","name":"t3_abc123","title":"Hello",
			"selftext":"new body","selftext_html":"<p>new body</p>","is_self":true,"subreddit":"test",
			"created_utc":1700000000,"edited":1700000500}}]}}}`,
	})

	post := NewSelfPostFromListing(d, &types.Post{ThingData: types.ThingData{ID: "abc123", Name: "t3_abc123"}, Title: "Hello", SelfText: "old", Subreddit: "test"})
	got, err := post.Edit(context.Background(), "new body")
	require.NoError(t, err)

	assert.Same(t, post, got, "Edit refreshes in place")
	assert.Equal(t, "new body", post.SelfText)
	assert.Equal(t, "<p>new body</p>", post.SelfTextHTML)
	assert.Equal(t, "t3_abc123", post.Fullname)
	assert.Equal(t, time.Unix(1700000500, 0).UTC(), post.Edited)

	req := srv.LastRequest()
	assert.Equal(t, "t3_abc123", req.Form.Get("thing_id"))
	assert.Equal(t, "new body", req.Form.Get("text"))
}

func TestSelfPost_EditWrongThing(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/editusertext", &redditest.Response{
		Body: `{"json":{"errors":[],"data":{"things":[{"kind":"t3","data":{"id":"zzz","name":"t3_zzz","selftext":"other"}}]}}}`,
	})

	post := NewSelfPostStub(d, "t3_abc123", "")
	_, err := post.Edit(context.Background(), "new body")

	var retErr *pkgerrs.RetrievalError
	require.ErrorAs(t, err, &retErr)
	assert.Equal(t, "t3_abc123", post.Fullname)
	assert.Empty(t, post.SelfText)
}

func TestSelfPost_AboutHydratesStub(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/r/test/api/info", &redditest.Response{Body: postListing(postData)})

	post := NewSelfPostStub(d, "t3_abc123", "test")
	got, err := post.About(context.Background())
	require.NoError(t, err)
	assert.Same(t, post, got)

	assert.Equal(t, "abc123", post.ID)
	assert.Equal(t, "t3_abc123", post.Fullname)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "World", post.SelfText)
	assert.Equal(t, "<p>World</p>", post.SelfTextHTML)
	assert.Equal(t, "alice", post.Author)
	assert.Equal(t, 42, post.Score)
	assert.Equal(t, 45, post.UpVotes)
	assert.Equal(t, 3, post.DownVotes)
	assert.Equal(t, 7, post.NumComments)
	assert.Nil(t, post.Likes)
	assert.Equal(t, "/r/test/comments/abc123/hello/", post.Permalink)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), post.Created)
	assert.True(t, post.Edited.IsZero())

	assert.Equal(t, "t3_abc123", srv.LastRequest().Query.Get("id"))
}

func TestPost_AboutFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name: "no results",
			body: `{"kind":"Listing","data":{"children":[]}}`,
			check: func(t *testing.T, err error) {
				var retErr *pkgerrs.RetrievalError
				require.ErrorAs(t, err, &retErr)
				assert.Equal(t, "t3_abc123", retErr.Fullname)
			},
		},
		{
			name: "different post",
			body: postListing(`{"id":"zzz","name":"t3_zzz","title":"Other"}`),
			check: func(t *testing.T, err error) {
				var retErr *pkgerrs.RetrievalError
				require.ErrorAs(t, err, &retErr)
			},
		},
		{
			name: "error envelope",
			body: `{"error":403,"message":"Forbidden"}`,
			check: func(t *testing.T, err error) {
				var apiErr *pkgerrs.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "403", apiErr.ErrorCode)
			},
		},
		{
			name:   "server error",
			body:   `<html>oops</html>`,
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var reqErr *pkgerrs.RequestError
				require.ErrorAs(t, err, &reqErr)
				assert.Equal(t, http.StatusBadGateway, reqErr.StatusCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, srv := newTestDispatch(t)
			srv.Handle("/api/info", &redditest.Response{Status: tt.status, Body: tt.body})

			post := NewPostStub(d, "t3_abc123", "")
			got, err := post.About(context.Background())
			require.Error(t, err)
			assert.Nil(t, got)
			tt.check(t, err)

			assert.Equal(t, "t3_abc123", post.Fullname)
			assert.Empty(t, post.Title, "nothing is imported on failure")
		})
	}
}

func TestPost_ImportMismatch(t *testing.T) {
	d, _ := newTestDispatch(t)
	post := NewPostFromListing(d, &types.Post{ThingData: types.ThingData{ID: "abc123", Name: "t3_abc123"}, Title: "Hello"})

	err := post.Import(&types.Post{ThingData: types.ThingData{ID: "zzz", Name: "t3_zzz"}, Title: "Other"})
	var stateErr *pkgerrs.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "t3_abc123", post.Fullname)
	assert.Equal(t, "abc123", post.ID)
	assert.Equal(t, "Hello", post.Title)

	err = post.Import(nil)
	require.ErrorAs(t, err, &stateErr)
}

func TestPost_ImportDraft(t *testing.T) {
	d, _ := newTestDispatch(t)
	draft := NewSelfPost(d, "test", "Hello", "World")

	err := draft.Import(&types.Post{ThingData: types.ThingData{ID: "abc123", Name: "t3_abc123"}})
	var stateErr *pkgerrs.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.True(t, draft.IsDraft())
}

func TestPost_ImportFillsMissingID(t *testing.T) {
	d, _ := newTestDispatch(t)
	post := NewPostStub(d, "t3_abc123", "")
	require.Empty(t, post.ID)

	require.NoError(t, post.Import(&types.Post{ThingData: types.ThingData{ID: "abc123", Name: "t3_abc123"}, Title: "Hello"}))
	assert.Equal(t, "abc123", post.ID)
	assert.Equal(t, "Hello", post.Title)
}

func TestSelfPost_ListingRoundTrip(t *testing.T) {
	d, _ := newTestDispatch(t)
	distinguished := "moderator"
	likes := true

	listing := &types.Post{
		ThingData:     types.ThingData{ID: "abc123", Name: "t3_abc123"},
		Votable:       types.Votable{Ups: 10, Downs: 2, Likes: &likes},
		Created:       types.Created{Created: 1700000000, CreatedUTC: 1700000000},
		Edited:        types.Edited{IsEdited: true, Timestamp: 1700000100},
		Permalink:     "/r/test/comments/abc123/hello/",
		Author:        "alice",
		Subreddit:     "test",
		SubredditID:   "t5_test",
		Title:         "Hello",
		URL:           "https://www.reddit.com/r/test/comments/abc123/hello/",
		Domain:        "self.test",
		SelfText:      "World",
		SelfTextHTML:  "<p>World</p>",
		Score:         8,
		NumComments:   3,
		IsSelf:        true,
		Over18:        true,
		Locked:        true,
		Saved:         true,
		Distinguished: &distinguished,
	}

	post := NewSelfPostFromListing(d, listing)
	assert.Equal(t, listing, post.Listing())

	again := NewSelfPostFromListing(d, post.Listing())
	assert.Equal(t, post.Listing(), again.Listing())
}

func TestLinkPost_Submit(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/submit", &redditest.Response{
		Body: `{"json":{"errors":[],"data":{"url":"https://www.reddit.com/r/test/comments/def456/go/","id":"def456","name":"t3_def456"}}}`,
	})

	draft := NewLinkPost(d, "test", "Go", "https://go.dev")
	post, err := draft.Submit(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "t3_def456", post.Fullname)
	assert.Equal(t, "Go", post.Title)
	assert.False(t, post.IsSelf)
	assert.True(t, draft.IsDraft())
	assert.Equal(t, "https://go.dev", draft.URL)

	req := srv.LastRequest()
	assert.Equal(t, "link", req.Form.Get("kind"))
	assert.Equal(t, "https://go.dev", req.Form.Get("url"))
	assert.Empty(t, req.Form.Get("text"))
}

func TestLinkPost_About(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/info", &redditest.Response{
		Body: postListing(`{"id":"def456","name":"t3_def456","title":"Go","url":"https://go.dev","domain":"go.dev","is_self":false}`),
	})

	post := NewLinkPostStub(d, "t3_def456", "")
	_, err := post.About(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://go.dev", post.URL)
	assert.Equal(t, "go.dev", post.Domain)
}

func TestPost_Actions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		run   func(p *Post) error
		path  string
		check func(t *testing.T, p *Post)
	}{
		{"save", func(p *Post) error { return p.Save(ctx, "later") }, "/api/save", func(t *testing.T, p *Post) { assert.True(t, p.Saved) }},
		{"unsave", func(p *Post) error { return p.Unsave(ctx) }, "/api/unsave", func(t *testing.T, p *Post) { assert.False(t, p.Saved) }},
		{"hide", func(p *Post) error { return p.Hide(ctx) }, "/api/hide", func(t *testing.T, p *Post) { assert.True(t, p.Hidden) }},
		{"unhide", func(p *Post) error { return p.Unhide(ctx) }, "/api/unhide", func(t *testing.T, p *Post) { assert.False(t, p.Hidden) }},
		{"lock", func(p *Post) error { return p.Lock(ctx) }, "/api/lock", func(t *testing.T, p *Post) { assert.True(t, p.Locked) }},
		{"unlock", func(p *Post) error { return p.Unlock(ctx) }, "/api/unlock", func(t *testing.T, p *Post) { assert.False(t, p.Locked) }},
		{"nsfw", func(p *Post) error { return p.MarkNSFW(ctx) }, "/api/marknsfw", func(t *testing.T, p *Post) { assert.True(t, p.NSFW) }},
		{"unnsfw", func(p *Post) error { return p.UnmarkNSFW(ctx) }, "/api/unmarknsfw", func(t *testing.T, p *Post) { assert.False(t, p.NSFW) }},
		{"spoiler", func(p *Post) error { return p.MarkSpoiler(ctx) }, "/api/spoiler", func(t *testing.T, p *Post) { assert.True(t, p.Spoiler) }},
		{"unspoiler", func(p *Post) error { return p.UnmarkSpoiler(ctx) }, "/api/unspoiler", func(t *testing.T, p *Post) { assert.False(t, p.Spoiler) }},
		{"approve", func(p *Post) error { return p.Approve(ctx) }, "/api/approve", func(t *testing.T, p *Post) {
			assert.True(t, p.Approved)
			assert.False(t, p.Removed)
		}},
		{"remove as spam", func(p *Post) error { return p.Remove(ctx, true) }, "/api/remove", func(t *testing.T, p *Post) {
			assert.True(t, p.Removed)
			assert.True(t, p.Spam)
			assert.False(t, p.Approved)
		}},
		{"delete", func(p *Post) error { return p.Delete(ctx) }, "/api/del", func(t *testing.T, p *Post) { assert.Equal(t, "t3_abc123", p.Fullname) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, srv := newTestDispatch(t)
			post := NewPostStub(d, "t3_abc123", "")

			require.NoError(t, tt.run(post))
			assert.Equal(t, 1, srv.CallCount(tt.path))
			assert.Equal(t, "t3_abc123", srv.LastRequest().Form.Get("id"))
			tt.check(t, post)
		})
	}
}

func TestPost_ActionRejectedLeavesStateAlone(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/lock", &redditest.Response{Body: `{"json":{"errors":[["NOT_MODERATOR","not a moderator",""]]}}`})

	post := NewPostStub(d, "t3_abc123", "")
	err := post.Lock(context.Background())

	var apiErr *pkgerrs.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_MODERATOR", apiErr.ErrorCode)
	assert.False(t, post.Locked)
}

func TestPost_ActionsRequireFullname(t *testing.T) {
	d, srv := newTestDispatch(t)
	draft := NewSelfPost(d, "test", "Hello", "World")
	ctx := context.Background()

	var stateErr *pkgerrs.StateError
	require.ErrorAs(t, draft.Hide(ctx), &stateErr)
	require.ErrorAs(t, draft.Upvote(ctx), &stateErr)
	_, err := draft.About(ctx)
	require.ErrorAs(t, err, &stateErr)
	_, err = draft.Edit(ctx, "x")
	require.ErrorAs(t, err, &stateErr)

	orphan := &Post{Identity: Identity{Fullname: "t3_abc123"}}
	require.ErrorAs(t, orphan.Hide(ctx), &stateErr)

	assert.Empty(t, srv.Requests())
}

func TestPost_VoteResyncs(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/info", &redditest.Response{
		Body: postListing(`{"id":"abc123","name":"t3_abc123","title":"Hello","score":43,"ups":46,"downs":3,"likes":true}`),
	})

	post := NewPostStub(d, "t3_abc123", "")
	require.NoError(t, post.Upvote(context.Background()))

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/api/vote", reqs[0].Path)
	assert.Equal(t, "1", reqs[0].Form.Get("dir"))
	assert.Equal(t, "/api/info", reqs[1].Path)

	require.NotNil(t, post.Likes)
	assert.True(t, *post.Likes)
	assert.Equal(t, 43, post.Score)
}

func TestPost_VoteDirections(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		vote func(p *Post) error
		dir  string
	}{
		{"down", func(p *Post) error { return p.Downvote(ctx) }, "-1"},
		{"clear", func(p *Post) error { return p.Unvote(ctx) }, "0"},
		{"explicit", func(p *Post) error { return p.Vote(ctx, models.VoteUp) }, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, srv := newTestDispatch(t)
			srv.Handle("/api/info", &redditest.Response{Body: postListing(`{"id":"abc123","name":"t3_abc123"}`)})

			require.NoError(t, tt.vote(NewPostStub(d, "t3_abc123", "")))
			assert.Equal(t, tt.dir, srv.Requests()[0].Form.Get("dir"))
		})
	}
}

func TestPost_Reply(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/comment", &redditest.Response{
		Body: `{"json":{"errors":[],"data":{"things":[{"kind":"t1","data":{"id":"c1","name":"t1_c1","body":"nice","parent_id":"t3_abc123","link_id":"t3_abc123"}}]}}}`,
	})

	post := NewPostStub(d, "t3_abc123", "")
	c, err := post.Reply(context.Background(), "nice")
	require.NoError(t, err)
	assert.Equal(t, "t1_c1", c.Fullname)
	assert.Equal(t, "nice", c.Body)
	assert.Equal(t, "t3_abc123", c.ParentID)
	assert.Equal(t, "t3_abc123", srv.LastRequest().Form.Get("parent"))
}

func TestSelfPost_SubmitInvalidSubreddit(t *testing.T) {
	d, srv := newTestDispatch(t)

	for _, name := range []string{"", "r/test", "a b", "x"} {
		_, err := NewSelfPost(d, name, "Hello", "World").Submit(context.Background(), nil)
		var stateErr *pkgerrs.StateError
		require.ErrorAs(t, err, &stateErr, "subreddit %q", name)
	}
	assert.Empty(t, srv.Requests())
}

func TestPost_MalformedFullname(t *testing.T) {
	d, srv := newTestDispatch(t)

	_, err := NewPostStub(d, "T3_ABC", "").About(context.Background())
	var stateErr *pkgerrs.StateError
	require.ErrorAs(t, err, &stateErr)
	require.ErrorAs(t, NewPostStub(d, "abc123", "").Hide(context.Background()), &stateErr)
	assert.Empty(t, srv.Requests())
}

func TestPost_AboutRejectsStubSubreddit(t *testing.T) {
	d, srv := newTestDispatch(t)

	for _, sr := range []string{"x/../../api/v1/me?", "te st", "r/test"} {
		_, err := NewSelfPostStub(d, "t3_abc123", sr).About(context.Background())
		var stateErr *pkgerrs.StateError
		require.ErrorAs(t, err, &stateErr, "subreddit %q", sr)
	}
	assert.Empty(t, srv.Requests())
}

func TestSelfPost_SubmitCarriesEveryDraftField(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/submit", &redditest.Response{
		Body: `{"json":{"errors":[],"data":{"url":"https://www.reddit.com/r/test/comments/abc123/hello/","id":"abc123","name":"t3_abc123"}}}`,
	})

	likes := true
	draft := NewSelfPost(d, "test", "Hello", "World")
	draft.SelfTextHTML = "<p>World</p>"
	draft.Author = "me"
	draft.Permalink = "/r/test/comments/abc123/hello/"
	draft.Score = 1
	draft.UpVotes = 1
	draft.Likes = &likes
	draft.NSFW = true
	draft.Spoiler = true
	draft.Locked = true
	draft.Distinguished = "moderator"

	post, err := draft.Submit(context.Background(), nil)
	require.NoError(t, err)

	want := draft.Listing()
	want.ID = "abc123"
	want.Name = "t3_abc123"
	want.URL = "https://www.reddit.com/r/test/comments/abc123/hello/"
	assert.Equal(t, want, post.Listing())
	assert.NotSame(t, draft.Likes, post.Likes)

	require.NoError(t, post.Import(&types.Post{ThingData: types.ThingData{ID: "abc123", Name: "t3_abc123"}, SelfText: "fresh"}))
	assert.Equal(t, "fresh", post.SelfText, "the submitted post has its own content hook")
	assert.Equal(t, "World", draft.SelfText)
}

func TestLinkPost_SubmitKeepsLinkURL(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/api/submit", &redditest.Response{
		Body: `{"json":{"errors":[],"data":{"url":"https://www.reddit.com/r/test/comments/def456/go/","id":"def456","name":"t3_def456"}}}`,
	})

	draft := NewLinkPost(d, "test", "Go", "https://go.dev")
	draft.NSFW = true
	draft.Author = "me"

	post, err := draft.Submit(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://go.dev", post.URL)
	assert.True(t, post.NSFW)
	assert.Equal(t, "me", post.Author)
	assert.Equal(t, "def456", post.ID)
}
