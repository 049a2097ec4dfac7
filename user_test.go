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

const aliceAbout = `{"kind":"t2","data":{"id":"u1","name":"Alice","link_karma":10,"comment_karma":20,
	"has_verified_email":true,"is_gold":false,"is_mod":true,"created":1600000000,"created_utc":1600000000,
	"icon_img":"https://example.com/a.png"}}`

func TestUser_About(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/user/alice/about", &redditest.Response{Body: aliceAbout})

	u := NewUser(d, "alice")
	got, err := u.About(context.Background())
	require.NoError(t, err)
	assert.Same(t, u, got)

	assert.Equal(t, "Alice", u.Name, "the canonical casing is adopted")
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "t2_u1", u.Fullname)
	assert.Equal(t, 10, u.LinkKarma)
	assert.Equal(t, 20, u.CommentKarma)
	assert.True(t, u.HasVerifiedEmail)
	assert.True(t, u.IsMod)
	assert.Equal(t, "/user/Alice/", u.Permalink)
	assert.Equal(t, time.Unix(1600000000, 0).UTC(), u.Created)
	assert.Equal(t, 24*time.Hour, u.Age(u.Created.Add(24*time.Hour)))

	_, err = u.About(context.Background())
	require.NoError(t, err, "a second lookup matches the learned fullname")
	assert.Equal(t, 2, srv.CallCount("/user/alice/about"), "lookups use the name as given")
	assert.Zero(t, srv.CallCount("/user/Alice/about"))
	assert.Equal(t, "Alice", u.Name)
}

func TestUser_FromListingLooksUpListingName(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/user/Alice/about", &redditest.Response{Body: aliceAbout})

	u := NewUserFromListing(d, &types.Account{ThingData: types.ThingData{ID: "u1", Name: "Alice"}})
	_, err := u.About(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/user/Alice/about", srv.LastRequest().Path)
}

func TestUser_AboutDifferentAccount(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/user/bob/about", &redditest.Response{Body: aliceAbout})

	u := NewUser(d, "bob")
	_, err := u.About(context.Background())

	var retErr *pkgerrs.RetrievalError
	require.ErrorAs(t, err, &retErr)
	assert.Empty(t, u.ID)
	assert.Equal(t, "bob", u.Name)
}

func TestUser_AboutNotFound(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/user/ghost/about", &redditest.Response{Status: http.StatusNotFound, Body: `{"message":"Not Found","error":404}`})

	_, err := NewUser(d, "ghost").About(context.Background())
	var apiErr *pkgerrs.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "404", apiErr.ErrorCode)
}

func TestUser_AboutWrongKind(t *testing.T) {
	d, srv := newTestDispatch(t)
	srv.Handle("/user/alice/about", &redditest.Response{Body: `{"kind":"t3","data":{"id":"x","name":"t3_x"}}`})

	_, err := NewUser(d, "alice").About(context.Background())
	var parseErr *pkgerrs.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestUser_Import(t *testing.T) {
	d, _ := newTestDispatch(t)
	u := NewUserFromListing(d, &types.Account{ThingData: types.ThingData{ID: "u1", Name: "alice"}})
	require.Equal(t, "t2_u1", u.Fullname)

	var stateErr *pkgerrs.StateError
	err := u.Import(&types.Account{ThingData: types.ThingData{ID: "u1", Name: "bob"}})
	require.ErrorAs(t, err, &stateErr)

	err = u.Import(&types.Account{ThingData: types.ThingData{ID: "u2", Name: "ALICE"}})
	require.ErrorAs(t, err, &stateErr, "same name but a different account id")
	assert.Equal(t, "u1", u.ID)

	require.NoError(t, u.Import(&types.Account{ThingData: types.ThingData{ID: "u1", Name: "ALICE"}, LinkKarma: 5}))
	assert.Equal(t, 5, u.LinkKarma)
	assert.Equal(t, "t2_u1", u.Fullname)
}

func TestUser_AboutRequiresName(t *testing.T) {
	d, srv := newTestDispatch(t)
	_, err := NewUser(d, "").About(context.Background())

	var stateErr *pkgerrs.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Empty(t, srv.Requests())
}

func TestUser_AboutInvalidName(t *testing.T) {
	d, srv := newTestDispatch(t)

	_, err := NewUser(d, "u/alice").About(context.Background())
	var stateErr *pkgerrs.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Empty(t, srv.Requests())
}
