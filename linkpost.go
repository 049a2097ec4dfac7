package graw

import (
	"context"

	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
	"github.com/jamesprial/go-reddit-dispatch/pkg/models"
	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
)

// LinkPost is a post pointing at URL.
type LinkPost struct {
	Post
}

func newLinkPost(d *Dispatch) *LinkPost {
	return &LinkPost{Post: Post{controller: controller{dispatch: d}}}
}

// NewLinkPostFromListing returns a hydrated LinkPost.
func NewLinkPostFromListing(d *Dispatch, listing *types.Post) *LinkPost {
	lp := newLinkPost(d)
	lp.Fullname = listing.Name
	lp.apply(listing)
	return lp
}

// NewLinkPostStub returns a LinkPost known only by fullname; call About to hydrate it.
func NewLinkPostStub(d *Dispatch, fullname, subreddit string) *LinkPost {
	lp := newLinkPost(d)
	lp.Fullname = fullname
	lp.Subreddit = subreddit
	return lp
}

// NewLinkPost returns a draft to be submitted with Submit.
func NewLinkPost(d *Dispatch, subreddit, title, url string) *LinkPost {
	lp := newLinkPost(d)
	lp.Subreddit = subreddit
	lp.Title = title
	lp.URL = url
	return lp
}

// Submit posts the draft and returns a new LinkPost with the server-assigned id and fullname.
// The draft itself is not modified.
func (lp *LinkPost) Submit(ctx context.Context, opts *SubmitOptions) (*LinkPost, error) {
	const op = "linkpost submit"
	if err := requireDraft(&lp.controller, &lp.Identity, op); err != nil {
		return nil, err
	}
	if err := requireSubreddit(op, lp.Subreddit); err != nil {
		return nil, err
	}
	opts = opts.orDefault()

	res, err := call(lp.dispatch.LinksAndComments().Submit(ctx, models.SubmitRequest{
		Kind:        models.SubmitKindLink,
		Subreddit:   lp.Subreddit,
		Title:       lp.Title,
		URL:         lp.URL,
		NSFW:        lp.NSFW,
		Spoiler:     lp.Spoiler,
		SendReplies: opts.SendReplies,
		Resubmit:    opts.Resubmit,
		FlairID:     opts.FlairID,
		FlairText:   opts.FlairText,
	}))
	if err != nil {
		return nil, err
	}
	if res.JSON.Data.Name == "" {
		return nil, &pkgerrs.RetrievalError{Operation: op, Message: "submit returned no fullname"}
	}

	out := newLinkPost(lp.dispatch)
	lp.submitted(&out.Post, res.JSON.Data)
	return out, nil
}

// About re-fetches the post and imports it in place.
func (lp *LinkPost) About(ctx context.Context) (*LinkPost, error) {
	if _, err := lp.Post.About(ctx); err != nil {
		return nil, err
	}
	return lp, nil
}

// SubmitAsync runs Submit on its own goroutine.
func (lp *LinkPost) SubmitAsync(ctx context.Context, opts *SubmitOptions) *Future[*LinkPost] {
	return async(ctx, func(ctx context.Context) (*LinkPost, error) { return lp.Submit(ctx, opts) })
}

// AboutAsync runs About on its own goroutine.
func (lp *LinkPost) AboutAsync(ctx context.Context) *Future[*LinkPost] {
	return async(ctx, lp.About)
}
