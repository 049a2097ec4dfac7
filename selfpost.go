package graw

import (
	"context"

	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
	"github.com/jamesprial/go-reddit-dispatch/pkg/models"
	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
)

// SubmitOptions are the optional parameters of a submission.
type SubmitOptions struct {
	SendReplies bool
	Resubmit    bool
	FlairID     string
	FlairText   string
}

func (o *SubmitOptions) orDefault() *SubmitOptions {
	if o == nil {
		return &SubmitOptions{SendReplies: true}
	}
	return o
}

// SelfPost is a text post.
type SelfPost struct {
	Post

	SelfText     string
	SelfTextHTML string
}

func newSelfPost(d *Dispatch) *SelfPost {
	sp := &SelfPost{Post: Post{controller: controller{dispatch: d}, IsSelf: true}}
	sp.content = func(l *types.Post) {
		sp.SelfText = l.SelfText
		sp.SelfTextHTML = l.SelfTextHTML
	}
	return sp
}

// NewSelfPostFromListing returns a hydrated SelfPost.
func NewSelfPostFromListing(d *Dispatch, listing *types.Post) *SelfPost {
	sp := newSelfPost(d)
	sp.Fullname = listing.Name
	sp.apply(listing)
	return sp
}

// NewSelfPostStub returns a SelfPost known only by fullname; call About to hydrate it.
func NewSelfPostStub(d *Dispatch, fullname, subreddit string) *SelfPost {
	sp := newSelfPost(d)
	sp.Fullname = fullname
	sp.Subreddit = subreddit
	return sp
}

// NewSelfPost returns a draft to be submitted with Submit.
func NewSelfPost(d *Dispatch, subreddit, title, selfText string) *SelfPost {
	sp := newSelfPost(d)
	sp.Subreddit = subreddit
	sp.Title = title
	sp.SelfText = selfText
	return sp
}

// Listing renders the self post's current state as a listing.
func (sp *SelfPost) Listing() *types.Post {
	l := sp.Post.Listing()
	l.SelfText = sp.SelfText
	l.SelfTextHTML = sp.SelfTextHTML
	return l
}

// Submit posts the draft and returns a new SelfPost carrying the draft's content and the
// server-assigned id and fullname. The draft itself is not modified.
func (sp *SelfPost) Submit(ctx context.Context, opts *SubmitOptions) (*SelfPost, error) {
	const op = "selfpost submit"
	if err := requireDraft(&sp.controller, &sp.Identity, op); err != nil {
		return nil, err
	}
	if err := requireSubreddit(op, sp.Subreddit); err != nil {
		return nil, err
	}
	opts = opts.orDefault()

	res, err := call(sp.dispatch.LinksAndComments().Submit(ctx, models.SubmitRequest{
		Kind:        models.SubmitKindSelf,
		Subreddit:   sp.Subreddit,
		Title:       sp.Title,
		Text:        sp.SelfText,
		NSFW:        sp.NSFW,
		Spoiler:     sp.Spoiler,
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

	out := newSelfPost(sp.dispatch)
	sp.submitted(&out.Post, res.JSON.Data)
	out.SelfText = sp.SelfText
	out.SelfTextHTML = sp.SelfTextHTML
	if res.JSON.Data.URL != "" {
		out.URL = res.JSON.Data.URL
	}
	sp.dispatch.Logger().Debug("self post submitted", "fullname", out.Fullname, "subreddit", out.Subreddit)
	return out, nil
}

// Edit replaces the post body and imports the updated post in place.
func (sp *SelfPost) Edit(ctx context.Context, selfText string) (*SelfPost, error) {
	const op = "selfpost edit"
	if err := requireFullname(&sp.controller, &sp.Identity, op); err != nil {
		return nil, err
	}

	res, err := call(sp.dispatch.LinksAndComments().EditUserText(ctx, sp.Fullname, selfText))
	if err != nil {
		return nil, err
	}
	listing, err := editedPost(op, sp.Fullname, res)
	if err != nil {
		return nil, err
	}
	if err := sp.Import(listing); err != nil {
		return nil, err
	}
	return sp, nil
}

// About re-fetches the post and imports it in place.
func (sp *SelfPost) About(ctx context.Context) (*SelfPost, error) {
	if _, err := sp.Post.About(ctx); err != nil {
		return nil, err
	}
	return sp, nil
}

// SubmitAsync runs Submit on its own goroutine.
func (sp *SelfPost) SubmitAsync(ctx context.Context, opts *SubmitOptions) *Future[*SelfPost] {
	return async(ctx, func(ctx context.Context) (*SelfPost, error) { return sp.Submit(ctx, opts) })
}

// EditAsync runs Edit on its own goroutine.
func (sp *SelfPost) EditAsync(ctx context.Context, selfText string) *Future[*SelfPost] {
	return async(ctx, func(ctx context.Context) (*SelfPost, error) { return sp.Edit(ctx, selfText) })
}

// AboutAsync runs About on its own goroutine.
func (sp *SelfPost) AboutAsync(ctx context.Context) *Future[*SelfPost] {
	return async(ctx, sp.About)
}

// editedPost extracts the post echoed by api/editusertext.
func editedPost(op, fullname string, res *types.ThingsResultContainer) (*types.Post, error) {
	info, err := parser.ExtractThings(res.Things())
	if err != nil {
		return nil, err
	}
	if len(info.Posts) == 0 {
		return nil, &pkgerrs.RetrievalError{Operation: op, Fullname: fullname, Message: "no post returned"}
	}
	if info.Posts[0].Name != fullname {
		return nil, &pkgerrs.RetrievalError{Operation: op, Fullname: fullname, Message: "returned fullname " + info.Posts[0].Name}
	}
	return info.Posts[0], nil
}
