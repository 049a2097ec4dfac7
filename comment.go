package graw

import (
	"context"

	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
	"github.com/jamesprial/go-reddit-dispatch/pkg/models"
	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
	"github.com/jamesprial/go-reddit-dispatch/pkg/validation"
)

// Comment is the controller of a comment (kind t1).
type Comment struct {
	controller
	Identity

	Author        string
	Body          string
	BodyHTML      string
	Subreddit     string
	SubredditID   string
	LinkID        string
	ParentID      string
	Distinguished string

	Score       int
	UpVotes     int
	DownVotes   int
	Likes       *bool
	ScoreHidden bool
	Depth       int

	Saved    bool
	Removed  bool
	Spam     bool
	Approved bool
}

// NewCommentFromListing returns a hydrated Comment.
func NewCommentFromListing(d *Dispatch, listing *types.Comment) *Comment {
	c := &Comment{controller: controller{dispatch: d}, Identity: Identity{Fullname: listing.Name}}
	c.apply(listing)
	return c
}

// NewCommentStub returns a Comment known only by fullname; call About to hydrate it.
func NewCommentStub(d *Dispatch, fullname string) *Comment {
	return &Comment{controller: controller{dispatch: d}, Identity: Identity{Fullname: fullname}}
}

// NewComment returns a draft reply to parent (a post, comment or message fullname).
func NewComment(d *Dispatch, parent, body string) *Comment {
	return &Comment{controller: controller{dispatch: d}, ParentID: parent, Body: body}
}

// Import overwrites every non-identity field with listing. listing must describe this comment;
// otherwise a StateError is returned and nothing changes.
func (c *Comment) Import(listing *types.Comment) error {
	if listing == nil {
		return &pkgerrs.StateError{Operation: "import comment", Message: "listing is nil"}
	}
	if err := c.matchFullname("import comment", listing.Name); err != nil {
		return err
	}
	c.apply(listing)
	return nil
}

func (c *Comment) apply(l *types.Comment) {
	c.fill(l.ThingData, l.Permalink, l.Created, l.Edited)

	c.Author = l.Author
	c.Body = l.Body
	c.BodyHTML = l.BodyHTML
	c.Subreddit = l.Subreddit
	c.SubredditID = l.SubredditID
	c.LinkID = l.LinkID
	c.ParentID = l.ParentID
	c.Distinguished = ""
	if l.Distinguished != nil {
		c.Distinguished = *l.Distinguished
	}

	c.Score = l.Score
	c.UpVotes = l.Ups
	c.DownVotes = l.Downs
	c.Likes = l.Likes
	c.ScoreHidden = l.ScoreHidden
	c.Depth = l.Depth

	c.Saved = l.Saved
	c.Removed = l.Removed
	c.Spam = l.Spam
	c.Approved = l.Approved
}

// Listing renders the comment's current state as a listing.
func (c *Comment) Listing() *types.Comment {
	l := &types.Comment{
		ThingData:   c.thingData(),
		Votable:     types.Votable{Ups: c.UpVotes, Downs: c.DownVotes, Likes: c.Likes},
		Created:     c.created(),
		Edited:      c.edited(),
		Permalink:   c.Permalink,
		Author:      c.Author,
		Body:        c.Body,
		BodyHTML:    c.BodyHTML,
		Subreddit:   c.Subreddit,
		SubredditID: c.SubredditID,
		LinkID:      c.LinkID,
		ParentID:    c.ParentID,
		Score:       c.Score,
		ScoreHidden: c.ScoreHidden,
		Depth:       c.Depth,
		Saved:       c.Saved,
		Removed:     c.Removed,
		Spam:        c.Spam,
		Approved:    c.Approved,
	}
	if c.Distinguished != "" {
		d := c.Distinguished
		l.Distinguished = &d
	}
	return l
}

// Submit posts the draft and returns a new Comment hydrated from Reddit's echo. The draft itself
// is not modified.
func (c *Comment) Submit(ctx context.Context) (*Comment, error) {
	const op = "comment submit"
	if err := requireDraft(&c.controller, &c.Identity, op); err != nil {
		return nil, err
	}
	if err := validation.CheckFullname(c.ParentID, validation.KindComment, validation.KindLink); err != nil {
		return nil, &pkgerrs.StateError{Operation: op, Message: "parent: " + err.Error()}
	}

	res, err := call(c.dispatch.LinksAndComments().Comment(ctx, c.ParentID, c.Body))
	if err != nil {
		return nil, err
	}
	info, err := parser.ExtractThings(res.Things())
	if err != nil {
		return nil, err
	}
	if len(info.Comments) == 0 || info.Comments[0].Name == "" {
		return nil, &pkgerrs.RetrievalError{Operation: op, Fullname: c.ParentID, Message: "no comment returned"}
	}
	return NewCommentFromListing(c.dispatch, info.Comments[0]), nil
}

// Reply answers this comment and returns the new comment.
func (c *Comment) Reply(ctx context.Context, body string) (*Comment, error) {
	if err := requireFullname(&c.controller, &c.Identity, "comment reply"); err != nil {
		return nil, err
	}
	return NewComment(c.dispatch, c.Fullname, body).Submit(ctx)
}

// Edit replaces the comment body and imports the updated comment in place.
func (c *Comment) Edit(ctx context.Context, body string) (*Comment, error) {
	const op = "comment edit"
	if err := requireFullname(&c.controller, &c.Identity, op); err != nil {
		return nil, err
	}

	res, err := call(c.dispatch.LinksAndComments().EditUserText(ctx, c.Fullname, body))
	if err != nil {
		return nil, err
	}
	info, err := parser.ExtractThings(res.Things())
	if err != nil {
		return nil, err
	}
	if len(info.Comments) == 0 {
		return nil, &pkgerrs.RetrievalError{Operation: op, Fullname: c.Fullname, Message: "no comment returned"}
	}
	if info.Comments[0].Name != c.Fullname {
		return nil, &pkgerrs.RetrievalError{Operation: op, Fullname: c.Fullname, Message: "returned fullname " + info.Comments[0].Name}
	}
	if err := c.Import(info.Comments[0]); err != nil {
		return nil, err
	}
	return c, nil
}

// About re-fetches the comment and imports it in place. It fails with a RetrievalError when
// Reddit returns no comment or a different one.
func (c *Comment) About(ctx context.Context) (*Comment, error) {
	const op = "comment about"
	if err := requireFullname(&c.controller, &c.Identity, op); err != nil {
		return nil, err
	}

	info, err := call(c.dispatch.LinksAndComments().Info(ctx, models.InfoRequest{Fullnames: []string{c.Fullname}}))
	if err != nil {
		return nil, err
	}
	if len(info.Comments) == 0 {
		return nil, &pkgerrs.RetrievalError{Operation: op, Fullname: c.Fullname, Message: "no comment returned"}
	}
	if info.Comments[0].Name != c.Fullname {
		return nil, &pkgerrs.RetrievalError{Operation: op, Fullname: c.Fullname, Message: "returned fullname " + info.Comments[0].Name}
	}
	if err := c.Import(info.Comments[0]); err != nil {
		return nil, err
	}
	return c, nil
}

// Vote casts dir, then re-syncs the comment with About.
func (c *Comment) Vote(ctx context.Context, dir int) error {
	if err := requireFullname(&c.controller, &c.Identity, "comment vote"); err != nil {
		return err
	}
	if _, err := call(c.dispatch.LinksAndComments().Vote(ctx, c.Fullname, dir)); err != nil {
		return err
	}
	_, err := c.About(ctx)
	return err
}

// Upvote is Vote(ctx, models.VoteUp).
func (c *Comment) Upvote(ctx context.Context) error { return c.Vote(ctx, models.VoteUp) }

// Downvote is Vote(ctx, models.VoteDown).
func (c *Comment) Downvote(ctx context.Context) error { return c.Vote(ctx, models.VoteDown) }

// Unvote is Vote(ctx, models.VoteClear).
func (c *Comment) Unvote(ctx context.Context) error { return c.Vote(ctx, models.VoteClear) }

// Delete deletes the comment. The instance remains as a stale snapshot.
func (c *Comment) Delete(ctx context.Context) error {
	return act(ctx, &c.controller, &c.Identity, "comment delete", (*Dispatch).LinksAndComments, (*models.LinksAndComments).Delete, nil)
}

// Save saves the comment.
func (c *Comment) Save(ctx context.Context) error {
	return act(ctx, &c.controller, &c.Identity, "comment save", (*Dispatch).LinksAndComments, saveAs(""), func() { c.Saved = true })
}

// Unsave reverses Save.
func (c *Comment) Unsave(ctx context.Context) error {
	return act(ctx, &c.controller, &c.Identity, "comment unsave", (*Dispatch).LinksAndComments, (*models.LinksAndComments).Unsave, func() { c.Saved = false })
}

// Approve approves the comment as a moderator.
func (c *Comment) Approve(ctx context.Context) error {
	return act(ctx, &c.controller, &c.Identity, "comment approve", (*Dispatch).Moderation, (*models.Moderation).Approve, func() {
		c.Approved, c.Removed, c.Spam = true, false, false
	})
}

// Remove removes the comment as a moderator.
func (c *Comment) Remove(ctx context.Context, spam bool) error {
	return act(ctx, &c.controller, &c.Identity, "comment remove", (*Dispatch).Moderation, removeAs(spam), func() {
		c.Approved, c.Removed, c.Spam = false, true, spam
	})
}

// SubmitAsync runs Submit on its own goroutine.
func (c *Comment) SubmitAsync(ctx context.Context) *Future[*Comment] {
	return async(ctx, c.Submit)
}

// ReplyAsync runs Reply on its own goroutine.
func (c *Comment) ReplyAsync(ctx context.Context, body string) *Future[*Comment] {
	return async(ctx, func(ctx context.Context) (*Comment, error) { return c.Reply(ctx, body) })
}

// EditAsync runs Edit on its own goroutine.
func (c *Comment) EditAsync(ctx context.Context, body string) *Future[*Comment] {
	return async(ctx, func(ctx context.Context) (*Comment, error) { return c.Edit(ctx, body) })
}

// AboutAsync runs About on its own goroutine.
func (c *Comment) AboutAsync(ctx context.Context) *Future[*Comment] {
	return async(ctx, c.About)
}

// VoteAsync runs Vote on its own goroutine.
func (c *Comment) VoteAsync(ctx context.Context, dir int) *Future[*Comment] {
	return async(ctx, func(ctx context.Context) (*Comment, error) { return c, c.Vote(ctx, dir) })
}

// DeleteAsync runs Delete on its own goroutine.
func (c *Comment) DeleteAsync(ctx context.Context) *Future[*Comment] {
	return async(ctx, func(ctx context.Context) (*Comment, error) { return c, c.Delete(ctx) })
}

// SaveAsync runs Save on its own goroutine.
func (c *Comment) SaveAsync(ctx context.Context) *Future[*Comment] {
	return asyncAct(ctx, c, c.Save)
}

// UnsaveAsync runs Unsave on its own goroutine.
func (c *Comment) UnsaveAsync(ctx context.Context) *Future[*Comment] {
	return asyncAct(ctx, c, c.Unsave)
}

// ApproveAsync runs Approve on its own goroutine.
func (c *Comment) ApproveAsync(ctx context.Context) *Future[*Comment] {
	return asyncAct(ctx, c, c.Approve)
}

// UpvoteAsync runs Upvote on its own goroutine.
func (c *Comment) UpvoteAsync(ctx context.Context) *Future[*Comment] {
	return asyncAct(ctx, c, c.Upvote)
}

// DownvoteAsync runs Downvote on its own goroutine.
func (c *Comment) DownvoteAsync(ctx context.Context) *Future[*Comment] {
	return asyncAct(ctx, c, c.Downvote)
}

// UnvoteAsync runs Unvote on its own goroutine.
func (c *Comment) UnvoteAsync(ctx context.Context) *Future[*Comment] {
	return asyncAct(ctx, c, c.Unvote)
}

// RemoveAsync runs Remove on its own goroutine.
func (c *Comment) RemoveAsync(ctx context.Context, spam bool) *Future[*Comment] {
	return asyncAct(ctx, c, func(ctx context.Context) error { return c.Remove(ctx, spam) })
}
