package graw

import (
	"context"

	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
	"github.com/jamesprial/go-reddit-dispatch/pkg/models"
	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
)

// Post is the controller of a link or self post (kind t3). SelfPost and LinkPost embed it and add
// their kind-specific content. A Post is a single-owner mutable record: operations refresh its
// fields in place and it must not be used from several goroutines at once.
type Post struct {
	controller
	Identity

	Author        string
	Subreddit     string
	SubredditID   string
	Title         string
	URL           string
	Domain        string
	Thumbnail     string
	Distinguished string

	Score       int
	UpVotes     int
	DownVotes   int
	Likes       *bool
	NumComments int

	IsSelf   bool
	NSFW     bool
	Spoiler  bool
	Locked   bool
	Hidden   bool
	Saved    bool
	Stickied bool
	Removed  bool
	Spam     bool
	Approved bool

	// content copies kind-specific fields on import; set by the embedding controller.
	content func(*types.Post)
}

// NewPostFromListing returns a hydrated Post.
func NewPostFromListing(d *Dispatch, listing *types.Post) *Post {
	p := &Post{controller: controller{dispatch: d}, Identity: Identity{Fullname: listing.Name}}
	p.apply(listing)
	return p
}

// NewPostStub returns a Post known only by fullname; call About to hydrate it.
// subreddit is optional and narrows the lookup.
func NewPostStub(d *Dispatch, fullname, subreddit string) *Post {
	return &Post{controller: controller{dispatch: d}, Identity: Identity{Fullname: fullname}, Subreddit: subreddit}
}

// submitted copies every field of the draft p into out, keeps out's dispatch and content hook,
// and sets the identity Reddit assigned.
func (p *Post) submitted(out *Post, data types.PostResultShortData) {
	ctl, content := out.controller, out.content
	*out = *p
	out.controller, out.content = ctl, content
	out.ID = data.ID
	out.Fullname = data.Name
	if p.Likes != nil {
		likes := *p.Likes
		out.Likes = &likes
	}
}

// Import overwrites every non-identity field with listing. listing must describe this post;
// otherwise a StateError is returned and nothing changes.
func (p *Post) Import(listing *types.Post) error {
	if listing == nil {
		return &pkgerrs.StateError{Operation: "import post", Message: "listing is nil"}
	}
	if err := p.matchFullname("import post", listing.Name); err != nil {
		return err
	}
	p.apply(listing)
	return nil
}

func (p *Post) apply(l *types.Post) {
	p.fill(l.ThingData, l.Permalink, l.Created, l.Edited)

	p.Author = l.Author
	p.Subreddit = l.Subreddit
	p.SubredditID = l.SubredditID
	p.Title = l.Title
	p.URL = l.URL
	p.Domain = l.Domain
	p.Thumbnail = l.Thumbnail
	p.Distinguished = ""
	if l.Distinguished != nil {
		p.Distinguished = *l.Distinguished
	}

	p.Score = l.Score
	p.UpVotes = l.Ups
	p.DownVotes = l.Downs
	p.Likes = l.Likes
	p.NumComments = l.NumComments

	p.IsSelf = l.IsSelf
	p.NSFW = l.Over18
	p.Spoiler = l.Spoiler
	p.Locked = l.Locked
	p.Hidden = l.Hidden
	p.Saved = l.Saved
	p.Stickied = l.Stickied
	p.Removed = l.Removed
	p.Spam = l.Spam
	p.Approved = l.Approved

	if p.content != nil {
		p.content(l)
	}
}

// Listing renders the post's current state as a listing.
func (p *Post) Listing() *types.Post {
	l := &types.Post{
		ThingData:   p.thingData(),
		Votable:     types.Votable{Ups: p.UpVotes, Downs: p.DownVotes, Likes: p.Likes},
		Created:     p.created(),
		Edited:      p.edited(),
		Permalink:   p.Permalink,
		Author:      p.Author,
		Subreddit:   p.Subreddit,
		SubredditID: p.SubredditID,
		Title:       p.Title,
		URL:         p.URL,
		Domain:      p.Domain,
		Thumbnail:   p.Thumbnail,
		Score:       p.Score,
		NumComments: p.NumComments,
		IsSelf:      p.IsSelf,
		Over18:      p.NSFW,
		Spoiler:     p.Spoiler,
		Locked:      p.Locked,
		Hidden:      p.Hidden,
		Saved:       p.Saved,
		Stickied:    p.Stickied,
		Removed:     p.Removed,
		Spam:        p.Spam,
		Approved:    p.Approved,
	}
	if p.Distinguished != "" {
		d := p.Distinguished
		l.Distinguished = &d
	}
	return l
}

// About re-fetches the post and imports it in place. It fails with a RetrievalError when Reddit
// returns no post or a different one.
func (p *Post) About(ctx context.Context) (*Post, error) {
	const op = "post about"
	if err := requireFullname(&p.controller, &p.Identity, op); err != nil {
		return nil, err
	}
	if p.Subreddit != "" {
		if err := requireSubreddit(op, p.Subreddit); err != nil {
			return nil, err
		}
	}

	info, err := call(p.dispatch.LinksAndComments().Info(ctx, models.InfoRequest{
		Fullnames: []string{p.Fullname},
		Subreddit: p.Subreddit,
	}))
	if err != nil {
		return nil, err
	}
	if len(info.Posts) == 0 {
		return nil, &pkgerrs.RetrievalError{Operation: op, Fullname: p.Fullname, Message: "no post returned"}
	}
	if info.Posts[0].Name != p.Fullname {
		return nil, &pkgerrs.RetrievalError{Operation: op, Fullname: p.Fullname, Message: "returned fullname " + info.Posts[0].Name}
	}

	if err := p.Import(info.Posts[0]); err != nil {
		return nil, err
	}
	return p, nil
}

// Vote casts dir (models.VoteUp, VoteDown or VoteClear), then re-syncs the post with About.
func (p *Post) Vote(ctx context.Context, dir int) error {
	if err := requireFullname(&p.controller, &p.Identity, "post vote"); err != nil {
		return err
	}
	if _, err := call(p.dispatch.LinksAndComments().Vote(ctx, p.Fullname, dir)); err != nil {
		return err
	}
	_, err := p.About(ctx)
	return err
}

// Upvote is Vote(ctx, models.VoteUp).
func (p *Post) Upvote(ctx context.Context) error { return p.Vote(ctx, models.VoteUp) }

// Downvote is Vote(ctx, models.VoteDown).
func (p *Post) Downvote(ctx context.Context) error { return p.Vote(ctx, models.VoteDown) }

// Unvote is Vote(ctx, models.VoteClear).
func (p *Post) Unvote(ctx context.Context) error { return p.Vote(ctx, models.VoteClear) }

// Delete deletes the post. The instance remains as a stale snapshot.
func (p *Post) Delete(ctx context.Context) error {
	return act(ctx, &p.controller, &p.Identity, "post delete", (*Dispatch).LinksAndComments, (*models.LinksAndComments).Delete, nil)
}

// Save saves the post into category, which may be empty.
func (p *Post) Save(ctx context.Context, category string) error {
	return act(ctx, &p.controller, &p.Identity, "post save", (*Dispatch).LinksAndComments, saveAs(category), func() { p.Saved = true })
}

// Unsave reverses Save.
func (p *Post) Unsave(ctx context.Context) error {
	return act(ctx, &p.controller, &p.Identity, "post unsave", (*Dispatch).LinksAndComments, (*models.LinksAndComments).Unsave, func() { p.Saved = false })
}

// Hide hides the post.
func (p *Post) Hide(ctx context.Context) error {
	return act(ctx, &p.controller, &p.Identity, "post hide", (*Dispatch).LinksAndComments, (*models.LinksAndComments).Hide, func() { p.Hidden = true })
}

// Unhide reverses Hide.
func (p *Post) Unhide(ctx context.Context) error {
	return act(ctx, &p.controller, &p.Identity, "post unhide", (*Dispatch).LinksAndComments, (*models.LinksAndComments).Unhide, func() { p.Hidden = false })
}

// Lock locks the post.
func (p *Post) Lock(ctx context.Context) error {
	return act(ctx, &p.controller, &p.Identity, "post lock", (*Dispatch).LinksAndComments, (*models.LinksAndComments).Lock, func() { p.Locked = true })
}

// Unlock reverses Lock.
func (p *Post) Unlock(ctx context.Context) error {
	return act(ctx, &p.controller, &p.Identity, "post unlock", (*Dispatch).LinksAndComments, (*models.LinksAndComments).Unlock, func() { p.Locked = false })
}

// MarkNSFW flags the post as not safe for work.
func (p *Post) MarkNSFW(ctx context.Context) error {
	return act(ctx, &p.controller, &p.Identity, "post marknsfw", (*Dispatch).LinksAndComments, (*models.LinksAndComments).MarkNSFW, func() { p.NSFW = true })
}

// UnmarkNSFW reverses MarkNSFW.
func (p *Post) UnmarkNSFW(ctx context.Context) error {
	return act(ctx, &p.controller, &p.Identity, "post unmarknsfw", (*Dispatch).LinksAndComments, (*models.LinksAndComments).UnmarkNSFW, func() { p.NSFW = false })
}

// MarkSpoiler flags the post as a spoiler.
func (p *Post) MarkSpoiler(ctx context.Context) error {
	return act(ctx, &p.controller, &p.Identity, "post spoiler", (*Dispatch).LinksAndComments, (*models.LinksAndComments).Spoiler, func() { p.Spoiler = true })
}

// UnmarkSpoiler reverses MarkSpoiler.
func (p *Post) UnmarkSpoiler(ctx context.Context) error {
	return act(ctx, &p.controller, &p.Identity, "post unspoiler", (*Dispatch).LinksAndComments, (*models.LinksAndComments).Unspoiler, func() { p.Spoiler = false })
}

// Approve approves the post as a moderator.
func (p *Post) Approve(ctx context.Context) error {
	return act(ctx, &p.controller, &p.Identity, "post approve", (*Dispatch).Moderation, (*models.Moderation).Approve, func() {
		p.Approved, p.Removed, p.Spam = true, false, false
	})
}

// Remove removes the post as a moderator; spam also trains the spam filter.
func (p *Post) Remove(ctx context.Context, spam bool) error {
	return act(ctx, &p.controller, &p.Identity, "post remove", (*Dispatch).Moderation, removeAs(spam), func() {
		p.Approved, p.Removed, p.Spam = false, true, spam
	})
}

// Reply comments on the post and returns the new comment.
func (p *Post) Reply(ctx context.Context, body string) (*Comment, error) {
	if err := requireFullname(&p.controller, &p.Identity, "post reply"); err != nil {
		return nil, err
	}
	return NewComment(p.dispatch, p.Fullname, body).Submit(ctx)
}

// AboutAsync runs About on its own goroutine.
func (p *Post) AboutAsync(ctx context.Context) *Future[*Post] {
	return async(ctx, p.About)
}

// VoteAsync runs Vote on its own goroutine.
func (p *Post) VoteAsync(ctx context.Context, dir int) *Future[*Post] {
	return async(ctx, func(ctx context.Context) (*Post, error) { return p, p.Vote(ctx, dir) })
}

// DeleteAsync runs Delete on its own goroutine.
func (p *Post) DeleteAsync(ctx context.Context) *Future[*Post] {
	return async(ctx, func(ctx context.Context) (*Post, error) { return p, p.Delete(ctx) })
}

// SaveAsync runs Save on its own goroutine.
func (p *Post) SaveAsync(ctx context.Context, category string) *Future[*Post] {
	return async(ctx, func(ctx context.Context) (*Post, error) { return p, p.Save(ctx, category) })
}

// ReplyAsync runs Reply on its own goroutine.
func (p *Post) ReplyAsync(ctx context.Context, body string) *Future[*Comment] {
	return async(ctx, func(ctx context.Context) (*Comment, error) { return p.Reply(ctx, body) })
}

// RemoveAsync runs Remove on its own goroutine.
func (p *Post) RemoveAsync(ctx context.Context, spam bool) *Future[*Post] {
	return async(ctx, func(ctx context.Context) (*Post, error) { return p, p.Remove(ctx, spam) })
}

// UpvoteAsync runs Upvote on its own goroutine.
func (p *Post) UpvoteAsync(ctx context.Context) *Future[*Post] {
	return asyncAct(ctx, p, p.Upvote)
}

// DownvoteAsync runs Downvote on its own goroutine.
func (p *Post) DownvoteAsync(ctx context.Context) *Future[*Post] {
	return asyncAct(ctx, p, p.Downvote)
}

// UnvoteAsync runs Unvote on its own goroutine.
func (p *Post) UnvoteAsync(ctx context.Context) *Future[*Post] {
	return asyncAct(ctx, p, p.Unvote)
}

// UnsaveAsync runs Unsave on its own goroutine.
func (p *Post) UnsaveAsync(ctx context.Context) *Future[*Post] {
	return asyncAct(ctx, p, p.Unsave)
}

// HideAsync runs Hide on its own goroutine.
func (p *Post) HideAsync(ctx context.Context) *Future[*Post] {
	return asyncAct(ctx, p, p.Hide)
}

// UnhideAsync runs Unhide on its own goroutine.
func (p *Post) UnhideAsync(ctx context.Context) *Future[*Post] {
	return asyncAct(ctx, p, p.Unhide)
}

// LockAsync runs Lock on its own goroutine.
func (p *Post) LockAsync(ctx context.Context) *Future[*Post] {
	return asyncAct(ctx, p, p.Lock)
}

// UnlockAsync runs Unlock on its own goroutine.
func (p *Post) UnlockAsync(ctx context.Context) *Future[*Post] {
	return asyncAct(ctx, p, p.Unlock)
}

// MarkNSFWAsync runs MarkNSFW on its own goroutine.
func (p *Post) MarkNSFWAsync(ctx context.Context) *Future[*Post] {
	return asyncAct(ctx, p, p.MarkNSFW)
}

// UnmarkNSFWAsync runs UnmarkNSFW on its own goroutine.
func (p *Post) UnmarkNSFWAsync(ctx context.Context) *Future[*Post] {
	return asyncAct(ctx, p, p.UnmarkNSFW)
}

// MarkSpoilerAsync runs MarkSpoiler on its own goroutine.
func (p *Post) MarkSpoilerAsync(ctx context.Context) *Future[*Post] {
	return asyncAct(ctx, p, p.MarkSpoiler)
}

// UnmarkSpoilerAsync runs UnmarkSpoiler on its own goroutine.
func (p *Post) UnmarkSpoilerAsync(ctx context.Context) *Future[*Post] {
	return asyncAct(ctx, p, p.UnmarkSpoiler)
}

// ApproveAsync runs Approve on its own goroutine.
func (p *Post) ApproveAsync(ctx context.Context) *Future[*Post] {
	return asyncAct(ctx, p, p.Approve)
}
