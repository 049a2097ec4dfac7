package graw

import (
	"context"
	"time"

	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
	"github.com/jamesprial/go-reddit-dispatch/pkg/validation"
)

// Conversation is the controller of a new-modmail conversation. Conversations have no fullname;
// they are addressed by their bare base36 ID.
type Conversation struct {
	controller
	Identity

	Subject       string
	Subreddit     string
	Participant   string
	Authors       []string
	IsAuto        bool
	IsRepliable   bool
	IsHighlighted bool
	IsInternal    bool
	NumMessages   int
	State         int

	LastUpdated    time.Time
	LastUserUpdate time.Time
	LastModUpdate  time.Time
	LastUnread     time.Time

	// Messages are ordered as Reddit lists them.
	Messages []types.ModmailMessage

	// Draft fields used by Submit.
	Body           string
	To             string
	IsAuthorHidden bool
}

// NewConversationFromContainer returns a hydrated Conversation.
func NewConversationFromContainer(d *Dispatch, c *types.ModmailConversationContainer) *Conversation {
	conv := &Conversation{controller: controller{dispatch: d}, Identity: Identity{ID: c.Conversation.ID}}
	conv.apply(c)
	return conv
}

// NewConversationStub returns a Conversation known only by id; call About to hydrate it.
func NewConversationStub(d *Dispatch, id string) *Conversation {
	return &Conversation{controller: controller{dispatch: d}, Identity: Identity{ID: id}}
}

// NewConversation returns a draft conversation from subreddit to the user or subreddit named by to.
func NewConversation(d *Dispatch, subreddit, to, subject, body string, isAuthorHidden bool) *Conversation {
	return &Conversation{
		controller:     controller{dispatch: d},
		Subreddit:      subreddit,
		To:             to,
		Subject:        subject,
		Body:           body,
		IsAuthorHidden: isAuthorHidden,
	}
}

// Import overwrites every non-identity field with c, which must describe this conversation.
func (conv *Conversation) Import(c *types.ModmailConversationContainer) error {
	if c == nil {
		return &pkgerrs.StateError{Operation: "import conversation", Message: "container is nil"}
	}
	if err := conv.matchID("import conversation", c.Conversation.ID); err != nil {
		return err
	}
	conv.apply(c)
	return nil
}

func (conv *Conversation) apply(c *types.ModmailConversationContainer) {
	m := c.Conversation

	conv.Subject = m.Subject
	if m.Owner.DisplayName != "" {
		conv.Subreddit = m.Owner.DisplayName
	}
	conv.Participant = m.Participant.Name
	conv.Authors = make([]string, 0, len(m.Authors))
	for _, a := range m.Authors {
		conv.Authors = append(conv.Authors, a.Name)
	}
	conv.IsAuto = m.IsAuto
	conv.IsRepliable = m.IsRepliable
	conv.IsHighlighted = m.IsHighlighted
	conv.IsInternal = m.IsInternal
	conv.NumMessages = m.NumMessages
	conv.State = m.State

	conv.LastUpdated = m.LastUpdated.Time
	conv.LastUserUpdate = m.LastUserUpdate.Time
	conv.LastModUpdate = m.LastModUpdate.Time
	conv.LastUnread = m.LastUnread.Time

	conv.Messages = c.OrderedMessages()
	if len(conv.Messages) > 0 {
		conv.Created = conv.Messages[0].Date.Time
	}
}

// Submit starts the conversation and returns a new, hydrated Conversation. The draft is not modified.
func (conv *Conversation) Submit(ctx context.Context) (*Conversation, error) {
	const op = "conversation submit"
	if err := requireDraft(&conv.controller, &conv.Identity, op); err != nil {
		return nil, err
	}
	if err := requireSubreddit(op, conv.Subreddit); err != nil {
		return nil, err
	}

	res, err := call(conv.dispatch.Modmail().NewConversation(ctx, conv.Body, conv.IsAuthorHidden, conv.Subreddit, conv.Subject, conv.To))
	if err != nil {
		return nil, err
	}
	if res.Conversation.ID == "" {
		return nil, &pkgerrs.RetrievalError{Operation: op, Message: "no conversation returned"}
	}

	out := NewConversationFromContainer(conv.dispatch, res)
	out.To = conv.To
	out.Body = conv.Body
	out.IsAuthorHidden = conv.IsAuthorHidden
	return out, nil
}

// About re-fetches the conversation without marking it read and imports it in place.
func (conv *Conversation) About(ctx context.Context) (*Conversation, error) {
	const op = "conversation about"
	if err := conv.requireID(op); err != nil {
		return nil, err
	}

	res, err := call(conv.dispatch.Modmail().GetConversation(ctx, conv.ID, false))
	if err != nil {
		return nil, err
	}
	if res.Conversation.ID != conv.ID {
		return nil, &pkgerrs.RetrievalError{Operation: op, Fullname: conv.ID, Message: "returned id " + res.Conversation.ID}
	}
	if err := conv.Import(res); err != nil {
		return nil, err
	}
	return conv, nil
}

// Reply adds a message and imports the updated conversation.
func (conv *Conversation) Reply(ctx context.Context, body string, isAuthorHidden, isInternal bool) (*Conversation, error) {
	return conv.update(ctx, "conversation reply", func(ctx context.Context) (*types.ModmailConversationContainer, error) {
		return conv.dispatch.Modmail().NewMessage(ctx, conv.ID, body, isAuthorHidden, isInternal)
	})
}

// Highlight highlights the conversation.
func (conv *Conversation) Highlight(ctx context.Context) (*Conversation, error) {
	return conv.update(ctx, "conversation highlight", func(ctx context.Context) (*types.ModmailConversationContainer, error) {
		return conv.dispatch.Modmail().MarkHighlighted(ctx, conv.ID)
	})
}

// Unhighlight reverses Highlight.
func (conv *Conversation) Unhighlight(ctx context.Context) (*Conversation, error) {
	return conv.update(ctx, "conversation unhighlight", func(ctx context.Context) (*types.ModmailConversationContainer, error) {
		return conv.dispatch.Modmail().RemoveHighlight(ctx, conv.ID)
	})
}

// Mute mutes the non-moderator participant.
func (conv *Conversation) Mute(ctx context.Context) (*Conversation, error) {
	return conv.update(ctx, "conversation mute", func(ctx context.Context) (*types.ModmailConversationContainer, error) {
		return conv.dispatch.Modmail().Mute(ctx, conv.ID)
	})
}

// Unmute reverses Mute.
func (conv *Conversation) Unmute(ctx context.Context) (*Conversation, error) {
	return conv.update(ctx, "conversation unmute", func(ctx context.Context) (*types.ModmailConversationContainer, error) {
		return conv.dispatch.Modmail().UnMute(ctx, conv.ID)
	})
}

// Archive archives the conversation. Reddit's answer is not reliably shaped, so it is returned
// raw and nothing is imported; call About to refresh.
func (conv *Conversation) Archive(ctx context.Context) (*types.UnstableResult, error) {
	if err := conv.requireID("conversation archive"); err != nil {
		return nil, err
	}
	return call(conv.dispatch.Modmail().ArchiveConversation(ctx, conv.ID))
}

// Unarchive reverses Archive. Like Archive, the result is returned raw.
func (conv *Conversation) Unarchive(ctx context.Context) (*types.UnstableResult, error) {
	if err := conv.requireID("conversation unarchive"); err != nil {
		return nil, err
	}
	return call(conv.dispatch.Modmail().UnarchiveConversation(ctx, conv.ID))
}

// MarkRead marks the conversation as read.
func (conv *Conversation) MarkRead(ctx context.Context) error {
	if err := conv.requireID("conversation markread"); err != nil {
		return err
	}
	_, err := call(conv.dispatch.Modmail().MarkRead(ctx, conv.ID))
	return err
}

// MarkUnread marks the conversation as unread.
func (conv *Conversation) MarkUnread(ctx context.Context) error {
	if err := conv.requireID("conversation markunread"); err != nil {
		return err
	}
	_, err := call(conv.dispatch.Modmail().MarkUnread(ctx, conv.ID))
	return err
}

// User returns recent activity of the user who started the conversation.
func (conv *Conversation) User(ctx context.Context) (*types.ModmailUser, error) {
	if err := conv.requireID("conversation user"); err != nil {
		return nil, err
	}
	return call(conv.dispatch.Modmail().User(ctx, conv.ID))
}

func (conv *Conversation) requireID(op string) error {
	if err := conv.ready(op); err != nil {
		return err
	}
	if conv.ID == "" {
		return &pkgerrs.StateError{Operation: op, Message: "operation requires a submitted conversation with an id"}
	}
	if !validation.IsValidBase36(conv.ID) {
		return &pkgerrs.StateError{Operation: op, Message: "invalid conversation id " + conv.ID}
	}
	return nil
}

// update runs a conversation-returning call, validates it and imports the result.
func (conv *Conversation) update(ctx context.Context, op string, fn func(context.Context) (*types.ModmailConversationContainer, error)) (*Conversation, error) {
	if err := conv.requireID(op); err != nil {
		return nil, err
	}
	res, err := call(fn(ctx))
	if err != nil {
		return nil, err
	}
	if err := conv.Import(res); err != nil {
		return nil, err
	}
	return conv, nil
}

// SubmitAsync runs Submit on its own goroutine.
func (conv *Conversation) SubmitAsync(ctx context.Context) *Future[*Conversation] {
	return async(ctx, conv.Submit)
}

// AboutAsync runs About on its own goroutine.
func (conv *Conversation) AboutAsync(ctx context.Context) *Future[*Conversation] {
	return async(ctx, conv.About)
}

// ReplyAsync runs Reply on its own goroutine.
func (conv *Conversation) ReplyAsync(ctx context.Context, body string, isAuthorHidden, isInternal bool) *Future[*Conversation] {
	return async(ctx, func(ctx context.Context) (*Conversation, error) {
		return conv.Reply(ctx, body, isAuthorHidden, isInternal)
	})
}

// ArchiveAsync runs Archive on its own goroutine.
func (conv *Conversation) ArchiveAsync(ctx context.Context) *Future[*types.UnstableResult] {
	return async(ctx, conv.Archive)
}

// UnarchiveAsync runs Unarchive on its own goroutine.
func (conv *Conversation) UnarchiveAsync(ctx context.Context) *Future[*types.UnstableResult] {
	return async(ctx, conv.Unarchive)
}

// HighlightAsync runs Highlight on its own goroutine.
func (conv *Conversation) HighlightAsync(ctx context.Context) *Future[*Conversation] {
	return async(ctx, conv.Highlight)
}

// UnhighlightAsync runs Unhighlight on its own goroutine.
func (conv *Conversation) UnhighlightAsync(ctx context.Context) *Future[*Conversation] {
	return async(ctx, conv.Unhighlight)
}

// MuteAsync runs Mute on its own goroutine.
func (conv *Conversation) MuteAsync(ctx context.Context) *Future[*Conversation] {
	return async(ctx, conv.Mute)
}

// UnmuteAsync runs Unmute on its own goroutine.
func (conv *Conversation) UnmuteAsync(ctx context.Context) *Future[*Conversation] {
	return async(ctx, conv.Unmute)
}

// MarkReadAsync runs MarkRead on its own goroutine.
func (conv *Conversation) MarkReadAsync(ctx context.Context) *Future[*Conversation] {
	return asyncAct(ctx, conv, conv.MarkRead)
}

// MarkUnreadAsync runs MarkUnread on its own goroutine.
func (conv *Conversation) MarkUnreadAsync(ctx context.Context) *Future[*Conversation] {
	return asyncAct(ctx, conv, conv.MarkUnread)
}

// UserAsync runs User on its own goroutine.
func (conv *Conversation) UserAsync(ctx context.Context) *Future[*types.ModmailUser] {
	return async(ctx, conv.User)
}
