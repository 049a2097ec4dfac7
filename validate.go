package graw

import (
	"context"
	"strconv"

	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
	"github.com/jamesprial/go-reddit-dispatch/pkg/models"
	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
	"github.com/jamesprial/go-reddit-dispatch/pkg/validation"
)

// Validate returns resp unchanged when it carries no Reddit error envelope. Otherwise it returns
// the zero T and an *errors.APIError describing the first error entry; every entry is kept in
// APIError.Details as a []types.APIErrorDetail.
func Validate[T types.Validatable](resp T) (T, error) {
	details := resp.APIErrors()
	if len(details) == 0 {
		return resp, nil
	}

	var zero T
	return zero, &pkgerrs.APIError{
		ErrorCode: details[0].Code,
		Message:   details[0].Message,
		Field:     details[0].Field,
		Details:   details,
	}
}

// call runs one model call and validates its response.
func call[T types.Validatable](resp T, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	return Validate(resp)
}

// controller is the part shared by every controller: the dispatch it was built from.
type controller struct {
	dispatch *Dispatch
}

// ready reports a StateError when the controller cannot reach the API.
func (c *controller) ready(op string) error {
	if c.dispatch == nil {
		return &pkgerrs.StateError{Operation: op, Message: "controller has no dispatch"}
	}
	return nil
}

// requireFullname guards operations that address an existing thing.
func requireFullname(c *controller, i *Identity, op string) error {
	if err := c.ready(op); err != nil {
		return err
	}
	if i.Fullname == "" {
		return &pkgerrs.StateError{Operation: op, Message: "operation requires a submitted thing with a fullname"}
	}
	if err := validation.CheckFullname(i.Fullname); err != nil {
		return &pkgerrs.StateError{Operation: op, Message: err.Error()}
	}
	return nil
}

// requireSubreddit guards drafts addressed to a subreddit.
func requireSubreddit(op, name string) error {
	if !validation.IsValidSubreddit(name) {
		return &pkgerrs.StateError{Operation: op, Message: "invalid subreddit name " + strconv.Quote(name)}
	}
	return nil
}

// requireDraft guards Submit.
func requireDraft(c *controller, i *Identity, op string) error {
	if err := c.ready(op); err != nil {
		return err
	}
	if !i.IsDraft() {
		return &pkgerrs.StateError{Operation: op, Message: "already submitted as " + i.Fullname + i.ID}
	}
	return nil
}

// Dispatch returns the dispatch the controller was built from.
func (c *controller) Dispatch() *Dispatch { return c.dispatch }

// act runs a fullname-addressed action on the model selected from the controller's dispatch,
// validates the response and applies update on success.
func act[M any](
	ctx context.Context,
	c *controller,
	i *Identity,
	op string,
	model func(*Dispatch) M,
	fn func(M, context.Context, string) (*types.GenericContainer, error),
	update func(),
) error {
	if err := requireFullname(c, i, op); err != nil {
		return err
	}
	if _, err := call(fn(model(c.dispatch), ctx, i.Fullname)); err != nil {
		return err
	}
	if update != nil {
		update()
	}
	return nil
}

// removeAs adapts Moderation.Remove to the act signature.
func removeAs(spam bool) func(*models.Moderation, context.Context, string) (*types.GenericContainer, error) {
	return func(m *models.Moderation, ctx context.Context, id string) (*types.GenericContainer, error) {
		return m.Remove(ctx, id, spam)
	}
}

// saveAs adapts LinksAndComments.Save to the act signature.
func saveAs(category string) func(*models.LinksAndComments, context.Context, string) (*types.GenericContainer, error) {
	return func(m *models.LinksAndComments, ctx context.Context, id string) (*types.GenericContainer, error) {
		return m.Save(ctx, id, category)
	}
}
