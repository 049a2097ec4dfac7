package graw

import (
	"context"
	"strings"
	"time"

	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
	"github.com/jamesprial/go-reddit-dispatch/pkg/validation"
)

// User is the controller of a Reddit account (kind t2). Users are looked up by name; the id and
// fullname are learned from the first About.
type User struct {
	controller
	Identity

	Name             string
	LinkKarma        int
	CommentKarma     int
	HasVerifiedEmail bool
	IsGold           bool
	IsMod            bool
	IsFriend         bool
	IsSuspended      bool
	Over18           bool
	IconImg          string

	// lookup is the name About requests, kept as given so that adopting Reddit's canonical
	// casing into Name never changes the endpoint.
	lookup string
}

// NewUser returns a User stub for name; call About to hydrate it.
func NewUser(d *Dispatch, name string) *User {
	return &User{controller: controller{dispatch: d}, Name: name, lookup: name}
}

// NewUserFromListing returns a hydrated User.
func NewUserFromListing(d *Dispatch, listing *types.Account) *User {
	u := NewUser(d, listing.Name)
	u.apply(listing)
	return u
}

// Import overwrites every non-identity field with listing. The account name must match
// case-insensitively and, once known, so must the fullname.
func (u *User) Import(listing *types.Account) error {
	const op = "import user"
	if listing == nil {
		return &pkgerrs.StateError{Operation: op, Message: "listing is nil"}
	}
	if !strings.EqualFold(listing.Name, u.Name) {
		return &pkgerrs.StateError{Operation: op, Message: "account " + listing.Name + " does not match " + u.Name}
	}
	if u.Fullname != "" && listing.ID != "" && accountFullname(listing.ID) != u.Fullname {
		return &pkgerrs.StateError{Operation: op, Message: "fullname " + accountFullname(listing.ID) + " does not match " + u.Fullname}
	}
	u.apply(listing)
	return nil
}

func (u *User) apply(l *types.Account) {
	if u.ID == "" {
		u.ID = l.ID
	}
	if u.Fullname == "" && l.ID != "" {
		u.Fullname = accountFullname(l.ID)
	}
	u.Created = l.CreatedTime()
	u.Permalink = "/user/" + l.Name + "/"

	u.Name = l.Name
	u.LinkKarma = l.LinkKarma
	u.CommentKarma = l.CommentKarma
	u.HasVerifiedEmail = l.HasVerifiedEmail != nil && *l.HasVerifiedEmail
	u.IsGold = l.IsGold
	u.IsMod = l.IsMod
	u.IsFriend = l.IsFriend
	u.IsSuspended = l.IsSuspended
	u.Over18 = l.Over18
	u.IconImg = l.IconImg
}

// About fetches the account and imports it in place. It fails with a RetrievalError when Reddit
// returns a different account.
func (u *User) About(ctx context.Context) (*User, error) {
	const op = "user about"
	if err := u.ready(op); err != nil {
		return nil, err
	}
	name := u.lookup
	if name == "" {
		name = u.Name
	}
	if name == "" {
		return nil, &pkgerrs.StateError{Operation: op, Message: "user has no name"}
	}
	if !validation.IsValidUsername(name) {
		return nil, &pkgerrs.StateError{Operation: op, Message: "invalid username " + name}
	}

	res, err := call(u.dispatch.Users().About(ctx, name))
	if err != nil {
		return nil, err
	}
	acct, err := parser.ParseAccount(&res.Thing)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(acct.Name, name) {
		return nil, &pkgerrs.RetrievalError{Operation: op, Fullname: name, Message: "returned account " + acct.Name}
	}
	if err := u.Import(acct); err != nil {
		return nil, err
	}
	return u, nil
}

// Age returns how long ago the account was created, or zero when unknown.
func (u *User) Age(now time.Time) time.Duration {
	if u.Created.IsZero() {
		return 0
	}
	return now.Sub(u.Created)
}

// AboutAsync runs About on its own goroutine.
func (u *User) AboutAsync(ctx context.Context) *Future[*User] {
	return async(ctx, u.About)
}

func accountFullname(id string) string {
	return types.KindAccount + "_" + id
}
