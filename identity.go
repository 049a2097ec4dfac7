package graw

import (
	"time"

	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
)

// Identity is embedded in every controller. Fullname is immutable once set; Import only ever
// fills an empty ID and overwrites Permalink, Created and Edited.
type Identity struct {
	ID        string
	Fullname  string
	Permalink string
	Created   time.Time
	Edited    time.Time
}

// GetID returns the bare id.
func (i *Identity) GetID() string { return i.ID }

// GetFullname returns the type-prefixed fullname, empty for drafts.
func (i *Identity) GetFullname() string { return i.Fullname }

// IsDraft reports whether the thing has not been submitted yet.
func (i *Identity) IsDraft() bool { return i.Fullname == "" && i.ID == "" }

// matchFullname checks that data describes the receiver. It mutates nothing.
func (i *Identity) matchFullname(op, fullname string) error {
	if i.Fullname == "" {
		return &pkgerrs.StateError{Operation: op, Message: "receiver has no fullname"}
	}
	if fullname != i.Fullname {
		return &pkgerrs.StateError{Operation: op, Message: "fullname " + fullname + " does not match " + i.Fullname}
	}
	return nil
}

// matchID is matchFullname for things addressed by bare id, such as modmail conversations.
func (i *Identity) matchID(op, id string) error {
	if i.ID == "" {
		return &pkgerrs.StateError{Operation: op, Message: "receiver has no id"}
	}
	if id != i.ID {
		return &pkgerrs.StateError{Operation: op, Message: "id " + id + " does not match " + i.ID}
	}
	return nil
}

// fill sets identity fields that were unknown and refreshes the non-identity ones.
func (i *Identity) fill(data types.ThingData, permalink string, created types.Created, edited types.Edited) {
	if i.ID == "" {
		i.ID = data.ID
	}
	i.Permalink = permalink
	i.Created = created.CreatedTime()
	i.Edited = edited.Time()
}

// thingData is the inverse of fill.
func (i *Identity) thingData() types.ThingData {
	return types.ThingData{ID: i.ID, Name: i.Fullname}
}

func (i *Identity) created() types.Created {
	ts := types.ToUnixFloat(i.Created)
	return types.Created{Created: ts, CreatedUTC: ts}
}

func (i *Identity) edited() types.Edited {
	if i.Edited.IsZero() {
		return types.Edited{}
	}
	return types.Edited{IsEdited: true, Timestamp: types.ToUnixFloat(i.Edited)}
}
