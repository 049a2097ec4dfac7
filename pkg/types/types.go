// Package types holds the data-transfer structures mirroring the JSON shapes returned by the
// Reddit API. Values of these types only carry one call's result from the transport into a
// controller and are never retained by the library.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind prefixes used by Reddit fullnames and Thing envelopes.
const (
	KindComment   = "t1"
	KindAccount   = "t2"
	KindLink      = "t3"
	KindMessage   = "t4"
	KindSubreddit = "t5"
	KindListing   = "Listing"
	KindMore      = "more"
)

// ThingData holds the common identity fields for Reddit objects.
type ThingData struct {
	ID   string `json:"id"`   // ID (without prefix)
	Name string `json:"name"` // Fullname (e.g., "t3_abc123")
}

// GetID returns the object's ID.
func (td ThingData) GetID() string {
	return td.ID
}

// GetName returns the object's fullname.
func (td ThingData) GetName() string {
	return td.Name
}

// Thing is the {kind, data} envelope Reddit wraps around every object.
type Thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Votable is an embeddable struct for things that can be voted on.
type Votable struct {
	Ups   int `json:"ups"`
	Downs int `json:"downs"`
	// Likes indicates the user's vote: true for upvote, false for downvote, null for no vote.
	Likes *bool `json:"likes"`
}

// Created is an embeddable struct for things that have a creation time.
type Created struct {
	Created    float64 `json:"created"`
	CreatedUTC float64 `json:"created_utc"`
}

// CreatedTime converts CreatedUTC to a time.Time. Zero stays zero.
func (c Created) CreatedTime() time.Time {
	return UnixFloat(c.CreatedUTC)
}

// Edited represents a field that can be a boolean or a timestamp.
// If IsEdited is true and Timestamp is 0, it was an old edit marked as `true`.
type Edited struct {
	IsEdited  bool
	Timestamp float64
}

// UnmarshalJSON handles the bool-or-timestamp shape of the "edited" field.
func (e *Edited) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(string(data))
	switch s {
	case "false", "null":
		e.IsEdited, e.Timestamp = false, 0
		return nil
	case "true":
		e.IsEdited, e.Timestamp = true, 0
		return nil
	}

	var timestamp float64
	if err := json.Unmarshal(data, &timestamp); err == nil {
		e.IsEdited = true
		e.Timestamp = timestamp
		return nil
	}

	return fmt.Errorf("unrecognized type for 'edited' field: %s", string(data))
}

// MarshalJSON writes the timestamp when known and a boolean otherwise.
func (e Edited) MarshalJSON() ([]byte, error) {
	if e.IsEdited && e.Timestamp != 0 {
		return json.Marshal(e.Timestamp)
	}
	return json.Marshal(e.IsEdited)
}

// Time returns the edit time, or the zero time when unknown or never edited.
func (e Edited) Time() time.Time {
	return UnixFloat(e.Timestamp)
}

// UnixFloat converts fractional unix seconds to UTC time. Zero maps to the zero time.
func UnixFloat(seconds float64) time.Time {
	if seconds == 0 {
		return time.Time{}
	}
	sec := int64(seconds)
	nsec := int64((seconds - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}

// ToUnixFloat is the inverse of UnixFloat.
func ToUnixFloat(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Second)
}

// ListingData contains the data for a Listing.
type ListingData struct {
	BeforeFullname string   `json:"before"`
	AfterFullname  string   `json:"after"`
	Modhash        string   `json:"modhash"`
	Children       []*Thing `json:"children"` // Raw Things with kind+data, parsed by caller
}

// Post is the listing of a link or self post (kind t3).
type Post struct {
	ThingData
	Votable
	Created
	Author        string  `json:"author"`
	Domain        string  `json:"domain"`
	Hidden        bool    `json:"hidden"`
	IsSelf        bool    `json:"is_self"`
	Locked        bool    `json:"locked"`
	NumComments   int     `json:"num_comments"`
	Over18        bool    `json:"over_18"`
	Permalink     string  `json:"permalink"`
	Saved         bool    `json:"saved"`
	Score         int     `json:"score"`
	SelfText      string  `json:"selftext"`
	SelfTextHTML  string  `json:"selftext_html"`
	Spoiler       bool    `json:"spoiler"`
	Subreddit     string  `json:"subreddit"`
	SubredditID   string  `json:"subreddit_id"`
	Thumbnail     string  `json:"thumbnail"`
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Edited        Edited  `json:"edited"`
	Distinguished *string `json:"distinguished"`
	Stickied      bool    `json:"stickied"`
	Removed       bool    `json:"removed"`
	Spam          bool    `json:"spam"`
	Approved      bool    `json:"approved"`
}

// Comment is the listing of a comment (kind t1).
type Comment struct {
	ThingData
	Votable
	Created
	Author        string  `json:"author"`
	Body          string  `json:"body"`
	BodyHTML      string  `json:"body_html"`
	Edited        Edited  `json:"edited"`
	LinkID        string  `json:"link_id"`
	ParentID      string  `json:"parent_id"`
	Permalink     string  `json:"permalink"`
	Saved         bool    `json:"saved"`
	Score         int     `json:"score"`
	ScoreHidden   bool    `json:"score_hidden"`
	Subreddit     string  `json:"subreddit"`
	SubredditID   string  `json:"subreddit_id"`
	Distinguished *string `json:"distinguished"`
	Depth         int     `json:"depth"`
	Removed       bool    `json:"removed"`
	Spam          bool    `json:"spam"`
	Approved      bool    `json:"approved"`
}

// Account is the listing of a user account (kind t2).
type Account struct {
	ThingData
	Created
	CommentKarma     int    `json:"comment_karma"`
	LinkKarma        int    `json:"link_karma"`
	HasVerifiedEmail *bool  `json:"has_verified_email"`
	IsGold           bool   `json:"is_gold"`
	IsMod            bool   `json:"is_mod"`
	IsFriend         bool   `json:"is_friend"`
	IsSuspended      bool   `json:"is_suspended"`
	Over18           bool   `json:"over_18"`
	IconImg          string `json:"icon_img"`
}

// Info is the typed result of api/info: the posts and comments of a mixed listing.
type Info struct {
	ErrorEnvelope
	Posts    []*Post
	Comments []*Comment
}

// Empty reports whether the lookup matched nothing.
func (i *Info) Empty() bool {
	return i == nil || (len(i.Posts) == 0 && len(i.Comments) == 0)
}
