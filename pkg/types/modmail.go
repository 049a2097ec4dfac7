package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Modmail conversation states accepted by the state filter. The values are passed through to
// Reddit verbatim; the library does not enforce the enumeration.
const (
	StateNew           = "new"
	StateInProgress    = "inprogress"
	StateMod           = "mod"
	StateNotifications = "notifications"
	StateArchived      = "archived"
	StateHighlighted   = "highlighted"
	StateAll           = "all"
)

// Modmail conversation sort keys.
const (
	SortRecent = "recent"
	SortMod    = "mod"
	SortUser   = "user"
	SortUnread = "unread"
)

// Timestamp decodes the mix of ISO-8601 strings and unix seconds the modmail API returns.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts null, RFC 3339 strings, and integer or fractional unix seconds.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" || string(data) == `""` {
		ts.Time = time.Time{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			ts.Time = UnixFloat(f)
			return nil
		}
		return fmt.Errorf("unrecognized timestamp %q", s)
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("unrecognized timestamp %s: %w", string(data), err)
	}
	ts.Time = UnixFloat(f)
	return nil
}

// MarshalJSON writes RFC 3339, or null for the zero time.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Format(time.RFC3339Nano))
}

// ModmailParticipant describes an author, owner or participant of a conversation.
type ModmailParticipant struct {
	ID            any    `json:"id"`
	Name          string `json:"name"`
	DisplayName   string `json:"displayName"`
	Type          string `json:"type"`
	IsMod         bool   `json:"isMod"`
	IsAdmin       bool   `json:"isAdmin"`
	IsOP          bool   `json:"isOp"`
	IsParticipant bool   `json:"isParticipant"`
	IsHidden      bool   `json:"isHidden"`
	IsDeleted     bool   `json:"isDeleted"`
}

// ModmailObjID references a message or mod action belonging to a conversation.
type ModmailObjID struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// ModmailConversation is the metadata of one modmail conversation.
type ModmailConversation struct {
	ID             string               `json:"id"`
	Subject        string               `json:"subject"`
	IsAuto         bool                 `json:"isAuto"`
	IsRepliable    bool                 `json:"isRepliable"`
	IsHighlighted  bool                 `json:"isHighlighted"`
	IsInternal     bool                 `json:"isInternal"`
	NumMessages    int                  `json:"numMessages"`
	State          int                  `json:"state"`
	LastUpdated    Timestamp            `json:"lastUpdated"`
	LastUserUpdate Timestamp            `json:"lastUserUpdate"`
	LastModUpdate  Timestamp            `json:"lastModUpdate"`
	LastUnread     Timestamp            `json:"lastUnread"`
	Owner          ModmailParticipant   `json:"owner"`
	Participant    ModmailParticipant   `json:"participant"`
	Authors        []ModmailParticipant `json:"authors"`
	ObjIDs         []ModmailObjID       `json:"objIds"`
}

// ModmailMessage is one message of a modmail conversation.
type ModmailMessage struct {
	ID           string             `json:"id"`
	Body         string             `json:"body"`
	BodyMarkdown string             `json:"bodyMarkdown"`
	Author       ModmailParticipant `json:"author"`
	IsInternal   bool               `json:"isInternal"`
	Date         Timestamp          `json:"date"`
}

// ModmailAction is a moderator action recorded on a conversation.
type ModmailAction struct {
	ID           string             `json:"id"`
	ActionTypeID int                `json:"actionTypeId"`
	Author       ModmailParticipant `json:"author"`
	Date         Timestamp          `json:"date"`
}

// ModmailConversationContainer is the response of the single-conversation endpoints.
type ModmailConversationContainer struct {
	ErrorEnvelope
	Conversation ModmailConversation       `json:"conversation"`
	Messages     map[string]ModmailMessage `json:"messages"`
	ModActions   map[string]ModmailAction  `json:"modActions"`
	User         *ModmailUser              `json:"user,omitempty"`
}

// OrderedMessages returns the messages in the order listed by the conversation's objIds,
// followed by any message the conversation does not reference, oldest first (ties by ID).
func (c *ModmailConversationContainer) OrderedMessages() []ModmailMessage {
	if c == nil || len(c.Messages) == 0 {
		return nil
	}

	out := make([]ModmailMessage, 0, len(c.Messages))
	seen := make(map[string]bool, len(c.Messages))
	for _, obj := range c.Conversation.ObjIDs {
		if obj.Key != "messages" {
			continue
		}
		if m, ok := c.Messages[obj.ID]; ok && !seen[obj.ID] {
			out = append(out, m)
			seen[obj.ID] = true
		}
	}
	var rest []ModmailMessage
	for id, m := range c.Messages {
		if !seen[id] {
			rest = append(rest, m)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		if !rest[i].Date.Time.Equal(rest[j].Date.Time) {
			return rest[i].Date.Time.Before(rest[j].Date.Time)
		}
		return rest[i].ID < rest[j].ID
	})
	return append(out, rest...)
}

// ConversationContainer is the response of GET api/mod/conversations.
type ConversationContainer struct {
	ErrorEnvelope
	Conversations   map[string]ModmailConversation `json:"conversations"`
	Messages        map[string]ModmailMessage      `json:"messages"`
	ViewerID        string                         `json:"viewerId"`
	ConversationIDs []string                       `json:"conversationIds"`
}

// Ordered returns the conversations in the order given by ConversationIDs.
func (c *ConversationContainer) Ordered() []ModmailConversation {
	if c == nil {
		return nil
	}
	out := make([]ModmailConversation, 0, len(c.ConversationIDs))
	for _, id := range c.ConversationIDs {
		if conv, ok := c.Conversations[id]; ok {
			out = append(out, conv)
		}
	}
	return out
}

// ModmailRecentItem is a recent post, comment or conversation listed for a modmail user.
type ModmailRecentItem struct {
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	Subject   string    `json:"subject"`
	Permalink string    `json:"permalink"`
	Date      Timestamp `json:"date"`
}

// ModmailUserStatus is the mute or ban status of a modmail user.
type ModmailUserStatus struct {
	IsMuted     bool      `json:"isMuted"`
	IsBanned    bool      `json:"isBanned"`
	IsPermanent bool      `json:"isPermanent"`
	EndDate     Timestamp `json:"endDate"`
	Reason      string    `json:"reason"`
}

// ModmailUser is the response of api/mod/conversations/{id}/user.
type ModmailUser struct {
	ErrorEnvelope
	ID             string                       `json:"id"`
	Name           string                       `json:"name"`
	Created        Timestamp                    `json:"created"`
	IsSuspended    bool                         `json:"isSuspended"`
	IsShadowBanned bool                         `json:"isShadowBanned"`
	MuteStatus     ModmailUserStatus            `json:"muteStatus"`
	BanStatus      ModmailUserStatus            `json:"banStatus"`
	RecentPosts    map[string]ModmailRecentItem `json:"recentPosts"`
	RecentComments map[string]ModmailRecentItem `json:"recentComments"`
	RecentConvos   map[string]ModmailRecentItem `json:"recentConvos"`
}

// ModmailSubreddit is a subreddit enrolled in new modmail.
type ModmailSubreddit struct {
	DisplayName string    `json:"display_name"`
	Name        string    `json:"name"`
	LastUpdated Timestamp `json:"lastUpdated"`
	KeyColor    string    `json:"keyColor"`
	Subscribers int       `json:"subscribers"`
	ID          string    `json:"id"`
	Icon        string    `json:"icon"`
}

// ModmailSubredditContainer is the response of api/mod/conversations/subreddits.
type ModmailSubredditContainer struct {
	ErrorEnvelope
	Subreddits map[string]ModmailSubreddit `json:"subreddits"`
}

// ModmailUnreadCount is the unread conversation count per state.
type ModmailUnreadCount struct {
	ErrorEnvelope
	Highlighted   int `json:"highlighted"`
	Notifications int `json:"notifications"`
	Archived      int `json:"archived"`
	New           int `json:"new"`
	InProgress    int `json:"inprogress"`
	Mod           int `json:"mod"`
}
