// Package validation checks the identifiers a controller is about to send to Reddit, so that
// malformed names fail locally instead of costing a rate-limited request.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Fullname kind prefixes.
const (
	KindComment   = "t1"
	KindAccount   = "t2"
	KindLink      = "t3"
	KindMessage   = "t4"
	KindSubreddit = "t5"
	KindAward     = "t6"
)

var (
	base36Regex    = regexp.MustCompile(`^[0-9a-z]+$`)
	subredditRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,21}$`)
	usernameRegex  = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
	fullnameRegex  = regexp.MustCompile(`^(t[1-6])_[0-9a-z]+$`)
)

// IsValidBase36 reports whether s is a bare thing id, which is also the form modmail
// conversation ids take.
func IsValidBase36(s string) bool {
	return base36Regex.MatchString(s)
}

// IsValidSubreddit reports whether s is a subreddit name without the r/ prefix.
func IsValidSubreddit(s string) bool {
	return subredditRegex.MatchString(s)
}

// IsValidUsername reports whether s is an account name without the u/ prefix.
func IsValidUsername(s string) bool {
	return usernameRegex.MatchString(s)
}

// IsValidFullname reports whether s is a kind prefix joined to a base36 id, e.g. t3_abc123.
func IsValidFullname(s string) bool {
	return fullnameRegex.MatchString(s)
}

// KindOf returns the kind prefix of a well-formed fullname, or "" when s is malformed.
func KindOf(s string) string {
	m := fullnameRegex.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// CheckFullname returns an error when s is not a fullname of one of the given kinds.
// With no kinds any well-formed fullname is accepted.
func CheckFullname(s string, kinds ...string) error {
	kind := KindOf(s)
	if kind == "" {
		return fmt.Errorf("%q is not a valid fullname", s)
	}
	if len(kinds) == 0 {
		return nil
	}
	for _, k := range kinds {
		if k == kind {
			return nil
		}
	}
	return fmt.Errorf("fullname %s has kind %s, want %s", s, kind, strings.Join(kinds, " or "))
}
