package internal

import (
	"encoding/json"
	"fmt"

	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
)

// Parser decodes Thing envelopes into the typed structures of pkg/types.
type Parser struct{}

// NewParser creates a new parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseThing determines the type of a Thing and returns the appropriate typed struct.
// Kinds the library does not model are reported as a ParseError.
func (p *Parser) ParseThing(thing *types.Thing) (interface{}, error) {
	if thing == nil {
		return nil, parseErr("parse thing", "thing is nil", nil)
	}

	switch thing.Kind {
	case types.KindListing:
		return p.ParseListing(thing)
	case types.KindComment:
		return p.ParseComment(thing)
	case types.KindAccount:
		return p.ParseAccount(thing)
	case types.KindLink:
		return p.ParseLink(thing)
	default:
		return nil, parseErr("parse thing", fmt.Sprintf("unknown kind: %s", thing.Kind), nil)
	}
}

// ParseListing extracts a ListingData from a Thing of kind "Listing".
func (p *Parser) ParseListing(thing *types.Thing) (*types.ListingData, error) {
	var listing types.ListingData
	if err := p.decode("parse listing", types.KindListing, thing, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// ParseLink extracts a Post from a Thing of kind "t3".
func (p *Parser) ParseLink(thing *types.Thing) (*types.Post, error) {
	var post types.Post
	if err := p.decode("parse link", types.KindLink, thing, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// ParseComment extracts a Comment from a Thing of kind "t1".
func (p *Parser) ParseComment(thing *types.Thing) (*types.Comment, error) {
	var comment types.Comment
	if err := p.decode("parse comment", types.KindComment, thing, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ParseAccount extracts an Account from a Thing of kind "t2".
func (p *Parser) ParseAccount(thing *types.Thing) (*types.Account, error) {
	var account types.Account
	if err := p.decode("parse account", types.KindAccount, thing, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ExtractInfo splits the children of an api/info listing into posts and comments.
// Children of other kinds are skipped; a child that fails to decode fails the whole call.
func (p *Parser) ExtractInfo(listing *types.Thing) (*types.Info, error) {
	listingData, err := p.ParseListing(listing)
	if err != nil {
		return nil, err
	}
	return p.ExtractThings(listingData.Children)
}

// ExtractThings splits loose things, such as those echoed by api/comment, into posts and comments.
func (p *Parser) ExtractThings(things []*types.Thing) (*types.Info, error) {
	info := &types.Info{}
	for _, child := range things {
		if child == nil {
			continue
		}
		switch child.Kind {
		case types.KindLink:
			post, err := p.ParseLink(child)
			if err != nil {
				return nil, err
			}
			info.Posts = append(info.Posts, post)
		case types.KindComment:
			comment, err := p.ParseComment(child)
			if err != nil {
				return nil, err
			}
			info.Comments = append(info.Comments, comment)
		}
	}
	return info, nil
}

func (p *Parser) decode(op, kind string, thing *types.Thing, v any) error {
	if thing == nil {
		return parseErr(op, "thing is nil", nil)
	}
	if thing.Kind != kind {
		return parseErr(op, fmt.Sprintf("expected %s, got %s", kind, thing.Kind), nil)
	}
	if err := json.Unmarshal(thing.Data, v); err != nil {
		return parseErr(op, fmt.Sprintf("failed to parse %s data", kind), err)
	}
	return nil
}

func parseErr(op, msg string, err error) error {
	return &pkgerrs.ParseError{Operation: op, Message: msg, Err: err}
}
