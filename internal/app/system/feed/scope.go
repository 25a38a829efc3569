package feed

import "fmt"

// Kind selects which posts a feed contains.
type Kind int

const (
	KindGlobal   Kind = iota // every post
	KindGroup                // posts filed under one group
	KindAuthor               // posts by one user
	KindFollowed             // posts by everyone the requester follows
)

func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindGroup:
		return "group"
	case KindAuthor:
		return "author"
	case KindFollowed:
		return "followed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Scope is a feed selector. Build one with Global, Group, Author or Followed.
type Scope struct {
	Kind     Kind
	Slug     string // KindGroup
	Username string // KindAuthor
}

func Global() Scope                { return Scope{Kind: KindGlobal} }
func Group(slug string) Scope      { return Scope{Kind: KindGroup, Slug: slug} }
func Author(username string) Scope { return Scope{Kind: KindAuthor, Username: username} }
func Followed() Scope              { return Scope{Kind: KindFollowed} }

func (s Scope) String() string {
	switch s.Kind {
	case KindGroup:
		return "group:" + s.Slug
	case KindAuthor:
		return "author:" + s.Username
	default:
		return s.Kind.String()
	}
}
