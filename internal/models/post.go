package models

import (
	"strings"
	"time"
)

type Post struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     *string   `json:"title"`
	Body      string    `json:"body"`
	Media     []Media   `json:"media"`
	Anonymous bool      `json:"anonymous"`
	CreatedAt time.Time `json:"createdAt"`

	// Author is the identity that created the post. It is stored even for
	// anonymous posts because ownership checks depend on it.
	Author       string  `json:"author"`
	AuthorAvatar *string `json:"authorAvatar"`

	Likes   int      `json:"likes"`
	LikedBy []string `json:"likedBy"`
}

// HasLiked reports whether identity is already in LikedBy.
func (p *Post) HasLiked(identity string) bool {
	for _, u := range p.LikedBy {
		if u == identity {
			return true
		}
	}
	return false
}

// Matches reports whether the body or author contains q, ignoring case.
// q must already be lower-cased.
func (p *Post) Matches(q string) bool {
	return strings.Contains(strings.ToLower(p.Body), q) ||
		strings.Contains(strings.ToLower(p.Author), q)
}
