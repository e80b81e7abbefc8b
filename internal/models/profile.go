package models

import "time"

// Profile is keyed by identity in the profiles collection.
type Profile struct {
	Avatar string `json:"avatar,omitempty"`
}

// FeedEvent is broadcast to /ws/feed subscribers when a post changes.
type FeedEvent struct {
	Type      string    `json:"type"`
	PostID    string    `json:"post_id"`
	Post      *Post     `json:"post,omitempty"`
	Likes     *int      `json:"likes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	FeedEventPostCreated = "post.created"
	FeedEventPostLiked   = "post.liked"
	FeedEventPostDeleted = "post.deleted"
)
